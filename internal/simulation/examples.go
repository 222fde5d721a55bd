package simulation

// DefaultExampleCount is the number of walkthrough rows generated when the
// caller does not ask for a specific count.
const DefaultExampleCount = 10

// RandomExamples generates count demand draws for the random number
// walkthrough. With a seed the radius samples follow the same LCG sequence
// as Engine.RunSeeded; the angle is still drawn from src.
func RandomExamples(src Source, params Parameters, count int, seed *int64) []RandomNumberExample {
	examples := make([]RandomNumberExample, 0, max(count, 0))

	var seq *LCG
	if seed != nil {
		seq = NewLCG(*seed)
	}

	for i := 0; i < count; i++ {
		var draw DemandDraw
		if seq != nil {
			draw = GenerateDemandFromUniform(src, params.Mean, params.StdDev, seq.Next())
		} else {
			draw = GenerateDemand(src, params.Mean, params.StdDev)
		}
		examples = append(examples, RandomNumberExample{
			Index:         i + 1,
			RandomUniform: draw.Uniform,
			ZScore:        draw.ZScore,
			Demand:        draw.Demand,
		})
	}
	return examples
}
