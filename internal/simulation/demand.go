package simulation

import "math"

// Source supplies uniform samples in [0, 1). *rand.Rand satisfies it.
type Source interface {
	Float64() float64
}

// DemandDraw is one normally distributed demand value and the samples behind it.
type DemandDraw struct {
	Uniform float64 `json:"uniform"`
	ZScore  float64 `json:"z_score"`
	Demand  int     `json:"demand"`
}

// GenerateDemand draws a uniform sample in (0, 1) from src and converts it
// into a demand value with GenerateDemandFromUniform.
func GenerateDemand(src Source, mean, stdDev float64) DemandDraw {
	u := src.Float64()
	for u == 0 {
		u = src.Float64()
	}
	return GenerateDemandFromUniform(src, mean, stdDev, u)
}

// GenerateDemandFromUniform applies the Box-Muller transform to u and a
// second sample drawn from src, then rounds mean + z*stdDev half away from
// zero. Only the radius term depends on u: the angle is always drawn from
// src, so a fixed u does not fix the result.
//
// Demand is not clamped and may be negative when stdDev is large relative
// to mean. A u of exactly 0 is treated as the smallest positive float64.
func GenerateDemandFromUniform(src Source, mean, stdDev, u float64) DemandDraw {
	radius := u
	if radius <= 0 {
		radius = math.SmallestNonzeroFloat64
	}
	z := math.Sqrt(-2*math.Log(radius)) * math.Cos(2*math.Pi*src.Float64())

	return DemandDraw{
		Uniform: u,
		ZScore:  z,
		Demand:  int(math.Round(mean + z*stdDev)),
	}
}
