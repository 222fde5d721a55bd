package stats

import "math"

// HistogramBin is one equal-width bucket of a distribution.
type HistogramBin struct {
	Lower    float64 `json:"lower"`
	Upper    float64 `json:"upper"`
	Midpoint float64 `json:"midpoint"`
	Count    int     `json:"count"`
}

// HistogramBinsFor returns the bucket count used for a sample of size n.
// Larger samples get finer resolution.
func HistogramBinsFor(n int) int {
	if n > 500 {
		return 15
	}
	return 10
}

// Histogram distributes values into equal-width bins between their minimum
// and maximum. If every value is identical the bin width is 1 and all values
// land in the first bin.
func Histogram(values []float64, bins int) []HistogramBin {
	if len(values) == 0 || bins <= 0 {
		return nil
	}

	lo, hi := MinMax(values)
	width := (hi - lo) / float64(bins)
	degenerate := hi-lo == 0
	if degenerate {
		width = 1
	}

	result := make([]HistogramBin, bins)
	for i := range result {
		result[i] = HistogramBin{
			Lower:    lo + float64(i)*width,
			Upper:    lo + float64(i+1)*width,
			Midpoint: lo + (float64(i)+0.5)*width,
		}
	}

	for _, v := range values {
		if degenerate {
			result[0].Count++
			continue
		}
		// The maximum falls on the upper edge of the last bin.
		idx := int(math.Floor((v - lo) / width))
		if idx >= bins {
			idx = bins - 1
		}
		if idx >= 0 {
			result[idx].Count++
		}
	}

	return result
}
