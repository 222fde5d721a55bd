package stats

import "math"

// Rational approximation coefficients for the standard normal quantile
// (Beasley-Springer-Moro / Acklam). Central region uses a/b, tails use c/d.
var (
	quantileA = [6]float64{
		-3.969683028665376e1,
		2.209460984245205e2,
		-2.759285104469687e2,
		1.383577518672690e2,
		-3.066479806614716e1,
		2.506628277459239,
	}
	quantileB = [5]float64{
		-5.447609879822406e1,
		1.615858368580409e2,
		-1.556989798598866e2,
		6.680131188771972e1,
		-1.328068155288572e1,
	}
	quantileC = [6]float64{
		-7.784894002430293e-3,
		-3.223964580411365e-1,
		-2.400758277161838,
		-2.549732539343734,
		4.374664141464968,
		2.938163982698783,
	}
	quantileD = [4]float64{
		7.784695709041462e-3,
		3.224671290700398e-1,
		2.445134137142996,
		3.754408661907416,
	}
)

const (
	quantileLow  = 0.02425
	quantileHigh = 1 - quantileLow
)

// InverseNormalCDF returns z such that Φ(z) ≈ p for the standard normal distribution.
//
// The caller must ensure 0 < p < 1. Values outside that range are not
// guarded and yield ±Inf or NaN.
func InverseNormalCDF(p float64) float64 {
	a, b, c, d := quantileA, quantileB, quantileC, quantileD

	switch {
	case p < quantileLow:
		q := math.Sqrt(-2 * math.Log(p))
		return tailRational(c, d, q)
	case p <= quantileHigh:
		q := p - 0.5
		r := q * q
		return (((((a[0]*r+a[1])*r+a[2])*r+a[3])*r+a[4])*r + a[5]) * q /
			(((((b[0]*r+b[1])*r+b[2])*r+b[3])*r+b[4])*r + 1)
	default:
		q := math.Sqrt(-2 * math.Log(1-p))
		return -tailRational(c, d, q)
	}
}

func tailRational(c [6]float64, d [4]float64, q float64) float64 {
	return (((((c[0]*q+c[1])*q+c[2])*q+c[3])*q+c[4])*q + c[5]) /
		((((d[0]*q+d[1])*q+d[2])*q+d[3])*q + 1)
}

// NormalCDF is the standard normal cumulative distribution function.
func NormalCDF(z float64) float64 {
	return 0.5 * math.Erfc(-z/math.Sqrt2)
}
