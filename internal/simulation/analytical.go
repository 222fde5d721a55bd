package simulation

import (
	"math"

	"newsvendor-mcp/internal/stats"
)

// Solve computes the closed-form optimal order quantity
// Q* = mean + z*stdDev with z = Φ⁻¹(Cu / (Cu + Co)).
//
// The caller must ensure Cu + Co > 0; Parameters.Validate guarantees it.
func Solve(params Parameters) AnalyticalSolution {
	cu := params.Profit
	co := params.ExcessLoss
	ratio := cu / (cu + co)
	z := stats.InverseNormalCDF(ratio)

	return AnalyticalSolution{
		Cu:              cu,
		Co:              co,
		CriticalRatio:   ratio,
		ZValue:          z,
		OptimalQuantity: int(math.Round(params.Mean + z*params.StdDev)),
	}
}

// ServiceLevel returns the probability that demand does not exceed
// orderQuantity under the normal demand model.
func ServiceLevel(params Parameters, orderQuantity int) float64 {
	if params.StdDev == 0 {
		if float64(orderQuantity) >= params.Mean {
			return 1
		}
		return 0
	}
	return stats.NormalCDF((float64(orderQuantity) - params.Mean) / params.StdDev)
}
