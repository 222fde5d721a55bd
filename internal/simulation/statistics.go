package simulation

import "newsvendor-mcp/internal/stats"

// Aggregate computes the summary statistics of a policy's trials. The result
// does not depend on the order of results. An empty slice yields zeroed
// statistics and never NaN.
func Aggregate(policyName string, orderQuantity int, results []ScenarioResult) PolicyStatistics {
	n := len(results)
	if n == 0 {
		return PolicyStatistics{
			PolicyName:    policyName,
			OrderQuantity: orderQuantity,
		}
	}

	profits := make([]float64, n)
	excess := make([]float64, n)
	shortage := make([]float64, n)
	sellouts := 0
	for i, r := range results {
		profits[i] = r.Profit
		excess[i] = float64(r.ExcessUnits)
		shortage[i] = float64(r.ShortageUnits)
		if r.ShortageUnits == 0 {
			sellouts++
		}
	}

	avgProfit := stats.Mean(profits)
	minProfit, maxProfit := stats.MinMax(profits)

	return PolicyStatistics{
		PolicyName:        policyName,
		OrderQuantity:     orderQuantity,
		AverageProfit:     stats.FiniteOrZero(avgProfit),
		AverageExcess:     stats.FiniteOrZero(stats.Mean(excess)),
		AverageShortage:   stats.FiniteOrZero(stats.Mean(shortage)),
		MaxProfit:         stats.FiniteOrZero(maxProfit),
		MinProfit:         stats.FiniteOrZero(minProfit),
		StdDevProfit:      stats.FiniteOrZero(stats.PopulationStdDev(profits, avgProfit)),
		SelloutPercentage: stats.FiniteOrZero(float64(sellouts) / float64(n) * 100),
		TotalSimulations:  n,
	}
}

// AggregateRun is Aggregate applied to a PolicyRun.
func AggregateRun(run PolicyRun) PolicyStatistics {
	return Aggregate(run.PolicyName, run.OrderQuantity, run.Results)
}

// ProfitHistogram bins the profits of a run for distribution summaries.
func ProfitHistogram(results []ScenarioResult) []stats.HistogramBin {
	profits := make([]float64, len(results))
	for i, r := range results {
		profits[i] = r.Profit
	}
	return stats.Histogram(profits, stats.HistogramBinsFor(len(results)))
}
