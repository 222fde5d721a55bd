package visuals

import (
	"fmt"
	"math"
	"strings"

	"newsvendor-mcp/internal/simulation"
	"newsvendor-mcp/internal/stats"
)

// GenerateProfitHistogram creates a Mermaid bar chart of a run's profit distribution.
func GenerateProfitHistogram(bins []stats.HistogramBin, policyName string) string {
	if len(bins) == 0 {
		return ""
	}

	var labels []string
	var values []string
	maxVal := 0
	for _, b := range bins {
		labels = append(labels, fmt.Sprintf("\"%.0f\"", b.Midpoint))
		values = append(values, fmt.Sprintf("%d", b.Count))
		if b.Count > maxVal {
			maxVal = b.Count
		}
	}

	var sb strings.Builder
	sb.WriteString("```mermaid\n")
	sb.WriteString("xychart-beta\n")
	sb.WriteString(fmt.Sprintf("    title \"Profit Distribution (%s)\"\n", safeLabel(policyName)))
	sb.WriteString(fmt.Sprintf("    x-axis [%s]\n", strings.Join(labels, ", ")))
	sb.WriteString(fmt.Sprintf("    y-axis \"Trials\" 0 --> %d\n", maxVal+int(math.Max(1, float64(maxVal)*0.2))))
	sb.WriteString(fmt.Sprintf("    bar [%s]\n", strings.Join(values, ", ")))
	sb.WriteString("```")
	return sb.String()
}

// GeneratePolicyComparison creates a Mermaid bar chart of the average profit per policy.
func GeneratePolicyComparison(all []simulation.PolicyStatistics) string {
	if len(all) == 0 {
		return ""
	}

	var labels []string
	var values []string
	maxVal := 0.0
	for _, s := range all {
		labels = append(labels, fmt.Sprintf("\"%s (Q=%d)\"", safeLabel(s.PolicyName), s.OrderQuantity))
		values = append(values, fmt.Sprintf("%.0f", s.AverageProfit))
		if s.AverageProfit > maxVal {
			maxVal = s.AverageProfit
		}
	}
	if maxVal <= 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("```mermaid\n")
	sb.WriteString("xychart-beta\n")
	sb.WriteString("    title \"Average Profit by Policy\"\n")
	sb.WriteString(fmt.Sprintf("    x-axis [%s]\n", strings.Join(labels, ", ")))
	sb.WriteString(fmt.Sprintf("    y-axis \"Average Profit\" 0 --> %d\n", int(math.Ceil(maxVal*1.1))))
	sb.WriteString(fmt.Sprintf("    bar [%s]\n", strings.Join(values, ", ")))
	sb.WriteString("```")
	return sb.String()
}

// GenerateSelloutPie creates a Mermaid pie chart splitting trials into sellouts and shortages.
func GenerateSelloutPie(s simulation.PolicyStatistics) string {
	if s.TotalSimulations == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("```mermaid\n")
	sb.WriteString(fmt.Sprintf("pie title Demand Coverage (%s)\n", safeLabel(s.PolicyName)))
	sb.WriteString(fmt.Sprintf("    \"No shortage\" : %.1f\n", s.SelloutPercentage))
	sb.WriteString(fmt.Sprintf("    \"Shortage\" : %.1f\n", 100-s.SelloutPercentage))
	sb.WriteString("```")
	return sb.String()
}

// Quotes break Mermaid labels.
func safeLabel(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}
