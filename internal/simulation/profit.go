package simulation

// Outcome is the result of selling against one demand realisation.
type Outcome struct {
	UnitsSold     int     `json:"units_sold"`
	ExcessUnits   int     `json:"excess_units"`
	ShortageUnits int     `json:"shortage_units"`
	Profit        float64 `json:"profit"`
}

// CalculateProfit evaluates the profit function for a single scenario:
// every unit sold earns params.Profit and every unsold unit loses
// params.ExcessLoss. Unmet demand carries no explicit penalty.
func CalculateProfit(demand, orderQuantity int, params Parameters) Outcome {
	sold := min(demand, orderQuantity)
	excess := max(0, orderQuantity-demand)
	shortage := max(0, demand-orderQuantity)

	return Outcome{
		UnitsSold:     sold,
		ExcessUnits:   excess,
		ShortageUnits: shortage,
		Profit:        float64(sold)*params.Profit - float64(excess)*params.ExcessLoss,
	}
}
