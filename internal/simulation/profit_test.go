package simulation

import "testing"

func TestCalculateProfit(t *testing.T) {
	params := DefaultParameters()

	tests := []struct {
		name     string
		demand   int
		order    int
		expected Outcome
	}{
		{"Overstock", 6500, 7000, Outcome{UnitsSold: 6500, ExcessUnits: 500, ShortageUnits: 0, Profit: 220000}},
		{"Stockout", 7500, 7000, Outcome{UnitsSold: 7000, ExcessUnits: 0, ShortageUnits: 500, Profit: 245000}},
		{"ExactMatch", 7000, 7000, Outcome{UnitsSold: 7000, Profit: 245000}},
		{"ZeroDemand", 0, 100, Outcome{ExcessUnits: 100, Profit: -1500}},
		{"NegativeDemand", -10, 100, Outcome{UnitsSold: -10, ExcessUnits: 110, Profit: -350 - 1650}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CalculateProfit(tt.demand, tt.order, params); got != tt.expected {
				t.Errorf("CalculateProfit(%d, %d) = %+v, want %+v", tt.demand, tt.order, got, tt.expected)
			}
		})
	}
}

func TestCalculateProfit_Invariants(t *testing.T) {
	params := DefaultParameters()
	for demand := 0; demand <= 200; demand += 7 {
		for order := 0; order <= 200; order += 11 {
			o := CalculateProfit(demand, order, params)
			if o.UnitsSold != min(demand, order) {
				t.Fatalf("units sold %d != min(%d, %d)", o.UnitsSold, demand, order)
			}
			positive := 0
			if o.ExcessUnits > 0 {
				positive++
			}
			if o.ShortageUnits > 0 {
				positive++
			}
			if demand == order && positive != 0 {
				t.Fatalf("expected no excess or shortage when demand == order (%d)", demand)
			}
			if demand != order && positive != 1 {
				t.Fatalf("expected exactly one of excess/shortage for demand %d order %d", demand, order)
			}
		}
	}
}
