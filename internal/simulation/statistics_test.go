package simulation

import (
	"math"
	"math/rand"
	"testing"
)

func TestAggregate_Empty(t *testing.T) {
	got := Aggregate("Policy 1", 7000, nil)
	want := PolicyStatistics{PolicyName: "Policy 1", OrderQuantity: 7000}
	if got != want {
		t.Errorf("Aggregate(empty) = %+v, want %+v", got, want)
	}
}

func TestAggregate_KnownValues(t *testing.T) {
	params := DefaultParameters()
	q := 7000
	var results []ScenarioResult
	for i, demand := range []int{6500, 7500, 7000, 6000} {
		o := CalculateProfit(demand, q, params)
		results = append(results, ScenarioResult{
			SimulationNumber: i + 1,
			Demand:           demand,
			UnitsSold:        o.UnitsSold,
			ExcessUnits:      o.ExcessUnits,
			ShortageUnits:    o.ShortageUnits,
			Profit:           o.Profit,
		})
	}
	// Profits: 220000, 245000, 245000, 195000.
	got := Aggregate("Policy 1", q, results)

	if got.AverageProfit != 226250 {
		t.Errorf("expected average profit 226250, got %v", got.AverageProfit)
	}
	if got.MaxProfit != 245000 || got.MinProfit != 195000 {
		t.Errorf("unexpected extrema: max %v min %v", got.MaxProfit, got.MinProfit)
	}
	if got.AverageExcess != 375 {
		t.Errorf("expected average excess 375, got %v", got.AverageExcess)
	}
	if got.AverageShortage != 125 {
		t.Errorf("expected average shortage 125, got %v", got.AverageShortage)
	}
	wantSD := math.Sqrt((6250.0*6250 + 18750*18750*2 + 31250*31250) / 4)
	if math.Abs(got.StdDevProfit-wantSD) > 1e-9 {
		t.Errorf("expected population std dev %v, got %v", wantSD, got.StdDevProfit)
	}
	if got.SelloutPercentage != 75 {
		t.Errorf("expected sellout 75%%, got %v", got.SelloutPercentage)
	}
	if got.TotalSimulations != 4 {
		t.Errorf("expected 4 simulations, got %d", got.TotalSimulations)
	}
}

func TestAggregate_OrderIndependent(t *testing.T) {
	e := NewEngineWithSource(DefaultParameters(), rand.New(rand.NewSource(11)))
	results := e.Run(7420, 500)
	base := Aggregate("Optimal Policy", 7420, results)

	shuffled := append([]ScenarioResult(nil), results...)
	rand.New(rand.NewSource(3)).Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	got := Aggregate("Optimal Policy", 7420, shuffled)

	if math.Abs(got.AverageProfit-base.AverageProfit) > 1e-6 ||
		math.Abs(got.StdDevProfit-base.StdDevProfit) > 1e-6 ||
		got.MaxProfit != base.MaxProfit ||
		got.MinProfit != base.MinProfit ||
		got.SelloutPercentage != base.SelloutPercentage {
		t.Errorf("aggregate changed with order: %+v vs %+v", got, base)
	}
}

func TestCoefficientOfVariation(t *testing.T) {
	s := PolicyStatistics{AverageProfit: 200000, StdDevProfit: 20000}
	if got := s.CoefficientOfVariation(); got != 10 {
		t.Errorf("expected CV 10, got %v", got)
	}
	if got := (PolicyStatistics{StdDevProfit: 5}).CoefficientOfVariation(); got != 0 {
		t.Errorf("expected CV 0 for zero average, got %v", got)
	}
}

func TestProfitHistogram(t *testing.T) {
	e := NewEngineWithSource(DefaultParameters(), rand.New(rand.NewSource(2)))
	results := e.Run(7000, 600)
	bins := ProfitHistogram(results)
	if len(bins) != 15 {
		t.Fatalf("expected 15 bins for 600 trials, got %d", len(bins))
	}
	total := 0
	for _, b := range bins {
		total += b.Count
	}
	if total != 600 {
		t.Errorf("expected 600 counted trials, got %d", total)
	}
}
