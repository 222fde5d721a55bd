package simulation

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidParameters is returned when simulation parameters violate the model's domain.
var ErrInvalidParameters = errors.New("invalid simulation parameters")

// Parameters describes the single-period inventory problem.
type Parameters struct {
	Mean             float64 `json:"mean" yaml:"mean"`
	StdDev           float64 `json:"std_dev" yaml:"std_dev"`
	SalePrice        float64 `json:"sale_price" yaml:"sale_price"`
	Profit           float64 `json:"profit" yaml:"profit"`                       // margin per unit sold (Cu)
	LiquidationPrice float64 `json:"liquidation_price" yaml:"liquidation_price"` // salvage value per unsold unit
	PurchaseCost     float64 `json:"purchase_cost" yaml:"purchase_cost"`
	ExcessLoss       float64 `json:"excess_loss" yaml:"excess_loss"` // loss per unsold unit (Co)
}

// DefaultParameters returns the holiday tablet campaign used as the reference case.
func DefaultParameters() Parameters {
	return Parameters{
		Mean:             7000,
		StdDev:           800,
		SalePrice:        80,
		Profit:           35,
		LiquidationPrice: 20,
		PurchaseCost:     45,
		ExcessLoss:       15,
	}
}

// Validate checks the domain constraints of the model. The numeric core
// trusts its inputs, so boundaries call this before running anything.
func (p Parameters) Validate() error {
	for name, v := range map[string]float64{
		"mean":        p.Mean,
		"std_dev":     p.StdDev,
		"profit":      p.Profit,
		"excess_loss": p.ExcessLoss,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %s must be finite", ErrInvalidParameters, name)
		}
	}
	if p.Mean <= 0 {
		return fmt.Errorf("%w: mean must be > 0, got %v", ErrInvalidParameters, p.Mean)
	}
	if p.StdDev < 0 {
		return fmt.Errorf("%w: std_dev must be >= 0, got %v", ErrInvalidParameters, p.StdDev)
	}
	if p.Profit <= 0 {
		return fmt.Errorf("%w: profit must be > 0, got %v", ErrInvalidParameters, p.Profit)
	}
	// A zero overage cost pushes the critical ratio to 1, where the quantile diverges.
	if p.ExcessLoss <= 0 {
		return fmt.Errorf("%w: excess_loss must be > 0, got %v", ErrInvalidParameters, p.ExcessLoss)
	}
	return nil
}

// ScenarioResult is the outcome of a single Monte Carlo trial.
type ScenarioResult struct {
	SimulationNumber int     `json:"simulation_number"`
	RandomNumber     float64 `json:"random_number"`
	ZScore           float64 `json:"z_score"`
	Demand           int     `json:"demand"`
	UnitsSold        int     `json:"units_sold"`
	ExcessUnits      int     `json:"excess_units"`
	ShortageUnits    int     `json:"shortage_units"`
	Profit           float64 `json:"profit"`
}

// Policy is a named fixed order quantity.
type Policy struct {
	Name          string `json:"name"`
	OrderQuantity int    `json:"order_quantity"`
}

// PolicyRun holds every trial simulated for one policy, in draw order.
type PolicyRun struct {
	PolicyName    string           `json:"policy_name"`
	OrderQuantity int              `json:"order_quantity"`
	Results       []ScenarioResult `json:"results"`
}

// PolicyStatistics summarises a PolicyRun.
type PolicyStatistics struct {
	PolicyName        string  `json:"policy_name"`
	OrderQuantity     int     `json:"order_quantity"`
	AverageProfit     float64 `json:"average_profit"`
	AverageExcess     float64 `json:"average_excess"`
	AverageShortage   float64 `json:"average_shortage"`
	MaxProfit         float64 `json:"max_profit"`
	MinProfit         float64 `json:"min_profit"`
	StdDevProfit      float64 `json:"std_dev_profit"`
	SelloutPercentage float64 `json:"sellout_percentage"` // % of trials without shortage
	TotalSimulations  int     `json:"total_simulations"`
}

// CoefficientOfVariation returns the profit std-dev as a percentage of the
// average profit, or 0 when the average is zero or not finite.
func (s PolicyStatistics) CoefficientOfVariation() float64 {
	if s.AverageProfit == 0 || math.IsNaN(s.AverageProfit) || math.IsInf(s.AverageProfit, 0) {
		return 0
	}
	cv := s.StdDevProfit / s.AverageProfit * 100
	if math.IsNaN(cv) || math.IsInf(cv, 0) {
		return 0
	}
	return cv
}

// AnalyticalSolution is the closed-form newsvendor answer.
type AnalyticalSolution struct {
	Cu              float64 `json:"cu"`
	Co              float64 `json:"co"`
	CriticalRatio   float64 `json:"critical_ratio"`
	ZValue          float64 `json:"z_value"`
	OptimalQuantity int     `json:"optimal_quantity"`
}

// RandomNumberExample is one row of the demand generation walkthrough.
type RandomNumberExample struct {
	Index         int     `json:"index"`
	RandomUniform float64 `json:"random_uniform"`
	ZScore        float64 `json:"z_score"`
	Demand        int     `json:"demand"`
}
