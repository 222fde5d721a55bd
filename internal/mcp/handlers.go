package mcp

import (
	"context"
	"fmt"
	"math"
	"time"

	"newsvendor-mcp/internal/runstore"
	"newsvendor-mcp/internal/simulation"
	"newsvendor-mcp/internal/stats"
	"newsvendor-mcp/internal/visuals"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog/log"
)

// defaultPageSize is the number of trials returned inline by run_simulation.
const defaultPageSize = 10

// ParameterOverrides replaces individual configured parameters.
type ParameterOverrides struct {
	Mean             *float64 `json:"mean,omitempty" jsonschema:"Mean demand (must be > 0)"`
	StdDev           *float64 `json:"std_dev,omitempty" jsonschema:"Demand standard deviation (must be >= 0)"`
	SalePrice        *float64 `json:"sale_price,omitempty" jsonschema:"Unit sale price"`
	Profit           *float64 `json:"profit,omitempty" jsonschema:"Profit per unit sold, the underage cost Cu (must be > 0)"`
	LiquidationPrice *float64 `json:"liquidation_price,omitempty" jsonschema:"Salvage price per unsold unit"`
	PurchaseCost     *float64 `json:"purchase_cost,omitempty" jsonschema:"Unit purchase cost"`
	ExcessLoss       *float64 `json:"excess_loss,omitempty" jsonschema:"Loss per unsold unit, the overage cost Co (must be > 0)"`
}

// SolveInput is the input of solve_analytical.
type SolveInput struct {
	Parameters *ParameterOverrides `json:"parameters,omitempty" jsonschema:"Optional parameter overrides"`
}

// SolveOutput is the analytical solution and its service level.
type SolveOutput struct {
	Parameters         simulation.Parameters         `json:"parameters"`
	Solution           simulation.AnalyticalSolution `json:"solution"`
	ServiceLevel       float64                       `json:"service_level"`
	DifferenceFromMean int                           `json:"difference_from_mean"`
}

// ProfitInput is the input of calculate_profit.
type ProfitInput struct {
	Parameters    *ParameterOverrides `json:"parameters,omitempty" jsonschema:"Optional parameter overrides"`
	Demand        int                 `json:"demand" jsonschema:"Realised demand in units"`
	OrderQuantity int                 `json:"order_quantity" jsonschema:"Units ordered"`
}

// ExamplesInput is the input of generate_random_examples.
type ExamplesInput struct {
	Parameters *ParameterOverrides `json:"parameters,omitempty" jsonschema:"Optional parameter overrides"`
	Count      *int                `json:"count,omitempty" jsonschema:"Number of draws (default 10)"`
	Seed       *int64              `json:"seed,omitempty" jsonschema:"Optional non-negative seed for the uniform sequence"`
}

// ExamplesOutput lists the generated demand draws.
type ExamplesOutput struct {
	Examples []simulation.RandomNumberExample `json:"examples"`
}

// SimulationInput is the input of run_simulation.
type SimulationInput struct {
	Parameters     *ParameterOverrides `json:"parameters,omitempty" jsonschema:"Optional parameter overrides"`
	PolicyName     string              `json:"policy_name,omitempty" jsonschema:"Label for the run (default: Q=<order_quantity>)"`
	OrderQuantity  int                 `json:"order_quantity" jsonschema:"Units ordered (> 0)"`
	NumSimulations *int                `json:"num_simulations,omitempty" jsonschema:"Number of trials (default from configuration)"`
	Seed           *int64              `json:"seed,omitempty" jsonschema:"Optional non-negative seed for the uniform sequence"`
	SeedMode       string              `json:"seed_mode,omitempty" jsonschema:"'legacy' seeds only the uniform sample, 'reproducible' makes the whole run repeatable"`
	PageSize       *int                `json:"page_size,omitempty" jsonschema:"Trials returned inline (default 10)"`
}

// SimulationOutput summarises a stored run and carries its first page of trials.
type SimulationOutput struct {
	RunID                  string                      `json:"run_id"`
	Statistics             simulation.PolicyStatistics `json:"statistics"`
	CoefficientOfVariation float64                     `json:"coefficient_of_variation"`
	ServiceLevel           float64                     `json:"service_level"`
	Histogram              []stats.HistogramBin        `json:"histogram"`
	Page                   runstore.Page               `json:"page"`
	VisualHistogram        string                      `json:"visual_profit_histogram,omitempty"`
	VisualSellout          string                      `json:"visual_sellout_pie,omitempty"`
}

// CompareInput is the input of compare_policies.
type CompareInput struct {
	Parameters      *ParameterOverrides `json:"parameters,omitempty" jsonschema:"Optional parameter overrides"`
	NumSimulations  *int                `json:"num_simulations,omitempty" jsonschema:"Trials per policy (default from configuration)"`
	Seed            *int64              `json:"seed,omitempty" jsonschema:"Optional non-negative seed; policy i uses seed+i"`
	SeedMode        string              `json:"seed_mode,omitempty" jsonschema:"'legacy' or 'reproducible'"`
	Policy1Quantity *int                `json:"policy_1_quantity,omitempty" jsonschema:"Order quantity of the first fixed policy"`
	Policy2Quantity *int                `json:"policy_2_quantity,omitempty" jsonschema:"Order quantity of the second fixed policy"`
}

// PolicySummary is one compared policy and the ID of its stored run.
type PolicySummary struct {
	RunID                  string                      `json:"run_id"`
	Statistics             simulation.PolicyStatistics `json:"statistics"`
	CoefficientOfVariation float64                     `json:"coefficient_of_variation"`
}

// CompareOutput is the result of compare_policies.
type CompareOutput struct {
	Analytical simulation.AnalyticalSolution `json:"analytical"`
	Policies   []PolicySummary               `json:"policies"`
	BestPolicy string                        `json:"best_policy"`
	MostStable string                        `json:"most_stable"`
	Visual     string                        `json:"visual_policy_comparison,omitempty"`
}

// ResultsInput selects a page of a stored run.
type ResultsInput struct {
	RunID  string `json:"run_id" jsonschema:"Run ID returned by run_simulation or compare_policies"`
	Offset int    `json:"offset,omitempty" jsonschema:"Index of the first trial (0-based)"`
	Limit  *int   `json:"limit,omitempty" jsonschema:"Maximum trials to return (default 20, 0 for all)"`
}

// ListRunsInput is the empty input of list_simulation_runs.
type ListRunsInput struct{}

// RunSummary describes a stored run without its trials.
type RunSummary struct {
	RunID      string                      `json:"run_id"`
	CreatedAt  string                      `json:"created_at"`
	Statistics simulation.PolicyStatistics `json:"statistics"`
}

// ListRunsOutput lists stored runs, oldest first.
type ListRunsOutput struct {
	Runs []RunSummary `json:"runs"`
}

func (s *Server) handleSolve(ctx context.Context, req *mcpsdk.CallToolRequest, in SolveInput) (*mcpsdk.CallToolResult, SolveOutput, error) {
	params, err := s.resolveParams(in.Parameters)
	if err != nil {
		return nil, SolveOutput{}, err
	}

	sol := simulation.Solve(params)
	return nil, SolveOutput{
		Parameters:         params,
		Solution:           sol,
		ServiceLevel:       simulation.ServiceLevel(params, sol.OptimalQuantity),
		DifferenceFromMean: sol.OptimalQuantity - int(math.Round(params.Mean)),
	}, nil
}

func (s *Server) handleCalculateProfit(ctx context.Context, req *mcpsdk.CallToolRequest, in ProfitInput) (*mcpsdk.CallToolResult, simulation.Outcome, error) {
	params, err := s.resolveParams(in.Parameters)
	if err != nil {
		return nil, simulation.Outcome{}, err
	}
	return nil, simulation.CalculateProfit(in.Demand, in.OrderQuantity, params), nil
}

func (s *Server) handleRandomExamples(ctx context.Context, req *mcpsdk.CallToolRequest, in ExamplesInput) (*mcpsdk.CallToolResult, ExamplesOutput, error) {
	params, err := s.resolveParams(in.Parameters)
	if err != nil {
		return nil, ExamplesOutput{}, err
	}

	count := simulation.DefaultExampleCount
	if in.Count != nil {
		count = *in.Count
	}
	if count < 1 || count > s.cfg.MaxSimulations {
		return nil, ExamplesOutput{}, fmt.Errorf("count must be within [1, %d], got %d", s.cfg.MaxSimulations, count)
	}
	if err := validateSeed(in.Seed); err != nil {
		return nil, ExamplesOutput{}, err
	}

	return nil, ExamplesOutput{
		Examples: simulation.RandomExamples(s.newSource(0), params, count, in.Seed),
	}, nil
}

func (s *Server) handleRunSimulation(ctx context.Context, req *mcpsdk.CallToolRequest, in SimulationInput) (*mcpsdk.CallToolResult, SimulationOutput, error) {
	params, err := s.resolveParams(in.Parameters)
	if err != nil {
		return nil, SimulationOutput{}, err
	}
	if in.OrderQuantity <= 0 {
		return nil, SimulationOutput{}, fmt.Errorf("order_quantity must be > 0, got %d", in.OrderQuantity)
	}
	n, err := s.resolveSimulations(in.NumSimulations)
	if err != nil {
		return nil, SimulationOutput{}, err
	}
	if err := validateSeed(in.Seed); err != nil {
		return nil, SimulationOutput{}, err
	}
	mode, err := s.resolveSeedMode(in.SeedMode)
	if err != nil {
		return nil, SimulationOutput{}, err
	}

	name := in.PolicyName
	if name == "" {
		name = fmt.Sprintf("Q=%d", in.OrderQuantity)
	}

	engine := simulation.NewEngineWithSource(params, s.newSource(0))
	engine.SetSeedMode(mode)
	run := engine.RunPolicy(simulation.Policy{Name: name, OrderQuantity: in.OrderQuantity}, n, in.Seed)

	rec := s.store.Put(run, in.Seed, mode)
	s.persist()

	pageSize := defaultPageSize
	if in.PageSize != nil {
		pageSize = *in.PageSize
	}
	page := runstore.Page{RunID: rec.ID, Total: len(run.Results), Results: []simulation.ScenarioResult{}}
	if pageSize > 0 {
		if page, err = s.store.Page(rec.ID, 0, pageSize); err != nil {
			return nil, SimulationOutput{}, err
		}
	} else {
		page.HasMore = page.Total > 0
	}

	log.Info().
		Str("runId", rec.ID).
		Str("policy", name).
		Int("orderQuantity", in.OrderQuantity).
		Int("trials", n).
		Float64("averageProfit", rec.Stats.AverageProfit).
		Msg("Simulation completed")

	hist := simulation.ProfitHistogram(run.Results)
	if hist == nil {
		hist = []stats.HistogramBin{}
	}

	return nil, SimulationOutput{
		RunID:                  rec.ID,
		Statistics:             rec.Stats,
		CoefficientOfVariation: rec.Stats.CoefficientOfVariation(),
		ServiceLevel:           simulation.ServiceLevel(params, in.OrderQuantity),
		Histogram:              hist,
		Page:                   page,
		VisualHistogram:        visuals.GenerateProfitHistogram(hist, name),
		VisualSellout:          visuals.GenerateSelloutPie(rec.Stats),
	}, nil
}

func (s *Server) handleComparePolicies(ctx context.Context, req *mcpsdk.CallToolRequest, in CompareInput) (*mcpsdk.CallToolResult, CompareOutput, error) {
	params, err := s.resolveParams(in.Parameters)
	if err != nil {
		return nil, CompareOutput{}, err
	}
	n, err := s.resolveSimulations(in.NumSimulations)
	if err != nil {
		return nil, CompareOutput{}, err
	}
	if err := validateSeed(in.Seed); err != nil {
		return nil, CompareOutput{}, err
	}
	mode, err := s.resolveSeedMode(in.SeedMode)
	if err != nil {
		return nil, CompareOutput{}, err
	}

	q1, q2 := s.cfg.Policy1Quantity, s.cfg.Policy2Quantity
	if in.Policy1Quantity != nil {
		q1 = *in.Policy1Quantity
	}
	if in.Policy2Quantity != nil {
		q2 = *in.Policy2Quantity
	}
	if q1 <= 0 || q2 <= 0 {
		return nil, CompareOutput{}, fmt.Errorf("policy quantities must be > 0, got %d and %d", q1, q2)
	}

	policies := simulation.DefaultPolicies(simulation.Solve(params), q1, q2)
	cmp, err := simulation.Compare(ctx, params, policies, n, simulation.CompareOptions{
		Seed:      in.Seed,
		SeedMode:  mode,
		NewSource: s.newSource,
	})
	if err != nil {
		return nil, CompareOutput{}, fmt.Errorf("policy comparison failed: %w", err)
	}

	out := CompareOutput{
		Analytical: cmp.Analytical,
		BestPolicy: cmp.BestPolicy,
		MostStable: cmp.MostStable,
		Visual:     visuals.GeneratePolicyComparison(cmp.Statistics),
	}
	for i, run := range cmp.Runs {
		var seed *int64
		if in.Seed != nil {
			v := *in.Seed + int64(i)
			seed = &v
		}
		rec := s.store.Put(run, seed, mode)
		out.Policies = append(out.Policies, PolicySummary{
			RunID:                  rec.ID,
			Statistics:             cmp.Statistics[i],
			CoefficientOfVariation: cmp.Statistics[i].CoefficientOfVariation(),
		})
	}
	s.persist()

	log.Info().
		Int("policies", len(policies)).
		Int("trials", n).
		Str("best", cmp.BestPolicy).
		Str("mostStable", cmp.MostStable).
		Msg("Policy comparison completed")

	return nil, out, nil
}

func (s *Server) handleGetResults(ctx context.Context, req *mcpsdk.CallToolRequest, in ResultsInput) (*mcpsdk.CallToolResult, runstore.Page, error) {
	limit := 20
	if in.Limit != nil {
		limit = *in.Limit
	}
	page, err := s.store.Page(in.RunID, in.Offset, limit)
	if err != nil {
		return nil, runstore.Page{}, err
	}
	return nil, page, nil
}

func (s *Server) handleListRuns(ctx context.Context, req *mcpsdk.CallToolRequest, in ListRunsInput) (*mcpsdk.CallToolResult, ListRunsOutput, error) {
	out := ListRunsOutput{Runs: []RunSummary{}}
	for _, sum := range s.store.List() {
		out.Runs = append(out.Runs, RunSummary{
			RunID:      sum.ID,
			CreatedAt:  sum.CreatedAt.Format(time.RFC3339),
			Statistics: sum.Stats,
		})
	}
	return nil, out, nil
}
