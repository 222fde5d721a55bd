package mcp

import (
	"newsvendor-mcp/internal/simulation"

	"github.com/google/jsonschema-go/jsonschema"
	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog/log"
)

const strictGuardrail = "STRICT GUARDRAIL: DO NOT invent simulation figures. If this tool fails, report the error to the user instead of estimating results yourself."

func (s *Server) registerTools(server *mcpsdk.Server) {
	maxSims := float64(s.cfg.MaxSimulations)
	maxSeed := float64(simulation.MaxSeed)

	mcpsdk.AddTool(server, &mcpsdk.Tool{
		Name: "solve_analytical",
		Description: "Compute the closed-form newsvendor solution: underage cost Cu, overage cost Co, the critical ratio Cu/(Cu+Co), its standard normal z value and the optimal order quantity Q* = mean + z*std_dev. " +
			"Omitted parameters use the configured campaign.",
		InputSchema: inputSchema[SolveInput](nil),
	}, s.handleSolve)

	mcpsdk.AddTool(server, &mcpsdk.Tool{
		Name:        "calculate_profit",
		Description: "Evaluate the profit function for one demand value and order quantity: units sold, excess units, shortage units and profit.",
		InputSchema: inputSchema[ProfitInput](nil),
	}, s.handleCalculateProfit)

	mcpsdk.AddTool(server, &mcpsdk.Tool{
		Name: "generate_random_examples",
		Description: "Generate demand samples with the Box-Muller transform, showing the uniform random number, the z-score and the rounded demand of each draw. " +
			"With a seed the uniform numbers follow a fixed linear congruential sequence.",
		InputSchema: inputSchema[ExamplesInput](func(sc *jsonschema.Schema) {
			bound(sc, "count", 1, maxSims)
			bound(sc, "seed", 0, maxSeed)
		}),
	}, s.handleRandomExamples)

	mcpsdk.AddTool(server, &mcpsdk.Tool{
		Name: "run_simulation",
		Description: "Run a Monte-Carlo simulation of one order quantity against normally distributed demand. Returns a run_id, summary statistics (average/min/max profit, std dev, sellout percentage), a profit histogram and the first page of trials. \n\n" +
			"Use 'get_simulation_results' with the run_id to page through the remaining trials.\n" + strictGuardrail,
		InputSchema: inputSchema[SimulationInput](func(sc *jsonschema.Schema) {
			bound(sc, "order_quantity", 1, 0)
			bound(sc, "num_simulations", 0, maxSims)
			bound(sc, "seed", 0, maxSeed)
			bound(sc, "page_size", 0, maxSims)
			enum(sc, "seed_mode", "legacy", "reproducible")
		}),
	}, s.handleRunSimulation)

	mcpsdk.AddTool(server, &mcpsdk.Tool{
		Name: "compare_policies",
		Description: "Simulate the two fixed order policies and the analytical optimal policy with the same number of trials, then report the statistics of each, the policy with the best average profit and the most stable policy (lowest non-zero profit std dev). \n\n" +
			strictGuardrail,
		InputSchema: inputSchema[CompareInput](func(sc *jsonschema.Schema) {
			bound(sc, "num_simulations", 0, maxSims)
			bound(sc, "seed", 0, maxSeed)
			bound(sc, "policy_1_quantity", 1, 0)
			bound(sc, "policy_2_quantity", 1, 0)
			enum(sc, "seed_mode", "legacy", "reproducible")
		}),
	}, s.handleComparePolicies)

	mcpsdk.AddTool(server, &mcpsdk.Tool{
		Name:        "get_simulation_results",
		Description: "Page through the individual trials of a previous 'run_simulation' or 'compare_policies' run.",
		InputSchema: inputSchema[ResultsInput](func(sc *jsonschema.Schema) {
			bound(sc, "offset", 0, 0)
			bound(sc, "limit", 0, maxSims)
		}),
	}, s.handleGetResults)

	mcpsdk.AddTool(server, &mcpsdk.Tool{
		Name:        "list_simulation_runs",
		Description: "List stored simulation runs with their summary statistics.",
		InputSchema: inputSchema[ListRunsInput](nil),
	}, s.handleListRuns)
}

// inputSchema infers the JSON schema of T and lets tweak add constraints.
func inputSchema[T any](tweak func(*jsonschema.Schema)) *jsonschema.Schema {
	sc, err := jsonschema.For[T](nil)
	if err != nil {
		// Only reachable for unsupported Go types in the input structs.
		log.Fatal().Err(err).Msg("Failed to infer tool input schema")
	}
	if tweak != nil {
		tweak(sc)
	}
	return sc
}

// bound sets an inclusive minimum and, when hi > lo, a maximum on a property.
func bound(sc *jsonschema.Schema, prop string, lo, hi float64) {
	p, ok := sc.Properties[prop]
	if !ok {
		return
	}
	p.Minimum = &lo
	if hi > lo {
		p.Maximum = &hi
	}
}

func enum(sc *jsonschema.Schema, prop string, values ...string) {
	p, ok := sc.Properties[prop]
	if !ok {
		return
	}
	for _, v := range values {
		p.Enum = append(p.Enum, v)
	}
}
