package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"os"
	"time"

	"newsvendor-mcp/internal/simulation"
	"newsvendor-mcp/internal/stats"

	"github.com/rs/zerolog/log"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var (
	orderQuantity  int
	trials         int
	seed           int64
	seedMode       string
	policyName     string
	includeResults bool
	policy1Q       int
	policy2Q       int
	exampleCount   int
)

var solveCmd = &cobra.Command{
	Use:   "solve",
	Short: "Print the analytical newsvendor solution",
	RunE: func(cmd *cobra.Command, args []string) error {
		sol := simulation.Solve(cfg.Params)
		return writeJSON(cmd.OutOrStdout(), map[string]any{
			"parameters":    cfg.Params,
			"solution":      sol,
			"service_level": simulation.ServiceLevel(cfg.Params, sol.OptimalQuantity),
		})
	},
}

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Simulate one order quantity",
	RunE: func(cmd *cobra.Command, args []string) error {
		if orderQuantity <= 0 {
			return fmt.Errorf("--quantity must be > 0, got %d", orderQuantity)
		}
		n, err := resolveTrials(cmd)
		if err != nil {
			return err
		}
		mode, err := resolveSeedMode()
		if err != nil {
			return err
		}
		seedPtr, err := seedFlag(cmd)
		if err != nil {
			return err
		}

		name := policyName
		if name == "" {
			name = fmt.Sprintf("Q=%d", orderQuantity)
		}

		engine := simulation.NewEngine(cfg.Params)
		engine.SetSeedMode(mode)
		run := engine.RunPolicy(simulation.Policy{Name: name, OrderQuantity: orderQuantity}, n, seedPtr)
		st := simulation.AggregateRun(run)

		log.Info().
			Str("policy", name).
			Int("trials", n).
			Float64("averageProfit", st.AverageProfit).
			Msg("Simulation completed")

		out := struct {
			Statistics   simulation.PolicyStatistics `json:"statistics"`
			ServiceLevel float64                     `json:"service_level"`
			Histogram    []stats.HistogramBin        `json:"histogram"`
			Results      []simulation.ScenarioResult `json:"results,omitempty"`
		}{
			Statistics:   st,
			ServiceLevel: simulation.ServiceLevel(cfg.Params, orderQuantity),
			Histogram:    simulation.ProfitHistogram(run.Results),
		}
		if includeResults {
			out.Results = run.Results
		}
		return writeJSON(cmd.OutOrStdout(), out)
	},
}

var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Compare the fixed policies with the analytical optimum",
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := resolveTrials(cmd)
		if err != nil {
			return err
		}
		mode, err := resolveSeedMode()
		if err != nil {
			return err
		}
		seedPtr, err := seedFlag(cmd)
		if err != nil {
			return err
		}

		q1, q2 := cfg.Policy1Quantity, cfg.Policy2Quantity
		if cmd.Flags().Changed("policy1") {
			q1 = policy1Q
		}
		if cmd.Flags().Changed("policy2") {
			q2 = policy2Q
		}
		if q1 <= 0 || q2 <= 0 {
			return fmt.Errorf("policy quantities must be > 0, got %d and %d", q1, q2)
		}

		policies := simulation.DefaultPolicies(simulation.Solve(cfg.Params), q1, q2)
		bar := progressbar.NewOptions(len(policies),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionSetDescription("simulating policies"),
			progressbar.OptionClearOnFinish(),
		)

		cmp, err := simulation.Compare(cmd.Context(), cfg.Params, policies, n, simulation.CompareOptions{
			Seed:     seedPtr,
			SeedMode: mode,
			OnPolicyDone: func(simulation.PolicyStatistics) {
				_ = bar.Add(1)
			},
		})
		if err != nil {
			return err
		}
		_ = bar.Finish()

		return writeJSON(cmd.OutOrStdout(), cmp)
	},
}

var examplesCmd = &cobra.Command{
	Use:   "examples",
	Short: "Show Box-Muller demand draws step by step",
	RunE: func(cmd *cobra.Command, args []string) error {
		if exampleCount < 1 || exampleCount > cfg.MaxSimulations {
			return fmt.Errorf("--count must be within [1, %d], got %d", cfg.MaxSimulations, exampleCount)
		}
		seedPtr, err := seedFlag(cmd)
		if err != nil {
			return err
		}

		src := rand.New(rand.NewSource(time.Now().UnixNano()))
		return writeJSON(cmd.OutOrStdout(), simulation.RandomExamples(src, cfg.Params, exampleCount, seedPtr))
	},
}

func resolveTrials(cmd *cobra.Command) (int, error) {
	if !cmd.Flags().Changed("trials") {
		return cfg.DefaultSimulations, nil
	}
	if trials < 0 || trials > cfg.MaxSimulations {
		return 0, fmt.Errorf("--trials must be within [0, %d], got %d", cfg.MaxSimulations, trials)
	}
	return trials, nil
}

func resolveSeedMode() (simulation.SeedMode, error) {
	if seedMode == "" {
		return cfg.SeedMode, nil
	}
	return simulation.ParseSeedMode(seedMode)
}

func seedFlag(cmd *cobra.Command) (*int64, error) {
	if !cmd.Flags().Changed("seed") {
		return nil, nil
	}
	if err := simulation.ValidateSeed(seed); err != nil {
		return nil, fmt.Errorf("--seed: %w", err)
	}
	s := seed
	return &s, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func init() {
	for _, c := range []*cobra.Command{simulateCmd, compareCmd, examplesCmd} {
		c.Flags().Int64Var(&seed, "seed", 0, "non-negative seed for the uniform sequence")
	}
	for _, c := range []*cobra.Command{simulateCmd, compareCmd} {
		c.Flags().IntVarP(&trials, "trials", "n", 0, "number of trials (default from configuration)")
		c.Flags().StringVar(&seedMode, "seed-mode", "", "seed mode: legacy or reproducible (default from configuration)")
	}

	simulateCmd.Flags().IntVarP(&orderQuantity, "quantity", "q", 0, "order quantity to simulate")
	simulateCmd.Flags().StringVar(&policyName, "name", "", "label for the run")
	simulateCmd.Flags().BoolVar(&includeResults, "results", false, "include every trial in the output")
	_ = simulateCmd.MarkFlagRequired("quantity")

	compareCmd.Flags().IntVar(&policy1Q, "policy1", 0, "order quantity of Policy 1 (default from configuration)")
	compareCmd.Flags().IntVar(&policy2Q, "policy2", 0, "order quantity of Policy 2 (default from configuration)")

	examplesCmd.Flags().IntVar(&exampleCount, "count", simulation.DefaultExampleCount, "number of draws")
}
