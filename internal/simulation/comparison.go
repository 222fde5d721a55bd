package simulation

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// Default fixed order quantities compared against the analytical policy.
const (
	DefaultPolicy1Quantity = 7000
	DefaultPolicy2Quantity = 6800
)

// Comparison is the side-by-side evaluation of several policies.
type Comparison struct {
	Analytical AnalyticalSolution `json:"analytical"`
	Runs       []PolicyRun        `json:"-"`
	Statistics []PolicyStatistics `json:"statistics"`
	BestPolicy string             `json:"best_policy"`
	MostStable string             `json:"most_stable"`
}

// CompareOptions tunes Compare.
type CompareOptions struct {
	// Seed, if set, runs every policy on the seeded path with seed+index.
	Seed     *int64
	SeedMode SeedMode
	// NewSource builds the uniform source for policy i. Defaults to a
	// time-seeded generator.
	NewSource func(i int) Source
	// OnPolicyDone is called after each policy finishes. It may be called
	// concurrently.
	OnPolicyDone func(PolicyStatistics)
}

// DefaultPolicies returns the two fixed policies plus the analytical one.
// A non-positive analytical quantity falls back to the first policy's.
func DefaultPolicies(solution AnalyticalSolution, policy1Q, policy2Q int) []Policy {
	optimal := solution.OptimalQuantity
	if optimal <= 0 {
		optimal = policy1Q
	}
	return []Policy{
		{Name: "Policy 1", OrderQuantity: policy1Q},
		{Name: "Policy 2", OrderQuantity: policy2Q},
		{Name: "Optimal Policy", OrderQuantity: optimal},
	}
}

// ErrSeedOutOfRange is returned when a seed is negative or above MaxSeed.
var ErrSeedOutOfRange = errors.New("seed out of range")

// ValidateSeed checks that seed lies in [0, MaxSeed].
func ValidateSeed(seed int64) error {
	if seed < 0 || seed > MaxSeed {
		return fmt.Errorf("%w: must be within [0, %d], got %d", ErrSeedOutOfRange, MaxSeed, seed)
	}
	return nil
}

// Compare simulates n trials for every policy. Policies are independent and
// run concurrently, each on its own engine.
func Compare(ctx context.Context, params Parameters, policies []Policy, n int, opts CompareOptions) (*Comparison, error) {
	if opts.Seed != nil {
		if err := ValidateSeed(*opts.Seed); err != nil {
			return nil, err
		}
	}

	newSource := opts.NewSource
	if newSource == nil {
		base := time.Now().UnixNano()
		newSource = func(i int) Source {
			return rand.New(rand.NewSource(base + int64(i)))
		}
	}

	runs := make([]PolicyRun, len(policies))
	statistics := make([]PolicyStatistics, len(policies))

	g, gctx := errgroup.WithContext(ctx)
	for i, policy := range policies {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			engine := NewEngineWithSource(params, newSource(i))
			engine.SetSeedMode(opts.SeedMode)

			var seed *int64
			if opts.Seed != nil {
				s := *opts.Seed + int64(i)
				seed = &s
			}

			runs[i] = engine.RunPolicy(policy, n, seed)
			statistics[i] = AggregateRun(runs[i])

			log.Debug().
				Str("policy", policy.Name).
				Int("orderQuantity", policy.OrderQuantity).
				Float64("averageProfit", statistics[i].AverageProfit).
				Msg("Policy simulation finished")

			if opts.OnPolicyDone != nil {
				opts.OnPolicyDone(statistics[i])
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &Comparison{
		Analytical: Solve(params),
		Runs:       runs,
		Statistics: statistics,
		BestPolicy: BestPolicy(statistics),
		MostStable: MostStable(statistics),
	}, nil
}

// BestPolicy returns the name of the policy with the highest average profit.
// Non-finite averages are ignored; the first policy wins ties.
func BestPolicy(all []PolicyStatistics) string {
	best := -1
	for i, s := range all {
		if math.IsNaN(s.AverageProfit) || math.IsInf(s.AverageProfit, 0) {
			continue
		}
		if best == -1 || s.AverageProfit > all[best].AverageProfit {
			best = i
		}
	}
	if best == -1 {
		if len(all) == 0 {
			return ""
		}
		return all[0].PolicyName
	}
	return all[best].PolicyName
}

// MostStable returns the name of the policy with the lowest profit std-dev.
// A zero std-dev ranks as infinitely unstable, so a policy that never varies
// only wins when every policy is constant. The first policy wins ties.
func MostStable(all []PolicyStatistics) string {
	if len(all) == 0 {
		return ""
	}
	rank := func(s PolicyStatistics) float64 {
		if s.StdDevProfit == 0 || math.IsNaN(s.StdDevProfit) {
			return math.Inf(1)
		}
		return s.StdDevProfit
	}
	stable := 0
	for i := 1; i < len(all); i++ {
		if rank(all[i]) < rank(all[stable]) {
			stable = i
		}
	}
	return all[stable].PolicyName
}
