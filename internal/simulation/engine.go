package simulation

import (
	"fmt"
	"math/rand"
	"time"
)

// LCG constants of the seeded uniform sequence.
const (
	lcgMultiplier = 9301
	lcgIncrement  = 49297
	lcgModulus    = 233280
)

// MaxSeed is the largest accepted seed. Larger integers do not survive a
// round trip through JSON numbers.
const MaxSeed int64 = 1 << 53

// SeedMode controls where the Box-Muller angle comes from in seeded runs.
type SeedMode string

const (
	// SeedModeLegacy seeds only the radius sample; the angle is drawn from
	// the engine's own source, so repeated seeded runs differ in demand.
	SeedModeLegacy SeedMode = "legacy"
	// SeedModeReproducible draws the angle from a generator seeded with the
	// run seed, so a seed fully determines the run.
	SeedModeReproducible SeedMode = "reproducible"
)

// ParseSeedMode converts a configuration string into a SeedMode. An empty
// string selects SeedModeLegacy.
func ParseSeedMode(s string) (SeedMode, error) {
	switch SeedMode(s) {
	case "", SeedModeLegacy:
		return SeedModeLegacy, nil
	case SeedModeReproducible:
		return SeedModeReproducible, nil
	default:
		return "", fmt.Errorf("unknown seed mode %q (want %q or %q)", s, SeedModeLegacy, SeedModeReproducible)
	}
}

// Engine performs the Monte-Carlo simulation for one set of parameters.
// An Engine is not safe for concurrent use.
type Engine struct {
	params Parameters
	rng    Source
	mode   SeedMode
}

// NewEngine creates an engine backed by a time-seeded generator.
func NewEngine(params Parameters) *Engine {
	return NewEngineWithSource(params, rand.New(rand.NewSource(time.Now().UnixNano())))
}

// NewEngineWithSource creates an engine drawing uniform samples from src.
func NewEngineWithSource(params Parameters, src Source) *Engine {
	return &Engine{
		params: params,
		rng:    src,
		mode:   SeedModeLegacy,
	}
}

// SetSeed replaces the engine's source with a generator seeded by seed.
func (e *Engine) SetSeed(seed int64) {
	e.rng = rand.New(rand.NewSource(seed))
}

// SetSeedMode selects how RunSeeded draws the Box-Muller angle.
func (e *Engine) SetSeedMode(mode SeedMode) {
	e.mode = mode
}

// Params returns the parameters the engine simulates.
func (e *Engine) Params() Parameters {
	return e.params
}

// Run simulates n trials for orderQuantity using the engine's source.
func (e *Engine) Run(orderQuantity, n int) []ScenarioResult {
	results := make([]ScenarioResult, 0, max(n, 0))
	for i := 0; i < n; i++ {
		draw := GenerateDemand(e.rng, e.params.Mean, e.params.StdDev)
		results = append(results, e.scenario(i+1, draw, orderQuantity))
	}
	return results
}

// RunSeeded simulates n trials whose radius samples follow the linear
// congruential sequence started at seed. seed must be non-negative.
func (e *Engine) RunSeeded(orderQuantity, n int, seed int64) []ScenarioResult {
	angles := e.rng
	if e.mode == SeedModeReproducible {
		angles = rand.New(rand.NewSource(seed))
	}

	seq := NewLCG(seed)
	results := make([]ScenarioResult, 0, max(n, 0))
	for i := 0; i < n; i++ {
		draw := GenerateDemandFromUniform(angles, e.params.Mean, e.params.StdDev, seq.Next())
		results = append(results, e.scenario(i+1, draw, orderQuantity))
	}
	return results
}

// RunPolicy simulates n trials for policy. A nil seed selects the unseeded path.
func (e *Engine) RunPolicy(policy Policy, n int, seed *int64) PolicyRun {
	var results []ScenarioResult
	if seed != nil {
		results = e.RunSeeded(policy.OrderQuantity, n, *seed)
	} else {
		results = e.Run(policy.OrderQuantity, n)
	}
	return PolicyRun{
		PolicyName:    policy.Name,
		OrderQuantity: policy.OrderQuantity,
		Results:       results,
	}
}

func (e *Engine) scenario(number int, draw DemandDraw, orderQuantity int) ScenarioResult {
	outcome := CalculateProfit(draw.Demand, orderQuantity, e.params)
	return ScenarioResult{
		SimulationNumber: number,
		RandomNumber:     draw.Uniform,
		ZScore:           draw.ZScore,
		Demand:           draw.Demand,
		UnitsSold:        outcome.UnitsSold,
		ExcessUnits:      outcome.ExcessUnits,
		ShortageUnits:    outcome.ShortageUnits,
		Profit:           outcome.Profit,
	}
}

// LCG is the linear congruential generator behind seeded runs:
// state = (state*9301 + 49297) mod 233280, u = state/233280.
type LCG struct {
	state int64
}

// NewLCG starts a sequence at seed. The state is kept reduced modulo
// 233280 so state*9301 never overflows.
func NewLCG(seed int64) *LCG {
	state := seed % lcgModulus
	if state < 0 {
		state += lcgModulus
	}
	return &LCG{state: state}
}

// Next advances the sequence and returns the next uniform in [0, 1).
func (l *LCG) Next() float64 {
	l.state = (l.state*lcgMultiplier + lcgIncrement) % lcgModulus
	return float64(l.state) / lcgModulus
}
