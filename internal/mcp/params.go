package mcp

import (
	"fmt"

	"newsvendor-mcp/internal/simulation"
)

// resolveParams applies overrides to the configured parameters and validates
// the result.
func (s *Server) resolveParams(o *ParameterOverrides) (simulation.Parameters, error) {
	p := s.cfg.Params
	if o != nil {
		override(&p.Mean, o.Mean)
		override(&p.StdDev, o.StdDev)
		override(&p.SalePrice, o.SalePrice)
		override(&p.Profit, o.Profit)
		override(&p.LiquidationPrice, o.LiquidationPrice)
		override(&p.PurchaseCost, o.PurchaseCost)
		override(&p.ExcessLoss, o.ExcessLoss)
	}
	if err := p.Validate(); err != nil {
		return simulation.Parameters{}, err
	}
	return p, nil
}

func override(dst *float64, v *float64) {
	if v != nil {
		*dst = *v
	}
}

func (s *Server) resolveSimulations(n *int) (int, error) {
	if n == nil {
		return s.cfg.DefaultSimulations, nil
	}
	if *n < 0 || *n > s.cfg.MaxSimulations {
		return 0, fmt.Errorf("num_simulations must be within [0, %d], got %d", s.cfg.MaxSimulations, *n)
	}
	return *n, nil
}

func (s *Server) resolveSeedMode(mode string) (simulation.SeedMode, error) {
	if mode == "" {
		return s.cfg.SeedMode, nil
	}
	return simulation.ParseSeedMode(mode)
}

func validateSeed(seed *int64) error {
	if seed == nil {
		return nil
	}
	return simulation.ValidateSeed(*seed)
}
