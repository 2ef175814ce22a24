package catalog

import (
	"fmt"

	"github.com/yourusername/refinery/internal/solver"
)

// RegisterBuiltins installs the stock scalar collaborators:
//
//	seeds/counter, seeds/random, tension/scalar, transition/additive,
//	transition/scaled, patterns/fingerprint, operators/uuid,
//	operators/counter.
func RegisterBuiltins(c *Catalog) error {
	builtins := []struct {
		role    Role
		name    string
		factory Factory
	}{
		{RoleSeeds, "counter", func(Params) (any, error) {
			return solver.NewCounterSeeds(), nil
		}},
		{RoleSeeds, "random", func(p Params) (any, error) {
			seed, err := int64Param(p, "seed", 1)
			if err != nil {
				return nil, err
			}
			return solver.NewRandomSeeds(seed), nil
		}},
		{RoleTension, "scalar", func(Params) (any, error) {
			return solver.ScalarTension{}, nil
		}},
		{RoleTransition, "additive", func(Params) (any, error) {
			return solver.AdditiveTransition{}, nil
		}},
		{RoleTransition, "scaled", func(p Params) (any, error) {
			factor, err := floatParam(p, "factor", 1)
			if err != nil {
				return nil, err
			}
			return solver.ScaledTransition{Factor: factor}, nil
		}},
		{RolePatterns, "fingerprint", func(Params) (any, error) {
			return solver.FingerprintPattern{}, nil
		}},
		{RoleOperators, "uuid", func(Params) (any, error) {
			return solver.UUIDOperators{}, nil
		}},
		{RoleOperators, "counter", func(Params) (any, error) {
			return solver.NewCounterOperators(), nil
		}},
	}
	for _, b := range builtins {
		if err := c.Register(b.role, b.name, b.factory); err != nil {
			return err
		}
	}
	return nil
}

func floatParam(p Params, name string, fallback float64) (float64, error) {
	raw, ok := p[name]
	if !ok {
		return fallback, nil
	}
	switch v := raw.(type) {
	case float64:
		return v, nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	default:
		return 0, fmt.Errorf("param %s must be numeric, got %T", name, raw)
	}
}

func int64Param(p Params, name string, fallback int64) (int64, error) {
	raw, ok := p[name]
	if !ok {
		return fallback, nil
	}
	switch v := raw.(type) {
	case int:
		return int64(v), nil
	case int64:
		return v, nil
	case float64:
		return int64(v), nil
	default:
		return 0, fmt.Errorf("param %s must be an integer, got %T", name, raw)
	}
}
