package valuation

import (
	"math"

	"corpval/pkg/core/errs"
)

// =============================================================================
// ROOT FINDING
// =============================================================================

// SolverConfig bounds the IRR search.
type SolverConfig struct {
	Lower         float64 `json:"lower" mapstructure:"lower"`
	Upper         float64 `json:"upper" mapstructure:"upper"`
	Tolerance     float64 `json:"tolerance" mapstructure:"tolerance"`
	MaxIterations int     `json:"max_iterations" mapstructure:"max_iterations"`
}

// DefaultSolverConfig searches -99% to +1000%.
func DefaultSolverConfig() SolverConfig {
	return SolverConfig{
		Lower:         -0.99,
		Upper:         10.0,
		Tolerance:     1e-10,
		MaxIterations: 200,
	}
}

// withDefaults fills zero fields so a partially populated config still works.
func (c SolverConfig) withDefaults() SolverConfig {
	d := DefaultSolverConfig()
	if c.Lower == 0 && c.Upper == 0 {
		c.Lower, c.Upper = d.Lower, d.Upper
	}
	if c.Tolerance <= 0 {
		c.Tolerance = d.Tolerance
	}
	if c.MaxIterations <= 0 {
		c.MaxIterations = d.MaxIterations
	}
	return c
}

// NPV discounts flows[t] at rate for t periods (flows[0] is undiscounted).
func NPV(rate float64, flows []float64) float64 {
	npv, _ := npvWithDerivative(rate, flows)
	return npv
}

func npvWithDerivative(rate float64, flows []float64) (float64, float64) {
	var npv, deriv float64
	df := 1.0
	base := 1.0 + rate
	for t, cf := range flows {
		npv += cf * df
		// d/dr cf/(1+r)^t = -t cf/(1+r)^(t+1)
		deriv -= float64(t) * cf * df / base
		df /= base
	}
	return npv, deriv
}

// IRR finds the rate at which NPV(flows) = 0 within [cfg.Lower, cfg.Upper]
// using Newton steps, falling back to bisection whenever a step leaves the
// bracket.
func IRR(flows []float64, cfg SolverConfig) (float64, error) {
	cfg = cfg.withDefaults()
	if cfg.Lower <= -1 || cfg.Lower >= cfg.Upper {
		return 0, errs.Assumption("solver", "invalid search interval [%v, %v]", cfg.Lower, cfg.Upper)
	}
	if !hasSignChange(flows) {
		return 0, &errs.ConvergenceError{Op: "irr", Msg: "cash flows never change sign"}
	}

	lo, hi := cfg.Lower, cfg.Upper
	fLo, fHi := NPV(lo, flows), NPV(hi, flows)
	switch {
	case fLo == 0:
		return lo, nil
	case fHi == 0:
		return hi, nil
	case (fLo < 0) == (fHi < 0):
		return 0, &errs.ConvergenceError{
			Op:  "irr",
			Msg: "no sign change in the search interval",
		}
	}

	x := 0.1
	if x <= lo || x >= hi {
		x = lo + (hi-lo)/2
	}

	for i := 1; i <= cfg.MaxIterations; i++ {
		fx, dfx := npvWithDerivative(x, flows)
		if fx == 0 {
			return x, nil
		}

		// Keep the root bracketed
		if (fx < 0) == (fLo < 0) {
			lo, fLo = x, fx
		} else {
			hi = x
		}

		next := x - fx/dfx
		if dfx == 0 || math.IsNaN(next) || next <= lo || next >= hi {
			next = lo + (hi-lo)/2
		}
		if math.Abs(next-x) < cfg.Tolerance {
			return next, nil
		}
		x = next
	}

	return 0, &errs.ConvergenceError{
		Op:         "irr",
		Iterations: cfg.MaxIterations,
		Msg:        "iteration cap reached",
	}
}

func hasSignChange(flows []float64) bool {
	var pos, neg bool
	for _, cf := range flows {
		if cf > 0 {
			pos = true
		} else if cf < 0 {
			neg = true
		}
	}
	return pos && neg
}
