package scenario

import (
	"context"
	"log"

	"corpval/pkg/core/errs"
	"corpval/pkg/core/valuation"
)

// Sensitivity sweeps two parameters over the base case for a DCF or LBO.
// Every cell is evaluated independently; the grid always has the full
// Cartesian shape.
func (e *Engine) Sensitivity(ctx context.Context, req Request, model valuation.Kind, axis1, axis2 valuation.Axis) (*valuation.SensitivityGrid, error) {
	p, err := e.prepare(Request{
		Statements:  req.Statements,
		Assumptions: req.Assumptions,
		Models:      []valuation.Kind{model},
		Scenarios:   []string{Base},
	})
	if err != nil {
		return nil, err
	}
	if err := valuation.ValidateAxis(axis1); err != nil {
		return nil, err
	}
	if err := valuation.ValidateAxis(axis2); err != nil {
		return nil, err
	}

	log.Printf("[SCENARIO] %s sensitivity: %s (%d) × %s (%d)", model, axis1.Param, len(axis1.Values), axis2.Param, len(axis2.Values))

	switch model {
	case valuation.KindDCF:
		return valuation.DCFSensitivity(ctx, valuation.DCFInput{Baseline: p.baseline, Assumptions: p.base}, axis1, axis2, e.workers)
	case valuation.KindLBO:
		return valuation.LBOSensitivity(ctx, valuation.LBOInput{Baseline: p.baseline, Assumptions: p.base, Solver: e.solver}, axis1, axis2, e.workers)
	}
	return nil, errs.Assumption("model", "sensitivity supports dcf and lbo, not %q", model)
}
