package valuation

import (
	"context"
	"math"

	"golang.org/x/sync/errgroup"

	"corpval/pkg/core/assumption"
	"corpval/pkg/core/errs"
)

// Axis is one sensitivity dimension: a parameter name and ordered values.
type Axis struct {
	Param  string    `json:"param" yaml:"param"`
	Values []float64 `json:"values" yaml:"values"`
}

// CellStatus of one grid cell.
type CellStatus string

const (
	CellOK      CellStatus = "ok"
	CellInvalid CellStatus = "invalid" // Out-of-domain combination, e.g. WACC <= g
	CellFailed  CellStatus = "failed"  // Computation failed, e.g. IRR did not converge
)

// GridCell is the outcome for one (axis1[i], axis2[j]) pair.
type GridCell struct {
	X      float64          `json:"x"`
	Y      float64          `json:"y"`
	Status CellStatus       `json:"status"`
	Value  *float64         `json:"value,omitempty"` // Headline metric when ok
	Result *ValuationResult `json:"result,omitempty"`
	Reason string           `json:"reason,omitempty"`
}

// SensitivityGrid has exactly len(Axis1.Values) rows and
// len(Axis2.Values) columns.
type SensitivityGrid struct {
	Model  Kind         `json:"model"`
	Metric string       `json:"metric"` // Headline metric in Value
	Axis1  Axis         `json:"axis1"`
	Axis2  Axis         `json:"axis2"`
	Cells  [][]GridCell `json:"cells"`
}

// Evaluator values one assumption variant and returns its headline metric.
type Evaluator func(a assumption.Assumptions) (ValuationResult, float64, error)

// ValidateAxis checks the parameter name and values of an axis.
func ValidateAxis(axis Axis) error {
	if !assumption.IsParam(axis.Param) {
		return errs.Assumption("axis", "unknown parameter %q", axis.Param)
	}
	if len(axis.Values) == 0 {
		return errs.Assumption("axis."+axis.Param, "has no values")
	}
	for _, v := range axis.Values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return errs.Assumption("axis."+axis.Param, "values must be finite")
		}
	}
	return nil
}

// BuildGrid evaluates every (axis1, axis2) pair in parallel with at most
// workers cells in flight. Each cell writes only its own slot. Out-of-domain
// cells are marked invalid and other failures failed; only cancellation
// aborts the grid.
func BuildGrid(ctx context.Context, model Kind, metric string, base assumption.Assumptions, axis1, axis2 Axis, workers int, eval Evaluator) (*SensitivityGrid, error) {
	if err := ValidateAxis(axis1); err != nil {
		return nil, err
	}
	if err := ValidateAxis(axis2); err != nil {
		return nil, err
	}
	if axis1.Param == axis2.Param {
		return nil, errs.Assumption("axis", "both axes vary %q", axis1.Param)
	}

	grid := &SensitivityGrid{
		Model:  model,
		Metric: metric,
		Axis1:  axis1,
		Axis2:  axis2,
		Cells:  make([][]GridCell, len(axis1.Values)),
	}
	for i := range grid.Cells {
		grid.Cells[i] = make([]GridCell, len(axis2.Values))
	}

	g, gctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}
	for i, x := range axis1.Values {
		for j, y := range axis2.Values {
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				grid.Cells[i][j] = evaluateCell(base, axis1.Param, x, axis2.Param, y, eval)
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return grid, nil
}

func evaluateCell(base assumption.Assumptions, p1 string, x float64, p2 string, y float64, eval Evaluator) GridCell {
	cell := GridCell{X: x, Y: y}

	a, err := base.With(p1, x)
	if err == nil {
		a, err = a.With(p2, y)
	}
	if err != nil {
		cell.Status, cell.Reason = CellInvalid, err.Error()
		return cell
	}

	res, value, err := eval(a)
	switch {
	case err == nil:
		cell.Status = CellOK
		cell.Value = &value
		cell.Result = &res
	case errs.IsInvalidAssumption(err) || errs.IsData(err):
		cell.Status, cell.Reason = CellInvalid, err.Error()
	default:
		cell.Status, cell.Reason = CellFailed, err.Error()
	}
	return cell
}

// Headline metrics reported in grid cells.
const (
	MetricEnterpriseValue = "enterprise_value"
	MetricIRR             = "irr"
)

// lboParams are the parameters SimulateLBO reads. WACC and terminal growth
// only enter the DCF.
var lboParams = map[string]bool{
	assumption.ParamGrowth:       true,
	assumption.ParamMargin:       true,
	assumption.ParamTaxRate:      true,
	assumption.ParamExitMultiple: true,
}

// checkDCFAxes rejects sweeping terminal growth against the exit multiple:
// each selects its own terminal method, so one axis would have no effect.
func checkDCFAxes(axis1, axis2 Axis) error {
	tg, em := assumption.ParamTerminalGrowth, assumption.ParamExitMultiple
	if (axis1.Param == tg && axis2.Param == em) || (axis1.Param == em && axis2.Param == tg) {
		return errs.Assumption("axis", "%s and %s belong to different terminal methods; sweep one of them against another parameter", tg, em)
	}
	return nil
}

// DCFSensitivity recomputes the full DCF, projection included, for every
// axis pair. The base case itself must be valid.
func DCFSensitivity(ctx context.Context, input DCFInput, axis1, axis2 Axis, workers int) (*SensitivityGrid, error) {
	if err := checkDCFAxes(axis1, axis2); err != nil {
		return nil, err
	}
	if _, err := CalculateDCF(input); err != nil {
		return nil, err
	}
	scenario := input.Assumptions.Name
	eval := func(a assumption.Assumptions) (ValuationResult, float64, error) {
		res, err := CalculateDCF(DCFInput{Baseline: input.Baseline, Assumptions: a})
		if err != nil {
			return ValuationResult{}, 0, err
		}
		return NewDCFResult(scenario, a, res), res.EnterpriseValue, nil
	}
	return BuildGrid(ctx, KindDCF, MetricEnterpriseValue, input.Assumptions, axis1, axis2, workers, eval)
}

// LBOSensitivity reruns the LBO for every axis pair and reports IRR. A base
// case whose IRR does not converge is still gridded.
func LBOSensitivity(ctx context.Context, input LBOInput, axis1, axis2 Axis, workers int) (*SensitivityGrid, error) {
	for _, axis := range []Axis{axis1, axis2} {
		if !lboParams[axis.Param] {
			return nil, errs.Assumption("axis."+axis.Param, "the LBO does not use this parameter")
		}
	}
	if _, err := SimulateLBO(input); err != nil && !errs.IsConvergence(err) {
		return nil, err
	}
	scenario := input.Assumptions.Name
	eval := func(a assumption.Assumptions) (ValuationResult, float64, error) {
		res, err := SimulateLBO(LBOInput{Baseline: input.Baseline, Assumptions: a, Solver: input.Solver})
		if err != nil {
			return ValuationResult{}, 0, err
		}
		return NewLBOResult(scenario, a, res), res.IRR, nil
	}
	return BuildGrid(ctx, KindLBO, MetricIRR, input.Assumptions, axis1, axis2, workers, eval)
}
