package valuation

import (
	"context"
	"testing"

	"corpval/pkg/core/assumption"
	"corpval/pkg/core/errs"
)

func TestDCFSensitivity_InvalidCells(t *testing.T) {
	input := DCFInput{Baseline: flatBaseline(), Assumptions: flatAssumptions()}
	waccAxis := Axis{Param: assumption.ParamWACC, Values: []float64{0.02, 0.03, 0.08}}
	growthAxis := Axis{Param: assumption.ParamTerminalGrowth, Values: []float64{0.01, 0.03}}

	grid, err := DCFSensitivity(context.Background(), input, waccAxis, growthAxis, 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(grid.Cells) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(grid.Cells))
	}
	for i, row := range grid.Cells {
		if len(row) != 2 {
			t.Fatalf("row %d: expected 2 cells, got %d", i, len(row))
		}
		for j, cell := range row {
			if cell.X != waccAxis.Values[i] || cell.Y != growthAxis.Values[j] {
				t.Errorf("cell (%d,%d) has coordinates (%v,%v)", i, j, cell.X, cell.Y)
			}
			invalid := cell.X <= cell.Y
			if invalid && cell.Status != CellInvalid {
				t.Errorf("cell (%v,%v): expected invalid, got %s", cell.X, cell.Y, cell.Status)
			}
			if !invalid && (cell.Status != CellOK || cell.Value == nil || cell.Result == nil) {
				t.Errorf("cell (%v,%v): expected ok with result, got %s (%s)", cell.X, cell.Y, cell.Status, cell.Reason)
			}
		}
	}

	// Each ok cell carries the assumptions that produced it
	ok := grid.Cells[2][0]
	if *ok.Result.Assumptions.WACC != 0.08 || *ok.Result.Assumptions.TerminalGrowth != 0.01 {
		t.Errorf("cell assumptions not overridden: %+v", ok.Result.Assumptions)
	}
	if *input.Assumptions.WACC != 0.10 {
		t.Error("base assumptions mutated by the sweep")
	}
}

func TestDCFSensitivity_InvalidBase(t *testing.T) {
	a := flatAssumptions()
	a.TerminalGrowth = ptr(0.12)
	axis := Axis{Param: assumption.ParamWACC, Values: []float64{0.15}}
	axis2 := Axis{Param: assumption.ParamGrowth, Values: []float64{0.01}}

	_, err := DCFSensitivity(context.Background(), DCFInput{Baseline: flatBaseline(), Assumptions: a}, axis, axis2, 2)
	if !errs.IsInvalidAssumption(err) {
		t.Errorf("expected InvalidAssumptionError for an invalid base case, got %v", err)
	}
}

func TestDCFSensitivity_WorkerCountIndependent(t *testing.T) {
	input := DCFInput{Baseline: flatBaseline(), Assumptions: flatAssumptions()}
	growth := Axis{Param: assumption.ParamGrowth, Values: []float64{-0.02, 0, 0.02, 0.05}}
	margin := Axis{Param: assumption.ParamMargin, Values: []float64{0.15, 0.20, 0.25}}

	serial, err := DCFSensitivity(context.Background(), input, growth, margin, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	parallel, err := DCFSensitivity(context.Background(), input, growth, margin, 8)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := range serial.Cells {
		for j := range serial.Cells[i] {
			if *serial.Cells[i][j].Value != *parallel.Cells[i][j].Value {
				t.Errorf("cell (%d,%d) differs between serial and parallel runs", i, j)
			}
		}
	}
}

func TestBuildGrid_AxisValidation(t *testing.T) {
	eval := func(a assumption.Assumptions) (ValuationResult, float64, error) {
		return ValuationResult{}, 0, nil
	}
	base := flatAssumptions()

	tests := []struct {
		name         string
		axis1, axis2 Axis
	}{
		{"unknown param", Axis{Param: "beta", Values: []float64{1}}, Axis{Param: "wacc", Values: []float64{0.1}}},
		{"empty axis", Axis{Param: "wacc"}, Axis{Param: "margin", Values: []float64{0.1}}},
		{"same param twice", Axis{Param: "wacc", Values: []float64{0.1}}, Axis{Param: "wacc", Values: []float64{0.1}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := BuildGrid(context.Background(), KindDCF, MetricEnterpriseValue, base, tt.axis1, tt.axis2, 2, eval)
			if !errs.IsInvalidAssumption(err) {
				t.Errorf("expected InvalidAssumptionError, got %v", err)
			}
		})
	}
}

func TestBuildGrid_FailedCells(t *testing.T) {
	eval := func(a assumption.Assumptions) (ValuationResult, float64, error) {
		if *a.WACC > 0.1 {
			return ValuationResult{}, 0, &errs.ConvergenceError{Op: "irr", Msg: "boom"}
		}
		return ValuationResult{Kind: KindDCF}, *a.WACC, nil
	}
	grid, err := BuildGrid(context.Background(), KindDCF, MetricEnterpriseValue, flatAssumptions(),
		Axis{Param: "wacc", Values: []float64{0.05, 0.2}},
		Axis{Param: "margin", Values: []float64{0.1}}, 0, eval)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if grid.Cells[0][0].Status != CellOK || grid.Cells[1][0].Status != CellFailed {
		t.Errorf("expected ok then failed, got %s / %s", grid.Cells[0][0].Status, grid.Cells[1][0].Status)
	}
}

func TestBuildGrid_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	eval := func(a assumption.Assumptions) (ValuationResult, float64, error) {
		return ValuationResult{}, 0, nil
	}
	_, err := BuildGrid(ctx, KindDCF, MetricEnterpriseValue, flatAssumptions(),
		Axis{Param: "wacc", Values: []float64{0.05}},
		Axis{Param: "margin", Values: []float64{0.1}}, 1, eval)
	if err == nil {
		t.Error("expected cancellation error")
	}
}

func TestLBOSensitivity(t *testing.T) {
	multiples := Axis{Param: assumption.ParamExitMultiple, Values: []float64{6, 8, 10}}
	margins := Axis{Param: assumption.ParamMargin, Values: []float64{0.01, 0.15}}

	grid, err := LBOSensitivity(context.Background(), lboCase(), multiples, margins, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if grid.Metric != MetricIRR || grid.Model != KindLBO {
		t.Errorf("unexpected grid metadata %s/%s", grid.Model, grid.Metric)
	}
	// A 1% margin wipes out equity: the IRR has no root
	if grid.Cells[0][0].Status != CellFailed {
		t.Errorf("expected failed cell, got %s", grid.Cells[0][0].Status)
	}
	// Higher exit multiple, higher IRR
	if *grid.Cells[2][1].Value <= *grid.Cells[0][1].Value {
		t.Errorf("IRR should rise with the exit multiple: %f vs %f", *grid.Cells[2][1].Value, *grid.Cells[0][1].Value)
	}
}

func TestDCFSensitivity_MixedTerminalAxes(t *testing.T) {
	input := DCFInput{Baseline: flatBaseline(), Assumptions: flatAssumptions()}
	growth := Axis{Param: assumption.ParamTerminalGrowth, Values: []float64{0, 0.02, 0.04}}
	multiple := Axis{Param: assumption.ParamExitMultiple, Values: []float64{6, 8}}

	if _, err := DCFSensitivity(context.Background(), input, growth, multiple, 2); !errs.IsInvalidAssumption(err) {
		t.Errorf("terminal growth x exit multiple: expected InvalidAssumptionError, got %v", err)
	}
	if _, err := DCFSensitivity(context.Background(), input, multiple, growth, 2); !errs.IsInvalidAssumption(err) {
		t.Errorf("exit multiple x terminal growth: expected InvalidAssumptionError, got %v", err)
	}
}

func TestLBOSensitivity_UnusedAxes(t *testing.T) {
	multiples := Axis{Param: assumption.ParamExitMultiple, Values: []float64{6, 8}}
	tests := []struct {
		name string
		axis Axis
	}{
		{"wacc", Axis{Param: assumption.ParamWACC, Values: []float64{0.08, 0.1}}},
		{"terminal growth", Axis{Param: assumption.ParamTerminalGrowth, Values: []float64{0.01, 0.02}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := LBOSensitivity(context.Background(), lboCase(), multiples, tt.axis, 2); !errs.IsInvalidAssumption(err) {
				t.Errorf("expected InvalidAssumptionError, got %v", err)
			}
			if _, err := LBOSensitivity(context.Background(), lboCase(), tt.axis, multiples, 2); !errs.IsInvalidAssumption(err) {
				t.Errorf("expected InvalidAssumptionError with the axes swapped, got %v", err)
			}
		})
	}
}
