package projection_test

import (
	"math"
	"testing"

	"corpval/pkg/core/assumption"
	"corpval/pkg/core/calc"
	"corpval/pkg/core/errs"
	"corpval/pkg/core/projection"
)

func ptr(v float64) *float64 { return &v }

func baseline() calc.MetricsRecord {
	return calc.MetricsRecord{
		FiscalYear:          2024,
		Revenue:             calc.Of(1000),
		Capex:               calc.Of(50),
		WorkingCapitalDelta: calc.Of(10),
		RevenueChange:       calc.Of(100),
	}
}

func assumptions() assumption.Assumptions {
	return assumption.Assumptions{
		Horizon:    3,
		GrowthPath: assumption.Path{0.10, 0.05, 0.0},
		MarginPath: assumption.Flat(0.20),
		TaxRate:    0.25,
	}
}

func TestGrowthStrategy(t *testing.T) {
	s := projection.GrowthStrategy{Path: assumption.Flat(0.05)}
	result := s.Calculate(projection.Context{Year: 1, LastYearValue: 100.0})
	if math.Abs(result-105.0) > 1e-12 {
		t.Errorf("expected 105.00, got %.2f", result)
	}
}

func TestProject(t *testing.T) {
	periods, err := projection.Project(baseline(), assumptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(periods) != 3 {
		t.Fatalf("expected 3 periods, got %d", len(periods))
	}

	// Year 1: revenue 1100, EBITDA 220, capex 5% = 55, ΔNWC 10% × 100 = 10
	// FCF = 220 × 0.75 - 55 - 10 = 100
	p := periods[0]
	if p.FiscalYear != 2025 {
		t.Errorf("expected FY2025, got %d", p.FiscalYear)
	}
	if math.Abs(p.Revenue-1100) > 1e-9 || math.Abs(p.EBITDA-220) > 1e-9 {
		t.Errorf("year 1 revenue/EBITDA wrong: %f / %f", p.Revenue, p.EBITDA)
	}
	if math.Abs(p.FCF-100) > 1e-9 {
		t.Errorf("expected FCF 100, got %f", p.FCF)
	}

	// Year 3 has zero growth, so no working-capital investment
	if periods[2].NWCChange != 0 {
		t.Errorf("expected zero ΔNWC with flat revenue, got %f", periods[2].NWCChange)
	}
	if math.Abs(periods[2].Revenue-1155) > 1e-9 {
		t.Errorf("expected year 3 revenue 1155, got %f", periods[2].Revenue)
	}
}

func TestProject_RatioFallback(t *testing.T) {
	b := baseline()
	b.Capex = calc.Undefined
	b.RevenueChange = calc.Undefined

	a := assumptions()
	if _, err := projection.Project(b, a); !errs.IsInvalidAssumption(err) {
		t.Fatalf("expected InvalidAssumptionError without any ratio source, got %v", err)
	}

	a.CapexRatio = ptr(0.04)
	a.NWCRatio = ptr(0.2)
	r, err := projection.ResolveRatios(b, a)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Capex != 0.04 || r.CapexSource != projection.SourceAssumption || r.NWC != 0.2 {
		t.Errorf("unexpected ratios %+v", r)
	}

	// History wins when present
	r, _ = projection.ResolveRatios(baseline(), a)
	if r.Capex != 0.05 || r.CapexSource != projection.SourceHistorical {
		t.Errorf("expected historical capex ratio 0.05, got %+v", r)
	}
}

func TestProject_Errors(t *testing.T) {
	a := assumptions()
	a.Horizon = 6
	if _, err := projection.Project(baseline(), a); !errs.IsInvalidAssumption(err) {
		t.Errorf("horizon 6: expected InvalidAssumptionError, got %v", err)
	}

	a = assumptions()
	a.GrowthPath = assumption.Path{0.1, 0.1}
	if _, err := projection.Project(baseline(), a); !errs.IsInvalidAssumption(err) {
		t.Errorf("path length 2: expected InvalidAssumptionError, got %v", err)
	}

	b := baseline()
	b.Revenue = calc.Undefined
	if _, err := projection.Project(b, assumptions()); !errs.IsData(err) {
		t.Errorf("missing revenue: expected DataError, got %v", err)
	}
}
