package valuation

import (
	"math"
	"testing"

	"corpval/pkg/core/assumption"
	"corpval/pkg/core/calc"
	"corpval/pkg/core/errs"
)

func ptr(v float64) *float64 { return &v }

// flatBaseline: revenue 1000, no usable reinvestment history, net debt 200.
func flatBaseline() calc.MetricsRecord {
	return calc.MetricsRecord{
		FiscalYear: 2024,
		Revenue:    calc.Of(1000),
		EBITDA:     calc.Of(200),
		NetIncome:  calc.Of(90),
		NetDebt:    calc.Of(200),
	}
}

// flatAssumptions give a constant FCF of 100: EBITDA 200 × 0.75 - capex 50.
func flatAssumptions() assumption.Assumptions {
	return assumption.Assumptions{
		Name:              "base",
		Horizon:           5,
		GrowthPath:        assumption.Flat(0),
		MarginPath:        assumption.Flat(0.20),
		TaxRate:           0.25,
		CapexRatio:        ptr(0.05),
		NWCRatio:          ptr(0.10),
		WACC:              ptr(0.10),
		TerminalGrowth:    ptr(0),
		SharesOutstanding: ptr(100),
	}
}

func TestCalculateDCF_Perpetuity(t *testing.T) {
	// Zero growth everywhere: EV collapses to FCF / WACC
	res, err := CalculateDCF(DCFInput{Baseline: flatBaseline(), Assumptions: flatAssumptions()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := 100 / 0.10
	if math.Abs(res.EnterpriseValue-expected)/expected > 1e-9 {
		t.Errorf("Expected EV %.6f, got %.6f", expected, res.EnterpriseValue)
	}
	if v, _ := res.EquityValue.Float(); math.Abs(v-800) > 1e-6 {
		t.Errorf("Expected equity 800, got %f", v)
	}
	if v, _ := res.PerShareValue.Float(); math.Abs(v-8) > 1e-8 {
		t.Errorf("Expected per-share 8, got %f", v)
	}
	if res.TerminalMethod != assumption.TerminalGordon {
		t.Errorf("Expected gordon policy, got %s", res.TerminalMethod)
	}

	for i := 1; i < len(res.DiscountFactors); i++ {
		if res.DiscountFactors[i] >= res.DiscountFactors[i-1] {
			t.Fatalf("discount factors must strictly decrease: %v", res.DiscountFactors)
		}
	}

	// TV = 100 / 0.1 = 1000 on terminal EBITDA 200
	if v, _ := res.ImpliedMultiple.Float(); math.Abs(v-5) > 1e-9 {
		t.Errorf("Expected implied multiple 5x, got %f", v)
	}
}

func TestCalculateDCF_ExitMultiple(t *testing.T) {
	a := flatAssumptions()
	a.TerminalGrowth = nil
	a.ExitMultiple = ptr(8)

	res, err := CalculateDCF(DCFInput{Baseline: flatBaseline(), Assumptions: a})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(res.TerminalValue-1600) > 1e-9 {
		t.Errorf("Expected TV 200 × 8 = 1600, got %f", res.TerminalValue)
	}
	expectedPVTV := 1600 / math.Pow(1.1, 5)
	if math.Abs(res.PVTerminal-expectedPVTV) > 1e-9 {
		t.Errorf("Expected PV(TV) %f, got %f", expectedPVTV, res.PVTerminal)
	}
	if math.Abs(res.TerminalShare-res.PVTerminal/res.EnterpriseValue) > 1e-12 {
		t.Error("terminal share inconsistent with EV")
	}
}

func TestCalculateDCF_InvalidAssumptions(t *testing.T) {
	tests := []struct {
		name   string
		modify func(a *assumption.Assumptions)
	}{
		{"wacc equals growth", func(a *assumption.Assumptions) { a.TerminalGrowth = ptr(0.10) }},
		{"wacc below growth", func(a *assumption.Assumptions) { a.WACC = ptr(0.02); a.TerminalGrowth = ptr(0.03) }},
		{"zero wacc", func(a *assumption.Assumptions) { a.WACC = ptr(0) }},
		{"no terminal policy", func(a *assumption.Assumptions) { a.TerminalGrowth = nil }},
		{"ambiguous terminal policy", func(a *assumption.Assumptions) { a.ExitMultiple = ptr(8) }},
		{"horizon out of range", func(a *assumption.Assumptions) { a.Horizon = 7 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := flatAssumptions()
			tt.modify(&a)
			_, err := CalculateDCF(DCFInput{Baseline: flatBaseline(), Assumptions: a})
			if !errs.IsInvalidAssumption(err) {
				t.Errorf("expected InvalidAssumptionError, got %v", err)
			}
		})
	}
}

func TestCalculateDCF_UnknownNetDebt(t *testing.T) {
	b := flatBaseline()
	b.NetDebt = calc.Undefined

	res, err := CalculateDCF(DCFInput{Baseline: b, Assumptions: flatAssumptions()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.EquityValue.Defined || res.PerShareValue.Defined {
		t.Error("equity value should be undefined without net debt")
	}
	if res.EnterpriseValue <= 0 {
		t.Error("EV should still be computed")
	}
}

func TestCalculateDCF_DerivedWACC(t *testing.T) {
	a := flatAssumptions()
	a.WACC = nil
	a.CostOfCapital = &assumption.CostOfCapital{
		RiskFreeRate:      ptr(0.04),
		MarketRiskPremium: ptr(0.05),
		UnleveredBeta:     ptr(1.0),
		PreTaxCostOfDebt:  ptr(0.06),
		DebtToEquity:      ptr(0.5),
	}
	res, err := CalculateDCF(DCFInput{Baseline: flatBaseline(), Assumptions: a})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(res.WACC-0.0875) > 1e-12 {
		t.Errorf("Expected WACC 0.0875, got %f", res.WACC)
	}

	// D/E of -1 puts a zero in the weight denominators
	a.CostOfCapital.DebtToEquity = ptr(-1)
	res, err = CalculateDCF(DCFInput{Baseline: flatBaseline(), Assumptions: a})
	if !errs.IsInvalidAssumption(err) {
		t.Errorf("expected InvalidAssumptionError, got %v (result %+v)", err, res)
	}
}
