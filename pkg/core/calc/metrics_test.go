package calc

import (
	"encoding/json"
	"math"
	"testing"

	"corpval/pkg/core/errs"
	"corpval/pkg/models"
)

func f(v float64) *float64 { return models.Float(v) }

func basePeriod(year int, revenue float64) models.StatementPeriod {
	return models.StatementPeriod{
		FiscalYear:               year,
		Revenue:                  f(revenue),
		COGS:                     f(revenue * 0.5),
		OperatingExpenses:        f(revenue * 0.3), // includes D&A of 5% revenue
		DepreciationAmortization: f(revenue * 0.05),
		InterestExpense:          f(-20),
		Taxes:                    f(30),
		Capex:                    f(40),
		WorkingCapitalDelta:      f(10),
		Cash:                     f(50),
		TotalDebt:                f(300),
		CurrentAssets:            f(400),
		CurrentLiabilities:       f(200),
		Inventory:                f(100),
		TotalEquity:              f(500),
	}
}

func TestComputeMetrics_Basic(t *testing.T) {
	// Revenue 1000, COGS 500, OpEx 300 incl. D&A 50
	// EBITDA = 1000 - 500 - (300 - 50) = 250
	recs, err := ComputeMetrics([]models.StatementPeriod{basePeriod(2023, 1000)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	r := recs[0]

	checks := []struct {
		name string
		got  Metric
		want float64
	}{
		{"ebitda", r.EBITDA, 250},
		{"ebitda_margin", r.EBITDAMargin, 0.25},
		{"ebit", r.EBIT, 200},
		{"net_income", r.NetIncome, 150},
		{"fcf", r.FCF, 250 - 30 - 40 - 10},
		{"roic", r.ROIC, (200.0 - 30) / (300 + 500 - 50)},
		{"net_debt", r.NetDebt, 250},
		{"debt_to_ebitda", r.DebtToEBITDA, 1.2},
		{"debt_to_equity", r.DebtToEquity, 0.6},
		{"interest_coverage", r.InterestCoverage, 10},
		{"current_ratio", r.CurrentRatio, 2},
		{"quick_ratio", r.QuickRatio, 1.5},
	}
	for _, c := range checks {
		v, ok := c.got.Float()
		if !ok {
			t.Errorf("%s: expected defined value", c.name)
			continue
		}
		if math.Abs(v-c.want) > 1e-9 {
			t.Errorf("%s: expected %f, got %f", c.name, c.want, v)
		}
	}

	if r.RevenueGrowth.Defined || r.EBITDAGrowth.Defined || r.RevenueChange.Defined {
		t.Error("first period growth metrics should be undefined")
	}
}

func TestComputeMetrics_Growth(t *testing.T) {
	recs, err := ComputeMetrics([]models.StatementPeriod{basePeriod(2022, 1000), basePeriod(2023, 1100)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if g, ok := recs[1].RevenueGrowth.Float(); !ok || math.Abs(g-0.10) > 1e-12 {
		t.Errorf("expected revenue growth 0.10, got %v", recs[1].RevenueGrowth)
	}
	if g, ok := recs[1].EBITDAGrowth.Float(); !ok || math.Abs(g-0.10) > 1e-12 {
		t.Errorf("expected EBITDA growth 0.10, got %v", recs[1].EBITDAGrowth)
	}
	if c, _ := recs[1].RevenueChange.Float(); c != 100 {
		t.Errorf("expected revenue change 100, got %f", c)
	}
}

func TestComputeMetrics_ZeroDenominators(t *testing.T) {
	p := basePeriod(2023, 1000)
	p.CurrentLiabilities = f(0)
	p.InterestExpense = f(0)
	p.TotalEquity = nil // missing, not zero

	recs, err := ComputeMetrics([]models.StatementPeriod{p})
	if err != nil {
		t.Fatalf("zero denominators must not raise: %v", err)
	}
	r := recs[0]

	if r.CurrentRatio.Defined || r.QuickRatio.Defined {
		t.Error("liquidity ratios should be undefined with zero current liabilities")
	}
	if r.InterestCoverage.Defined {
		t.Error("interest coverage should be undefined with zero interest")
	}
	if r.DebtToEquity.Defined || r.ROIC.Defined {
		t.Error("equity-based ratios should be undefined with missing equity")
	}

	// Unrelated metrics still computed
	if v, ok := r.DebtToEBITDA.Float(); !ok || math.Abs(v-1.2) > 1e-12 {
		t.Errorf("debt/EBITDA should still be 1.2, got %v", r.DebtToEBITDA)
	}
	if !r.EBITDAMargin.Defined || !r.FCF.Defined {
		t.Error("margin and FCF should still be defined")
	}
}

func TestComputeMetrics_ZeroRevenuePeriod(t *testing.T) {
	p1 := basePeriod(2022, 0)
	p2 := basePeriod(2023, 1000)

	recs, err := ComputeMetrics([]models.StatementPeriod{p1, p2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if recs[0].EBITDAMargin.Defined {
		t.Error("margin should be undefined on zero revenue")
	}
	if recs[1].RevenueGrowth.Defined {
		t.Error("growth from zero revenue should be undefined")
	}
	if !recs[1].EBITDAMargin.Defined {
		t.Error("later period should be unaffected")
	}
}

func TestComputeMetrics_MissingDAMakesEBITDAUndefined(t *testing.T) {
	p := basePeriod(2023, 1000)
	p.DepreciationAmortization = nil

	recs, err := ComputeMetrics([]models.StatementPeriod{p})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if recs[0].EBITDA.Defined {
		t.Error("EBITDA should be undefined when D&A is missing")
	}
	if v, _ := recs[0].NetDebt.Float(); v != 250 {
		t.Errorf("net debt should still be 250, got %f", v)
	}
}

func TestComputeMetrics_GappedInput(t *testing.T) {
	_, err := ComputeMetrics([]models.StatementPeriod{basePeriod(2020, 1000), basePeriod(2022, 1000)})
	if !errs.IsData(err) {
		t.Fatalf("expected DataError, got %v", err)
	}
}

func TestMetric_JSON(t *testing.T) {
	data, err := json.Marshal(struct {
		A Metric `json:"a"`
		B Metric `json:"b"`
	}{Of(1.5), Undefined})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `{"a":1.5,"b":null}` {
		t.Errorf("unexpected JSON: %s", data)
	}

	var m Metric
	if err := json.Unmarshal([]byte("null"), &m); err != nil || m.Defined {
		t.Errorf("null should decode to Undefined, got %v (%v)", m, err)
	}
}

func TestCAGR(t *testing.T) {
	got := CAGR(Of(200), Of(100), 5)
	if v, ok := got.Float(); !ok || math.Abs(v-(math.Pow(2, 0.2)-1)) > 1e-12 {
		t.Errorf("unexpected CAGR %v", got)
	}
	if CAGR(Of(200), Of(0), 5).Defined {
		t.Error("CAGR from zero should be undefined")
	}
}
