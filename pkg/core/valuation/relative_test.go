package valuation

import (
	"math"
	"testing"

	"corpval/pkg/core/calc"
	"corpval/pkg/core/errs"
	"corpval/pkg/models"
)

func peers(mults ...float64) []models.ComparableCompany {
	out := make([]models.ComparableCompany, len(mults))
	for i, m := range mults {
		out[i] = models.ComparableCompany{Ticker: string(rune('A' + i)), EVEBITDA: ptr(m)}
	}
	return out
}

func TestCalculateComps_OutlierBand(t *testing.T) {
	target := MultiplesTarget{EBITDA: calc.Of(100), NetDebt: calc.Of(150)}

	res, err := CalculateComps(target, peers(8, 9, 10, 11, 40), DefaultBand())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Stats) != 1 || len(res.Implied) != 1 {
		t.Fatalf("expected one multiple type, got %d stats / %d implied", len(res.Stats), len(res.Implied))
	}

	s := res.Stats[0]
	if s.Median != 10 {
		t.Errorf("Expected median 10, got %f", s.Median)
	}
	if s.Min != 8 || s.Max != 40 {
		t.Errorf("min/max must keep outliers: got %f / %f", s.Min, s.Max)
	}
	if s.Excluded != 2 || s.Count != 5 {
		t.Errorf("expected 2 of 5 excluded, got %d of %d", s.Excluded, s.Count)
	}
	if math.Abs(s.Mean-10) > 1e-12 {
		t.Errorf("Expected trimmed mean 10, got %f", s.Mean)
	}

	ir := res.Implied[0]
	if math.Abs(ir.Mid-1000) > 1e-9 {
		t.Errorf("Expected implied EV 100 × 10 = 1000, got %f", ir.Mid)
	}
	// 5th pct = 8 + 0.2 × 1, 95th = 11 + 0.8 × 29
	if math.Abs(ir.Low-820) > 1e-9 || math.Abs(ir.High-3420) > 1e-9 {
		t.Errorf("unexpected range [%f, %f]", ir.Low, ir.High)
	}
	if v, _ := ir.EquityMid.Float(); math.Abs(v-850) > 1e-9 {
		t.Errorf("Expected equity mid 850, got %f", v)
	}
}

func TestCalculateComps_PEIsEquityBasis(t *testing.T) {
	target := MultiplesTarget{NetIncome: calc.Of(50), NetDebt: calc.Undefined}
	ps := []models.ComparableCompany{
		{Ticker: "A", PE: ptr(15)},
		{Ticker: "B", PE: ptr(20)},
		{Ticker: "C", PE: ptr(25)},
	}
	res, err := CalculateComps(target, ps, DefaultBand())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ir := res.Implied[0]
	if ir.Basis != BasisEquity || ir.Mid != 1000 {
		t.Errorf("expected equity value 1000, got %s %f", ir.Basis, ir.Mid)
	}
	if v, ok := ir.EquityMid.Float(); !ok || v != 1000 {
		t.Errorf("P/E equity should not need net debt, got %v", ir.EquityMid)
	}
}

func TestCalculateTransactions_Filter(t *testing.T) {
	ps := peers(8, 9, 10)
	ps[2].IsTransaction = true
	target := MultiplesTarget{EBITDA: calc.Of(10)}

	res, err := CalculateTransactions(target, ps, DefaultBand())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.PeerCount != 1 || res.Stats[0].Median != 10 {
		t.Errorf("expected only the transaction, got %d peers median %f", res.PeerCount, res.Stats[0].Median)
	}

	comps, _ := CalculateComps(target, ps, DefaultBand())
	if comps.PeerCount != 2 {
		t.Errorf("comps should skip transactions, got %d peers", comps.PeerCount)
	}

	if _, err := CalculateTransactions(target, peers(8, 9), DefaultBand()); !errs.IsData(err) {
		t.Errorf("no transactions: expected DataError, got %v", err)
	}
}

func TestCalculateComps_DataErrors(t *testing.T) {
	target := MultiplesTarget{EBITDA: calc.Of(100)}

	if _, err := CalculateComps(target, nil, DefaultBand()); !errs.IsData(err) {
		t.Errorf("empty peers: expected DataError, got %v", err)
	}
	if _, err := CalculateComps(target, peers(8, -2), DefaultBand()); !errs.IsData(err) {
		t.Errorf("negative multiple: expected DataError, got %v", err)
	}
	if _, err := CalculateComps(target, peers(8, math.Inf(1)), DefaultBand()); !errs.IsData(err) {
		t.Errorf("infinite multiple: expected DataError, got %v", err)
	}
	if _, err := CalculateComps(target, peers(8), PercentileBand{Low: 0.9, High: 0.1}); !errs.IsInvalidAssumption(err) {
		t.Errorf("inverted band: expected InvalidAssumptionError, got %v", err)
	}
	if _, err := CalculateComps(target, peers(8, 9), PercentileBand{Low: math.NaN(), High: 0.95}); !errs.IsInvalidAssumption(err) {
		t.Errorf("NaN band: expected InvalidAssumptionError, got %v", err)
	}
}

func TestPercentile(t *testing.T) {
	sorted := []float64{1, 2, 3, 4}
	tests := []struct {
		p, want float64
	}{
		{0, 1}, {1, 4}, {0.5, 2.5}, {0.25, 1.75},
	}
	for _, tt := range tests {
		if got := Percentile(sorted, tt.p); math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("Percentile(%v) = %v, want %v", tt.p, got, tt.want)
		}
	}
}
