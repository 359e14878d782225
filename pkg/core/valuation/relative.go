package valuation

import (
	"math"
	"sort"

	"corpval/pkg/core/calc"
	"corpval/pkg/core/errs"
	"corpval/pkg/core/validate"
	"corpval/pkg/models"
)

// MultipleKind identifies a valuation multiple.
type MultipleKind string

const (
	MultipleEVEBITDA MultipleKind = "ev_ebitda"
	MultiplePE       MultipleKind = "pe"
	MultipleEVSales  MultipleKind = "ev_sales"
)

// Basis of an implied value.
const (
	BasisEnterprise = "enterprise_value"
	BasisEquity     = "equity_value"
)

// PercentileBand bounds the peers kept for median and mean, as fractions.
type PercentileBand struct {
	Low  float64 `json:"low" mapstructure:"low_percentile"`
	High float64 `json:"high" mapstructure:"high_percentile"`
}

// DefaultBand keeps the 5th to 95th percentile.
func DefaultBand() PercentileBand {
	return PercentileBand{Low: 0.05, High: 0.95}
}

// MultiplesTarget holds the target company's current metrics (LTM)
type MultiplesTarget struct {
	EBITDA    calc.Metric `json:"ebitda"`
	NetIncome calc.Metric `json:"net_income"`
	Revenue   calc.Metric `json:"revenue"`
	NetDebt   calc.Metric `json:"net_debt"`
}

// TargetFromMetrics takes the target metrics from the latest period.
func TargetFromMetrics(r calc.MetricsRecord) MultiplesTarget {
	return MultiplesTarget{
		EBITDA:    r.EBITDA,
		NetIncome: r.NetIncome,
		Revenue:   r.Revenue,
		NetDebt:   r.NetDebt,
	}
}

// MultipleStats summarizes one multiple across the peer set.
type MultipleStats struct {
	Kind         MultipleKind `json:"kind"`
	Count        int          `json:"count"`    // Peers reporting this multiple
	Excluded     int          `json:"excluded"` // Outside the percentile band
	Median       float64      `json:"median"`
	Mean         float64      `json:"mean"`
	Min          float64      `json:"min"`
	Max          float64      `json:"max"`
	LowMultiple  float64      `json:"low_multiple"`
	HighMultiple float64      `json:"high_multiple"`
}

// ImpliedRange is the target's value implied by one multiple.
type ImpliedRange struct {
	Kind         MultipleKind `json:"kind"`
	Basis        string       `json:"basis"`
	TargetMetric float64      `json:"target_metric"`
	Low          float64      `json:"low"`
	Mid          float64      `json:"mid"`
	High         float64      `json:"high"`

	// Equity bridge for EV-based multiples, undefined without net debt
	EquityLow  calc.Metric `json:"equity_low"`
	EquityMid  calc.Metric `json:"equity_mid"`
	EquityHigh calc.Metric `json:"equity_high"`
}

// MultiplesResult holds the valuation range derived from multiples
type MultiplesResult struct {
	Transactions bool            `json:"transactions"`
	Band         PercentileBand  `json:"band"`
	PeerCount    int             `json:"peer_count"`
	Target       MultiplesTarget `json:"target"`
	Stats        []MultipleStats `json:"stats"`
	Implied      []ImpliedRange  `json:"implied"`
}

// CalculateComps performs Comparable Companies Analysis
func CalculateComps(target MultiplesTarget, peers []models.ComparableCompany, band PercentileBand) (*MultiplesResult, error) {
	return calculateMultiples(target, peers, band, false)
}

// CalculateTransactions performs Precedent Transaction Analysis
// Usually involves a control premium, so multiples are higher.
func CalculateTransactions(target MultiplesTarget, peers []models.ComparableCompany, band PercentileBand) (*MultiplesResult, error) {
	return calculateMultiples(target, peers, band, true)
}

func calculateMultiples(target MultiplesTarget, peers []models.ComparableCompany, band PercentileBand, onlyTransactions bool) (*MultiplesResult, error) {
	if math.IsNaN(band.Low) || math.IsNaN(band.High) || band.Low < 0 || band.High > 1 || band.Low > band.High {
		return nil, errs.Assumption("band", "percentile band [%v, %v] must satisfy 0 <= low <= high <= 1", band.Low, band.High)
	}
	if err := validate.Peers(peers); err != nil {
		return nil, err
	}

	var ebitdaMults, peMults, salesMults []float64
	count := 0
	for _, p := range peers {
		if p.IsTransaction != onlyTransactions {
			continue
		}
		count++
		if v, ok := models.Val(p.EVEBITDA); ok {
			ebitdaMults = append(ebitdaMults, v)
		}
		if v, ok := models.Val(p.PE); ok {
			peMults = append(peMults, v)
		}
		if v, ok := models.Val(p.EVSales); ok {
			salesMults = append(salesMults, v)
		}
	}

	set := "comparable companies"
	if onlyTransactions {
		set = "precedent transactions"
	}
	if count == 0 {
		return nil, errs.Data("peer_set", "no %s in the peer set", set)
	}
	if len(ebitdaMults)+len(peMults)+len(salesMults) == 0 {
		return nil, errs.Data("peer_set", "no %s report any multiple", set)
	}

	res := &MultiplesResult{
		Transactions: onlyTransactions,
		Band:         band,
		PeerCount:    count,
		Target:       target,
	}

	groups := []struct {
		kind   MultipleKind
		values []float64
		metric calc.Metric
		basis  string
	}{
		{MultipleEVEBITDA, ebitdaMults, target.EBITDA, BasisEnterprise},
		{MultiplePE, peMults, target.NetIncome, BasisEquity},
		{MultipleEVSales, salesMults, target.Revenue, BasisEnterprise},
	}
	for _, g := range groups {
		if len(g.values) == 0 {
			continue
		}
		stats := summarizeMultiples(g.kind, g.values, band)
		res.Stats = append(res.Stats, stats)

		if !g.metric.Defined {
			continue
		}
		r := ImpliedRange{
			Kind:         g.kind,
			Basis:        g.basis,
			TargetMetric: g.metric.Value,
			Low:          g.metric.Value * stats.LowMultiple,
			Mid:          g.metric.Value * stats.Median,
			High:         g.metric.Value * stats.HighMultiple,
		}
		if g.basis == BasisEnterprise {
			r.EquityLow = calc.Sub(calc.Of(r.Low), target.NetDebt)
			r.EquityMid = calc.Sub(calc.Of(r.Mid), target.NetDebt)
			r.EquityHigh = calc.Sub(calc.Of(r.High), target.NetDebt)
		} else {
			r.EquityLow, r.EquityMid, r.EquityHigh = calc.Of(r.Low), calc.Of(r.Mid), calc.Of(r.High)
		}
		res.Implied = append(res.Implied, r)
	}
	return res, nil
}

// summarizeMultiples computes statistics for a non-empty set of multiples.
// Values outside the band are dropped from median and mean only.
func summarizeMultiples(kind MultipleKind, values []float64, band PercentileBand) MultipleStats {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	lowCut := Percentile(sorted, band.Low)
	highCut := Percentile(sorted, band.High)

	kept := make([]float64, 0, len(sorted))
	for _, v := range sorted {
		if v >= lowCut && v <= highCut {
			kept = append(kept, v)
		}
	}
	if len(kept) == 0 {
		// Narrow band between two ranks
		kept = sorted
	}

	sum := 0.0
	for _, v := range kept {
		sum += v
	}

	return MultipleStats{
		Kind:         kind,
		Count:        len(sorted),
		Excluded:     len(sorted) - len(kept),
		Median:       Percentile(kept, 0.5),
		Mean:         sum / float64(len(kept)),
		Min:          sorted[0],
		Max:          sorted[len(sorted)-1],
		LowMultiple:  lowCut,
		HighMultiple: highCut,
	}
}

// Percentile interpolates linearly between closest ranks of sorted values.
// p is a fraction in [0, 1].
func Percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	pos := p * float64(len(sorted)-1)
	lower := int(pos)
	if lower >= len(sorted)-1 {
		return sorted[len(sorted)-1]
	}
	frac := pos - float64(lower)
	return sorted[lower] + frac*(sorted[lower+1]-sorted[lower])
}
