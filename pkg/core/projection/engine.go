package projection

import (
	"corpval/pkg/core/assumption"
	"corpval/pkg/core/calc"
	"corpval/pkg/core/errs"
)

// ProjectedPeriod is one forecast year.
type ProjectedPeriod struct {
	Year       int     `json:"year"`        // 1..H
	FiscalYear int     `json:"fiscal_year"` // Baseline fiscal year + Year
	Revenue    float64 `json:"revenue"`
	Growth     float64 `json:"growth"`
	EBITDA     float64 `json:"ebitda"`
	Margin     float64 `json:"margin"`
	Taxes      float64 `json:"taxes"` // EBITDA × tax rate
	Capex      float64 `json:"capex"`
	NWCChange  float64 `json:"nwc_change"`
	FCF        float64 `json:"fcf"`
}

// Ratios are the reinvestment ratios a projection runs with, and where
// they came from ("historical" or "assumption").
type Ratios struct {
	Capex       float64 `json:"capex_ratio"`
	CapexSource string  `json:"capex_source"`
	NWC         float64 `json:"nwc_ratio"`
	NWCSource   string  `json:"nwc_source"`
}

const (
	SourceHistorical = "historical"
	SourceAssumption = "assumption"
)

// ResolveRatios prefers the baseline's historical ratios and falls back
// to the assumption values.
func ResolveRatios(baseline calc.MetricsRecord, a assumption.Assumptions) (Ratios, error) {
	var r Ratios

	switch hist := baseline.CapexRatio(); {
	case hist.Defined:
		r.Capex, r.CapexSource = hist.Value, SourceHistorical
	case a.CapexRatio != nil:
		r.Capex, r.CapexSource = *a.CapexRatio, SourceAssumption
	default:
		return Ratios{}, errs.Assumption("capex_ratio", "no historical capex and no capex_ratio given")
	}

	switch hist := baseline.NWCRatio(); {
	case hist.Defined:
		r.NWC, r.NWCSource = hist.Value, SourceHistorical
	case a.NWCRatio != nil:
		r.NWC, r.NWCSource = *a.NWCRatio, SourceAssumption
	default:
		return Ratios{}, errs.Assumption("nwc_ratio", "no historical working-capital change and no nwc_ratio given")
	}
	return r, nil
}

// Project produces H = a.Horizon forecast periods from the last historical
// metrics record.
func Project(baseline calc.MetricsRecord, a assumption.Assumptions) ([]ProjectedPeriod, error) {
	if err := a.Validate(); err != nil {
		return nil, err
	}
	if !baseline.Revenue.Defined {
		return nil, errs.Data("revenue", "baseline revenue for FY%d is missing", baseline.FiscalYear)
	}
	ratios, err := ResolveRatios(baseline, a)
	if err != nil {
		return nil, err
	}

	var (
		revenue Strategy = GrowthStrategy{Path: a.GrowthPath}
		ebitda  Strategy = MarginStrategy{Path: a.MarginPath}
		capex   Strategy = RatioStrategy{Ratio: ratios.Capex}
		nwc     Strategy = RatioStrategy{Ratio: ratios.NWC}
	)

	periods := make([]ProjectedPeriod, a.Horizon)
	prevRev := baseline.Revenue.Value

	for t := 1; t <= a.Horizon; t++ {
		rev := revenue.Calculate(Context{Year: t, LastYearValue: prevRev})
		e := ebitda.Calculate(Context{Year: t, Base: rev})
		cx := capex.Calculate(Context{Year: t, Base: rev})
		dNWC := nwc.Calculate(Context{Year: t, Base: rev - prevRev})
		taxes := e * a.TaxRate

		periods[t-1] = ProjectedPeriod{
			Year:       t,
			FiscalYear: baseline.FiscalYear + t,
			Revenue:    rev,
			Growth:     a.GrowthPath.At(t),
			EBITDA:     e,
			Margin:     a.MarginPath.At(t),
			Taxes:      taxes,
			Capex:      cx,
			NWCChange:  dNWC,
			FCF:        e - taxes - cx - dNWC,
		}
		prevRev = rev
	}
	return periods, nil
}
