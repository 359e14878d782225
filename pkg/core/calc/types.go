// Package calc provides deterministic financial calculations: per-period
// metrics derived from normalized statements and cost-of-capital helpers.
package calc

import (
	"encoding/json"
	"math"
)

// =============================================================================
// METRIC VALUE
// =============================================================================

// Metric is a derived value that may be undefined (zero or missing
// denominator, missing input). Undefined serializes as JSON null.
type Metric struct {
	Value   float64
	Defined bool
}

// Undefined is the explicit "no value" marker.
var Undefined = Metric{}

// Of wraps v, treating NaN and ±Inf as undefined.
func Of(v float64) Metric {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Undefined
	}
	return Metric{Value: v, Defined: true}
}

// FromPtr wraps an optional statement line item.
func FromPtr(v *float64) Metric {
	if v == nil {
		return Undefined
	}
	return Of(*v)
}

// Float returns the value and whether it is defined.
func (m Metric) Float() (float64, bool) {
	return m.Value, m.Defined
}

// Or returns the value, or fallback when undefined.
func (m Metric) Or(fallback float64) float64 {
	if !m.Defined {
		return fallback
	}
	return m.Value
}

func (m Metric) MarshalJSON() ([]byte, error) {
	if !m.Defined {
		return []byte("null"), nil
	}
	return json.Marshal(m.Value)
}

func (m *Metric) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*m = Undefined
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*m = Of(v)
	return nil
}

// =============================================================================
// METRICS RECORD
// =============================================================================

// MetricsRecord holds the derived values for one statement period.
type MetricsRecord struct {
	FiscalYear int `json:"fiscal_year"`

	// Pass-through line items
	Revenue             Metric `json:"revenue"`
	Capex               Metric `json:"capex"`
	WorkingCapitalDelta Metric `json:"working_capital_delta"`
	TotalDebt           Metric `json:"total_debt"`
	Cash                Metric `json:"cash"`

	// Profitability
	EBITDA       Metric `json:"ebitda"`
	EBITDAMargin Metric `json:"ebitda_margin"`
	EBIT         Metric `json:"ebit"`
	NetIncome    Metric `json:"net_income"`
	FCF          Metric `json:"fcf"`
	ROIC         Metric `json:"roic"`

	// Growth (undefined for the first period)
	RevenueGrowth Metric `json:"revenue_growth"`
	RevenueChange Metric `json:"revenue_change"`
	EBITDAGrowth  Metric `json:"ebitda_growth"`

	// Solvency & liquidity
	NetDebt          Metric `json:"net_debt"`
	DebtToEBITDA     Metric `json:"debt_to_ebitda"`
	DebtToEquity     Metric `json:"debt_to_equity"`
	InterestCoverage Metric `json:"interest_coverage"`
	CurrentRatio     Metric `json:"current_ratio"`
	QuickRatio       Metric `json:"quick_ratio"`
}

// CapexRatio is historical capex as a share of revenue.
func (r MetricsRecord) CapexRatio() Metric {
	return Div(r.Capex, r.Revenue)
}

// NWCRatio is the historical working-capital delta per unit of revenue change.
func (r MetricsRecord) NWCRatio() Metric {
	return Div(r.WorkingCapitalDelta, r.RevenueChange)
}
