package valuation

import (
	"corpval/pkg/core/assumption"
	"corpval/pkg/core/calc"
	"corpval/pkg/core/errs"
	"corpval/pkg/core/projection"
)

// DCFInput encapsulates all inputs required for a Discounted Cash Flow valuation
type DCFInput struct {
	Baseline    calc.MetricsRecord // Latest historical period
	Assumptions assumption.Assumptions
}

// DCFResult holds the valuation outputs
type DCFResult struct {
	WACC           float64                   `json:"wacc"`
	TerminalMethod assumption.TerminalMethod `json:"terminal_method"`
	TerminalGrowth *float64                  `json:"terminal_growth,omitempty"`
	ExitMultiple   *float64                  `json:"exit_multiple,omitempty"`

	Projections     []projection.ProjectedPeriod `json:"projections"`
	DiscountFactors []float64                    `json:"discount_factors"`
	PVFCF           []float64                    `json:"pv_fcf"`
	SumPVFCF        float64                      `json:"sum_pv_fcf"`

	TerminalValue   float64     `json:"terminal_value"`
	PVTerminal      float64     `json:"pv_terminal"`
	TerminalShare   float64     `json:"terminal_share"`   // PV(TV) / EV
	ImpliedMultiple calc.Metric `json:"implied_multiple"` // TV / EBITDA_H

	EnterpriseValue float64     `json:"enterprise_value"`
	NetDebt         calc.Metric `json:"net_debt"`
	EquityValue     calc.Metric `json:"equity_value"`
	PerShareValue   calc.Metric `json:"per_share_value"`
}

// CalculateDCF performs a two-stage DCF: explicit FCF for the horizon plus
// a terminal value under the resolved policy.
func CalculateDCF(input DCFInput) (*DCFResult, error) {
	a := input.Assumptions
	if err := a.Validate(); err != nil {
		return nil, err
	}
	wacc, err := a.ResolveWACC()
	if err != nil {
		return nil, err
	}
	if !(wacc > 0) {
		return nil, errs.Assumption("wacc", "must be positive, got %v", wacc)
	}
	method, err := a.TerminalPolicy()
	if err != nil {
		return nil, err
	}
	if method == assumption.TerminalGordon && wacc <= *a.TerminalGrowth {
		return nil, errs.Assumption("wacc", "WACC %.4f must exceed terminal growth %.4f", wacc, *a.TerminalGrowth)
	}

	periods, err := projection.Project(input.Baseline, a)
	if err != nil {
		return nil, err
	}

	res := &DCFResult{
		WACC:            wacc,
		TerminalMethod:  method,
		Projections:     periods,
		DiscountFactors: make([]float64, len(periods)),
		PVFCF:           make([]float64, len(periods)),
	}

	cumDiscountFactor := 1.0
	for i, p := range periods {
		cumDiscountFactor /= 1.0 + wacc
		res.DiscountFactors[i] = cumDiscountFactor
		res.PVFCF[i] = p.FCF * cumDiscountFactor
		res.SumPVFCF += res.PVFCF[i]
	}

	last := periods[len(periods)-1]
	switch method {
	case assumption.TerminalGordon:
		g := *a.TerminalGrowth
		res.TerminalGrowth = &g
		res.TerminalValue = last.FCF * (1 + g) / (wacc - g)
	case assumption.TerminalExitMultiple:
		m := *a.ExitMultiple
		res.ExitMultiple = &m
		res.TerminalValue = last.EBITDA * m
	}
	res.PVTerminal = res.TerminalValue * cumDiscountFactor
	res.EnterpriseValue = res.SumPVFCF + res.PVTerminal

	if res.EnterpriseValue != 0 {
		res.TerminalShare = res.PVTerminal / res.EnterpriseValue
	}
	res.ImpliedMultiple = calc.Div(calc.Of(res.TerminalValue), calc.Of(last.EBITDA))

	res.NetDebt = input.Baseline.NetDebt
	res.EquityValue = calc.Sub(calc.Of(res.EnterpriseValue), res.NetDebt)
	if a.SharesOutstanding != nil && *a.SharesOutstanding > 0 {
		res.PerShareValue = calc.Div(res.EquityValue, calc.Of(*a.SharesOutstanding))
	}
	return res, nil
}
