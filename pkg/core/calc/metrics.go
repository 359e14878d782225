package calc

import (
	"math"

	"corpval/pkg/core/validate"
	"corpval/pkg/models"
)

// =============================================================================
// METRICS CALCULATOR
// =============================================================================

// ComputeMetrics derives one MetricsRecord per statement period, in order.
// The sequence is validated first; a zero or missing denominator only
// leaves the affected value undefined.
func ComputeMetrics(periods []models.StatementPeriod) ([]MetricsRecord, error) {
	if err := validate.Statements(periods); err != nil {
		return nil, err
	}

	records := make([]MetricsRecord, len(periods))
	for i, p := range periods {
		var prior *MetricsRecord
		if i > 0 {
			prior = &records[i-1]
		}
		records[i] = periodMetrics(p, prior)
	}
	return records, nil
}

func periodMetrics(p models.StatementPeriod, prior *MetricsRecord) MetricsRecord {
	revenue := FromPtr(p.Revenue)
	cogs := FromPtr(p.COGS)
	opex := FromPtr(p.OperatingExpenses)
	da := FromPtr(p.DepreciationAmortization)
	interest := FromPtr(p.InterestExpense)
	taxes := FromPtr(p.Taxes)
	capex := FromPtr(p.Capex)
	wcDelta := FromPtr(p.WorkingCapitalDelta)
	cash := FromPtr(p.Cash)
	debt := FromPtr(p.TotalDebt)
	equity := FromPtr(p.TotalEquity)
	currAssets := FromPtr(p.CurrentAssets)
	currLiabs := FromPtr(p.CurrentLiabilities)
	inventory := FromPtr(p.Inventory)

	// EBITDA = Revenue - COGS - (OpEx excluding D&A)
	ebitda := Sub(Sub(revenue, cogs), Sub(opex, da))
	ebit := Sub(ebitda, da)
	netIncome := Undefined
	if interest.Defined {
		netIncome = Sub(Sub(ebit, Of(math.Abs(interest.Value))), taxes)
	}

	rec := MetricsRecord{
		FiscalYear:          p.FiscalYear,
		Revenue:             revenue,
		Capex:               capex,
		WorkingCapitalDelta: wcDelta,
		TotalDebt:           debt,
		Cash:                cash,

		EBITDA:       ebitda,
		EBITDAMargin: Div(ebitda, revenue),
		EBIT:         ebit,
		NetIncome:    netIncome,
		FCF:          Sub(Sub(Sub(ebitda, taxes), capex), wcDelta),
		ROIC:         Div(Sub(ebit, taxes), Sub(Add(debt, equity), cash)),

		NetDebt:          Sub(debt, cash),
		DebtToEBITDA:     Div(debt, ebitda),
		DebtToEquity:     Div(debt, equity),
		InterestCoverage: InterestCoverage(ebit, interest),
		CurrentRatio:     Div(currAssets, currLiabs),
		QuickRatio:       Div(Sub(currAssets, inventory), currLiabs),

		RevenueGrowth: Undefined,
		RevenueChange: Undefined,
		EBITDAGrowth:  Undefined,
	}

	if prior != nil {
		rec.RevenueGrowth = GrowthRate(revenue, prior.Revenue)
		rec.RevenueChange = Sub(revenue, prior.Revenue)
		rec.EBITDAGrowth = GrowthRate(ebitda, prior.EBITDA)
	}
	return rec
}

// =============================================================================
// RATIO HELPERS
// =============================================================================

// Div returns numerator / denominator, undefined when either side is
// undefined or the denominator is zero.
func Div(numerator, denominator Metric) Metric {
	if !numerator.Defined || !denominator.Defined || denominator.Value == 0 {
		return Undefined
	}
	return Of(numerator.Value / denominator.Value)
}

func Add(a, b Metric) Metric {
	if !a.Defined || !b.Defined {
		return Undefined
	}
	return Of(a.Value + b.Value)
}

func Sub(a, b Metric) Metric {
	if !a.Defined || !b.Defined {
		return Undefined
	}
	return Of(a.Value - b.Value)
}

// GrowthRate = (current - prior) / |prior|
func GrowthRate(current, prior Metric) Metric {
	if !prior.Defined {
		return Undefined
	}
	return Div(Sub(current, prior), Of(math.Abs(prior.Value)))
}

// InterestCoverage = EBIT / |interest expense|
func InterestCoverage(ebit, interestExpense Metric) Metric {
	if !interestExpense.Defined {
		return Undefined
	}
	return Div(ebit, Of(math.Abs(interestExpense.Value)))
}

// CAGR over the given number of years; undefined for a non-positive start.
func CAGR(endingValue, beginningValue Metric, years int) Metric {
	if !endingValue.Defined || !beginningValue.Defined || beginningValue.Value <= 0 || years <= 0 {
		return Undefined
	}
	return Of(math.Pow(endingValue.Value/beginningValue.Value, 1.0/float64(years)) - 1)
}
