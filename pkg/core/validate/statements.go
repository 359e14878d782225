// Package validate provides the eager input checks run before any valuation
// math. Every failure is a *errs.DataError so callers can report it without
// partially computing anything.
package validate

import (
	"fmt"
	"math"

	"corpval/pkg/core/errs"
	"corpval/pkg/models"
)

// Statements verifies a statement sequence is non-empty, strictly increasing
// and contiguous by fiscal year, and that every reported value is finite.
func Statements(periods []models.StatementPeriod) error {
	if len(periods) == 0 {
		return errs.Data("statements", "no periods supplied")
	}

	for i, p := range periods {
		if i > 0 {
			prev := periods[i-1].FiscalYear
			if p.FiscalYear <= prev {
				return errs.Data("statements", "period %d (FY%d) is not after FY%d", i, p.FiscalYear, prev)
			}
			if p.FiscalYear != prev+1 {
				return errs.Data("statements", "gap between FY%d and FY%d", prev, p.FiscalYear)
			}
		}
		if err := finitePeriod(p); err != nil {
			return err
		}
	}
	return nil
}

func finitePeriod(p models.StatementPeriod) error {
	items := []struct {
		name string
		v    *float64
	}{
		{"revenue", p.Revenue},
		{"cogs", p.COGS},
		{"operating_expenses", p.OperatingExpenses},
		{"depreciation_amortization", p.DepreciationAmortization},
		{"interest_expense", p.InterestExpense},
		{"taxes", p.Taxes},
		{"capex", p.Capex},
		{"working_capital_delta", p.WorkingCapitalDelta},
		{"cash", p.Cash},
		{"total_debt", p.TotalDebt},
		{"current_assets", p.CurrentAssets},
		{"current_liabilities", p.CurrentLiabilities},
		{"inventory", p.Inventory},
		{"total_equity", p.TotalEquity},
	}
	for _, it := range items {
		if it.v != nil && !isFinite(*it.v) {
			return errs.Data(fmt.Sprintf("FY%d.%s", p.FiscalYear, it.name), "value is not finite")
		}
	}
	return nil
}

// Peers verifies a peer universe is non-empty and every reported multiple is
// finite and non-negative.
func Peers(peers []models.ComparableCompany) error {
	if len(peers) == 0 {
		return errs.Data("peer_set", "no comparable companies supplied")
	}
	for _, p := range peers {
		for _, m := range []struct {
			name string
			v    *float64
		}{
			{"ev_ebitda", p.EVEBITDA},
			{"pe", p.PE},
			{"ev_sales", p.EVSales},
		} {
			if m.v == nil {
				continue
			}
			if !isFinite(*m.v) {
				return errs.Data(p.Ticker+"."+m.name, "multiple is not finite")
			}
			if *m.v < 0 {
				return errs.Data(p.Ticker+"."+m.name, "multiple %.4f is negative", *m.v)
			}
		}
	}
	return nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
