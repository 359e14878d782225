package assumption

import (
	"corpval/pkg/core/errs"
	"corpval/pkg/models"
)

// Sensitivity axis parameters accepted by With.
const (
	ParamWACC           = "wacc"
	ParamTerminalGrowth = "terminal_growth"
	ParamExitMultiple   = "exit_multiple"
	ParamGrowth         = "growth"
	ParamMargin         = "margin"
	ParamTaxRate        = "tax_rate"
)

// Params lists every overridable parameter name.
var Params = []string{ParamWACC, ParamTerminalGrowth, ParamExitMultiple, ParamGrowth, ParamMargin, ParamTaxRate}

// IsParam reports whether name is an overridable parameter.
func IsParam(name string) bool {
	for _, p := range Params {
		if p == name {
			return true
		}
	}
	return false
}

// Clone returns a deep copy sharing no slices or pointers with a.
func (a Assumptions) Clone() Assumptions {
	out := a
	out.GrowthPath = clonePath(a.GrowthPath)
	out.MarginPath = clonePath(a.MarginPath)
	out.CapexRatio = clonePtr(a.CapexRatio)
	out.NWCRatio = clonePtr(a.NWCRatio)
	out.WACC = clonePtr(a.WACC)
	out.TerminalGrowth = clonePtr(a.TerminalGrowth)
	out.ExitMultiple = clonePtr(a.ExitMultiple)
	out.SharesOutstanding = clonePtr(a.SharesOutstanding)
	out.PurchaseEV = clonePtr(a.PurchaseEV)
	out.EquityContribution = clonePtr(a.EquityContribution)
	out.Sweep.Percent = clonePtr(a.Sweep.Percent)

	if a.CostOfCapital != nil {
		c := *a.CostOfCapital
		c.RiskFreeRate = clonePtr(c.RiskFreeRate)
		c.MarketRiskPremium = clonePtr(c.MarketRiskPremium)
		c.UnleveredBeta = clonePtr(c.UnleveredBeta)
		c.PreTaxCostOfDebt = clonePtr(c.PreTaxCostOfDebt)
		c.DebtToEquity = clonePtr(c.DebtToEquity)
		out.CostOfCapital = &c
	}
	if a.PeerSet != nil {
		out.PeerSet = make([]models.ComparableCompany, len(a.PeerSet))
		for i, p := range a.PeerSet {
			p.EVEBITDA = clonePtr(p.EVEBITDA)
			p.PE = clonePtr(p.PE)
			p.EVSales = clonePtr(p.EVSales)
			out.PeerSet[i] = p
		}
	}
	if a.DebtStructure != nil {
		out.DebtStructure = make([]models.DebtTranche, len(a.DebtStructure))
		for i, t := range a.DebtStructure {
			out.DebtStructure[i] = cloneTranche(t)
		}
	}
	return out
}

// With returns a copy with one parameter overridden. growth and margin
// replace the whole path with a flat value.
func (a Assumptions) With(param string, value float64) (Assumptions, error) {
	out := a.Clone()
	switch param {
	case ParamWACC:
		out.WACC = &value
	case ParamTerminalGrowth:
		out.TerminalGrowth = &value
		if out.TerminalMethod == "" && out.ExitMultiple != nil {
			out.TerminalMethod = TerminalGordon
		}
	case ParamExitMultiple:
		out.ExitMultiple = &value
		if out.TerminalMethod == "" && out.TerminalGrowth != nil {
			out.TerminalMethod = TerminalExitMultiple
		}
	case ParamGrowth:
		out.GrowthPath = Flat(value)
	case ParamMargin:
		out.MarginPath = Flat(value)
	case ParamTaxRate:
		out.TaxRate = value
	default:
		return Assumptions{}, errs.Assumption("axis", "unknown parameter %q", param)
	}
	return out, nil
}

// Adjust returns a copy with growth and margin paths shifted and the exit
// multiple moved by the given deltas. A missing exit multiple stays missing.
func (a Assumptions) Adjust(growthDelta, marginDelta, multipleDelta float64) Assumptions {
	out := a.Clone()
	out.GrowthPath = out.GrowthPath.Shift(growthDelta)
	out.MarginPath = out.MarginPath.Shift(marginDelta)
	if out.ExitMultiple != nil {
		m := *out.ExitMultiple + multipleDelta
		out.ExitMultiple = &m
	}
	return out
}

func clonePath(p Path) Path {
	if p == nil {
		return nil
	}
	return append(Path(nil), p...)
}

func clonePtr(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func cloneTranche(t models.DebtTranche) models.DebtTranche {
	if t.Amortization.Schedule != nil {
		t.Amortization.Schedule = append([]float64(nil), t.Amortization.Schedule...)
	}
	return t
}
