// Package assumption holds the validated parameter set driving one
// valuation run. An Assumptions value is immutable once validated;
// scenario and sensitivity variants are deep copies (Clone, With, Adjust).
package assumption

import (
	"math"

	"corpval/pkg/core/calc"
	"corpval/pkg/core/errs"
	"corpval/pkg/models"
)

// =============================================================================
// POLICIES
// =============================================================================

// TerminalMethod selects the DCF terminal value policy.
type TerminalMethod string

const (
	TerminalGordon       TerminalMethod = "gordon"
	TerminalExitMultiple TerminalMethod = "exit_multiple"
)

// Horizon bounds for the explicit projection period.
const (
	MinHorizon = 3
	MaxHorizon = 5
)

// SweepPolicy controls how free cash is applied after mandatory debt service.
type SweepPolicy struct {
	Percent            *float64 `json:"percent,omitempty" yaml:"percent,omitempty"` // Share of positive cash swept, default 1.0
	DistributeResidual bool     `json:"distribute_residual,omitempty" yaml:"distribute_residual,omitempty"`
}

// SweepPercent returns the configured sweep share, defaulting to a full sweep.
func (s SweepPolicy) SweepPercent() float64 {
	if s.Percent == nil {
		return 1.0
	}
	return *s.Percent
}

// CostOfCapital is the optional CAPM block used when no WACC is given.
// Missing fields fall back to the calc defaults.
type CostOfCapital struct {
	RiskFreeRate      *float64 `json:"risk_free_rate,omitempty" yaml:"risk_free_rate,omitempty"`
	MarketRiskPremium *float64 `json:"market_risk_premium,omitempty" yaml:"market_risk_premium,omitempty"`
	UnleveredBeta     *float64 `json:"unlevered_beta,omitempty" yaml:"unlevered_beta,omitempty"`
	PreTaxCostOfDebt  *float64 `json:"pre_tax_cost_of_debt,omitempty" yaml:"pre_tax_cost_of_debt,omitempty"`
	DebtToEquity      *float64 `json:"debt_to_equity,omitempty" yaml:"debt_to_equity,omitempty"`
}

// =============================================================================
// ASSUMPTIONS
// =============================================================================

// Assumptions is the full, named parameter set for one valuation case.
type Assumptions struct {
	Name    string `json:"name,omitempty" yaml:"name,omitempty"`
	Horizon int    `json:"horizon" yaml:"horizon"`

	// Operating
	GrowthPath Path     `json:"growth_path" yaml:"growth_path"`
	MarginPath Path     `json:"margin_path" yaml:"margin_path"` // EBITDA margin
	TaxRate    float64  `json:"tax_rate" yaml:"tax_rate"`
	CapexRatio *float64 `json:"capex_ratio,omitempty" yaml:"capex_ratio,omitempty"` // Used when history has no capex
	NWCRatio   *float64 `json:"nwc_ratio,omitempty" yaml:"nwc_ratio,omitempty"`     // Used when history has no ΔNWC

	// DCF
	WACC              *float64       `json:"wacc,omitempty" yaml:"wacc,omitempty"`
	TerminalGrowth    *float64       `json:"terminal_growth,omitempty" yaml:"terminal_growth,omitempty"`
	ExitMultiple      *float64       `json:"exit_multiple,omitempty" yaml:"exit_multiple,omitempty"` // Shared with the LBO exit
	TerminalMethod    TerminalMethod `json:"terminal_method,omitempty" yaml:"terminal_method,omitempty"`
	SharesOutstanding *float64       `json:"shares_outstanding,omitempty" yaml:"shares_outstanding,omitempty"`
	CostOfCapital     *CostOfCapital `json:"cost_of_capital,omitempty" yaml:"cost_of_capital,omitempty"`

	// Multiples
	PeerSet []models.ComparableCompany `json:"peer_set,omitempty" yaml:"peer_set,omitempty"`

	// LBO
	DebtStructure      []models.DebtTranche `json:"debt_structure,omitempty" yaml:"debt_structure,omitempty"`
	PurchaseEV         *float64             `json:"purchase_ev,omitempty" yaml:"purchase_ev,omitempty"`
	EquityContribution *float64             `json:"equity_contribution,omitempty" yaml:"equity_contribution,omitempty"`
	ExitYear           int                  `json:"exit_year,omitempty" yaml:"exit_year,omitempty"`
	Sweep              SweepPolicy          `json:"sweep,omitempty" yaml:"sweep,omitempty"`
}

// Validate checks every field's domain. It does not check model-specific
// relations (WACC vs terminal growth, sources vs uses); the engines do.
func (a Assumptions) Validate() error {
	if a.Horizon < MinHorizon || a.Horizon > MaxHorizon {
		return errs.Assumption("horizon", "must be between %d and %d, got %d", MinHorizon, MaxHorizon, a.Horizon)
	}
	if err := a.GrowthPath.validate("growth_path", a.Horizon); err != nil {
		return err
	}
	for i, g := range a.GrowthPath {
		if g <= -1 {
			return errs.Assumption("growth_path", "value %d implies non-positive revenue (%.4f)", i+1, g)
		}
	}
	if err := a.MarginPath.validate("margin_path", a.Horizon); err != nil {
		return err
	}
	if !finite(a.TaxRate) || a.TaxRate < 0 || a.TaxRate >= 1 {
		return errs.Assumption("tax_rate", "must be in [0, 1), got %v", a.TaxRate)
	}

	checks := []struct {
		field string
		v     *float64
	}{
		{"capex_ratio", a.CapexRatio},
		{"nwc_ratio", a.NWCRatio},
		{"wacc", a.WACC},
		{"terminal_growth", a.TerminalGrowth},
		{"exit_multiple", a.ExitMultiple},
		{"shares_outstanding", a.SharesOutstanding},
		{"purchase_ev", a.PurchaseEV},
		{"equity_contribution", a.EquityContribution},
		{"sweep.percent", a.Sweep.Percent},
	}
	for _, c := range checks {
		if c.v != nil && !finite(*c.v) {
			return errs.Assumption(c.field, "is not finite")
		}
	}

	if a.ExitMultiple != nil && *a.ExitMultiple <= 0 {
		return errs.Assumption("exit_multiple", "must be positive, got %v", *a.ExitMultiple)
	}
	if a.SharesOutstanding != nil && *a.SharesOutstanding < 0 {
		return errs.Assumption("shares_outstanding", "cannot be negative")
	}
	if a.PurchaseEV != nil && *a.PurchaseEV <= 0 {
		return errs.Assumption("purchase_ev", "must be positive, got %v", *a.PurchaseEV)
	}
	if p := a.Sweep.SweepPercent(); p < 0 || p > 1 {
		return errs.Assumption("sweep.percent", "must be in [0, 1], got %v", p)
	}
	if a.ExitYear < 0 || a.ExitYear > a.Horizon {
		return errs.Assumption("exit_year", "must be within the %d-year horizon, got %d", a.Horizon, a.ExitYear)
	}

	switch a.TerminalMethod {
	case "", TerminalGordon, TerminalExitMultiple:
	default:
		return errs.Assumption("terminal_method", "unknown method %q", a.TerminalMethod)
	}

	if a.CostOfCapital != nil {
		if err := a.CostOfCapital.validate(); err != nil {
			return err
		}
	}

	for i, t := range a.DebtStructure {
		if err := validateTranche(i, t); err != nil {
			return err
		}
	}
	return nil
}

func (c CostOfCapital) validate() error {
	checks := []struct {
		field string
		v     *float64
	}{
		{"cost_of_capital.risk_free_rate", c.RiskFreeRate},
		{"cost_of_capital.market_risk_premium", c.MarketRiskPremium},
		{"cost_of_capital.unlevered_beta", c.UnleveredBeta},
		{"cost_of_capital.pre_tax_cost_of_debt", c.PreTaxCostOfDebt},
		{"cost_of_capital.debt_to_equity", c.DebtToEquity},
	}
	for _, chk := range checks {
		if chk.v != nil && !finite(*chk.v) {
			return errs.Assumption(chk.field, "is not finite")
		}
	}
	if c.UnleveredBeta != nil && *c.UnleveredBeta < 0 {
		return errs.Assumption("cost_of_capital.unlevered_beta", "cannot be negative, got %v", *c.UnleveredBeta)
	}
	if c.DebtToEquity != nil && *c.DebtToEquity < 0 {
		return errs.Assumption("cost_of_capital.debt_to_equity", "cannot be negative, got %v", *c.DebtToEquity)
	}
	if c.PreTaxCostOfDebt != nil && *c.PreTaxCostOfDebt < 0 {
		return errs.Assumption("cost_of_capital.pre_tax_cost_of_debt", "cannot be negative, got %v", *c.PreTaxCostOfDebt)
	}
	return nil
}

func validateTranche(i int, t models.DebtTranche) error {
	field := "debt_structure"
	if t.Name != "" {
		field += "." + t.Name
	}
	if !finite(t.Principal) || t.Principal < 0 {
		return errs.Assumption(field, "tranche %d principal must be non-negative", i+1)
	}
	if !finite(t.Rate) || t.Rate < 0 {
		return errs.Assumption(field, "tranche %d rate must be non-negative", i+1)
	}
	switch t.Amortization.Kind {
	case "", models.AmortizeBullet:
	case models.AmortizePercent:
		if !finite(t.Amortization.Rate) || t.Amortization.Rate < 0 || t.Amortization.Rate > 1 {
			return errs.Assumption(field, "amortization rate must be in [0, 1]")
		}
	case models.AmortizeSchedule:
		for _, amt := range t.Amortization.Schedule {
			if !finite(amt) || amt < 0 {
				return errs.Assumption(field, "amortization schedule amounts must be non-negative")
			}
		}
	default:
		return errs.Assumption(field, "unknown amortization kind %q", t.Amortization.Kind)
	}
	return nil
}

// TerminalPolicy resolves which DCF terminal value method applies.
func (a Assumptions) TerminalPolicy() (TerminalMethod, error) {
	switch a.TerminalMethod {
	case TerminalGordon:
		if a.TerminalGrowth == nil {
			return "", errs.Assumption("terminal_growth", "required by the gordon terminal method")
		}
		return TerminalGordon, nil
	case TerminalExitMultiple:
		if a.ExitMultiple == nil {
			return "", errs.Assumption("exit_multiple", "required by the exit_multiple terminal method")
		}
		return TerminalExitMultiple, nil
	}

	switch {
	case a.TerminalGrowth != nil && a.ExitMultiple != nil:
		return "", errs.Assumption("terminal_method", "both terminal_growth and exit_multiple are set; choose one")
	case a.TerminalGrowth != nil:
		return TerminalGordon, nil
	case a.ExitMultiple != nil:
		return TerminalExitMultiple, nil
	}
	return "", errs.Assumption("terminal_growth", "no terminal value policy: set terminal_growth or exit_multiple")
}

// ResolveWACC returns the explicit WACC, or derives one from the
// cost_of_capital block. The result is always finite.
func (a Assumptions) ResolveWACC() (float64, error) {
	if a.WACC != nil {
		if !finite(*a.WACC) {
			return 0, errs.Assumption("wacc", "is not finite")
		}
		return *a.WACC, nil
	}
	if a.CostOfCapital == nil {
		return 0, errs.Assumption("wacc", "not set and no cost_of_capital block given")
	}
	c := a.CostOfCapital
	if err := c.validate(); err != nil {
		return 0, err
	}
	res := calc.CalculateWACC(calc.WACCInput{
		UnleveredBeta:     or(c.UnleveredBeta, calc.DefaultBeta),
		RiskFreeRate:      or(c.RiskFreeRate, calc.DefaultRiskFreeRate),
		MarketRiskPremium: or(c.MarketRiskPremium, calc.DefaultMarketRiskPremium),
		PreTaxCostOfDebt:  or(c.PreTaxCostOfDebt, calc.DefaultCostOfDebt),
		TaxRate:           a.TaxRate,
		DebtToEquityRatio: or(c.DebtToEquity, calc.DefaultDebtToEquity),
	})
	if !finite(res.WACC) {
		return 0, errs.Assumption("cost_of_capital", "derived WACC is not finite")
	}
	return res.WACC, nil
}

// LBOStructure assembles the acquisition terms. An unset equity
// contribution stays nil, meaning "fund the residual".
func (a Assumptions) LBOStructure() (models.LBOStructure, error) {
	if a.PurchaseEV == nil {
		return models.LBOStructure{}, errs.Assumption("purchase_ev", "required for an LBO")
	}
	if a.ExitMultiple == nil {
		return models.LBOStructure{}, errs.Assumption("exit_multiple", "required for an LBO")
	}
	exitYear := a.ExitYear
	if exitYear == 0 {
		exitYear = a.Horizon
	}
	tranches := make([]models.DebtTranche, len(a.DebtStructure))
	for i, t := range a.DebtStructure {
		tranches[i] = cloneTranche(t)
	}
	return models.LBOStructure{
		PurchaseEV:         *a.PurchaseEV,
		EquityContribution: clonePtr(a.EquityContribution),
		Tranches:           tranches,
		ExitYear:           exitYear,
		ExitMultiple:       *a.ExitMultiple,
	}, nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func or(v *float64, fallback float64) float64 {
	if v == nil {
		return fallback
	}
	return *v
}
