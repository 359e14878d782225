package models

// AmortizationKind selects how a tranche's mandatory repayment is scheduled.
type AmortizationKind string

const (
	AmortizePercent  AmortizationKind = "percent"  // Rate × original principal each year
	AmortizeBullet   AmortizationKind = "bullet"   // Nothing until exit
	AmortizeSchedule AmortizationKind = "schedule" // Explicit amount per year
)

// AmortizationRule describes mandatory principal repayment.
type AmortizationRule struct {
	Kind     AmortizationKind `json:"kind" yaml:"kind"`
	Rate     float64          `json:"rate,omitempty" yaml:"rate,omitempty"`
	Schedule []float64        `json:"schedule,omitempty" yaml:"schedule,omitempty"`
}

// DebtTranche is an immutable tranche definition. Running balances are
// tracked by the LBO simulator, never written back here.
type DebtTranche struct {
	Name         string           `json:"name" yaml:"name"` // e.g. "senior", "mezzanine"
	Principal    float64          `json:"principal" yaml:"principal"`
	Rate         float64          `json:"rate" yaml:"rate"`
	Amortization AmortizationRule `json:"amortization" yaml:"amortization"`
	Seniority    int              `json:"seniority" yaml:"seniority"` // Lower is repaid first
	NoSweep      bool             `json:"no_sweep,omitempty" yaml:"no_sweep,omitempty"`
}

// MandatoryPayment returns the scheduled repayment for year (1-based),
// before capping at the outstanding balance.
func (t DebtTranche) MandatoryPayment(year int) float64 {
	switch t.Amortization.Kind {
	case AmortizePercent:
		return t.Principal * t.Amortization.Rate
	case AmortizeSchedule:
		if year >= 1 && year <= len(t.Amortization.Schedule) {
			return t.Amortization.Schedule[year-1]
		}
	}
	return 0
}

// LBOStructure describes one acquisition's financing and exit terms.
type LBOStructure struct {
	PurchaseEV         float64       `json:"purchase_ev"`
	EquityContribution *float64      `json:"equity_contribution,omitempty"` // nil: equity funds the residual
	Tranches           []DebtTranche `json:"tranches"`
	ExitYear           int           `json:"exit_year"`
	ExitMultiple       float64       `json:"exit_multiple"`
}

// TotalDebt sums tranche principals.
func (s LBOStructure) TotalDebt() float64 {
	total := 0.0
	for _, t := range s.Tranches {
		total += t.Principal
	}
	return total
}
