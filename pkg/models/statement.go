package models

// StatementPeriod holds one fiscal period of normalized line items.
// A nil field is "missing", which is distinct from a reported zero.
// Costs are positive numbers (COGS 600 means 600 of cost).
type StatementPeriod struct {
	FiscalYear int    `json:"fiscal_year" yaml:"fiscal_year"`
	Label      string `json:"label,omitempty" yaml:"label,omitempty"` // e.g. "FY2024"

	// Income statement
	Revenue                  *float64 `json:"revenue" yaml:"revenue"`
	COGS                     *float64 `json:"cogs" yaml:"cogs"`
	OperatingExpenses        *float64 `json:"operating_expenses" yaml:"operating_expenses"` // Includes D&A
	DepreciationAmortization *float64 `json:"depreciation_amortization" yaml:"depreciation_amortization"`
	InterestExpense          *float64 `json:"interest_expense" yaml:"interest_expense"`
	Taxes                    *float64 `json:"taxes" yaml:"taxes"`

	// Cash flow
	Capex               *float64 `json:"capex" yaml:"capex"`                                 // Positive = spend
	WorkingCapitalDelta *float64 `json:"working_capital_delta" yaml:"working_capital_delta"` // Positive = cash absorbed

	// Balance sheet
	Cash               *float64 `json:"cash" yaml:"cash"`
	TotalDebt          *float64 `json:"total_debt" yaml:"total_debt"`
	CurrentAssets      *float64 `json:"current_assets,omitempty" yaml:"current_assets,omitempty"`
	CurrentLiabilities *float64 `json:"current_liabilities,omitempty" yaml:"current_liabilities,omitempty"`
	Inventory          *float64 `json:"inventory,omitempty" yaml:"inventory,omitempty"`
	TotalEquity        *float64 `json:"total_equity,omitempty" yaml:"total_equity,omitempty"`
}

// Float returns a pointer to v. Handy for building statements in code.
func Float(v float64) *float64 { return &v }

// Val unpacks an optional line item. ok is false when the item is missing.
func Val(v *float64) (float64, bool) {
	if v == nil {
		return 0, false
	}
	return *v, true
}
