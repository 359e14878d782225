package models

// ComparableCompany is one member of a peer universe.
// Multiples a peer does not report are left nil.
type ComparableCompany struct {
	Ticker        string   `json:"ticker" yaml:"ticker"`
	Name          string   `json:"name,omitempty" yaml:"name,omitempty"`
	EVEBITDA      *float64 `json:"ev_ebitda" yaml:"ev_ebitda"`
	PE            *float64 `json:"pe" yaml:"pe"`
	EVSales       *float64 `json:"ev_sales" yaml:"ev_sales"`
	IsTransaction bool     `json:"is_transaction,omitempty" yaml:"is_transaction,omitempty"` // Precedent transaction, not a trading comp
}
