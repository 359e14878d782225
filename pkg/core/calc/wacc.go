package calc

// =============================================================================
// COST OF CAPITAL
// =============================================================================

// Fallbacks used when a cost-of-capital input is not supplied.
const (
	DefaultRiskFreeRate      = 0.035
	DefaultMarketRiskPremium = 0.06
	DefaultBeta              = 1.0
	DefaultCostOfDebt        = 0.05
	DefaultDebtToEquity      = 1.5 // 40% equity / 60% debt
)

// WACCInput parameters for calculating cost of capital
type WACCInput struct {
	UnleveredBeta     float64
	RiskFreeRate      float64
	MarketRiskPremium float64
	PreTaxCostOfDebt  float64
	TaxRate           float64
	DebtToEquityRatio float64 // Target leverage (D/E)
}

// WACCResult holds the calculated rates
type WACCResult struct {
	LeveredBeta  float64 `json:"levered_beta"`
	CostOfEquity float64 `json:"cost_of_equity"`
	CostOfDebt   float64 `json:"cost_of_debt"` // After-tax
	WACC         float64 `json:"wacc"`
	WeightDebt   float64 `json:"weight_debt"`
	WeightEquity float64 `json:"weight_equity"`
}

// CostOfEquityCAPM: r_e = r_f + β × MRP
func CostOfEquityCAPM(riskFreeRate, beta, marketRiskPremium float64) float64 {
	return riskFreeRate + beta*marketRiskPremium
}

// ReleverBeta applies the Hamada equation: βL = βU × (1 + (1-t) × D/E)
func ReleverBeta(unleveredBeta, taxRate, debtToEquity float64) float64 {
	return unleveredBeta * (1 + (1-taxRate)*debtToEquity)
}

// CalculateWACC computes WACC from CAPM and a target D/E.
func CalculateWACC(input WACCInput) WACCResult {
	leveredBeta := ReleverBeta(input.UnleveredBeta, input.TaxRate, input.DebtToEquityRatio)
	ke := CostOfEquityCAPM(input.RiskFreeRate, leveredBeta, input.MarketRiskPremium)
	kd := input.PreTaxCostOfDebt * (1 - input.TaxRate)

	// D/E = x  =>  Wd = x/(1+x), We = 1/(1+x)
	wd := input.DebtToEquityRatio / (1 + input.DebtToEquityRatio)
	we := 1.0 / (1 + input.DebtToEquityRatio)

	return WACCResult{
		LeveredBeta:  leveredBeta,
		CostOfEquity: ke,
		CostOfDebt:   kd,
		WACC:         ke*we + kd*wd,
		WeightDebt:   wd,
		WeightEquity: we,
	}
}
