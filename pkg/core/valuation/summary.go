package valuation

import "fmt"

// FootballFieldLine is one row of the valuation summary chart.
type FootballFieldLine struct {
	Model    string  `json:"model"`
	Scenario string  `json:"scenario,omitempty"`
	Low      float64 `json:"low"`
	Mid      float64 `json:"mid"`
	High     float64 `json:"high"`
	Note     string  `json:"note,omitempty"`
}

// Summarize lays results out as enterprise-value ranges. A DCF is a point
// estimate; each implied multiple is its own row; an LBO shows the entry
// price with its returns.
func Summarize(results []ValuationResult) []FootballFieldLine {
	var lines []FootballFieldLine
	for _, r := range results {
		c := &summaryCollector{scenario: r.Scenario}
		if err := r.Visit(c); err != nil {
			continue
		}
		lines = append(lines, c.lines...)
	}
	return lines
}

type summaryCollector struct {
	scenario string
	lines    []FootballFieldLine
}

func (c *summaryCollector) VisitDCF(r *DCFResult) error {
	c.lines = append(c.lines, FootballFieldLine{
		Model:    "DCF (" + string(r.TerminalMethod) + ")",
		Scenario: c.scenario,
		Low:      r.EnterpriseValue,
		Mid:      r.EnterpriseValue,
		High:     r.EnterpriseValue,
		Note:     fmt.Sprintf("WACC %.2f%%, TV %.0f%% of EV", r.WACC*100, r.TerminalShare*100),
	})
	return nil
}

func (c *summaryCollector) VisitMultiples(r *MultiplesResult) error {
	label := "Trading comps"
	if r.Transactions {
		label = "Precedent transactions"
	}
	for _, ir := range r.Implied {
		line := FootballFieldLine{
			Model:    fmt.Sprintf("%s %s", label, multipleLabel(ir.Kind)),
			Scenario: c.scenario,
			Low:      ir.Low,
			Mid:      ir.Mid,
			High:     ir.High,
		}
		if ir.Basis == BasisEquity {
			// Bridge equity back to EV; skip when net debt is unknown
			if !r.Target.NetDebt.Defined {
				continue
			}
			nd := r.Target.NetDebt.Value
			line.Low, line.Mid, line.High = ir.Low+nd, ir.Mid+nd, ir.High+nd
		}
		c.lines = append(c.lines, line)
	}
	return nil
}

func (c *summaryCollector) VisitLBO(r *LBOResult) error {
	ev := r.SourcesAndUses.PurchaseEV
	c.lines = append(c.lines, FootballFieldLine{
		Model:    "LBO",
		Scenario: c.scenario,
		Low:      ev,
		Mid:      ev,
		High:     ev,
		Note:     fmt.Sprintf("IRR %.1f%%, MOIC %.2fx", r.IRR*100, r.MOIC),
	})
	return nil
}

func multipleLabel(k MultipleKind) string {
	switch k {
	case MultipleEVEBITDA:
		return "EV/EBITDA"
	case MultiplePE:
		return "P/E"
	case MultipleEVSales:
		return "EV/Sales"
	}
	return string(k)
}
