package valuation

import (
	"math"
	"sort"

	"corpval/pkg/core/assumption"
	"corpval/pkg/core/calc"
	"corpval/pkg/core/errs"
	"corpval/pkg/core/projection"
	"corpval/pkg/models"
)

// LBOInput parameters for a sponsor returns analysis
type LBOInput struct {
	Baseline    calc.MetricsRecord
	Assumptions assumption.Assumptions
	Solver      SolverConfig
}

// TrancheSource is one debt line in the sources table.
type TrancheSource struct {
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
}

// SourcesAndUses is the funding table at close.
type SourcesAndUses struct {
	PurchaseEV   float64         `json:"purchase_ev"` // Uses
	Debt         []TrancheSource `json:"debt"`
	TotalDebt    float64         `json:"total_debt"`
	Equity       float64         `json:"equity"`
	TotalSources float64         `json:"total_sources"`
}

// TranchePeriod tracks one tranche through one year.
type TranchePeriod struct {
	Name      string  `json:"name"`
	Opening   float64 `json:"opening"`
	Mandatory float64 `json:"mandatory"`
	Interest  float64 `json:"interest"`
	Sweep     float64 `json:"sweep"`
	Closing   float64 `json:"closing"`
}

// LBOPeriod is one operating year of the hold.
type LBOPeriod struct {
	Year          int             `json:"year"`
	EBITDA        float64         `json:"ebitda"`
	FCF           float64         `json:"fcf"`
	Mandatory     float64         `json:"mandatory"`
	Interest      float64         `json:"interest"`
	CashAvailable float64         `json:"cash_available"` // After mandatory debt service
	Sweep         float64         `json:"sweep"`
	Distribution  float64         `json:"distribution"`
	Cash          float64         `json:"cash"` // Accumulated, may go negative on shortfalls
	TotalDebt     float64         `json:"total_debt"`
	Tranches      []TranchePeriod `json:"tranches"`
}

// LBOResult holds the simulation and investor returns.
type LBOResult struct {
	SourcesAndUses SourcesAndUses `json:"sources_and_uses"`
	Periods        []LBOPeriod    `json:"periods"`

	ExitYear     int     `json:"exit_year"`
	ExitEBITDA   float64 `json:"exit_ebitda"`
	ExitMultiple float64 `json:"exit_multiple"`
	ExitEV       float64 `json:"exit_ev"`
	ExitDebt     float64 `json:"exit_debt"`
	ExitCash     float64 `json:"exit_cash"`
	ExitNetDebt  float64 `json:"exit_net_debt"`
	ExitEquity   float64 `json:"exit_equity"`

	EquityFlows []float64 `json:"equity_flows"` // t=0..exit year
	IRR         float64   `json:"irr"`
	MOIC        float64   `json:"moic"`
}

// SimulateLBO runs Close, Operate and Exit for one financing structure.
// Tranche definitions are read only; running balances stay in the run.
func SimulateLBO(input LBOInput) (*LBOResult, error) {
	s, err := newSimulation(input)
	if err != nil {
		return nil, err
	}
	for s.phase != phaseDone {
		if err := s.step(); err != nil {
			return nil, err
		}
	}
	return s.result, nil
}

// =============================================================================
// SIMULATION STATE
// =============================================================================

type lboPhase int

const (
	phaseClose lboPhase = iota
	phaseOperate
	phaseExit
	phaseDone
)

type simulation struct {
	phase     lboPhase
	structure models.LBOStructure
	sweep     assumption.SweepPolicy
	solver    SolverConfig
	periods   []projection.ProjectedPeriod

	order         []int     // Tranche indices, most senior first
	balances      []float64 // Indexed like structure.Tranches
	cash          float64
	equity        float64
	distributions []float64

	result *LBOResult
}

func newSimulation(input LBOInput) (*simulation, error) {
	a := input.Assumptions
	if err := a.Validate(); err != nil {
		return nil, err
	}
	structure, err := a.LBOStructure()
	if err != nil {
		return nil, err
	}
	if structure.ExitYear < 1 || structure.ExitYear > a.Horizon {
		return nil, errs.Assumption("exit_year", "must be in [1, %d], got %d", a.Horizon, structure.ExitYear)
	}
	periods, err := projection.Project(input.Baseline, a)
	if err != nil {
		return nil, err
	}

	order := make([]int, len(structure.Tranches))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return structure.Tranches[order[i]].Seniority < structure.Tranches[order[j]].Seniority
	})

	return &simulation{
		phase:     phaseClose,
		structure: structure,
		sweep:     a.Sweep,
		solver:    input.Solver,
		periods:   periods,
		order:     order,
		result:    &LBOResult{},
	}, nil
}

func (s *simulation) step() error {
	switch s.phase {
	case phaseClose:
		if err := s.close(); err != nil {
			return err
		}
		s.phase = phaseOperate
	case phaseOperate:
		for year := 1; year <= s.structure.ExitYear; year++ {
			s.operate(year)
		}
		s.phase = phaseExit
	case phaseExit:
		if err := s.exit(); err != nil {
			return err
		}
		s.phase = phaseDone
	}
	return nil
}

// close builds sources and uses; equity funds the residual.
func (s *simulation) close() error {
	ev := s.structure.PurchaseEV
	debt := s.structure.TotalDebt()
	if debt > ev {
		return errs.Assumption("debt_structure", "debt financing %.2f exceeds purchase EV %.2f", debt, ev)
	}
	residual := ev - debt
	if residual <= 0 {
		return errs.Assumption("equity_contribution", "no equity left to fund at close")
	}
	if ec := s.structure.EquityContribution; ec != nil && math.Abs(*ec-residual) > 1e-6*ev {
		return errs.Assumption("equity_contribution", "%.2f does not balance sources and uses (residual %.2f)", *ec, residual)
	}

	su := SourcesAndUses{PurchaseEV: ev, TotalDebt: debt, Equity: residual, TotalSources: debt + residual}
	s.balances = make([]float64, len(s.structure.Tranches))
	for i, t := range s.structure.Tranches {
		su.Debt = append(su.Debt, TrancheSource{Name: t.Name, Amount: t.Principal})
		s.balances[i] = t.Principal
	}
	s.equity = residual
	s.result.SourcesAndUses = su
	return nil
}

// operate services debt for one year: mandatory amortization, interest on
// the post-amortization balance, then the sweep waterfall.
func (s *simulation) operate(year int) {
	proj := s.periods[year-1]
	p := LBOPeriod{
		Year:     year,
		EBITDA:   proj.EBITDA,
		FCF:      proj.FCF,
		Tranches: make([]TranchePeriod, len(s.structure.Tranches)),
	}

	for _, i := range s.order {
		t := s.structure.Tranches[i]
		tp := TranchePeriod{Name: t.Name, Opening: s.balances[i]}
		tp.Mandatory = math.Min(t.MandatoryPayment(year), s.balances[i])
		s.balances[i] -= tp.Mandatory
		tp.Interest = t.Rate * s.balances[i]

		p.Mandatory += tp.Mandatory
		p.Interest += tp.Interest
		p.Tranches[i] = tp
	}

	p.CashAvailable = p.FCF - p.Mandatory - p.Interest
	if p.CashAvailable > 0 {
		remaining := p.CashAvailable * s.sweep.SweepPercent()
		for _, i := range s.order {
			if remaining <= 0 {
				break
			}
			if s.structure.Tranches[i].NoSweep || s.balances[i] <= 0 {
				continue
			}
			pay := math.Min(remaining, s.balances[i])
			s.balances[i] -= pay
			p.Tranches[i].Sweep = pay
			p.Sweep += pay
			remaining -= pay
		}

		residual := p.CashAvailable - p.Sweep
		if s.sweep.DistributeResidual {
			p.Distribution = residual
		} else {
			s.cash += residual
		}
	} else {
		s.cash += p.CashAvailable
	}

	for i := range p.Tranches {
		p.Tranches[i].Closing = s.balances[i]
		p.TotalDebt += s.balances[i]
	}
	p.Cash = s.cash

	s.distributions = append(s.distributions, p.Distribution)
	s.result.Periods = append(s.result.Periods, p)
}

// exit values the business at the exit multiple and solves investor returns.
func (s *simulation) exit() error {
	r := s.result
	last := r.Periods[len(r.Periods)-1]

	r.ExitYear = s.structure.ExitYear
	r.ExitEBITDA = last.EBITDA
	r.ExitMultiple = s.structure.ExitMultiple
	r.ExitEV = r.ExitEBITDA * r.ExitMultiple
	r.ExitDebt = last.TotalDebt
	r.ExitCash = s.cash
	r.ExitNetDebt = r.ExitDebt - r.ExitCash
	r.ExitEquity = math.Max(0, r.ExitEV-r.ExitNetDebt)

	flows := make([]float64, r.ExitYear+1)
	flows[0] = -s.equity
	proceeds := r.ExitEquity
	for i, d := range s.distributions {
		flows[i+1] = d
		proceeds += d
	}
	flows[r.ExitYear] += r.ExitEquity
	r.EquityFlows = flows
	r.MOIC = proceeds / s.equity

	irr, err := IRR(flows, s.solver)
	if err != nil {
		return err
	}
	r.IRR = irr
	return nil
}
