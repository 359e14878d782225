// Package scenario orchestrates base, optimistic and pessimistic variants
// of one valuation case and two-axis sensitivity sweeps. It only composes
// the engines in calc, projection and valuation; it holds no state across
// calls and never mutates the caller's assumptions.
package scenario

import (
	"context"
	"log"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"corpval/pkg/config"
	"corpval/pkg/core/assumption"
	"corpval/pkg/core/calc"
	"corpval/pkg/core/errs"
	"corpval/pkg/core/valuation"
	"corpval/pkg/models"
)

// Built-in scenario names.
const (
	Base        = "base"
	Optimistic  = "optimistic"
	Pessimistic = "pessimistic"
)

// Delta shifts growth and margin paths (absolute) and the exit multiple.
type Delta struct {
	Growth       float64 `json:"growth"`
	Margin       float64 `json:"margin"`
	ExitMultiple float64 `json:"exit_multiple"`
}

// Engine runs scenario sets and sensitivity grids.
type Engine struct {
	workers int
	deltas  map[string]Delta
	solver  valuation.SolverConfig
	band    valuation.PercentileBand
}

// NewEngine builds an engine from loaded configuration.
func NewEngine(cfg *config.Config) *Engine {
	sc := cfg.Scenarios
	return &Engine{
		workers: cfg.Engine.Workers,
		deltas: map[string]Delta{
			Base:        {},
			Optimistic:  Delta(sc.Optimistic),
			Pessimistic: Delta(sc.Pessimistic),
		},
		solver: valuation.SolverConfig{
			Lower:         cfg.Solver.Lower,
			Upper:         cfg.Solver.Upper,
			Tolerance:     cfg.Solver.Tolerance,
			MaxIterations: cfg.Solver.MaxIterations,
		},
		band: valuation.PercentileBand{
			Low:  cfg.Multiples.LowPercentile,
			High: cfg.Multiples.HighPercentile,
		},
	}
}

// Delta returns the configured shift for a scenario name.
func (e *Engine) Delta(name string) (Delta, bool) {
	d, ok := e.deltas[name]
	return d, ok
}

// Request is one valuation case.
type Request struct {
	Statements   []models.StatementPeriod `json:"statements"`
	Assumptions  assumption.Assumptions   `json:"assumptions"`
	Models       []valuation.Kind         `json:"models,omitempty"`    // Default: every model the assumptions support
	Scenarios    []string                 `json:"scenarios,omitempty"` // Default: base, optimistic, pessimistic
	Transactions bool                     `json:"transactions,omitempty"`
}

// ModelError records one model that failed within a scenario.
type ModelError struct {
	Model   valuation.Kind `json:"model"`
	Kind    errs.Kind      `json:"kind,omitempty"`
	Message string         `json:"message"`
}

// Outcome is everything produced for one scenario.
type Outcome struct {
	Scenario    string                      `json:"scenario"`
	Delta       Delta                       `json:"delta"`
	Assumptions assumption.Assumptions      `json:"assumptions"`
	Results     []valuation.ValuationResult `json:"results"`
	Errors      []ModelError                `json:"errors,omitempty"`
}

// Report is the result of Run.
type Report struct {
	ID        string                        `json:"id"`
	Baseline  calc.MetricsRecord            `json:"baseline"`
	Scenarios []Outcome                     `json:"scenarios"`
	Summary   []valuation.FootballFieldLine `json:"summary"`
}

// prepared holds a request after eager validation.
type prepared struct {
	baseline  calc.MetricsRecord
	base      assumption.Assumptions
	models    []valuation.Kind
	scenarios []string
}

func (e *Engine) prepare(req Request) (*prepared, error) {
	_, baseline, err := Baseline(req.Statements)
	if err != nil {
		return nil, err
	}
	if err := req.Assumptions.Validate(); err != nil {
		return nil, err
	}

	p := &prepared{
		baseline:  baseline,
		base:      req.Assumptions.Clone(),
		models:    req.Models,
		scenarios: req.Scenarios,
	}
	if len(p.scenarios) == 0 {
		p.scenarios = []string{Base, Optimistic, Pessimistic}
	}
	for _, s := range p.scenarios {
		if _, ok := e.deltas[s]; !ok {
			return nil, errs.Assumption("scenarios", "unknown scenario %q", s)
		}
	}
	if len(p.models) == 0 {
		p.models = DefaultModels(p.base)
	}
	if len(p.models) == 0 {
		return nil, errs.Assumption("models", "assumptions support no valuation model: set wacc, peer_set or purchase_ev")
	}
	for _, m := range p.models {
		switch m {
		case valuation.KindDCF, valuation.KindMultiples, valuation.KindLBO:
		default:
			return nil, errs.Assumption("models", "unknown model %q", m)
		}
	}
	return p, nil
}

// DefaultModels picks the models the assumptions carry inputs for.
func DefaultModels(a assumption.Assumptions) []valuation.Kind {
	var out []valuation.Kind
	if a.WACC != nil || a.CostOfCapital != nil {
		out = append(out, valuation.KindDCF)
	}
	if len(a.PeerSet) > 0 {
		out = append(out, valuation.KindMultiples)
	}
	if a.PurchaseEV != nil {
		out = append(out, valuation.KindLBO)
	}
	return out
}

// slot is one scenario × model evaluation; each goroutine owns exactly one.
type slot struct {
	result *valuation.ValuationResult
	err    error
}

// Run values every requested scenario with every requested model. Invalid
// statements or base assumptions fail the whole call; a model failing in
// one scenario is recorded there and does not stop the others.
func (e *Engine) Run(ctx context.Context, req Request) (*Report, error) {
	p, err := e.prepare(req)
	if err != nil {
		return nil, err
	}
	log.Printf("[SCENARIO] Running %d scenario(s) × %d model(s) for %q", len(p.scenarios), len(p.models), p.base.Name)

	variants := make([]assumption.Assumptions, len(p.scenarios))
	for i, name := range p.scenarios {
		d := e.deltas[name]
		variants[i] = p.base.Adjust(d.Growth, d.Margin, d.ExitMultiple)
		variants[i].Name = name
	}

	slots := make([][]slot, len(p.scenarios))
	for i := range slots {
		slots[i] = make([]slot, len(p.models))
	}

	g, gctx := errgroup.WithContext(ctx)
	if e.workers > 0 {
		g.SetLimit(e.workers)
	}
	for i := range p.scenarios {
		for j, model := range p.models {
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				res, err := e.evaluate(model, p.scenarios[i], p.baseline, variants[i], req.Transactions)
				slots[i][j] = slot{result: res, err: err}
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	report := &Report{
		ID:        uuid.New().String(),
		Baseline:  p.baseline,
		Scenarios: make([]Outcome, len(p.scenarios)),
	}
	var all []valuation.ValuationResult
	for i, name := range p.scenarios {
		out := Outcome{
			Scenario:    name,
			Delta:       e.deltas[name],
			Assumptions: variants[i],
		}
		for j, s := range slots[i] {
			if s.err != nil {
				log.Printf("[SCENARIO] %s/%s failed: %v", name, p.models[j], s.err)
				out.Errors = append(out.Errors, ModelError{
					Model:   p.models[j],
					Kind:    errs.KindOf(s.err),
					Message: s.err.Error(),
				})
				continue
			}
			out.Results = append(out.Results, *s.result)
			all = append(all, *s.result)
		}
		report.Scenarios[i] = out
	}
	report.Summary = valuation.Summarize(all)
	return report, nil
}

func (e *Engine) evaluate(model valuation.Kind, scenario string, baseline calc.MetricsRecord, a assumption.Assumptions, transactions bool) (*valuation.ValuationResult, error) {
	var r valuation.ValuationResult
	switch model {
	case valuation.KindDCF:
		res, err := valuation.CalculateDCF(valuation.DCFInput{Baseline: baseline, Assumptions: a})
		if err != nil {
			return nil, err
		}
		r = valuation.NewDCFResult(scenario, a, res)
	case valuation.KindMultiples:
		multiples := valuation.CalculateComps
		if transactions {
			multiples = valuation.CalculateTransactions
		}
		res, err := multiples(valuation.TargetFromMetrics(baseline), a.PeerSet, e.band)
		if err != nil {
			return nil, err
		}
		r = valuation.NewMultiplesResult(scenario, a, res)
	case valuation.KindLBO:
		res, err := valuation.SimulateLBO(valuation.LBOInput{Baseline: baseline, Assumptions: a, Solver: e.solver})
		if err != nil {
			return nil, err
		}
		r = valuation.NewLBOResult(scenario, a, res)
	}
	return &r, nil
}

// Value runs one model on the unadjusted base case. Unlike Run, a model
// failure is returned as the error.
func (e *Engine) Value(req Request, model valuation.Kind) (*valuation.ValuationResult, error) {
	req.Models = []valuation.Kind{model}
	req.Scenarios = []string{Base}
	p, err := e.prepare(req)
	if err != nil {
		return nil, err
	}
	a := p.base.Clone()
	if a.Name == "" {
		a.Name = Base
	}
	return e.evaluate(model, Base, p.baseline, a, req.Transactions)
}

// Baseline computes the metrics history and returns it with its last record.
func Baseline(statements []models.StatementPeriod) ([]calc.MetricsRecord, calc.MetricsRecord, error) {
	records, err := calc.ComputeMetrics(statements)
	if err != nil {
		return nil, calc.MetricsRecord{}, err
	}
	return records, records[len(records)-1], nil
}
