package valuation

import (
	"fmt"

	"github.com/google/uuid"

	"corpval/pkg/core/assumption"
)

// Kind tags which model produced a ValuationResult.
type Kind string

const (
	KindDCF       Kind = "dcf"
	KindMultiples Kind = "multiples"
	KindLBO       Kind = "lbo"
)

// ValuationResult is a tagged union: exactly one of DCF, Multiples or LBO
// is set, matching Kind. Assumptions is the copy that produced it.
type ValuationResult struct {
	ID          string                 `json:"id"`
	Kind        Kind                   `json:"kind"`
	Scenario    string                 `json:"scenario,omitempty"`
	Assumptions assumption.Assumptions `json:"assumptions"`

	DCF       *DCFResult       `json:"dcf,omitempty"`
	Multiples *MultiplesResult `json:"multiples,omitempty"`
	LBO       *LBOResult       `json:"lbo,omitempty"`
}

// ResultVisitor handles each result variant.
type ResultVisitor interface {
	VisitDCF(r *DCFResult) error
	VisitMultiples(r *MultiplesResult) error
	VisitLBO(r *LBOResult) error
}

// Visit dispatches to the visitor method for r's kind.
func (r ValuationResult) Visit(v ResultVisitor) error {
	switch {
	case r.Kind == KindDCF && r.DCF != nil:
		return v.VisitDCF(r.DCF)
	case r.Kind == KindMultiples && r.Multiples != nil:
		return v.VisitMultiples(r.Multiples)
	case r.Kind == KindLBO && r.LBO != nil:
		return v.VisitLBO(r.LBO)
	}
	return fmt.Errorf("malformed valuation result: kind %q without matching payload", r.Kind)
}

func newResult(kind Kind, scenario string, a assumption.Assumptions) ValuationResult {
	return ValuationResult{
		ID:          uuid.New().String(),
		Kind:        kind,
		Scenario:    scenario,
		Assumptions: a.Clone(),
	}
}

// NewDCFResult wraps a DCF outcome.
func NewDCFResult(scenario string, a assumption.Assumptions, d *DCFResult) ValuationResult {
	r := newResult(KindDCF, scenario, a)
	r.DCF = d
	return r
}

// NewMultiplesResult wraps a multiples outcome.
func NewMultiplesResult(scenario string, a assumption.Assumptions, m *MultiplesResult) ValuationResult {
	r := newResult(KindMultiples, scenario, a)
	r.Multiples = m
	return r
}

// NewLBOResult wraps an LBO outcome.
func NewLBOResult(scenario string, a assumption.Assumptions, l *LBOResult) ValuationResult {
	r := newResult(KindLBO, scenario, a)
	r.LBO = l
	return r
}
