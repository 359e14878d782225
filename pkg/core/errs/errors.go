// Package errs defines the engine's error taxonomy.
//
// DataError covers malformed, gapped or empty input statements and peer sets.
// InvalidAssumptionError covers out-of-domain parameters. ConvergenceError is
// raised by the IRR root-finder. Undefined ratios are not errors.
package errs

import (
	"errors"
	"fmt"
)

// Kind names an error class for transport layers (JSON "kind" field).
type Kind string

const (
	KindData        Kind = "data_error"
	KindAssumption  Kind = "invalid_assumption"
	KindConvergence Kind = "convergence_error"
)

// DataError reports malformed, gapped or empty input data.
type DataError struct {
	Field string
	Msg   string
}

func (e *DataError) Error() string {
	if e.Field == "" {
		return "data error: " + e.Msg
	}
	return fmt.Sprintf("data error: %s: %s", e.Field, e.Msg)
}

// InvalidAssumptionError reports an out-of-domain assumption.
type InvalidAssumptionError struct {
	Field string
	Msg   string
}

func (e *InvalidAssumptionError) Error() string {
	if e.Field == "" {
		return "invalid assumption: " + e.Msg
	}
	return fmt.Sprintf("invalid assumption: %s: %s", e.Field, e.Msg)
}

// ConvergenceError reports a root-finder that could not bracket or converge.
type ConvergenceError struct {
	Op         string
	Iterations int
	Msg        string
}

func (e *ConvergenceError) Error() string {
	return fmt.Sprintf("convergence error: %s: %s (after %d iterations)", e.Op, e.Msg, e.Iterations)
}

// Data builds a DataError with a formatted message.
func Data(field, format string, args ...interface{}) error {
	return &DataError{Field: field, Msg: fmt.Sprintf(format, args...)}
}

// Assumption builds an InvalidAssumptionError with a formatted message.
func Assumption(field, format string, args ...interface{}) error {
	return &InvalidAssumptionError{Field: field, Msg: fmt.Sprintf(format, args...)}
}

func IsData(err error) bool {
	var e *DataError
	return errors.As(err, &e)
}

func IsInvalidAssumption(err error) bool {
	var e *InvalidAssumptionError
	return errors.As(err, &e)
}

func IsConvergence(err error) bool {
	var e *ConvergenceError
	return errors.As(err, &e)
}

// KindOf classifies err, returning "" for errors outside the taxonomy.
func KindOf(err error) Kind {
	switch {
	case IsData(err):
		return KindData
	case IsInvalidAssumption(err):
		return KindAssumption
	case IsConvergence(err):
		return KindConvergence
	}
	return ""
}
