package assumption

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"

	"corpval/pkg/core/errs"
)

// Path is a per-period parameter. A single value applies to every period;
// otherwise there is one value per projection year.
type Path []float64

// Flat builds a single-value path.
func Flat(v float64) Path { return Path{v} }

// At returns the value for projection year t (1-based).
func (p Path) At(t int) float64 {
	if len(p) == 1 {
		return p[0]
	}
	return p[t-1]
}

// Shift returns a copy with delta added to every value.
func (p Path) Shift(delta float64) Path {
	out := make(Path, len(p))
	for i, v := range p {
		out[i] = v + delta
	}
	return out
}

func (p Path) validate(field string, horizon int) error {
	if len(p) == 0 {
		return errs.Assumption(field, "path is empty")
	}
	if len(p) != 1 && len(p) != horizon {
		return errs.Assumption(field, "has %d values, horizon is %d", len(p), horizon)
	}
	for i, v := range p {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return errs.Assumption(field, "value %d is not finite", i+1)
		}
	}
	return nil
}

// UnmarshalJSON accepts a number or an array of numbers.
func (p *Path) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*p = nil
		return nil
	}
	if len(data) > 0 && data[0] == '[' {
		var values []float64
		if err := json.Unmarshal(data, &values); err != nil {
			return err
		}
		*p = values
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*p = Path{v}
	return nil
}

// MarshalJSON writes a flat path back as a scalar.
func (p Path) MarshalJSON() ([]byte, error) {
	if len(p) == 1 {
		return json.Marshal(p[0])
	}
	return json.Marshal([]float64(p))
}

// UnmarshalYAML implements yaml.v2's Unmarshaler for scalar or sequence paths.
func (p *Path) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var v float64
	if err := unmarshal(&v); err == nil {
		*p = Path{v}
		return nil
	}
	var values []float64
	if err := unmarshal(&values); err != nil {
		return fmt.Errorf("path must be a number or a list of numbers: %v", err)
	}
	*p = values
	return nil
}
