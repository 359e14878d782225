// Package projection extends the last historical period over the explicit
// forecast horizon: revenue by growth, EBITDA by margin, reinvestment by
// ratio, down to unlevered free cash flow.
package projection

import "corpval/pkg/core/assumption"

// =============================================================================
// PROJECTION STRATEGIES
// =============================================================================

// Context provides the values a strategy needs for one projected year.
type Context struct {
	Year          int     // 1-based projection year
	LastYearValue float64 // Prior year's value of the projected line
	Base          float64 // Value the line is a ratio of (e.g. revenue)
}

// Strategy is one forecasting rule for a single line item.
type Strategy interface {
	Name() string
	Calculate(ctx Context) float64
}

// GrowthStrategy: Value(t) = Value(t-1) × (1 + g_t)
type GrowthStrategy struct {
	Path assumption.Path
}

func (s GrowthStrategy) Name() string { return "GrowthRate" }

func (s GrowthStrategy) Calculate(ctx Context) float64 {
	return ctx.LastYearValue * (1 + s.Path.At(ctx.Year))
}

// MarginStrategy: Value(t) = Base(t) × margin_t
type MarginStrategy struct {
	Path assumption.Path
}

func (s MarginStrategy) Name() string { return "Margin" }

func (s MarginStrategy) Calculate(ctx Context) float64 {
	return ctx.Base * s.Path.At(ctx.Year)
}

// RatioStrategy applies a constant ratio to the base, e.g. capex / revenue
// or ΔNWC / Δrevenue.
type RatioStrategy struct {
	Ratio float64
}

func (s RatioStrategy) Name() string { return "Ratio" }

func (s RatioStrategy) Calculate(ctx Context) float64 {
	return ctx.Base * s.Ratio
}
