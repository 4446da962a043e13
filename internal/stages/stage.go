// Package stages implements the calculation stages of the loss pipeline.
// Each stage is a pure function of the subject profile, the upstream stage
// results, and the reference data source; it returns its numeric outputs
// together with the provenance entries that back them. Stages communicate
// only by value, never through shared mutable state.
package stages

import (
	"context"

	"github.com/iwvelando/econloss/internal/profile"
	"github.com/iwvelando/econloss/pkg/provenance"
	"github.com/iwvelando/econloss/pkg/refdata"
)

// Stage names, which double as the dependency-graph node identifiers.
const (
	StageLifeExpectancy     = "life_expectancy"
	StageWorklifeExpectancy = "worklife_expectancy"
	StageWageGrowth         = "wage_growth"
	StageDiscountRate       = "discount_rate"
	StagePresentValue       = "present_value"
)

// Output keys. The provenance entry finalizing an output uses the output
// key as its step ID; the pipeline's completeness check relies on that.
const (
	KeyRemainingYears      = "remaining_years"
	KeyWorklifeYears       = "worklife_years"
	KeyAnnualGrowthRate    = "annual_growth_rate"
	KeyDiscountRate        = "discount_rate"
	KeyTotalPresentValue   = "total_present_value"
	KeyTotalFutureEarnings = "total_future_earnings"
)

// Inputs is what a stage executes against.
type Inputs struct {
	Profile  profile.SubjectProfile
	Upstream map[string]*Result
	Source   refdata.Source
}

// Result is a completed stage's outputs plus the provenance behind them.
// It is owned exclusively by the pipeline once produced and never mutated
// after creation.
type Result struct {
	StageName string

	// Outputs holds the stage's named scalar outputs. Every key must be
	// covered by a provenance entry.
	Outputs map[string]float64

	// GrowthSeries is set by the wage growth stage: per-year annual growth
	// rates for the projection horizon.
	GrowthSeries []float64

	// Curve is set by the discount rate stage.
	Curve refdata.DiscountCurve

	// Cashflows is set by the present value stage.
	Cashflows []CashflowRow

	Provenance   []provenance.Entry
	UsedFallback bool
}

// Output returns a named scalar output, or zero if absent.
func (r *Result) Output(key string) float64 {
	if r == nil {
		return 0
	}
	return r.Outputs[key]
}

// CashflowRow is one projected year of the present value table.
type CashflowRow struct {
	YearIndex      int     `json:"year_index"`
	AgeAtYear      float64 `json:"age_at_year"`
	PortionOfYear  float64 `json:"portion_of_year"`
	NominalValue   float64 `json:"nominal_value"`
	DiscountFactor float64 `json:"discount_factor"`
	PresentValue   float64 `json:"present_value"`
}

// Stage is one calculation concern of the pipeline.
type Stage interface {
	// Name returns the stage's dependency-graph identifier.
	Name() string

	// Dependencies lists the stages whose results must be present in
	// Inputs.Upstream before Execute runs.
	Dependencies() []string

	// Execute performs the stage's calculation. Hard failures (out-of-domain
	// lookups) return an error; degraded reference data is not an error and
	// is carried through the fallback flags instead.
	Execute(ctx context.Context, in Inputs) (*Result, error)
}
