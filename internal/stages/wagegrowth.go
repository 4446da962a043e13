package stages

import (
	"context"
	"fmt"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/iwvelando/econloss/internal/profile"
	"github.com/iwvelando/econloss/pkg/constants"
	"github.com/iwvelando/econloss/pkg/mathutil"
	"github.com/iwvelando/econloss/pkg/provenance"
)

// educationGrowthAdjustment is the documented adjustment applied to the
// base wage growth rate per education level, reflecting the steeper
// earnings trajectories of higher educational attainment.
var educationGrowthAdjustment = map[profile.Education]float64{
	profile.EducationLessThanHS:    -0.005,
	profile.EducationHighSchool:    0.0,
	profile.EducationSomeCollege:   0.002,
	profile.EducationBachelorsPlus: 0.005,
}

// WageGrowth projects the subject's annual wage growth rate series.
// Jurisdiction-specific labor-market data takes precedence over the
// national series, and which source won is itself recorded in provenance,
// not merely the final number.
type WageGrowth struct {
	logger *zap.Logger

	// horizon is the series length generated from a constant rate.
	horizon int
}

// NewWageGrowth creates the stage. If logger is nil, it will use a no-op
// logger to prevent panics.
func NewWageGrowth(logger *zap.Logger) *WageGrowth {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WageGrowth{logger: logger, horizon: constants.DefaultProjectionYears}
}

// Name implements Stage.
func (s *WageGrowth) Name() string { return StageWageGrowth }

// Dependencies implements Stage.
func (s *WageGrowth) Dependencies() []string { return nil }

// Execute implements Stage.
func (s *WageGrowth) Execute(ctx context.Context, in Inputs) (*Result, error) {
	lookup, err := in.Source.WageGrowthRate(ctx, in.Profile.Occupation, in.Profile.Jurisdiction)
	if err != nil {
		return nil, errors.Wrap(err, "wage growth lookup")
	}

	rec := provenance.NewRecorder()
	rec.Record(provenance.Entry{
		StepID: "wage_growth_source",
		Description: fmt.Sprintf("Base wage growth for occupation %s in jurisdiction %s; source precedence winner: %s",
			in.Profile.Occupation, in.Profile.Jurisdiction, lookup.Won),
		Formula:    "jurisdiction series over national series over fallback constant",
		SourceRef:  lookup.SourceRef,
		SourceDate: lookup.SourceDate,
		Value:      lookup.Value,
		IsFallback: lookup.IsFallback,
	})

	adjustment := educationGrowthAdjustment[in.Profile.Education]
	rate := mathutil.RoundRate(lookup.Value + adjustment)
	rec.Record(provenance.Entry{
		StepID: "education_adjustment",
		Description: fmt.Sprintf("Growth rate adjusted %+0.3f for education level %s",
			adjustment, in.Profile.Education),
		Formula:    "base_growth_rate + education_adjustment",
		Value:      rate,
		IsFallback: lookup.IsFallback,
	})

	series := lookup.Series
	if len(series) == 0 {
		series = make([]float64, s.horizon)
		for i := range series {
			series[i] = rate
		}
	} else {
		adjusted := make([]float64, len(series))
		for i, r := range series {
			adjusted[i] = mathutil.RoundRate(r + adjustment)
		}
		series = adjusted
	}

	s.logger.Debug("wage growth series projected",
		zap.String("op", "stages.WageGrowth.Execute"),
		zap.Float64("annual_growth_rate", rate),
		zap.Int("series_length", len(series)),
		zap.String("won", lookup.Won),
	)

	rec.Record(provenance.Entry{
		StepID:      KeyAnnualGrowthRate,
		Description: fmt.Sprintf("Annual wage growth rate projected over %d years", len(series)),
		Formula:     "constant rate repeated over projection horizon",
		SourceRef:   lookup.SourceRef,
		SourceDate:  lookup.SourceDate,
		Value:       rate,
		IsFallback:  lookup.IsFallback,
	})

	return &Result{
		StageName:    StageWageGrowth,
		Outputs:      map[string]float64{KeyAnnualGrowthRate: rate},
		GrowthSeries: series,
		Provenance:   rec.Entries(),
		UsedFallback: lookup.IsFallback,
	}, nil
}
