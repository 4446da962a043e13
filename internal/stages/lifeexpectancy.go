package stages

import (
	"context"
	"fmt"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/iwvelando/econloss/pkg/provenance"
)

// LifeExpectancy computes the subject's expected remaining years of life
// from the life table. A pure lookup: no retry logic, and a fallback
// answer from the source is carried forward on the result flags.
type LifeExpectancy struct {
	logger *zap.Logger
}

// NewLifeExpectancy creates the stage. If logger is nil, it will use a
// no-op logger to prevent panics.
func NewLifeExpectancy(logger *zap.Logger) *LifeExpectancy {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LifeExpectancy{logger: logger}
}

// Name implements Stage.
func (s *LifeExpectancy) Name() string { return StageLifeExpectancy }

// Dependencies implements Stage.
func (s *LifeExpectancy) Dependencies() []string { return nil }

// Execute implements Stage.
func (s *LifeExpectancy) Execute(ctx context.Context, in Inputs) (*Result, error) {
	age := in.Profile.Age()
	lookup, err := in.Source.LifeExpectancy(ctx, age, string(in.Profile.Gender))
	if err != nil {
		return nil, errors.Wrap(err, "life expectancy lookup")
	}

	s.logger.Debug("life expectancy resolved",
		zap.String("op", "stages.LifeExpectancy.Execute"),
		zap.Float64("age", age),
		zap.Float64("remaining_years", lookup.Value),
		zap.Bool("is_fallback", lookup.IsFallback),
	)

	formula := fmt.Sprintf("life table e(x) at age %.2f, gender %s", age, in.Profile.Gender)
	description := fmt.Sprintf("Expected remaining years of life for %s aged %.2f", in.Profile.Gender, age)
	if lookup.Note != "" {
		description += " (" + lookup.Note + ")"
	}

	rec := provenance.NewRecorder()
	rec.Record(provenance.Entry{
		StepID:      KeyRemainingYears,
		Description: description,
		Formula:     formula,
		SourceRef:   lookup.SourceRef,
		SourceDate:  lookup.SourceDate,
		Value:       lookup.Value,
		IsFallback:  lookup.IsFallback,
	})

	return &Result{
		StageName:    StageLifeExpectancy,
		Outputs:      map[string]float64{KeyRemainingYears: lookup.Value},
		Provenance:   rec.Entries(),
		UsedFallback: lookup.IsFallback,
	}, nil
}
