package stages

import (
	"context"
	"fmt"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/iwvelando/econloss/pkg/provenance"
)

// WorklifeExpectancy computes expected remaining worklife years from the
// Markov-model worklife tables, bounded above by the life expectancy
// stage's output: nobody works longer than they are expected to live.
// When the raw lookup exceeds remaining life it is clamped, and the clamp
// itself is recorded in provenance rather than silently applied.
type WorklifeExpectancy struct {
	logger *zap.Logger
}

// NewWorklifeExpectancy creates the stage. If logger is nil, it will use a
// no-op logger to prevent panics.
func NewWorklifeExpectancy(logger *zap.Logger) *WorklifeExpectancy {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WorklifeExpectancy{logger: logger}
}

// Name implements Stage.
func (s *WorklifeExpectancy) Name() string { return StageWorklifeExpectancy }

// Dependencies implements Stage.
func (s *WorklifeExpectancy) Dependencies() []string {
	return []string{StageLifeExpectancy}
}

// Execute implements Stage.
func (s *WorklifeExpectancy) Execute(ctx context.Context, in Inputs) (*Result, error) {
	upstream, ok := in.Upstream[StageLifeExpectancy]
	if !ok {
		return nil, errors.Newf("missing upstream result %s", StageLifeExpectancy)
	}
	remaining := upstream.Output(KeyRemainingYears)

	age := in.Profile.Age()
	lookup, err := in.Source.WorklifeExpectancy(ctx, age, string(in.Profile.Gender), string(in.Profile.Education))
	if err != nil {
		return nil, errors.Wrap(err, "worklife expectancy lookup")
	}

	rec := provenance.NewRecorder()
	description := fmt.Sprintf("Worklife expectancy for %s aged %.2f, education %s",
		in.Profile.Gender, age, in.Profile.Education)
	if lookup.Note != "" {
		description += " (" + lookup.Note + ")"
	}
	rec.Record(provenance.Entry{
		StepID:      "worklife_table_lookup",
		Description: description,
		Formula:     "Markov model of labor force activity, age/gender/education keyed",
		SourceRef:   lookup.SourceRef,
		SourceDate:  lookup.SourceDate,
		Value:       lookup.Value,
		IsFallback:  lookup.IsFallback,
	})

	worklife := lookup.Value
	if worklife > remaining {
		clamped := remaining
		s.logger.Info("worklife exceeds remaining life expectancy, clamping",
			zap.String("op", "stages.WorklifeExpectancy.Execute"),
			zap.Float64("worklife_years", worklife),
			zap.Float64("remaining_years", remaining),
		)
		rec.Record(provenance.Entry{
			StepID: KeyWorklifeYears,
			Description: fmt.Sprintf(
				"Worklife expectancy %.2f exceeds remaining life expectancy %.2f; clamped to remaining life",
				worklife, remaining),
			Formula:    "min(worklife_table_value, remaining_years)",
			Value:      clamped,
			IsFallback: lookup.IsFallback,
		})
		worklife = clamped
	} else {
		rec.Record(provenance.Entry{
			StepID:      KeyWorklifeYears,
			Description: "Worklife expectancy within remaining life expectancy; table value adopted",
			Formula:     "min(worklife_table_value, remaining_years)",
			SourceRef:   lookup.SourceRef,
			SourceDate:  lookup.SourceDate,
			Value:       worklife,
			IsFallback:  lookup.IsFallback,
		})
	}

	return &Result{
		StageName:    StageWorklifeExpectancy,
		Outputs:      map[string]float64{KeyWorklifeYears: worklife},
		Provenance:   rec.Entries(),
		UsedFallback: lookup.IsFallback,
	}, nil
}
