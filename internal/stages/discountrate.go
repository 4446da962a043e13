package stages

import (
	"context"
	"fmt"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/iwvelando/econloss/pkg/provenance"
)

// DiscountRate determines the discount curve for converting future
// cashflows to present value, using a risk-free treasury rate proxy. The
// curve is flat unless the source explicitly returns a term structure.
type DiscountRate struct {
	logger *zap.Logger
}

// NewDiscountRate creates the stage. If logger is nil, it will use a no-op
// logger to prevent panics.
func NewDiscountRate(logger *zap.Logger) *DiscountRate {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DiscountRate{logger: logger}
}

// Name implements Stage.
func (s *DiscountRate) Name() string { return StageDiscountRate }

// Dependencies implements Stage.
func (s *DiscountRate) Dependencies() []string { return nil }

// Execute implements Stage.
func (s *DiscountRate) Execute(ctx context.Context, in Inputs) (*Result, error) {
	lookup, err := in.Source.DiscountRate(ctx, in.Profile.PresentDate)
	if err != nil {
		return nil, errors.Wrap(err, "discount rate lookup")
	}
	if err := lookup.Curve.Validate(); err != nil {
		return nil, errors.Wrap(err, "discount curve from source")
	}

	shape := "term structure"
	if lookup.Curve.IsFlat() {
		shape = "flat"
	}
	rate := lookup.Curve.RateAt(0)

	s.logger.Debug("discount curve resolved",
		zap.String("op", "stages.DiscountRate.Execute"),
		zap.Float64("rate_at_0", rate),
		zap.String("shape", shape),
		zap.Bool("is_fallback", lookup.IsFallback),
	)

	description := fmt.Sprintf("Risk-free discount rate proxy as of %s (%s curve)",
		in.Profile.PresentDate.Format("2006-01-02"), shape)
	if lookup.Note != "" {
		description += ": " + lookup.Note
	}
	rec := provenance.NewRecorder()
	rec.Record(provenance.Entry{
		StepID:      KeyDiscountRate,
		Description: description,
		Formula:     "1-year treasury constant maturity rate",
		SourceRef:   lookup.SourceRef,
		SourceDate:  lookup.SourceDate,
		Value:       rate,
		IsFallback:  lookup.IsFallback,
	})

	return &Result{
		StageName:    StageDiscountRate,
		Outputs:      map[string]float64{KeyDiscountRate: rate},
		Curve:        lookup.Curve,
		Provenance:   rec.Entries(),
		UsedFallback: lookup.IsFallback,
	}, nil
}
