package stages

import (
	"context"
	"fmt"
	"math"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/iwvelando/econloss/pkg/provenance"
)

// PresentValue composes the upstream results into the yearly cashflow
// table and its discounted total. Nominal wages compound annually from
// year 0; each year is discounted by the cumulative product of the
// discount curve's applicable rates; the final partial year is scaled by
// its portion of a year.
type PresentValue struct {
	logger *zap.Logger
}

// NewPresentValue creates the stage. If logger is nil, it will use a no-op
// logger to prevent panics.
func NewPresentValue(logger *zap.Logger) *PresentValue {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PresentValue{logger: logger}
}

// Name implements Stage.
func (s *PresentValue) Name() string { return StagePresentValue }

// Dependencies implements Stage.
func (s *PresentValue) Dependencies() []string {
	return []string{StageWorklifeExpectancy, StageWageGrowth, StageDiscountRate}
}

// Execute implements Stage.
func (s *PresentValue) Execute(ctx context.Context, in Inputs) (*Result, error) {
	worklifeResult, ok := in.Upstream[StageWorklifeExpectancy]
	if !ok {
		return nil, errors.Newf("missing upstream result %s", StageWorklifeExpectancy)
	}
	growthResult, ok := in.Upstream[StageWageGrowth]
	if !ok {
		return nil, errors.Newf("missing upstream result %s", StageWageGrowth)
	}
	discountResult, ok := in.Upstream[StageDiscountRate]
	if !ok {
		return nil, errors.Newf("missing upstream result %s", StageDiscountRate)
	}

	worklife := worklifeResult.Output(KeyWorklifeYears)
	growth := growthResult.GrowthSeries
	curve := discountResult.Curve
	base := in.Profile.Salary
	age := in.Profile.Age()
	usedFallback := worklifeResult.UsedFallback || growthResult.UsedFallback || discountResult.UsedFallback

	rec := provenance.NewRecorder()

	// No remaining worklife is a valid outcome, not an error.
	if worklife <= 0 {
		rec.Record(provenance.Entry{
			StepID:      KeyTotalFutureEarnings,
			Description: fmt.Sprintf("No remaining worklife (%.2f years); no future earnings projected", worklife),
			Value:       0,
			IsFallback:  usedFallback,
		})
		rec.Record(provenance.Entry{
			StepID:      KeyTotalPresentValue,
			Description: "Empty cashflow table; total present value is zero",
			Formula:     "PV = Σ nominal_t × discount_factor_t over zero years",
			Value:       0,
			IsFallback:  usedFallback,
		})
		return &Result{
			StageName:    StagePresentValue,
			Outputs:      map[string]float64{KeyTotalPresentValue: 0, KeyTotalFutureEarnings: 0},
			Cashflows:    []CashflowRow{},
			Provenance:   rec.Entries(),
			UsedFallback: usedFallback,
		}, nil
	}

	horizon := int(math.Ceil(worklife))
	finalPortion := worklife - math.Floor(worklife)
	if finalPortion == 0 {
		finalPortion = 1.0
	}

	if len(growth) > 0 && len(growth) < horizon {
		rec.Record(provenance.Entry{
			StepID: "growth_series_extension",
			Description: fmt.Sprintf("Growth rate series of %d years extended to horizon %d by repeating final rate",
				len(growth), horizon),
			Value:      growth[len(growth)-1],
			IsFallback: usedFallback,
		})
	}
	if curve.MaxOffset() < horizon-1 && !curve.IsFlat() {
		rec.Record(provenance.Entry{
			StepID: "discount_curve_extension",
			Description: fmt.Sprintf("Discount curve covering offsets through %d extended to horizon %d by repeating final rate",
				curve.MaxOffset(), horizon),
			Value:      curve.RateAt(curve.MaxOffset()),
			IsFallback: usedFallback,
		})
	}

	rows := make([]CashflowRow, 0, horizon)
	growthFactor := 1.0
	discountFactor := 1.0
	totalNominal := 0.0
	totalPV := 0.0
	for t := 0; t < horizon; t++ {
		growthFactor *= 1 + growthRateAt(growth, t)
		discountFactor /= 1 + curve.RateAt(t)

		portion := 1.0
		if t == horizon-1 {
			portion = finalPortion
		}
		nominal := base * growthFactor * portion
		pv := nominal * discountFactor

		rows = append(rows, CashflowRow{
			YearIndex:      t,
			AgeAtYear:      age + float64(t),
			PortionOfYear:  portion,
			NominalValue:   nominal,
			DiscountFactor: discountFactor,
			PresentValue:   pv,
		})
		totalNominal += nominal
		totalPV += pv
	}

	s.logger.Debug("cashflow table projected",
		zap.String("op", "stages.PresentValue.Execute"),
		zap.Int("horizon", horizon),
		zap.Float64("total_present_value", totalPV),
	)

	rec.Record(provenance.Entry{
		StepID: KeyTotalFutureEarnings,
		Description: fmt.Sprintf("Projected %d years of nominal earnings (final year portion %.2f)",
			horizon, finalPortion),
		Formula:    "nominal_t = base_salary × Π(1+growth_i), i = 0..t, scaled by portion of final year",
		Value:      totalNominal,
		IsFallback: usedFallback,
	})
	rec.Record(provenance.Entry{
		StepID:      KeyTotalPresentValue,
		Description: "Present value of projected earnings over the worklife horizon",
		Formula:     "PV = Σ nominal_t / Π(1+discount_rate_i), i = 0..t",
		Value:       totalPV,
		IsFallback:  usedFallback,
	})

	return &Result{
		StageName: StagePresentValue,
		Outputs: map[string]float64{
			KeyTotalPresentValue:   totalPV,
			KeyTotalFutureEarnings: totalNominal,
		},
		Cashflows:    rows,
		Provenance:   rec.Entries(),
		UsedFallback: usedFallback,
	}, nil
}

// growthRateAt returns the growth rate for year offset t, repeating the
// final rate beyond the series.
func growthRateAt(series []float64, t int) float64 {
	if len(series) == 0 {
		return 0
	}
	if t >= len(series) {
		return series[len(series)-1]
	}
	return series[t]
}
