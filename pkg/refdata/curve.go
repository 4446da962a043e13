package refdata

import "github.com/cockroachdb/errors"

// CurvePoint is one (year offset, rate) pair of a discount curve.
type CurvePoint struct {
	YearOffset int     `json:"year_offset"`
	Rate       float64 `json:"rate"`
}

// DiscountCurve is an ordered schedule of rates by year offset. A flat
// curve is a single point; RateAt repeats the final rate beyond the last
// offset.
type DiscountCurve []CurvePoint

// FlatCurve returns a single-point curve applying rate at every offset.
func FlatCurve(rate float64) DiscountCurve {
	return DiscountCurve{{YearOffset: 0, Rate: rate}}
}

// RateAt returns the rate applicable at the given year offset. Offsets
// beyond the last point repeat the final rate.
func (c DiscountCurve) RateAt(offset int) float64 {
	if len(c) == 0 {
		return 0
	}
	rate := c[0].Rate
	for _, p := range c {
		if p.YearOffset > offset {
			break
		}
		rate = p.Rate
	}
	return rate
}

// IsFlat reports whether the curve applies a single rate at every offset.
func (c DiscountCurve) IsFlat() bool {
	return len(c) <= 1
}

// MaxOffset returns the largest year offset the curve explicitly covers.
func (c DiscountCurve) MaxOffset() int {
	if len(c) == 0 {
		return 0
	}
	return c[len(c)-1].YearOffset
}

// Validate checks the curve invariants: strictly increasing year offsets
// and rates no lower than -1.
func (c DiscountCurve) Validate() error {
	for i, p := range c {
		if p.Rate < -1 {
			return errors.Newf("discount curve rate %v at offset %d is below -1", p.Rate, p.YearOffset)
		}
		if i > 0 && p.YearOffset <= c[i-1].YearOffset {
			return errors.Newf("discount curve offsets not strictly increasing at index %d", i)
		}
	}
	return nil
}
