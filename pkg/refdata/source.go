// Package refdata provides reference actuarial, wage, and interest-rate
// data to the calculation stages through a single capability interface.
// Implementations degrade to documented fallback values when data is
// missing or unreachable; a lookup outside a table's supported domain is
// the one hard failure, since extrapolating beyond an authoritative table
// is not defensible in a forensic report.
package refdata

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
)

// ErrOutOfDomain indicates a lookup key entirely outside a reference
// table's supported domain, even after interpolation.
var ErrOutOfDomain = errors.New("lookup key outside reference table domain")

// Lookup is the result of a scalar reference-data lookup together with its
// citation and data-quality flags.
type Lookup struct {
	Value      float64
	SourceRef  string
	SourceDate string
	// IsFallback marks a documented substitute used because the
	// authoritative source was unavailable or had no matching category.
	IsFallback bool
	// Note carries lookup details worth surfacing in provenance, e.g.
	// which interpolation knots were used or which category substituted.
	Note string
}

// RateLookup is a wage-growth lookup. Series is non-nil only when the
// source provides a per-year term structure; otherwise Value is a constant
// annual rate. Won names the source that took precedence.
type RateLookup struct {
	Lookup
	Series []float64
	Won    string
}

// CurveLookup is a discount-rate lookup returning a DiscountCurve.
type CurveLookup struct {
	Curve      DiscountCurve
	SourceRef  string
	SourceDate string
	IsFallback bool
	Note       string
}

// Source is the capability interface the calculation stages depend on.
// Implementations must not block past the caller's context deadline; a
// timeout is treated like an unavailable source and answered with a
// fallback, never an error.
type Source interface {
	// LifeExpectancy returns the expected remaining years of life for the
	// given age and gender ("male" or "female").
	LifeExpectancy(ctx context.Context, age float64, gender string) (Lookup, error)

	// WorklifeExpectancy returns the expected remaining years of active
	// labor-force participation for the given age, gender, and education
	// category.
	WorklifeExpectancy(ctx context.Context, age float64, gender, education string) (Lookup, error)

	// WageGrowthRate returns the annual wage growth rate for an occupation
	// code within a jurisdiction, jurisdiction data taking precedence over
	// the national series.
	WageGrowthRate(ctx context.Context, occupation, jurisdiction string) (RateLookup, error)

	// DiscountRate returns the discount curve applicable as of the given
	// date. The curve is flat unless the source carries a term structure.
	DiscountRate(ctx context.Context, asOf time.Time) (CurveLookup, error)
}
