// Package constants provides shared constants for the econloss application.
package constants

import "time"

// DateLayout is the format expected for dates in config and profile files
// and is also the output date format.
const DateLayout = "2006-01-02"

// MonthLayout is the format used for keying monthly rate series.
const MonthLayout = "2006-01"

// Financial constants
const (
	// DecimalPrecision is the precision for currency rounding (2 decimal places)
	DecimalPrecision = 100

	// RatePrecision is the precision for rate rounding (4 decimal places)
	RatePrecision = 10000

	// CurrencyTolerance is the tolerance for currency comparisons (1 cent)
	CurrencyTolerance = 0.01

	// PercentageMultiplier is used for percentage conversions
	PercentageMultiplier = 100.0
)

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatCSV is the CSV output format
	OutputFormatCSV = "csv"

	// OutputFormatJSON is the machine-readable JSON output format
	OutputFormatJSON = "json"
)

// Configuration file constants
const (
	// DefaultConfigFile is the default configuration file name
	DefaultConfigFile = "config.yaml"

	// DefaultProfileFile is the default subject profile file name
	DefaultProfileFile = "profile.yaml"
)

// Reference-data defaults. These seed the configuration; the data source
// layer receives them at construction time and labels any use of them as
// a fallback in provenance.
const (
	// DefaultFallbackDiscountRate is the flat discount rate applied when no
	// treasury rate is available for the as-of date.
	DefaultFallbackDiscountRate = 0.0425

	// DefaultFallbackWageGrowthRate is the annual wage growth rate applied
	// when neither a jurisdiction nor a national rate is available.
	DefaultFallbackWageGrowthRate = 0.028

	// DefaultEducationCategory is the worklife table category substituted
	// when the subject's education level has no table of its own.
	DefaultEducationCategory = "hs_graduate"

	// DefaultProjectionYears is the length of generated rate series when a
	// source provides a single constant rather than a term structure.
	DefaultProjectionYears = 50

	// DefaultLookupTimeout bounds any live reference-data fetch.
	DefaultLookupTimeout = 5 * time.Second
)

// Subject profile bounds
const (
	// MaxSubjectAge is the upper bound for a valid subject age.
	MaxSubjectAge = 120.0
)
