// Package datetime provides date and time utility functions.
package datetime

import (
	"time"

	"github.com/iwvelando/econloss/pkg/constants"
)

const (
	// DateLayout is the format expected for dates in config and profile
	// files and is also the output date format.
	DateLayout = constants.DateLayout

	// MonthLayout is the format used for keying monthly rate series.
	MonthLayout = constants.MonthLayout

	// hoursPerYear uses the mean Gregorian year length so that fractional
	// ages are stable across leap years.
	hoursPerYear = 24 * 365.2425
)

// MustParseTime parses a date string using the given layout and panics on
// error. This is intended for use in tests where the date string is known
// to be valid.
func MustParseTime(layout, dateStr string) time.Time {
	t, err := time.Parse(layout, dateStr)
	if err != nil {
		panic(err)
	}
	return t
}

// YearsBetween returns the fractional number of years from first to second.
// The result is negative when second precedes first.
func YearsBetween(first, second time.Time) float64 {
	return second.Sub(first).Hours() / hoursPerYear
}

// AgeAt returns the fractional age in years of someone born on birthDate
// as of asOf.
func AgeAt(birthDate, asOf time.Time) float64 {
	return YearsBetween(birthDate, asOf)
}

// MonthKey returns the month-series key for a date, e.g. "2025-06".
func MonthKey(t time.Time) string {
	return t.Format(MonthLayout)
}

// DateBeforeDate returns true if firstDate is strictly before secondDate.
func DateBeforeDate(firstDate, secondDate time.Time) bool {
	return firstDate.Before(secondDate)
}
