// Package validation provides output-format validation and advisory
// profile checks that produce warnings rather than errors.
package validation

import (
	"fmt"
	"time"

	"github.com/iwvelando/econloss/pkg/constants"
	"github.com/iwvelando/econloss/pkg/datetime"
)

// ValidateOutputFormat checks that the requested output format is one of
// the supported formats.
func ValidateOutputFormat(format string) error {
	switch format {
	case constants.OutputFormatPretty, constants.OutputFormatCSV, constants.OutputFormatJSON:
		return nil
	default:
		return fmt.Errorf("invalid output format %q; expected %s, %s, or %s",
			format, constants.OutputFormatPretty, constants.OutputFormatCSV, constants.OutputFormatJSON)
	}
}

// ProfileWarnings returns advisory warnings about profile values that are
// valid but unusual enough to be worth flagging before a report is relied
// on.
func ProfileWarnings(birthDate, presentDate time.Time, deathDate *time.Time, salary float64) []string {
	var warnings []string

	if salary == 0 {
		warnings = append(warnings, "annual salary is zero - the present value of lost earnings will be zero")
	}
	if deathDate != nil && presentDate.Before(*deathDate) {
		warnings = append(warnings, fmt.Sprintf("death date (%s) is after present date (%s) - projection starts at a future loss date",
			deathDate.Format(constants.DateLayout), presentDate.Format(constants.DateLayout)))
	}
	if years := datetime.YearsBetween(presentDate, time.Now()); years > 2 {
		warnings = append(warnings, fmt.Sprintf("present date (%s) is more than two years in the past - reference rates may be stale",
			presentDate.Format(constants.DateLayout)))
	}

	return warnings
}
