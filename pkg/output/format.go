// Package output provides utilities for formatting and displaying loss
// reports. It is one renderer behind the report's neutral contract; an
// Excel or PDF assembler would consume the same structure.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/iwvelando/econloss/internal/report"
	"github.com/iwvelando/econloss/pkg/constants"
)

// PrettyFormat writes a human-readable rather than machine-readable table.
// A report computed partly from fallback data gets a visible banner.
func PrettyFormat(w io.Writer, r *report.Report) {
	p := message.NewPrinter(language.English)
	fmt.Fprintf(w, "--- Economic loss report for %s ---\n", r.Profile.Name)
	fmt.Fprintf(w, "Run %s, as of %s\n", r.RunID, r.AsOf.Format(constants.DateLayout))
	if r.UsedFallback {
		fmt.Fprintf(w, "*** CONTAINS FALLBACK DATA: one or more values came from documented defaults, not authoritative sources ***\n")
	}
	fmt.Fprintf(w, "\n")

	for _, result := range r.Stages {
		fmt.Fprintf(w, "%-22s", result.StageName)
		keys := sortedKeys(result.Outputs)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, p.Sprintf("%s=%.4f", k, result.Outputs[k]))
		}
		fmt.Fprintf(w, "| %s", strings.Join(parts, ", "))
		if result.UsedFallback {
			fmt.Fprintf(w, " [fallback]")
		}
		fmt.Fprintf(w, "\n")
	}

	fmt.Fprintf(w, "\nYear | Age   | Portion | Nominal         | Factor   | Present Value\n")
	fmt.Fprintf(w, "____ | _____ | _______ | _______________ | ________ | _____________\n")
	for _, row := range r.Cashflows {
		_, _ = p.Fprintf(w, "%4d | %5.1f | %7.2f | $%14.2f | %8.6f | $%12.2f\n",
			row.YearIndex, row.AgeAtYear, row.PortionOfYear, row.NominalValue, row.DiscountFactor, row.PresentValue)
	}
	_, _ = p.Fprintf(w, "\nTotal future earnings: $%.2f\n", r.TotalFutureEarnings)
	_, _ = p.Fprintf(w, "Total present value:   $%.2f\n", r.TotalPresentValue)
}

// CsvFormat writes the cashflow table in comma-separated value format.
func CsvFormat(w io.Writer, r *report.Report) {
	fmt.Fprintf(w, `"year_index","age_at_year","portion_of_year","nominal_value","discount_factor","present_value"`)
	fmt.Fprintf(w, "\n")
	for _, row := range r.Cashflows {
		fmt.Fprintf(w, `"%d","%.2f","%.2f","%.2f","%.6f","%.2f"`,
			row.YearIndex, row.AgeAtYear, row.PortionOfYear, row.NominalValue, row.DiscountFactor, row.PresentValue)
		fmt.Fprintf(w, "\n")
	}
	fmt.Fprintf(w, `"total","","","%.2f","","%.2f"`, r.TotalFutureEarnings, r.TotalPresentValue)
	fmt.Fprintf(w, "\n")
}

// JSONFormat writes the report's full neutral serialization, indented.
func JSONFormat(w io.Writer, r *report.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
