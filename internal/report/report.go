// Package report defines the final aggregate a pipeline run produces: the
// subject profile, every stage result, the yearly cashflow table, summary
// totals, and the full concatenated provenance. A Report is created once
// per run, read-only thereafter, and serializes to a neutral nested
// mapping of primitives so any downstream renderer can consume it without
// depending on internal types.
package report

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/iwvelando/econloss/internal/profile"
	"github.com/iwvelando/econloss/internal/stages"
	"github.com/iwvelando/econloss/pkg/constants"
	"github.com/iwvelando/econloss/pkg/provenance"
)

// runIDNamespace scopes the deterministic run IDs to this module.
var runIDNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("github.com/iwvelando/econloss"))

// Report is the final aggregate result of one pipeline run.
type Report struct {
	RunID               uuid.UUID
	AsOf                time.Time
	Profile             profile.SubjectProfile
	Stages              []*stages.Result
	Cashflows           []stages.CashflowRow
	TotalPresentValue   float64
	TotalFutureEarnings float64
	// UsedFallback is true when any stage answered from a documented
	// fallback; renderers are expected to surface it visibly.
	UsedFallback bool
	Provenance   []provenance.Entry
}

// New assembles a Report from ordered stage results and the run-level
// provenance log. The run ID is a SHA-1 UUID over the canonical profile
// inputs, so identical inputs produce identical reports.
func New(prof profile.SubjectProfile, results []*stages.Result, prov []provenance.Entry) *Report {
	r := &Report{
		RunID:      runID(prof),
		AsOf:       prof.PresentDate,
		Profile:    prof,
		Stages:     results,
		Cashflows:  []stages.CashflowRow{},
		Provenance: prov,
	}
	for _, result := range results {
		if result.UsedFallback {
			r.UsedFallback = true
		}
		if result.StageName == stages.StagePresentValue {
			if result.Cashflows != nil {
				r.Cashflows = result.Cashflows
			}
			r.TotalPresentValue = result.Output(stages.KeyTotalPresentValue)
			r.TotalFutureEarnings = result.Output(stages.KeyTotalFutureEarnings)
		}
	}
	return r
}

func runID(prof profile.SubjectProfile) uuid.UUID {
	death := ""
	if prof.DeathDate != nil {
		death = prof.DeathDate.Format(constants.DateLayout)
	}
	canonical := fmt.Sprintf("%s|%s|%s|%s|%s|%s|%s|%.2f|%s",
		prof.Name,
		prof.BirthDate.Format(constants.DateLayout),
		prof.PresentDate.Format(constants.DateLayout),
		death,
		prof.Gender,
		prof.Education,
		prof.Occupation,
		prof.Salary,
		prof.Jurisdiction,
	)
	return uuid.NewSHA1(runIDNamespace, []byte(canonical))
}

// ToMap renders the report as a nested mapping of primitives, the neutral
// contract consumed by external renderers.
func (r *Report) ToMap() map[string]interface{} {
	death := ""
	if r.Profile.DeathDate != nil {
		death = r.Profile.DeathDate.Format(constants.DateLayout)
	}

	stageMaps := make([]map[string]interface{}, 0, len(r.Stages))
	for _, result := range r.Stages {
		stageMaps = append(stageMaps, map[string]interface{}{
			"stage_name":    result.StageName,
			"outputs":       result.Outputs,
			"used_fallback": result.UsedFallback,
			"provenance":    entryMaps(result.Provenance),
		})
	}

	rows := make([]map[string]interface{}, 0, len(r.Cashflows))
	for _, row := range r.Cashflows {
		rows = append(rows, map[string]interface{}{
			"year_index":      row.YearIndex,
			"age_at_year":     row.AgeAtYear,
			"portion_of_year": row.PortionOfYear,
			"nominal_value":   row.NominalValue,
			"discount_factor": row.DiscountFactor,
			"present_value":   row.PresentValue,
		})
	}

	averageAnnual := 0.0
	if len(r.Cashflows) > 0 {
		averageAnnual = r.TotalFutureEarnings / float64(len(r.Cashflows))
	}

	return map[string]interface{}{
		"run_id": r.RunID.String(),
		"as_of":  r.AsOf.Format(constants.DateLayout),
		"subject_profile": map[string]interface{}{
			"name":         r.Profile.Name,
			"birth_date":   r.Profile.BirthDate.Format(constants.DateLayout),
			"present_date": r.Profile.PresentDate.Format(constants.DateLayout),
			"death_date":   death,
			"age":          r.Profile.Age(),
			"gender":       string(r.Profile.Gender),
			"education":    string(r.Profile.Education),
			"occupation":   r.Profile.Occupation,
			"salary":       r.Profile.Salary,
			"jurisdiction": r.Profile.Jurisdiction,
		},
		"stages":   stageMaps,
		"cashflow": rows,
		"summary": map[string]interface{}{
			"total_present_value":    r.TotalPresentValue,
			"total_future_earnings":  r.TotalFutureEarnings,
			"average_annual_nominal": averageAnnual,
			"years_projected":        len(r.Cashflows),
			"used_fallback":          r.UsedFallback,
		},
		"provenance": entryMaps(r.Provenance),
	}
}

func entryMaps(entries []provenance.Entry) []map[string]interface{} {
	out := make([]map[string]interface{}, 0, len(entries))
	for _, e := range entries {
		out = append(out, map[string]interface{}{
			"step_id":     e.StepID,
			"description": e.Description,
			"formula":     e.Formula,
			"source_ref":  e.SourceRef,
			"source_date": e.SourceDate,
			"value":       e.Value,
			"is_fallback": e.IsFallback,
		})
	}
	return out
}

// MarshalJSON serializes the neutral mapping. Map keys marshal in sorted
// order, so identical inputs yield byte-identical output.
func (r *Report) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.ToMap())
}
