package stages_test

import (
	"context"
	"strings"
	"testing"

	"github.com/iwvelando/econloss/internal/stages"
	"github.com/iwvelando/econloss/pkg/provenance"
	"github.com/iwvelando/econloss/pkg/refdata"
	"github.com/iwvelando/econloss/pkg/testutil"
)

func upstreamLife(remaining float64) map[string]*stages.Result {
	return map[string]*stages.Result{
		stages.StageLifeExpectancy: {
			StageName: stages.StageLifeExpectancy,
			Outputs:   map[string]float64{stages.KeyRemainingYears: remaining},
		},
	}
}

func TestWorklifeExpectancyExecute(t *testing.T) {
	tests := []struct {
		name      string
		remaining float64
		table     float64
		worklife  float64
		clamped   bool
	}{
		{
			name:      "Table value within remaining life is adopted",
			remaining: 38.5,
			table:     19.2,
			worklife:  19.2,
		},
		{
			name:      "Table value above remaining life clamps to remaining life",
			remaining: 3.0,
			table:     19.2,
			worklife:  3.0,
			clamped:   true,
		},
		{
			name:      "Equal values do not clamp",
			remaining: 19.2,
			table:     19.2,
			worklife:  19.2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			source := &testutil.StubSource{
				Worklife: refdata.Lookup{Value: tt.table, SourceRef: "test worklife table"},
			}
			stage := stages.NewWorklifeExpectancy(nil)
			result, err := stage.Execute(context.Background(), stages.Inputs{
				Profile:  testutil.Profile(),
				Upstream: upstreamLife(tt.remaining),
				Source:   source,
			})
			if err != nil {
				t.Fatalf("Execute() error: %v", err)
			}

			if got := result.Output(stages.KeyWorklifeYears); got != tt.worklife {
				t.Errorf("worklife_years = %v, expected %v", got, tt.worklife)
			}
			if missing := provenance.MissingCoverage(result.Provenance, []string{stages.KeyWorklifeYears}); len(missing) > 0 {
				t.Errorf("provenance does not cover outputs: %v", missing)
			}

			// The clamp is an explicit provenance event, never silent.
			var clampRecorded bool
			for _, e := range result.Provenance {
				if e.StepID == stages.KeyWorklifeYears && strings.Contains(e.Description, "clamped") {
					clampRecorded = true
				}
			}
			if clampRecorded != tt.clamped {
				t.Errorf("clamp recorded in provenance = %v, expected %v", clampRecorded, tt.clamped)
			}
		})
	}
}

func TestWorklifeExpectancyMissingUpstream(t *testing.T) {
	stage := stages.NewWorklifeExpectancy(nil)
	_, err := stage.Execute(context.Background(), stages.Inputs{
		Profile: testutil.Profile(),
		Source:  &testutil.StubSource{},
	})
	if err == nil {
		t.Error("Execute() = nil error without the life expectancy result")
	}
}

func TestWorklifeExpectancyFallbackCategory(t *testing.T) {
	source := &testutil.StubSource{
		Worklife: refdata.Lookup{Value: 15.0, IsFallback: true, Note: "substituted default category"},
	}
	stage := stages.NewWorklifeExpectancy(nil)
	result, err := stage.Execute(context.Background(), stages.Inputs{
		Profile:  testutil.Profile(),
		Upstream: upstreamLife(38.5),
		Source:   source,
	})
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if !result.UsedFallback {
		t.Error("UsedFallback = false for a category substitution")
	}
	if !strings.Contains(result.Provenance[0].Description, "substituted default category") {
		t.Errorf("provenance %q does not carry the substitution note", result.Provenance[0].Description)
	}
}
