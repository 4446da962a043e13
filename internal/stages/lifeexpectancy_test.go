package stages_test

import (
	"context"
	"testing"

	"github.com/cockroachdb/errors"

	"github.com/iwvelando/econloss/internal/stages"
	"github.com/iwvelando/econloss/pkg/provenance"
	"github.com/iwvelando/econloss/pkg/refdata"
	"github.com/iwvelando/econloss/pkg/testutil"
)

func TestLifeExpectancyExecute(t *testing.T) {
	source := &testutil.StubSource{
		Life: refdata.Lookup{Value: 38.5, SourceRef: "test life table", SourceDate: "2022"},
	}

	stage := stages.NewLifeExpectancy(nil)
	result, err := stage.Execute(context.Background(), stages.Inputs{
		Profile: testutil.Profile(),
		Source:  source,
	})
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}

	if got := result.Output(stages.KeyRemainingYears); got != 38.5 {
		t.Errorf("remaining_years = %v, expected 38.5", got)
	}
	if result.UsedFallback {
		t.Error("UsedFallback = true for a clean lookup")
	}
	if missing := provenance.MissingCoverage(result.Provenance, []string{stages.KeyRemainingYears}); len(missing) > 0 {
		t.Errorf("provenance does not cover outputs: %v", missing)
	}
	if result.Provenance[0].SourceRef != "test life table" {
		t.Errorf("provenance SourceRef = %q, expected the lookup citation", result.Provenance[0].SourceRef)
	}
}

func TestLifeExpectancyExecuteLookupError(t *testing.T) {
	source := &testutil.StubSource{
		LifeErr: errors.Wrap(refdata.ErrOutOfDomain, "age 118"),
	}

	stage := stages.NewLifeExpectancy(nil)
	_, err := stage.Execute(context.Background(), stages.Inputs{
		Profile: testutil.Profile(),
		Source:  source,
	})
	if !errors.Is(err, refdata.ErrOutOfDomain) {
		t.Errorf("Execute() error = %v, expected ErrOutOfDomain to propagate", err)
	}
}

func TestLifeExpectancyCarriesFallbackFlag(t *testing.T) {
	source := &testutil.StubSource{
		Life: refdata.Lookup{Value: 30, IsFallback: true, Note: "substituted"},
	}

	stage := stages.NewLifeExpectancy(nil)
	result, err := stage.Execute(context.Background(), stages.Inputs{
		Profile: testutil.Profile(),
		Source:  source,
	})
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if !result.UsedFallback {
		t.Error("UsedFallback = false for a fallback lookup")
	}
	if !result.Provenance[0].IsFallback {
		t.Error("provenance entry not flagged as fallback")
	}
}
