// Package testutil provides common utility functions for testing.
package testutil

import (
	"context"
	"time"

	"github.com/iwvelando/econloss/internal/profile"
	"github.com/iwvelando/econloss/internal/stages"
	"github.com/iwvelando/econloss/pkg/datetime"
	"github.com/iwvelando/econloss/pkg/refdata"
)

// FindStage finds a stage result by name in the results slice. Returns nil
// when absent.
func FindStage(results []*stages.Result, name string) *stages.Result {
	for _, r := range results {
		if r.StageName == name {
			return r
		}
	}
	return nil
}

// Profile returns a valid subject profile for tests: a 40-year-old male
// software developer in California earning 95,000.
func Profile() profile.SubjectProfile {
	return profile.SubjectProfile{
		Name:         "Test Subject",
		BirthDate:    datetime.MustParseTime(datetime.DateLayout, "1985-06-15"),
		PresentDate:  datetime.MustParseTime(datetime.DateLayout, "2025-06-15"),
		Gender:       profile.GenderMale,
		Education:    profile.EducationBachelorsPlus,
		Occupation:   "15-1252",
		Salary:       95000,
		Jurisdiction: "CA",
	}
}

// StubSource is a deterministic refdata.Source for tests. Zero values
// answer every lookup; set the fields to shape specific scenarios.
type StubSource struct {
	Life        refdata.Lookup
	LifeErr     error
	Worklife    refdata.Lookup
	WorklifeErr error
	Wage        refdata.RateLookup
	WageErr     error
	Discount    refdata.CurveLookup
	DiscountErr error
}

// LifeExpectancy implements refdata.Source.
func (s *StubSource) LifeExpectancy(context.Context, float64, string) (refdata.Lookup, error) {
	return s.Life, s.LifeErr
}

// WorklifeExpectancy implements refdata.Source.
func (s *StubSource) WorklifeExpectancy(context.Context, float64, string, string) (refdata.Lookup, error) {
	return s.Worklife, s.WorklifeErr
}

// WageGrowthRate implements refdata.Source.
func (s *StubSource) WageGrowthRate(context.Context, string, string) (refdata.RateLookup, error) {
	return s.Wage, s.WageErr
}

// DiscountRate implements refdata.Source.
func (s *StubSource) DiscountRate(context.Context, time.Time) (refdata.CurveLookup, error) {
	return s.Discount, s.DiscountErr
}
