// Package profile defines the subject profile consumed by the calculation
// pipeline and the validation applied before any stage runs.
package profile

import (
	"fmt"
	"strings"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/iwvelando/econloss/pkg/constants"
	"github.com/iwvelando/econloss/pkg/datetime"
)

// ErrInvalidProfile indicates a subject profile that fails its invariants.
// The pipeline surfaces it immediately and runs no stages.
var ErrInvalidProfile = errors.New("invalid subject profile")

// Gender is a closed enumeration.
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

// ParseGender normalizes common spellings into the enumeration.
func ParseGender(s string) (Gender, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "m", "male":
		return GenderMale, nil
	case "f", "female":
		return GenderFemale, nil
	default:
		return "", errors.Mark(errors.Newf("unrecognized gender %q", s), ErrInvalidProfile)
	}
}

// Education is a closed enumeration aligned with the worklife table
// categories.
type Education string

const (
	EducationLessThanHS    Education = "less_than_hs"
	EducationHighSchool    Education = "hs_graduate"
	EducationSomeCollege   Education = "some_college"
	EducationBachelorsPlus Education = "bachelors_plus"
)

// ParseEducation normalizes common education descriptions into the
// enumeration, mapping post-graduate degrees into the bachelors-plus
// category the worklife tables publish.
func ParseEducation(s string) (Education, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	key = strings.NewReplacer(" ", "_", "'", "").Replace(key)
	switch key {
	case "less_than_hs", "less_than_high_school":
		return EducationLessThanHS, nil
	case "hs_graduate", "high_school", "high_school_graduate":
		return EducationHighSchool, nil
	case "some_college", "associates", "associates_degree", "associate_degree":
		return EducationSomeCollege, nil
	case "bachelors_plus", "bachelors", "bachelors_degree", "masters", "masters_degree", "doctorate", "phd", "professional_degree":
		return EducationBachelorsPlus, nil
	default:
		return "", errors.Mark(errors.Newf("unrecognized education level %q", s), ErrInvalidProfile)
	}
}

// SubjectProfile is the immutable demographic and economic profile a
// pipeline run is computed from. Age is derived, not stored: it is the
// subject's age at the date of loss (the death date when present,
// otherwise the present date).
type SubjectProfile struct {
	Name         string
	BirthDate    time.Time
	PresentDate  time.Time
	DeathDate    *time.Time
	Gender       Gender
	Education    Education
	Occupation   string
	Salary       float64
	Jurisdiction string
}

// Age returns the subject's fractional age at the date of loss.
func (p SubjectProfile) Age() float64 {
	asOf := p.PresentDate
	if p.DeathDate != nil {
		asOf = *p.DeathDate
	}
	return datetime.AgeAt(p.BirthDate, asOf)
}

// Validate checks the profile invariants: age in [0, 120], salary >= 0,
// enum membership, and date ordering. All violations are reported, marked
// with ErrInvalidProfile.
func (p SubjectProfile) Validate() error {
	var problems []string

	if p.BirthDate.IsZero() {
		problems = append(problems, "birth date is required")
	}
	if p.PresentDate.IsZero() {
		problems = append(problems, "present date is required")
	}
	if !p.BirthDate.IsZero() && !p.PresentDate.IsZero() {
		if age := p.Age(); age < 0 || age > constants.MaxSubjectAge {
			problems = append(problems, fmt.Sprintf("age %.2f outside [0, %g]", age, constants.MaxSubjectAge))
		}
	}
	if p.DeathDate != nil && !p.BirthDate.IsZero() && p.DeathDate.Before(p.BirthDate) {
		problems = append(problems, "death date precedes birth date")
	}
	if p.Salary < 0 {
		problems = append(problems, fmt.Sprintf("salary %.2f is negative", p.Salary))
	}
	switch p.Gender {
	case GenderMale, GenderFemale:
	default:
		problems = append(problems, fmt.Sprintf("gender %q not in enumeration", p.Gender))
	}
	switch p.Education {
	case EducationLessThanHS, EducationHighSchool, EducationSomeCollege, EducationBachelorsPlus:
	default:
		problems = append(problems, fmt.Sprintf("education %q not in enumeration", p.Education))
	}

	if len(problems) > 0 {
		return errors.Mark(errors.Newf("subject profile: %s", strings.Join(problems, "; ")), ErrInvalidProfile)
	}
	return nil
}
