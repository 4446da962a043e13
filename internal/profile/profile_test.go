package profile

import (
	"strings"
	"testing"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/iwvelando/econloss/pkg/constants"
	"github.com/iwvelando/econloss/pkg/datetime"
)

func TestParseGender(t *testing.T) {
	tests := []struct {
		in      string
		out     Gender
		wantErr bool
	}{
		{"male", GenderMale, false},
		{"M", GenderMale, false},
		{" Female ", GenderFemale, false},
		{"f", GenderFemale, false},
		{"unknown", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		got, err := ParseGender(tt.in)
		if tt.wantErr {
			if !errors.Is(err, ErrInvalidProfile) {
				t.Errorf("ParseGender(%q) error = %v, expected ErrInvalidProfile", tt.in, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseGender(%q) error: %v", tt.in, err)
			continue
		}
		if got != tt.out {
			t.Errorf("ParseGender(%q) = %q, expected %q", tt.in, got, tt.out)
		}
	}
}

func TestParseEducation(t *testing.T) {
	tests := []struct {
		in      string
		out     Education
		wantErr bool
	}{
		{"hs_graduate", EducationHighSchool, false},
		{"High School", EducationHighSchool, false},
		{"bachelors", EducationBachelorsPlus, false},
		{"Master's Degree", EducationBachelorsPlus, false},
		{"PhD", EducationBachelorsPlus, false},
		{"associates", EducationSomeCollege, false},
		{"less than high school", EducationLessThanHS, false},
		{"trade_certificate", "", true},
	}
	for _, tt := range tests {
		got, err := ParseEducation(tt.in)
		if tt.wantErr {
			if !errors.Is(err, ErrInvalidProfile) {
				t.Errorf("ParseEducation(%q) error = %v, expected ErrInvalidProfile", tt.in, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseEducation(%q) error: %v", tt.in, err)
			continue
		}
		if got != tt.out {
			t.Errorf("ParseEducation(%q) = %q, expected %q", tt.in, got, tt.out)
		}
	}
}

func validProfile() SubjectProfile {
	return SubjectProfile{
		Name:         "Test Subject",
		BirthDate:    datetime.MustParseTime(constants.DateLayout, "1985-06-15"),
		PresentDate:  datetime.MustParseTime(constants.DateLayout, "2025-06-15"),
		Gender:       GenderMale,
		Education:    EducationBachelorsPlus,
		Occupation:   "15-1252",
		Salary:       95000,
		Jurisdiction: "CA",
	}
}

func TestAge(t *testing.T) {
	p := validProfile()
	if age := p.Age(); age < 39.9 || age > 40.1 {
		t.Errorf("Age() = %v, expected about 40", age)
	}

	// A death date moves the as-of point for age.
	death := datetime.MustParseTime(constants.DateLayout, "2015-06-15")
	p.DeathDate = &death
	if age := p.Age(); age < 29.9 || age > 30.1 {
		t.Errorf("Age() with death date = %v, expected about 30", age)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*SubjectProfile)
		problem string
	}{
		{
			name:   "Valid profile passes",
			mutate: func(p *SubjectProfile) {},
		},
		{
			name: "Missing birth date",
			mutate: func(p *SubjectProfile) {
				p.BirthDate = time.Time{}
			},
			problem: "birth date is required",
		},
		{
			name: "Negative age",
			mutate: func(p *SubjectProfile) {
				p.BirthDate = datetime.MustParseTime(constants.DateLayout, "2030-01-01")
			},
			problem: "outside [0, 120]",
		},
		{
			name: "Age above the maximum",
			mutate: func(p *SubjectProfile) {
				p.BirthDate = datetime.MustParseTime(constants.DateLayout, "1900-01-01")
			},
			problem: "outside [0, 120]",
		},
		{
			name: "Negative salary",
			mutate: func(p *SubjectProfile) {
				p.Salary = -1
			},
			problem: "salary",
		},
		{
			name: "Death date before birth date",
			mutate: func(p *SubjectProfile) {
				death := datetime.MustParseTime(constants.DateLayout, "1980-01-01")
				p.DeathDate = &death
			},
			problem: "death date precedes birth date",
		},
		{
			name: "Gender outside the enumeration",
			mutate: func(p *SubjectProfile) {
				p.Gender = "other"
			},
			problem: "gender",
		},
		{
			name: "Education outside the enumeration",
			mutate: func(p *SubjectProfile) {
				p.Education = "trade"
			},
			problem: "education",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validProfile()
			tt.mutate(&p)
			err := p.Validate()
			if tt.problem == "" {
				if err != nil {
					t.Errorf("Validate() error: %v", err)
				}
				return
			}
			if !errors.Is(err, ErrInvalidProfile) {
				t.Fatalf("Validate() error = %v, expected ErrInvalidProfile", err)
			}
			if !strings.Contains(err.Error(), tt.problem) {
				t.Errorf("Validate() error %q does not mention %q", err.Error(), tt.problem)
			}
		})
	}
}

func TestValidateReportsAllProblems(t *testing.T) {
	p := validProfile()
	p.Salary = -5
	p.Gender = "other"
	err := p.Validate()
	if err == nil {
		t.Fatal("Validate() = nil for a doubly invalid profile")
	}
	msg := err.Error()
	if !strings.Contains(msg, "salary") || !strings.Contains(msg, "gender") {
		t.Errorf("Validate() error %q does not report both problems", msg)
	}
}
