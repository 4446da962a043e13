package profile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/cockroachdb/errors"
)

func writeProfileFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "profile.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write profile file: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeProfileFile(t, `---
name: Jane Example
birthDate: 1983-03-12
presentDate: 2025-06-15
gender: female
education: bachelors
occupation: 29-1141
salary: 95000
jurisdiction: CA
`)

	p, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if p.Name != "Jane Example" {
		t.Errorf("Name = %q, expected Jane Example", p.Name)
	}
	if p.Gender != GenderFemale {
		t.Errorf("Gender = %q, expected female", p.Gender)
	}
	if p.Education != EducationBachelorsPlus {
		t.Errorf("Education = %q, expected bachelors_plus", p.Education)
	}
	if p.Salary != 95000 {
		t.Errorf("Salary = %v, expected 95000", p.Salary)
	}
	if p.DeathDate != nil {
		t.Errorf("DeathDate = %v, expected nil", p.DeathDate)
	}
}

func TestLoadDeathDate(t *testing.T) {
	path := writeProfileFile(t, `---
name: Estate Matter
birthDate: 1983-03-12
presentDate: 2025-06-15
deathDate: 2024-11-02
gender: female
education: bachelors
occupation: 29-1141
salary: 95000
`)

	p, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if p.DeathDate == nil {
		t.Fatal("DeathDate = nil, expected 2024-11-02")
	}
	if got := p.DeathDate.Format("2006-01-02"); got != "2024-11-02" {
		t.Errorf("DeathDate = %s, expected 2024-11-02", got)
	}
}

func TestLoadDefaultsPresentDate(t *testing.T) {
	path := writeProfileFile(t, `---
birthDate: 1983-03-12
gender: female
education: bachelors
occupation: 29-1141
salary: 95000
`)

	p, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if p.PresentDate.IsZero() {
		t.Error("PresentDate was not defaulted when absent")
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name: "Malformed date",
			content: `---
birthDate: March 12, 1983
gender: female
education: bachelors
salary: 95000
`,
		},
		{
			name: "Unknown gender",
			content: `---
birthDate: 1983-03-12
gender: unspecified
education: bachelors
salary: 95000
`,
		},
		{
			name: "Negative salary",
			content: `---
birthDate: 1983-03-12
gender: female
education: bachelors
salary: -100
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeProfileFile(t, tt.content)
			_, err := Load(path)
			if !errors.Is(err, ErrInvalidProfile) {
				t.Errorf("Load() error = %v, expected ErrInvalidProfile", err)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err == nil {
		t.Error("Load() = nil error for a missing profile file")
	}
}
