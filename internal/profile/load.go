package profile

import (
	"time"

	"github.com/cockroachdb/errors"
	"github.com/spf13/viper"

	"github.com/iwvelando/econloss/pkg/constants"
)

// rawProfile mirrors the YAML profile document before parsing. Date fields
// stay untyped because the YAML decoder resolves unquoted dates into
// time.Time while quoted ones arrive as strings.
type rawProfile struct {
	Name         string
	BirthDate    interface{}
	PresentDate  interface{}
	DeathDate    interface{}
	Gender       string
	Education    string
	Occupation   string
	Salary       float64
	Jurisdiction string
}

// Load reads a YAML-formatted subject profile from the given path and
// parses it into a validated SubjectProfile.
func Load(path string) (*SubjectProfile, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yml")
	if err := v.ReadInConfig(); err != nil {
		return nil, errors.Wrapf(err, "error reading profile file %s", path)
	}

	var raw rawProfile
	if err := v.Unmarshal(&raw); err != nil {
		return nil, errors.Wrap(err, "unable to decode profile into struct")
	}
	return raw.parse()
}

func (raw rawProfile) parse() (*SubjectProfile, error) {
	p := SubjectProfile{
		Name:         raw.Name,
		Occupation:   raw.Occupation,
		Salary:       raw.Salary,
		Jurisdiction: raw.Jurisdiction,
	}

	var err error
	if p.BirthDate, err = parseDate(raw.BirthDate, "birthDate"); err != nil {
		return nil, err
	}
	if raw.PresentDate == nil {
		p.PresentDate = time.Now().UTC().Truncate(24 * time.Hour)
	} else if p.PresentDate, err = parseDate(raw.PresentDate, "presentDate"); err != nil {
		return nil, err
	}
	if raw.DeathDate != nil {
		death, err := parseDate(raw.DeathDate, "deathDate")
		if err != nil {
			return nil, err
		}
		p.DeathDate = &death
	}
	if p.Gender, err = ParseGender(raw.Gender); err != nil {
		return nil, err
	}
	if p.Education, err = ParseEducation(raw.Education); err != nil {
		return nil, err
	}

	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

func parseDate(value interface{}, field string) (time.Time, error) {
	switch v := value.(type) {
	case time.Time:
		return v, nil
	case string:
		if v == "" {
			return time.Time{}, errors.Mark(
				errors.Newf("%s is empty", field),
				ErrInvalidProfile,
			)
		}
		t, err := time.Parse(constants.DateLayout, v)
		if err != nil {
			return time.Time{}, errors.Mark(
				errors.Wrapf(err, "%s must be a %s date", field, constants.DateLayout),
				ErrInvalidProfile,
			)
		}
		return t, nil
	case nil:
		return time.Time{}, errors.Mark(
			errors.Newf("%s is required", field),
			ErrInvalidProfile,
		)
	default:
		return time.Time{}, errors.Mark(
			errors.Newf("%s has unexpected type %T", field, value),
			ErrInvalidProfile,
		)
	}
}
