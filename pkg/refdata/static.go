package refdata

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/iwvelando/econloss/pkg/datetime"
)

//go:embed tables/*.json
var embeddedTables embed.FS

// Embedded table file names. A StaticConfig path overrides the embedded
// copy of the corresponding file.
const (
	lifeTableFile     = "tables/life_tables.json"
	worklifeTableFile = "tables/worklife_tables.json"
	wageTableFile     = "tables/wage_growth.json"
	treasuryRateFile  = "tables/treasury_rates.json"
)

// StaticConfig configures a StaticSource. Fallback values are injected
// here at construction time; stage logic never hardcodes them.
type StaticConfig struct {
	// Optional paths overriding the embedded table files.
	LifeTableFile     string
	WorklifeTableFile string
	WageTableFile     string
	TreasuryRateFile  string

	// FallbackDiscountRate is applied, flagged, when no treasury rate is
	// available for the as-of month.
	FallbackDiscountRate float64

	// FallbackWageGrowthRate is applied, flagged, when neither a
	// jurisdiction nor a national wage series matches.
	FallbackWageGrowthRate float64

	// DefaultEducation is the worklife table category substituted, flagged,
	// for an education level with no table of its own.
	DefaultEducation string
}

type tableMeta struct {
	Title     string `json:"title"`
	SourceRef string `json:"source_ref"`
	URL       string `json:"url"`
	Published string `json:"published"`
}

type lifeTableDoc struct {
	Metadata tableMeta          `json:"metadata"`
	Male     map[string]float64 `json:"male"`
	Female   map[string]float64 `json:"female"`
}

type worklifeTableDoc struct {
	Metadata tableMeta                     `json:"metadata"`
	Male     map[string]map[string]float64 `json:"male"`
	Female   map[string]map[string]float64 `json:"female"`
}

type wageSeries struct {
	Default     float64            `json:"default"`
	Occupations map[string]float64 `json:"occupations"`
}

type wageTableDoc struct {
	Metadata      tableMeta             `json:"metadata"`
	National      wageSeries            `json:"national"`
	Jurisdictions map[string]wageSeries `json:"jurisdictions"`
}

type treasuryRateDoc struct {
	Metadata tableMeta          `json:"metadata"`
	Rates    map[string]float64 `json:"rates"`
}

// StaticSource serves reference data from JSON tables, embedded by default
// or loaded from configured paths. All lookups are deterministic, which is
// what makes pipeline runs reproducible.
type StaticSource struct {
	cfg    StaticConfig
	logger *zap.Logger

	life     map[string]*Table            // gender -> table
	lifeMeta tableMeta
	work     map[string]map[string]*Table // gender -> education -> table
	workMeta tableMeta
	wage     wageTableDoc
	rates    map[string]float64 // month key -> rate
	rateMeta tableMeta
}

// NewStaticSource loads all tables and returns a ready source. If logger
// is nil, it will use a no-op logger to prevent panics.
func NewStaticSource(cfg StaticConfig, logger *zap.Logger) (*StaticSource, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &StaticSource{cfg: cfg, logger: logger}

	var life lifeTableDoc
	if err := loadTableDoc(cfg.LifeTableFile, lifeTableFile, &life); err != nil {
		return nil, errors.Wrap(err, "load life tables")
	}
	var work worklifeTableDoc
	if err := loadTableDoc(cfg.WorklifeTableFile, worklifeTableFile, &work); err != nil {
		return nil, errors.Wrap(err, "load worklife tables")
	}
	if err := loadTableDoc(cfg.WageTableFile, wageTableFile, &s.wage); err != nil {
		return nil, errors.Wrap(err, "load wage growth table")
	}
	var rates treasuryRateDoc
	if err := loadTableDoc(cfg.TreasuryRateFile, treasuryRateFile, &rates); err != nil {
		return nil, errors.Wrap(err, "load treasury rates")
	}

	s.lifeMeta = life.Metadata
	s.life = make(map[string]*Table, 2)
	for gender, points := range map[string]map[string]float64{"male": life.Male, "female": life.Female} {
		table, err := NewTable("life_expectancy/"+gender, points)
		if err != nil {
			return nil, err
		}
		s.life[gender] = table
	}

	s.workMeta = work.Metadata
	s.work = make(map[string]map[string]*Table, 2)
	for gender, columns := range map[string]map[string]map[string]float64{"male": work.Male, "female": work.Female} {
		s.work[gender] = make(map[string]*Table, len(columns))
		for education, points := range columns {
			table, err := NewTable(fmt.Sprintf("worklife_expectancy/%s/%s", gender, education), points)
			if err != nil {
				return nil, err
			}
			s.work[gender][education] = table
		}
	}

	s.rateMeta = rates.Metadata
	s.rates = rates.Rates

	logger.Debug("reference tables loaded",
		zap.String("op", "refdata.NewStaticSource"),
		zap.String("life_tables", s.lifeMeta.Title),
		zap.String("worklife_tables", s.workMeta.Title),
	)
	return s, nil
}

func loadTableDoc(path, embeddedPath string, out interface{}) error {
	var (
		raw []byte
		err error
	)
	if path != "" {
		raw, err = os.ReadFile(path)
	} else {
		raw, err = embeddedTables.ReadFile(embeddedPath)
	}
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}

// LifeExpectancy looks up remaining years of life in the life table for
// the given gender, interpolating linearly inside the table's domain.
func (s *StaticSource) LifeExpectancy(_ context.Context, age float64, gender string) (Lookup, error) {
	table, ok := s.life[normalizeGender(gender)]
	if !ok {
		return Lookup{}, errors.Newf("no life table for gender %q", gender)
	}
	value, interp, err := table.Lookup(age)
	if err != nil {
		return Lookup{}, err
	}
	return Lookup{
		Value:      value,
		SourceRef:  s.lifeMeta.SourceRef,
		SourceDate: s.lifeMeta.Published,
		Note:       interpolationNote(interp),
	}, nil
}

// WorklifeExpectancy looks up remaining worklife years in the worklife
// table for the given gender and education category. An education level
// with no table of its own falls back to the configured default category
// with the fallback flag set.
func (s *StaticSource) WorklifeExpectancy(_ context.Context, age float64, gender, education string) (Lookup, error) {
	columns, ok := s.work[normalizeGender(gender)]
	if !ok {
		return Lookup{}, errors.Newf("no worklife table for gender %q", gender)
	}

	category := normalizeEducation(education)
	fallback := false
	note := ""
	table, ok := columns[category]
	if !ok {
		fallback = true
		note = fmt.Sprintf("no worklife table for education %q; substituted default category %q", education, s.cfg.DefaultEducation)
		table, ok = columns[s.cfg.DefaultEducation]
		if !ok {
			return Lookup{}, errors.Newf("no worklife table for default education category %q", s.cfg.DefaultEducation)
		}
		s.logger.Warn("worklife education category missing, using default",
			zap.String("op", "refdata.WorklifeExpectancy"),
			zap.String("education", education),
			zap.String("default", s.cfg.DefaultEducation),
		)
	}

	value, interp, err := table.Lookup(age)
	if err != nil {
		return Lookup{}, err
	}
	if in := interpolationNote(interp); in != "" {
		if note != "" {
			note += "; "
		}
		note += in
	}
	return Lookup{
		Value:      value,
		SourceRef:  s.workMeta.SourceRef,
		SourceDate: s.workMeta.Published,
		IsFallback: fallback,
		Note:       note,
	}, nil
}

// WageGrowthRate resolves the annual wage growth rate with
// jurisdiction-over-national precedence: jurisdiction occupation series,
// then jurisdiction default, then national occupation series, then
// national default, then the configured fallback constant.
func (s *StaticSource) WageGrowthRate(_ context.Context, occupation, jurisdiction string) (RateLookup, error) {
	meta := s.wage.Metadata
	if series, ok := s.wage.Jurisdictions[jurisdiction]; ok {
		if rate, ok := series.Occupations[occupation]; ok {
			return s.wageLookup(rate, meta, fmt.Sprintf("jurisdiction %s occupation %s", jurisdiction, occupation)), nil
		}
		return s.wageLookup(series.Default, meta, fmt.Sprintf("jurisdiction %s default", jurisdiction)), nil
	}
	if rate, ok := s.wage.National.Occupations[occupation]; ok {
		return s.wageLookup(rate, meta, fmt.Sprintf("national occupation %s", occupation)), nil
	}
	if s.wage.National.Default > 0 {
		return s.wageLookup(s.wage.National.Default, meta, "national default"), nil
	}
	return RateLookup{
		Lookup: Lookup{
			Value:      s.cfg.FallbackWageGrowthRate,
			SourceRef:  "configured fallback wage growth rate",
			IsFallback: true,
			Note:       "no wage growth series matched occupation or jurisdiction",
		},
		Won: "fallback constant",
	}, nil
}

func (s *StaticSource) wageLookup(rate float64, meta tableMeta, won string) RateLookup {
	return RateLookup{
		Lookup: Lookup{
			Value:      rate,
			SourceRef:  meta.SourceRef,
			SourceDate: meta.Published,
		},
		Won: won,
	}
}

// DiscountRate returns a flat curve at the treasury rate for the as-of
// month, or the configured fallback rate, flagged, when the month is not
// covered.
func (s *StaticSource) DiscountRate(_ context.Context, asOf time.Time) (CurveLookup, error) {
	month := datetime.MonthKey(asOf)
	if rate, ok := s.rates[month]; ok {
		return CurveLookup{
			Curve:      FlatCurve(rate),
			SourceRef:  s.rateMeta.SourceRef,
			SourceDate: month,
			Note:       "flat curve at 1-year treasury constant maturity rate",
		}, nil
	}
	s.logger.Warn("no treasury rate for as-of month, using fallback",
		zap.String("op", "refdata.DiscountRate"),
		zap.String("month", month),
	)
	return CurveLookup{
		Curve:      FlatCurve(s.cfg.FallbackDiscountRate),
		SourceRef:  "configured fallback discount rate",
		IsFallback: true,
		Note:       fmt.Sprintf("no treasury rate published for %s", month),
	}, nil
}

func interpolationNote(in *Interpolation) string {
	if in == nil {
		return ""
	}
	return fmt.Sprintf("linearly interpolated between ages %g and %g", in.Lower.Key, in.Upper.Key)
}

func normalizeGender(gender string) string {
	switch strings.ToLower(strings.TrimSpace(gender)) {
	case "m", "male":
		return "male"
	case "f", "female":
		return "female"
	default:
		return strings.ToLower(strings.TrimSpace(gender))
	}
}

// normalizeEducation maps the education levels accepted in profiles onto
// the worklife table categories.
func normalizeEducation(education string) string {
	key := strings.ToLower(strings.TrimSpace(education))
	key = strings.NewReplacer(" ", "_", "'", "").Replace(key)
	switch key {
	case "less_than_hs", "less_than_high_school":
		return "less_than_hs"
	case "hs_graduate", "high_school", "high_school_graduate":
		return "hs_graduate"
	case "some_college", "associates", "associates_degree", "associate_degree":
		return "some_college"
	case "bachelors_plus", "bachelors", "bachelors_degree", "masters", "masters_degree", "doctorate", "phd", "professional_degree":
		return "bachelors_plus"
	default:
		return key
	}
}
