package refdata

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
)

// TreasurySource layers a live 1-year treasury rate fetch over another
// Source. Only DiscountRate is overridden; every other lookup delegates
// directly. Any fetch failure, malformed response, or timeout degrades to
// the underlying source's answer with the fallback flag set, so an
// unreachable rate service can never halt a pipeline run.
type TreasurySource struct {
	Source

	url     string
	timeout time.Duration
	client  *http.Client
	logger  *zap.Logger
}

// treasuryResponse is the expected body of the rate endpoint.
type treasuryResponse struct {
	Rate  float64 `json:"rate"`
	AsOf  string  `json:"as_of"`
	Label string  `json:"label"`
}

// NewTreasurySource wraps base with a live rate endpoint. timeout bounds
// each fetch; zero selects a conservative default.
func NewTreasurySource(base Source, url string, timeout time.Duration, logger *zap.Logger) *TreasurySource {
	if logger == nil {
		logger = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &TreasurySource{
		Source:  base,
		url:     url,
		timeout: timeout,
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// DiscountRate fetches the current 1-year treasury rate and returns a flat
// curve at it. On any failure it answers from the underlying source and
// marks the result as a fallback.
func (s *TreasurySource) DiscountRate(ctx context.Context, asOf time.Time) (CurveLookup, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	resp, err := s.fetch(ctx)
	if err != nil {
		s.logger.Warn("treasury rate fetch failed, degrading to fallback",
			zap.String("op", "refdata.TreasurySource.DiscountRate"),
			zap.String("url", s.url),
			zap.Error(err),
		)
		lookup, err := s.Source.DiscountRate(ctx, asOf)
		if err != nil {
			return CurveLookup{}, err
		}
		lookup.IsFallback = true
		if lookup.Note != "" {
			lookup.Note += "; "
		}
		lookup.Note += "live treasury rate unavailable"
		return lookup, nil
	}

	return CurveLookup{
		Curve:      FlatCurve(resp.Rate),
		SourceRef:  s.url,
		SourceDate: resp.AsOf,
		Note:       "flat curve at live 1-year treasury constant maturity rate",
	}, nil
}

func (s *TreasurySource) fetch(ctx context.Context) (*treasuryResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode != http.StatusOK {
		return nil, errors.Newf("treasury rate endpoint returned status %d", resp.StatusCode)
	}
	var body treasuryResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, errors.Wrap(err, "decode treasury rate response")
	}
	if body.Rate < -1 {
		return nil, errors.Newf("treasury rate %v is below -1", body.Rate)
	}
	return &body, nil
}
