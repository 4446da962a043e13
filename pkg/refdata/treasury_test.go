package refdata

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestTreasurySourceLiveRate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"rate": 0.0391, "as_of": "2025-06-13", "label": "1-year treasury constant maturity"}`))
	}))
	defer server.Close()

	source := NewTreasurySource(newTestSource(t), server.URL, time.Second, nil)
	lookup, err := source.DiscountRate(context.Background(), time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("DiscountRate() error: %v", err)
	}
	if lookup.IsFallback {
		t.Error("successful live fetch flagged as fallback")
	}
	if rate := lookup.Curve.RateAt(0); rate != 0.0391 {
		t.Errorf("RateAt(0) = %v, expected the live rate 0.0391", rate)
	}
	if lookup.SourceDate != "2025-06-13" {
		t.Errorf("SourceDate = %q, expected the endpoint's as_of date", lookup.SourceDate)
	}
}

func TestTreasurySourceDegradesOnFailure(t *testing.T) {
	asOf := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "Server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			},
		},
		{
			name: "Malformed body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`not json`))
			},
		},
		{
			name: "Implausible rate",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"rate": -7.5}`))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			source := NewTreasurySource(newTestSource(t), server.URL, time.Second, nil)
			lookup, err := source.DiscountRate(context.Background(), asOf)
			if err != nil {
				t.Fatalf("DiscountRate() error: %v, expected a flagged fallback", err)
			}
			if !lookup.IsFallback {
				t.Error("degraded lookup was not flagged as fallback")
			}
			if !strings.Contains(lookup.Note, "live treasury rate unavailable") {
				t.Errorf("note %q does not record the degradation", lookup.Note)
			}
			// The static table still answers for the as-of month.
			if rate := lookup.Curve.RateAt(0); rate != 0.0407 {
				t.Errorf("RateAt(0) = %v, expected the static table rate 0.0407", rate)
			}
		})
	}
}

func TestTreasurySourceTimeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer server.Close()
	defer close(release)

	source := NewTreasurySource(newTestSource(t), server.URL, 50*time.Millisecond, nil)

	start := time.Now()
	lookup, err := source.DiscountRate(context.Background(), time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("DiscountRate() error: %v, expected a flagged fallback", err)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("timed-out lookup took %s, the timeout did not bound it", elapsed)
	}
	if !lookup.IsFallback {
		t.Error("timed-out lookup was not flagged as fallback")
	}
}

func TestTreasurySourceDelegatesOtherLookups(t *testing.T) {
	source := NewTreasurySource(newTestSource(t), "http://127.0.0.1:0", time.Second, nil)

	lookup, err := source.LifeExpectancy(context.Background(), 40, "male")
	if err != nil {
		t.Fatalf("LifeExpectancy() error: %v", err)
	}
	if lookup.Value != 40.04 {
		t.Errorf("LifeExpectancy() = %v, expected the static table value 40.04", lookup.Value)
	}
}
