package refdata

import (
	"math"
	"testing"

	"github.com/cockroachdb/errors"
)

func TestNewTableRejectsBadInput(t *testing.T) {
	if _, err := NewTable("empty", nil); err == nil {
		t.Error("NewTable() accepted an empty point map")
	}
	if _, err := NewTable("bad_key", map[string]float64{"forty": 40.0}); err == nil {
		t.Error("NewTable() accepted a non-numeric key")
	}
}

func TestTableLookup(t *testing.T) {
	table, err := NewTable("test", map[string]float64{
		"18": 42.0,
		"40": 22.4,
		"52": 14.36,
		"75": 1.5,
	})
	if err != nil {
		t.Fatalf("NewTable() error: %v", err)
	}

	tests := []struct {
		name         string
		key          float64
		value        float64
		interpolated bool
		outOfDomain  bool
	}{
		{
			name:  "Exact knot hit returns stored value unchanged",
			key:   40,
			value: 22.4,
		},
		{
			name:  "Domain boundary is an exact hit",
			key:   75,
			value: 1.5,
		},
		{
			name:         "In-domain miss interpolates linearly",
			key:          42,
			value:        21.06,
			interpolated: true,
		},
		{
			name:         "Midpoint interpolation",
			key:          46,
			value:        (22.4 + 14.36) / 2,
			interpolated: true,
		},
		{
			name:        "Below domain is a hard error",
			key:         17.5,
			outOfDomain: true,
		},
		{
			name:        "Above domain is a hard error",
			key:         75.01,
			outOfDomain: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			value, interp, err := table.Lookup(tt.key)
			if tt.outOfDomain {
				if !errors.Is(err, ErrOutOfDomain) {
					t.Fatalf("Lookup(%v) error = %v, expected ErrOutOfDomain", tt.key, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Lookup(%v) error: %v", tt.key, err)
			}
			if math.Abs(value-tt.value) > 1e-9 {
				t.Errorf("Lookup(%v) = %v, expected %v", tt.key, value, tt.value)
			}
			if tt.interpolated && interp == nil {
				t.Errorf("Lookup(%v) returned no interpolation detail for an in-domain miss", tt.key)
			}
			if !tt.interpolated && interp != nil {
				t.Errorf("Lookup(%v) reported interpolation %+v for an exact hit", tt.key, interp)
			}
		})
	}
}

func TestTableDomain(t *testing.T) {
	table, err := NewTable("test", map[string]float64{"0": 75.8, "100": 2.3})
	if err != nil {
		t.Fatalf("NewTable() error: %v", err)
	}
	lo, hi := table.Domain()
	if lo != 0 || hi != 100 {
		t.Errorf("Domain() = [%v, %v], expected [0, 100]", lo, hi)
	}
}
