package refdata

import (
	"sort"
	"strconv"

	"github.com/cockroachdb/errors"
)

// Knot is one (key, value) data point of a reference table.
type Knot struct {
	Key   float64
	Value float64
}

// Interpolation describes the two knots a linear interpolation bracketed.
type Interpolation struct {
	Lower Knot
	Upper Knot
}

// Table is a reference table monotonic in its lookup key. An exact key hit
// returns the stored value unchanged; a miss inside the table's domain is
// linearly interpolated between the nearest knots; a key outside the
// domain is a hard ErrOutOfDomain.
type Table struct {
	name  string
	knots []Knot
}

// NewTable builds a Table from a map of stringified numeric keys, as read
// from the JSON table files, sorted by key.
func NewTable(name string, points map[string]float64) (*Table, error) {
	if len(points) == 0 {
		return nil, errors.Newf("reference table %s is empty", name)
	}
	knots := make([]Knot, 0, len(points))
	for k, v := range points {
		key, err := strconv.ParseFloat(k, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "reference table %s has non-numeric key %q", name, k)
		}
		knots = append(knots, Knot{Key: key, Value: v})
	}
	sort.Slice(knots, func(i, j int) bool { return knots[i].Key < knots[j].Key })
	return &Table{name: name, knots: knots}, nil
}

// Name returns the table name used in error messages.
func (t *Table) Name() string {
	return t.name
}

// Domain returns the inclusive key range the table supports.
func (t *Table) Domain() (lo, hi float64) {
	return t.knots[0].Key, t.knots[len(t.knots)-1].Key
}

// Lookup returns the value at key. The returned Interpolation is non-nil
// only when the value was linearly interpolated between two knots.
func (t *Table) Lookup(key float64) (float64, *Interpolation, error) {
	lo, hi := t.Domain()
	if key < lo || key > hi {
		return 0, nil, errors.Wrapf(ErrOutOfDomain,
			"key %v outside table %s domain [%v, %v]", key, t.name, lo, hi)
	}

	// Index of the first knot with Key >= key.
	i := sort.Search(len(t.knots), func(i int) bool { return t.knots[i].Key >= key })
	if t.knots[i].Key == key {
		return t.knots[i].Value, nil, nil
	}

	lower, upper := t.knots[i-1], t.knots[i]
	fraction := (key - lower.Key) / (upper.Key - lower.Key)
	value := lower.Value + fraction*(upper.Value-lower.Value)
	return value, &Interpolation{Lower: lower, Upper: upper}, nil
}
