package feature

import (
	"errors"
	"fmt"

	"github.com/cwbudde/algo-specfit/units"
)

var ErrDuplicateFeature = errors.New("feature: duplicate feature name")

// Table is an ordered, name-indexed collection of features plus the fit
// metadata that travels with them. Row order is insertion order and carries
// no semantic meaning for fitting.
type Table struct {
	Redshift   float64
	Instrument string
	Flux       units.Flux

	rows  []*Feature
	index map[string]int
}

// NewTable returns an empty table.
func NewTable() *Table {
	return &Table{index: make(map[string]int)}
}

// Add validates f and appends it. Names must be unique.
func (t *Table) Add(f *Feature) error {
	if err := f.Validate(); err != nil {
		return err
	}
	if _, exists := t.index[f.Name]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateFeature, f.Name)
	}
	t.index[f.Name] = len(t.rows)
	t.rows = append(t.rows, f)
	return nil
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.rows) }

// Lookup returns the row with the given name.
func (t *Table) Lookup(name string) (*Feature, bool) {
	i, ok := t.index[name]
	if !ok {
		return nil, false
	}
	return t.rows[i], true
}

// Features returns the rows in insertion order. The returned slice shares
// the table's rows: mutating a row mutates the table.
func (t *Table) Features() []*Feature { return t.rows }

// OfKind returns the rows of the given kind, in insertion order.
func (t *Table) OfKind(k Kind) []*Feature {
	var out []*Feature
	for _, f := range t.rows {
		if f.Kind == k {
			out = append(out, f)
		}
	}
	return out
}

// Clone returns a deep copy of the table, metadata included.
func (t *Table) Clone() *Table {
	c := NewTable()
	c.Redshift = t.Redshift
	c.Instrument = t.Instrument
	c.Flux = t.Flux
	for _, f := range t.rows {
		// rows were validated on insert, so Add cannot fail here
		if err := c.Add(f.Clone()); err != nil {
			panic("feature: clone: " + err.Error())
		}
	}
	return c
}
