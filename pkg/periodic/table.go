// Package periodic provides the read-only periodic-table service consumed by
// the structure-file reader, the identifier encoder, and the renderers.
//
// The table is passed explicitly to every consumer.  Standard returns the
// built-in 118-element table; New builds synthetic tables for tests.
package periodic

import (
	"fmt"

	"github.com/turtacn/ninchi/pkg/errors"
)

// DefaultFallbackColor is the color used for symbols without a color entry.
const DefaultFallbackColor = "lightgrey"

// Table translates between atomic numbers and element symbols and supplies
// display colors for rendering.  Implementations must be safe for concurrent
// read-only use.
type Table interface {
	// Symbol returns the element symbol for an atomic number (1-based).
	Symbol(atomicNumber int) (string, error)

	// AtomicNumber returns the atomic number for a case-sensitive symbol.
	AtomicNumber(symbol string) (int, error)

	// Color returns the display color for symbol, or the fallback color.
	Color(symbol string) string

	// Len returns the number of elements in the table.
	Len() int
}

type table struct {
	symbols  []string
	index    map[string]int
	colors   map[string]string
	fallback string
}

// New builds a Table from symbols ordered by atomic number, so symbols[0] is
// element 1.  colors may be nil.  An empty fallback selects
// DefaultFallbackColor.
func New(symbols []string, colors map[string]string, fallback string) (Table, error) {
	if len(symbols) == 0 {
		return nil, errors.InputError("periodic table has no elements")
	}
	if fallback == "" {
		fallback = DefaultFallbackColor
	}
	t := &table{
		symbols:  make([]string, len(symbols)),
		index:    make(map[string]int, len(symbols)),
		colors:   make(map[string]string, len(colors)),
		fallback: fallback,
	}
	for i, s := range symbols {
		if s == "" {
			return nil, errors.InputError("periodic table has an empty symbol").
				WithDetailf("atomic number %d", i+1)
		}
		if _, dup := t.index[s]; dup {
			return nil, errors.InputError("periodic table has a duplicate symbol").
				WithDetailf("symbol %q", s)
		}
		t.symbols[i] = s
		t.index[s] = i + 1
	}
	for k, v := range colors {
		t.colors[k] = v
	}
	return t, nil
}

func (t *table) Symbol(atomicNumber int) (string, error) {
	if atomicNumber < 1 || atomicNumber > len(t.symbols) {
		return "", errors.LookupError("atomic number out of range").
			WithDetail(fmt.Sprintf("atomic number %d, table has %d elements", atomicNumber, len(t.symbols)))
	}
	return t.symbols[atomicNumber-1], nil
}

func (t *table) AtomicNumber(symbol string) (int, error) {
	z, ok := t.index[symbol]
	if !ok {
		return 0, errors.LookupError("unknown element symbol").WithDetailf("symbol %q", symbol)
	}
	return z, nil
}

func (t *table) Color(symbol string) string {
	if c, ok := t.colors[symbol]; ok {
		return c
	}
	return t.fallback
}

func (t *table) Len() int { return len(t.symbols) }
