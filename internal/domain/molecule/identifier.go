package molecule

import (
	"math/big"
	"sort"
	"strconv"
	"strings"

	"github.com/turtacn/ninchi/pkg/errors"
	"github.com/turtacn/ninchi/pkg/periodic"
)

// IdentifierPrefix opens every identifier.
const IdentifierPrefix = "nInChI=1S/"

// Numerals are the adjacency bit string, with a leading sentinel 1, read as a
// base-2 integer and printed in three radices.
type Numerals struct {
	Decimal string `json:"decimal" yaml:"decimal"`
	Hex     string `json:"hex" yaml:"hex"`
	Base32  string `json:"base32" yaml:"base32"`
}

// Encoding bundles the identifier with its auxiliary serializations.
type Encoding struct {
	Identifier         string   `json:"identifier" yaml:"identifier"`
	SumFormula         string   `json:"sum_formula" yaml:"sum_formula"`
	BondTuples         string   `json:"bond_tuples" yaml:"bond_tuples"`
	ConnectionTable    string   `json:"connection_table" yaml:"connection_table"`
	BitString          string   `json:"bit_string" yaml:"bit_string"`
	Numerals           Numerals `json:"numerals" yaml:"numerals"`
	LayeredConnections string   `json:"layered_connections" yaml:"layered_connections"`
	NeighborIndexSums  string   `json:"neighbor_index_sums" yaml:"neighbor_index_sums"`
}

// Encoder serializes graphs.  It does not reorder anything: callers pass the
// canonical graph produced by an Engine.
type Encoder struct {
	table periodic.Table
}

// NewEncoder returns an Encoder that resolves symbols through table.
func NewEncoder(table periodic.Table) *Encoder {
	return &Encoder{table: table}
}

// SumFormula returns the element counts, carbon first, hydrogen second, the
// remaining symbols in byte order.  A count of 1 is omitted.
func (e *Encoder) SumFormula(g *Graph) (string, error) {
	if g == nil || g.Len() == 0 {
		return "", errors.InputError("empty structure")
	}

	counts := make(map[string]int)
	for _, a := range g.atoms {
		sym, err := e.table.Symbol(a.AtomicNumber)
		if err != nil {
			return "", err
		}
		counts[sym]++
	}

	var sb strings.Builder
	write := func(sym string) {
		sb.WriteString(sym)
		if c := counts[sym]; c > 1 {
			sb.WriteString(strconv.Itoa(c))
		}
	}
	if _, ok := counts["C"]; ok {
		write("C")
	}
	if _, ok := counts["H"]; ok {
		write("H")
	}
	rest := make([]string, 0, len(counts))
	for sym := range counts {
		if sym != "C" && sym != "H" {
			rest = append(rest, sym)
		}
	}
	sort.Strings(rest)
	for _, sym := range rest {
		write(sym)
	}
	return sb.String(), nil
}

// BondTuples returns "(row-column)" for every upper-triangle bond, ascending
// row then column.
func (e *Encoder) BondTuples(g *Graph) string {
	var sb strings.Builder
	for _, b := range g.Bonds() {
		writeTuple(&sb, b)
	}
	return sb.String()
}

func writeTuple(sb *strings.Builder, b Bond) {
	sb.WriteByte('(')
	sb.WriteString(strconv.Itoa(b.A))
	sb.WriteByte('-')
	sb.WriteString(strconv.Itoa(b.B))
	sb.WriteByte(')')
}

// Identifier returns "nInChI=1S/<sum formula>/c<bond tuples>".
func (e *Encoder) Identifier(g *Graph) (string, error) {
	formula, err := e.SumFormula(g)
	if err != nil {
		return "", err
	}
	return IdentifierPrefix + formula + "/c" + e.BondTuples(g), nil
}

// ConnectionTable returns one "(row:n1,n2,...)" group per atom.  An atom
// without neighbors is written "(row)".
func (e *Encoder) ConnectionTable(g *Graph) string {
	var sb strings.Builder
	for i := 0; i < g.Len(); i++ {
		sb.WriteByte('(')
		sb.WriteString(strconv.Itoa(i))
		for k, j := range g.Neighbors(i) {
			if k == 0 {
				sb.WriteByte(':')
			} else {
				sb.WriteByte(',')
			}
			sb.WriteString(strconv.Itoa(j))
		}
		sb.WriteByte(')')
	}
	return sb.String()
}

// BitString returns the adjacency rows concatenated behind a leading 1, which
// keeps leading zero rows significant.
func (e *Encoder) BitString(g *Graph) string {
	n := g.Len()
	var sb strings.Builder
	sb.Grow(n*n + 1)
	sb.WriteByte('1')
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if g.adj.At(i, j) == 1 {
				sb.WriteByte('1')
			} else {
				sb.WriteByte('0')
			}
		}
	}
	return sb.String()
}

// Numerals reads BitString as a base-2 integer.
func (e *Encoder) Numerals(g *Graph) Numerals {
	v, _ := new(big.Int).SetString(e.BitString(g), 2)
	return Numerals{
		Decimal: v.String(),
		Hex:     "hex:" + v.Text(16),
		Base32:  "base32:" + v.Text(32),
	}
}

// LayeredConnections splits the bond tuples into a "/c" block for bonds whose
// lower-index atom is heavy and a "/h" block for bonds whose lower-index atom
// is hydrogen.  The "/h" block is omitted when empty.
func (e *Encoder) LayeredConnections(g *Graph) string {
	var heavy, hydrogen strings.Builder
	heavy.WriteString("/c")
	for _, b := range g.Bonds() {
		if g.atoms[b.A].AtomicNumber == 1 {
			writeTuple(&hydrogen, b)
		} else {
			writeTuple(&heavy, b)
		}
	}
	if hydrogen.Len() > 0 {
		heavy.WriteString("/h")
		heavy.WriteString(hydrogen.String())
	}
	return heavy.String()
}

// NeighborIndexSums writes "(Z_row:s)" per atom where s is the sum of the
// atom's neighbor indices.  Equal groups flag atoms the ordering could not
// separate.
func (e *Encoder) NeighborIndexSums(g *Graph) string {
	var sb strings.Builder
	for i := 0; i < g.Len(); i++ {
		sum := 0
		for _, j := range g.Neighbors(i) {
			sum += j
		}
		sb.WriteByte('(')
		sb.WriteString(strconv.Itoa(g.atoms[i].AtomicNumber))
		sb.WriteByte('_')
		sb.WriteString(strconv.Itoa(i))
		sb.WriteByte(':')
		sb.WriteString(strconv.Itoa(sum))
		sb.WriteByte(')')
	}
	return sb.String()
}

// Encode computes the identifier and every auxiliary serialization.
func (e *Encoder) Encode(g *Graph) (*Encoding, error) {
	formula, err := e.SumFormula(g)
	if err != nil {
		return nil, err
	}
	tuples := e.BondTuples(g)
	return &Encoding{
		Identifier:         IdentifierPrefix + formula + "/c" + tuples,
		SumFormula:         formula,
		BondTuples:         tuples,
		ConnectionTable:    e.ConnectionTable(g),
		BitString:          e.BitString(g),
		Numerals:           e.Numerals(g),
		LayeredConnections: e.LayeredConnections(g),
		NeighborIndexSums:  e.NeighborIndexSums(g),
	}, nil
}
