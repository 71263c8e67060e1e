// Package molecule provides the molecular graph model and the canonical
// ordering engine of nInChI.  A Graph is an atom-labelled, undirected, simple
// graph; the Engine relabels its atoms into a canonical order and the Encoder
// serializes that order into a permutation-invariant identifier.
package molecule

import (
	"math/rand"

	"github.com/turtacn/ninchi/pkg/errors"
)

// MaxAtomicNumber is the highest atomic number a Graph accepts (Og).
const MaxAtomicNumber = 118

// ─────────────────────────────────────────────────────────────────────────────
// Value Objects
// ─────────────────────────────────────────────────────────────────────────────

// Atom is a graph vertex.  Attributes is the opaque remainder of the source
// structure-file record (coordinates, atom-atom mapping, etc.) kept verbatim
// so a writer can re-emit it after relabeling.
type Atom struct {
	AtomicNumber int    `json:"atomic_number" yaml:"atomic_number"`
	Attributes   string `json:"attributes,omitempty" yaml:"attributes,omitempty"`
}

// Bond is an undirected single bond between atoms A and B (0-based, A < B).
type Bond struct {
	A int `json:"a" yaml:"a"`
	B int `json:"b" yaml:"b"`
}

// NewBond returns the bond between i and j with the lower index first.
func NewBond(i, j int) Bond {
	if i > j {
		i, j = j, i
	}
	return Bond{A: i, B: j}
}

// ─────────────────────────────────────────────────────────────────────────────
// Graph
// ─────────────────────────────────────────────────────────────────────────────

// Graph is an immutable molecular graph: an ordered atom list and its
// symmetric adjacency matrix.  The atom index is the row index.
type Graph struct {
	atoms []Atom
	adj   Matrix
}

// NewGraph validates atoms and bonds and builds a Graph.  Atomic numbers must
// be in 1..MaxAtomicNumber; bonds must reference existing atoms, must not be
// self loops and must not repeat.  An empty atom list yields an empty Graph.
func NewGraph(atoms []Atom, bonds []Bond) (*Graph, error) {
	for i, a := range atoms {
		if a.AtomicNumber < 1 || a.AtomicNumber > MaxAtomicNumber {
			return nil, errors.InputError("atomic number out of range").
				WithDetailf("atom=%d atomic_number=%d", i, a.AtomicNumber)
		}
	}

	n := len(atoms)
	adj := NewMatrix(n)
	for k, b := range bonds {
		if b.A < 0 || b.A >= n || b.B < 0 || b.B >= n {
			return nil, errors.InputError("bond references a missing atom").
				WithDetailf("bond=%d atoms=%d-%d count=%d", k, b.A, b.B, n)
		}
		if b.A == b.B {
			return nil, errors.InputError("self-loop bond").WithDetailf("bond=%d atom=%d", k, b.A)
		}
		if adj.At(b.A, b.B) != 0 {
			return nil, errors.InputError("duplicate bond").WithDetailf("bond=%d atoms=%d-%d", k, b.A, b.B)
		}
		adj.set(b.A, b.B, 1)
		adj.set(b.B, b.A, 1)
	}

	cp := make([]Atom, n)
	copy(cp, atoms)
	return &Graph{atoms: cp, adj: adj}, nil
}

// newGraphFromMatrix wraps an adjacency matrix already known to be valid.
func newGraphFromMatrix(atoms []Atom, adj Matrix) *Graph {
	cp := make([]Atom, len(atoms))
	copy(cp, atoms)
	return &Graph{atoms: cp, adj: adj.Clone()}
}

// Len returns the atom count.
func (g *Graph) Len() int { return len(g.atoms) }

// Atom returns the atom at index i.
func (g *Graph) Atom(i int) Atom { return g.atoms[i] }

// Atoms returns a copy of the atom list.
func (g *Graph) Atoms() []Atom {
	out := make([]Atom, len(g.atoms))
	copy(out, g.atoms)
	return out
}

// AtomicNumbers returns the atomic-number sequence in index order.
func (g *Graph) AtomicNumbers() []int {
	out := make([]int, len(g.atoms))
	for i, a := range g.atoms {
		out[i] = a.AtomicNumber
	}
	return out
}

// Adjacency returns a copy of the adjacency matrix.
func (g *Graph) Adjacency() Matrix { return g.adj.Clone() }

// Bonds returns the upper-triangle bonds in ascending row, then column order.
func (g *Graph) Bonds() []Bond {
	var out []Bond
	n := g.Len()
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if g.adj.At(i, j) == 1 {
				out = append(out, Bond{A: i, B: j})
			}
		}
	}
	return out
}

// Degree returns the number of neighbors of atom i.
func (g *Graph) Degree(i int) int { return degree(g.adj, i) }

// HeavyDegree returns the number of non-hydrogen neighbors of atom i.
func (g *Graph) HeavyDegree(i int) int { return heavyDegree(g.adj, g.atoms, i) }

// ConnectivityIndex returns the sum of the atomic numbers of atom i's
// neighbors.
func (g *Graph) ConnectivityIndex(i int) int { return connectivityIndex(g.adj, g.atoms, i) }

// Neighbors returns the neighbor indices of atom i in ascending order.
func (g *Graph) Neighbors(i int) []int {
	var out []int
	for j := 0; j < g.Len(); j++ {
		if g.adj.At(i, j) == 1 {
			out = append(out, j)
		}
	}
	return out
}

// Permute relabels the graph: old atom i becomes new atom perm[i].
func (g *Graph) Permute(perm []int) (*Graph, error) {
	n := g.Len()
	if len(perm) != n {
		return nil, errors.InputError("permutation length mismatch").
			WithDetailf("len=%d atoms=%d", len(perm), n)
	}
	seen := make([]bool, n)
	for _, p := range perm {
		if p < 0 || p >= n || seen[p] {
			return nil, errors.InputError("not a permutation").WithDetailf("perm=%v", perm)
		}
		seen[p] = true
	}

	atoms := make([]Atom, n)
	adj := NewMatrix(n)
	for i := 0; i < n; i++ {
		atoms[perm[i]] = g.atoms[i]
		for j := 0; j < n; j++ {
			adj.set(perm[i], perm[j], g.adj.At(i, j))
		}
	}
	return &Graph{atoms: atoms, adj: adj}, nil
}

// RandomPermutation returns a uniformly random permutation of 0..n-1 drawn
// from rng.
func RandomPermutation(n int, rng *rand.Rand) []int {
	if n <= 0 {
		return []int{}
	}
	return rng.Perm(n)
}

// ─────────────────────────────────────────────────────────────────────────────
// Shared feature helpers
// ─────────────────────────────────────────────────────────────────────────────

func degree(adj Matrix, i int) int {
	d := 0
	for j := 0; j < adj.Size(); j++ {
		d += adj.At(i, j)
	}
	return d
}

func heavyDegree(adj Matrix, atoms []Atom, i int) int {
	d := 0
	for j := 0; j < adj.Size(); j++ {
		if adj.At(i, j) == 1 && atoms[j].AtomicNumber > 1 {
			d++
		}
	}
	return d
}

func connectivityIndex(adj Matrix, atoms []Atom, i int) int {
	ci := 0
	for j := 0; j < adj.Size(); j++ {
		if adj.At(i, j) == 1 {
			ci += atoms[j].AtomicNumber
		}
	}
	return ci
}
