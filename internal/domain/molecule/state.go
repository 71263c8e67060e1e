package molecule

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"

	"github.com/turtacn/ninchi/pkg/errors"
)

// state is the working state of one canonicalization run: feature rows,
// adjacency and distances, always permuted together.  profile and rank are
// per-atom features fixed at creation; they travel with their atom.
type state struct {
	atoms    []Atom
	adj      Matrix
	dist     Matrix
	profile  []int
	rank     []int
	weighted bool
}

func newState(atoms []Atom, adj, dist Matrix, weighted bool) (*state, error) {
	if len(atoms) != adj.Size() || adj.Size() != dist.Size() {
		return nil, errors.InvariantViolation("working state dimension mismatch").
			WithDetailf("atoms=%d adjacency=%d distances=%d", len(atoms), adj.Size(), dist.Size())
	}
	cp := make([]Atom, len(atoms))
	copy(cp, atoms)
	s := &state{atoms: cp, adj: adj.Clone(), dist: dist.Clone(), weighted: weighted}
	s.profile = distanceProfiles(s.dist)
	s.rank = canonicalRanks(s)
	return s, nil
}

func (s *state) len() int { return len(s.atoms) }

// swap exchanges atoms i and j across every array.
func (s *state) swap(i, j int) {
	s.atoms[i], s.atoms[j] = s.atoms[j], s.atoms[i]
	s.profile[i], s.profile[j] = s.profile[j], s.profile[i]
	s.rank[i], s.rank[j] = s.rank[j], s.rank[i]
	s.adj.swap(i, j)
	s.dist.swap(i, j)
}

func (s *state) element(i int) int { return s.atoms[i].AtomicNumber }

func (s *state) degree(i int) int { return degree(s.adj, i) }

func (s *state) heavyDegree(i int) int { return heavyDegree(s.adj, s.atoms, i) }

// connectivityIndex is the plain neighbor atomic-number sum, or, in weighted
// mode, the sum of Z_j·(rank_j+1) over neighbors j.  Weighting by canonical
// rank instead of the current row keeps the index independent of the input
// numbering.
func (s *state) connectivityIndex(i int) int {
	if !s.weighted {
		return connectivityIndex(s.adj, s.atoms, i)
	}
	ci := 0
	for j := 0; j < s.len(); j++ {
		if s.adj.At(i, j) == 1 {
			ci += s.atoms[j].AtomicNumber * (s.rank[j] + 1)
		}
	}
	return ci
}

// neighbor returns the single neighbor of a degree-1 atom, or -1.
func (s *state) neighbor(i int) int {
	found := -1
	for j := 0; j < s.len(); j++ {
		if s.adj.At(i, j) == 1 {
			if found >= 0 {
				return -1
			}
			found = j
		}
	}
	return found
}

func (s *state) graph() *Graph { return newGraphFromMatrix(s.atoms, s.adj) }

// fingerprint packs the atomic-number sequence and the upper-triangle
// adjacency bits into a byte string.
func (s *state) fingerprint() string { return pack(s.atoms, s.adj, nil) }

// pack encodes the graph seen through order, where order[p] is the atom at
// position p.  A nil order is the identity.
func pack(atoms []Atom, adj Matrix, order []int) string {
	n := len(atoms)
	at := func(p int) int {
		if order == nil {
			return p
		}
		return order[p]
	}
	buf := make([]byte, 0, n*2+(n*n)/16+1)
	var z [2]byte
	for p := 0; p < n; p++ {
		binary.BigEndian.PutUint16(z[:], uint16(atoms[at(p)].AtomicNumber))
		buf = append(buf, z[:]...)
	}
	var cur byte
	bit := 0
	for p := 0; p < n; p++ {
		for q := p + 1; q < n; q++ {
			cur <<= 1
			if adj.At(at(p), at(q)) == 1 {
				cur |= 1
			}
			bit++
			if bit == 8 {
				buf = append(buf, cur)
				cur, bit = 0, 0
			}
		}
	}
	if bit > 0 {
		buf = append(buf, cur<<(8-bit))
	}
	return string(buf)
}

// stateCache records every state visited by the outer loop.  Keys are xxhash
// digests; each bucket holds the full packed states to rule out collisions.
type stateCache struct {
	buckets map[uint64][]string
	size    int
}

func newStateCache() *stateCache {
	return &stateCache{buckets: make(map[uint64][]string)}
}

// visit records fp and reports whether it had been seen before.
func (c *stateCache) visit(fp string) bool {
	key := xxhash.Sum64String(fp)
	for _, prev := range c.buckets[key] {
		if prev == fp {
			return true
		}
	}
	c.buckets[key] = append(c.buckets[key], fp)
	c.size++
	return false
}

func (c *stateCache) len() int { return c.size }
