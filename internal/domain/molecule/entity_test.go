package molecule

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/ninchi/pkg/errors"
)

func TestNewGraph_Valid(t *testing.T) {
	g := ethanol(t)
	assert.Equal(t, 9, g.Len())
	assert.Equal(t, []int{zC, zC, zO, zH, zH, zH, zH, zH, zH}, g.AtomicNumbers())

	adj := g.Adjacency()
	assert.True(t, adj.IsSymmetric())
	for i := 0; i < g.Len(); i++ {
		assert.Zero(t, adj.At(i, i))
	}
}

func TestNewGraph_Empty(t *testing.T) {
	g, err := NewGraph(nil, nil)
	require.NoError(t, err)
	assert.Zero(t, g.Len())
	assert.Empty(t, g.Bonds())
}

func TestNewGraph_Rejects(t *testing.T) {
	tests := []struct {
		name  string
		atoms []Atom
		bonds []Bond
	}{
		{"atomic number zero", atomsOf(0), nil},
		{"atomic number too large", atomsOf(MaxAtomicNumber + 1), nil},
		{"bond out of range", atomsOf(zH, zH), []Bond{{0, 2}}},
		{"negative bond index", atomsOf(zH, zH), []Bond{{-1, 1}}},
		{"self loop", atomsOf(zH, zH), []Bond{{1, 1}}},
		{"duplicate bond", atomsOf(zH, zH), []Bond{{0, 1}, {1, 0}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewGraph(tt.atoms, tt.bonds)
			require.Error(t, err)
			assert.True(t, errors.IsCode(err, errors.CodeInput))
		})
	}
}

func TestNewGraph_CopiesInput(t *testing.T) {
	atoms := atomsOf(zH, zH)
	g := mustGraph(t, atoms, Bond{0, 1})
	atoms[0].AtomicNumber = zC
	assert.Equal(t, zH, g.Atom(0).AtomicNumber)

	out := g.Atoms()
	out[1].AtomicNumber = zC
	assert.Equal(t, zH, g.Atom(1).AtomicNumber)
}

func TestNewBond_Normalizes(t *testing.T) {
	assert.Equal(t, Bond{A: 2, B: 5}, NewBond(5, 2))
	assert.Equal(t, Bond{A: 2, B: 5}, NewBond(2, 5))
}

func TestGraph_Features(t *testing.T) {
	g := ethanol(t)

	assert.Equal(t, 4, g.Degree(0))
	assert.Equal(t, 1, g.HeavyDegree(0))
	assert.Equal(t, 4, g.Degree(1))
	assert.Equal(t, 2, g.HeavyDegree(1))
	assert.Equal(t, 2, g.Degree(2))
	assert.Equal(t, 1, g.HeavyDegree(2))
	assert.Equal(t, 1, g.Degree(8))

	assert.Equal(t, zC+3*zH, g.ConnectivityIndex(0))
	assert.Equal(t, zC+zO+2*zH, g.ConnectivityIndex(1))
	assert.Equal(t, zO, g.ConnectivityIndex(8))

	assert.Equal(t, []int{0, 2, 6, 7}, g.Neighbors(1))
}

func TestGraph_Bonds_Order(t *testing.T) {
	g := mustGraph(t, atomsOf(zC, zC, zC, zO), Bond{2, 3}, Bond{0, 2}, Bond{1, 0})
	assert.Equal(t, []Bond{{0, 1}, {0, 2}, {2, 3}}, g.Bonds())
}

func TestGraph_Permute(t *testing.T) {
	g := water(t) // O0 H1 H2
	p, err := g.Permute([]int{2, 0, 1})
	require.NoError(t, err)

	assert.Equal(t, []int{zH, zH, zO}, p.AtomicNumbers())
	assert.Equal(t, []Bond{{0, 2}, {1, 2}}, p.Bonds())

	// the original is untouched
	assert.Equal(t, []int{zO, zH, zH}, g.AtomicNumbers())
}

func TestGraph_Permute_KeepsAttributes(t *testing.T) {
	g := mustGraph(t, []Atom{{AtomicNumber: zO, Attributes: " 0 0 0 0"}, {AtomicNumber: zH, Attributes: " 1 0 0 0"}}, Bond{0, 1})
	p, err := g.Permute([]int{1, 0})
	require.NoError(t, err)
	assert.Equal(t, Atom{AtomicNumber: zO, Attributes: " 0 0 0 0"}, p.Atom(1))
}

func TestGraph_Permute_Rejects(t *testing.T) {
	g := water(t)
	for _, perm := range [][]int{{0, 1}, {0, 1, 1}, {0, 1, 3}, {-1, 0, 1}} {
		_, err := g.Permute(perm)
		require.Error(t, err, "%v", perm)
		assert.True(t, errors.IsCode(err, errors.CodeInput))
	}
}

func TestRandomPermutation(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	perm := RandomPermutation(11, rng)
	require.Len(t, perm, 11)
	seen := make(map[int]bool)
	for _, p := range perm {
		seen[p] = true
	}
	assert.Len(t, seen, 11)

	again := RandomPermutation(11, rand.New(rand.NewSource(7)))
	assert.Equal(t, perm, again)
	assert.Empty(t, RandomPermutation(0, rng))
}
