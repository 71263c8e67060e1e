package molecule

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// Atomic numbers used by the fixtures.
const (
	zH  = 1
	zC  = 6
	zN  = 7
	zO  = 8
	zCl = 17
	zPt = 78
)

func atomsOf(zs ...int) []Atom {
	out := make([]Atom, len(zs))
	for i, z := range zs {
		out[i] = Atom{AtomicNumber: z}
	}
	return out
}

func mustGraph(t *testing.T, atoms []Atom, bonds ...Bond) *Graph {
	t.Helper()
	g, err := NewGraph(atoms, bonds)
	require.NoError(t, err)
	return g
}

func hydrogen(t *testing.T) *Graph {
	return mustGraph(t, atomsOf(zH, zH), Bond{0, 1})
}

// water is listed oxygen first.
func water(t *testing.T) *Graph {
	return mustGraph(t, atomsOf(zO, zH, zH), Bond{0, 1}, Bond{0, 2})
}

func ammonia(t *testing.T) *Graph {
	return mustGraph(t, atomsOf(zH, zN, zH, zH), Bond{0, 1}, Bond{1, 2}, Bond{1, 3})
}

func methane(t *testing.T) *Graph {
	return mustGraph(t, atomsOf(zC, zH, zH, zH, zH), Bond{0, 1}, Bond{0, 2}, Bond{0, 3}, Bond{0, 4})
}

// ethanol: C0 methyl, C1 methylene, O2, H3-H5 on C0, H6-H7 on C1, H8 on O2.
func ethanol(t *testing.T) *Graph {
	return mustGraph(t, atomsOf(zC, zC, zO, zH, zH, zH, zH, zH, zH),
		Bond{0, 1}, Bond{1, 2},
		Bond{0, 3}, Bond{0, 4}, Bond{0, 5},
		Bond{1, 6}, Bond{1, 7},
		Bond{2, 8},
	)
}

// cisplatin is listed in molfile order: Pt, two Cl, two N, six H.
func cisplatin(t *testing.T) *Graph {
	return mustGraph(t, atomsOf(zPt, zCl, zCl, zN, zN, zH, zH, zH, zH, zH, zH),
		Bond{0, 1}, Bond{0, 2}, Bond{0, 3}, Bond{0, 4},
		Bond{3, 5}, Bond{3, 6}, Bond{3, 7},
		Bond{4, 8}, Bond{4, 9}, Bond{4, 10},
	)
}

// path returns a linear chain of n carbons.
func path(t *testing.T, n int) *Graph {
	zs := make([]int, n)
	var bonds []Bond
	for i := range zs {
		zs[i] = zC
		if i > 0 {
			bonds = append(bonds, Bond{i - 1, i})
		}
	}
	return mustGraph(t, atomsOf(zs...), bonds...)
}

const (
	hydrogenID  = "nInChI=1S/H2/c(0-1)"
	waterID     = "nInChI=1S/H2O/c(0-2)(1-2)"
	ammoniaID   = "nInChI=1S/H3N/c(0-3)(1-3)(2-3)"
	methaneID   = "nInChI=1S/CH4/c(0-4)(1-4)(2-4)(3-4)"
	ethanolID   = "nInChI=1S/C2H6O/c(0-6)(1-6)(2-6)(3-7)(4-7)(5-8)(6-7)(7-8)"
	cisplatinID = "nInChI=1S/H6Cl2N2Pt/c(0-6)(1-6)(2-6)(3-7)(4-7)(5-7)(6-10)(7-10)(8-10)(9-10)"
	butaneID    = "nInChI=1S/C4/c(0-2)(1-3)(2-3)"
	pentaneID   = "nInChI=1S/C5/c(0-2)(1-3)(2-4)(3-4)"
)

// valence is the saturation valence used to add hydrogens.
var valence = map[int]int{zC: 4, zN: 3, zO: 2}

// build creates a graph from heavy atoms and bonds.  With withH set, every
// heavy atom is filled with hydrogens up to its valence, or to hs[i] when hs
// is given.
func build(t *testing.T, heavy []int, heavyBonds []Bond, withH bool, hs ...int) *Graph {
	t.Helper()
	zs := append([]int(nil), heavy...)
	bonds := append([]Bond(nil), heavyBonds...)
	if withH {
		deg := make([]int, len(heavy))
		for _, b := range heavyBonds {
			deg[b.A]++
			deg[b.B]++
		}
		for i := range heavy {
			k := valence[heavy[i]] - deg[i]
			if hs != nil {
				k = hs[i]
			}
			for ; k > 0; k-- {
				zs = append(zs, zH)
				bonds = append(bonds, Bond{i, len(zs) - 1})
			}
		}
	}
	return mustGraph(t, atomsOf(zs...), bonds...)
}

func carbons(n int) []int {
	zs := make([]int, n)
	for i := range zs {
		zs[i] = zC
	}
	return zs
}

// alkane is the unbranched chain C(n)H(2n+2).
func alkane(t *testing.T, n int, withH bool) *Graph {
	var bonds []Bond
	for i := 1; i < n; i++ {
		bonds = append(bonds, Bond{i - 1, i})
	}
	return build(t, carbons(n), bonds, withH)
}

// cycle returns a ring of n carbons without hydrogens.
func cycle(t *testing.T, n int) *Graph {
	return cycloalkane(t, n, false)
}

func cycloalkane(t *testing.T, n int, withH bool) *Graph {
	bonds := []Bond{{0, n - 1}}
	for i := 1; i < n; i++ {
		bonds = append(bonds, Bond{i - 1, i})
	}
	return build(t, carbons(n), bonds, withH)
}

// isopentane is 2-methylbutane.
func isopentane(t *testing.T, withH bool) *Graph {
	return build(t, carbons(5), []Bond{{0, 1}, {1, 2}, {2, 3}, {1, 4}}, withH)
}

func neopentane(t *testing.T, withH bool) *Graph {
	return build(t, carbons(5), []Bond{{0, 1}, {0, 2}, {0, 3}, {0, 4}}, withH)
}

// toluene: ring C0-C5, methyl C6 on C0, one hydrogen per ring CH.
func toluene(t *testing.T, withH bool) *Graph {
	bonds := []Bond{{0, 1}, {1, 2}, {2, 3}, {3, 4}, {4, 5}, {0, 5}, {0, 6}}
	return build(t, carbons(7), bonds, withH, 0, 1, 1, 1, 1, 1, 3)
}

func propanol(t *testing.T) *Graph {
	return build(t, []int{zC, zC, zC, zO}, []Bond{{0, 1}, {1, 2}, {2, 3}}, true)
}

// glycine: N0 C1 C2 (carboxyl) O3 O4, the acid hydrogen on O4.
func glycine(t *testing.T) *Graph {
	return build(t, []int{zN, zC, zC, zO, zO}, []Bond{{0, 1}, {1, 2}, {2, 3}, {2, 4}}, true, 2, 2, 0, 0, 1)
}
