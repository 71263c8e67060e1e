package molecule

import (
	"gonum.org/v1/gonum/mat"
)

// Distances returns the topological distance matrix of the graph described by
// adj: entry (i, j) is the length of the shortest path between atoms i and j,
// 0 on the diagonal and 0 for pairs in different components.
//
// The adjacency matrix seeds the result.  Boolean powers A^2 .. A^(n-1) are
// then formed; after every product the entries are clamped back to 0/1 so the
// reachability test never overflows.  The first exponent k at which an
// unresolved off-diagonal pair becomes reachable is its distance.  The loop
// stops early once every off-diagonal pair is resolved.
func Distances(adj Matrix) Matrix {
	n := adj.Size()
	dist := NewMatrix(n)
	if n < 2 {
		return dist
	}

	raw := make([]float64, n*n)
	unresolved := 0
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			v := adj.At(i, j)
			raw[i*n+j] = float64(v)
			if i == j {
				continue
			}
			if v != 0 {
				dist.set(i, j, 1)
			} else {
				unresolved++
			}
		}
	}

	a := mat.NewDense(n, n, raw)
	cur := mat.DenseCopyOf(a)
	next := mat.NewDense(n, n, nil)
	clamp := func(_, _ int, v float64) float64 {
		if v > 0 {
			return 1
		}
		return 0
	}

	for k := 2; k <= n-1 && unresolved > 0; k++ {
		next.Mul(cur, a)
		next.Apply(clamp, next)
		for i := 0; i < n; i++ {
			for j := 0; j < n; j++ {
				if i != j && dist.At(i, j) == 0 && next.At(i, j) > 0 {
					dist.set(i, j, k)
					unresolved--
				}
			}
		}
		cur, next = next, cur
	}

	for i := 0; i < n; i++ {
		dist.set(i, i, 0)
	}
	return dist
}
