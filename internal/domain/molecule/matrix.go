package molecule

import (
	"fmt"
	"strings"
)

// Matrix is a dense, square integer matrix stored row-major.  It is used both
// for adjacency (0/1 entries) and for topological distances.
type Matrix struct {
	n    int
	data []int
}

// NewMatrix returns an n×n zero matrix.
func NewMatrix(n int) Matrix {
	if n < 0 {
		n = 0
	}
	return Matrix{n: n, data: make([]int, n*n)}
}

// Size returns the row (and column) count.
func (m Matrix) Size() int { return m.n }

// At returns the entry at row i, column j.
func (m Matrix) At(i, j int) int { return m.data[i*m.n+j] }

func (m Matrix) set(i, j, v int) { m.data[i*m.n+j] = v }

// Row returns a copy of row i.
func (m Matrix) Row(i int) []int {
	out := make([]int, m.n)
	copy(out, m.data[i*m.n:(i+1)*m.n])
	return out
}

// Clone returns a deep copy.
func (m Matrix) Clone() Matrix {
	c := Matrix{n: m.n, data: make([]int, len(m.data))}
	copy(c.data, m.data)
	return c
}

// Equal reports whether both matrices have the same size and entries.
func (m Matrix) Equal(o Matrix) bool {
	if m.n != o.n {
		return false
	}
	for k := range m.data {
		if m.data[k] != o.data[k] {
			return false
		}
	}
	return true
}

// IsSymmetric reports whether m[i][j] == m[j][i] for all i, j.
func (m Matrix) IsSymmetric() bool {
	for i := 0; i < m.n; i++ {
		for j := i + 1; j < m.n; j++ {
			if m.At(i, j) != m.At(j, i) {
				return false
			}
		}
	}
	return true
}

// swap exchanges rows i and j and then columns i and j, which relabels atom i
// as j and vice versa.
func (m Matrix) swap(i, j int) {
	if i == j {
		return
	}
	n := m.n
	ri, rj := m.data[i*n:(i+1)*n], m.data[j*n:(j+1)*n]
	for k := 0; k < n; k++ {
		ri[k], rj[k] = rj[k], ri[k]
	}
	for k := 0; k < n; k++ {
		row := m.data[k*n : (k+1)*n]
		row[i], row[j] = row[j], row[i]
	}
}

// String renders the matrix one row per line, entries separated by spaces.
func (m Matrix) String() string {
	var sb strings.Builder
	for i := 0; i < m.n; i++ {
		for j := 0; j < m.n; j++ {
			if j > 0 {
				sb.WriteByte(' ')
			}
			fmt.Fprintf(&sb, "%d", m.At(i, j))
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
