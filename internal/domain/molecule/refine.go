package molecule

import "sort"

// distanceProfiles classifies atoms by their sorted distance rows.  Class 0
// holds the atoms whose descending distance row is lexicographically largest,
// i.e. the most eccentric atoms.  The classes depend only on the graph, never
// on the current numbering.
func distanceProfiles(dist Matrix) []int {
	n := dist.Size()
	rows := make([][]int, n)
	for i := 0; i < n; i++ {
		row := make([]int, 0, n)
		for j := 0; j < n; j++ {
			if j != i {
				row = append(row, -dist.At(i, j))
			}
		}
		sort.Ints(row)
		rows[i] = row
	}
	return denseRanks(rows)
}

// canonicalRanks assigns every atom of s a distinct position that is a
// function of the graph alone, up to automorphism: for any renumbering of the
// same graph, ordering both by rank yields identical atom sequences and
// adjacency matrices.
//
// Colors start from the invariant atom features, are refined against colored
// distance neighborhoods until stable, and any remaining tie is split by
// trying each candidate atom of the first tied class in turn.  The discrete
// coloring whose packed form sorts lowest wins.
func canonicalRanks(s *state) []int {
	n := s.len()
	keys := make([][]int, n)
	for i := 0; i < n; i++ {
		keys[i] = []int{
			s.element(i),
			s.degree(i),
			s.heavyDegree(i),
			connectivityIndex(s.adj, s.atoms, i),
			s.profile[i],
		}
	}

	r := &refiner{n: n, atoms: s.atoms, adj: s.adj, dist: s.dist}
	var best leaf
	r.search(denseRanks(keys), &best)

	ranks := make([]int, n)
	for pos, atom := range best.order {
		ranks[atom] = pos
	}
	return ranks
}

type refiner struct {
	n     int
	atoms []Atom
	adj   Matrix
	dist  Matrix
}

// leaf is the best discrete coloring found so far.  order[p] is the atom
// placed at position p.
type leaf struct {
	order  []int
	packed string
}

func (r *refiner) search(colors []int, best *leaf) {
	colors = r.refine(colors)

	cell := firstTiedCell(colors)
	if cell == nil {
		order := make([]int, r.n)
		for atom, c := range colors {
			order[c] = atom
		}
		if p := pack(r.atoms, r.adj, order); best.order == nil || p < best.packed {
			best.order, best.packed = order, p
		}
		return
	}

	// Any reordering of mutual twins is an automorphism, so one split covers
	// all of them.
	if r.allTwins(cell) {
		r.search(splitAll(colors, cell), best)
		return
	}

	var tried []int
	for _, v := range cell {
		if r.twinOfAny(v, tried) {
			continue
		}
		tried = append(tried, v)
		r.search(individualize(colors, v), best)
	}
}

// refine splits color classes until all atoms of a class see the same
// multiset of (distance, color) pairs.  A split class keeps its place among
// the others, so colors stay dense and ordered.
func (r *refiner) refine(colors []int) []int {
	cells := countColors(colors)
	for cells < r.n {
		keys := make([][]int, r.n)
		for i := 0; i < r.n; i++ {
			seen := make([]int, 0, r.n-1)
			for j := 0; j < r.n; j++ {
				if j != i {
					seen = append(seen, r.dist.At(i, j)*r.n+colors[j])
				}
			}
			sort.Ints(seen)
			keys[i] = append([]int{colors[i]}, seen...)
		}
		next := denseRanks(keys)
		nextCells := countColors(next)
		if nextCells == cells {
			break
		}
		colors, cells = next, nextCells
	}
	return colors
}

// twins reports whether u and w have the same neighbors apart from each
// other.  Exchanging twins of equal color is an automorphism.
func (r *refiner) twins(u, w int) bool {
	for x := 0; x < r.n; x++ {
		if x != u && x != w && r.adj.At(u, x) != r.adj.At(w, x) {
			return false
		}
	}
	return true
}

func (r *refiner) twinOfAny(v int, others []int) bool {
	for _, u := range others {
		if r.twins(u, v) {
			return true
		}
	}
	return false
}

func (r *refiner) allTwins(cell []int) bool {
	for _, v := range cell[1:] {
		if !r.twins(cell[0], v) {
			return false
		}
	}
	return true
}

// firstTiedCell returns the members of the lowest color shared by two or
// more atoms, in atom order, or nil when the coloring is discrete.
func firstTiedCell(colors []int) []int {
	counts := make([]int, len(colors))
	for _, c := range colors {
		counts[c]++
	}
	target := -1
	for c, k := range counts {
		if k > 1 {
			target = c
			break
		}
	}
	if target < 0 {
		return nil
	}
	var cell []int
	for atom, c := range colors {
		if c == target {
			cell = append(cell, atom)
		}
	}
	return cell
}

// individualize moves v ahead of the other members of its class.
func individualize(colors []int, v int) []int {
	target := colors[v]
	vals := make([]int, len(colors))
	for atom, c := range colors {
		vals[atom] = 2 * c
		if c == target && atom != v {
			vals[atom]++
		}
	}
	return densify(vals)
}

// splitAll gives every member of cell its own color, in atom order.
func splitAll(colors, cell []int) []int {
	n := len(colors)
	vals := make([]int, n)
	for atom, c := range colors {
		vals[atom] = c * n
	}
	for k, atom := range cell {
		vals[atom] += k
	}
	return densify(vals)
}

func densify(vals []int) []int {
	keys := make([][]int, len(vals))
	for i, v := range vals {
		keys[i] = []int{v}
	}
	return denseRanks(keys)
}

// denseRanks maps each key to the number of distinct smaller keys.
func denseRanks(keys [][]int) []int {
	idx := make([]int, len(keys))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return compareInts(keys[idx[a]], keys[idx[b]]) < 0
	})
	ranks := make([]int, len(keys))
	r := 0
	for k, i := range idx {
		if k > 0 && compareInts(keys[idx[k-1]], keys[i]) != 0 {
			r++
		}
		ranks[i] = r
	}
	return ranks
}

func countColors(colors []int) int {
	m := -1
	for _, c := range colors {
		if c > m {
			m = c
		}
	}
	return m + 1
}

func compareInts(a, b []int) int {
	for k := 0; k < len(a) && k < len(b); k++ {
		if c := cmpInt(a[k], b[k]); c != 0 {
			return c
		}
	}
	return cmpInt(len(a), len(b))
}
