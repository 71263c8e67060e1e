package molecule

// criterion compares the atoms in rows a and b of the working state.  A
// negative result means a belongs before b, zero means the criterion cannot
// tell them apart, and a positive result means b belongs before a.
type criterion func(s *state, a, b int) int

// pass is one stage of the ordering pipeline.  Adjacent rows are exchanged
// only when every tie criterion reports equality and order reports > 0.
type pass struct {
	name  string
	ties  []criterion
	order criterion
}

func cmpInt(x, y int) int {
	switch {
	case x < y:
		return -1
	case x > y:
		return 1
	}
	return 0
}

func byElement(s *state, a, b int) int {
	return cmpInt(s.element(a), s.element(b))
}

func byConnectivity(s *state, a, b int) int {
	if c := cmpInt(s.degree(a), s.degree(b)); c != 0 {
		return c
	}
	return cmpInt(s.heavyDegree(a), s.heavyDegree(b))
}

func byConnectivityIndex(s *state, a, b int) int {
	return cmpInt(s.connectivityIndex(a), s.connectivityIndex(b))
}

// byDistance puts atoms with the longer sorted distance profile first, so
// chain ends precede chain centers.
func byDistance(s *state, a, b int) int {
	return cmpInt(s.profile[a], s.profile[b])
}

// byDistanceIndex orders by canonical rank, which is refined from colored
// distance neighborhoods.  It separates every pair the earlier criteria leave
// tied.
func byDistanceIndex(s *state, a, b int) int {
	return cmpInt(s.rank[a], s.rank[b])
}

// byTerminalNeighbor orders two leaves by the row of the atom they hang from.
// Leaves whose neighbor is itself a leaf (an isolated two-atom fragment) are
// never reordered.
func byTerminalNeighbor(s *state, a, b int) int {
	if s.degree(a) != 1 || s.degree(b) != 1 {
		return 0
	}
	na, nb := s.neighbor(a), s.neighbor(b)
	if na < 0 || nb < 0 || s.degree(na) == 1 || s.degree(nb) == 1 {
		return 0
	}
	return cmpInt(na, nb)
}

// pipeline is the fixed pass order of one outer iteration.
var pipeline = []pass{
	{name: "element", order: byElement},
	{name: "connectivity", ties: []criterion{byElement}, order: byConnectivity},
	{name: "connectivity_index", ties: []criterion{byElement, byConnectivity}, order: byConnectivityIndex},
	{name: "distance", ties: []criterion{byElement, byConnectivity, byConnectivityIndex}, order: byDistance},
	{name: "distance_index", ties: []criterion{byElement, byConnectivity, byConnectivityIndex, byDistance}, order: byDistanceIndex},
	{name: "terminal", ties: []criterion{byElement}, order: byTerminalNeighbor},
}

// passStats summarizes one pass application.
type passStats struct {
	sweeps int
	swaps  int
	stable bool
}

// run applies p as adjacent-pair sweeps until a sweep makes no exchange or
// n+1 sweeps have been made.
func (p pass) run(s *state) passStats {
	n := s.len()
	var st passStats
	for st.sweeps < n+1 {
		st.sweeps++
		swapped := false
		for a := 0; a+1 < n; a++ {
			if p.shouldSwap(s, a, a+1) {
				s.swap(a, a+1)
				st.swaps++
				swapped = true
			}
		}
		if !swapped {
			st.stable = true
			break
		}
	}
	return st
}

func (p pass) shouldSwap(s *state, a, b int) bool {
	for _, tie := range p.ties {
		if tie(s, a, b) != 0 {
			return false
		}
	}
	return p.order(s, a, b) > 0
}
