package molecule

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/turtacn/ninchi/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ninchi/pkg/errors"
	"github.com/turtacn/ninchi/pkg/periodic"
)

func identify(t *testing.T, e *Engine, g *Graph) (string, *Result) {
	t.Helper()
	res, err := e.Canonicalize(g)
	require.NoError(t, err)
	id, err := NewEncoder(periodic.Standard()).Identifier(res.Graph)
	require.NoError(t, err)
	return id, res
}

func TestCanonicalize_KnownIdentifiers(t *testing.T) {
	tests := []struct {
		name  string
		build func(*testing.T) *Graph
		want  string
	}{
		{"hydrogen", hydrogen, hydrogenID},
		{"water", water, waterID},
		{"ammonia", ammonia, ammoniaID},
		{"methane", methane, methaneID},
		{"ethanol", ethanol, ethanolID},
		{"cisplatin", cisplatin, cisplatinID},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, res := identify(t, NewEngine(), tt.build(t))
			assert.Equal(t, tt.want, id)
			assert.True(t, res.Converged)
			assert.NoError(t, res.Warning)
			assert.Positive(t, res.Iterations)
			assert.NotEmpty(t, res.RunID)
		})
	}
}

// invarianceCases covers symmetric chains, branches and rings, each with and
// without explicit hydrogens.
func invarianceCases() []struct {
	name  string
	build func(*testing.T) *Graph
} {
	chain := func(n int, withH bool) func(*testing.T) *Graph {
		return func(t *testing.T) *Graph { return alkane(t, n, withH) }
	}
	with := func(f func(*testing.T, bool) *Graph, withH bool) func(*testing.T) *Graph {
		return func(t *testing.T) *Graph { return f(t, withH) }
	}
	return []struct {
		name  string
		build func(*testing.T) *Graph
	}{
		{"hydrogen", hydrogen},
		{"water", water},
		{"ammonia", ammonia},
		{"methane", methane},
		{"ethanol", ethanol},
		{"cisplatin", cisplatin},
		{"butane", chain(4, false)},
		{"butane_h", chain(4, true)},
		{"pentane", chain(5, false)},
		{"pentane_h", chain(5, true)},
		{"hexane", chain(6, false)},
		{"hexane_h", chain(6, true)},
		{"heptane", chain(7, false)},
		{"heptane_h", chain(7, true)},
		{"octane", chain(8, false)},
		{"octane_h", chain(8, true)},
		{"isopentane", with(isopentane, false)},
		{"isopentane_h", with(isopentane, true)},
		{"neopentane", with(neopentane, false)},
		{"neopentane_h", with(neopentane, true)},
		{"toluene", with(toluene, false)},
		{"toluene_h", with(toluene, true)},
		{"cyclohexane", with(cycloalkane6, false)},
		{"cyclohexane_h", with(cycloalkane6, true)},
		{"propanol", propanol},
		{"glycine", glycine},
	}
}

func cycloalkane6(t *testing.T, withH bool) *Graph { return cycloalkane(t, 6, withH) }

func TestCanonicalize_PermutationInvariance(t *testing.T) {
	e := NewEngine()
	for _, tc := range invarianceCases() {
		t.Run(tc.name, func(t *testing.T) {
			g := tc.build(t)
			wantID, want := identify(t, e, g)
			require.True(t, want.Converged)
			for seed := int64(1); seed <= 40; seed++ {
				perm := RandomPermutation(g.Len(), rand.New(rand.NewSource(seed)))
				p, err := g.Permute(perm)
				require.NoError(t, err)

				gotID, got := identify(t, e, p)
				assert.Equal(t, wantID, gotID, "seed %d perm %v", seed, perm)
				assert.Equal(t, want.Graph.AtomicNumbers(), got.Graph.AtomicNumbers())
				assert.True(t, want.Graph.Adjacency().Equal(got.Graph.Adjacency()))
				assert.True(t, got.Converged)
			}
		})
	}
}

func TestCanonicalize_WeightedPermutationInvariance(t *testing.T) {
	e := NewEngine(WithWeightedConnectivityIndex(true))
	for _, tc := range invarianceCases() {
		t.Run(tc.name, func(t *testing.T) {
			g := tc.build(t)
			wantID, _ := identify(t, e, g)
			for seed := int64(1); seed <= 10; seed++ {
				p, err := g.Permute(RandomPermutation(g.Len(), rand.New(rand.NewSource(seed))))
				require.NoError(t, err)
				gotID, _ := identify(t, e, p)
				assert.Equal(t, wantID, gotID, "seed %d", seed)
			}
		})
	}
}

func TestCanonicalize_Chains(t *testing.T) {
	id, _ := identify(t, NewEngine(), alkane(t, 4, false))
	assert.Equal(t, butaneID, id)
	id, _ = identify(t, NewEngine(), alkane(t, 5, false))
	assert.Equal(t, pentaneID, id)
}

func TestCanonicalize_Idempotent(t *testing.T) {
	e := NewEngine()
	for _, tc := range invarianceCases() {
		first, res := identify(t, e, tc.build(t))
		second, again := identify(t, e, res.Graph)
		assert.Equal(t, first, second, tc.name)
		assert.True(t, res.Graph.Adjacency().Equal(again.Graph.Adjacency()), tc.name)
	}
}

func TestCanonicalize_ConvergesBySecondIteration(t *testing.T) {
	e := NewEngine()
	for _, tc := range invarianceCases() {
		_, res := identify(t, e, tc.build(t))
		assert.LessOrEqual(t, res.Iterations, 2, tc.name)
	}
}

func TestCanonicalize_DistinguishesIsomers(t *testing.T) {
	e := NewEngine()
	pentane, _ := identify(t, e, alkane(t, 5, true))
	iso, _ := identify(t, e, isopentane(t, true))
	neo, _ := identify(t, e, neopentane(t, true))
	assert.NotEqual(t, pentane, iso)
	assert.NotEqual(t, pentane, neo)
	assert.NotEqual(t, iso, neo)
}

func TestCanonicalize_Repeatable(t *testing.T) {
	e := NewEngine()
	g := cisplatin(t)
	first, a := identify(t, e, g)
	second, b := identify(t, e, g)
	assert.Equal(t, first, second)
	assert.Equal(t, a.Iterations, b.Iterations)
	assert.NotEqual(t, a.RunID, b.RunID)
}

func TestCanonicalize_Weighted(t *testing.T) {
	e := NewEngine(WithWeightedConnectivityIndex(true))
	id, _ := identify(t, e, cisplatin(t))
	assert.Equal(t, cisplatinID, id)
	id, _ = identify(t, e, ethanol(t))
	assert.Equal(t, ethanolID, id)
}

func TestCanonicalize_DoesNotModifyInput(t *testing.T) {
	g := cisplatin(t)
	before := g.AtomicNumbers()
	adj := g.Adjacency()
	_, err := NewEngine().Canonicalize(g)
	require.NoError(t, err)
	assert.Equal(t, before, g.AtomicNumbers())
	assert.True(t, adj.Equal(g.Adjacency()))
}

func TestCanonicalize_CarriesAttributes(t *testing.T) {
	g := mustGraph(t, []Atom{
		{AtomicNumber: zO, Attributes: " O-coords"},
		{AtomicNumber: zH, Attributes: " H-coords"},
		{AtomicNumber: zH, Attributes: " H-coords"},
	}, Bond{0, 1}, Bond{0, 2})
	res, err := NewEngine().Canonicalize(g)
	require.NoError(t, err)
	assert.Equal(t, " O-coords", res.Graph.Atom(2).Attributes)
}

func TestCanonicalize_Empty(t *testing.T) {
	empty, err := NewGraph(nil, nil)
	require.NoError(t, err)

	for _, g := range []*Graph{nil, empty} {
		_, err := NewEngine().Canonicalize(g)
		require.Error(t, err)
		assert.True(t, errors.IsCode(err, errors.CodeInput))
		assert.Contains(t, err.Error(), "empty structure")
	}
}

func TestCanonicalize_SingleAtom(t *testing.T) {
	g := mustGraph(t, atomsOf(zPt))
	res, err := NewEngine().Canonicalize(g)
	require.NoError(t, err)
	assert.Same(t, g, res.Graph)
	assert.True(t, res.Converged)
	assert.Zero(t, res.Iterations)
}

func TestCanonicalize_IterationCap(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	e := NewEngine(WithLogger(logging.NewLoggerFromCore(core)))
	e.maxIterationFactor = 0

	res, err := e.Canonicalize(cisplatin(t))
	require.NoError(t, err)
	assert.False(t, res.Converged)
	require.Error(t, res.Warning)
	assert.True(t, errors.IsCode(res.Warning, errors.CodeConvergence))
	assert.Equal(t, 11, res.Graph.Len())

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "canonicalization did not converge", entry.Message)
	assert.Equal(t, res.RunID, entry.ContextMap()["run_id"])
}

func TestCanonicalize_LogsPasses(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	e := NewEngine(WithLogger(logging.NewLoggerFromCore(core)))
	res, err := e.Canonicalize(water(t))
	require.NoError(t, err)

	passes := logs.FilterMessage("pass completed").All()
	assert.Len(t, passes, res.Iterations*len(pipeline))
	assert.Equal(t, "element", passes[0].ContextMap()["pass"])
	assert.Equal(t, 1, logs.FilterMessage("canonicalization converged").Len())
}

func TestEngineOptions(t *testing.T) {
	e := NewEngine(WithMaxIterationFactor(3), WithMaxIterationFactor(0), WithLogger(nil))
	assert.Equal(t, 33, e.MaxIterations(11))
	assert.NotNil(t, e.logger)

	assert.Equal(t, DefaultMaxIterationFactor*5, NewEngine().MaxIterations(5))
}
