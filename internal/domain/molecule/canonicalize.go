package molecule

import (
	"time"

	"github.com/google/uuid"

	"github.com/turtacn/ninchi/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ninchi/pkg/errors"
)

// DefaultMaxIterationFactor bounds the outer loop at factor·n iterations.
const DefaultMaxIterationFactor = 20

// Result is the outcome of one canonicalization run.
type Result struct {
	// Graph is the canonically ordered graph.
	Graph *Graph

	// Iterations is the number of outer iterations performed.
	Iterations int

	// Converged is false when the iteration cap was hit without a state
	// recurrence.  Graph then holds the last ordering reached.
	Converged bool

	// Warning carries a ConvergenceWarning when Converged is false.
	Warning error

	// RunID tags the run in logs and metrics.
	RunID string
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithLogger sets the engine logger.  nil is ignored.
func WithLogger(l logging.Logger) EngineOption {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithMaxIterationFactor sets the outer-loop cap per atom.  Values < 1 are
// ignored.
func WithMaxIterationFactor(f int) EngineOption {
	return func(e *Engine) {
		if f >= 1 {
			e.maxIterationFactor = f
		}
	}
}

// WithWeightedConnectivityIndex switches the connectivity-index pass to the
// position-weighted variant.
func WithWeightedConnectivityIndex(enabled bool) EngineOption {
	return func(e *Engine) { e.weighted = enabled }
}

// Engine computes canonical atom orderings.  It holds configuration only;
// every Canonicalize call owns its working state, so one Engine may serve
// concurrent callers.
type Engine struct {
	logger             logging.Logger
	maxIterationFactor int
	weighted           bool
}

// NewEngine returns an Engine with the given options applied.
func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{
		logger:             logging.NewNopLogger(),
		maxIterationFactor: DefaultMaxIterationFactor,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// MaxIterations returns the outer-loop cap for an n-atom graph.
func (e *Engine) MaxIterations(n int) int { return e.maxIterationFactor * n }

// Canonicalize relabels g into its canonical order.  The empty graph is
// rejected; a single atom is returned unchanged.  Hitting the iteration cap is
// not an error: the result carries a ConvergenceWarning instead.
func (e *Engine) Canonicalize(g *Graph) (*Result, error) {
	if g == nil || g.Len() == 0 {
		return nil, errors.InputError("empty structure")
	}

	runID := uuid.NewString()
	log := e.logger.With(logging.String("run_id", runID), logging.Int("atoms", g.Len()))

	if g.Len() == 1 {
		return &Result{Graph: g, Converged: true, RunID: runID}, nil
	}

	start := time.Now()
	s, err := newState(g.atoms, g.adj, Distances(g.adj), e.weighted)
	if err != nil {
		return nil, err
	}

	cache := newStateCache()
	cache.visit(s.fingerprint())

	maxIter := e.MaxIterations(s.len())
	res := &Result{RunID: runID}
	for it := 1; it <= maxIter; it++ {
		for _, p := range pipeline {
			st := p.run(s)
			log.Debug("pass completed",
				logging.Int("iteration", it),
				logging.String("pass", p.name),
				logging.Int("sweeps", st.sweeps),
				logging.Int("swaps", st.swaps),
				logging.Bool("stable", st.stable),
			)
		}
		res.Iterations = it
		if cache.visit(s.fingerprint()) {
			res.Converged = true
			break
		}
	}

	res.Graph = s.graph()
	if !res.Converged {
		res.Warning = errors.ConvergenceWarning("iteration cap reached without state recurrence").
			WithDetailf("iterations=%d atoms=%d", res.Iterations, s.len())
		log.Warn("canonicalization did not converge",
			logging.Int("iterations", res.Iterations),
			logging.Int("max_iterations", maxIter),
			logging.Int("states", cache.len()),
		)
		return res, nil
	}

	log.Debug("canonicalization converged",
		logging.Int("iterations", res.Iterations),
		logging.Int("states", cache.len()),
		logging.Duration("duration", time.Since(start)),
	)
	return res, nil
}
