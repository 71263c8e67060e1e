package prometheus

// IdentifierMetrics holds the metrics recorded while computing identifiers.
type IdentifierMetrics struct {
	// Canonicalization
	CanonicalizationsTotal   CounterVec
	CanonicalizationDuration HistogramVec
	CanonicalizationRounds   HistogramVec
	ConvergenceWarnings      CounterVec
	AtomsPerStructure        HistogramVec

	// Input/Output
	StructuresReadTotal CounterVec
	BatchInFlight       GaugeVec

	ErrorsTotal CounterVec
}

// Default Buckets
var (
	DefaultCanonicalizationDurationBuckets = []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1, 5, 30}
	DefaultIterationBuckets                = []float64{1, 2, 3, 5, 10, 20, 50, 100, 500, 1000}
	DefaultAtomCountBuckets                = []float64{2, 5, 10, 25, 50, 100, 250, 500, 1000}
)

// Status label values.
const (
	StatusConverged = "converged"
	StatusCapped    = "capped"
	StatusFailed    = "failed"
)

// NewIdentifierMetrics registers all metrics on collector.
func NewIdentifierMetrics(collector MetricsCollector) *IdentifierMetrics {
	m := &IdentifierMetrics{}

	m.CanonicalizationsTotal = collector.RegisterCounter("canonicalizations_total", "Canonicalization runs by outcome", "status")
	m.CanonicalizationDuration = collector.RegisterHistogram("canonicalization_duration_seconds", "Canonicalization wall time", DefaultCanonicalizationDurationBuckets)
	m.CanonicalizationRounds = collector.RegisterHistogram("canonicalization_iterations", "Outer iterations per canonicalization", DefaultIterationBuckets)
	m.ConvergenceWarnings = collector.RegisterCounter("convergence_warnings_total", "Runs that hit the iteration cap")
	m.AtomsPerStructure = collector.RegisterHistogram("atoms_per_structure", "Atom count of canonicalized structures", DefaultAtomCountBuckets)

	m.StructuresReadTotal = collector.RegisterCounter("structures_read_total", "Structure files read", "format")
	m.BatchInFlight = collector.RegisterGauge("batch_in_flight", "Structures currently being identified")

	m.ErrorsTotal = collector.RegisterCounter("errors_total", "Total errors", "stage", "code")

	return m
}

// Helpers.  A nil *IdentifierMetrics records nothing.

// StartCanonicalization returns a Timer over the canonicalization duration
// histogram.
func StartCanonicalization(m *IdentifierMetrics) *Timer {
	if m == nil {
		return NewTimer(nil)
	}
	return NewTimer(m.CanonicalizationDuration.WithLabelValues())
}

// RecordCanonicalization counts one finished run by outcome.
func RecordCanonicalization(m *IdentifierMetrics, atoms, iterations int, converged bool) {
	if m == nil {
		return
	}
	status := StatusConverged
	if !converged {
		status = StatusCapped
		m.ConvergenceWarnings.WithLabelValues().Inc()
	}
	m.CanonicalizationsTotal.WithLabelValues(status).Inc()
	m.CanonicalizationRounds.WithLabelValues().Observe(float64(iterations))
	m.AtomsPerStructure.WithLabelValues().Observe(float64(atoms))
}

func RecordStructureRead(m *IdentifierMetrics, format string) {
	if m == nil {
		return
	}
	m.StructuresReadTotal.WithLabelValues(format).Inc()
}

func RecordError(m *IdentifierMetrics, stage, code string) {
	if m == nil {
		return
	}
	if stage == "canonicalize" {
		m.CanonicalizationsTotal.WithLabelValues(StatusFailed).Inc()
	}
	m.ErrorsTotal.WithLabelValues(stage, code).Inc()
}

// TrackInFlight increments the in-flight gauge and returns the matching
// decrement.
func TrackInFlight(m *IdentifierMetrics) func() {
	if m == nil {
		return func() {}
	}
	g := m.BatchInFlight.WithLabelValues()
	g.Inc()
	return g.Dec
}
