// Package prometheus keeps nInChI's metrics on a private client_golang
// registry.  The CLI lives for one command, so the registry is exported by
// writing a node-exporter textfile at exit instead of serving a scrape
// endpoint.
package prometheus

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/turtacn/ninchi/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ninchi/pkg/errors"
)

// MetricsCollector registers metric families under one namespace.  A family
// that cannot be registered comes back as a no-op, so recording never fails.
type MetricsCollector interface {
	RegisterCounter(name, help string, labels ...string) CounterVec
	RegisterGauge(name, help string, labels ...string) GaugeVec
	RegisterHistogram(name, help string, buckets []float64, labels ...string) HistogramVec

	// Gatherer exposes the registry.
	Gatherer() prometheus.Gatherer

	// WriteTextfile replaces path with the current registry contents in the
	// text exposition format.
	WriteTextfile(path string) error
}

// CounterVec selects a Counter by label values.
type CounterVec interface {
	WithLabelValues(lvs ...string) Counter
}

// Counter only goes up.
type Counter interface {
	Inc()
}

// GaugeVec selects a Gauge by label values.
type GaugeVec interface {
	WithLabelValues(lvs ...string) Gauge
}

// Gauge tracks a level such as work in flight.
type Gauge interface {
	Inc()
	Dec()
}

// HistogramVec selects a Histogram by label values.
type HistogramVec interface {
	WithLabelValues(lvs ...string) Histogram
}

// Histogram records observations into buckets.
type Histogram interface {
	Observe(value float64)
}

// CollectorConfig configures NewMetricsCollector.
type CollectorConfig struct {
	// Namespace prefixes every metric name.  Required.
	Namespace string
}

type collector struct {
	namespace string
	registry  *prometheus.Registry
	logger    logging.Logger

	mu       sync.Mutex
	families map[string]prometheus.Collector
}

// NewMetricsCollector returns a collector backed by a fresh registry.
func NewMetricsCollector(cfg CollectorConfig, logger logging.Logger) (MetricsCollector, error) {
	if cfg.Namespace == "" {
		return nil, errors.New(errors.CodeConfig, "metrics namespace is required")
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &collector{
		namespace: cfg.Namespace,
		registry:  prometheus.NewRegistry(),
		logger:    logger,
		families:  make(map[string]prometheus.Collector),
	}, nil
}

func (c *collector) Gatherer() prometheus.Gatherer { return c.registry }

func (c *collector) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, c.registry); err != nil {
		return errors.Wrap(err, errors.CodeOutput, "failed to write metrics textfile").WithDetail(path)
	}
	return nil
}

// register adds fresh under name, or returns the family already registered
// there.  ok is false when registration fails or the existing family has a
// different kind.
func register[V prometheus.Collector](c *collector, name string, fresh V) (vec V, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	fq := prometheus.BuildFQName(c.namespace, "", name)
	if existing, found := c.families[fq]; found {
		if vec, ok = existing.(V); !ok {
			c.logger.Warn("metric kind mismatch", logging.String("name", fq))
		}
		return vec, ok
	}
	if err := c.registry.Register(fresh); err != nil {
		c.logger.Error("failed to register metric", logging.String("name", fq), logging.Err(err))
		return vec, false
	}
	c.families[fq] = fresh
	return fresh, true
}

func (c *collector) RegisterCounter(name, help string, labels ...string) CounterVec {
	vec, ok := register(c, name, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: c.namespace,
		Name:      name,
		Help:      help,
	}, labels))
	if !ok {
		return noopCounters{}
	}
	return counters{vec}
}

func (c *collector) RegisterGauge(name, help string, labels ...string) GaugeVec {
	vec, ok := register(c, name, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: c.namespace,
		Name:      name,
		Help:      help,
	}, labels))
	if !ok {
		return noopGauges{}
	}
	return gauges{vec}
}

// RegisterHistogram uses prometheus.DefBuckets when buckets is nil.
func (c *collector) RegisterHistogram(name, help string, buckets []float64, labels ...string) HistogramVec {
	if buckets == nil {
		buckets = prometheus.DefBuckets
	}
	vec, ok := register(c, name, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: c.namespace,
		Name:      name,
		Help:      help,
		Buckets:   buckets,
	}, labels))
	if !ok {
		return noopHistograms{}
	}
	return histograms{vec}
}

type counters struct{ vec *prometheus.CounterVec }

func (f counters) WithLabelValues(lvs ...string) Counter { return f.vec.WithLabelValues(lvs...) }

type gauges struct{ vec *prometheus.GaugeVec }

func (f gauges) WithLabelValues(lvs ...string) Gauge { return f.vec.WithLabelValues(lvs...) }

type histograms struct{ vec *prometheus.HistogramVec }

func (f histograms) WithLabelValues(lvs ...string) Histogram { return f.vec.WithLabelValues(lvs...) }

type noopMetric struct{}

func (noopMetric) Inc()            {}
func (noopMetric) Dec()            {}
func (noopMetric) Observe(float64) {}

type noopCounters struct{}

func (noopCounters) WithLabelValues(...string) Counter { return noopMetric{} }

type noopGauges struct{}

func (noopGauges) WithLabelValues(...string) Gauge { return noopMetric{} }

type noopHistograms struct{}

func (noopHistograms) WithLabelValues(...string) Histogram { return noopMetric{} }

// Timer measures one operation.  With a nil Histogram it only measures.
type Timer struct {
	histogram Histogram
	start     time.Time
}

// NewTimer starts a Timer that reports into h.
func NewTimer(h Histogram) *Timer {
	return &Timer{histogram: h, start: time.Now()}
}

// ObserveDuration records the seconds elapsed since NewTimer and returns the
// elapsed time.
func (t *Timer) ObserveDuration() time.Duration {
	d := time.Since(t.start)
	if t.histogram != nil {
		t.histogram.Observe(d.Seconds())
	}
	return d
}
