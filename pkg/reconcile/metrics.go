package reconcile

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/vango-dev/vtree/pkg/vdom"
)

// MetricsConfig configures reconciliation metrics.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "vtree").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for pass duration.
	// Default: prometheus.DefBuckets
	Buckets []float64
}

// MetricsOption configures reconciliation metrics.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) MetricsOption {
	return func(c *MetricsConfig) {
		c.Buckets = buckets
	}
}

// Metrics holds the Prometheus collectors for reconciliation passes. One
// Metrics is shared by every App registered against the same registry.
// A nil *Metrics records nothing.
type Metrics struct {
	passesTotal    prometheus.Counter
	patchesTotal   *prometheus.CounterVec
	patchesSkipped prometheus.Counter
	passDuration   prometheus.Histogram
}

// NewMetrics creates and registers reconciliation metrics on reg:
//
//   - vtree_passes_total: Counter of reconciliation passes
//   - vtree_patches_total: Counter of applied patches by action
//   - vtree_patches_skipped_total: Counter of unresolvable patches
//   - vtree_pass_duration_seconds: Histogram of pass duration
//
// It panics if the collectors are already registered on reg, like
// promauto does.
func NewMetrics(reg prometheus.Registerer, opts ...MetricsOption) *Metrics {
	config := MetricsConfig{
		Namespace: "vtree",
		Buckets:   prometheus.DefBuckets,
	}
	for _, opt := range opts {
		opt(&config)
	}

	factory := promauto.With(reg)

	return &Metrics{
		passesTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "passes_total",
			Help:        "Total number of reconciliation passes",
			ConstLabels: config.ConstLabels,
		}),

		patchesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "patches_total",
			Help:        "Total number of patches applied, by action",
			ConstLabels: config.ConstLabels,
		}, []string{"action"}),

		patchesSkipped: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "patches_skipped_total",
			Help:        "Total number of patches skipped because their target could not be resolved",
			ConstLabels: config.ConstLabels,
		}),

		passDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "pass_duration_seconds",
			Help:        "Reconciliation pass duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}),
	}
}

// observe records one pass.
func (m *Metrics) observe(patches []vdom.Patch, skipped int, d time.Duration) {
	if m == nil {
		return
	}
	m.passesTotal.Inc()
	for _, p := range patches {
		m.patchesTotal.WithLabelValues(p.Action.String()).Inc()
	}
	m.patchesSkipped.Add(float64(skipped))
	m.passDuration.Observe(d.Seconds())
}
