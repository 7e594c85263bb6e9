// Package metrics exposes the engine's instrumentation hooks as
// Prometheus metrics.
//
// The Collector implements pulse.Instrumentation; hand it to a runtime
// and register it (or its Registry) with your metrics endpoint:
//
//	reg := prometheus.NewRegistry()
//	col := metrics.NewCollector(metrics.WithRegistry(reg))
//	rt := pulse.NewRuntime(pulse.WithInstrumentation(col))
//
//	http.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
//
// Node labels come from the names given via WithName, EffectName, and
// TxNamed; unnamed nodes are grouped under a single "unnamed" label so
// metric cardinality stays bounded by the names the application chooses.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/pulse-dev/pulse/pkg/pulse"
)

var _ pulse.Instrumentation = (*Collector)(nil)

// Config configures the Prometheus collector.
type Config struct {
	// Namespace is the metrics namespace (default: "pulse").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// PassBuckets are the histogram buckets for flush passes.
	// Default: 1, 2, 3, 5, 10, 25, 100.
	PassBuckets []float64

	// DurationBuckets are the histogram buckets for flush duration.
	// Default: prometheus.DefBuckets.
	DurationBuckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer.
	Registry prometheus.Registerer
}

// Option configures the Prometheus collector.
type Option func(*Config)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) Option {
	return func(c *Config) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) Option {
	return func(c *Config) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) Option {
	return func(c *Config) {
		c.ConstLabels = labels
	}
}

// WithPassBuckets sets the histogram buckets for flush passes.
func WithPassBuckets(buckets []float64) Option {
	return func(c *Config) {
		c.PassBuckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) Option {
	return func(c *Config) {
		c.Registry = registry
	}
}

func defaultConfig() Config {
	return Config{
		Namespace:       "pulse",
		PassBuckets:     []float64{1, 2, 3, 5, 10, 25, 100},
		DurationBuckets: prometheus.DefBuckets,
		Registry:        prometheus.DefaultRegisterer,
	}
}

// Collector records engine activity as Prometheus metrics. It implements
// pulse.Instrumentation.
type Collector struct {
	signalWrites   *prometheus.CounterVec
	memoRecomputes *prometheus.CounterVec
	effectRuns     *prometheus.CounterVec
	batchesTotal   *prometheus.CounterVec
	batchesActive  prometheus.Gauge
	flushesTotal   prometheus.Counter
	flushPasses    prometheus.Histogram
	flushEffects   prometheus.Histogram
	flushDuration  prometheus.Histogram

	flushStart time.Time
}

// NewCollector builds a Collector and registers its metrics.
//
// Metrics:
//   - pulse_signal_writes_total: Counter of accepted signal writes by node
//   - pulse_memo_recomputes_total: Counter of memo recomputations by node
//   - pulse_effect_runs_total: Counter of effect runs by node
//   - pulse_batches_total: Counter of named transactions by name
//   - pulse_batches_active: Gauge of currently open named transactions
//   - pulse_flushes_total: Counter of completed flushes
//   - pulse_flush_passes: Histogram of queue drains per flush
//   - pulse_flush_effects: Histogram of effect runs per flush
//   - pulse_flush_duration_seconds: Histogram of flush wall time
func NewCollector(opts ...Option) *Collector {
	config := defaultConfig()
	for _, opt := range opts {
		opt(&config)
	}

	factory := promauto.With(config.Registry)

	return &Collector{
		signalWrites: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "signal_writes_total",
			Help:        "Total number of accepted signal writes",
			ConstLabels: config.ConstLabels,
		}, []string{"node"}),

		memoRecomputes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "memo_recomputes_total",
			Help:        "Total number of memo recomputations",
			ConstLabels: config.ConstLabels,
		}, []string{"node"}),

		effectRuns: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "effect_runs_total",
			Help:        "Total number of effect runs",
			ConstLabels: config.ConstLabels,
		}, []string{"node"}),

		batchesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "batches_total",
			Help:        "Total number of named transactions",
			ConstLabels: config.ConstLabels,
		}, []string{"name"}),

		batchesActive: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "batches_active",
			Help:        "Number of currently open named transactions",
			ConstLabels: config.ConstLabels,
		}),

		flushesTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "flushes_total",
			Help:        "Total number of completed flushes",
			ConstLabels: config.ConstLabels,
		}),

		flushPasses: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "flush_passes",
			Help:        "Queue drains needed per flush",
			ConstLabels: config.ConstLabels,
			Buckets:     config.PassBuckets,
		}),

		flushEffects: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "flush_effects",
			Help:        "Effect runs per flush",
			ConstLabels: config.ConstLabels,
			Buckets:     config.PassBuckets,
		}),

		flushDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "flush_duration_seconds",
			Help:        "Flush wall time in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.DurationBuckets,
		}),
	}
}

// nodeLabel collapses unnamed nodes into one label value.
func nodeLabel(name string) string {
	if name == "" {
		return "unnamed"
	}
	return name
}

// SignalWrite implements pulse.Instrumentation.
func (c *Collector) SignalWrite(name string) {
	c.signalWrites.WithLabelValues(nodeLabel(name)).Inc()
}

// MemoRecompute implements pulse.Instrumentation.
func (c *Collector) MemoRecompute(name string) {
	c.memoRecomputes.WithLabelValues(nodeLabel(name)).Inc()
}

// EffectRun implements pulse.Instrumentation.
func (c *Collector) EffectRun(name string) {
	c.effectRuns.WithLabelValues(nodeLabel(name)).Inc()
}

// BatchStart implements pulse.Instrumentation.
func (c *Collector) BatchStart(name string) {
	c.batchesTotal.WithLabelValues(nodeLabel(name)).Inc()
	c.batchesActive.Inc()
}

// BatchEnd implements pulse.Instrumentation.
func (c *Collector) BatchEnd(name string) {
	c.batchesActive.Dec()
}

// FlushStart implements pulse.Instrumentation. The runtime is
// single-goroutine and flushes never nest, so one start time suffices.
func (c *Collector) FlushStart() {
	c.flushStart = time.Now()
}

// FlushEnd implements pulse.Instrumentation.
func (c *Collector) FlushEnd(passes, effectsRun int) {
	c.flushesTotal.Inc()
	c.flushPasses.Observe(float64(passes))
	c.flushEffects.Observe(float64(effectsRun))
	c.flushDuration.Observe(time.Since(c.flushStart).Seconds())
}
