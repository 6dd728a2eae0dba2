package middleware

import (
	"context"

	"github.com/pagekit-dev/pagekit/pkg/growl"
	"github.com/pagekit-dev/pagekit/pkg/scrolltop"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsConfig configures the Prometheus metrics.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "pagekit").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// MetricsOption configures the Prometheus metrics.
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

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) {
		c.Registry = registry
	}
}

func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace: "pagekit",
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Metrics holds the Prometheus collectors for page components.
type Metrics struct {
	notifications     *prometheus.CounterVec
	scrollTransitions *prometheus.CounterVec
	activations       prometheus.Counter
	activeSessions    prometheus.Gauge
}

// NewMetrics registers the collectors with the configured registry. Registering
// twice with the same registry panics, so create one Metrics per registry.
func NewMetrics(opts ...MetricsOption) *Metrics {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	return &Metrics{
		notifications: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "notifications_total",
			Help:        "Total number of banners rendered",
			ConstLabels: config.ConstLabels,
		}, []string{"severity", "status"}),

		scrollTransitions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "scroll_transitions_total",
			Help:        "Total number of scroll-to-top state transitions",
			ConstLabels: config.ConstLabels,
		}, []string{"state"}),

		activations: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "scroll_activations_total",
			Help:        "Total number of scroll-to-top activations",
			ConstLabels: config.ConstLabels,
		}),

		activeSessions: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "active_sessions",
			Help:        "Number of connected live pages",
			ConstLabels: config.ConstLabels,
		}),
	}
}

// Sink counts every banner rendered through next.
func (m *Metrics) Sink(next growl.Sink) growl.Sink {
	return growl.SinkFunc(func(ctx context.Context, msg growl.Message) error {
		err := next.Render(ctx, msg)
		status := "success"
		if err != nil {
			status = "error"
		}
		m.notifications.WithLabelValues(msg.Severity.String(), status).Inc()
		return err
	})
}

// ObserveScroll records a scroll-to-top state transition. It has the
// signature expected by scrolltop.WithOnChange.
func (m *Metrics) ObserveScroll(s scrolltop.State) {
	m.scrollTransitions.WithLabelValues(s.String()).Inc()
}

// Events counts clicks delivered through next.
func (m *Metrics) Events(next scrolltop.Events) scrolltop.Events {
	return &countingEvents{Events: next, m: m}
}

type countingEvents struct {
	scrolltop.Events
	m *Metrics
}

func (e *countingEvents) OnClick(selector string, fn func()) func() {
	return e.Events.OnClick(selector, func() {
		e.m.activations.Inc()
		fn()
	})
}

// SessionStarted records a newly connected page.
func (m *Metrics) SessionStarted() {
	m.activeSessions.Inc()
}

// SessionEnded records a disconnected page.
func (m *Metrics) SessionEnded() {
	m.activeSessions.Dec()
}
