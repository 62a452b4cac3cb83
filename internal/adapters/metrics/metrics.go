// Package metrics exposes module activity as Prometheus metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Namespace prefixes every metric name.
const Namespace = "ytcontrol"

// Metrics holds the module collectors on a dedicated registry.
type Metrics struct {
	transitions *prometheus.CounterVec
	projections *prometheus.CounterVec
	actions     *prometheus.CounterVec
	phase       *prometheus.GaugeVec

	registry *prometheus.Registry
}

// New creates and registers the module collectors.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,

		transitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "state_transitions_total",
				Help:      "Total number of module lifecycle transitions",
			},
			[]string{"from", "to"},
		),
		projections: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "projections_total",
				Help:      "Total number of state projections onto the host",
			},
			[]string{"kind"},
		),
		actions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "actions_total",
				Help:      "Total number of host actions executed",
			},
			[]string{"action", "result"},
		),
		phase: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: Namespace,
				Name:      "module_phase",
				Help:      "Current module lifecycle phase (1 for the active phase)",
			},
			[]string{"phase"},
		),
	}

	registry.MustRegister(
		m.transitions,
		m.projections,
		m.actions,
		m.phase,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// StateChanged records a lifecycle transition and updates the phase gauge.
func (m *Metrics) StateChanged(from, to string) {
	m.transitions.WithLabelValues(from, to).Inc()
	m.phase.Reset()
	m.phase.WithLabelValues(to).Set(1)
}

// Projected records a projection of the given kind.
func (m *Metrics) Projected(kind string) {
	m.projections.WithLabelValues(kind).Inc()
}

// ActionCompleted records the outcome of an action.
func (m *Metrics) ActionCompleted(action string, err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	m.actions.WithLabelValues(action, result).Inc()
}

// Registry returns the registry backing these metrics.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns an HTTP handler serving the metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
