// Package metrics exposes prometheus counters for the orchestration
// surface on its own registry, served at /metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the service counters.
type Metrics struct {
	registry *prometheus.Registry

	// Requests counts orchestration requests by mode and outcome.
	Requests *prometheus.CounterVec
	// AssignmentsWritten counts assignments the background writer persisted.
	AssignmentsWritten prometheus.Counter
}

// New builds the counters on a fresh registry so tests never collide on
// the global default.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "orchestrator_requests_total",
			Help: "Orchestration requests by mode and outcome.",
		}, []string{"mode", "outcome"}),
		AssignmentsWritten: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "orchestrator_assignments_written_total",
			Help: "Assignments persisted by the background writer.",
		}),
	}
	reg.MustRegister(m.Requests, m.AssignmentsWritten)
	return m
}

// Handler serves the registry in the prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
