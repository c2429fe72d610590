package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Diagnostic metrics
	DiagnosticsTotal *prometheus.CounterVec
	PassDuration     *prometheus.HistogramVec

	// Graph metrics
	GraphVertices *prometheus.GaugeVec

	// Artifact metrics
	ArtifactsLoadedTotal *prometheus.CounterVec
}

// Artifact load statuses
const (
	ArtifactLoaded  = "loaded"
	ArtifactMissing = "missing"
	ArtifactFailed  = "failed"
	ArtifactInvalid = "invalid"
)

// NewMetrics creates and registers all Prometheus metrics
func NewMetrics(registry prometheus.Registerer) *Metrics {
	m := &Metrics{
		DiagnosticsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "modverify_diagnostics_total",
				Help: "Total number of diagnostics emitted",
			},
			[]string{"kind", "pass"},
		),
		PassDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "modverify_pass_duration_seconds",
				Help:    "Duration of each analysis pass in seconds",
				Buckets: []float64{.001, .005, .01, .05, .1, .5, 1, 5, 10, 30},
			},
			[]string{"pass"},
		),
		GraphVertices: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "modverify_graph_vertices",
				Help: "Number of registered vertices per graph",
			},
			[]string{"graph"},
		),
		ArtifactsLoadedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "modverify_artifacts_loaded_total",
				Help: "Total number of artifact reads by kind and outcome",
			},
			[]string{"kind", "status"},
		),
	}

	registry.MustRegister(
		m.DiagnosticsTotal,
		m.PassDuration,
		m.GraphVertices,
		m.ArtifactsLoadedTotal,
	)

	return m
}

// ObservePass records the duration of a pass started at start. Safe on a
// nil receiver.
func (m *Metrics) ObservePass(pass string, start time.Time) {
	if m == nil {
		return
	}
	m.PassDuration.WithLabelValues(pass).Observe(time.Since(start).Seconds())
}

// CountDiagnostic increments the diagnostic counter. Safe on a nil receiver.
func (m *Metrics) CountDiagnostic(kind, pass string) {
	if m == nil {
		return
	}
	m.DiagnosticsTotal.WithLabelValues(kind, pass).Inc()
}

// SetVertices records the size of a graph. Safe on a nil receiver.
func (m *Metrics) SetVertices(graph string, n int) {
	if m == nil {
		return
	}
	m.GraphVertices.WithLabelValues(graph).Set(float64(n))
}

// CountArtifact records one artifact read outcome. Safe on a nil receiver.
func (m *Metrics) CountArtifact(kind, status string) {
	if m == nil {
		return
	}
	m.ArtifactsLoadedTotal.WithLabelValues(kind, status).Inc()
}

// WriteTextfile writes every metric in gatherer to path in the node-exporter
// textfile format.
func WriteTextfile(path string, gatherer prometheus.Gatherer) error {
	return prometheus.WriteToTextfile(path, gatherer)
}
