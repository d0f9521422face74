// Package metrics exposes extraction counters for Prometheus.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "invoice"

// Metrics holds the extraction collectors on a private registry. A nil
// *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	documents     *prometheus.CounterVec
	failures      *prometheus.CounterVec
	lines         *prometheus.CounterVec
	flagged       *prometheus.CounterVec
	batchDuration prometheus.Histogram
	batchSize     prometheus.Histogram
}

// New registers the collectors on a fresh registry together with the Go
// runtime and process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		documents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "documents_processed_total",
			Help:      "Documents extracted, by extraction method.",
		}, []string{"method"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "documents_failed_total",
			Help:      "Documents that ended as error rows, by failing stage.",
		}, []string{"stage"}),
		lines: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lines_extracted_total",
			Help:      "Line items extracted, by extraction method.",
		}, []string{"method"}),
		flagged: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lines_flagged_total",
			Help:      "Line items whose amounts did not reconcile.",
		}, []string{"method"}),
		batchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_duration_seconds",
			Help:      "Wall time of one batch run.",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 12),
		}),
		batchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_documents",
			Help:      "Documents per batch run.",
			Buckets:   []float64{1, 5, 10, 25, 50, 100, 250, 500},
		}),
	}

	m.registry.MustRegister(
		m.documents, m.failures, m.lines, m.flagged, m.batchDuration, m.batchSize,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry returns the private registry.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) DocumentProcessed(method string) {
	if m == nil {
		return
	}
	m.documents.WithLabelValues(method).Inc()
}

func (m *Metrics) DocumentFailed(stage string) {
	if m == nil {
		return
	}
	m.failures.WithLabelValues(stage).Inc()
}

func (m *Metrics) LinesExtracted(method string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.lines.WithLabelValues(method).Add(float64(n))
}

func (m *Metrics) LineFlagged(method string) {
	if m == nil {
		return
	}
	m.flagged.WithLabelValues(method).Inc()
}

// ObserveBatch records one batch run.
func (m *Metrics) ObserveBatch(documents int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.batchSize.Observe(float64(documents))
	m.batchDuration.Observe(elapsed.Seconds())
}
