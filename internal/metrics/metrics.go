// Package metrics exposes Prometheus instrumentation for the repository and
// blob uploads.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns a private registry so tests can build as many as they like.
// A nil *Metrics records nothing.
type Metrics struct {
	Registry *prometheus.Registry

	operations *prometheus.CounterVec
	durations  *prometheus.HistogramVec
	uploads    *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "news_repository_operations_total",
			Help: "Repository operations by operation and result.",
		}, []string{"op", "result"}),
		durations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "news_repository_operation_seconds",
			Help:    "Repository operation latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"op"}),
		uploads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "news_blob_uploads_total",
			Help: "Image uploads by result.",
		}, []string{"result"}),
	}
	m.Registry.MustRegister(
		m.operations,
		m.durations,
		m.uploads,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveOperation records one repository call that started at start.
func (m *Metrics) ObserveOperation(op string, start time.Time, err error) {
	if m == nil {
		return
	}
	m.operations.WithLabelValues(op, result(err)).Inc()
	m.durations.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

// ObserveUpload records one blob upload.
func (m *Metrics) ObserveUpload(err error) {
	if m == nil {
		return
	}
	m.uploads.WithLabelValues(result(err)).Inc()
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
