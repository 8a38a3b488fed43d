// Package metrics exposes Prometheus counters for the form log.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "formlog"

// Metrics holds the collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry prometheus.Gatherer

	submissions    *prometheus.CounterVec
	exportedRows   *prometheus.CounterVec
	exportFailures *prometheus.CounterVec
	exportDuration *prometheus.HistogramVec
	purgedEntries  prometheus.Counter
}

// New registers the collectors with a fresh registry.
func New() *Metrics {
	return NewWithRegistry(prometheus.NewRegistry())
}

// NewWithRegistry registers the collectors with reg.
func NewWithRegistry(reg *prometheus.Registry) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		submissions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "submissions_logged_total",
			Help:      "Form submissions written to the log.",
		}, []string{"form"}),
		exportedRows: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "export_rows_total",
			Help:      "Rows written by exports.",
		}, []string{"profile", "format"}),
		exportFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "export_failures_total",
			Help:      "Exports that ended with an error.",
		}, []string{"profile", "format", "reason"}),
		exportDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "export_duration_seconds",
			Help:      "Duration of export runs.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"profile", "format"}),
		purgedEntries: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "entries_purged_total",
			Help:      "Entries removed by the retention job.",
		}),
	}
}

// SubmissionLogged counts one logged submission of form.
func (m *Metrics) SubmissionLogged(form string) {
	if m == nil {
		return
	}
	m.submissions.WithLabelValues(form).Inc()
}

// ExportFinished records the outcome of an export run. reason is empty on success.
func (m *Metrics) ExportFinished(profile, format string, rows int, elapsed time.Duration, reason string) {
	if m == nil {
		return
	}
	m.exportDuration.WithLabelValues(profile, format).Observe(elapsed.Seconds())
	if rows > 0 {
		m.exportedRows.WithLabelValues(profile, format).Add(float64(rows))
	}
	if reason != "" {
		m.exportFailures.WithLabelValues(profile, format, reason).Inc()
	}
}

// EntriesPurged counts entries removed by retention.
func (m *Metrics) EntriesPurged(n int64) {
	if m == nil || n <= 0 {
		return
	}
	m.purgedEntries.Add(float64(n))
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
