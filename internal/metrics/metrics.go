// Package metrics exposes pipeline statistics to Prometheus.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "jobrank"

// Metrics holds the pipeline collectors. It satisfies pipeline.Recorder.
type Metrics struct {
	registry *prometheus.Registry

	RunsTotal         *prometheus.CounterVec
	RunDuration       prometheus.Histogram
	RecordsFetched    *prometheus.CounterVec
	SourceFailures    *prometheus.CounterVec
	DroppedRecords    *prometheus.CounterVec
	PostingsPersisted prometheus.Counter
}

// New creates the collectors on a fresh registry, alongside the Go runtime
// and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		RunsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Pipeline runs by outcome (ok, failed, cancelled).",
		}, []string{"outcome"}),
		RunDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall time of a pipeline run.",
			Buckets:   prometheus.ExponentialBuckets(0.5, 2, 10), // 0.5s to ~4min
		}),
		RecordsFetched: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_fetched_total",
			Help:      "Raw records returned by each source.",
		}, []string{"source"}),
		SourceFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "source_failures_total",
			Help:      "Failed fetches by source.",
		}, []string{"source"}),
		DroppedRecords: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_dropped_total",
			Help:      "Records the normalizer rejected, by source.",
		}, []string{"source"}),
		PostingsPersisted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "postings_persisted_total",
			Help:      "Postings written to storage.",
		}),
	}
}

// Registry returns the registry the collectors live in.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// SourceFetched counts the raw records a source returned.
func (m *Metrics) SourceFetched(source string, records int) {
	m.RecordsFetched.WithLabelValues(source).Add(float64(records))
}

// SourceFailed counts one failed fetch of source.
func (m *Metrics) SourceFailed(source string) {
	m.SourceFailures.WithLabelValues(source).Inc()
}

// RecordsDropped counts records of source the normalizer rejected.
func (m *Metrics) RecordsDropped(source string, n int) {
	m.DroppedRecords.WithLabelValues(source).Add(float64(n))
}

// RunFinished records the outcome, duration and persisted count of a run.
func (m *Metrics) RunFinished(outcome string, persisted int, elapsed time.Duration) {
	m.RunsTotal.WithLabelValues(outcome).Inc()
	m.RunDuration.Observe(elapsed.Seconds())
	m.PostingsPersisted.Add(float64(persisted))
}
