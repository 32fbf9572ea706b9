// Package metrics exposes prometheus instrumentation for a collection run.
//
// A run is a one-shot process, so nothing is served over HTTP; the registry is
// written to a node-exporter textfile once the run completes.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "s3stats"

// Bucket outcome labels
const (
	StatusSucceeded = "succeeded"
	StatusFailed    = "failed"
)

// Metrics holds the collectors for one run. A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	BucketsTotal   *prometheus.CounterVec
	ObjectsScanned prometheus.Counter
	ObjectsMatched prometheus.Counter
	BytesMatched   prometheus.Counter
	CollectSeconds prometheus.Histogram
	InFlight       prometheus.Gauge
}

// New creates the run collectors on a dedicated registry
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		BucketsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "buckets_total",
			Help:      "Buckets processed, by outcome.",
		}, []string{"status"}),
		ObjectsScanned: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "objects_scanned_total",
			Help:      "Objects returned by bucket listings.",
		}),
		ObjectsMatched: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "objects_matched_total",
			Help:      "Objects that passed the name filter.",
		}),
		BytesMatched: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bytes_matched_total",
			Help:      "Size of the objects that passed the name filter.",
		}),
		CollectSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "bucket_collect_seconds",
			Help:      "Time spent collecting a single bucket.",
			Buckets:   prometheus.ExponentialBuckets(0.05, 4, 8),
		}),
		InFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "buckets_in_flight",
			Help:      "Buckets currently being collected.",
		}),
	}

	m.registry.MustRegister(
		m.BucketsTotal,
		m.ObjectsScanned,
		m.ObjectsMatched,
		m.BytesMatched,
		m.CollectSeconds,
		m.InFlight,
	)

	return m
}

// Registry returns the registry holding the run collectors
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// BucketStarted marks a bucket as in flight
func (m *Metrics) BucketStarted() {
	if m == nil {
		return
	}
	m.InFlight.Inc()
}

// BucketFinished records the outcome and duration of one bucket
func (m *Metrics) BucketFinished(failed bool, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.InFlight.Dec()
	status := StatusSucceeded
	if failed {
		status = StatusFailed
	}
	m.BucketsTotal.WithLabelValues(status).Inc()
	m.CollectSeconds.Observe(elapsed.Seconds())
}

// ObjectScanned counts one listed object
func (m *Metrics) ObjectScanned() {
	if m == nil {
		return
	}
	m.ObjectsScanned.Inc()
}

// ObjectMatched counts one object that passed the filter
func (m *Metrics) ObjectMatched(size int64) {
	if m == nil {
		return
	}
	m.ObjectsMatched.Inc()
	m.BytesMatched.Add(float64(size))
}

// WriteTextfile writes the current values in the text exposition format
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}
