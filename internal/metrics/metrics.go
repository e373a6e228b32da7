// Package metrics records fetch outcomes as Prometheus metrics.
//
// Collectors live on a private registry so several batches (and tests) can
// run in one process. A batch CLI has no scrape endpoint, so the registry is
// exported with WriteTextfile in the node_exporter textfile format.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/handiism/geodata-downloader/internal/model"
)

// Recorder implements download.Observer using Prometheus collectors.
//
// Exposed metrics (namespace "geofetch"):
//   - geofetch_items_total{status}: items by terminal status
//   - geofetch_errors_total{kind}: failed items by error kind
//   - geofetch_bytes_total: bytes written to local artifacts
//   - geofetch_fetch_duration_seconds: per-item fetch duration
//   - geofetch_attempts_total: download attempts including retries
type Recorder struct {
	registry *prometheus.Registry

	items    *prometheus.CounterVec
	errors   *prometheus.CounterVec
	bytes    prometheus.Counter
	attempts prometheus.Counter
	duration prometheus.Histogram
}

// New creates a Recorder with its own registry.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		items: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "geofetch",
			Name:      "items_total",
			Help:      "Fetch batch items by terminal status.",
		}, []string{"status"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "geofetch",
			Name:      "errors_total",
			Help:      "Failed fetch batch items by error kind.",
		}, []string{"kind"}),
		bytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "geofetch",
			Name:      "bytes_total",
			Help:      "Bytes written to local artifacts.",
		}),
		attempts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "geofetch",
			Name:      "attempts_total",
			Help:      "Download attempts, including retries.",
		}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "geofetch",
			Name:      "fetch_duration_seconds",
			Help:      "Time spent fetching one item.",
			Buckets:   prometheus.ExponentialBuckets(0.1, 4, 8),
		}),
	}

	r.registry.MustRegister(r.items, r.errors, r.bytes, r.attempts, r.duration)
	return r
}

// ObserveResult records one finished item. A nil Recorder does nothing.
func (r *Recorder) ObserveResult(res model.Result) {
	if r == nil {
		return
	}

	r.items.WithLabelValues(res.Status.String()).Inc()
	if res.Status == model.StatusFailed {
		r.errors.WithLabelValues(res.Kind.String()).Inc()
	}
	if res.Status == model.StatusFetched {
		r.bytes.Add(float64(res.Bytes))
	}
	r.attempts.Add(float64(res.Attempts))
	r.duration.Observe(res.Duration.Seconds())
}

// WriteTextfile writes all metrics to path in the Prometheus text format.
func (r *Recorder) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.registry)
}
