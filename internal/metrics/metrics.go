// Package metrics exposes Prometheus instrumentation for imports and analyses.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder owns a private registry. A nil *Recorder is valid and records nothing.
type Recorder struct {
	registry         *prometheus.Registry
	imported         prometheus.Counter
	skipped          prometheus.Counter
	importFailures   *prometheus.CounterVec
	analyses         *prometheus.CounterVec
	analysisDuration *prometheus.HistogramVec
}

func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		imported: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bookmarks_imported_total",
			Help: "Bookmarks produced by successful imports.",
		}),
		skipped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bookmarks_skipped_total",
			Help: "Export entries dropped because they had no usable id.",
		}),
		importFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "import_failures_total",
			Help: "Imports rejected as unrecognized archive formats.",
		}, []string{"reason"}),
		analyses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "analyses_total",
			Help: "Analysis invocations by provider and outcome.",
		}, []string{"provider", "outcome"}),
		analysisDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "analysis_duration_seconds",
			Help:    "Wall time of analysis invocations.",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 10),
		}, []string{"provider"}),
	}
	r.registry.MustRegister(r.imported, r.skipped, r.importFailures, r.analyses, r.analysisDuration)
	return r
}

func (r *Recorder) ObserveImport(imported, skipped int) {
	if r == nil {
		return
	}
	r.imported.Add(float64(imported))
	r.skipped.Add(float64(skipped))
}

func (r *Recorder) ImportFailed(reason string) {
	if r == nil {
		return
	}
	r.importFailures.WithLabelValues(reason).Inc()
}

func (r *Recorder) ObserveAnalysis(provider string, elapsed time.Duration, err error) {
	if r == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	r.analyses.WithLabelValues(provider, outcome).Inc()
	r.analysisDuration.WithLabelValues(provider).Observe(elapsed.Seconds())
}

// Gatherer exposes the registry for tests and custom exporters
func (r *Recorder) Gatherer() prometheus.Gatherer {
	return r.registry
}

func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
