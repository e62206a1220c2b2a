// Package metrics exposes Prometheus instrumentation for the GeoProxyVis
// pipeline. Callers embedding the library can mount Handler() on their own
// serving surface.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	compositesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "proxyvis_composites_total",
			Help: "Total number of day/night composites generated.",
		},
		[]string{"satellite", "algorithm"},
	)

	compositeDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "proxyvis_composite_duration_seconds",
			Help:    "End-to-end composite generation duration in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"satellite", "algorithm"},
	)

	stageDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "proxyvis_stage_duration_seconds",
			Help:    "Duration of individual pipeline stages in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"stage"},
	)

	compositeErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "proxyvis_composite_errors_total",
			Help: "Total number of failed composite invocations.",
		},
		[]string{"satellite"},
	)
)

func init() {
	prometheus.MustRegister(compositesTotal)
	prometheus.MustRegister(compositeDurationSeconds)
	prometheus.MustRegister(stageDurationSeconds)
	prometheus.MustRegister(compositeErrorsTotal)
}

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordComposite records one successful composite generation.
func RecordComposite(satellite, algorithm string, d time.Duration) {
	compositesTotal.WithLabelValues(satellite, algorithm).Inc()
	compositeDurationSeconds.WithLabelValues(satellite, algorithm).Observe(d.Seconds())
}

// RecordStage records the duration of a single pipeline stage.
func RecordStage(stage string, d time.Duration) {
	stageDurationSeconds.WithLabelValues(stage).Observe(d.Seconds())
}

// RecordCompositeError records a failed composite invocation.
func RecordCompositeError(satellite string) {
	compositeErrorsTotal.WithLabelValues(satellite).Inc()
}
