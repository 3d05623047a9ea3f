package metrics

import "github.com/prometheus/client_golang/prometheus"

// Filter-engine Prometheus metrics.
var (
	FilterJobsScanned = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "bullmq",
			Name:      "filter_jobs_scanned_total",
			Help:      "Total candidate jobs pulled from the queue by filter runs",
		},
	)

	FilterJobsMatched = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "bullmq",
			Name:      "filter_jobs_matched_total",
			Help:      "Total jobs matched by filter queries",
		},
	)

	FilterEvalErrors = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "bullmq",
			Name:      "filter_eval_errors_total",
			Help:      "Total per-document evaluation failures",
		},
	)

	FilterDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "bullmq",
			Name:      "filter_duration_seconds",
			Help:      "Filter call duration in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
	)
)

// RegisterEngineMetrics registers Prometheus filter-engine metrics. Must be
// called once from main.
func RegisterEngineMetrics() {
	prometheus.MustRegister(FilterJobsScanned)
	prometheus.MustRegister(FilterJobsMatched)
	prometheus.MustRegister(FilterEvalErrors)
	prometheus.MustRegister(FilterDuration)
}
