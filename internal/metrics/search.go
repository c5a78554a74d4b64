package metrics

import "github.com/prometheus/client_golang/prometheus"

// Search resolution Prometheus metrics.
var (
	ProbeRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "omnisearch",
			Name:      "probe_requests_total",
			Help:      "Total number of category probes by outcome",
		},
		[]string{"network", "category", "outcome"}, // "match" / "absent" / "error"
	)

	ProbeDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "omnisearch",
			Name:      "probe_duration_seconds",
			Help:      "Category probe duration in seconds",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"network", "category"},
	)

	ProbeCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "omnisearch",
			Name:      "probe_cache_total",
			Help:      "Probe cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss"
	)

	PreviewBatchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "omnisearch",
			Name:      "preview_batches_total",
			Help:      "Preview batches by publication result",
		},
		[]string{"result"}, // "committed" / "stale"
	)

	CommitsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "omnisearch",
			Name:      "commits_total",
			Help:      "Commit resolutions by navigation kind",
		},
		[]string{"kind"}, // "matched" / "fallback" / "not_found"
	)

	SessionsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "omnisearch",
			Name:      "sessions_active",
			Help:      "Resolution sessions currently held in the session store",
		},
	)
)

var searchMetricsRegistered bool

// RegisterSearchMetrics registers Prometheus search metrics. Must be called once from main.
func RegisterSearchMetrics() {
	if searchMetricsRegistered {
		return
	}
	prometheus.MustRegister(ProbeRequestsTotal)
	prometheus.MustRegister(ProbeDuration)
	prometheus.MustRegister(ProbeCacheTotal)
	prometheus.MustRegister(PreviewBatchesTotal)
	prometheus.MustRegister(CommitsTotal)
	prometheus.MustRegister(SessionsActive)
	searchMetricsRegistered = true
}
