package metrics

import "github.com/prometheus/client_golang/prometheus"

// Search pipeline Prometheus metrics.
var (
	SearchesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "miru",
			Name:      "searches_total",
			Help:      "Total number of search queries",
		},
	)

	SearchDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "miru",
			Name:      "search_duration_seconds",
			Help:      "End-to-end search duration in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 15, 30, 60},
		},
	)

	AnalysisRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "miru",
			Name:      "analysis_requests_total",
			Help:      "Total number of image analysis requests",
		},
		[]string{"status"}, // "success" / "degraded"
	)

	AnalysisCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "miru",
			Name:      "analysis_cache_total",
			Help:      "Analysis cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss"
	)

	CatalogItems = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "miru",
			Name:      "catalog_items",
			Help:      "Number of items in the published catalog",
		},
	)
)

var searchMetricsRegistered bool

// RegisterSearchMetrics registers the pipeline metrics. Must be called once
// from main.
func RegisterSearchMetrics() {
	if searchMetricsRegistered {
		return
	}
	prometheus.MustRegister(SearchesTotal)
	prometheus.MustRegister(SearchDuration)
	prometheus.MustRegister(AnalysisRequestsTotal)
	prometheus.MustRegister(AnalysisCacheTotal)
	prometheus.MustRegister(CatalogItems)
	searchMetricsRegistered = true
}
