package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nurox_http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "nurox_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	DebatesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nurox_debates_total",
			Help: "Total number of completed debates.",
		},
		[]string{"mode"},
	)

	QuotaDeniedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nurox_quota_denied_total",
			Help: "Total number of quota checks rejected, by limit kind.",
		},
		[]string{"limit"},
	)

	LLMRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "nurox_llm_request_duration_seconds",
			Help:    "Outbound LLM call duration in seconds.",
			Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"stage"},
	)
)

func init() {
	prometheus.MustRegister(
		HTTPRequestsTotal,
		HTTPRequestDuration,
		DebatesTotal,
		QuotaDeniedTotal,
		LLMRequestDuration,
	)
}
