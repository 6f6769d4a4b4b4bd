package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequestDuration tracks request latency per route
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"method", "path", "status"},
	)

	// AICallLatency tracks language-model call latency
	AICallLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ai_call_latency_ms",
			Help:    "AI provider call latency in milliseconds",
			Buckets: prometheus.ExponentialBuckets(100, 2, 10), // 100ms to ~100s
		},
		[]string{"operation", "status"},
	)

	// ExtractionCount counts profile extractions by input source
	ExtractionCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "profile_extraction_count",
			Help: "Total number of profile extractions",
		},
		[]string{"source", "status"}, // source: text, file, url
	)

	// GenerationCount counts campaign generations
	GenerationCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "campaign_generation_count",
			Help: "Total number of campaign generations",
		},
		[]string{"status"},
	)

	// ExportCount counts campaign exports by format
	ExportCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "campaign_export_count",
			Help: "Total number of campaign exports",
		},
		[]string{"format"},
	)

	// LimitRejections counts requests refused by the usage limiter
	LimitRejections = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "usage_limit_rejections_total",
			Help: "Requests rejected because the monthly quota was exhausted",
		},
	)
)

// RecordHTTPRequestDuration records request latency
func RecordHTTPRequestDuration(method, path, status string, duration time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// RecordAICallLatency records AI provider latency
func RecordAICallLatency(operation, status string, duration time.Duration) {
	AICallLatency.WithLabelValues(operation, status).Observe(float64(duration.Milliseconds()))
}
