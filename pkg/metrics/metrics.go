package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"method", "path", "status"},
	)

	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
		},
		[]string{"operation", "table"},
	)

	TaskConsumeLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "task_consume_latency_ms",
			Help:    "Broker task consumption latency in milliseconds",
			Buckets: prometheus.ExponentialBuckets(10, 2, 10), // 10ms to ~10s
		},
		[]string{"routing_key", "queue"},
	)

	TaskProcessedCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "task_processed_count",
			Help: "Total number of background tasks processed",
		},
		[]string{"type", "status"}, // status: success, failed, duplicate
	)

	UserRegisteredCount = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "user_registered_count",
			Help: "Total number of registered users",
		},
	)

	EmailSentCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "email_sent_count",
			Help: "Total number of emails sent",
		},
		[]string{"status"}, // status: success, failed
	)
)

func RecordHTTPRequestDuration(method, path, status string, duration time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

func RecordDBQueryDuration(operation, table string, duration time.Duration) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
}

func RecordTaskConsumeLatency(routingKey, queue string, duration time.Duration) {
	TaskConsumeLatency.WithLabelValues(routingKey, queue).Observe(float64(duration.Milliseconds()))
}

func IncrementTaskProcessed(taskType, status string) {
	TaskProcessedCount.WithLabelValues(taskType, status).Inc()
}

func IncrementUserRegistered() {
	UserRegisteredCount.Inc()
}

func IncrementEmailSent(status string) {
	EmailSentCount.WithLabelValues(status).Inc()
}
