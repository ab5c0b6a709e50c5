package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	StatusOK    = "ok"
	StatusError = "error"
)

var (
	// HTTPRequestsTotal counts requests by method, route template and status code.
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests processed",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	HTTPInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_inflight_requests",
			Help: "Number of HTTP requests currently being served",
		},
	)

	StorageOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "storage_operation_duration_seconds",
			Help:    "Storage operation duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "status"},
	)

	CacheRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "list_cache_requests_total",
			Help: "List cache lookups by result",
		},
		[]string{"result"},
	)

	EventPublishTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "event_publish_total",
			Help: "Total number of event publish operations",
		},
		[]string{"event_type", "status"},
	)
)

// ObserveStorage records the duration of one storage operation started at start.
func ObserveStorage(operation string, start time.Time, err error) {
	StorageOperationDuration.
		WithLabelValues(operation, statusLabel(err)).
		Observe(time.Since(start).Seconds())
}

// CacheHit and CacheMiss count list cache lookups.
func CacheHit()  { CacheRequestsTotal.WithLabelValues("hit").Inc() }
func CacheMiss() { CacheRequestsTotal.WithLabelValues("miss").Inc() }

// ObservePublish counts one event publish attempt.
func ObservePublish(eventType string, err error) {
	EventPublishTotal.WithLabelValues(eventType, statusLabel(err)).Inc()
}

func statusLabel(err error) string {
	if err != nil {
		return StatusError
	}
	return StatusOK
}
