package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// Business metrics
	SessionsStartedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "parking_sessions_started_total",
			Help: "Total number of parking meters started",
		},
		[]string{"tier"},
	)

	SessionsStoppedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "parking_sessions_stopped_total",
			Help: "Total number of parking meters stopped",
		},
		[]string{"tier"},
	)

	FeesChargedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "parking_fees_charged_total",
			Help: "Sum of fees computed on stop, by currency label",
		},
		[]string{"currency"},
	)

	DayRecomputeTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "parking_day_recompute_total",
			Help: "Total number of day profit recomputations",
		},
		[]string{"status"},
	)

	LockContentionTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "parking_lock_contention_total",
			Help: "Lock acquisition attempts that found the lock already held",
		},
		[]string{"resource"},
	)
)

// RecordHTTPMetrics records HTTP request metrics
func RecordHTTPMetrics(method, path string, statusCode int, duration time.Duration) {
	HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(statusCode)).Inc()
	HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordDayRecompute records the outcome of a day profit recomputation
func RecordDayRecompute(err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	DayRecomputeTotal.WithLabelValues(status).Inc()
}
