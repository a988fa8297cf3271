package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrorRate counts Redis errors by operation type.
	RedisErrorRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pulse_redis_error_rate_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// CacheLookups counts cache-aside lookups by key family and result.
	CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pulse_cache_lookups_total",
		Help: "Cache-aside lookups by key family and result (hit, miss)",
	}, []string{"family", "result"})

	// EngineOperationLatency records engine operation latency by operation and outcome code.
	EngineOperationLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "pulse_engine_operation_latency_seconds",
		Help:    "Engine operation latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "outcome"})

	// EngineConflicts counts uniqueness races lost by a caller.
	EngineConflicts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pulse_engine_conflicts_total",
		Help: "Engine operations rejected with a conflict",
	}, []string{"operation"})

	// EngineTransientFailures counts store failures a caller may retry.
	EngineTransientFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pulse_engine_transient_failures_total",
		Help: "Engine operations that failed with a transient store error",
	}, []string{"operation"})

	// NotificationsEmitted counts notification records written, by type.
	NotificationsEmitted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pulse_notifications_emitted_total",
		Help: "Notification records created by type",
	}, []string{"type"})
)

// ObserveOperation records latency for an engine operation. outcome is "ok"
// or the failure code.
func ObserveOperation(operation, outcome string, start time.Time) {
	EngineOperationLatency.WithLabelValues(operation, outcome).Observe(time.Since(start).Seconds())
}
