package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrorRate counts Redis errors by operation type.
	RedisErrorRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "strive_redis_error_rate_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "strive_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// VotesCast counts verification votes by subject kind and vote outcome.
	VotesCast = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "strive_votes_cast_total",
		Help: "Total verification votes cast by subject kind and vote",
	}, []string{"kind", "vote"})

	// SubmissionsResolved counts approval subjects reaching a terminal status.
	SubmissionsResolved = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "strive_submissions_resolved_total",
		Help: "Total submissions resolved by subject kind and final status",
	}, []string{"kind", "status"})

	// MilestonesSwept counts milestones marked failed by the deadline sweep.
	MilestonesSwept = promauto.NewCounter(prometheus.CounterOpts{
		Name: "strive_milestones_swept_total",
		Help: "Total milestones failed by the deadline sweep",
	})

	// NotificationsPublished counts notifications published by kind.
	NotificationsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "strive_notifications_published_total",
		Help: "Total notifications published by kind",
	}, []string{"kind"})

	// WebSocketConnections is the gauge of active notification stream connections.
	WebSocketConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "strive_websocket_connections",
		Help: "Number of active WebSocket notification connections",
	})
)

// TrackQuery returns a function that records query latency when called (e.g. defer).
func TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
	}
}
