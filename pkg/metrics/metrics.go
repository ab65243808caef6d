package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestLatency records HTTP request latency by method, route and status.
	RequestLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "parley_http_request_duration_seconds",
		Help:    "HTTP request latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})

	// MessagesSent counts accepted messages by type, system messages included.
	MessagesSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "parley_messages_sent_total",
		Help: "Total number of messages stored",
	}, []string{"type"})

	// ReactionsToggled counts reaction toggles by direction.
	ReactionsToggled = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "parley_reactions_toggled_total",
		Help: "Total number of reaction toggles",
	}, []string{"direction"})

	// ConversationsCreated counts createOrGet results by kind (direct, group, reused).
	ConversationsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "parley_conversations_created_total",
		Help: "Total number of conversations created or reused",
	}, []string{"kind"})

	// ConversationsDeleted counts completed cascade deletes.
	ConversationsDeleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "parley_conversations_deleted_total",
		Help: "Total number of conversations deleted with their dependents",
	})

	// StoreErrors counts database and redis failures by operation.
	StoreErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "parley_store_errors_total",
		Help: "Total number of store failures by operation",
	}, []string{"operation"})
)

// Reaction directions
const (
	DirectionAdded   = "added"
	DirectionRemoved = "removed"
)

// Conversation kinds
const (
	KindDirect = "direct"
	KindGroup  = "group"
	KindReused = "reused"
)

// ObserveRequest records the latency of a finished request.
func ObserveRequest(method, route, status string, start time.Time) {
	RequestLatency.WithLabelValues(method, route, status).Observe(time.Since(start).Seconds())
}
