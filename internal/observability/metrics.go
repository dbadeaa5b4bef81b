package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ConnectAttemptsTotal counts websocket connection attempts by result.
	ConnectAttemptsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ripple_connect_attempts_total",
		Help: "Total number of realtime connection attempts by result",
	}, []string{"result"})

	// ReconnectsTotal counts automatic reconnection attempts.
	ReconnectsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ripple_reconnects_total",
		Help: "Total number of automatic reconnection attempts",
	})

	// ConnectionState is 1 when the realtime connection is live, 0 otherwise.
	ConnectionState = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "ripple_connection_up",
		Help: "Whether the realtime connection is currently established",
	})

	// EventsTotal counts realtime events by direction and type.
	EventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ripple_realtime_events_total",
		Help: "Total realtime events by direction and event type",
	}, []string{"direction", "event_type"})

	// DroppedEmitsTotal counts emits attempted while disconnected.
	DroppedEmitsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ripple_dropped_emits_total",
		Help: "Total emits dropped because no connection was live",
	}, []string{"event_type"})

	// OptimisticRollbacksTotal counts optimistic mutations that were rolled back.
	OptimisticRollbacksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ripple_optimistic_rollbacks_total",
		Help: "Total optimistic mutations rolled back after a failed confirmation",
	}, []string{"mutation"})

	// APIRequestLatency records REST call latency by method and path.
	APIRequestLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ripple_api_request_latency_seconds",
		Help:    "REST request latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})

	// StaleResponsesTotal counts fetch responses discarded for arriving after
	// a newer request generation.
	StaleResponsesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ripple_stale_responses_total",
		Help: "Total fetch responses discarded as stale",
	})
)

// RoomMetrics tracks joined room counts on the client connection.
type RoomMetrics struct {
	joined map[string]int
}

// NewRoomMetrics returns a new RoomMetrics instance.
func NewRoomMetrics() *RoomMetrics {
	return &RoomMetrics{joined: make(map[string]int)}
}

// IncrementRoom records one more active mount for the room.
func (m *RoomMetrics) IncrementRoom(roomID string) {
	m.joined[roomID]++
}

// DecrementRoom records one fewer active mount for the room.
func (m *RoomMetrics) DecrementRoom(roomID string) {
	if m.joined[roomID] > 0 {
		m.joined[roomID]--
	}
}

// GetRoomCount returns the current mount count for the room.
func (m *RoomMetrics) GetRoomCount(roomID string) int {
	return m.joined[roomID]
}
