// Package pmetrics provides Prometheus metrics for the player coordinator.
package pmetrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// StateTransitionsTotal counts playback-state transitions by edge.
	StateTransitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "playercore_state_transitions_total",
		Help: "Total number of playback state transitions, by from/to state.",
	}, []string{"from", "to"})

	// PendingOperationAcks tracks the current value of pendingOperationAcks.
	PendingOperationAcks = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "playercore_pending_operation_acks",
		Help: "Current number of application-thread operations awaiting an ack from the playback thread.",
	})

	// DiscontinuitiesTotal counts position discontinuities by reason.
	DiscontinuitiesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "playercore_discontinuities_total",
		Help: "Total number of position discontinuities, by reason.",
	}, []string{"reason"})

	// DroppedCommandsTotal counts commands dropped by the command/ack bus.
	DroppedCommandsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "playercore_dropped_commands_total",
		Help: "Total number of commands or updates dropped by the coordinator bus, by reason.",
	}, []string{"reason"})

	// ListenerNotifyDuration observes how long one drained listener
	// notification pass takes.
	ListenerNotifyDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "playercore_listener_notify_seconds",
		Help:    "Duration of one listener notification drain pass.",
		Buckets: prometheus.DefBuckets,
	})

	// ListenerQueueDepth tracks the current depth of the re-entrant
	// notification deque.
	ListenerQueueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "playercore_listener_queue_depth",
		Help: "Current depth of the pending listener-notification deque.",
	})

	// PlayerMessagesDelivered counts delivered PlayerMessages by target
	// position kind (immediate vs positioned).
	PlayerMessagesDelivered = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "playercore_player_messages_delivered_total",
		Help: "Total number of PlayerMessage deliveries, by position kind.",
	}, []string{"kind"})
)

// RecordTransition increments the state-transition counter.
func RecordTransition(from, to string) {
	StateTransitionsTotal.WithLabelValues(from, to).Inc()
}

// RecordDiscontinuity increments the discontinuity counter.
func RecordDiscontinuity(reason string) {
	DiscontinuitiesTotal.WithLabelValues(reason).Inc()
}

// RecordDroppedCommand increments the dropped-command counter.
func RecordDroppedCommand(reason string) {
	DroppedCommandsTotal.WithLabelValues(reason).Inc()
}
