// Package metrics provides Prometheus metrics for the order bot.
// Labels stay low-cardinality: no customer ids or message ids.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// InboundMessagesTotal counts webhook messages by outcome
	// (processed, duplicate, ignored).
	InboundMessagesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "orderbot_inbound_messages_total",
		Help: "Total number of inbound messages, by outcome.",
	}, []string{"outcome"})

	// DialogTurnsTotal counts processed turns by the step they started in.
	DialogTurnsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "orderbot_dialog_turns_total",
		Help: "Total number of dialog turns, by starting step.",
	}, []string{"step"})

	// OrderSubmissionsTotal counts sink submissions by result kind ("ok" on success).
	OrderSubmissionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "orderbot_order_submissions_total",
		Help: "Total number of order submissions, by result.",
	}, []string{"result"})

	// SessionsClosedTotal counts sessions ended, by reason
	// (confirmed, cancelled, expired).
	SessionsClosedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "orderbot_sessions_closed_total",
		Help: "Total number of closed sessions, by reason.",
	}, []string{"reason"})

	// OutboundFailuresTotal counts outbound messages the transport refused.
	OutboundFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "orderbot_outbound_failures_total",
		Help: "Total number of outbound messages that failed to send.",
	})

	// DedupPurgedTotal counts expired dedup entries removed by the purge job.
	DedupPurgedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "orderbot_dedup_purged_total",
		Help: "Total number of expired dedup entries purged.",
	})
)

// RegisterActiveSessions exposes the live session count through fn.
func RegisterActiveSessions(reg prometheus.Registerer, fn func() float64) error {
	return reg.Register(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "orderbot_active_sessions",
		Help: "Current number of in-progress dialog sessions.",
	}, fn))
}
