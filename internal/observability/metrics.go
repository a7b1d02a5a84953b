// Package observability exposes Prometheus instrumentation for the bot:
// stream events, per-destination delivery outcomes, command handling, and
// counter-flush cycles. Label cardinality is kept bounded: source ids are
// per-followed-account (a moderated, small set) and command names come from
// the fixed handler table.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// feedEvents counts stream events that reached the router with at
	// least one subscribed destination.
	feedEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feed_events_total",
			Help: "Total number of stream events dispatched.",
		},
		[]string{"source"},
	)

	// feedDeliveries counts per-destination delivery attempts by outcome.
	feedDeliveries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feed_deliveries_total",
			Help: "Total number of per-destination deliveries.",
		},
		[]string{"outcome"},
	)

	// botCommands counts handled chat commands by name and outcome.
	botCommands = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_commands_total",
			Help: "Total number of chat commands handled.",
		},
		[]string{"command", "outcome"},
	)

	// counterFlushes counts background counter-flush cycles by outcome.
	counterFlushes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "counter_flushes_total",
			Help: "Total number of background counter flush cycles.",
		},
		[]string{"outcome"},
	)
)

func init() {
	prometheus.MustRegister(feedEvents, feedDeliveries, botCommands, counterFlushes)
}

// ObserveEvent records one dispatched stream event.
func ObserveEvent(sourceID string) {
	feedEvents.WithLabelValues(sourceID).Inc()
}

// ObserveDelivery records one per-destination delivery attempt.
func ObserveDelivery(ok bool) {
	feedDeliveries.WithLabelValues(outcome(ok)).Inc()
}

// ObserveCommand records one handled chat command.
func ObserveCommand(command string, ok bool) {
	botCommands.WithLabelValues(command, outcome(ok)).Inc()
}

// ObserveFlush records one counter flush cycle.
func ObserveFlush(ok bool) {
	counterFlushes.WithLabelValues(outcome(ok)).Inc()
}

func outcome(ok bool) string {
	if ok {
		return "ok"
	}
	return "error"
}
