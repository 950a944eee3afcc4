// Package metrics holds the process-wide prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ActiveConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "chatter",
		Name:      "active_connections",
		Help:      "Current number of live websocket connections",
	})

	RoomJoins = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "chatter",
		Name:      "room_joins_total",
		Help:      "Total number of accepted room joins",
	})

	RoomLeaves = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "chatter",
		Name:      "room_leaves_total",
		Help:      "Total number of room departures (rejoin elsewhere or disconnect)",
	})

	MessagesPersisted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "chatter",
		Name:      "messages_persisted_total",
		Help:      "Chat messages successfully written to the store",
	})

	MessagesDropped = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "chatter",
		Name:      "messages_dropped_total",
		Help:      "Chat messages dropped because persistence failed",
	})

	EventsDelivered = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "chatter",
		Name:      "events_delivered_total",
		Help:      "Outbound events handed to the transport, by event type",
	}, []string{"event"})
)
