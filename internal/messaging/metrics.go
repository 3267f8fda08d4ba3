package messaging

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	messagesSent = promauto.NewCounter(prometheus.CounterOpts{
		Name: "messaging_messages_sent_total",
		Help: "Messages accepted for delivery",
	})

	activeConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "messaging_websocket_connections",
		Help: "Currently connected websocket clients",
	})

	eventsDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "messaging_events_dropped_total",
		Help: "Realtime events dropped because a client queue was full",
	})
)
