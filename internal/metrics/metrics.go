// Package metrics exposes Prometheus instrumentation for the polling
// service. All collectors register on the default registerer; serve them
// with promhttp.Handler().
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "livepoll"

var (
	commandsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "commands_total",
		Help:      "Inbound session commands by type",
	}, []string{"type"})

	broadcastsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "broadcast_events_total",
		Help:      "Outbound broadcast events by type",
	}, []string{"type"})

	connectedClients = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "connected_clients",
		Help:      "Connections currently attached to the broadcast gateway",
	})

	activeQuestions = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "active_questions",
		Help:      "Questions currently accepting responses",
	})

	reconnectsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "reconnects_total",
		Help:      "Students rebound to a prior identity after reconnecting",
	})
)

func IncCommand(commandType string) {
	commandsTotal.WithLabelValues(commandType).Inc()
}

func IncBroadcast(eventType string) {
	broadcastsTotal.WithLabelValues(eventType).Inc()
}

func SetConnectedClients(n int) {
	connectedClients.Set(float64(n))
}

func SetActiveQuestions(n int) {
	activeQuestions.Set(float64(n))
}

func IncReconnect() {
	reconnectsTotal.Inc()
}
