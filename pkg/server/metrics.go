package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// metrics holds the server's Prometheus collectors.
type metrics struct {
	activeSessions  prometheus.Gauge
	sessionsTotal   prometheus.Counter
	handshakeErrors *prometheus.CounterVec
	eventsTotal     *prometheus.CounterVec
	eventDuration   *prometheus.HistogramVec
	commandsTotal   *prometheus.CounterVec
	notifications   *prometheus.CounterVec
}

func newMetrics(registry prometheus.Registerer) *metrics {
	factory := promauto.With(registry)
	const namespace = "lokation"

	return &metrics{
		activeSessions: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_sessions",
			Help:      "Number of connected browser sessions",
		}),

		sessionsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_total",
			Help:      "Total number of sessions accepted",
		}),

		handshakeErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "handshake_errors_total",
			Help:      "Total WebSocket handshake failures by reason",
		}, []string{"reason"}),

		eventsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_total",
			Help:      "Total browser navigation events received by kind",
		}, []string{"kind"}),

		eventDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "event_duration_seconds",
			Help:      "Time spent delivering a browser event to listeners and subscribers",
			Buckets:   []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1},
		}, []string{"kind"}),

		commandsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commands_total",
			Help:      "Total navigation commands sent by op",
		}, []string{"op"}),

		notifications: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_total",
			Help:      "Total location change notifications delivered by mode",
		}, []string{"mode"}),
	}
}
