package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus instruments for the exchange core.
type Metrics struct {
	SwapRequestsCreated  prometheus.Counter
	SwapRequestsResolved *prometheus.CounterVec // outcome: accepted|rejected|deleted
	MessagesSent         prometheus.Counter
	EventsPublished      *prometheus.CounterVec // event name
	EventsDropped        *prometheus.CounterVec // event name, recipient had no live channel
	LiveConnections      prometheus.Gauge
}

// New creates and registers all instruments on reg. Tests pass a private
// registry so suites don't collide on the default one.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		SwapRequestsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "skillswap_swap_requests_created_total",
			Help: "Total number of swap requests created.",
		}),
		SwapRequestsResolved: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "skillswap_swap_requests_resolved_total",
			Help: "Total number of swap requests leaving the Pending state.",
		}, []string{"outcome"}),
		MessagesSent: factory.NewCounter(prometheus.CounterOpts{
			Name: "skillswap_messages_sent_total",
			Help: "Total number of direct messages persisted.",
		}),
		EventsPublished: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "skillswap_events_published_total",
			Help: "Total number of events delivered to at least one live channel.",
		}, []string{"event"}),
		EventsDropped: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "skillswap_events_dropped_total",
			Help: "Total number of events dropped because the recipient had no live channel.",
		}, []string{"event"}),
		LiveConnections: factory.NewGauge(prometheus.GaugeOpts{
			Name: "skillswap_live_connections",
			Help: "Number of websocket channels currently registered.",
		}),
	}
}
