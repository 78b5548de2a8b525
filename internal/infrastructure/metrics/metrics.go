package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the service's Prometheus collectors. A single instance is
// wired through the session coordinator and the HTTP layer.
type Metrics struct {
	ActiveRooms       prometheus.Gauge
	ActiveConnections prometheus.Gauge
	CommandsTotal     *prometheus.CounterVec
	CommandErrors     *prometheus.CounterVec
	BroadcastsTotal   prometheus.Counter
	EventsDelivered   prometheus.Counter
	DeliveryFailures  prometheus.Counter
	StaleSweeps       prometheus.Counter
}

func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		ActiveRooms: factory.NewGauge(prometheus.GaugeOpts{
			Name: "cineverse_active_rooms",
			Help: "Number of rooms currently held in the room store.",
		}),
		ActiveConnections: factory.NewGauge(prometheus.GaugeOpts{
			Name: "cineverse_active_connections",
			Help: "Number of registered live connections.",
		}),
		CommandsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "cineverse_commands_total",
			Help: "Session commands processed, by command type.",
		}, []string{"command"}),
		CommandErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "cineverse_command_errors_total",
			Help: "Session commands rejected, by command type.",
		}, []string{"command"}),
		BroadcastsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "cineverse_broadcasts_total",
			Help: "Room broadcasts fanned out.",
		}),
		EventsDelivered: factory.NewCounter(prometheus.CounterOpts{
			Name: "cineverse_events_delivered_total",
			Help: "Per-member event deliveries that succeeded.",
		}),
		DeliveryFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "cineverse_delivery_failures_total",
			Help: "Per-member event deliveries that were dropped or failed.",
		}),
		StaleSweeps: factory.NewCounter(prometheus.CounterOpts{
			Name: "cineverse_stale_connections_swept_total",
			Help: "Connections force-disconnected by the liveness sweep.",
		}),
	}
}

// NewDefault registers against the default global registry.
func NewDefault() *Metrics {
	return New(prometheus.DefaultRegisterer)
}
