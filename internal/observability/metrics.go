package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Connection metrics
var (
	ConnectionsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "world_connections_total",
			Help: "Total number of client connections accepted",
		},
	)

	ConnectionsCurrent = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "world_connections_current",
			Help: "Current number of live client connections",
		},
	)

	AuthenticationAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "world_authentication_attempts_total",
			Help: "Total number of login attempts",
		},
		[]string{"result"},
	)
)

// Request dispatch metrics
var (
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "world_requests_total",
			Help: "Total number of named requests dispatched",
		},
		[]string{"event", "result"},
	)

	BroadcastsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "world_broadcasts_total",
			Help: "Total number of room broadcast messages sent",
		},
		[]string{"event"},
	)
)

// Presence metrics
var (
	RoomOccupancy = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "world_room_occupancy",
			Help: "Current number of occupants per room",
		},
		[]string{"room"},
	)

	HeartbeatPublishes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "world_heartbeat_publishes_total",
			Help: "Total number of server status publish cycles",
		},
		[]string{"result"},
	)
)
