package websocket

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ReconnectsTotal tracks reconnection attempts by venue.
	ReconnectsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "arbwatch_ws_reconnects_total",
		Help: "Total number of WebSocket reconnection attempts",
	}, []string{"venue"})

	// ConnectionStatus tracks current connection status by venue.
	ConnectionStatus = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "arbwatch_ws_connection_status",
		Help: "WebSocket connection status (1 = connected, 0 = disconnected)",
	}, []string{"venue"})

	// StallsTotal tracks read-deadline expirations by venue. A stall forces a
	// reconnect, same as a close; the counter only exists for observability.
	StallsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "arbwatch_ws_stalls_total",
		Help: "Total number of read stalls (no frames within the read deadline)",
	}, []string{"venue"})

	// FramesDroppedTotal tracks inbound frames dropped by venue and reason.
	FramesDroppedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "arbwatch_ws_frames_dropped_total",
		Help: "Total number of inbound frames dropped",
	}, []string{"venue", "reason"})

	// PriceUpdatesTotal tracks price updates applied to the books by venue.
	PriceUpdatesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "arbwatch_price_updates_total",
		Help: "Total number of price updates applied",
	}, []string{"venue"})
)

// SetConnectionStatus sets the connection gauge for a venue.
func SetConnectionStatus(venue string, connected bool) {
	val := 0.0
	if connected {
		val = 1.0
	}
	ConnectionStatus.WithLabelValues(venue).Set(val)
}
