package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector exposes gateway and auth metrics. A nil Collector is safe
// to call; every method no-ops, which keeps tests and trimmed-down
// deployments from having to wire a registry.
type Collector struct {
	connectionsActive prometheus.Gauge
	connectionsTotal  prometheus.Counter
	authFailures      *prometheus.CounterVec

	roomMembers  *prometheus.GaugeVec
	chatMessages *prometheus.CounterVec
	tipBroadcast *prometheus.CounterVec
}

// NewCollector registers the metric set against reg. Pass
// prometheus.DefaultRegisterer in production and a fresh registry in
// tests.
func NewCollector(reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)

	return &Collector{
		connectionsActive: factory.NewGauge(prometheus.GaugeOpts{
			Name: "camlive_connections_active",
			Help: "Number of currently connected websocket clients",
		}),
		connectionsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "camlive_connections_total",
			Help: "Total number of accepted websocket connections",
		}),
		authFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "camlive_auth_failures_total",
			Help: "Authentication failures by reason",
		}, []string{"reason"}),
		roomMembers: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "camlive_room_members",
			Help: "Number of members currently in each room",
		}, []string{"room_id"}),
		chatMessages: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "camlive_chat_messages_total",
			Help: "Chat messages broadcast per room",
		}, []string{"room_id"}),
		tipBroadcast: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "camlive_tips_broadcast_total",
			Help: "Tip announcements broadcast per room",
		}, []string{"room_id"}),
	}
}

func (c *Collector) ConnectionOpened() {
	if c == nil {
		return
	}
	c.connectionsActive.Inc()
	c.connectionsTotal.Inc()
}

func (c *Collector) ConnectionClosed() {
	if c == nil {
		return
	}
	c.connectionsActive.Dec()
}

func (c *Collector) AuthFailure(reason string) {
	if c == nil {
		return
	}
	c.authFailures.WithLabelValues(reason).Inc()
}

func (c *Collector) RoomJoined(roomID string) {
	if c == nil {
		return
	}
	c.roomMembers.WithLabelValues(roomID).Inc()
}

func (c *Collector) RoomLeft(roomID string) {
	if c == nil {
		return
	}
	c.roomMembers.WithLabelValues(roomID).Dec()
}

func (c *Collector) ChatMessageSent(roomID string) {
	if c == nil {
		return
	}
	c.chatMessages.WithLabelValues(roomID).Inc()
}

func (c *Collector) TipBroadcast(roomID string) {
	if c == nil {
		return
	}
	c.tipBroadcast.WithLabelValues(roomID).Inc()
}
