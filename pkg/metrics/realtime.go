package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// RealtimeMetrics tracks live sync subscribers and event fan-out.
type RealtimeMetrics struct {
	subscribers prometheus.Gauge
	delivered   *prometheus.CounterVec
	dropped     *prometheus.CounterVec
}

// NewRealtimeMetrics registers the realtime hub metrics on the provided registerer.
func NewRealtimeMetrics(reg prometheus.Registerer) *RealtimeMetrics {
	if reg == nil {
		return &RealtimeMetrics{}
	}
	subscribers := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "realtime_subscribers",
		Help: "Open realtime subscriptions.",
	})
	delivered := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "realtime_events_delivered_total",
		Help: "Events delivered to subscribers by table.",
	}, []string{"table"})
	dropped := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "realtime_events_dropped_total",
		Help: "Events dropped because a subscriber was too slow.",
	}, []string{"table"})
	reg.MustRegister(subscribers, delivered, dropped)
	return &RealtimeMetrics{
		subscribers: subscribers,
		delivered:   delivered,
		dropped:     dropped,
	}
}

// IncSubscribers records a new subscription.
func (m *RealtimeMetrics) IncSubscribers() {
	if m == nil || m.subscribers == nil {
		return
	}
	m.subscribers.Inc()
}

// DecSubscribers records a closed subscription.
func (m *RealtimeMetrics) DecSubscribers() {
	if m == nil || m.subscribers == nil {
		return
	}
	m.subscribers.Dec()
}

// IncDelivered counts one event delivered for the given table.
func (m *RealtimeMetrics) IncDelivered(table string) {
	if m == nil || m.delivered == nil {
		return
	}
	m.delivered.WithLabelValues(normalizeLabel(table)).Inc()
}

// IncDropped counts one event dropped for the given table.
func (m *RealtimeMetrics) IncDropped(table string) {
	if m == nil || m.dropped == nil {
		return
	}
	m.dropped.WithLabelValues(normalizeLabel(table)).Inc()
}
