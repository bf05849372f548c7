package registry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/webitel/live-relay-service/internal/domain/event"
)

// Metrics exposes hub activity to Prometheus. A nil *Metrics is a valid no-op.
type Metrics struct {
	ingested    *prometheus.CounterVec
	delivered   prometheus.Counter
	dropped     prometheus.Counter
	subscribers prometheus.Gauge
	buffered    prometheus.Gauge
	upstream    prometheus.Gauge
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		ingested: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "live_relay",
			Subsystem: "hub",
			Name:      "events_ingested_total",
			Help:      "Events accepted from the upstream, by kind.",
		}, []string{"kind"}),
		delivered: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "live_relay",
			Subsystem: "hub",
			Name:      "deliveries_total",
			Help:      "Successful sends to subscribers, replay included.",
		}),
		dropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "live_relay",
			Subsystem: "hub",
			Name:      "subscribers_dropped_total",
			Help:      "Subscribers removed after a failed send.",
		}),
		subscribers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "live_relay",
			Subsystem: "hub",
			Name:      "subscribers",
			Help:      "Currently attached subscribers.",
		}),
		buffered: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "live_relay",
			Subsystem: "hub",
			Name:      "buffered_events",
			Help:      "Events held in the replay buffer.",
		}),
		upstream: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "live_relay",
			Subsystem: "upstream",
			Name:      "connected",
			Help:      "1 while the upstream live session is connected.",
		}),
	}

	reg.MustRegister(m.ingested, m.delivered, m.dropped, m.subscribers, m.buffered, m.upstream)
	return m
}

func (m *Metrics) observeIngest(kind event.EventKind, buffered int) {
	if m == nil {
		return
	}
	m.ingested.WithLabelValues(kind.String()).Inc()
	m.buffered.Set(float64(buffered))
}

func (m *Metrics) observeDelivered() {
	if m == nil {
		return
	}
	m.delivered.Inc()
}

func (m *Metrics) observeDropped(n int) {
	if m == nil || n == 0 {
		return
	}
	m.dropped.Add(float64(n))
}

func (m *Metrics) setSubscribers(n int) {
	if m == nil {
		return
	}
	m.subscribers.Set(float64(n))
}

func (m *Metrics) setUpstream(connected bool) {
	if m == nil {
		return
	}
	if connected {
		m.upstream.Set(1)
		return
	}
	m.upstream.Set(0)
}
