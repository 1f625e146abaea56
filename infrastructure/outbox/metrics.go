package outbox

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics are the dispatcher's Prometheus collectors. A nil *Metrics is a no-op.
type Metrics struct {
	delivered *prometheus.CounterVec
	failed    *prometheus.CounterVec
	latency   prometheus.Histogram
	pending   prometheus.Gauge
	purged    prometheus.Counter
}

// NewMetrics registers the collectors on reg. Pass prometheus.DefaultRegisterer
// in processes and prometheus.NewRegistry() in tests.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		delivered: f.NewCounterVec(prometheus.CounterOpts{
			Name: "outbox_messages_delivered_total",
			Help: "Outbox messages handled and marked delivered.",
		}, []string{"type"}),
		failed: f.NewCounterVec(prometheus.CounterOpts{
			Name: "outbox_messages_failed_total",
			Help: "Outbox delivery attempts that failed.",
		}, []string{"type"}),
		latency: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "outbox_delivery_lag_seconds",
			Help:    "Time between an outbox message being written and being delivered.",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 12),
		}),
		pending: f.NewGauge(prometheus.GaugeOpts{
			Name: "outbox_pending_messages",
			Help: "Outbox messages waiting for delivery.",
		}),
		purged: f.NewCounter(prometheus.CounterOpts{
			Name: "outbox_messages_purged_total",
			Help: "Delivered outbox messages removed by retention.",
		}),
	}
}

func (m *Metrics) observeDelivered(msg Message, lagSeconds float64) {
	if m == nil {
		return
	}
	m.delivered.WithLabelValues(string(msg.Type)).Inc()
	if lagSeconds >= 0 {
		m.latency.Observe(lagSeconds)
	}
}

func (m *Metrics) observeFailed(msg Message) {
	if m == nil {
		return
	}
	m.failed.WithLabelValues(string(msg.Type)).Inc()
}

func (m *Metrics) setPending(n int64) {
	if m == nil {
		return
	}
	m.pending.Set(float64(n))
}

func (m *Metrics) addPurged(n int64) {
	if m == nil || n <= 0 {
		return
	}
	m.purged.Add(float64(n))
}
