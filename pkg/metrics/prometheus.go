package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// DefaultNamespace prefixes every metric name.
const DefaultNamespace = "sensorsim"

// connectionStates are the values of the connection_state gauge's state label.
var connectionStates = []string{"DISCONNECTED", "CONNECTING", "CONNECTED", "RECONNECTING", "CLOSED"}

// PrometheusCollector implements Collector backed by Prometheus.
// Metrics are registered lazily on first use.
type PrometheusCollector struct {
	reg       prometheus.Registerer
	namespace string
	once      sync.Once

	ticks           *prometheus.CounterVec
	publishes       *prometheus.CounterVec
	publishLatency  *prometheus.HistogramVec
	skipped         *prometheus.CounterVec
	connectionState *prometheus.GaugeVec
	reconnects      *prometheus.CounterVec
	reconnectDelay  prometheus.Histogram
	activeLoops     prometheus.Gauge
}

// Compile-time assertion that PrometheusCollector implements Collector.
var _ Collector = (*PrometheusCollector)(nil)

// NewPrometheus creates a Prometheus-backed collector.
// A nil reg uses prometheus.DefaultRegisterer; an empty namespace uses
// DefaultNamespace.
func NewPrometheus(reg prometheus.Registerer, namespace string) *PrometheusCollector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if namespace == "" {
		namespace = DefaultNamespace
	}
	return &PrometheusCollector{reg: reg, namespace: namespace}
}

func (p *PrometheusCollector) ensureRegistered() {
	p.once.Do(func() {
		p.ticks = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "loop",
			Name:      "ticks_total",
			Help:      "Completed simulation ticks by asset.",
		}, []string{"asset"})

		p.publishes = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "publish",
			Name:      "messages_total",
			Help:      "Publish attempts by asset, sensor and result (delivered, failed).",
		}, []string{"asset", "sensor", "result"})

		p.publishLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: p.namespace,
			Subsystem: "publish",
			Name:      "latency_seconds",
			Help:      "Time from hand-off to broker acknowledgement in seconds.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 14), // 1ms .. ~8s
		}, []string{"asset"})

		p.skipped = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "loop",
			Name:      "skipped_sensors_total",
			Help:      "Sensors that produced no value, by asset and sensor.",
		}, []string{"asset", "sensor"})

		p.connectionState = prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: p.namespace,
			Subsystem: "bus",
			Name:      "connection_state",
			Help:      "1 for the current bus session state of each asset, 0 otherwise.",
		}, []string{"asset", "state"})

		p.reconnects = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "bus",
			Name:      "reconnect_attempts_total",
			Help:      "Scheduled reconnect attempts by asset.",
		}, []string{"asset"})

		p.reconnectDelay = prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: p.namespace,
			Subsystem: "bus",
			Name:      "reconnect_delay_seconds",
			Help:      "Backoff delay before reconnect attempts in seconds.",
			Buckets:   []float64{0.5, 1, 2, 4, 8, 16, 32, 64, 80},
		})

		p.activeLoops = prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: p.namespace,
			Subsystem: "fleet",
			Name:      "active_loops",
			Help:      "Number of running asset loops.",
		})

		p.reg.MustRegister(p.ticks)
		p.reg.MustRegister(p.publishes)
		p.reg.MustRegister(p.publishLatency)
		p.reg.MustRegister(p.skipped)
		p.reg.MustRegister(p.connectionState)
		p.reg.MustRegister(p.reconnects)
		p.reg.MustRegister(p.reconnectDelay)
		p.reg.MustRegister(p.activeLoops)
	})
}

// RecordTick increments the tick counter.
func (p *PrometheusCollector) RecordTick(asset string) {
	p.ensureRegistered()
	p.ticks.WithLabelValues(asset).Inc()
}

// RecordPublish counts the attempt by result and observes its latency.
func (p *PrometheusCollector) RecordPublish(asset, sensor string, err error, latency time.Duration) {
	p.ensureRegistered()
	result := "delivered"
	if err != nil {
		result = "failed"
	}
	p.publishes.WithLabelValues(asset, sensor, result).Inc()
	p.publishLatency.WithLabelValues(asset).Observe(latency.Seconds())
}

// RecordSkipped increments the skipped sensor counter.
func (p *PrometheusCollector) RecordSkipped(asset, sensor string) {
	p.ensureRegistered()
	p.skipped.WithLabelValues(asset, sensor).Inc()
}

// RecordConnectionState sets state to 1 and every other state to 0.
func (p *PrometheusCollector) RecordConnectionState(asset, state string) {
	p.ensureRegistered()
	for _, s := range connectionStates {
		v := 0.0
		if s == state {
			v = 1
		}
		p.connectionState.WithLabelValues(asset, s).Set(v)
	}
}

// RecordReconnectAttempt counts the attempt and observes the delay.
func (p *PrometheusCollector) RecordReconnectAttempt(asset string, delay time.Duration) {
	p.ensureRegistered()
	p.reconnects.WithLabelValues(asset).Inc()
	p.reconnectDelay.Observe(delay.Seconds())
}

// SetActiveLoops sets the active loop gauge.
func (p *PrometheusCollector) SetActiveLoops(n int) {
	p.ensureRegistered()
	p.activeLoops.Set(float64(n))
}
