// Package metrics exposes Prometheus metrics for the RSI monitor.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the monitor.
type Metrics struct {
	registry *prometheus.Registry

	TicksTotal       prometheus.Counter
	TickFailures     *prometheus.CounterVec // labels: reason
	AlertsTotal      *prometheus.CounterVec // labels: kind
	DeliveryFailures prometheus.Counter
	TickDuration     prometheus.Histogram
	FetchDuration    prometheus.Histogram

	RSI        prometheus.Gauge
	LatchArmed *prometheus.GaugeVec // labels: latch=overbought|oversold
}

// NewMetrics creates the metrics on a private registry, together with
// the Go runtime and process collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		TicksTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rsi_ticks_total",
			Help: "Total scheduled evaluations",
		}),
		TickFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rsi_tick_failures_total",
			Help: "Evaluations skipped, by reason",
		}, []string{"reason"}),
		AlertsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rsi_alerts_total",
			Help: "Alerts emitted, by kind",
		}, []string{"kind"}),
		DeliveryFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rsi_alert_delivery_failures_total",
			Help: "Alerts that could not be delivered",
		}),
		TickDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "rsi_tick_duration_seconds",
			Help:    "Wall time of one evaluation including fetch and delivery",
			Buckets: prometheus.DefBuckets,
		}),
		FetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "rsi_fetch_duration_seconds",
			Help:    "Wall time of the candle fetch",
			Buckets: prometheus.DefBuckets,
		}),
		RSI: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "rsi_value",
			Help: "Most recent defined RSI reading",
		}),
		LatchArmed: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "rsi_latch_armed",
			Help: "1 while the alert latch is armed",
		}, []string{"latch"}),
	}

	m.registry.MustRegister(
		m.TicksTotal,
		m.TickFailures,
		m.AlertsTotal,
		m.DeliveryFailures,
		m.TickDuration,
		m.FetchDuration,
		m.RSI,
		m.LatchArmed,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry returns the registry the metrics are registered on.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// SetLatches mirrors the latch state into the armed gauges.
func (m *Metrics) SetLatches(overbought, oversold bool) {
	m.LatchArmed.WithLabelValues("overbought").Set(b2f(overbought))
	m.LatchArmed.WithLabelValues("oversold").Set(b2f(oversold))
}

func b2f(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
