package main

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "publish_scheduler"

// Metrics holds the Prometheus collectors of the service.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	uploadsTotal     *prometheus.CounterVec
	triggersTotal    *prometheus.CounterVec
	pendingCallbacks prometheus.Gauge
}

// NewMetrics registers the collectors with registry.
func NewMetrics(registry prometheus.Registerer) *Metrics {
	factory := promauto.With(registry)

	return &Metrics{
		uploadsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "uploads_total",
			Help:      "Upload requests by result",
		}, []string{"result"}),

		triggersTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "triggers_total",
			Help:      "Publish trigger invocations by result",
		}, []string{"result"}),

		pendingCallbacks: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "pending_callbacks",
			Help:      "Scheduled publish callbacks that have not fired yet",
		}),
	}
}

func (m *Metrics) upload(result string) {
	if m == nil {
		return
	}
	m.uploadsTotal.WithLabelValues(result).Inc()
}

func (m *Metrics) trigger(result string) {
	if m == nil {
		return
	}
	m.triggersTotal.WithLabelValues(result).Inc()
}

func (m *Metrics) pending(delta float64) {
	if m == nil {
		return
	}
	m.pendingCallbacks.Add(delta)
}
