package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const metricsNamespace = "cableclub"

// Metrics are the server's Prometheus collectors, registered on a private
// registry so several servers can coexist in one process.
type Metrics struct {
	registry *prometheus.Registry

	ConnectionsActive prometheus.Gauge
	ConnectionsTotal  prometheus.Counter
	Matches           prometheus.Counter
	Disconnects       *prometheus.CounterVec
	AcceptsThrottled  prometheus.Counter
	RuleReloads       prometheus.Counter
	RulesLoaded       prometheus.Gauge
}

// NewMetrics creates and registers every collector.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		ConnectionsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "connections_active",
			Help:      "Clients currently connected.",
		}),
		ConnectionsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "connections_total",
			Help:      "Clients accepted since start.",
		}),
		Matches: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "matches_total",
			Help:      "Pairs of clients matched.",
		}),
		Disconnects: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "disconnects_total",
			Help:      "Sessions ended, by cause.",
		}, []string{"code"}),
		AcceptsThrottled: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "accepts_throttled_total",
			Help:      "Connections refused by the accept rate limit.",
		}),
		RuleReloads: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "rule_reloads_total",
			Help:      "Times the rules directory was reloaded.",
		}),
		RulesLoaded: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "rules_loaded",
			Help:      "Rules in the active snapshot.",
		}),
	}
	m.registry.MustRegister(
		m.ConnectionsActive,
		m.ConnectionsTotal,
		m.Matches,
		m.Disconnects,
		m.AcceptsThrottled,
		m.RuleReloads,
		m.RulesLoaded,
		collectors.NewGoCollector(),
	)
	return m
}

// Registry exposes the registry for tests and extra collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
