// Package metrics holds the prometheus collectors the Connection Session
// and WebSocket Session increment, and exposes them for the GET /metrics
// endpoint via promhttp — the domain-stack addition exercised by scenario 8.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Registry bundles every collector httpwsd exports, registered against a
// dedicated prometheus.Registry rather than the global default so tests can
// build a fresh one per case.
type Registry struct {
	Reg *prometheus.Registry

	ConnectionsTotal  prometheus.Counter
	RequestsTotal     *prometheus.CounterVec
	WSUpgradesTotal   prometheus.Counter
	WSFramesByOpcode  *prometheus.CounterVec
	RequestDuration   prometheus.Histogram
}

// New builds and registers every collector.
func New() *Registry {
	reg := prometheus.NewRegistry()

	r := &Registry{
		Reg: reg,
		ConnectionsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "httpwsd_connections_total",
			Help: "Total TCP connections accepted.",
		}),
		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "httpwsd_requests_total",
			Help: "Total HTTP requests served, labeled by status class.",
		}, []string{"status_class"}),
		WSUpgradesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "httpwsd_ws_upgrades_total",
			Help: "Total connections upgraded to WebSocket.",
		}),
		WSFramesByOpcode: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "httpwsd_ws_frames_total",
			Help: "Total WebSocket frames received, labeled by opcode kind.",
		}, []string{"kind"}),
		RequestDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "httpwsd_request_duration_seconds",
			Help:    "HTTP request handling latency.",
			Buckets: prometheus.DefBuckets,
		}),
	}

	reg.MustRegister(
		r.ConnectionsTotal,
		r.RequestsTotal,
		r.WSUpgradesTotal,
		r.WSFramesByOpcode,
		r.RequestDuration,
	)
	return r
}
