// Package metrics exposes the authentication counters scraped at /metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Auth holds the counters updated by the auth module. A nil *Auth is a no-op.
type Auth struct {
	registry      *prometheus.Registry
	codesIssued   *prometheus.CounterVec
	verifications *prometheus.CounterVec
	deliveries    *prometheus.CounterVec
	purged        *prometheus.CounterVec
}

// NewAuth registers the auth counters plus the Go and process collectors on a fresh registry.
func NewAuth() *Auth {
	m := &Auth{
		registry: prometheus.NewRegistry(),
		codesIssued: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dashboard",
			Subsystem: "auth",
			Name:      "codes_issued_total",
			Help:      "Login codes issued, by flow (login or signup).",
		}, []string{"flow"}),
		verifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dashboard",
			Subsystem: "auth",
			Name:      "verifications_total",
			Help:      "Credential verification attempts, by method and outcome.",
		}, []string{"method", "outcome"}),
		deliveries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dashboard",
			Subsystem: "auth",
			Name:      "deliveries_total",
			Help:      "Login email deliveries, by outcome.",
		}, []string{"outcome"}),
		purged: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dashboard",
			Subsystem: "auth",
			Name:      "purged_total",
			Help:      "Expired credentials deleted by the purge job, by kind.",
		}, []string{"kind"}),
	}
	m.registry.MustRegister(
		m.codesIssued,
		m.verifications,
		m.deliveries,
		m.purged,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Auth) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Auth) CodeIssued(flow string) {
	if m == nil {
		return
	}
	m.codesIssued.WithLabelValues(flow).Inc()
}

func (m *Auth) Verification(method string, ok bool) {
	if m == nil {
		return
	}
	outcome := "failure"
	if ok {
		outcome = "success"
	}
	m.verifications.WithLabelValues(method, outcome).Inc()
}

func (m *Auth) Delivery(ok bool) {
	if m == nil {
		return
	}
	outcome := "failure"
	if ok {
		outcome = "success"
	}
	m.deliveries.WithLabelValues(outcome).Inc()
}

func (m *Auth) Purged(kind string, n int64) {
	if m == nil || n <= 0 {
		return
	}
	m.purged.WithLabelValues(kind).Add(float64(n))
}
