// Package metrics exposes the server's Prometheus counters on a dedicated
// registry. A nil *Metrics is valid and records nothing.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/dmitrijs2005/matchkeeper/internal/dbx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "matchkeeper"

type Metrics struct {
	registry *prometheus.Registry

	txOutcomes       *prometheus.CounterVec
	secretFailures   *prometheus.CounterVec
	identityFailures *prometheus.CounterVec
	requests         *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		txOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tx_total",
			Help:      "Units of work by outcome.",
		}, []string{"outcome"}),
		secretFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "secret_failures_total",
			Help:      "Stored secrets that could not be decrypted, by error kind.",
		}, []string{"kind"}),
		identityFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "identity_failures_total",
			Help:      "Failed identity provider lookups, by operation.",
		}, []string{"op"}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "code"}),
	}

	m.registry.MustRegister(
		m.txOutcomes, m.secretFailures, m.identityFailures, m.requests,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveTx matches dbx.WithObserver.
func (m *Metrics) ObserveTx(o dbx.Outcome) {
	if m == nil {
		return
	}
	m.txOutcomes.WithLabelValues(string(o)).Inc()
}

func (m *Metrics) SecretFailure(kind string) {
	if m == nil {
		return
	}
	m.secretFailures.WithLabelValues(kind).Inc()
}

func (m *Metrics) IdentityFailure(op string) {
	if m == nil {
		return
	}
	m.identityFailures.WithLabelValues(op).Inc()
}

func (m *Metrics) Request(method, route string, code int) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
