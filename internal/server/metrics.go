package server

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/alnah/go-folio/internal/content"
)

// Metrics owns a private Prometheus registry. A nil *Metrics records
// nothing.
type Metrics struct {
	registry    *prometheus.Registry
	requests    *prometheus.CounterVec
	reloads     *prometheus.CounterVec
	documents   *prometheus.GaugeVec
	submissions *prometheus.CounterVec
}

// NewMetrics registers the folio collectors plus the Go and process
// collectors on a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "folio_http_requests_total",
			Help: "HTTP requests by method, route template and status.",
		}, []string{"method", "route", "status"}),
		reloads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "folio_content_reloads_total",
			Help: "Content reloads by kind and result.",
		}, []string{"kind", "result"}),
		documents: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "folio_content_documents",
			Help: "Published documents currently served, by kind.",
		}, []string{"kind"}),
		submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "folio_contact_submissions_total",
			Help: "Contact and comment submissions by type and outcome.",
		}, []string{"type", "outcome"}),
	}
	m.registry.MustRegister(
		m.requests, m.reloads, m.documents, m.submissions,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
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

// ObserveReload matches content.ReloadHook.
func (m *Metrics) ObserveReload(kind content.Kind, count int, err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.reloads.WithLabelValues(string(kind), "error").Inc()
		return
	}
	m.reloads.WithLabelValues(string(kind), "ok").Inc()
	m.documents.WithLabelValues(string(kind)).Set(float64(count))
}

// ObserveSubmission counts one contact or comment outcome.
func (m *Metrics) ObserveSubmission(kind, outcome string) {
	if m == nil {
		return
	}
	m.submissions.WithLabelValues(kind, outcome).Inc()
}

// Middleware counts requests by route template so slugs do not explode
// label cardinality.
func (m *Metrics) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			err := next(c)
			if m == nil {
				return err
			}
			status := c.Response().Status
			if err != nil {
				status = statusOf(err)
			}
			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			m.requests.WithLabelValues(c.Request().Method, route, strconv.Itoa(status)).Inc()
			return err
		}
	}
}
