package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/spec-kit/gas-utility-service/internal/persistence"
)

// Metrics holds the Prometheus collectors exported by the service.
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	HTTPErrorsTotal     *prometheus.CounterVec

	AccountsRegistered *prometheus.CounterVec
	RequestsSubmitted  prometheus.Counter
	RequestsResolved   prometheus.Counter
	LoginFailures      prometheus.Counter
}

// NewMetrics registers collectors on a private registry.
func NewMetrics(namespace string) *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
			},
			[]string{"method", "route"},
		),
		HTTPErrorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_errors_total",
				Help:      "HTTP errors by error code",
			},
			[]string{"method", "route", "code"},
		),
		AccountsRegistered: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "accounts_created_total",
				Help:      "Accounts created, by origin",
			},
			[]string{"origin"},
		),
		RequestsSubmitted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "service_requests_submitted_total",
			Help:      "Service requests submitted by customers",
		}),
		RequestsResolved: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "service_requests_resolved_total",
			Help:      "Service requests stamped as resolved",
		}),
		LoginFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "login_failures_total",
			Help:      "Rejected login attempts",
		}),
	}
}

// RecordRequest increments counters for requests.
func (m *Metrics) RecordRequest(route, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordError increments error counters.
func (m *Metrics) RecordError(route, method, code string) {
	if m == nil {
		return
	}
	m.HTTPErrorsTotal.WithLabelValues(method, route, code).Inc()
}

// AccountCreated counts a new account; origin is "register" or "admin".
func (m *Metrics) AccountCreated(origin string) {
	if m == nil {
		return
	}
	m.AccountsRegistered.WithLabelValues(origin).Inc()
}

// RequestSubmitted counts a customer submission.
func (m *Metrics) RequestSubmitted() {
	if m == nil {
		return
	}
	m.RequestsSubmitted.Inc()
}

// RequestResolved counts a first-time resolution stamp.
func (m *Metrics) RequestResolved() {
	if m == nil {
		return
	}
	m.RequestsResolved.Inc()
}

// LoginFailed counts a rejected login.
func (m *Metrics) LoginFailed() {
	if m == nil {
		return
	}
	m.LoginFailures.Inc()
}

// RegisterPoolStats exports database pool gauges sampled at scrape time.
func (m *Metrics) RegisterPoolStats(namespace string, stats func() persistence.PoolStats) {
	if m == nil || stats == nil {
		return
	}
	gauge := func(name, help string, pick func(persistence.PoolStats) int32) prometheus.Collector {
		return prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "db_pool",
			Name:      name,
			Help:      help,
		}, func() float64 { return float64(pick(stats())) })
	}
	m.registry.MustRegister(
		gauge("total_conns", "Open connections in the pool", func(s persistence.PoolStats) int32 { return s.TotalConns }),
		gauge("idle_conns", "Idle connections in the pool", func(s persistence.PoolStats) int32 { return s.IdleConns }),
		gauge("acquired_conns", "Connections currently checked out", func(s persistence.PoolStats) int32 { return s.AcquiredConns }),
		gauge("max_conns", "Configured pool size", func(s persistence.PoolStats) int32 { return s.MaxConns }),
	)
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
