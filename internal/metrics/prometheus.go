package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Remote calls can wait out several backoff sleeps, so buckets reach a minute.
var defaultBuckets = []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20, 40, 60}

// Manager owns every series and the registry they live on.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	registry         *prometheus.Registry

	remoteAttempts      *prometheus.CounterVec
	retries             *prometheus.CounterVec
	fallbacks           *prometheus.CounterVec
	normalizeFailures   prometheus.Counter
	operationDuration   *prometheus.HistogramVec
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "ats",
		subsystem:        "agent",
		histogramBuckets: defaultBuckets,
		enabled:          true,
	}

	for _, opt := range opts {
		opt(m)
	}

	if m.registry == nil {
		m.registry = prometheus.NewRegistry()
		m.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.remoteAttempts = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "remote_attempts_total",
		Help:      "Remote model calls attempted, by model",
	}, []string{"model"})

	m.retries = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "retries_total",
		Help:      "Retries scheduled after a transient failure, by failure class",
	}, []string{"class"})

	m.fallbacks = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "fallbacks_total",
		Help:      "Operations answered by the offline path, by operation",
	}, []string{"operation"})

	m.normalizeFailures = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "normalize_failures_total",
		Help:      "Model responses that could not be parsed into the expected JSON",
	})

	m.operationDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "operation_duration_seconds",
		Help:      "Wall-clock duration of analyze/optimize/interview operations",
		Buckets:   m.histogramBuckets,
	}, []string{"operation", "path"})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests served, by method, route and status",
	}, []string{"method", "route", "status"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency, by method and route",
		Buckets:   m.histogramBuckets,
	}, []string{"method", "route"})
}

func (m *Manager) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Manager) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Manager) ObserveAttempt(model string) {
	if !m.enabled {
		return
	}
	m.remoteAttempts.WithLabelValues(model).Inc()
}

func (m *Manager) ObserveRetry(class string) {
	if !m.enabled {
		return
	}
	m.retries.WithLabelValues(class).Inc()
}

func (m *Manager) ObserveFallback(operation string) {
	if !m.enabled {
		return
	}
	m.fallbacks.WithLabelValues(operation).Inc()
}

func (m *Manager) ObserveNormalizeFailure() {
	if !m.enabled {
		return
	}
	m.normalizeFailures.Inc()
}

func (m *Manager) ObserveDuration(operation, path string, d time.Duration) {
	if !m.enabled {
		return
	}
	m.operationDuration.WithLabelValues(operation, path).Observe(d.Seconds())
}

func (m *Manager) ObserveHTTPRequest(method, route string, status int, d time.Duration) {
	if !m.enabled {
		return
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}
