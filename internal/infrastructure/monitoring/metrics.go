package monitoring

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	RequestSize     *prometheus.HistogramVec
	ResponseSize    *prometheus.HistogramVec

	// App metrics
	AppsInstalled prometheus.Gauge

	// Order metrics
	Reconciliations     *prometheus.CounterVec
	ReordersApplied     prometheus.Counter
	ReordersRejected    *prometheus.CounterVec
	DuplicateViolations prometheus.Counter
	StaleReferences     prometheus.Counter

	// Session metrics
	SessionsActive prometheus.Gauge
	SessionsTotal  prometheus.Counter

	// WebSocket metrics
	WSConnections prometheus.Gauge
	WSMessages    *prometheus.CounterVec

	// Snapshot for JSON API - track current values
	snapshot Snapshot
	mu       sync.RWMutex
}

// Snapshot holds current metric values for the health endpoint
type Snapshot struct {
	TotalRequests    int64 `json:"total_requests"`
	TotalErrors      int64 `json:"total_errors"`
	ReordersApplied  int64 `json:"reorders_applied"`
	ReordersRejected int64 `json:"reorders_rejected"`
	ActiveSessions   int64 `json:"active_sessions"`
}

// NewMetrics creates a new metrics collector registered on reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		// HTTP metrics
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "switcher_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "switcher_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		RequestSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "switcher_http_request_size_bytes",
				Help:    "HTTP request size in bytes",
				Buckets: []float64{100, 1000, 10000, 100000, 1000000},
			},
			[]string{"method", "path"},
		),
		ResponseSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "switcher_http_response_size_bytes",
				Help:    "HTTP response size in bytes",
				Buckets: []float64{100, 1000, 10000, 100000, 1000000},
			},
			[]string{"method", "path"},
		),

		// App metrics
		AppsInstalled: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "switcher_apps_installed",
				Help: "Number of installed applications",
			},
		),

		// Order metrics
		Reconciliations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "switcher_reconciliations_total",
				Help: "Total number of reconciliations by outcome",
			},
			[]string{"outcome"},
		),
		ReordersApplied: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "switcher_reorders_applied_total",
				Help: "Total number of reorder events that changed the order",
			},
		),
		ReordersRejected: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "switcher_reorders_rejected_total",
				Help: "Total number of rejected reorder events",
			},
			[]string{"reason"},
		),
		DuplicateViolations: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "switcher_duplicate_identifier_violations_total",
				Help: "Total number of order replacements rejected for duplicate ids",
			},
		),
		StaleReferences: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "switcher_stale_identifier_references_total",
				Help: "Total number of order ids projected without a descriptor",
			},
		),

		// Session metrics
		SessionsActive: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "switcher_sessions_active",
				Help: "Number of live UI sessions",
			},
		),
		SessionsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "switcher_sessions_total",
				Help: "Total number of UI sessions created",
			},
		),

		// WebSocket metrics
		WSConnections: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "switcher_ws_connections",
				Help: "Number of active WebSocket connections",
			},
		),
		WSMessages: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "switcher_ws_messages_total",
				Help: "Total number of WebSocket messages",
			},
			[]string{"direction", "type"},
		),
	}
}

// Handler exposes the metrics gathered by g in Prometheus text format
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration, reqSize, respSize int64) {
	m.RequestsTotal.WithLabelValues(method, path, status).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
	m.RequestSize.WithLabelValues(method, path).Observe(float64(reqSize))
	m.ResponseSize.WithLabelValues(method, path).Observe(float64(respSize))

	m.mu.Lock()
	m.snapshot.TotalRequests++
	if status[0] == '4' || status[0] == '5' {
		m.snapshot.TotalErrors++
	}
	m.mu.Unlock()
}

// RecordReconcile records a reconciliation; changed tells whether the order moved
func (m *Metrics) RecordReconcile(changed bool) {
	outcome := "noop"
	if changed {
		outcome = "changed"
	}
	m.Reconciliations.WithLabelValues(outcome).Inc()
}

// IncReordersApplied increments the applied reorder counter
func (m *Metrics) IncReordersApplied() {
	m.ReordersApplied.Inc()
	m.mu.Lock()
	m.snapshot.ReordersApplied++
	m.mu.Unlock()
}

// IncReordersRejected increments the rejected reorder counter
func (m *Metrics) IncReordersRejected(reason string) {
	m.ReordersRejected.WithLabelValues(reason).Inc()
	m.mu.Lock()
	m.snapshot.ReordersRejected++
	m.mu.Unlock()
}

// IncDuplicateViolations increments the duplicate id counter
func (m *Metrics) IncDuplicateViolations() {
	m.DuplicateViolations.Inc()
}

// AddStaleReferences adds n stale id references
func (m *Metrics) AddStaleReferences(n int) {
	m.StaleReferences.Add(float64(n))
}

// SetAppsInstalled sets the number of installed applications
func (m *Metrics) SetAppsInstalled(count int) {
	m.AppsInstalled.Set(float64(count))
}

// SetSessionsActive sets the number of live sessions
func (m *Metrics) SetSessionsActive(count int) {
	m.SessionsActive.Set(float64(count))
	m.mu.Lock()
	m.snapshot.ActiveSessions = int64(count)
	m.mu.Unlock()
}

// IncSessionsTotal increments the sessions created counter
func (m *Metrics) IncSessionsTotal() {
	m.SessionsTotal.Inc()
}

// RecordWSMessage records a WebSocket message
func (m *Metrics) RecordWSMessage(direction, msgType string) {
	m.WSMessages.WithLabelValues(direction, msgType).Inc()
}

// IncWSConnections increments WebSocket connections
func (m *Metrics) IncWSConnections() {
	m.WSConnections.Inc()
}

// DecWSConnections decrements WebSocket connections
func (m *Metrics) DecWSConnections() {
	m.WSConnections.Dec()
}

// Snapshot returns the current snapshot values
func (m *Metrics) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshot
}
