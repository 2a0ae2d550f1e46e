package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Ensure Metrics implements Recorder interface at compile time
var _ Recorder = (*Metrics)(nil)

// Recorder is the metrics recording interface consumed by the OAuth client
// and the web layer. Implementations: Metrics (Prometheus) and NoopMetrics.
type Recorder interface {
	// RecordAuthorizationStarted counts begun authorization attempts.
	RecordAuthorizationStarted()

	// RecordAuthorizationCallback counts callback completions by outcome.
	RecordAuthorizationCallback(success bool)

	// RecordTokenExchange counts token endpoint round trips by grant type
	// ("authorization_code" or "refresh_token") and outcome.
	RecordTokenExchange(grant string, success bool)

	// RecordResourceCall counts protected-resource calls by final result.
	RecordResourceCall(result string)

	// RecordLogout counts credential-forget operations.
	RecordLogout()
}

// Metrics holds all Prometheus metrics for the application
type Metrics struct {
	// OAuth Flow Metrics
	AuthorizationsStartedTotal prometheus.Counter
	CallbacksTotal             *prometheus.CounterVec
	TokenExchangesTotal        *prometheus.CounterVec
	ResourceCallsTotal         *prometheus.CounterVec
	LogoutsTotal               prometheus.Counter

	// HTTP Request Metrics
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge
}

var (
	defaultMetrics *Metrics
	once           sync.Once
)

// Init initializes metrics based on enabled flag.
// If enabled=true, returns Prometheus-based Metrics.
// If enabled=false, returns NoopMetrics (zero overhead).
// Uses sync.Once to ensure Prometheus metrics are only registered once.
func Init(enabled bool) Recorder {
	if !enabled {
		return NewNoopMetrics()
	}

	once.Do(func() {
		defaultMetrics = initMetrics()
	})
	return defaultMetrics
}

// initMetrics creates and registers all Prometheus metrics
func initMetrics() *Metrics {
	return &Metrics{
		AuthorizationsStartedTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "oauth_client_authorizations_started_total",
				Help: "Total number of authorization attempts begun",
			},
		),
		CallbacksTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "oauth_client_callbacks_total",
				Help: "Total number of authorization callbacks processed",
			},
			[]string{"result"}, // success, failure
		),
		TokenExchangesTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "oauth_client_token_exchanges_total",
				Help: "Total number of token endpoint round trips",
			},
			[]string{"grant_type", "result"},
		),
		ResourceCallsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "oauth_client_resource_calls_total",
				Help: "Total number of protected resource calls by final result",
			},
			[]string{"result"},
		),
		LogoutsTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "oauth_client_logouts_total",
				Help: "Total number of logout operations",
			},
		),

		HTTPRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		HTTPRequestsInFlight: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_flight",
				Help: "Current number of in-flight HTTP requests",
			},
		),
	}
}

// RecordAuthorizationStarted counts begun authorization attempts.
func (m *Metrics) RecordAuthorizationStarted() {
	m.AuthorizationsStartedTotal.Inc()
}

// RecordAuthorizationCallback counts callback completions by outcome.
func (m *Metrics) RecordAuthorizationCallback(success bool) {
	m.CallbacksTotal.WithLabelValues(boolResult(success)).Inc()
}

// RecordTokenExchange counts token endpoint round trips.
func (m *Metrics) RecordTokenExchange(grant string, success bool) {
	m.TokenExchangesTotal.WithLabelValues(grant, boolResult(success)).Inc()
}

// RecordResourceCall counts protected-resource calls by final result.
func (m *Metrics) RecordResourceCall(result string) {
	m.ResourceCallsTotal.WithLabelValues(result).Inc()
}

// RecordLogout counts credential-forget operations.
func (m *Metrics) RecordLogout() {
	m.LogoutsTotal.Inc()
}

func boolResult(success bool) string {
	if success {
		return resultSuccess
	}
	return resultFailure
}
