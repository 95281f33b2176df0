package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors for the authentication service.
type Metrics struct {
	TokenVerifications *prometheus.CounterVec
	TokensIssued       *prometheus.CounterVec
	Logins             *prometheus.CounterVec
	Registrations      prometheus.Counter
	CacheOperations    *prometheus.CounterVec
	EventsPublished    *prometheus.CounterVec
	RequestDuration    *prometheus.HistogramVec
}

// NewMetrics creates and registers the service metrics on the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		TokenVerifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "authcove",
			Name:      "token_verifications_total",
			Help:      "Token verification attempts by token kind and outcome.",
		}, []string{"kind", "outcome"}),
		TokensIssued: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "authcove",
			Name:      "tokens_issued_total",
			Help:      "Tokens issued by token kind.",
		}, []string{"kind"}),
		Logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "authcove",
			Name:      "logins_total",
			Help:      "Login attempts by outcome.",
		}, []string{"outcome"}),
		Registrations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "authcove",
			Name:      "registrations_total",
			Help:      "Successful user registrations.",
		}),
		CacheOperations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "authcove",
			Name:      "cache_operations_total",
			Help:      "Cache operations by operation and result.",
		}, []string{"operation", "result"}),
		EventsPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "authcove",
			Name:      "events_published_total",
			Help:      "Events handed to the publisher by queue and result.",
		}, []string{"queue", "result"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "authcove",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method, route, and status.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}

	reg.MustRegister(
		m.TokenVerifications,
		m.TokensIssued,
		m.Logins,
		m.Registrations,
		m.CacheOperations,
		m.EventsPublished,
		m.RequestDuration,
	)

	return m
}

// NopMetrics returns metrics backed by an unregistered registry, for tests
// and for components constructed without an explicit metrics instance.
func NopMetrics() *Metrics {
	return NewMetrics(prometheus.NewRegistry())
}
