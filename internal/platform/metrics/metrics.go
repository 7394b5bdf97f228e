package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the registry.
type Metrics struct {
	CredentialsIssued      prometheus.Counter
	CredentialsRevoked     prometheus.Counter
	InstitutionsAuthorized prometheus.Counter
	HTTPDuration           *prometheus.HistogramVec
}

// New creates and registers all metrics against the given registerer. Tests
// pass a fresh prometheus.NewRegistry() to avoid duplicate registration.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		CredentialsIssued: factory.NewCounter(prometheus.CounterOpts{
			Name: "acadreg_credentials_issued_total",
			Help: "Total number of credentials issued.",
		}),
		CredentialsRevoked: factory.NewCounter(prometheus.CounterOpts{
			Name: "acadreg_credentials_revoked_total",
			Help: "Total number of credentials revoked.",
		}),
		InstitutionsAuthorized: factory.NewCounter(prometheus.CounterOpts{
			Name: "acadreg_institutions_authorized_total",
			Help: "Total number of institutions authorized.",
		}),
		HTTPDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "acadreg_http_request_duration_seconds",
			Help:    "HTTP request latency by route and status.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "status"}),
	}
}
