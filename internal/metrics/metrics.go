// AngelaMos | 2026
// metrics.go

package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "medassist_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "route", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "medassist_http_request_duration_seconds",
		Help:    "Duration of HTTP requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	accountTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "medassist_account_transitions_total",
		Help: "Account lifecycle transitions by kind",
	}, []string{"transition"})

	loginAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "medassist_login_attempts_total",
		Help: "Login attempts by result",
	}, []string{"result"})

	credentialUpgrades = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "medassist_credential_upgrades_total",
		Help: "Stored credentials re-hashed to argon2id, by previous scheme",
	}, []string{"from"})

	adminQueries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "medassist_admin_queries_total",
		Help: "Admin raw queries by outcome",
	}, []string{"outcome"})

	rateLimited = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "medassist_rate_limited_total",
		Help: "Requests refused by the rate limiter, by scope and backend",
	}, []string{"scope", "backend"})
)

// ObserveHTTPRequest records one served request. route is the chi route
// pattern, not the raw path, so ids do not explode label cardinality.
func ObserveHTTPRequest(method, route, status string, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, route, status).Inc()
	httpRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

func ObserveAccountTransition(transition string) {
	accountTransitions.WithLabelValues(transition).Inc()
}

func ObserveLogin(result string) {
	loginAttempts.WithLabelValues(result).Inc()
}

func ObserveCredentialUpgrade(from string) {
	credentialUpgrades.WithLabelValues(from).Inc()
}

func ObserveAdminQuery(outcome string) {
	adminQueries.WithLabelValues(outcome).Inc()
}

func ObserveRateLimited(scope, backend string) {
	rateLimited.WithLabelValues(scope, backend).Inc()
}

func Handler() http.Handler {
	return promhttp.Handler()
}
