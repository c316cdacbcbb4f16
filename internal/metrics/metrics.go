package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "jobportal_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "route", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "jobportal_http_request_duration_seconds",
		Help:    "Duration of HTTP requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})

	roleResolutions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "jobportal_role_resolutions_total",
		Help: "Role resolution outcomes",
	}, []string{"outcome"})

	ambiguousIdentities = promauto.NewCounter(prometheus.CounterOpts{
		Name: "jobportal_ambiguous_identities_total",
		Help: "Emails found in both the candidate and hr collections",
	})

	provisioning = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "jobportal_federated_provisioning_total",
		Help: "Federated account provisioning attempts by role and result",
	}, []string{"role", "result"})

	authzDenials = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "jobportal_authz_denials_total",
		Help: "Denied privileged actions by reason",
	}, []string{"reason"})

	gatewayDecisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "jobportal_gateway_decisions_total",
		Help: "Authorization gateway outcomes for protected routes",
	}, []string{"outcome"})
)

func ObserveHTTPRequest(method, route, status string, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, route, status).Inc()
	httpRequestDuration.WithLabelValues(method, route, status).Observe(duration.Seconds())
}

func ObserveResolution(outcome string) {
	roleResolutions.WithLabelValues(outcome).Inc()
}

// ObserveAmbiguousIdentity is a data integrity alarm, alert on any increase.
func ObserveAmbiguousIdentity() {
	ambiguousIdentities.Inc()
}

func ObserveProvisioning(role, result string) {
	provisioning.WithLabelValues(role, result).Inc()
}

func ObserveDenial(reason string) {
	authzDenials.WithLabelValues(reason).Inc()
}

func ObserveGatewayDecision(outcome string) {
	gatewayDecisions.WithLabelValues(outcome).Inc()
}

func Handler() http.Handler {
	return promhttp.Handler()
}

// Middleware records request counts and latency. route is resolved by the
// caller so that path parameters do not explode label cardinality.
func Middleware(route func(r *http.Request) string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(sw, r)
			ObserveHTTPRequest(r.Method, route(r), strconv.Itoa(sw.status), time.Since(start))
		})
	}
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}
