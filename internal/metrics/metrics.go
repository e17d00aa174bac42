// ABOUTME: Prometheus instrumentation for the admin backend
// ABOUTME: Request counters and latency, login outcomes and route guard rejections

package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Login outcomes recorded by LoginAttempt.
const (
	LoginSuccess      = "success"
	LoginInvalid      = "invalid_credentials"
	LoginBadRequest   = "bad_request"
	LoginRateLimited  = "rate_limited"
	LoginServerFailed = "error"
)

// Manager holds every collector the server exports.
type Manager struct {
	// counters
	CounterRequests        *prometheus.CounterVec
	CounterLoginAttempts   *prometheus.CounterVec
	CounterGuardRejections *prometheus.CounterVec

	// histograms
	HistRequestDuration *prometheus.HistogramVec

	gatherer prometheus.Gatherer
}

// NewTestManager returns a Manager on a private registry.
func NewTestManager() *Manager {
	return NewManager("nubarmory", "test_server", prometheus.NewRegistry())
}

// NewManager registers the collectors on reg. If reg is also a Gatherer it
// backs Handler; otherwise Handler serves the default gatherer.
func NewManager(namespace, subsystem string, reg prometheus.Registerer) *Manager {
	factory := promauto.With(reg)

	counterRequests := factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "requests_total",
		Help:      "The total number of incoming requests",
	}, []string{"method", "status"})
	counterLoginAttempts := factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "login_attempts_total",
		Help:      "Admin login attempts by outcome",
	}, []string{"outcome"})
	counterGuardRejections := factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "guard_rejections_total",
		Help:      "Requests turned away by the route guard",
	}, []string{"reason"})

	histReqDuration := factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
			Name:      "request_duration_seconds",
			Help:      "Total duration of requests in seconds",
		},
		[]string{"method"},
	)

	gatherer, ok := reg.(prometheus.Gatherer)
	if !ok {
		gatherer = prometheus.DefaultGatherer
	}

	return &Manager{
		CounterRequests:        counterRequests,
		CounterLoginAttempts:   counterLoginAttempts,
		CounterGuardRejections: counterGuardRejections,
		HistRequestDuration:    histReqDuration,
		gatherer:               gatherer,
	}
}

// GuardRejected counts a route guard rejection. It satisfies auth.GuardObserver.
func (m *Manager) GuardRejected(reason string) {
	m.CounterGuardRejections.WithLabelValues(reason).Inc()
}

// LoginAttempt counts a login attempt with the given outcome.
func (m *Manager) LoginAttempt(outcome string) {
	m.CounterLoginAttempts.WithLabelValues(outcome).Inc()
}

// Handler serves the Prometheus exposition format.
func (m *Manager) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// RequestMetrics records request count and latency for every request.
func RequestMetrics(m *Manager) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(respWriter http.ResponseWriter, req *http.Request) {
			defer func(begin time.Time) {
				m.HistRequestDuration.WithLabelValues(req.Method).Observe(time.Since(begin).Seconds())
			}(time.Now())

			resp := &responseWriter{ResponseWriter: respWriter, statusCode: http.StatusOK}

			next.ServeHTTP(resp, req)

			m.CounterRequests.With(
				prometheus.Labels{
					"method": req.Method,
					"status": strconv.Itoa(resp.statusCode),
				},
			).Inc()
		})
	}
}

type responseWriter struct {
	http.ResponseWriter
	statusCode  int
	wroteHeader bool
}

func (r *responseWriter) WriteHeader(statusCode int) {
	if !r.wroteHeader {
		r.statusCode = statusCode
		r.wroteHeader = true
	}
	r.ResponseWriter.WriteHeader(statusCode)
}

func (r *responseWriter) Write(b []byte) (int, error) {
	r.wroteHeader = true
	return r.ResponseWriter.Write(b)
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (r *responseWriter) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}
