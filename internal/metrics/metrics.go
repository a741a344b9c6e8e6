// internal/metrics/metrics.go
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	SessionsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "visacheck_sessions_created_total",
			Help: "Total number of validation sessions created",
		},
	)

	ValidationsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "visacheck_validations_total",
			Help: "Total number of document validations by outcome",
		},
		[]string{"outcome"},
	)

	ValidationScore = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "visacheck_validation_score",
			Help:    "Distribution of completeness scores",
			Buckets: prometheus.LinearBuckets(0, 10, 11),
		},
	)

	PaymentEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "visacheck_payment_events_total",
			Help: "Total number of payment status transitions",
		},
		[]string{"status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "visacheck_http_request_duration_seconds",
			Help: "Duration of HTTP requests in seconds",
		},
		[]string{"method", "route", "status"},
	)
)

// Validation outcomes.
const (
	OutcomeComplete   = "complete"
	OutcomeIncomplete = "incomplete"
	OutcomeUnknown    = "unknown_destination"
	OutcomeFailed     = "failed"
)

func Handler() http.Handler {
	return promhttp.Handler()
}

// Instrument records request durations labelled by the matched chi route pattern.
func Instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}
		HTTPRequestDuration.
			WithLabelValues(r.Method, route, strconv.Itoa(ww.Status())).
			Observe(time.Since(start).Seconds())
	})
}
