package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.005, .01, .05, .1, .25, .5, 1, 1.5, 2.5, 5, 10},
		},
		[]string{"method", "route"},
	)

	httpRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)

	predictionRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "prediction_runs_total",
			Help: "Total number of predict calls by outcome",
		},
		[]string{"outcome"},
	)

	predictionsReturned = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "predictions_returned_total",
			Help: "Predictions returned to clients by condition and risk level",
		},
		[]string{"condition", "risk_level"},
	)

	modelLoadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "model_loads_total",
			Help: "Model load attempts by result",
		},
		[]string{"result"},
	)
)

// MetricsHandler returns the Prometheus metrics HTTP handler
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}

// Metrics tracks request metrics
func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		httpRequestsInFlight.Inc()
		defer httpRequestsInFlight.Dec()

		wrapped := wrapWriter(w)
		next.ServeHTTP(wrapped, r)

		route := routePattern(r)
		httpRequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(wrapped.statusCode)).Inc()
		httpRequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

// routePattern uses the chi route template to keep label cardinality bounded.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}

// RecordPredictionRun records one predict call outcome (success|invalid|failed).
func RecordPredictionRun(outcome string) {
	predictionRunsTotal.WithLabelValues(outcome).Inc()
}

// RecordPrediction records one returned prediction.
func RecordPrediction(condition, riskLevel string) {
	predictionsReturned.WithLabelValues(condition, riskLevel).Inc()
}

// RecordModelLoad records a model load attempt (loaded, default_unavailable, not_found, invalid_path, error).
func RecordModelLoad(result string) {
	modelLoadsTotal.WithLabelValues(result).Inc()
}
