package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "offload_http_requests_total",
			Help: "HTTP requests handled by the gateway API",
		},
		[]string{"method", "pattern", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "offload_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "pattern"},
	)
)

type metricsWriter struct {
	http.ResponseWriter
	status int
}

func (w *metricsWriter) WriteHeader(statusCode int) {
	w.ResponseWriter.WriteHeader(statusCode)
	w.status = statusCode
}

// MetricsMiddleware records request counts and latency, labelled by the
// matched route pattern to keep cardinality flat
func MetricsMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			mw := &metricsWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(mw, r)

			pattern := r.Pattern
			if pattern == "" {
				pattern = "unmatched"
			}

			httpRequestsTotal.WithLabelValues(r.Method, pattern, strconv.Itoa(mw.status)).Inc()
			httpRequestDuration.WithLabelValues(r.Method, pattern).Observe(time.Since(start).Seconds())
		})
	}
}
