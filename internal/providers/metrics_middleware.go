package providers

import (
	"net/http"
	"time"
)

// statusWriter captures the response code for the request counters.
// Handlers that never call WriteHeader report the implicit 200.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

// MetricsMiddleware records a request counter and a duration sample per
// endpoint. Recording is deferred so a panicking handler still counts.
func MetricsMiddleware(metrics MetricsProviderInterface, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		defer func() {
			metrics.IncRequestsTotal(r.URL.Path, sw.status)
			metrics.ObserveRequestDuration(r.URL.Path, time.Since(start))
		}()

		next.ServeHTTP(sw, r)
	})
}
