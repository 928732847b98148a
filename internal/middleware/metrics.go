package middleware

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"clawfans/internal/metrics"
)

// MetricsMiddleware must run inside the router so the matched route
// template is available for labels.
func MetricsMiddleware() mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			metrics.IncInFlight()
			defer metrics.DecInFlight()

			rw := wrap(w)
			next.ServeHTTP(rw, r)

			metrics.RecordHTTPRequest(r.Method, routeTemplate(r), rw.statusCode, time.Since(start))
		})
	}
}
