// AngelaMos | 2026
// metrics.go

package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/carterperez-dev/medassist/internal/metrics"
)

// Metrics records request counts and latency labelled by route pattern.
func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		metrics.ObserveHTTPRequest(
			r.Method,
			route,
			strconv.Itoa(status),
			time.Since(start),
		)
	})
}
