// AngelaMos | 2026
// logger.go

package middleware

import (
	"log/slog"
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/carterperez-dev/medassist/internal/core"
)

func Logger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}

			attrs := []any{
				"method", r.Method,
				"path", r.URL.Path,
				"status", status,
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"request_id", GetRequestID(r.Context()),
			}
			if traceID := core.TraceIDFromContext(r.Context()); traceID != "" {
				attrs = append(attrs, "trace_id", traceID)
			}

			switch {
			case status >= http.StatusInternalServerError:
				logger.ErrorContext(r.Context(), "request", attrs...)
			case status >= http.StatusBadRequest:
				logger.WarnContext(r.Context(), "request", attrs...)
			default:
				logger.InfoContext(r.Context(), "request", attrs...)
			}
		})
	}
}

// Recoverer turns a handler panic into a 500 envelope.
func Recoverer(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					if rec == http.ErrAbortHandler {
						panic(rec)
					}
					logger.ErrorContext(r.Context(), "panic recovered",
						"panic", rec,
						"path", r.URL.Path,
						"request_id", GetRequestID(r.Context()),
					)
					core.JSONError(w, core.InternalError(nil))
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
