// AngelaMos | 2026
// cors.go

package middleware

import (
	"net/http"
	"slices"
	"strconv"
	"strings"

	"github.com/carterperez-dev/medassist/internal/config"
)

// CORS applies one policy to every route and answers preflight requests with
// 204 and the same headers.
func CORS(cfg config.CORSConfig) func(http.Handler) http.Handler {
	methods := strings.Join(cfg.AllowedMethods, ", ")
	headers := strings.Join(cfg.AllowedHeaders, ", ")
	wildcard := slices.Contains(cfg.AllowedOrigins, "*")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			h := w.Header()

			switch {
			case wildcard:
				h.Set("Access-Control-Allow-Origin", "*")
			case origin != "" && slices.Contains(cfg.AllowedOrigins, origin):
				h.Set("Access-Control-Allow-Origin", origin)
				h.Add("Vary", "Origin")
			}

			h.Set("Access-Control-Allow-Methods", methods)
			h.Set("Access-Control-Allow-Headers", headers)
			if cfg.AllowCredentials {
				h.Set("Access-Control-Allow-Credentials", "true")
			}

			if r.Method == http.MethodOptions {
				if cfg.MaxAge > 0 {
					h.Set("Access-Control-Max-Age", strconv.Itoa(cfg.MaxAge))
				}
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
