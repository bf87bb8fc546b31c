// AngelaMos | 2026
// auth.go

package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/carterperez-dev/medassist/internal/core"
)

const UserIDKey contextKey = "user_id"

type TokenVerifier interface {
	VerifyAccessToken(
		ctx context.Context,
		token string,
	) (*AccessTokenClaims, error)
}

type AccessTokenClaims struct {
	UserID string
	Role   string
}

// OptionalAuth attaches the bearer token's subject to the request context
// when a valid token is present. Requests without one pass through; the
// handlers then fall back to the userId parameter.
func OptionalAuth(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := ExtractToken(r)

			if token != "" && verifier != nil {
				claims, err := verifier.VerifyAccessToken(r.Context(), token)
				if err != nil {
					handleAuthError(w, err)
					return
				}

				r = r.WithContext(context.WithValue(r.Context(), UserIDKey, claims.UserID))
			}

			next.ServeHTTP(w, r)
		})
	}
}

func ExtractToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}

	return strings.TrimSpace(parts[1])
}

func handleAuthError(w http.ResponseWriter, err error) {
	if core.IsAppError(err) {
		core.JSONError(w, err)
		return
	}

	switch {
	case errors.Is(err, core.ErrTokenExpired):
		core.JSONError(w, core.TokenExpiredError())
	default:
		core.JSONError(w, core.TokenInvalidError())
	}
}

// RequestUserID resolves the acting user's id: the userId query parameter
// first, then the id from the JSON body, then the bearer token subject.
func RequestUserID(r *http.Request, body core.RawID) string {
	if id := strings.TrimSpace(r.URL.Query().Get("userId")); id != "" {
		return id
	}

	if id := strings.TrimSpace(body.String()); id != "" {
		return id
	}

	return GetUserID(r.Context())
}

// RequireUserID resolves the acting user's id like RequestUserID and parses
// it. On failure it writes a 400 and reports false.
func RequireUserID(
	w http.ResponseWriter,
	r *http.Request,
	body core.RawID,
) (int64, bool) {
	raw := RequestUserID(r, body)
	if raw == "" {
		core.BadRequest(w, "userId is required")
		return 0, false
	}

	id, err := core.ParseID(raw)
	if err != nil {
		core.BadRequest(w, "userId must be a positive integer")
		return 0, false
	}

	return id, true
}

func GetUserID(ctx context.Context) string {
	if id, ok := ctx.Value(UserIDKey).(string); ok {
		return id
	}
	return ""
}
