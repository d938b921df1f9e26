package middleware

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/roadieapp/roadie/internal/api/models"
)

// userIDKey is the context key for the authenticated user ID.
type userIDKey struct{}

// AuthConfig holds the device control-token credentials. The engine runs
// on behalf of a single user; the companion app authenticates with the
// control token provisioned at pairing time.
type AuthConfig struct {
	ControlToken string
	UserID       string
}

// Auth creates authentication middleware that validates the bearer
// control token.
func Auth(cfg AuthConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Extract bearer token from Authorization header
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				writeUnauthorized(w, r, "missing authorization header")
				return
			}

			// Check for Bearer prefix (case-insensitive)
			const bearerPrefix = "Bearer "
			if len(authHeader) < len(bearerPrefix) ||
				!strings.EqualFold(authHeader[:len(bearerPrefix)], bearerPrefix) {
				writeUnauthorized(w, r, "invalid authorization header format")
				return
			}

			tokenString := authHeader[len(bearerPrefix):]
			if tokenString == "" {
				writeUnauthorized(w, r, "missing bearer token")
				return
			}

			if subtle.ConstantTimeCompare([]byte(tokenString), []byte(cfg.ControlToken)) != 1 {
				writeUnauthorized(w, r, "invalid control token")
				return
			}

			// Add user ID to context
			ctx := context.WithValue(r.Context(), userIDKey{}, cfg.UserID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// writeUnauthorized writes a 401 Unauthorized response.
// This is implemented directly here to avoid import cycle with response package.
func writeUnauthorized(w http.ResponseWriter, r *http.Request, detail string) {
	traceID := GetRequestID(r.Context())
	problem := models.NewUnauthorized(traceID, detail)
	problem.Instance = r.URL.Path
	problem.Write(w)
}

// GetUserID retrieves the authenticated user ID from the context.
// Returns an empty string if not authenticated.
func GetUserID(ctx context.Context) string {
	if id, ok := ctx.Value(userIDKey{}).(string); ok {
		return id
	}
	return ""
}
