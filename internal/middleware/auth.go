package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/imf-ops/gadgetry/internal/utils"
)

type contextKey string

const userContextKey contextKey = "user"

// UserClaims is the verified identity extracted from a bearer token
type UserClaims struct {
	ID       string
	Username string
	Role     string
}

// UserFromContext returns the authenticated identity, if any
func UserFromContext(ctx context.Context) (*UserClaims, bool) {
	claims, ok := ctx.Value(userContextKey).(*UserClaims)
	return claims, ok
}

// Authenticate verifies the bearer token and stores the identity in the
// request context
func Authenticate(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				unauthorized(w, "Access denied. No token provided.")
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				unauthorized(w, "Invalid authorization header format")
				return
			}

			claims, err := utils.ValidateToken(parts[1], secret)
			if err != nil {
				unauthorized(w, "Invalid token.")
				return
			}

			user := &UserClaims{
				ID:       stringClaim(claims, "id"),
				Username: stringClaim(claims, "username"),
				Role:     stringClaim(claims, "role"),
			}

			ctx := context.WithValue(r.Context(), userContextKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole gates a handler to the given roles. Must run after
// Authenticate.
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := UserFromContext(r.Context())
			if !ok {
				unauthorized(w, "Not authenticated")
				return
			}

			for _, role := range roles {
				if user.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}

			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusForbidden)
			json.NewEncoder(w).Encode(map[string]string{"error": "Access forbidden"})
		})
	}
}

func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

func stringClaim(claims map[string]interface{}, key string) string {
	if v, ok := claims[key].(string); ok {
		return v
	}
	return ""
}
