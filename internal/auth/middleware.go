package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
)

// contextKey is an unexported type for context keys in this package, so no
// other package can read or shadow the identity values we attach.
type contextKey string

const (
	userIDKey contextKey = "userID"
	roleKey   contextKey = "role"
)

// RequireAuth enforces authentication on protected routes.
//
// It reads the Authorization header, validates the token, and stores the
// caller's id and role in the request context. A missing header is
// rejected with 401 before any handler or store access; an invalid or
// expired token is rejected with the verification failure message.
//
// The header may carry either "Bearer <token>" (the standard scheme) or a
// bare token; some clients send the raw value with no scheme prefix, so
// both are accepted.
func RequireAuth(tokens *TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				writeUnauthorized(w, "token is required")
				return
			}

			claims, err := tokens.Validate(stripBearer(header))
			if err != nil {
				writeUnauthorized(w, err.Error())
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, claims.UserID)
			ctx = context.WithValue(ctx, roleKey, claims.Role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserIDFromContext retrieves the authenticated user's id.
// Returns ("", false) when the request carried no valid identity.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey).(string)
	return id, ok && id != ""
}

// RoleFromContext retrieves the authenticated user's role.
func RoleFromContext(ctx context.Context) (string, bool) {
	role, ok := ctx.Value(roleKey).(string)
	return role, ok && role != ""
}

func stripBearer(header string) string {
	if token, found := strings.CutPrefix(header, "Bearer "); found {
		return token
	}
	return header
}

// writeUnauthorized emits the standard 401 envelope. The auth package
// cannot import internal/handler (handler imports auth), so the envelope
// is encoded directly here.
func writeUnauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}{Success: false, Message: message})
}
