package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	"github.com/abdotaker608/golden-pens-api/internal/domain"
	"github.com/abdotaker608/golden-pens-api/internal/service"
)

// ctxKey is the type for context keys to avoid collisions.
type ctxKey string

// userKey is the context key for the authenticated user.
const userKey ctxKey = "user"

// GetUser returns the authenticated user from context.
// Returns a 401 error if the request carried no valid token.
func GetUser(ctx context.Context) (*domain.User, error) {
	user, ok := ctx.Value(userKey).(*domain.User)
	if !ok || user == nil {
		return nil, huma.Error401Unauthorized("unauthorized")
	}
	return user, nil
}

// currentUserID returns the authenticated user's ID, or "" for anonymous
// requests. Read-only handlers use it to annotate responses for the viewer.
func currentUserID(ctx context.Context) string {
	if user, ok := ctx.Value(userKey).(*domain.User); ok && user != nil {
		return user.ID
	}
	return ""
}

// setUser stores the authenticated user in context.
func setUser(ctx context.Context, user *domain.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// authMiddleware validates Bearer tokens and stores the user in context.
// If no token is present or it is invalid, the request continues without a
// user; handlers use GetUser to reject where authentication is required.
func authMiddleware(auth *service.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r.Header.Get("Authorization"))
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			user, err := auth.AuthenticateAccessToken(r.Context(), token)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(setUser(r.Context(), user)))
		})
	}
}

// clientIPKey is the context key for the resolved client address.
const clientIPKey ctxKey = "clientIP"

// clientIPMiddleware resolves the client address once per request so huma
// handlers can read it from context.
func clientIPMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := context.WithValue(r.Context(), clientIPKey, getClientIP(r))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// clientIP returns the client address resolved by clientIPMiddleware.
func clientIP(ctx context.Context) string {
	ip, _ := ctx.Value(clientIPKey).(string)
	return ip
}

// bearerToken extracts the token from an Authorization header value.
// Returns "" when the header is missing or not a Bearer scheme.
func bearerToken(header string) string {
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(header[len("Bearer "):])
}
