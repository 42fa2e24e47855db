package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strings"

	"github.com/playtube/backend/internal/logging"
	"github.com/playtube/backend/internal/models"
	"github.com/playtube/backend/internal/repositories"
)

type userContextKey struct{}

// AccessTokenCookie names the cookie carrying the signed access token.
const AccessTokenCookie = "accessToken"

// TokenVerifier validates an access token and resolves the user id it belongs to.
type TokenVerifier interface {
	Verify(accessToken string) (string, error)
}

// UserSource loads user records during authentication.
type UserSource interface {
	FindByID(ctx context.Context, id string) (models.User, error)
}

// Authenticate rejects requests lacking a valid access token and injects the
// authenticated user into the request context. Tokens are read from the
// accessToken cookie, falling back to an Authorization bearer header.
func Authenticate(tokens TokenVerifier, users UserSource) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := accessTokenFromRequest(r)
			if token == "" {
				writeUnauthorized(w, "authentication required")
				return
			}

			userID, err := tokens.Verify(token)
			if err != nil {
				writeUnauthorized(w, "invalid access token")
				return
			}

			user, err := users.FindByID(r.Context(), userID)
			if err != nil {
				if errors.Is(err, repositories.ErrNotFound) {
					writeUnauthorized(w, "invalid access token")
					return
				}
				logging.FromContext(r.Context()).Error("load authenticated user", "error", err, "user_id", userID)
				writeEnvelopeError(w, http.StatusInternalServerError, "internal server error")
				return
			}

			ctx := WithUser(r.Context(), user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// WithUser stores the authenticated user on the context.
func WithUser(ctx context.Context, user models.User) context.Context {
	return context.WithValue(ctx, userContextKey{}, user)
}

// CurrentUser returns the authenticated user injected by Authenticate.
func CurrentUser(ctx context.Context) (models.User, bool) {
	user, ok := ctx.Value(userContextKey{}).(models.User)
	return user, ok
}

// Throttle rejects requests once the caller exceeds the limiter's budget.
// Callers are keyed by client IP.
func Throttle(limiter RateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow(clientIP(r)) {
				writeEnvelopeError(w, http.StatusTooManyRequests, "too many requests")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func accessTokenFromRequest(r *http.Request) string {
	if cookie, err := r.Cookie(AccessTokenCookie); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	header := r.Header.Get("Authorization")
	if token, ok := strings.CutPrefix(header, "Bearer "); ok {
		return strings.TrimSpace(token)
	}

	return ""
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func writeUnauthorized(w http.ResponseWriter, message string) {
	writeEnvelopeError(w, http.StatusUnauthorized, message)
}

func writeEnvelopeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"statusCode": status,
		"success":    false,
		"message":    message,
		"errors":     []string{},
	})
}
