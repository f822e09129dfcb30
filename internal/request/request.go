package request

import (
	"context"
	"net/http"
	"strings"

	"github.com/lgramweb/lgram-web/internal/models"
)

// SessionCookieName is the cookie that carries the anonymous session key.
const SessionCookieName = "lgram_session"

type contextKey string

const (
	userContextKey        contextKey = "user"
	identityKeyContextKey contextKey = "identity_key"
)

// UserContextKey returns the context key used for the user. Exposed for tests that inject non-user values.
func UserContextKey() contextKey { return userContextKey }

// ClientIP extracts the client IP from the request, respecting X-Forwarded-For and X-Real-IP.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		parts := strings.Split(xff, ",")
		if len(parts) > 0 {
			return strings.TrimSpace(parts[0])
		}
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}
	return r.RemoteAddr
}

// UserAgent returns the request's User-Agent header.
func UserAgent(r *http.Request) string {
	return r.Header.Get("User-Agent")
}

// SessionCookie returns the anonymous session key from the request cookie,
// or "" when the cookie is absent.
func SessionCookie(r *http.Request) string {
	c, err := r.Cookie(SessionCookieName)
	if err != nil {
		return ""
	}
	return c.Value
}

// WithUser returns a context with the authenticated user attached.
func WithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// UserFromContext returns the user from the request context, or nil if missing or wrong type.
func UserFromContext(r *http.Request) *models.User {
	u, _ := r.Context().Value(userContextKey).(*models.User)
	return u
}

// WithIdentityKey returns a context with the resolved identity key attached.
func WithIdentityKey(ctx context.Context, key string) context.Context {
	return context.WithValue(ctx, identityKeyContextKey, key)
}

// IdentityKeyFromContext returns the identity key resolved for this request,
// or "" if the session middleware did not run.
func IdentityKeyFromContext(r *http.Request) string {
	k, _ := r.Context().Value(identityKeyContextKey).(string)
	return k
}
