package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/lgramweb/lgram-web/internal/models"
	"github.com/lgramweb/lgram-web/internal/request"
	"github.com/lgramweb/lgram-web/internal/session"
)

// Identity resolves one canonical identity key per request and attaches it to
// the request context. Authenticated requests key by account; anonymous
// requests reuse their session cookie or get a fresh session, whose cookie is
// set on the response. Each request also slides the session expiry forward.
func Identity(store *session.Store, ttl time.Duration, secureCookies bool, logger *zap.Logger) func(http.Handler) http.Handler {
	if ttl <= 0 {
		ttl = session.DefaultTTL
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			resolver := session.NewResolver(store)

			key, err := resolver.Resolve(ctx, request.UserFromContext(r), request.SessionCookie(r))
			if err != nil {
				// Identity resolution failing must not take down read paths;
				// downstream code treats an empty key as "no session".
				logger.Error("identity_resolution_failed", zap.Error(err))
				next.ServeHTTP(w, r)
				return
			}

			if created := resolver.CreatedSession(); created != "" {
				http.SetCookie(w, &http.Cookie{
					Name:     request.SessionCookieName,
					Value:    created,
					Path:     "/",
					MaxAge:   int(ttl.Seconds()),
					HttpOnly: true,
					Secure:   secureCookies,
					SameSite: http.SameSiteLaxMode,
				})
			}

			if err := store.SetExpiry(ctx, key, ttl); err != nil {
				logger.Warn("session_touch_failed",
					zap.String("identity_key", key),
					zap.Error(err),
				)
			}

			// An authenticated visitor's browser session carries the login
			// binding; keep it alive alongside the account document.
			if cookie := request.SessionCookie(r); request.UserFromContext(r) != nil && cookie != "" {
				if err := store.SetExpiry(ctx, cookie, ttl); err != nil {
					logger.Warn("session_touch_failed",
						zap.String("identity_key", cookie),
						zap.Error(err),
					)
				}
			}

			next.ServeHTTP(w, r.WithContext(request.WithIdentityKey(ctx, key)))
		})
	}
}

// ActivityRecorder is the slice of the session store that page-view tracking
// needs. Satisfied by *session.Store.
type ActivityRecorder interface {
	RecordActivity(ctx context.Context, sessionKey string, kind models.ActionKind, metadata map[string]any) error
}

// TrackPageViews records a page_view entry in the session's bounded
// recent-activity buffer for top-level GET requests, which also stamps the
// session's last-activity time. Sub-resource and infrastructure paths are
// excluded so the buffer reflects pages, not polling.
func TrackPageViews(store ActivityRecorder, logger *zap.Logger, excludedPrefixes ...string) func(http.Handler) http.Handler {
	excluded := append([]string{"/health", "/metrics", "/static/"}, excludedPrefixes...)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r)

			if r.Method != http.MethodGet {
				return
			}
			for _, prefix := range excluded {
				if strings.HasPrefix(r.URL.Path, prefix) {
					return
				}
			}

			key := request.IdentityKeyFromContext(r)
			if key == "" {
				return
			}

			err := store.RecordActivity(r.Context(), key, models.ActionPageView,
				map[string]any{"path": r.URL.Path, "method": r.Method},
			)
			if err != nil {
				logger.Warn("page_view_record_failed", zap.Error(err))
			}
		})
	}
}
