package middleware

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/lgramweb/lgram-web/internal/database"
	"github.com/lgramweb/lgram-web/internal/models"
	"github.com/lgramweb/lgram-web/internal/request"
	"github.com/lgramweb/lgram-web/internal/session"
)

// Auth resolves the authenticated user from the session cookie. Anonymous
// requests pass through untouched; most of the API serves both audiences, so
// rejection is left to RequireUser on the routes that need an account.
func Auth(store *session.Store, users database.UserRepositoryInterface, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie := request.SessionCookie(r)
			if cookie == "" {
				next.ServeHTTP(w, r)
				return
			}

			ctx := r.Context()
			userID, err := store.BoundUser(ctx, cookie)
			if err != nil {
				if !errors.Is(err, models.ErrNotFound) {
					logger.Warn("session_binding_read_failed", zap.Error(err))
				}
				next.ServeHTTP(w, r)
				return
			}

			user, err := users.GetByID(ctx, userID)
			if err != nil {
				if errors.Is(err, models.ErrNotFound) {
					// The account was deleted after login. Drop the stale
					// binding so the cookie stops authenticating.
					if unbindErr := store.UnbindUser(ctx, cookie); unbindErr != nil {
						logger.Warn("session_unbind_failed", zap.Error(unbindErr))
					}
				} else {
					logger.Error("user_lookup_failed",
						zap.String("user_id", userID.String()),
						zap.Error(err),
					)
				}
				next.ServeHTTP(w, r)
				return
			}

			// The session document slides its expiry per request; the login
			// binding has to slide with it or an active user logs out mid-use.
			if err := store.TouchBinding(ctx, cookie); err != nil {
				logger.Warn("session_binding_touch_failed", zap.Error(err))
			}

			next.ServeHTTP(w, r.WithContext(request.WithUser(ctx, user)))
		})
	}
}

// RequireUser rejects requests that did not authenticate.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if request.UserFromContext(r) == nil {
			respondErrorJSON(w, http.StatusUnauthorized, "Unauthorized", "Authentication required")
			return
		}
		next.ServeHTTP(w, r)
	})
}
