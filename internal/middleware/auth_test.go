package middleware

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/lgramweb/lgram-web/internal/models"
	"github.com/lgramweb/lgram-web/internal/request"
	"github.com/lgramweb/lgram-web/internal/session"
)

type stubUsers struct {
	user *models.User
}

func (s *stubUsers) Create(ctx context.Context, user *models.User) error { return nil }

func (s *stubUsers) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	if s.user != nil && s.user.ID == id {
		return s.user, nil
	}
	return nil, fmt.Errorf("user %s: %w", id, models.ErrNotFound)
}

func (s *stubUsers) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	if s.user != nil && s.user.Username == username {
		return s.user, nil
	}
	return nil, fmt.Errorf("user %s: %w", username, models.ErrNotFound)
}

func (s *stubUsers) Count(ctx context.Context) (int, error) { return 0, nil }

func (s *stubUsers) UpdateProfile(ctx context.Context, user *models.User) error { return nil }

func (s *stubUsers) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	return nil
}

func newMiddlewareStore(t *testing.T, ttl time.Duration) (*session.Store, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = client.Close()
	})

	return session.NewStoreWithClient(client, ttl, zap.NewNop()), mr
}

func TestAuthResolvesUserAndSlidesBinding(t *testing.T) {
	t.Parallel()

	store, mr := newMiddlewareStore(t, 30*time.Minute)
	user := &models.User{ID: uuid.New(), Username: "ada"}
	ctx := context.Background()

	if err := store.BindUser(ctx, "cookie-1", user.ID); err != nil {
		t.Fatalf("BindUser() error = %v", err)
	}
	mr.FastForward(20 * time.Minute)

	var seen *models.User
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = request.UserFromContext(r)
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest("GET", "/api/v1/history", nil)
	req.AddCookie(&http.Cookie{Name: request.SessionCookieName, Value: "cookie-1"})
	w := httptest.NewRecorder()

	Auth(store, &stubUsers{user: user}, zap.NewNop())(handler).ServeHTTP(w, req)

	if seen == nil || seen.ID != user.ID {
		t.Fatalf("resolved user = %v, want %s", seen, user.ID)
	}

	// An active login must not lapse: the binding's lifetime is pushed back
	// to the full session TTL on every authenticated request.
	if ttl := mr.TTL("lgram:auth:cookie-1"); ttl < 29*time.Minute {
		t.Errorf("binding TTL = %v, want close to 30m", ttl)
	}
}

func TestAuthAnonymousPassThrough(t *testing.T) {
	t.Parallel()

	store, _ := newMiddlewareStore(t, 30*time.Minute)

	var seen *models.User
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = request.UserFromContext(r)
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest("GET", "/api/v1/history", nil)
	w := httptest.NewRecorder()

	Auth(store, &stubUsers{}, zap.NewNop())(handler).ServeHTTP(w, req)

	if seen != nil {
		t.Errorf("resolved user = %v, want nil", seen)
	}
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
}

func TestAuthDropsBindingForDeletedAccount(t *testing.T) {
	t.Parallel()

	store, _ := newMiddlewareStore(t, 30*time.Minute)
	ctx := context.Background()

	if err := store.BindUser(ctx, "cookie-1", uuid.New()); err != nil {
		t.Fatalf("BindUser() error = %v", err)
	}

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest("GET", "/api/v1/history", nil)
	req.AddCookie(&http.Cookie{Name: request.SessionCookieName, Value: "cookie-1"})
	w := httptest.NewRecorder()

	Auth(store, &stubUsers{}, zap.NewNop())(handler).ServeHTTP(w, req)

	if _, err := store.BoundUser(ctx, "cookie-1"); err == nil {
		t.Error("binding survived for a deleted account")
	}
}
