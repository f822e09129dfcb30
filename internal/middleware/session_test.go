package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/lgramweb/lgram-web/internal/models"
	"github.com/lgramweb/lgram-web/internal/request"
	"github.com/lgramweb/lgram-web/internal/session"
)

type recordedActivity struct {
	key      string
	kind     models.ActionKind
	metadata map[string]any
}

type fakeActivityRecorder struct {
	recorded []recordedActivity
}

func (f *fakeActivityRecorder) RecordActivity(ctx context.Context, sessionKey string, kind models.ActionKind, metadata map[string]any) error {
	f.recorded = append(f.recorded, recordedActivity{key: sessionKey, kind: kind, metadata: metadata})
	return nil
}

func TestTrackPageViews(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		method      string
		path        string
		identityKey string
		wantRecords int
	}{
		{
			name:        "top-level GET is recorded",
			method:      "GET",
			path:        "/api/v1/history",
			identityKey: "sess-1",
			wantRecords: 1,
		},
		{
			name:        "POST is not a page view",
			method:      "POST",
			path:        "/api/v1/generate",
			identityKey: "sess-1",
			wantRecords: 0,
		},
		{
			name:        "infrastructure paths are excluded",
			method:      "GET",
			path:        "/healthz",
			identityKey: "sess-1",
			wantRecords: 0,
		},
		{
			name:        "no identity key, nothing to attribute",
			method:      "GET",
			path:        "/api/v1/history",
			identityKey: "",
			wantRecords: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			recorder := &fakeActivityRecorder{}
			handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			})
			wrapped := TrackPageViews(recorder, zap.NewNop())(handler)

			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.identityKey != "" {
				req = req.WithContext(request.WithIdentityKey(req.Context(), tt.identityKey))
			}
			wrapped.ServeHTTP(httptest.NewRecorder(), req)

			if len(recorder.recorded) != tt.wantRecords {
				t.Fatalf("recorded %d activities, want %d", len(recorder.recorded), tt.wantRecords)
			}
			if tt.wantRecords == 0 {
				return
			}

			got := recorder.recorded[0]
			if got.key != tt.identityKey {
				t.Errorf("session key = %q, want %q", got.key, tt.identityKey)
			}
			if got.kind != models.ActionPageView {
				t.Errorf("kind = %q, want %q", got.kind, models.ActionPageView)
			}
			if got.metadata["path"] != tt.path {
				t.Errorf("metadata path = %v, want %q", got.metadata["path"], tt.path)
			}
		})
	}
}

func TestIdentityCreatesSessionAndSetsCookie(t *testing.T) {
	t.Parallel()

	store, mr := newMiddlewareStore(t, 30*time.Minute)

	var identityKey string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identityKey = request.IdentityKeyFromContext(r)
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest("GET", "/api/v1/session", nil)
	w := httptest.NewRecorder()

	Identity(store, 30*time.Minute, false, zap.NewNop())(handler).ServeHTTP(w, req)

	if identityKey == "" {
		t.Fatal("no identity key attached to the request")
	}

	var cookie *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == request.SessionCookieName {
			cookie = c
		}
	}
	if cookie == nil {
		t.Fatal("session cookie not set on the response")
	}
	if cookie.Value != identityKey {
		t.Errorf("cookie value = %q, want identity key %q", cookie.Value, identityKey)
	}
	if !mr.Exists("lgram:session:" + identityKey) {
		t.Error("created session document missing from the store")
	}
}

func TestIdentityKeysAuthenticatedRequestsByAccount(t *testing.T) {
	t.Parallel()

	store, mr := newMiddlewareStore(t, 30*time.Minute)
	ctx := context.Background()

	sessionKey, err := store.Create(ctx)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	mr.FastForward(10 * time.Minute)

	user := &models.User{ID: uuid.New(), Username: "ada"}

	var identityKey string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identityKey = request.IdentityKeyFromContext(r)
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest("GET", "/api/v1/session", nil)
	req.AddCookie(&http.Cookie{Name: request.SessionCookieName, Value: sessionKey})
	req = req.WithContext(request.WithUser(req.Context(), user))
	w := httptest.NewRecorder()

	Identity(store, 30*time.Minute, false, zap.NewNop())(handler).ServeHTTP(w, req)

	if want := session.IdentityKey(user.ID); identityKey != want {
		t.Errorf("identity key = %q, want %q", identityKey, want)
	}

	// The browser session carries the login binding, so the per-request
	// touch has to keep it alive alongside the account document.
	if ttl := mr.TTL("lgram:session:" + sessionKey); ttl < 29*time.Minute {
		t.Errorf("browser session TTL = %v, want close to 30m", ttl)
	}
}
