package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/lgramweb/lgram-web/internal/models"
)

// authPrefix namespaces login bindings in Redis. A binding maps a browser
// session key to the account it is logged in as; its lifetime matches the
// session lifetime so a stale cookie can never authenticate.
const authPrefix = "lgram:auth:"

func (s *Store) authKey(sessionKey string) string {
	return authPrefix + sessionKey
}

// BindUser marks sessionKey as logged in as userID for the session lifetime.
func (s *Store) BindUser(ctx context.Context, sessionKey string, userID uuid.UUID) error {
	if err := s.client.Set(ctx, s.authKey(sessionKey), userID.String(), s.ttl).Err(); err != nil {
		return fmt.Errorf("%w: failed to bind session to user: %v", models.ErrStorage, err)
	}
	return nil
}

// TouchBinding slides the login binding's expiry forward by the session
// lifetime, mirroring the sliding expiry of the session itself so an active
// login never lapses mid-use. Touching an absent binding is a no-op.
func (s *Store) TouchBinding(ctx context.Context, sessionKey string) error {
	if err := s.client.Expire(ctx, s.authKey(sessionKey), s.ttl).Err(); err != nil {
		return fmt.Errorf("%w: failed to refresh session binding: %v", models.ErrStorage, err)
	}
	return nil
}

// BoundUser returns the account a session is logged in as, or
// models.ErrNotFound if the session is anonymous or the binding expired.
func (s *Store) BoundUser(ctx context.Context, sessionKey string) (uuid.UUID, error) {
	raw, err := s.client.Get(ctx, s.authKey(sessionKey)).Result()
	if errors.Is(err, redis.Nil) {
		return uuid.Nil, fmt.Errorf("session %s is not authenticated: %w", sessionKey, models.ErrNotFound)
	}
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: failed to read session binding: %v", models.ErrStorage, err)
	}

	userID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: corrupt session binding: %v", models.ErrStorage, err)
	}
	return userID, nil
}

// UnbindUser clears the login binding for a session. Deleting an absent
// binding is not an error; logout must be idempotent.
func (s *Store) UnbindUser(ctx context.Context, sessionKey string) error {
	if err := s.client.Del(ctx, s.authKey(sessionKey)).Err(); err != nil {
		return fmt.Errorf("%w: failed to clear session binding: %v", models.ErrStorage, err)
	}
	return nil
}
