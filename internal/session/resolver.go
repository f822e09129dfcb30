package session

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/lgramweb/lgram-web/internal/models"
)

// IdentityKeyPrefix prefixes the identity key of authenticated accounts.
const IdentityKeyPrefix = "user_"

// IdentityKey returns the canonical identity key for an account. It depends
// only on the account id, so history does not fragment across devices or
// browser sessions for the same account.
func IdentityKey(userID uuid.UUID) string {
	return IdentityKeyPrefix + userID.String()
}

// Creator allocates new sessions. Satisfied by *Store.
type Creator interface {
	Create(ctx context.Context) (string, error)
}

// Resolver derives one canonical identity key per request. It is
// request-scoped: if an anonymous request arrives without a session cookie,
// the resolver creates a session once and returns the same key for every
// subsequent Resolve call within the request.
type Resolver struct {
	creator Creator
	created string
}

// NewResolver creates a resolver for one request lifecycle.
func NewResolver(creator Creator) *Resolver {
	return &Resolver{creator: creator}
}

// Resolve returns the identity key for the request. Authenticated requests
// map to user_<id> without touching the store; anonymous requests reuse the
// session cookie or lazily create a session. The returned key is never empty.
func (r *Resolver) Resolve(ctx context.Context, user *models.User, sessionCookie string) (string, error) {
	if user != nil {
		return IdentityKey(user.ID), nil
	}
	if sessionCookie != "" {
		return sessionCookie, nil
	}
	if r.created != "" {
		return r.created, nil
	}

	sessionKey, err := r.creator.Create(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to create session: %w", err)
	}
	if sessionKey == "" {
		return "", fmt.Errorf("session store returned an empty key")
	}
	r.created = sessionKey
	return sessionKey, nil
}

// CreatedSession returns the session key created during this request, or ""
// if none was created. The HTTP layer uses it to set the session cookie.
func (r *Resolver) CreatedSession() string {
	return r.created
}
