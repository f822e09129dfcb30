package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/lgramweb/lgram-web/internal/models"
)

const (
	// DefaultTTL is the session lifetime applied when none is set explicitly.
	DefaultTTL = 30 * time.Minute

	// keyPrefix namespaces session documents in Redis.
	keyPrefix = "lgram:session:"
	// expiryIndexKey is a sorted set of session keys scored by expiry time,
	// consulted by the retention sweep.
	expiryIndexKey = "lgram:sessions:expiry"
	// prefPrefix namespaces preference entries inside a session document so
	// they cannot collide with other session data.
	prefPrefix = "pref_"

	// casRetries bounds the WATCH compare-and-swap loop on activity appends.
	casRetries = 5
)

// sessionDoc is the JSON document stored per session key.
type sessionDoc struct {
	Entries            map[string]any             `json:"entries,omitempty"`
	GenerationSettings *models.GenerationSettings `json:"generation_settings,omitempty"`
	RecentActivities   *ActivityRing              `json:"recent_activities,omitempty"`
	LastActivity       time.Time                  `json:"last_activity"`
}

func newSessionDoc() *sessionDoc {
	return &sessionDoc{Entries: make(map[string]any)}
}

// Store is the Redis-backed session store. All operations are scoped to one
// identity's session key. Reads on a missing or expired session return
// defaults; writes recreate the session so data is never silently dropped.
type Store struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewStore connects to Redis and returns a session store
func NewStore(redisURL string, ttl time.Duration, logger *zap.Logger) (*Store, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewStoreWithClient(client, ttl, logger), nil
}

// NewStoreWithClient wraps an existing Redis client. Used by the server wiring
// to share one client between the session store and the rate limiter.
func NewStoreWithClient(client *redis.Client, ttl time.Duration, logger *zap.Logger) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{client: client, ttl: ttl, logger: logger}
}

// Close closes the Redis connection
func (s *Store) Close() error {
	return s.client.Close()
}

// Ping checks if Redis is reachable
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Client exposes the underlying Redis client for collaborators that share
// the connection (the rate limiter store).
func (s *Store) Client() *redis.Client {
	return s.client
}

func (s *Store) key(sessionKey string) string {
	return keyPrefix + sessionKey
}

// Create allocates a new session with the default lifetime and returns its key.
func (s *Store) Create(ctx context.Context) (string, error) {
	sessionKey := uuid.NewString()
	doc := newSessionDoc()
	doc.LastActivity = time.Now()
	if err := s.save(ctx, sessionKey, doc); err != nil {
		return "", err
	}
	return sessionKey, nil
}

// get loads a session document. Missing and expired sessions resolve to an
// empty document; storage failures also degrade to defaults but are logged.
func (s *Store) get(ctx context.Context, sessionKey string) *sessionDoc {
	raw, err := s.client.Get(ctx, s.key(sessionKey)).Bytes()
	if errors.Is(err, redis.Nil) {
		return newSessionDoc()
	}
	if err != nil {
		s.logger.Warn("session_read_failed",
			zap.String("session_key", sessionKey),
			zap.Error(err),
		)
		return newSessionDoc()
	}

	doc := newSessionDoc()
	if err := json.Unmarshal(raw, doc); err != nil {
		s.logger.Warn("session_decode_failed",
			zap.String("session_key", sessionKey),
			zap.Error(err),
		)
		return newSessionDoc()
	}
	if doc.Entries == nil {
		doc.Entries = make(map[string]any)
	}
	return doc
}

// save writes a session document, preserving the remaining TTL. A session
// without a TTL (new or just expired) gets the default lifetime.
func (s *Store) save(ctx context.Context, sessionKey string, doc *sessionDoc) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}

	key := s.key(sessionKey)
	if err := s.client.Set(ctx, key, raw, redis.KeepTTL).Err(); err != nil {
		return fmt.Errorf("%w: failed to write session: %v", models.ErrStorage, err)
	}

	ttl, err := s.client.TTL(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("%w: failed to read session ttl: %v", models.ErrStorage, err)
	}
	if ttl < 0 {
		return s.expireAt(ctx, sessionKey, time.Now().Add(s.ttl))
	}
	return nil
}

// expireAt applies an absolute expiry to the session and updates the index.
// Account documents (user_ keys) stay out of the index: a logged-in visitor
// already has a browser session there, and counting both would double them in
// ActiveCount and the retention sweep. Redis reclaims account documents on
// TTL expiry alone.
func (s *Store) expireAt(ctx context.Context, sessionKey string, expiry time.Time) error {
	pipe := s.client.Pipeline()
	pipe.ExpireAt(ctx, s.key(sessionKey), expiry)
	if !strings.HasPrefix(sessionKey, IdentityKeyPrefix) {
		pipe.ZAdd(ctx, expiryIndexKey, redis.Z{Score: float64(expiry.Unix()), Member: sessionKey})
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("%w: failed to set session expiry: %v", models.ErrStorage, err)
	}
	return nil
}

// Preference returns a namespaced preference value, or def if absent.
func (s *Store) Preference(ctx context.Context, sessionKey, key string, def any) any {
	doc := s.get(ctx, sessionKey)
	if v, ok := doc.Entries[prefPrefix+key]; ok {
		return v
	}
	return def
}

// SetPreference stores a namespaced preference value. Last write wins.
func (s *Store) SetPreference(ctx context.Context, sessionKey, key string, value any) error {
	doc := s.get(ctx, sessionKey)
	doc.Entries[prefPrefix+key] = value
	return s.save(ctx, sessionKey, doc)
}

// PreferenceKeys lists the stored preference keys, namespace stripped.
func (s *Store) PreferenceKeys(ctx context.Context, sessionKey string) []string {
	doc := s.get(ctx, sessionKey)
	var keys []string
	for k := range doc.Entries {
		if len(k) > len(prefPrefix) && k[:len(prefPrefix)] == prefPrefix {
			keys = append(keys, k[len(prefPrefix):])
		}
	}
	return keys
}

// GenerationSettings returns the stored generation settings, or the fixed
// defaults if absent. Never fails.
func (s *Store) GenerationSettings(ctx context.Context, sessionKey string) models.GenerationSettings {
	doc := s.get(ctx, sessionKey)
	if doc.GenerationSettings == nil {
		return models.DefaultGenerationSettings()
	}
	settings := *doc.GenerationSettings
	settings.Clamp()
	return settings
}

// SetGenerationSettings stores generation settings, clamping numeric fields
// into their valid ranges first.
func (s *Store) SetGenerationSettings(ctx context.Context, sessionKey string, settings models.GenerationSettings) error {
	settings.Clamp()
	doc := s.get(ctx, sessionKey)
	doc.GenerationSettings = &settings
	return s.save(ctx, sessionKey, doc)
}

// RecordActivity appends an entry to the bounded recent-activity buffer. The
// read-modify-write runs under a Redis WATCH so the cap-20 invariant holds
// under interleaved appends to the same session.
func (s *Store) RecordActivity(ctx context.Context, sessionKey string, kind models.ActionKind, metadata map[string]any) error {
	activity := models.SessionActivity{
		Type:      kind,
		Timestamp: time.Now(),
		Metadata:  metadata,
	}

	key := s.key(sessionKey)
	txn := func(tx *redis.Tx) error {
		doc := newSessionDoc()
		raw, err := tx.Get(ctx, key).Bytes()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if err == nil {
			if decodeErr := json.Unmarshal(raw, doc); decodeErr != nil {
				doc = newSessionDoc()
			}
		}
		if doc.Entries == nil {
			doc.Entries = make(map[string]any)
		}
		if doc.RecentActivities == nil {
			doc.RecentActivities = NewActivityRing()
		}
		doc.RecentActivities.Push(activity)
		doc.LastActivity = activity.Timestamp

		encoded, err := json.Marshal(doc)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, encoded, redis.KeepTTL)
			return nil
		})
		return err
	}

	var err error
	for i := 0; i < casRetries; i++ {
		err = s.client.Watch(ctx, txn, key)
		if err == nil {
			return s.ensureTTL(ctx, sessionKey)
		}
		if !errors.Is(err, redis.TxFailedErr) {
			break
		}
	}
	return fmt.Errorf("%w: failed to record session activity: %v", models.ErrStorage, err)
}

// ensureTTL applies the default lifetime if the session has none.
func (s *Store) ensureTTL(ctx context.Context, sessionKey string) error {
	ttl, err := s.client.TTL(ctx, s.key(sessionKey)).Result()
	if err != nil {
		return fmt.Errorf("%w: failed to read session ttl: %v", models.ErrStorage, err)
	}
	if ttl < 0 {
		return s.expireAt(ctx, sessionKey, time.Now().Add(s.ttl))
	}
	return nil
}

// RecentActivities returns the recent-activity buffer in chronological order,
// optionally filtered by type (empty kind means no filter).
func (s *Store) RecentActivities(ctx context.Context, sessionKey string, kind models.ActionKind) []models.SessionActivity {
	doc := s.get(ctx, sessionKey)
	if doc.RecentActivities == nil {
		return nil
	}
	if kind == "" {
		return doc.RecentActivities.Entries()
	}
	return doc.RecentActivities.Filter(kind)
}

// LastActivity returns the session's last-activity stamp, zero if unknown.
func (s *Store) LastActivity(ctx context.Context, sessionKey string) time.Time {
	return s.get(ctx, sessionKey).LastActivity
}

// SetExpiry replaces the session lifetime with the given duration.
func (s *Store) SetExpiry(ctx context.Context, sessionKey string, d time.Duration) error {
	if d <= 0 {
		d = s.ttl
	}
	return s.expireAt(ctx, sessionKey, time.Now().Add(d))
}

// ExtendExpiry adds delta to the session's remaining lifetime rather than
// replacing it. A session without a TTL gets the default plus delta.
func (s *Store) ExtendExpiry(ctx context.Context, sessionKey string, delta time.Duration) error {
	remaining, err := s.client.TTL(ctx, s.key(sessionKey)).Result()
	if err != nil {
		return fmt.Errorf("%w: failed to read session ttl: %v", models.ErrStorage, err)
	}
	if remaining < 0 {
		remaining = s.ttl
	}
	return s.expireAt(ctx, sessionKey, time.Now().Add(remaining+delta))
}

// ExpiresAt returns the session's expiry timestamp, zero if unknown.
func (s *Store) ExpiresAt(ctx context.Context, sessionKey string) time.Time {
	ttl, err := s.client.TTL(ctx, s.key(sessionKey)).Result()
	if err != nil || ttl < 0 {
		return time.Time{}
	}
	return time.Now().Add(ttl)
}

// Delete removes a session and its index entry.
func (s *Store) Delete(ctx context.Context, sessionKey string) error {
	pipe := s.client.Pipeline()
	pipe.Del(ctx, s.key(sessionKey))
	pipe.ZRem(ctx, expiryIndexKey, sessionKey)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("%w: failed to delete session: %v", models.ErrStorage, err)
	}
	return nil
}

// ActiveCount returns the number of sessions whose expiry has not passed.
func (s *Store) ActiveCount(ctx context.Context) (int, error) {
	now := strconv.FormatInt(time.Now().Unix(), 10)
	n, err := s.client.ZCount(ctx, expiryIndexKey, now, "+inf").Result()
	if err != nil {
		return 0, fmt.Errorf("%w: failed to count active sessions: %v", models.ErrStorage, err)
	}
	return int(n), nil
}

// CountExpired returns the number of sessions whose expiry has passed,
// without deleting anything. Used by dry-run sweeps.
func (s *Store) CountExpired(ctx context.Context) (int, error) {
	now := strconv.FormatInt(time.Now().Unix(), 10)
	n, err := s.client.ZCount(ctx, expiryIndexKey, "-inf", "("+now).Result()
	if err != nil {
		return 0, fmt.Errorf("%w: failed to count expired sessions: %v", models.ErrStorage, err)
	}
	return int(n), nil
}

// DeleteExpired removes sessions whose expiry has passed and returns how many
// were dropped from the index. Redis reclaims the documents themselves on
// TTL expiry; this keeps the index consistent and counts the sweep.
func (s *Store) DeleteExpired(ctx context.Context) (int, error) {
	now := strconv.FormatInt(time.Now().Unix(), 10)
	max := "(" + now

	expired, err := s.client.ZRangeByScore(ctx, expiryIndexKey, &redis.ZRangeBy{
		Min: "-inf",
		Max: max,
	}).Result()
	if err != nil {
		return 0, fmt.Errorf("%w: failed to list expired sessions: %v", models.ErrStorage, err)
	}
	if len(expired) == 0 {
		return 0, nil
	}

	keys := make([]string, 0, len(expired))
	for _, sessionKey := range expired {
		keys = append(keys, s.key(sessionKey))
	}

	pipe := s.client.Pipeline()
	pipe.Del(ctx, keys...)
	pipe.ZRemRangeByScore(ctx, expiryIndexKey, "-inf", max)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("%w: failed to delete expired sessions: %v", models.ErrStorage, err)
	}

	return len(expired), nil
}
