package cache

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/Dhrubajit-says/FormForge/internal/config"
)

// SessionStore tracks the live token IDs of each user in a Redis set so
// tokens can be revoked before they expire.
type SessionStore struct {
	client *redis.Client
}

// NewSessionStore creates a new SessionStore.
func NewSessionStore(client *redis.Client) *SessionStore {
	return &SessionStore{client: client}
}

// Add registers a token ID and extends the set to the token lifetime.
func (s *SessionStore) Add(ctx context.Context, userID uuid.UUID, jti string, ttl time.Duration) error {
	key := config.CacheKey.UserSessionsKey(userID.String())
	pipe := s.client.TxPipeline()
	pipe.SAdd(ctx, key, jti)
	pipe.Expire(ctx, key, ttl)
	_, err := pipe.Exec(ctx)
	return err
}

// Exists reports whether the token ID is still live.
func (s *SessionStore) Exists(ctx context.Context, userID uuid.UUID, jti string) (bool, error) {
	return s.client.SIsMember(ctx, config.CacheKey.UserSessionsKey(userID.String()), jti).Result()
}

// Revoke removes one token ID.
func (s *SessionStore) Revoke(ctx context.Context, userID uuid.UUID, jti string) error {
	return s.client.SRem(ctx, config.CacheKey.UserSessionsKey(userID.String()), jti).Err()
}

// RevokeAll removes every token ID of the user.
func (s *SessionStore) RevokeAll(ctx context.Context, userID uuid.UUID) error {
	return s.client.Del(ctx, config.CacheKey.UserSessionsKey(userID.String())).Err()
}
