package cache

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/Dhrubajit-says/FormForge/internal/config"
	"github.com/Dhrubajit-says/FormForge/internal/model"
)

// attemptRetention keeps an attempt readable for a while after its deadline
// so late submissions get TIME_LIMIT_EXCEEDED instead of an unknown attempt.
const attemptRetention = time.Hour

// AttemptStore records timed attempt start times.
type AttemptStore struct {
	cache *RedisCache
}

// NewAttemptStore creates a new AttemptStore.
func NewAttemptStore(cache *RedisCache) *AttemptStore {
	return &AttemptStore{cache: cache}
}

// Save stores the attempt until well after its deadline.
func (s *AttemptStore) Save(ctx context.Context, a *model.Attempt) error {
	ttl := time.Until(a.Deadline) + attemptRetention
	return s.cache.Set(ctx, config.CacheKey.AttemptKey(a.ID.String()), a, ttl)
}

// Get returns the attempt, or nil when it is unknown or expired.
func (s *AttemptStore) Get(ctx context.Context, id uuid.UUID) (*model.Attempt, error) {
	var a model.Attempt
	err := s.cache.Get(ctx, config.CacheKey.AttemptKey(id.String()), &a)
	if errors.Is(err, ErrCacheMiss) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}
