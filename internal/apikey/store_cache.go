package apikey

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	platformredis "steeple/internal/platform/redis"
	"steeple/pkg/domain"
)

// CachedStore is a read-through Redis cache in front of another Store.
// Quota edits are rare and administrative, so a short TTL is the only
// invalidation mechanism. Cache errors degrade to the inner store.
type CachedStore struct {
	inner  Store
	client *platformredis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewCached decorates inner with a Redis read-through cache.
func NewCached(inner Store, client *platformredis.Client, ttl time.Duration, logger *slog.Logger) *CachedStore {
	return &CachedStore{inner: inner, client: client, ttl: ttl, logger: logger}
}

func (s *CachedStore) GetByID(ctx context.Context, id domain.APIKeyID) (*APIKey, error) {
	cacheKey := "apikey:" + id.String()

	raw, err := s.client.Get(ctx, cacheKey).Bytes()
	if err == nil {
		var key APIKey
		if err := json.Unmarshal(raw, &key); err == nil {
			return &key, nil
		}
		s.logger.WarnContext(ctx, "corrupt api key cache entry, falling through", "api_key_id", id)
	}

	key, err := s.inner.GetByID(ctx, id)
	if err != nil || key == nil {
		return key, err
	}

	if encoded, err := json.Marshal(key); err == nil {
		if err := s.client.Set(ctx, cacheKey, encoded, s.ttl).Err(); err != nil {
			s.logger.WarnContext(ctx, "failed to cache api key", "api_key_id", id, "error", err)
		}
	}
	return key, nil
}
