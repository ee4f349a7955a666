package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.opentelemetry.io/otel"
)

var cacheTracer = otel.Tracer("repository.tokencache")

// TokenCache maps live bearer tokens to user ids so verification can skip
// the token-indexed database lookup. Entries expire no later than the
// token itself; the database stays the source of truth.
type TokenCache interface {
	Get(ctx context.Context, token string) (int64, bool, error)
	Set(ctx context.Context, token string, userID int64, ttl time.Duration) error
	Delete(ctx context.Context, token string) error
}

type redisTokenCache struct {
	rdb *redis.Client
}

// NewTokenCache creates a new Redis-based TokenCache.
func NewTokenCache(rdb *redis.Client) TokenCache {
	return &redisTokenCache{rdb: rdb}
}

func tokenKey(token string) string {
	return fmt.Sprintf("token:%s", token)
}

// Get looks up the user id cached for a token. The second return value
// reports whether the entry was present.
func (c *redisTokenCache) Get(ctx context.Context, token string) (int64, bool, error) {
	ctx, span := cacheTracer.Start(ctx, "TokenCache.Get")
	defer span.End()

	id, err := c.rdb.Get(ctx, tokenKey(token)).Int64()
	if err == redis.Nil {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return id, true, nil
}

// Set caches a token for its remaining lifetime.
func (c *redisTokenCache) Set(ctx context.Context, token string, userID int64, ttl time.Duration) error {
	ctx, span := cacheTracer.Start(ctx, "TokenCache.Set")
	defer span.End()

	if ttl <= 0 {
		return nil
	}
	return c.rdb.Set(ctx, tokenKey(token), userID, ttl).Err()
}

// Delete drops a cached token, used when a token is rotated out.
func (c *redisTokenCache) Delete(ctx context.Context, token string) error {
	ctx, span := cacheTracer.Start(ctx, "TokenCache.Delete")
	defer span.End()

	return c.rdb.Del(ctx, tokenKey(token)).Err()
}
