package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dropship/backend/internal/domain/dropship"
)

// RedisTokenCache stores provider access tokens in Redis so all instances
// share one token per provider account.
type RedisTokenCache struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisTokenCache creates a token cache backed by an existing Redis client
func NewRedisTokenCache(client *redis.Client, keyPrefix string) *RedisTokenCache {
	if keyPrefix == "" {
		keyPrefix = "provider:token:"
	}
	return &RedisTokenCache{
		client:    client,
		keyPrefix: keyPrefix,
	}
}

// Get returns the cached token, or false when absent or on Redis error.
// A cache miss on error just forces a token refresh, so errors are not
// surfaced to the caller.
func (c *RedisTokenCache) Get(ctx context.Context, key string) (string, bool) {
	token, err := c.client.Get(ctx, c.keyPrefix+key).Result()
	if err != nil {
		// redis.Nil and transient failures are both a miss
		return "", false
	}
	return token, true
}

// Set stores a token with the given TTL
func (c *RedisTokenCache) Set(ctx context.Context, key, token string, ttl time.Duration) {
	c.client.Set(ctx, c.keyPrefix+key, token, ttl)
}

// Delete removes a cached token
func (c *RedisTokenCache) Delete(ctx context.Context, key string) {
	c.client.Del(ctx, c.keyPrefix+key)
}

// Ensure RedisTokenCache implements TokenCache
var _ dropship.TokenCache = (*RedisTokenCache)(nil)
