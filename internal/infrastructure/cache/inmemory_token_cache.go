package cache

import (
	"context"
	"sync"
	"time"

	"github.com/dropship/backend/internal/domain/dropship"
)

type tokenEntry struct {
	token     string
	expiresAt time.Time
}

// InMemoryTokenCache stores provider access tokens in process memory.
// There is no locking around refresh: two goroutines racing to refresh the
// same token both succeed and the second write wins, which is harmless.
type InMemoryTokenCache struct {
	mu      sync.RWMutex
	entries map[string]tokenEntry
}

// NewInMemoryTokenCache creates a new in-memory token cache
func NewInMemoryTokenCache() *InMemoryTokenCache {
	return &InMemoryTokenCache{
		entries: make(map[string]tokenEntry),
	}
}

// Get returns the cached token, or false when absent or expired
func (c *InMemoryTokenCache) Get(ctx context.Context, key string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, exists := c.entries[key]
	if !exists || time.Now().After(e.expiresAt) {
		return "", false
	}
	return e.token, true
}

// Set stores a token with the given TTL
func (c *InMemoryTokenCache) Set(ctx context.Context, key, token string, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = tokenEntry{
		token:     token,
		expiresAt: time.Now().Add(ttl),
	}
}

// Delete removes a cached token
func (c *InMemoryTokenCache) Delete(ctx context.Context, key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// Ensure InMemoryTokenCache implements TokenCache
var _ dropship.TokenCache = (*InMemoryTokenCache)(nil)
