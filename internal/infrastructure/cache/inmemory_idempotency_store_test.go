package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryIdempotencyStore_MarkProcessed(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	defer store.Close()
	ctx := context.Background()

	newly, err := store.MarkProcessed(ctx, "evt-1", time.Minute)
	require.NoError(t, err)
	assert.True(t, newly)

	again, err := store.MarkProcessed(ctx, "evt-1", time.Minute)
	require.NoError(t, err)
	assert.False(t, again)

	processed, err := store.IsProcessed(ctx, "evt-1")
	require.NoError(t, err)
	assert.True(t, processed)

	processed, err = store.IsProcessed(ctx, "evt-unknown")
	require.NoError(t, err)
	assert.False(t, processed)
}

func TestInMemoryIdempotencyStore_Expiration(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	defer store.Close()
	ctx := context.Background()

	_, err := store.MarkProcessed(ctx, "evt-ttl", 10*time.Millisecond)
	require.NoError(t, err)

	time.Sleep(20 * time.Millisecond)

	processed, err := store.IsProcessed(ctx, "evt-ttl")
	require.NoError(t, err)
	assert.False(t, processed)

	// Expired entries can be re-marked
	newly, err := store.MarkProcessed(ctx, "evt-ttl", time.Minute)
	require.NoError(t, err)
	assert.True(t, newly)
}

func TestInMemoryIdempotencyStore_Unmark(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	defer store.Close()
	ctx := context.Background()

	_, err := store.MarkProcessed(ctx, "evt-2", time.Minute)
	require.NoError(t, err)

	require.NoError(t, store.Unmark(ctx, "evt-2"))

	processed, err := store.IsProcessed(ctx, "evt-2")
	require.NoError(t, err)
	assert.False(t, processed)

	// Unmarking unknown keys is a no-op
	require.NoError(t, store.Unmark(ctx, "evt-missing"))
}

func TestInMemoryIdempotencyStore_CloseIsIdempotent(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	require.NoError(t, store.Close())
	require.NoError(t, store.Close())
}

func TestInMemoryTokenCache(t *testing.T) {
	c := NewInMemoryTokenCache()
	ctx := context.Background()

	_, ok := c.Get(ctx, "cj")
	assert.False(t, ok)

	c.Set(ctx, "cj", "token-1", time.Minute)
	token, ok := c.Get(ctx, "cj")
	assert.True(t, ok)
	assert.Equal(t, "token-1", token)

	c.Delete(ctx, "cj")
	_, ok = c.Get(ctx, "cj")
	assert.False(t, ok)
}

func TestInMemoryTokenCache_TTL(t *testing.T) {
	c := NewInMemoryTokenCache()
	ctx := context.Background()

	c.Set(ctx, "cj", "token-1", 10*time.Millisecond)
	time.Sleep(20 * time.Millisecond)

	_, ok := c.Get(ctx, "cj")
	assert.False(t, ok)
}
