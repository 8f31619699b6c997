package cache

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCache(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	c := NewMemoryCache("storefront").(*memoryCache)
	c.now = func() time.Time { return now }

	key := c.GenerateKey("cart", "42")
	assert.Equal(t, "storefront:cart:42", key)

	_, ok, err := c.Get(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)

	value := []byte("hello")
	require.NoError(t, c.Set(ctx, key, value, time.Minute))
	value[0] = 'j'

	got, ok, err := c.Get(ctx, key)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "hello", string(got))

	now = now.Add(time.Minute)
	_, ok, err = c.Get(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok, "entry should expire at its ttl")

	require.NoError(t, c.Set(ctx, key, []byte("forever"), 0))
	now = now.Add(24 * time.Hour)
	_, ok, _ = c.Get(ctx, key)
	assert.True(t, ok)

	require.NoError(t, c.Delete(ctx, key))
	_, ok, _ = c.Get(ctx, key)
	assert.False(t, ok)
}

func TestMemoryCacheSweepsExpiredEntriesOnSet(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	c := NewMemoryCache("storefront").(*memoryCache)
	c.now = func() time.Time { return now }

	for i := 0; i < 1000; i++ {
		require.NoError(t, c.Set(ctx, c.GenerateKey("photo", strconv.Itoa(i)), []byte("x"), time.Second))
	}
	require.NoError(t, c.Set(ctx, "kept", []byte("y"), 0))
	assert.Equal(t, 1001, c.Len())

	now = now.Add(time.Hour)
	require.NoError(t, c.Set(ctx, "fresh", []byte("z"), time.Minute))
	assert.Equal(t, 2, c.Len())

	_, ok, _ := c.Get(ctx, "kept")
	assert.True(t, ok)
}

func TestMemoryCacheEvictsLeastRecentlyUsed(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCacheSize("storefront", 2).(*memoryCache)

	require.NoError(t, c.Set(ctx, "a", []byte("1"), 0))
	require.NoError(t, c.Set(ctx, "b", []byte("2"), 0))
	_, ok, _ := c.Get(ctx, "a")
	require.True(t, ok)

	require.NoError(t, c.Set(ctx, "c", []byte("3"), 0))
	assert.Equal(t, 2, c.Len())

	_, ok, _ = c.Get(ctx, "b")
	assert.False(t, ok, "b was least recently used")
	_, ok, _ = c.Get(ctx, "a")
	assert.True(t, ok)
}
