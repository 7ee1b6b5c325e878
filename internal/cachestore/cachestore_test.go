package cachestore

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemCacheStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemCacheStore(10, time.Minute)

	v, err := s.Get(ctx, "site_scale", "current")
	require.NoError(t, err)
	assert.Empty(t, v, "miss returns empty string")

	require.NoError(t, s.Set(ctx, "site_scale", "current", `{"scale":1.2}`))
	v, err = s.Get(ctx, "site_scale", "current")
	require.NoError(t, err)
	assert.Equal(t, `{"scale":1.2}`, v)

	v, err = s.Get(ctx, "site_scale", "other")
	require.NoError(t, err)
	assert.Empty(t, v)

	require.NoError(t, s.Purge(ctx, "site_scale", "current"))
	v, err = s.Get(ctx, "site_scale", "current")
	require.NoError(t, err)
	assert.Empty(t, v)
}

func TestMemCacheStoreExpires(t *testing.T) {
	ctx := context.Background()
	s := NewMemCacheStore(10, 20*time.Millisecond)
	require.NoError(t, s.Set(ctx, "n", "k", "v"))
	assert.Eventually(t, func() bool {
		v, _ := s.Get(ctx, "n", "k")
		return v == ""
	}, time.Second, 10*time.Millisecond)
}

func TestMemCacheStoreCapacity(t *testing.T) {
	ctx := context.Background()
	s := NewMemCacheStore(0, time.Minute)
	for i := 0; i < DefaultMemCapacity+5; i++ {
		require.NoError(t, s.Set(ctx, "n", strconv.Itoa(i), "v"))
	}
	assert.Equal(t, DefaultMemCapacity, s.Len(), "zero capacity is not unbounded")

	v, err := s.Get(ctx, "n", "0")
	require.NoError(t, err)
	assert.Empty(t, v, "oldest entry was evicted")

	small := NewMemCacheStore(1, time.Minute)
	require.NoError(t, small.Set(ctx, "a", "k", "1"))
	require.NoError(t, small.Set(ctx, "b", "k", "2"))
	v, err = small.Get(ctx, "b", "k")
	require.NoError(t, err)
	assert.Equal(t, "2", v)
	assert.Equal(t, 1, small.Len())
	_, ok := small.Data.Get(cacheKey("b", "k"))
	assert.True(t, ok)
}

func TestMemCacheStoreCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s := NewMemCacheStore(4, time.Minute)
	assert.ErrorIs(t, s.Set(ctx, "n", "k", "v"), context.Canceled)
	_, err := s.Get(ctx, "n", "k")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, s.Len())
}

func TestNewFallsBackToMemory(t *testing.T) {
	_, ok := New("", 10, time.Minute).(MemCacheStore)
	assert.True(t, ok)

	_, ok = New("not a url", 10, time.Minute).(MemCacheStore)
	assert.True(t, ok)
}
