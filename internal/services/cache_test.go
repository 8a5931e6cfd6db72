package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cachedSummary struct {
	Total int `json:"total"`
}

func TestSummaryCacheRoundTrip(t *testing.T) {
	mr, rdb := newTestRedis(t)
	c := NewSummaryCache(rdb)
	ctx := context.Background()

	var got cachedSummary
	key, hit, err := c.Get(ctx, "user-1", "all", &got)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, "cache:summary:user-1:0:all", key)

	require.NoError(t, c.Set(ctx, key, cachedSummary{Total: 4}))
	assert.True(t, mr.Exists("cache:summary:user-1:0:all"))

	_, hit, err = c.Get(ctx, "user-1", "all", &got)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, 4, got.Total)
}

func TestSummaryCacheInvalidateIsPerUser(t *testing.T) {
	_, rdb := newTestRedis(t)
	c := NewSummaryCache(rdb)
	ctx := context.Background()

	store := func(userID, rangeKey string, total int) {
		key, _, err := c.Get(ctx, userID, rangeKey, &cachedSummary{})
		require.NoError(t, err)
		require.NoError(t, c.Set(ctx, key, cachedSummary{Total: total}))
	}
	store("user-1", "all", 1)
	store("user-1", "2024-01-01..2024-01-31", 2)
	store("user-2", "all", 3)

	require.NoError(t, c.Invalidate(ctx, "user-1"))

	var got cachedSummary
	for _, r := range []string{"all", "2024-01-01..2024-01-31"} {
		_, hit, err := c.Get(ctx, "user-1", r, &got)
		require.NoError(t, err)
		assert.False(t, hit, r)
	}

	_, hit, err := c.Get(ctx, "user-2", "all", &got)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, 3, got.Total)
}

func TestSummaryCacheSetAfterInvalidateStaysUnreachable(t *testing.T) {
	_, rdb := newTestRedis(t)
	c := NewSummaryCache(rdb)
	ctx := context.Background()

	key, hit, err := c.Get(ctx, "user-1", "all", &cachedSummary{})
	require.NoError(t, err)
	require.False(t, hit)

	// A write lands between the miss and the store of the recomputed value.
	require.NoError(t, c.Invalidate(ctx, "user-1"))
	require.NoError(t, c.Set(ctx, key, cachedSummary{Total: 0}))

	var got cachedSummary
	next, hit, err := c.Get(ctx, "user-1", "all", &got)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.NotEqual(t, key, next)
}
