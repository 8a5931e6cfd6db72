package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// CacheKeyPrefix is the Redis key prefix for cached data
	CacheKeyPrefix = "cache:"
	// SummaryGenKeyPrefix holds the per-user generation counter that versions cached summaries
	SummaryGenKeyPrefix = "summary_gen:"
	// DefaultCacheTTL bounds how long an unused summary stays in Redis
	DefaultCacheTTL = 6 * time.Hour
)

// SummaryCache caches analytics summaries per user and date range. Invalidate bumps
// the user's generation so every previously cached range becomes unreachable.
type SummaryCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewSummaryCache(rdb *redis.Client) *SummaryCache {
	return &SummaryCache{rdb: rdb, ttl: DefaultCacheTTL}
}

func (c *SummaryCache) generation(ctx context.Context, userID string) (int64, error) {
	gen, err := c.rdb.Get(ctx, SummaryGenKeyPrefix+userID).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

func (c *SummaryCache) key(ctx context.Context, userID, rangeKey string) (string, error) {
	gen, err := c.generation(ctx, userID)
	if err != nil {
		return "", err
	}
	return CacheKey(fmt.Sprintf("summary:%s:%d", userID, gen), rangeKey), nil
}

// Get loads a cached summary into dest. It also returns the key resolved from
// the user's generation at call time; pass it to Set so a summary computed from
// rows read after this call is stored under that generation and nowhere newer.
// A miss returns false with no error.
func (c *SummaryCache) Get(ctx context.Context, userID, rangeKey string, dest interface{}) (string, bool, error) {
	key, err := c.key(ctx, userID, rangeKey)
	if err != nil {
		return "", false, err
	}

	val, err := c.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return key, false, nil
	}
	if err != nil {
		return key, false, err
	}

	if err := json.Unmarshal(val, dest); err != nil {
		return key, false, err
	}
	return key, true, nil
}

// Set stores value under a key returned by Get.
func (c *SummaryCache) Set(ctx context.Context, key string, value interface{}) error {
	jsonData, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, key, jsonData, c.ttl).Err()
}

// Invalidate drops every cached summary of the user.
func (c *SummaryCache) Invalidate(ctx context.Context, userID string) error {
	return c.rdb.Incr(ctx, SummaryGenKeyPrefix+userID).Err()
}

// CacheKey generates a cache key for a specific resource
func CacheKey(resource string, identifier string) string {
	return fmt.Sprintf("%s%s:%s", CacheKeyPrefix, resource, identifier)
}
