package middleware

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	// AIRateLimitWindow is the fixed window for AI enrichment requests
	AIRateLimitWindow = time.Minute
	// AIRateLimitKeyPrefix is the Redis key prefix for per-user AI counters
	AIRateLimitKeyPrefix = "ratelimit:ai:"
)

// AILimiter counts AI enrichment calls per user in Redis.
type AILimiter struct {
	rdb   *redis.Client
	limit int
	log   *zap.SugaredLogger
}

func NewAILimiter(rdb *redis.Client, limit int, log *zap.SugaredLogger) *AILimiter {
	return &AILimiter{rdb: rdb, limit: limit, log: log}
}

// Allow increments userID's counter and reports whether the call may proceed and
// how many remain. Redis failures allow the request.
func (l *AILimiter) Allow(ctx context.Context, userID string) (bool, int) {
	key := AIRateLimitKeyPrefix + userID

	// ExpireNX also repairs a counter left without a TTL
	pipe := l.rdb.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.ExpireNX(ctx, key, AIRateLimitWindow)
	if _, err := pipe.Exec(ctx); err != nil {
		l.log.Warnw("ai rate limit unavailable, allowing request", "error", err)
		return true, l.limit
	}
	n := incr.Val()

	count := int(n)
	if count > l.limit {
		return false, 0
	}
	return true, l.limit - count
}

// AIRateLimit must run after RequireSession.
func AIRateLimit(l *AILimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ok, remaining := l.Allow(r.Context(), UserID(r.Context()))

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(l.limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
			if !ok {
				w.Header().Set("Retry-After", strconv.Itoa(int(AIRateLimitWindow.Seconds())))
				writeError(w, http.StatusTooManyRequests, "Too many AI requests. Please try again in a minute.")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
