package rate

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

type RateLimit struct {
	Window  time.Duration // e.g., 1 minute, 1 hour
	MaxJobs int           // max jobs per window
}

type QueueConfig struct {
	Name      string
	RateLimit RateLimit
}

// QueueRateLimiter is a sliding-window counter per identifier, kept in a
// redis sorted set.
type QueueRateLimiter struct {
	redis  *redis.Client
	config QueueConfig
}

func NewQueueRateLimiter(redis *redis.Client, config QueueConfig) *QueueRateLimiter {
	return &QueueRateLimiter{
		redis:  redis,
		config: config,
	}
}

// Key is the sorted set holding the window of identifier
func (qrl *QueueRateLimiter) Key(identifier string) string {
	return fmt.Sprintf("queue_rate_limit:%s:%s", qrl.config.Name, identifier)
}

// Allow records one job for identifier and reports whether it fits in the window.
func (qrl *QueueRateLimiter) Allow(ctx context.Context, identifier string) (bool, error) {
	if qrl.config.RateLimit.MaxJobs <= 0 {
		return true, nil
	}
	key := qrl.Key(identifier)

	pipe := qrl.redis.Pipeline()
	now := time.Now()
	windowStart := now.Add(-qrl.config.RateLimit.Window).UnixMilli()

	// Remove old entries
	pipe.ZRemRangeByScore(ctx, key, "0", strconv.FormatInt(windowStart, 10))

	// Count current window
	count := pipe.ZCard(ctx, key)

	// Members must be unique or two jobs in the same instant count once
	pipe.ZAdd(ctx, key, redis.Z{Score: float64(now.UnixMilli()), Member: uuid.NewString()})

	pipe.Expire(ctx, key, qrl.config.RateLimit.Window*2)

	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("redis pipeline error: %w", err)
	}
	return count.Val() < int64(qrl.config.RateLimit.MaxJobs), nil
}
