package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sbilibin2017/chat-forum/internal/logger"
)

// RateLimitRepository counts attempts per key in fixed Redis windows.
type RateLimitRepository struct {
	client *redis.Client
	prefix string
}

// NewRateLimitRepository creates a counter store using keys under prefix.
func NewRateLimitRepository(client *redis.Client, prefix string) *RateLimitRepository {
	return &RateLimitRepository{
		client: client,
		prefix: prefix,
	}
}

// Increment bumps the counter for key and returns the new count and the time
// left in the current window. The window starts with the first attempt.
func (r *RateLimitRepository) Increment(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	fullKey := fmt.Sprintf("%s:%s", r.prefix, key)

	pipe := r.client.TxPipeline()
	incr := pipe.Incr(ctx, fullKey)
	pipe.ExpireNX(ctx, fullKey, window)
	ttl := pipe.PTTL(ctx, fullKey)

	_, err := pipe.Exec(ctx)

	logger.FromContext(ctx).Debugw("rate limit counter",
		"key", fullKey,
		"count", incr.Val(),
		"ttl", ttl.Val(),
		"error", err,
	)

	if err != nil {
		return 0, 0, err
	}

	remaining := ttl.Val()
	if remaining < 0 {
		remaining = window
	}

	return incr.Val(), remaining, nil
}
