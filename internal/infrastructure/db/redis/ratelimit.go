package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	defaultMaxAttempts = 10
	defaultWindow      = time.Minute
)

// RateLimiter throttles repeated attempts (login, password reset) with a
// fixed window per scope+key. Key format: ratelimit:<scope>:<key>
type RateLimiter struct {
	client      *redis.Client
	maxAttempts int
	window      time.Duration
}

// NewRateLimiter creates a RateLimiter wrapping the given Redis client.
// Non-positive settings fall back to defaults.
func NewRateLimiter(client *redis.Client, maxAttempts int, window time.Duration) *RateLimiter {
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}
	if window <= 0 {
		window = defaultWindow
	}
	return &RateLimiter{client: client, maxAttempts: maxAttempts, window: window}
}

// Allow counts one attempt and reports whether the caller is still under
// the limit for the current window.
func (rl *RateLimiter) Allow(ctx context.Context, scope, key string) (bool, error) {
	k := rl.key(scope, key)

	n, err := rl.client.Incr(ctx, k).Result()
	if err != nil {
		return false, fmt.Errorf("rate limit incr: %w", err)
	}
	if n == 1 {
		// First attempt in this window starts the clock.
		if err := rl.client.Expire(ctx, k, rl.window).Err(); err != nil {
			return false, fmt.Errorf("rate limit expire: %w", err)
		}
	}
	return n <= int64(rl.maxAttempts), nil
}

func (rl *RateLimiter) key(scope, key string) string {
	return fmt.Sprintf("ratelimit:%s:%s", scope, key)
}
