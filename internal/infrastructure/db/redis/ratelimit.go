package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const rateWindow = time.Minute

// RateLimiter enforces a fixed-window per-subject request limit backed by
// Redis, so the limit holds across multiple process instances.
// Key format: rate:<scope>:<subject>:<window_start_unix>
type RateLimiter struct {
	client *redis.Client
	scope  string
	limit  int
}

// NewRateLimiter creates a limiter allowing limit requests per subject per
// minute under the given scope.
func NewRateLimiter(client *redis.Client, scope string, limit int) *RateLimiter {
	if limit <= 0 {
		limit = 30
	}
	return &RateLimiter{client: client, scope: scope, limit: limit}
}

// Allow reports whether the subject may proceed in the current window. The
// counter key expires with the window, so state cleans itself up.
func (l *RateLimiter) Allow(ctx context.Context, subject string) (bool, error) {
	key := l.key(subject, time.Now())

	n, err := l.client.Incr(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("rate limit incr: %w", err)
	}
	if n == 1 {
		if err := l.client.Expire(ctx, key, rateWindow).Err(); err != nil {
			return false, fmt.Errorf("rate limit expire: %w", err)
		}
	}
	return n <= int64(l.limit), nil
}

func (l *RateLimiter) key(subject string, now time.Time) string {
	window := now.Unix() - now.Unix()%int64(rateWindow/time.Second)
	return fmt.Sprintf("rate:%s:%s:%d", l.scope, subject, window)
}
