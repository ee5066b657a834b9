package ratelimit

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

var fixedWindowScript = redis.NewScript(`
local count = redis.call("INCR", KEYS[1])
if count == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return count
`)

// RedisRateLimiter is a fixed-window limiter shared by every server instance.
// It has no ban phase; the window itself is the penalty.
type RedisRateLimiter struct {
	client *redis.Client
	prefix string
	limit  int
	window time.Duration
	now    func() time.Time
}

func NewRedisRateLimiter(client *redis.Client, prefix string, config *Config) *RedisRateLimiter {
	if config == nil {
		config = DefaultAuthConfig()
	}
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = "assistant:ratelimit"
	}
	return &RedisRateLimiter{
		client: client,
		prefix: prefix,
		limit:  config.MaxAttempts,
		window: config.WindowSize,
		now:    time.Now,
	}
}

func (l *RedisRateLimiter) key(identifier string, slot int64) string {
	if identifier == "" {
		identifier = "unknown"
	}
	return fmt.Sprintf("%s:%s:%d", l.prefix, identifier, slot)
}

func (l *RedisRateLimiter) slot(now time.Time) (int64, time.Time) {
	windowMs := l.window.Milliseconds()
	slot := now.UTC().UnixMilli() / windowMs
	return slot, time.UnixMilli((slot + 1) * windowMs)
}

// Allow fails closed when Redis cannot be reached.
func (l *RedisRateLimiter) Allow(identifier string) (bool, *RateLimitInfo) {
	slot, reset := l.slot(l.now())
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	count, err := fixedWindowScript.Run(ctx, l.client, []string{l.key(identifier, slot)}, l.window.Milliseconds()).Int64()
	if err != nil {
		log.Printf("[RateLimit] Redis error for %s: %v", identifier, err)
		return false, &RateLimitInfo{Limit: l.limit, ResetTime: reset, RetryAfter: time.Minute}
	}

	if count > int64(l.limit) {
		return false, &RateLimitInfo{
			Limit:      l.limit,
			ResetTime:  reset,
			RetryAfter: time.Until(reset),
		}
	}
	return true, &RateLimitInfo{
		Allowed:   true,
		Limit:     l.limit,
		Remaining: l.limit - int(count),
		ResetTime: reset,
	}
}

func (l *RedisRateLimiter) RecordSuccess(identifier string) {
	slot, _ := l.slot(l.now())
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := l.client.Del(ctx, l.key(identifier, slot)).Err(); err != nil {
		log.Printf("[RateLimit] Redis reset failed for %s: %v", identifier, err)
	}
}
