package rate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Config holds lookup throttle tuning parameters.
type Config struct {
	EnableIPThrottle bool
	MaxLookups       int
	Cooldown         time.Duration
}

// Limiter enforces per-code and per-IP lookup budgets using Redis
// counters. Unlike a failed-login limiter, every lookup counts against the
// window, successful or not.
type Limiter struct {
	redis  redis.UniversalClient
	config Config
}

// New creates a lookup [Limiter] backed by the given Redis client.
func New(redisClient redis.UniversalClient, cfg Config) *Limiter {
	return &Limiter{
		redis:  redisClient,
		config: cfg,
	}
}

// AllowLookup records one lookup for the code+IP pair and reports whether
// it is within budget. Returns ErrRateLimited when either counter is over.
func (l *Limiter) AllowLookup(ctx context.Context, code, ip string) error {
	count, err := l.incrementWithTTL(ctx, codeKey(code), l.config.Cooldown)
	if err != nil {
		return err
	}
	if count > int64(l.config.MaxLookups) {
		return ErrRateLimited
	}

	if l.config.EnableIPThrottle && ip != "" {
		count, err = l.incrementWithTTL(ctx, ipKey(ip), l.config.Cooldown)
		if err != nil {
			return err
		}
		if count > int64(l.config.MaxLookups) {
			return ErrRateLimited
		}
	}

	return nil
}

// Reset clears the counters for the code+IP pair. Exposed for operator
// tooling; the fixed window otherwise expires on its own.
func (l *Limiter) Reset(ctx context.Context, code, ip string) error {
	keys := []string{codeKey(code)}
	if l.config.EnableIPThrottle && ip != "" {
		keys = append(keys, ipKey(ip))
	}

	if err := l.redis.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	return nil
}

// LookupCount returns the current window counter for a code. Missing keys
// return zero.
func (l *Limiter) LookupCount(ctx context.Context, code string) (int, error) {
	count, err := l.redis.Get(ctx, codeKey(code)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	if count < 0 {
		return 0, nil
	}
	return int(count), nil
}

func (l *Limiter) incrementWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	count, err := l.redis.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	// Fixed-window semantics: set TTL only for the first hit in the window.
	if count == 1 {
		if err := l.redis.Expire(ctx, key, ttl).Err(); err != nil {
			return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
		}
	}

	return count, nil
}

func codeKey(code string) string {
	return "clc:" + code
}

func ipKey(ip string) string {
	return "cli:" + ip
}
