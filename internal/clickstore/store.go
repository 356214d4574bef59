package clickstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrRedisUnavailable wraps redis transport failures.
var ErrRedisUnavailable = errors.New("redis unavailable")

// recordScript sets the visitor latch if absent and bumps the per-code
// counter only when the latch was newly set. Returns {seen, total}.
const recordScript = `
local seen = redis.call("SET", KEYS[1], "1", "NX", "PX", ARGV[1])
if seen then
  local total = redis.call("INCR", KEYS[2])
  return {0, total}
end
return {1, tonumber(redis.call("GET", KEYS[2]) or "0")}
`

var recordLua = redis.NewScript(recordScript)

// Store keeps click counters and dedup latches in Redis.
type Store struct {
	redis  redis.UniversalClient
	prefix string
}

// NewStore creates a Store. The prefix namespaces all keys; empty defaults
// to "cy".
func NewStore(redisClient redis.UniversalClient, prefix string) *Store {
	if prefix == "" {
		prefix = "cy"
	}
	return &Store{
		redis:  redisClient,
		prefix: prefix,
	}
}

// Record registers one click from a visitor. It reports whether the click
// was a duplicate inside the window and the running total for the code.
// An empty visitorID disables dedup and only bumps the counter.
func (s *Store) Record(ctx context.Context, code, visitorID string, window time.Duration) (duplicate bool, total int64, err error) {
	if visitorID == "" || window <= 0 {
		total, err := s.redis.Incr(ctx, s.countKey(code)).Result()
		if err != nil {
			return false, 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
		}
		return false, total, nil
	}

	res, err := recordLua.Run(ctx, s.redis,
		[]string{s.dedupKey(code, visitorID), s.countKey(code)},
		window.Milliseconds(),
	).Result()
	if err != nil {
		return false, 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	vals, ok := res.([]interface{})
	if !ok || len(vals) != 2 {
		return false, 0, fmt.Errorf("%w: unexpected script reply", ErrRedisUnavailable)
	}
	seen, _ := vals[0].(int64)
	count, _ := vals[1].(int64)
	return seen == 1, count, nil
}

// Count returns the running click total for a code. Missing keys return
// zero.
func (s *Store) Count(ctx context.Context, code string) (int64, error) {
	total, err := s.redis.Get(ctx, s.countKey(code)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return total, nil
}

func (s *Store) countKey(code string) string {
	return s.prefix + ":clicks:" + code
}

func (s *Store) dedupKey(code, visitorID string) string {
	return s.prefix + ":seen:" + code + ":" + visitorID
}
