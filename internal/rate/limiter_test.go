package rate

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis.Run failed: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return mr, client
}

func TestAllowLookupWithinBudget(t *testing.T) {
	_, rdb := newTestRedis(t)
	l := New(rdb, Config{MaxLookups: 3, Cooldown: time.Minute})

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if err := l.AllowLookup(ctx, "abc123", ""); err != nil {
			t.Fatalf("lookup %d rejected: %v", i, err)
		}
	}
	if err := l.AllowLookup(ctx, "abc123", ""); !errors.Is(err, ErrRateLimited) {
		t.Fatalf("lookup over budget = %v, want ErrRateLimited", err)
	}
}

func TestAllowLookupCountsPerCode(t *testing.T) {
	_, rdb := newTestRedis(t)
	l := New(rdb, Config{MaxLookups: 1, Cooldown: time.Minute})

	ctx := context.Background()
	if err := l.AllowLookup(ctx, "code-a", ""); err != nil {
		t.Fatalf("code-a rejected: %v", err)
	}
	// A different code has its own window.
	if err := l.AllowLookup(ctx, "code-b", ""); err != nil {
		t.Fatalf("code-b rejected: %v", err)
	}
	if err := l.AllowLookup(ctx, "code-a", ""); !errors.Is(err, ErrRateLimited) {
		t.Fatalf("code-a second lookup = %v, want ErrRateLimited", err)
	}
}

func TestAllowLookupIPThrottle(t *testing.T) {
	_, rdb := newTestRedis(t)
	l := New(rdb, Config{EnableIPThrottle: true, MaxLookups: 2, Cooldown: time.Minute})

	ctx := context.Background()
	// Same IP hammering different codes still runs out of budget.
	if err := l.AllowLookup(ctx, "code-a", "203.0.113.9"); err != nil {
		t.Fatalf("first lookup rejected: %v", err)
	}
	if err := l.AllowLookup(ctx, "code-b", "203.0.113.9"); err != nil {
		t.Fatalf("second lookup rejected: %v", err)
	}
	if err := l.AllowLookup(ctx, "code-c", "203.0.113.9"); !errors.Is(err, ErrRateLimited) {
		t.Fatalf("third lookup = %v, want ErrRateLimited", err)
	}
}

func TestWindowExpires(t *testing.T) {
	mr, rdb := newTestRedis(t)
	l := New(rdb, Config{MaxLookups: 1, Cooldown: time.Minute})

	ctx := context.Background()
	if err := l.AllowLookup(ctx, "abc123", ""); err != nil {
		t.Fatalf("first lookup rejected: %v", err)
	}
	if err := l.AllowLookup(ctx, "abc123", ""); !errors.Is(err, ErrRateLimited) {
		t.Fatalf("second lookup = %v, want ErrRateLimited", err)
	}

	mr.FastForward(time.Minute + time.Second)

	if err := l.AllowLookup(ctx, "abc123", ""); err != nil {
		t.Fatalf("lookup after window rejected: %v", err)
	}
}

func TestResetClearsCounters(t *testing.T) {
	_, rdb := newTestRedis(t)
	l := New(rdb, Config{MaxLookups: 1, Cooldown: time.Minute})

	ctx := context.Background()
	if err := l.AllowLookup(ctx, "abc123", ""); err != nil {
		t.Fatalf("first lookup rejected: %v", err)
	}
	if err := l.Reset(ctx, "abc123", ""); err != nil {
		t.Fatalf("Reset failed: %v", err)
	}
	if err := l.AllowLookup(ctx, "abc123", ""); err != nil {
		t.Fatalf("lookup after reset rejected: %v", err)
	}
}

func TestLookupCount(t *testing.T) {
	_, rdb := newTestRedis(t)
	l := New(rdb, Config{MaxLookups: 10, Cooldown: time.Minute})

	ctx := context.Background()
	if got, err := l.LookupCount(ctx, "abc123"); err != nil || got != 0 {
		t.Fatalf("LookupCount on fresh code = %d, %v", got, err)
	}
	for i := 0; i < 4; i++ {
		if err := l.AllowLookup(ctx, "abc123", ""); err != nil {
			t.Fatalf("lookup %d rejected: %v", i, err)
		}
	}
	if got, err := l.LookupCount(ctx, "abc123"); err != nil || got != 4 {
		t.Fatalf("LookupCount = %d, %v, want 4", got, err)
	}
}

func TestRedisDownReturnsUnavailable(t *testing.T) {
	mr, rdb := newTestRedis(t)
	l := New(rdb, Config{MaxLookups: 1, Cooldown: time.Minute})

	mr.Close()
	if err := l.AllowLookup(context.Background(), "abc123", ""); !errors.Is(err, ErrRedisUnavailable) {
		t.Fatalf("AllowLookup with redis down = %v, want ErrRedisUnavailable", err)
	}
}
