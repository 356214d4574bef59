package clickstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestStore(t *testing.T) (*miniredis.Miniredis, *Store) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis.Run failed: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return mr, NewStore(client, "")
}

func TestRecordCountsDistinctVisitors(t *testing.T) {
	_, store := newTestStore(t)
	ctx := context.Background()

	dup, total, err := store.Record(ctx, "abc123", "visitor-1", time.Minute)
	if err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	if dup || total != 1 {
		t.Fatalf("first click = dup %v total %d", dup, total)
	}

	dup, total, err = store.Record(ctx, "abc123", "visitor-2", time.Minute)
	if err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	if dup || total != 2 {
		t.Fatalf("second visitor = dup %v total %d", dup, total)
	}
}

func TestRecordDedupsWithinWindow(t *testing.T) {
	_, store := newTestStore(t)
	ctx := context.Background()

	if _, _, err := store.Record(ctx, "abc123", "visitor-1", time.Minute); err != nil {
		t.Fatalf("Record failed: %v", err)
	}

	dup, total, err := store.Record(ctx, "abc123", "visitor-1", time.Minute)
	if err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	if !dup {
		t.Fatal("repeat click inside the window not flagged as duplicate")
	}
	if total != 1 {
		t.Fatalf("total after duplicate = %d, want 1", total)
	}
}

func TestRecordCountsAgainAfterWindow(t *testing.T) {
	mr, store := newTestStore(t)
	ctx := context.Background()

	if _, _, err := store.Record(ctx, "abc123", "visitor-1", time.Minute); err != nil {
		t.Fatalf("Record failed: %v", err)
	}

	mr.FastForward(time.Minute + time.Second)

	dup, total, err := store.Record(ctx, "abc123", "visitor-1", time.Minute)
	if err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	if dup || total != 2 {
		t.Fatalf("click after window = dup %v total %d", dup, total)
	}
}

func TestRecordWithoutVisitorSkipsDedup(t *testing.T) {
	_, store := newTestStore(t)
	ctx := context.Background()

	for want := int64(1); want <= 3; want++ {
		dup, total, err := store.Record(ctx, "abc123", "", time.Minute)
		if err != nil {
			t.Fatalf("Record failed: %v", err)
		}
		if dup || total != want {
			t.Fatalf("anonymous click = dup %v total %d, want %d", dup, total, want)
		}
	}
}

func TestCount(t *testing.T) {
	_, store := newTestStore(t)
	ctx := context.Background()

	if got, err := store.Count(ctx, "abc123"); err != nil || got != 0 {
		t.Fatalf("Count on fresh code = %d, %v", got, err)
	}

	if _, _, err := store.Record(ctx, "abc123", "visitor-1", time.Minute); err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	if got, err := store.Count(ctx, "abc123"); err != nil || got != 1 {
		t.Fatalf("Count = %d, %v, want 1", got, err)
	}
}

func TestRedisDownReturnsUnavailable(t *testing.T) {
	mr, store := newTestStore(t)
	mr.Close()

	if _, _, err := store.Record(context.Background(), "abc123", "visitor-1", time.Minute); !errors.Is(err, ErrRedisUnavailable) {
		t.Fatalf("Record with redis down = %v, want ErrRedisUnavailable", err)
	}
}
