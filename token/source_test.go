package token

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func signedJWT(t *testing.T, exp time.Time) string {
	t.Helper()

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(exp),
	})
	s, err := tok.SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("SignedString failed: %v", err)
	}
	return s
}

func TestStatic(t *testing.T) {
	got, err := Static("api-key").Token(context.Background())
	if err != nil {
		t.Fatalf("Token failed: %v", err)
	}
	if got != "api-key" {
		t.Fatalf("token = %q", got)
	}

	if _, err := Static("").Token(context.Background()); !errors.Is(err, ErrNoToken) {
		t.Fatalf("empty static = %v, want ErrNoToken", err)
	}
}

func TestRefreshingServesFreshToken(t *testing.T) {
	initial := signedJWT(t, time.Now().Add(time.Hour))
	calls := 0
	src := NewRefreshing(initial, func(context.Context) (string, error) {
		calls++
		return "should-not-be-called", nil
	}, time.Minute)

	got, err := src.Token(context.Background())
	if err != nil {
		t.Fatalf("Token failed: %v", err)
	}
	if got != initial {
		t.Fatalf("token = %q, want initial", got)
	}
	if calls != 0 {
		t.Fatalf("refresh called %d times for a fresh token", calls)
	}
}

func TestRefreshingRenewsInsideMargin(t *testing.T) {
	initial := signedJWT(t, time.Now().Add(10*time.Second))
	renewed := signedJWT(t, time.Now().Add(time.Hour))

	src := NewRefreshing(initial, func(context.Context) (string, error) {
		return renewed, nil
	}, time.Minute)

	got, err := src.Token(context.Background())
	if err != nil {
		t.Fatalf("Token failed: %v", err)
	}
	if got != renewed {
		t.Fatal("token inside the refresh margin was not renewed")
	}

	// The renewed token is now cached.
	again, err := src.Token(context.Background())
	if err != nil {
		t.Fatalf("Token failed: %v", err)
	}
	if again != renewed {
		t.Fatalf("token = %q, want cached renewal", again)
	}
}

func TestRefreshingEmptyInitialForcesRefresh(t *testing.T) {
	renewed := signedJWT(t, time.Now().Add(time.Hour))
	src := NewRefreshing("", func(context.Context) (string, error) {
		return renewed, nil
	}, 0)

	got, err := src.Token(context.Background())
	if err != nil {
		t.Fatalf("Token failed: %v", err)
	}
	if got != renewed {
		t.Fatalf("token = %q", got)
	}
}

func TestRefreshingFailureSurfaces(t *testing.T) {
	boom := errors.New("backend down")
	src := NewRefreshing("", func(context.Context) (string, error) {
		return "", boom
	}, 0)

	_, err := src.Token(context.Background())
	if !errors.Is(err, ErrRefreshFailed) || !errors.Is(err, boom) {
		t.Fatalf("err = %v", err)
	}
}

func TestRefreshingOpaqueTokenNeverProactivelyRefreshes(t *testing.T) {
	src := NewRefreshing("opaque-api-key", func(context.Context) (string, error) {
		t.Error("refresh called for opaque token")
		return "", nil
	}, time.Minute)

	got, err := src.Token(context.Background())
	if err != nil {
		t.Fatalf("Token failed: %v", err)
	}
	if got != "opaque-api-key" {
		t.Fatalf("token = %q", got)
	}
}

func TestRefreshingNoRefreshFuncHandsOverExpiredToken(t *testing.T) {
	expired := signedJWT(t, time.Now().Add(-time.Hour))
	src := NewRefreshing(expired, nil, time.Minute)

	got, err := src.Token(context.Background())
	if err != nil {
		t.Fatalf("Token failed: %v", err)
	}
	if got != expired {
		t.Fatalf("token = %q, want the expired token handed over", got)
	}
}

func TestRefreshingConcurrentCallers(t *testing.T) {
	renewed := signedJWT(t, time.Now().Add(time.Hour))
	var calls int
	var mu sync.Mutex
	src := NewRefreshing("", func(context.Context) (string, error) {
		mu.Lock()
		calls++
		mu.Unlock()
		return renewed, nil
	}, 0)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := src.Token(context.Background()); err != nil {
				t.Errorf("Token failed: %v", err)
			}
		}()
	}
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	if calls != 1 {
		t.Fatalf("refresh ran %d times, want 1", calls)
	}
}

func TestNilRefreshing(t *testing.T) {
	var src *Refreshing
	if _, err := src.Token(context.Background()); !errors.Is(err, ErrNoToken) {
		t.Fatalf("nil source = %v, want ErrNoToken", err)
	}
}
