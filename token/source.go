package token

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrNoToken is returned when a source has no credentials to offer.
var ErrNoToken = errors.New("no bearer token available")

// ErrRefreshFailed wraps the cause of a failed token renewal.
var ErrRefreshFailed = errors.New("token refresh failed")

// Source yields the bearer token for authenticated API calls. Token is
// called on every request; implementations must be safe for concurrent use.
type Source interface {
	Token(ctx context.Context) (string, error)
}

// Static is a Source holding a fixed token, typically an API key issued
// from the dashboard.
type Static string

// Token returns the fixed token, or ErrNoToken when empty.
func (s Static) Token(context.Context) (string, error) {
	if s == "" {
		return "", ErrNoToken
	}
	return string(s), nil
}

// RefreshFunc renews the access token, returning the new token string.
// The backend owns rotation semantics; this package only decides when to
// call it.
type RefreshFunc func(ctx context.Context) (string, error)

// Refreshing is a Source that renews its token ahead of the JWT expiry.
// A single renewal runs at a time; concurrent callers share its result.
type Refreshing struct {
	mu      sync.Mutex
	current string
	expires time.Time
	refresh RefreshFunc
	// margin is how long before expiry a renewal is triggered.
	margin time.Duration
	now    func() time.Time
}

// NewRefreshing creates a refreshing source seeded with an initial token
// (may be empty, forcing a refresh on first use). A non-positive margin
// defaults to 30 seconds.
func NewRefreshing(initial string, refresh RefreshFunc, margin time.Duration) *Refreshing {
	if margin <= 0 {
		margin = 30 * time.Second
	}
	r := &Refreshing{
		current: initial,
		refresh: refresh,
		margin:  margin,
		now:     time.Now,
	}
	if initial != "" {
		r.expires = expiryOf(initial)
	}
	return r
}

// Token returns the current token, renewing it first when expired or
// within the refresh margin.
func (r *Refreshing) Token(ctx context.Context) (string, error) {
	if r == nil {
		return "", ErrNoToken
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.current != "" && !r.needsRefreshLocked() {
		return r.current, nil
	}
	if r.refresh == nil {
		if r.current != "" {
			// Expired with no way to renew: hand it over anyway and let
			// the backend reject it.
			return r.current, nil
		}
		return "", ErrNoToken
	}

	next, err := r.refresh(ctx)
	if err != nil {
		return "", errors.Join(ErrRefreshFailed, err)
	}
	if next == "" {
		return "", errors.Join(ErrRefreshFailed, errors.New("refresh returned empty token"))
	}

	r.current = next
	r.expires = expiryOf(next)
	return r.current, nil
}

func (r *Refreshing) needsRefreshLocked() bool {
	if r.expires.IsZero() {
		// Opaque token with no readable expiry: never proactively refresh.
		return false
	}
	return !r.now().Add(r.margin).Before(r.expires)
}

// expiryOf reads the exp claim without verifying the signature. A token
// that is not a JWT, or carries no exp, yields the zero time.
func expiryOf(tokenStr string) time.Time {
	parser := jwt.NewParser()
	claims := jwt.RegisteredClaims{}
	if _, _, err := parser.ParseUnverified(tokenStr, &claims); err != nil {
		return time.Time{}
	}
	if claims.ExpiresAt == nil {
		return time.Time{}
	}
	return claims.ExpiresAt.Time
}
