package rate

import "errors"

var (
	// ErrRateLimited reports an exhausted lookup budget.
	ErrRateLimited = errors.New("rate limited")
	// ErrRedisUnavailable wraps redis transport failures.
	ErrRedisUnavailable = errors.New("redis unavailable")
)
