package cylink

import "errors"

var (
	// ErrLinkNotFound reports a confirmed absence: the public endpoint
	// answered 404 (or the authenticated tier did, after a public failure).
	// No fallback is attempted once absence is confirmed.
	ErrLinkNotFound = errors.New("short link not found")
	// ErrLookupUnavailable reports that both lookup tiers failed without a
	// confirmed 404. The underlying causes are attached and reachable
	// through errors.Is / errors.As.
	ErrLookupUnavailable = errors.New("link lookup unavailable")
	// ErrResolveRateLimited reports that the lookup throttle rejected the
	// short code or the caller's IP.
	ErrResolveRateLimited = errors.New("resolution rate limited")
	// ErrInvalidShortCode reports an empty or malformed short code.
	ErrInvalidShortCode = errors.New("invalid short code")
	// ErrEngineNotReady reports a call on an engine that was not assembled
	// through Builder.Build.
	ErrEngineNotReady = errors.New("engine not ready")
	// ErrUnauthorized reports that the backend rejected the bearer
	// credentials on an authenticated operation.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrLinkExists reports a conflict creating a link with a custom alias
	// that is already taken.
	ErrLinkExists = errors.New("short link already exists")
	// ErrInvalidLink reports a create or update request that failed
	// client-side validation.
	ErrInvalidLink = errors.New("invalid link request")
	// ErrInvalidQRDesign reports a QR design that failed client-side
	// validation before being sent to the backend.
	ErrInvalidQRDesign = errors.New("invalid qr design")
	// ErrFeedbackNotFound reports a vote or update against a feedback post
	// the backend does not know.
	ErrFeedbackNotFound = errors.New("feedback post not found")
	// ErrInvalidFeedback reports an empty or oversized feedback submission.
	ErrInvalidFeedback = errors.New("invalid feedback submission")
	// ErrBackendUnavailable reports a non-lookup backend operation that
	// failed for transport or server-side reasons.
	ErrBackendUnavailable = errors.New("backend unavailable")
)
