package cylink

import "context"

type visitorIDContextKey struct{}
type clientIPContextKey struct{}
type referrerContextKey struct{}

// WithVisitorID attaches an anonymous visitor identifier to ctx. The engine
// uses it to dedup repeat clicks and tags telemetry events with it.
func WithVisitorID(ctx context.Context, visitorID string) context.Context {
	return context.WithValue(ctx, visitorIDContextKey{}, visitorID)
}

// WithClientIP attaches the end client's IP address to ctx. The engine uses
// it for per-IP lookup throttling when rate limiting is enabled.
func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, clientIPContextKey{}, ip)
}

// WithReferrer attaches the referring URL to ctx for telemetry.
func WithReferrer(ctx context.Context, referrer string) context.Context {
	return context.WithValue(ctx, referrerContextKey{}, referrer)
}

func visitorIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}

	id, _ := ctx.Value(visitorIDContextKey{}).(string)
	return id
}

func clientIPFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}

	ip, _ := ctx.Value(clientIPContextKey{}).(string)
	return ip
}

func referrerFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}

	ref, _ := ctx.Value(referrerContextKey{}).(string)
	return ref
}
