package cylink

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/cylink-sh/cylink-go/backend"
	"github.com/cylink-sh/cylink-go/internal/rate"
)

// Resolve maps a short code to its original URL through the two-tier
// lookup chain: the public endpoint first, then — only when the public
// tier failed for a reason other than a confirmed 404 — the authenticated
// endpoint. A 404 from either tier is final and returns ErrLinkNotFound
// without further attempts; any other double failure returns
// ErrLookupUnavailable with both causes attached.
//
// On success a click-record call is enqueued on the fire-and-forget
// worker before returning; its outcome never affects the returned
// Resolution and is not waited on.
func (e *Engine) Resolve(ctx context.Context, code string) (*Resolution, error) {
	if e == nil || e.backend == nil {
		return nil, ErrEngineNotReady
	}
	if e.metrics.LatencyEnabled() {
		start := time.Now()
		defer func() {
			e.metrics.Observe(MetricResolveLatency, time.Since(start))
		}()
	}

	code = strings.TrimSpace(code)
	if code == "" || len(code) > e.config.Resolve.MaxCodeLength {
		e.metricInc(MetricResolveInvalidCode)
		return nil, ErrInvalidShortCode
	}

	if e.limiter != nil {
		if err := e.limiter.AllowLookup(ctx, code, clientIPFromContext(ctx)); err != nil {
			if errors.Is(err, rate.ErrRateLimited) {
				e.metricInc(MetricResolveRateLimited)
				e.emitTelemetry(ctx, telemetryEventResolveRateLimited, code, "rate_limited", -1, ErrResolveRateLimited, nil)
				return nil, ErrResolveRateLimited
			}
			// Throttle backend down: resolution stays available.
			log.Print("cylink: lookup throttle unavailable")
		}
	}

	dest, pubErr := e.lookupTier(ctx, code, false)
	if pubErr == nil {
		e.metricInc(MetricResolveSuccess)
		e.dispatchClick(ctx, code)
		e.emitTelemetry(ctx, telemetryEventResolveSuccess, code, SourcePublic.String(), -1, nil, nil)
		return &Resolution{ShortCode: code, OriginalURL: dest, Source: SourcePublic}, nil
	}

	if errors.Is(pubErr, backend.ErrNotFound) {
		// Confirmed absence: never double-query a missing resource.
		e.metricInc(MetricResolveNotFound)
		e.emitTelemetry(ctx, telemetryEventResolveNotFound, code, SourcePublic.String(), -1, ErrLinkNotFound, nil)
		return nil, ErrLinkNotFound
	}

	if e.config.Resolve.DisableFallback {
		e.metricInc(MetricResolveUnavailable)
		e.emitTelemetry(ctx, telemetryEventResolveUnavailable, code, SourcePublic.String(), -1, ErrLookupUnavailable, nil)
		return nil, errors.Join(ErrLookupUnavailable, pubErr)
	}

	dest, authErr := e.lookupTier(ctx, code, true)
	if authErr == nil {
		e.metricInc(MetricResolveFallback)
		e.dispatchClick(ctx, code)
		e.emitTelemetry(ctx, telemetryEventResolveFallback, code, SourceAuthenticated.String(), -1, nil, nil)
		return &Resolution{ShortCode: code, OriginalURL: dest, Source: SourceAuthenticated}, nil
	}

	if errors.Is(authErr, backend.ErrNotFound) {
		e.metricInc(MetricResolveNotFound)
		e.emitTelemetry(ctx, telemetryEventResolveNotFound, code, SourceAuthenticated.String(), -1, ErrLinkNotFound, nil)
		return nil, ErrLinkNotFound
	}

	e.metricInc(MetricResolveUnavailable)
	e.emitTelemetry(ctx, telemetryEventResolveUnavailable, code, SourceAuthenticated.String(), -1, ErrLookupUnavailable, nil)
	return nil, errors.Join(ErrLookupUnavailable, pubErr, authErr)
}

func (e *Engine) lookupTier(ctx context.Context, code string, authed bool) (string, error) {
	if t := e.config.Resolve.AttemptTimeout; t > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t)
		defer cancel()
	}

	if authed {
		return e.backend.LookupAuthenticated(ctx, code)
	}
	return e.backend.LookupPublic(ctx, code)
}

func (e *Engine) dispatchClick(ctx context.Context, code string) {
	if e.clicks == nil {
		return
	}
	e.clicks.Enqueue(clickJob{
		code:      code,
		visitorID: visitorIDFromContext(ctx),
		referrer:  referrerFromContext(ctx),
	})
}
