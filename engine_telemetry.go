package cylink

import (
	"context"
	"errors"
	"time"
)

const (
	telemetryEventResolveSuccess     = "resolve_performed"
	telemetryEventResolveFallback    = "resolve_fallback"
	telemetryEventResolveNotFound    = "resolve_not_found"
	telemetryEventResolveUnavailable = "resolve_unavailable"
	telemetryEventResolveRateLimited = "resolve_rate_limited"
	telemetryEventClickRecorded      = "click_recorded"
	telemetryEventClickDeduped       = "click_deduped"
	telemetryEventClickFailed        = "click_failed"
	telemetryEventLinkCreated        = "link_created"
	telemetryEventLinkUpdated        = "link_updated"
	telemetryEventLinkDeleted        = "link_deleted"
	telemetryEventQRUpdated          = "qr_design_updated"
	telemetryEventFeedbackSubmitted  = "feedback_submitted"
	telemetryEventFeedbackVoted      = "feedback_voted"
)

// TelemetryErrorCode is the stable error label carried on failure events.
type TelemetryErrorCode string

const (
	telemetryErrNotFound      TelemetryErrorCode = "not_found"
	telemetryErrRateLimited   TelemetryErrorCode = "rate_limited"
	telemetryErrInvalidCode   TelemetryErrorCode = "invalid_code"
	telemetryErrUnauthorized  TelemetryErrorCode = "unauthorized"
	telemetryErrConflict      TelemetryErrorCode = "conflict"
	telemetryErrInvalidInput  TelemetryErrorCode = "invalid_input"
	telemetryErrUnavailable   TelemetryErrorCode = "backend_unavailable"
	telemetryErrInternal      TelemetryErrorCode = "internal_error"
)

func (e *Engine) emitTelemetry(
	ctx context.Context,
	eventType string,
	shortCode string,
	outcome string,
	seconds float64,
	err error,
	metadataBuilder func() map[string]string,
) {
	if e == nil || e.telemetry == nil {
		return
	}

	var metadata map[string]string
	if metadataBuilder != nil {
		metadata = metadataBuilder()
	}

	event := TelemetryEvent{
		Timestamp: time.Now().UTC(),
		EventType: eventType,
		ShortCode: shortCode,
		VisitorID: visitorIDFromContext(ctx),
		Referrer:  referrerFromContext(ctx),
		Outcome:   outcome,
		Seconds:   seconds,
		Metadata:  metadata,
	}
	if code := telemetryErrorCode(err); code != "" {
		event.Error = string(code)
	}

	e.telemetry.Emit(ctx, event)
}

func telemetryErrorCode(err error) TelemetryErrorCode {
	if err == nil {
		return ""
	}

	switch {
	case errors.Is(err, ErrLinkNotFound),
		errors.Is(err, ErrFeedbackNotFound):
		return telemetryErrNotFound
	case errors.Is(err, ErrResolveRateLimited):
		return telemetryErrRateLimited
	case errors.Is(err, ErrInvalidShortCode):
		return telemetryErrInvalidCode
	case errors.Is(err, ErrUnauthorized):
		return telemetryErrUnauthorized
	case errors.Is(err, ErrLinkExists):
		return telemetryErrConflict
	case errors.Is(err, ErrInvalidLink),
		errors.Is(err, ErrInvalidQRDesign),
		errors.Is(err, ErrInvalidFeedback):
		return telemetryErrInvalidInput
	case errors.Is(err, ErrLookupUnavailable),
		errors.Is(err, ErrBackendUnavailable):
		return telemetryErrUnavailable
	default:
		return telemetryErrInternal
	}
}
