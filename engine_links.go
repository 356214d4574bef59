package cylink

import (
	"context"
	"errors"
	"net/url"
	"strings"

	"github.com/cylink-sh/cylink-go/backend"
	"github.com/google/uuid"
)

// CreateLink creates a short link through the authenticated API. A fresh
// idempotency key accompanies the request so a retried call after a
// transport failure cannot double-create.
func (e *Engine) CreateLink(ctx context.Context, req CreateLinkRequest) (*Link, error) {
	if e == nil || e.backend == nil {
		return nil, ErrEngineNotReady
	}
	if err := validateCreateLink(req); err != nil {
		e.emitTelemetry(ctx, telemetryEventLinkCreated, req.CustomCode, "rejected", -1, err, nil)
		return nil, err
	}

	link, err := e.backend.CreateLink(ctx, req, uuid.NewString())
	if err != nil {
		mapped := mapBackendErr(err)
		e.emitTelemetry(ctx, telemetryEventLinkCreated, req.CustomCode, "failed", -1, mapped, nil)
		return nil, mapped
	}

	e.metricInc(MetricLinkCreated)
	e.emitTelemetry(ctx, telemetryEventLinkCreated, link.ShortCode, "created", -1, nil, func() map[string]string {
		return map[string]string{
			"link_id": link.ID,
		}
	})
	return link, nil
}

// ListLinks pages through the caller's links. Returns the page and the
// total count across all pages.
func (e *Engine) ListLinks(ctx context.Context, opts ListLinksOptions) ([]Link, int, error) {
	if e == nil || e.backend == nil {
		return nil, 0, ErrEngineNotReady
	}

	links, total, err := e.backend.ListLinks(ctx, opts)
	if err != nil {
		return nil, 0, mapBackendErr(err)
	}
	return links, total, nil
}

// UpdateLink updates the mutable fields of a link by ID.
func (e *Engine) UpdateLink(ctx context.Context, id string, req UpdateLinkRequest) (*Link, error) {
	if e == nil || e.backend == nil {
		return nil, ErrEngineNotReady
	}
	if strings.TrimSpace(id) == "" {
		return nil, ErrInvalidLink
	}
	if req.OriginalURL != "" {
		if err := validateDestination(req.OriginalURL); err != nil {
			return nil, err
		}
	}

	link, err := e.backend.UpdateLink(ctx, id, req)
	if err != nil {
		mapped := mapBackendErr(err)
		e.emitTelemetry(ctx, telemetryEventLinkUpdated, "", "failed", -1, mapped, nil)
		return nil, mapped
	}

	e.metricInc(MetricLinkUpdated)
	e.emitTelemetry(ctx, telemetryEventLinkUpdated, link.ShortCode, "updated", -1, nil, nil)
	return link, nil
}

// DeleteLink removes a link by ID.
func (e *Engine) DeleteLink(ctx context.Context, id string) error {
	if e == nil || e.backend == nil {
		return ErrEngineNotReady
	}
	if strings.TrimSpace(id) == "" {
		return ErrInvalidLink
	}

	if err := e.backend.DeleteLink(ctx, id); err != nil {
		mapped := mapBackendErr(err)
		e.emitTelemetry(ctx, telemetryEventLinkDeleted, "", "failed", -1, mapped, nil)
		return mapped
	}

	e.metricInc(MetricLinkDeleted)
	e.emitTelemetry(ctx, telemetryEventLinkDeleted, "", "deleted", -1, nil, func() map[string]string {
		return map[string]string{
			"link_id": id,
		}
	})
	return nil
}

func validateCreateLink(req CreateLinkRequest) error {
	if err := validateDestination(req.OriginalURL); err != nil {
		return err
	}
	if req.CustomCode != "" {
		if len(req.CustomCode) < 3 || len(req.CustomCode) > 32 {
			return ErrInvalidLink
		}
		for _, r := range req.CustomCode {
			if !isCodeRune(r) {
				return ErrInvalidLink
			}
		}
	}
	return nil
}

func validateDestination(raw string) error {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ErrInvalidLink
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return ErrInvalidLink
	}
	return nil
}

func isCodeRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z':
		return true
	case r >= 'A' && r <= 'Z':
		return true
	case r >= '0' && r <= '9':
		return true
	case r == '-' || r == '_':
		return true
	default:
		return false
	}
}

func mapBackendErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, backend.ErrNotFound):
		return ErrLinkNotFound
	case errors.Is(err, backend.ErrUnauthorized):
		return ErrUnauthorized
	case errors.Is(err, backend.ErrConflict):
		return ErrLinkExists
	default:
		return errors.Join(ErrBackendUnavailable, err)
	}
}
