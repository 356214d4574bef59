package cylink

import (
	"context"
	"strings"
)

const (
	qrMinSize = 64
	qrMaxSize = 2048
)

// QRDesignFor fetches the stored QR customization for a link.
func (e *Engine) QRDesignFor(ctx context.Context, linkID string) (*QRDesign, error) {
	if e == nil || e.backend == nil {
		return nil, ErrEngineNotReady
	}
	if strings.TrimSpace(linkID) == "" {
		return nil, ErrInvalidQRDesign
	}

	design, err := e.backend.QRDesign(ctx, linkID)
	if err != nil {
		return nil, mapBackendErr(err)
	}
	return design, nil
}

// UpdateQRDesign validates and stores a QR customization. Validation is
// client-side and fails before any network call, mirroring what the
// dashboard form enforces.
func (e *Engine) UpdateQRDesign(ctx context.Context, design QRDesign) (*QRDesign, error) {
	if e == nil || e.backend == nil {
		return nil, ErrEngineNotReady
	}
	if err := validateQRDesign(design); err != nil {
		return nil, err
	}

	updated, err := e.backend.UpdateQRDesign(ctx, design)
	if err != nil {
		mapped := mapBackendErr(err)
		e.emitTelemetry(ctx, telemetryEventQRUpdated, "", "failed", -1, mapped, nil)
		return nil, mapped
	}

	e.metricInc(MetricQRUpdated)
	e.emitTelemetry(ctx, telemetryEventQRUpdated, "", "updated", -1, nil, func() map[string]string {
		return map[string]string{
			"link_id": updated.LinkID,
		}
	})
	return updated, nil
}

func validateQRDesign(design QRDesign) error {
	if strings.TrimSpace(design.LinkID) == "" {
		return ErrInvalidQRDesign
	}
	if !isHexColor(design.ForegroundColor) || !isHexColor(design.BackgroundColor) {
		return ErrInvalidQRDesign
	}
	if design.Size < qrMinSize || design.Size > qrMaxSize {
		return ErrInvalidQRDesign
	}
	return nil
}

func isHexColor(s string) bool {
	if len(s) != 7 || s[0] != '#' {
		return false
	}
	for _, r := range s[1:] {
		switch {
		case r >= '0' && r <= '9':
		case r >= 'a' && r <= 'f':
		case r >= 'A' && r <= 'F':
		default:
			return false
		}
	}
	return true
}
