package cylink

import (
	"context"
	"encoding/json"
	"io"
	"sync"
	"time"
)

// TelemetryEvent is one named product event. Seconds carries the countdown
// value or time-on-page the event refers to, when any; -1 means not
// applicable.
type TelemetryEvent struct {
	Timestamp time.Time         `json:"timestamp"`
	EventType string            `json:"event_type"`
	ShortCode string            `json:"short_code,omitempty"`
	VisitorID string            `json:"visitor_id,omitempty"`
	Referrer  string            `json:"referrer,omitempty"`
	Outcome   string            `json:"outcome,omitempty"`
	Seconds   float64           `json:"seconds"`
	Error     string            `json:"error,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// TelemetrySink receives events from the async dispatcher. Emit must not
// panic; delivery failures are the sink's own concern and never reach the
// engine's callers.
type TelemetrySink interface {
	Emit(ctx context.Context, event TelemetryEvent)
}

// NoOpSink discards every event.
type NoOpSink struct{}

func (NoOpSink) Emit(context.Context, TelemetryEvent) {}

// ChannelSink buffers events on a channel for in-process consumers (tests,
// bridges to an analytics provider).
type ChannelSink struct {
	events chan TelemetryEvent
}

func NewChannelSink(buffer int) *ChannelSink {
	if buffer <= 0 {
		buffer = 1
	}
	return &ChannelSink{
		events: make(chan TelemetryEvent, buffer),
	}
}

func (s *ChannelSink) Emit(ctx context.Context, event TelemetryEvent) {
	select {
	case s.events <- event:
	case <-ctx.Done():
	}
}

func (s *ChannelSink) Events() <-chan TelemetryEvent {
	return s.events
}

// JSONWriterSink writes one JSON object per line to the wrapped writer.
type JSONWriterSink struct {
	writer io.Writer
	mu     sync.Mutex
}

func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return &JSONWriterSink{
		writer: w,
	}
}

func (s *JSONWriterSink) Emit(ctx context.Context, event TelemetryEvent) {
	if s == nil || s.writer == nil {
		return
	}
	data, err := json.Marshal(event)
	if err != nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, _ = s.writer.Write(data)
	_, _ = s.writer.Write([]byte("\n"))
}
