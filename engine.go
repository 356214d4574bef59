package cylink

import (
	"github.com/cylink-sh/cylink-go/backend"
	"github.com/cylink-sh/cylink-go/internal/clickstore"
	"github.com/cylink-sh/cylink-go/internal/rate"
)

// Engine is the assembled CyLink client: resolution chain, click recording,
// authenticated dashboard operations, telemetry, and metrics. Build one
// through [Builder.Build]; it is then safe for concurrent use and should be
// released with [Engine.Close].
type Engine struct {
	config     Config
	backend    *backend.Client
	limiter    *rate.Limiter
	clickStore *clickstore.Store
	clicks     *clickRecorder
	telemetry  *telemetryDispatcher
	metrics    *Metrics
}

// Close drains and stops the click recorder and the telemetry dispatcher.
// Engine methods must not be called after Close.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	if e.clicks != nil {
		e.clicks.Close()
	}
	if e.telemetry != nil {
		e.telemetry.Close()
	}
}

// TelemetryDropped reports how many telemetry events were discarded on a
// full buffer.
func (e *Engine) TelemetryDropped() uint64 {
	if e == nil || e.telemetry == nil {
		return 0
	}
	return e.telemetry.Dropped()
}

// ClicksDropped reports how many clicks were discarded on a full queue
// or during shutdown.
func (e *Engine) ClicksDropped() uint64 {
	if e == nil || e.clicks == nil {
		return 0
	}
	return e.clicks.Dropped()
}

// MetricsSnapshot copies the current counters and histograms. Exporters
// under metrics/export consume this.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return e.metrics.Snapshot()
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Inc(id)
}
