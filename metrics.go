package cylink

import (
	"sync/atomic"
	"time"
)

// MetricID identifies one engine counter or histogram.
type MetricID uint16

const (
	// MetricResolveSuccess counts resolutions answered by the public tier.
	MetricResolveSuccess MetricID = iota
	// MetricResolveFallback counts resolutions answered by the
	// authenticated tier after a public failure.
	MetricResolveFallback
	// MetricResolveNotFound counts confirmed-absent short codes.
	MetricResolveNotFound
	// MetricResolveUnavailable counts resolutions where both tiers failed.
	MetricResolveUnavailable
	// MetricResolveRateLimited counts lookups rejected by the throttle.
	MetricResolveRateLimited
	// MetricResolveInvalidCode counts lookups rejected before any network call.
	MetricResolveInvalidCode
	// MetricClickEnqueued counts clicks accepted onto the recording queue.
	MetricClickEnqueued
	// MetricClickRecorded counts clicks delivered to the backend.
	MetricClickRecorded
	// MetricClickDeduped counts clicks suppressed by the dedup window.
	MetricClickDeduped
	// MetricClickDropped counts clicks dropped on a full queue or during
	// shutdown.
	MetricClickDropped
	// MetricClickFailed counts click deliveries that failed and were discarded.
	MetricClickFailed
	// MetricLinkCreated counts successful CreateLink calls.
	MetricLinkCreated
	// MetricLinkUpdated counts successful UpdateLink calls.
	MetricLinkUpdated
	// MetricLinkDeleted counts successful DeleteLink calls.
	MetricLinkDeleted
	// MetricQRUpdated counts successful UpdateQRDesign calls.
	MetricQRUpdated
	// MetricFeedbackSubmitted counts successful SubmitFeedback calls.
	MetricFeedbackSubmitted
	// MetricFeedbackVoted counts successful Vote calls.
	MetricFeedbackVoted
	// MetricResolveLatency is the resolve latency histogram.
	MetricResolveLatency
	metricIDCount
)

const (
	histBucketCount = 8
	cacheLineSize   = 64
)

type metricHistogram struct {
	buckets [histBucketCount]uint64
}

type paddedCounter struct {
	value uint64
	_     [cacheLineSize - 8]byte
}

// Metrics is the in-process registry of engine counters and histograms.
// All methods are safe for concurrent use and are no-ops on a nil or
// disabled receiver.
type Metrics struct {
	enabled       bool
	enableLatency bool
	counters      [metricIDCount]paddedCounter
	histograms    [metricIDCount]metricHistogram
}

// MetricsSnapshot is a point-in-time copy of all counters and histograms.
type MetricsSnapshot struct {
	Counters   map[MetricID]uint64
	Histograms map[MetricID][]uint64
}

// NewMetrics creates a registry from the metrics section of [Config].
func NewMetrics(cfg MetricsConfig) *Metrics {
	return &Metrics{
		enabled:       cfg.Enabled,
		enableLatency: cfg.Enabled && cfg.EnableLatencyHistograms,
	}
}

// Enabled reports whether counting is active.
func (m *Metrics) Enabled() bool {
	return m != nil && m.enabled
}

// LatencyEnabled reports whether the resolve latency histogram is active.
func (m *Metrics) LatencyEnabled() bool {
	return m != nil && m.enableLatency
}

// Inc adds one to a counter.
func (m *Metrics) Inc(id MetricID) {
	if m == nil || !m.enabled || id >= metricIDCount {
		return
	}
	atomic.AddUint64(&m.counters[id].value, 1)
}

// Observe records a resolve latency sample.
func (m *Metrics) Observe(id MetricID, d time.Duration) {
	if m == nil || !m.enabled || !m.enableLatency || id >= metricIDCount {
		return
	}
	if id != MetricResolveLatency {
		return
	}

	b := bucketIndex(d)
	atomic.AddUint64(&m.histograms[id].buckets[b], 1)
}

// Value returns the current value of one counter.
func (m *Metrics) Value(id MetricID) uint64 {
	if m == nil || id >= metricIDCount {
		return 0
	}
	return atomic.LoadUint64(&m.counters[id].value)
}

// Snapshot copies every counter and, when enabled, the latency histogram.
func (m *Metrics) Snapshot() MetricsSnapshot {
	if m == nil || !m.enabled {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}

	s := MetricsSnapshot{
		Counters:   make(map[MetricID]uint64, int(metricIDCount)),
		Histograms: make(map[MetricID][]uint64, 1),
	}

	for id := MetricID(0); id < metricIDCount; id++ {
		s.Counters[id] = atomic.LoadUint64(&m.counters[id].value)
	}

	if m.enableLatency {
		buckets := make([]uint64, histBucketCount)
		for i := 0; i < histBucketCount; i++ {
			buckets[i] = atomic.LoadUint64(&m.histograms[MetricResolveLatency].buckets[i])
		}
		s.Histograms[MetricResolveLatency] = buckets
	}

	return s
}

func bucketIndex(d time.Duration) int {
	ms := d.Milliseconds()

	switch {
	case ms <= 5:
		return 0
	case ms <= 10:
		return 1
	case ms <= 25:
		return 2
	case ms <= 50:
		return 3
	case ms <= 100:
		return 4
	case ms <= 250:
		return 5
	case ms <= 500:
		return 6
	default:
		return 7
	}
}
