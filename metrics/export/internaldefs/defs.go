package internaldefs

import (
	cylink "github.com/cylink-sh/cylink-go"
)

// CounterDef names one engine counter for export.
type CounterDef struct {
	ID   cylink.MetricID
	Name string
	Help string
}

// HistogramDef names one engine histogram for export.
type HistogramDef struct {
	ID   cylink.MetricID
	Name string
	Help string
}

// CounterDefs pins the exported name of every engine counter.
var CounterDefs = []CounterDef{
	{ID: cylink.MetricResolveSuccess, Name: "cylink_resolve_success_total", Help: "Resolutions answered by the public tier."},
	{ID: cylink.MetricResolveFallback, Name: "cylink_resolve_fallback_total", Help: "Resolutions answered by the authenticated fallback tier."},
	{ID: cylink.MetricResolveNotFound, Name: "cylink_resolve_not_found_total", Help: "Resolutions for confirmed-absent short codes."},
	{ID: cylink.MetricResolveUnavailable, Name: "cylink_resolve_unavailable_total", Help: "Resolutions where every lookup tier failed."},
	{ID: cylink.MetricResolveRateLimited, Name: "cylink_resolve_rate_limited_total", Help: "Lookups rejected by the abuse throttle."},
	{ID: cylink.MetricResolveInvalidCode, Name: "cylink_resolve_invalid_code_total", Help: "Lookups rejected before any network call."},
	{ID: cylink.MetricClickEnqueued, Name: "cylink_click_enqueued_total", Help: "Clicks accepted onto the recording queue."},
	{ID: cylink.MetricClickRecorded, Name: "cylink_click_recorded_total", Help: "Clicks delivered to the backend."},
	{ID: cylink.MetricClickDeduped, Name: "cylink_click_deduped_total", Help: "Clicks suppressed by the visitor dedup window."},
	{ID: cylink.MetricClickDropped, Name: "cylink_click_dropped_total", Help: "Clicks dropped on a full recording queue."},
	{ID: cylink.MetricClickFailed, Name: "cylink_click_failed_total", Help: "Click deliveries that failed and were discarded."},
	{ID: cylink.MetricLinkCreated, Name: "cylink_link_created_total", Help: "Created short links."},
	{ID: cylink.MetricLinkUpdated, Name: "cylink_link_updated_total", Help: "Updated short links."},
	{ID: cylink.MetricLinkDeleted, Name: "cylink_link_deleted_total", Help: "Deleted short links."},
	{ID: cylink.MetricQRUpdated, Name: "cylink_qr_updated_total", Help: "Updated QR code designs."},
	{ID: cylink.MetricFeedbackSubmitted, Name: "cylink_feedback_submitted_total", Help: "Submitted feedback posts."},
	{ID: cylink.MetricFeedbackVoted, Name: "cylink_feedback_voted_total", Help: "Feedback vote operations."},
}

// HistogramDefs pins the exported name of every engine histogram.
var HistogramDefs = []HistogramDef{
	{ID: cylink.MetricResolveLatency, Name: "cylink_resolve_latency_seconds", Help: "Resolve latency histogram."},
}

// HistogramBounds are the upper bucket bounds, in seconds, as rendered for
// Prometheus le labels.
var HistogramBounds = []string{
	"0.005",
	"0.01",
	"0.025",
	"0.05",
	"0.1",
	"0.25",
	"0.5",
	"+Inf",
}

// HistogramBoundSuffix maps each bound to an OTel-safe instrument suffix.
var HistogramBoundSuffix = []string{
	"0_005",
	"0_01",
	"0_025",
	"0_05",
	"0_1",
	"0_25",
	"0_5",
	"inf",
}

// NormalizeBuckets pads or truncates a raw snapshot slice to the fixed
// 8-bucket layout.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets converts per-bucket counts to the cumulative form both
// exporters emit.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
