// Package prometheus renders engine metrics in Prometheus text exposition format.
//
// [NewPrometheusExporter] accepts a [cylink.Engine] and exposes an [http.Handler]
// that renders all engine counters and histograms. Counter names are prefixed
// cylink_*_total; the single histogram is cylink_resolve_latency_seconds.
//
// # What this package must NOT do
//
//   - Register metrics in a global Prometheus registry — callers mount the Handler.
//   - Mutate engine state.
package prometheus
