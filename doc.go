// Package cylink provides the client-side engine for the CyLink URL
// shortening platform: short-code resolution with a public-then-authenticated
// fallback chain, fire-and-forget click recording, authenticated short-link
// and QR management, a feedback board client, and an asynchronous telemetry
// pipeline.
//
// The package is designed for concurrent workloads: Engine methods are safe
// to call from multiple goroutines after initialization through
// [Builder.Build].
//
// # Architecture boundaries
//
// cylink is the public surface. It exposes [Engine], [Builder], [Config],
// and value types (Resolution, Link, MetricsSnapshot, etc.). Internal
// coordination — lookup throttling, click dedup, telemetry dispatch — lives
// under internal/ and is never exported. The interstitial countdown
// controller lives in the interstitial subpackage because it has its own
// lifecycle, independent of any Engine.
//
// # What this package must NOT do
//
//   - Persist anything. Links, clicks, and feedback are owned by the remote
//     CyLink API; the engine holds no durable state.
//   - Cache resolution results. Every Resolve call performs a fresh lookup;
//     only the click side-effect channel is deduplicated.
//   - Surface telemetry or click-recording failures to callers.
//
// # Performance contract
//
// Resolve is the hot path. It performs at most two backend round-trips
// (one on the happy path) and never blocks on click recording or telemetry
// delivery.
package cylink
