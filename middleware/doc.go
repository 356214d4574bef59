// Package middleware exposes HTTP adapters that put cylink.Engine behind
// gorilla/mux routes.
//
// # Handlers
//
//   - [Visitor] — assigns a stable visitor cookie and loads visitor
//     identity, client IP, and referrer into the request context.
//   - [Redirect] — resolves {code} and issues an immediate 302.
//   - [Interstitial] — resolves {code} and returns the countdown page's
//     initial state as JSON.
//   - [Guard] — requires a bearer token on dashboard routes and stashes it
//     in the request context.
//   - [Register] — mounts the redirect and interstitial routes on a
//     mux.Router.
//
// # Architecture boundaries
//
// This package translates HTTP semantics into Engine calls. It does NOT
// resolve short codes itself — all lookup, throttling, and click-recording
// decisions are delegated to Engine.Resolve.
//
// # What this package must NOT do
//
//   - Call the backend API directly (Engine handles I/O).
//   - Cache resolutions.
//   - Block the response on click recording or telemetry.
package middleware
