// Package rate provides the Redis-backed lookup throttle behind
// Engine.Resolve: fixed-window counters per short code and per client IP.
//
// # Window semantics
//
// Fixed-window counters: INCR + conditional EXPIRE on first hit. Key
// prefixes:
//   - clc: — lookups per short code
//   - cli: — lookups per client IP
//
// # What this package must NOT do
//
//   - Decide when throttling applies (the engine consults its config).
//   - Be imported outside the cylink-go module.
package rate
