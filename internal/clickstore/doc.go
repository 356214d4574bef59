// Package clickstore keeps Redis-side click state for the fire-and-forget
// recording worker: a per-code counter and a per-visitor dedup latch with a
// TTL window. Both are updated atomically through a single Lua script so a
// deduped click never bumps the counter.
//
// This is side-effect state only. Resolution results are never cached here
// or anywhere else.
package clickstore
