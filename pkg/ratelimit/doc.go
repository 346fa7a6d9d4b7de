// Package ratelimit implements the platform's layered admission control:
// every request passes a per-IP sliding window, a per-tenant sliding
// window, and an endpoint-class limit (login attempts, store creation,
// order placement, generic API traffic), evaluated in that order against
// a shared counter store.
//
// Layers short-circuit on the first rejection; layers already checked
// stay charged. When every layer passes, the response advertises the most
// restrictive (minimum remaining) budget via X-RateLimit-* headers.
//
// The store abstraction has two implementations: RedisStore (Lua scripts,
// atomic across server nodes) for production and MemoryStore for tests
// and single-node development. Store failures fail open: the affected
// layer is skipped, the degradation is logged and surfaced in
// Result.Reason, and the request proceeds.
package ratelimit
