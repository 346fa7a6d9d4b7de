// Package cache provides a small generic TTL cache with get-or-compute
// semantics. It is used for cross-request caching of tenant configuration
// and tier tables; callers own the cache's lifetime and inject it where
// needed, keeping global mutable state out of the request path.
package cache
