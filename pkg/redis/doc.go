// Package redis bootstraps the go-redis client used as the shared
// distributed counter store for rate limiting.
package redis
