package ratelimit

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/shopgrid/shopgrid/pkg/clientip"
	"github.com/shopgrid/shopgrid/pkg/tenant"
)

// Middleware enforces the layered rate limits for every request. It expects
// to run after the clientip and tenant middlewares so identity is already
// on the request context. Fail open: degraded layers never reject.
func Middleware(limiter *Layered) func(http.Handler) http.Handler {
	if limiter == nil {
		panic("ratelimit.Middleware: limiter is required")
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := clientip.FromContext(r.Context())
			if ip == clientip.Unknown {
				ip = clientip.GetIP(r)
			}

			result := limiter.Check(r.Context(), CheckInput{
				IP:       ip,
				TenantID: tenant.IDFromContext(r.Context()),
				Method:   r.Method,
				Path:     endpointPath(r),
			})

			if result.Limit > 0 {
				w.Header().Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
				w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
				w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))
			}

			if result.Blocked() {
				retryAfter := int(result.RetryAfter().Seconds())
				if retryAfter < 1 {
					retryAfter = 1
				}
				w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
				w.Header().Set("Content-Type", "application/json; charset=utf-8")
				w.WriteHeader(http.StatusTooManyRequests)
				json.NewEncoder(w).Encode(map[string]any{ //nolint:errcheck
					"error":       "rate_limit_exceeded",
					"layer":       result.Reason,
					"retry_after": retryAfter,
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// endpointPath strips the tenant slug prefix from the effective path so
// "acme.shopgrid.app/api/orders" and "shopgrid.app/acme/api/orders"
// classify into the same endpoint class.
func endpointPath(r *http.Request) string {
	path := r.URL.Path
	tc, ok := tenant.FromContext(r.Context())
	if !ok || tc.IsDefault() || tc.TenantSlug == "" {
		return path
	}

	prefix := "/" + tc.TenantSlug
	if path == prefix {
		return "/"
	}
	if rest, found := strings.CutPrefix(path, prefix+"/"); found {
		return "/" + rest
	}
	return path
}
