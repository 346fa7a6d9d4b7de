package tenant

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"
)

// Headers injected into the request for downstream handlers. Handlers past
// the middleware read tenant identity from these instead of re-running
// resolution.
const (
	HeaderTenantID         = "X-Tenant-ID"
	HeaderTenantSlug       = "X-Tenant-Slug"
	HeaderTenantStrategy   = "X-Tenant-Strategy"
	HeaderOriginalPathname = "X-Original-Pathname"
	HeaderOriginalHostname = "X-Original-Hostname"
	HeaderAPITenantContext = "X-Api-Tenant-Context"
)

// apiSnapshot is the point-in-time tenant identity serialized for API
// handlers that cannot re-run resolution.
type apiSnapshot struct {
	TenantID   string   `json:"tenant_id"`
	TenantSlug string   `json:"tenant_slug"`
	Strategy   Strategy `json:"strategy"`
	Timestamp  int64    `json:"timestamp"`
}

// Middleware classifies the request, resolves the tenant context, and
// injects identity headers, strictly in that order and before any handler
// runs. For subdomain-routed requests the effective path is rewritten to
// "/{slug}/..." so a single path-based handler tree serves both routing
// strategies.
func Middleware(classifier *Classifier, resolver *Resolver) func(http.Handler) http.Handler {
	if classifier == nil || resolver == nil {
		panic("tenant.Middleware: classifier and resolver are required")
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := WithResolutionScope(r.Context())

			originalPath := r.URL.Path
			originalHost := r.Host

			cls := classifier.Classify(originalHost, originalPath)
			id, slug := cls.TenantID, cls.TenantSlug
			if !cls.Matched() {
				id, slug = DefaultTenantID, DefaultTenantID
			}

			tc := resolver.Resolve(ctx, id)
			tc.TenantSlug = slug
			tc.Strategy = cls.Strategy

			r.Header.Set(HeaderTenantID, id)
			r.Header.Set(HeaderTenantSlug, slug)
			r.Header.Set(HeaderTenantStrategy, string(cls.Strategy))
			r.Header.Set(HeaderOriginalPathname, originalPath)
			r.Header.Set(HeaderOriginalHostname, originalHost)

			if isAPIRequest(originalPath, cls) {
				snapshot, err := json.Marshal(apiSnapshot{
					TenantID:   id,
					TenantSlug: slug,
					Strategy:   cls.Strategy,
					Timestamp:  time.Now().Unix(),
				})
				if err == nil {
					r.Header.Set(HeaderAPITenantContext, string(snapshot))
				}
			}

			if cls.Strategy == StrategySubdomain {
				r.URL.Path = "/" + slug + originalPath
				r.URL.RawPath = ""
			}

			next.ServeHTTP(w, r.WithContext(WithContext(ctx, tc)))
		})
	}
}

// isAPIRequest reports whether the original path addresses the API surface,
// accounting for the tenant slug prefix under path-based routing.
func isAPIRequest(originalPath string, cls Classification) bool {
	path := originalPath
	if cls.Strategy == StrategyPath {
		path = strings.TrimPrefix(path, "/"+cls.TenantSlug)
	}
	return path == "/api" || strings.HasPrefix(path, "/api/")
}

// RequireTenant rejects requests whose tenant resolution fell through to
// the default context, for routes that only make sense inside a storefront.
func RequireTenant(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tc, ok := FromContext(r.Context())
		if !ok || tc == nil || tc.IsDefault() {
			http.Error(w, "store not found", http.StatusNotFound)
			return
		}
		next.ServeHTTP(w, r)
	})
}
