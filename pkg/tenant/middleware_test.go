package tenant_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopgrid/shopgrid/pkg/tenant"
)

func newTestMiddleware(t *testing.T, provider tenant.Provider) func(http.Handler) http.Handler {
	t.Helper()
	classifier := tenant.NewClassifier("shopgrid.app")
	resolver := tenant.NewResolver(provider)
	return tenant.Middleware(classifier, resolver)
}

func TestMiddleware_SubdomainRequest(t *testing.T) {
	t.Parallel()

	provider := newMockProvider()
	provider.configs["acme"] = &tenant.Config{Tier: tenant.TierGrowth}
	mw := newTestMiddleware(t, provider)

	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "acme", r.Header.Get(tenant.HeaderTenantID))
		assert.Equal(t, "acme", r.Header.Get(tenant.HeaderTenantSlug))
		assert.Equal(t, "subdomain", r.Header.Get(tenant.HeaderTenantStrategy))
		assert.Equal(t, "/dashboard", r.Header.Get(tenant.HeaderOriginalPathname))
		assert.Equal(t, "acme.shopgrid.app", r.Header.Get(tenant.HeaderOriginalHostname))

		// Effective path is rewritten so path-based handlers serve
		// subdomain traffic transparently.
		assert.Equal(t, "/acme/dashboard", r.URL.Path)

		tc, ok := tenant.FromContext(r.Context())
		require.True(t, ok)
		assert.Equal(t, "acme", tc.TenantID)
		assert.Equal(t, tenant.StrategySubdomain, tc.Strategy)
		assert.Equal(t, tenant.TierGrowth, tc.Tier)

		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "https://acme.shopgrid.app/dashboard", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestMiddleware_PathRequest(t *testing.T) {
	t.Parallel()

	provider := newMockProvider()
	provider.configs["acme"] = &tenant.Config{Tier: tenant.TierPro}
	mw := newTestMiddleware(t, provider)

	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "acme", r.Header.Get(tenant.HeaderTenantID))
		assert.Equal(t, "path", r.Header.Get(tenant.HeaderTenantStrategy))
		// Path-based requests keep their path untouched.
		assert.Equal(t, "/acme/dashboard", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "https://shopgrid.app/acme/dashboard", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestMiddleware_ReservedRouteDefaults(t *testing.T) {
	t.Parallel()

	mw := newTestMiddleware(t, newMockProvider())

	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, tenant.DefaultTenantID, r.Header.Get(tenant.HeaderTenantID))
		assert.Equal(t, tenant.DefaultTenantID, r.Header.Get(tenant.HeaderTenantSlug))
		assert.Equal(t, "default", r.Header.Get(tenant.HeaderTenantStrategy))

		tc := tenant.MustFromContext(r.Context())
		assert.Equal(t, tenant.TierStarter, tc.Tier)
		assert.Equal(t, tenant.StatusActive, tc.Status)
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "https://shopgrid.app/login", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestMiddleware_APISnapshot(t *testing.T) {
	t.Parallel()

	provider := newMockProvider()
	provider.configs["acme"] = &tenant.Config{Tier: tenant.TierGrowth}
	mw := newTestMiddleware(t, provider)

	t.Run("subdomain api path carries snapshot", func(t *testing.T) {
		t.Parallel()

		handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := r.Header.Get(tenant.HeaderAPITenantContext)
			require.NotEmpty(t, raw)

			var snapshot struct {
				TenantID   string `json:"tenant_id"`
				TenantSlug string `json:"tenant_slug"`
				Strategy   string `json:"strategy"`
				Timestamp  int64  `json:"timestamp"`
			}
			require.NoError(t, json.Unmarshal([]byte(raw), &snapshot))
			assert.Equal(t, "acme", snapshot.TenantID)
			assert.Equal(t, "acme", snapshot.TenantSlug)
			assert.Equal(t, "subdomain", snapshot.Strategy)
			assert.InDelta(t, time.Now().Unix(), snapshot.Timestamp, 5)
		}))

		req := httptest.NewRequest(http.MethodGet, "https://acme.shopgrid.app/api/products", nil)
		handler.ServeHTTP(httptest.NewRecorder(), req)
	})

	t.Run("path-routed api path carries snapshot", func(t *testing.T) {
		t.Parallel()

		handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.NotEmpty(t, r.Header.Get(tenant.HeaderAPITenantContext))
		}))

		req := httptest.NewRequest(http.MethodGet, "https://shopgrid.app/acme/api/products", nil)
		handler.ServeHTTP(httptest.NewRecorder(), req)
	})

	t.Run("non-api path has no snapshot", func(t *testing.T) {
		t.Parallel()

		handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Empty(t, r.Header.Get(tenant.HeaderAPITenantContext))
		}))

		req := httptest.NewRequest(http.MethodGet, "https://acme.shopgrid.app/dashboard", nil)
		handler.ServeHTTP(httptest.NewRecorder(), req)
	})
}

func TestMiddleware_ResolvesOncePerRequest(t *testing.T) {
	t.Parallel()

	provider := newMockProvider()
	provider.configs["acme"] = &tenant.Config{Tier: tenant.TierGrowth}

	classifier := tenant.NewClassifier("shopgrid.app")
	resolver := tenant.NewResolver(provider)
	mw := tenant.Middleware(classifier, resolver)

	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Downstream consumers re-resolving hit the request-scoped memo.
		for range 3 {
			resolver.Resolve(r.Context(), "acme")
		}
	}))

	req := httptest.NewRequest(http.MethodGet, "https://acme.shopgrid.app/", nil)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, 1, provider.callCount())
}

func TestRequireTenant(t *testing.T) {
	t.Parallel()

	provider := newMockProvider()
	provider.configs["acme"] = &tenant.Config{Tier: tenant.TierGrowth}
	mw := newTestMiddleware(t, provider)

	handler := mw(tenant.RequireTenant(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})))

	req := httptest.NewRequest(http.MethodGet, "https://acme.shopgrid.app/", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	req = httptest.NewRequest(http.MethodGet, "https://shopgrid.app/login", nil)
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
