package tenant_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopgrid/shopgrid/pkg/tenant"
)

func TestClassifier_Classify(t *testing.T) {
	t.Parallel()

	c := tenant.NewClassifier("shopgrid.app")

	tests := []struct {
		name     string
		hostname string
		pathname string
		want     tenant.Classification
	}{
		{
			name:     "subdomain routing",
			hostname: "acme.shopgrid.app",
			pathname: "/dashboard",
			want:     tenant.Classification{TenantID: "acme", TenantSlug: "acme", Strategy: tenant.StrategySubdomain},
		},
		{
			name:     "subdomain with port",
			hostname: "acme.shopgrid.app:8080",
			pathname: "/",
			want:     tenant.Classification{TenantID: "acme", TenantSlug: "acme", Strategy: tenant.StrategySubdomain},
		},
		{
			name:     "subdomain wins over path content",
			hostname: "acme.shopgrid.app",
			pathname: "/other-store/products",
			want:     tenant.Classification{TenantID: "acme", TenantSlug: "acme", Strategy: tenant.StrategySubdomain},
		},
		{
			name:     "nested subdomain uses leftmost label",
			hostname: "acme.eu.shopgrid.app",
			pathname: "/",
			want:     tenant.Classification{TenantID: "acme", TenantSlug: "acme", Strategy: tenant.StrategySubdomain},
		},
		{
			name:     "www is not a tenant",
			hostname: "www.shopgrid.app",
			pathname: "/",
			want:     tenant.Classification{Strategy: tenant.StrategyDefault},
		},
		{
			name:     "reserved api label falls through to path",
			hostname: "api.shopgrid.app",
			pathname: "/acme/products",
			want:     tenant.Classification{TenantID: "acme", TenantSlug: "acme", Strategy: tenant.StrategyPath},
		},
		{
			name:     "bare base domain uses path routing",
			hostname: "shopgrid.app",
			pathname: "/acme/dashboard",
			want:     tenant.Classification{TenantID: "acme", TenantSlug: "acme", Strategy: tenant.StrategyPath},
		},
		{
			name:     "foreign domain uses path routing",
			hostname: "example.com",
			pathname: "/acme",
			want:     tenant.Classification{TenantID: "acme", TenantSlug: "acme", Strategy: tenant.StrategyPath},
		},
		{
			name:     "absent hostname falls to path",
			hostname: "",
			pathname: "/acme/checkout",
			want:     tenant.Classification{TenantID: "acme", TenantSlug: "acme", Strategy: tenant.StrategyPath},
		},
		{
			name:     "direct ip access falls to path",
			hostname: "203.0.113.7:8080",
			pathname: "/acme",
			want:     tenant.Classification{TenantID: "acme", TenantSlug: "acme", Strategy: tenant.StrategyPath},
		},
		{
			name:     "root path yields default",
			hostname: "shopgrid.app",
			pathname: "/",
			want:     tenant.Classification{Strategy: tenant.StrategyDefault},
		},
		{
			name:     "login is reserved",
			hostname: "shopgrid.app",
			pathname: "/login",
			want:     tenant.Classification{Strategy: tenant.StrategyDefault},
		},
		{
			name:     "invalid slug characters yield default",
			hostname: "shopgrid.app",
			pathname: "/Not%20A%20Slug/x",
			want:     tenant.Classification{Strategy: tenant.StrategyDefault},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, c.Classify(tt.hostname, tt.pathname))
		})
	}
}

func TestClassifier_Determinism(t *testing.T) {
	t.Parallel()

	c := tenant.NewClassifier("shopgrid.app")

	inputs := [][2]string{
		{"acme.shopgrid.app", "/dashboard"},
		{"shopgrid.app", "/acme/dashboard"},
		{"shopgrid.app", "/login"},
		{"", "/"},
	}

	for _, in := range inputs {
		first := c.Classify(in[0], in[1])
		for range 10 {
			assert.Equal(t, first, c.Classify(in[0], in[1]))
		}
	}
}

func TestClassifier_ReservedRoutesNeverPathTenants(t *testing.T) {
	t.Parallel()

	c := tenant.NewClassifier("shopgrid.app")

	for _, route := range tenant.DefaultReservedRoutes() {
		got := c.Classify("shopgrid.app", "/"+route+"/whatever")
		assert.Equal(t, tenant.StrategyDefault, got.Strategy, "route %q must not classify as path tenant", route)
		assert.Empty(t, got.TenantID)
	}
}

func TestClassifier_ConfigurableReservedRoutes(t *testing.T) {
	t.Parallel()

	c := tenant.NewClassifier("shopgrid.app", tenant.WithReservedRoutes("internal"))

	// Custom set replaces the default: "login" is now a valid slug,
	// "internal" is not.
	got := c.Classify("shopgrid.app", "/login/x")
	require.Equal(t, tenant.StrategyPath, got.Strategy)
	assert.Equal(t, "login", got.TenantID)

	got = c.Classify("shopgrid.app", "/internal/x")
	assert.Equal(t, tenant.StrategyDefault, got.Strategy)
}

func TestValidSlug(t *testing.T) {
	t.Parallel()

	assert.True(t, tenant.ValidSlug("acme"))
	assert.True(t, tenant.ValidSlug("acme-store-2"))
	assert.False(t, tenant.ValidSlug(""))
	assert.False(t, tenant.ValidSlug("-acme"))
	assert.False(t, tenant.ValidSlug("Acme"))
	assert.False(t, tenant.ValidSlug("acme.store"))
	assert.False(t, tenant.ValidSlug(string(make([]byte, 64))))
}
