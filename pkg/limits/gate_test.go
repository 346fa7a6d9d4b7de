package limits_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shopgrid/shopgrid/pkg/limits"
	"github.com/shopgrid/shopgrid/pkg/tenant"
)

func growthTenant() *tenant.Context {
	return &tenant.Context{
		TenantID: "acme",
		Tier:     tenant.TierGrowth,
		Limits:   tenant.DefaultTiers().LimitsFor(tenant.TierGrowth),
		Features: tenant.DefaultTiers().FeaturesFor(tenant.TierGrowth),
		Status:   tenant.StatusActive,
	}
}

func TestCheck(t *testing.T) {
	t.Parallel()

	t.Run("under limit", func(t *testing.T) {
		t.Parallel()

		res := limits.Check(growthTenant(), limits.ResourceProducts, 40)
		assert.True(t, res.Allowed)
		assert.Equal(t, int64(60), res.Remaining)
		assert.InDelta(t, 40.0, res.Percentage, 0.01)
	})

	t.Run("at limit", func(t *testing.T) {
		t.Parallel()

		res := limits.Check(growthTenant(), limits.ResourceProducts, 100)
		assert.False(t, res.Allowed)
		assert.Zero(t, res.Remaining)
		assert.InDelta(t, 100.0, res.Percentage, 0.01)
	})

	t.Run("over limit clamps", func(t *testing.T) {
		t.Parallel()

		res := limits.Check(growthTenant(), limits.ResourceProducts, 250)
		assert.False(t, res.Allowed)
		assert.Zero(t, res.Remaining, "remaining never goes negative")
		assert.InDelta(t, 100.0, res.Percentage, 0.01)
	})

	t.Run("unlimited always allows", func(t *testing.T) {
		t.Parallel()

		tc := growthTenant()
		tc.Limits.Orders = tenant.Unlimited

		res := limits.Check(tc, limits.ResourceOrders, 1_000_000_000)
		assert.True(t, res.Allowed)
		assert.Equal(t, tenant.Unlimited, res.Remaining)
		assert.Zero(t, res.Percentage)
	})

	t.Run("zero limit never allows", func(t *testing.T) {
		t.Parallel()

		tc := growthTenant()
		tc.Limits.Products = 0

		res := limits.Check(tc, limits.ResourceProducts, 0)
		assert.False(t, res.Allowed)
	})

	t.Run("unknown resource never allows", func(t *testing.T) {
		t.Parallel()

		res := limits.Check(growthTenant(), limits.Resource("widgets"), 0)
		assert.False(t, res.Allowed)
	})

	t.Run("nil context never allows", func(t *testing.T) {
		t.Parallel()

		res := limits.Check(nil, limits.ResourceProducts, 0)
		assert.False(t, res.Allowed)
	})
}

func TestHasFeature(t *testing.T) {
	t.Parallel()

	tc := growthTenant()
	assert.True(t, limits.HasFeature(tc, tenant.FeatureCustomDomain))
	assert.False(t, limits.HasFeature(tc, tenant.FeatureWebhooks))
	assert.False(t, limits.HasFeature(nil, tenant.FeatureCustomDomain))
}

func TestTierRateLimit(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 500, limits.TierRateLimit(growthTenant()))
	assert.Equal(t, 100, limits.TierRateLimit(nil))

	tc := growthTenant()
	tc.Tier = tenant.TierEnterprise
	assert.Equal(t, 10000, limits.TierRateLimit(tc))
}
