package limits

import (
	"github.com/shopgrid/shopgrid/pkg/tenant"
)

// Resource identifies a metered tenant resource.
type Resource string

const (
	ResourceProducts    Resource = "products"
	ResourceOrders      Resource = "orders"
	ResourceStorageMB   Resource = "storage_mb"
	ResourceBandwidthGB Resource = "bandwidth_gb"
	ResourceAPICalls    Resource = "api_calls"
)

// CheckResult is the outcome of a limit check. Advisory only: callers
// decide whether to block, warn, or upsell.
type CheckResult struct {
	// Allowed reports whether current usage is still under the limit.
	Allowed bool

	// Remaining is how much headroom is left. Never negative;
	// tenant.Unlimited when the resource is uncapped.
	Remaining int64

	// Percentage is usage as a share of the limit, capped at 100.
	// Zero for uncapped resources.
	Percentage float64
}

// Check compares current usage against the tenant's limit for the resource.
// Pure function, no I/O: usage accounting is the caller's concern.
func Check(tc *tenant.Context, resource Resource, currentUsage int64) CheckResult {
	limit := limitFor(tc, resource)

	if limit == tenant.Unlimited {
		return CheckResult{Allowed: true, Remaining: tenant.Unlimited}
	}
	if limit <= 0 {
		return CheckResult{}
	}
	if currentUsage < 0 {
		currentUsage = 0
	}

	pct := float64(currentUsage) / float64(limit) * 100
	if pct > 100 {
		pct = 100
	}

	return CheckResult{
		Allowed:    currentUsage < limit,
		Remaining:  max(0, limit-currentUsage),
		Percentage: pct,
	}
}

// HasFeature reports whether the tenant's plan includes the feature.
func HasFeature(tc *tenant.Context, feature string) bool {
	return tc != nil && tc.HasFeature(feature)
}

// TierRateLimit returns the tenant's API requests-per-minute budget from
// the canonical tier table.
func TierRateLimit(tc *tenant.Context) int {
	if tc == nil {
		return tenant.DefaultTiers().RateLimitFor(tenant.TierStarter)
	}
	return tenant.DefaultTiers().RateLimitFor(tc.Tier)
}

func limitFor(tc *tenant.Context, resource Resource) int64 {
	if tc == nil {
		return 0
	}
	switch resource {
	case ResourceProducts:
		return tc.Limits.Products
	case ResourceOrders:
		return tc.Limits.Orders
	case ResourceStorageMB:
		return tc.Limits.StorageMB
	case ResourceBandwidthGB:
		return tc.Limits.BandwidthGB
	case ResourceAPICalls:
		return tc.Limits.APICalls
	default:
		return 0
	}
}
