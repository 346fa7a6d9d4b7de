package tenant

import (
	"context"
	"slices"
	"time"
)

// Tier is a billing/capability tier governing resource limits and features.
type Tier string

const (
	TierStarter    Tier = "starter"
	TierGrowth     Tier = "growth"
	TierPro        Tier = "pro"
	TierEnterprise Tier = "enterprise"
)

// Valid reports whether the tier is one of the known tiers.
func (t Tier) Valid() bool {
	switch t {
	case TierStarter, TierGrowth, TierPro, TierEnterprise:
		return true
	}
	return false
}

// Status is the tenant's lifecycle state.
type Status string

const (
	StatusActive    Status = "active"
	StatusSuspended Status = "suspended"
	StatusPending   Status = "pending"
)

// Valid reports whether the status is one of the known states.
func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusSuspended, StatusPending:
		return true
	}
	return false
}

// PaymentStatus is the subscription's billing state.
type PaymentStatus string

const (
	PaymentCurrent   PaymentStatus = "current"
	PaymentPastDue   PaymentStatus = "past_due"
	PaymentCancelled PaymentStatus = "cancelled"
)

// Unlimited marks a resource with no cap.
const Unlimited int64 = -1

// Limits holds per-tenant resource caps. A value of Unlimited (-1) means
// the resource is not capped.
type Limits struct {
	Products    int64 `json:"products" yaml:"products"`
	Orders      int64 `json:"orders" yaml:"orders"`
	StorageMB   int64 `json:"storage_mb" yaml:"storage_mb"`
	BandwidthGB int64 `json:"bandwidth_gb" yaml:"bandwidth_gb"`
	APICalls    int64 `json:"api_calls" yaml:"api_calls"`
}

// Subscription describes the tenant's billing subscription.
type Subscription struct {
	ExpiresAt     *time.Time    `json:"expires_at"`
	AutoRenew     bool          `json:"auto_renew"`
	PaymentStatus PaymentStatus `json:"payment_status"`
}

// Context is the fully resolved tenant identity for one request. It is
// constructed fresh every request and never partially populated: resolution
// either yields a complete object or falls back wholesale to the default
// context.
type Context struct {
	TenantID     string       `json:"tenant_id"`
	TenantSlug   string       `json:"tenant_slug"`
	Strategy     Strategy     `json:"strategy"`
	Tier         Tier         `json:"tier"`
	Limits       Limits       `json:"limits"`
	Features     []string     `json:"features"`
	Status       Status       `json:"status"`
	Subscription Subscription `json:"subscription"`
}

// HasFeature reports whether the tenant's tier/overrides enable a feature.
func (c *Context) HasFeature(name string) bool {
	return slices.Contains(c.Features, name)
}

// IsDefault reports whether this is the fallback context for unrecognized
// tenants.
func (c *Context) IsDefault() bool {
	return c.TenantID == DefaultTenantID
}

// Config is the raw tenant configuration record fetched from the store
// table. Fields left zero are filled from tier presets during resolution.
type Config struct {
	Tier         Tier
	Limits       *Limits // nil means "use the tier preset"
	Features     []string
	Status       Status
	Subscription Subscription
}

// Provider loads tenant configuration from a data source, typically the
// stores table. Implementations must return ErrTenantNotFound when no
// record matches the identifier.
type Provider interface {
	TenantConfig(ctx context.Context, tenantID string) (*Config, error)
}

// ProviderFunc adapts a function to the Provider interface.
type ProviderFunc func(ctx context.Context, tenantID string) (*Config, error)

func (f ProviderFunc) TenantConfig(ctx context.Context, tenantID string) (*Config, error) {
	return f(ctx, tenantID)
}
