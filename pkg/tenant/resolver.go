package tenant

import (
	"context"
	"log/slog"
	"slices"
	"time"

	"github.com/shopgrid/shopgrid/pkg/cache"
)

// Resolver turns a tenant identifier into a fully populated Context.
// Resolution never fails: any provider error degrades to the default
// entitlements for the requested tenant and is reported through the logger,
// because tenant resolution must not be a hard failure point for serving
// requests.
type Resolver struct {
	provider    Provider
	tiers       TierTable
	log         *slog.Logger
	timeout     time.Duration
	configCache *cache.TTL[string, Config]
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithTierTable overrides the built-in tier table.
func WithTierTable(t TierTable) ResolverOption {
	return func(r *Resolver) {
		if t != nil {
			r.tiers = t
		}
	}
}

// WithResolverLogger sets the logger for resolution failure reports.
func WithResolverLogger(log *slog.Logger) ResolverOption {
	return func(r *Resolver) {
		if log != nil {
			r.log = log
		}
	}
}

// WithFetchTimeout bounds each provider round trip. A fetch exceeding the
// bound degrades to the fallback context instead of holding the request.
func WithFetchTimeout(d time.Duration) ResolverOption {
	return func(r *Resolver) {
		if d > 0 {
			r.timeout = d
		}
	}
}

// WithConfigCache enables cross-request caching of raw provider records in
// the given caller-owned cache. Resolved Contexts are still built fresh
// per request; only the fetched Config is shared. Without this option every
// request fetches its own copy.
func WithConfigCache(c *cache.TTL[string, Config]) ResolverOption {
	return func(r *Resolver) {
		r.configCache = c
	}
}

// NewResolver creates a Resolver backed by the given provider.
func NewResolver(provider Provider, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		provider: provider,
		tiers:    DefaultTiers(),
		log:      slog.New(slog.DiscardHandler),
		timeout:  2 * time.Second,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// DefaultContext returns the complete fallback context used when no tenant
// is recognized: starter tier, active status, default identifiers.
func (r *Resolver) DefaultContext() *Context {
	return r.fallbackContext(DefaultTenantID)
}

// Resolve produces the tenant context for tenantID. The result is memoized
// within the request's resolution scope, so repeated calls during one
// request hit the provider at most once.
func (r *Resolver) Resolve(ctx context.Context, tenantID string) *Context {
	if tenantID == "" || tenantID == DefaultTenantID {
		return r.DefaultContext()
	}

	scope := scopeFrom(ctx)
	if scope != nil {
		if tc, ok := scope.get(tenantID); ok {
			return tc
		}
	}

	tc := r.resolve(ctx, tenantID)

	if scope != nil {
		scope.set(tenantID, tc)
	}
	return tc
}

func (r *Resolver) resolve(ctx context.Context, tenantID string) *Context {
	cfg, err := r.fetchConfig(ctx, tenantID)
	if err != nil {
		r.log.WarnContext(ctx, "tenant resolution failed, serving default context",
			"tenant_id", tenantID, "error", err)
		return r.fallbackContext(tenantID)
	}
	return r.buildContext(tenantID, cfg)
}

func (r *Resolver) fetchConfig(ctx context.Context, tenantID string) (Config, error) {
	fetch := func() (Config, error) {
		fetchCtx, cancel := context.WithTimeout(ctx, r.timeout)
		defer cancel()

		cfg, err := r.provider.TenantConfig(fetchCtx, tenantID)
		if err != nil {
			return Config{}, err
		}
		if cfg == nil {
			return Config{}, ErrTenantNotFound
		}
		return *cfg, nil
	}

	if r.configCache != nil {
		return r.configCache.GetOrCompute(tenantID, fetch)
	}
	return fetch()
}

// buildContext merges a fetched record onto tier presets so every field of
// the result is populated. Unknown enum values degrade to safe defaults
// rather than leaking through.
func (r *Resolver) buildContext(tenantID string, cfg Config) *Context {
	tier := cfg.Tier
	if !tier.Valid() {
		tier = TierStarter
	}

	limits := r.tiers.LimitsFor(tier)
	if cfg.Limits != nil {
		limits = *cfg.Limits
	}

	features := r.tiers.FeaturesFor(tier)
	for _, f := range cfg.Features {
		if !slices.Contains(features, f) {
			features = append(features, f)
		}
	}

	status := cfg.Status
	if !status.Valid() {
		status = StatusActive
	}

	sub := cfg.Subscription
	if sub.PaymentStatus == "" {
		sub.PaymentStatus = PaymentCurrent
	}

	return &Context{
		TenantID:     tenantID,
		TenantSlug:   tenantID,
		Strategy:     StrategyDefault,
		Tier:         tier,
		Limits:       limits,
		Features:     features,
		Status:       status,
		Subscription: sub,
	}
}

// fallbackContext is the default entitlement set stamped with the requested
// identity, used both for the "default" tenant and for fetch failures.
func (r *Resolver) fallbackContext(tenantID string) *Context {
	return &Context{
		TenantID:     tenantID,
		TenantSlug:   tenantID,
		Strategy:     StrategyDefault,
		Tier:         TierStarter,
		Limits:       r.tiers.LimitsFor(TierStarter),
		Features:     r.tiers.FeaturesFor(TierStarter),
		Status:       StatusActive,
		Subscription: Subscription{PaymentStatus: PaymentCurrent},
	}
}
