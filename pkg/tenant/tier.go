package tenant

import (
	"fmt"
	"io"
	"slices"

	"gopkg.in/yaml.v3"
)

// TierConfig bundles everything a tier grants: resource limits, feature
// flags, and the per-tenant API request budget used for quota enforcement.
type TierConfig struct {
	Limits    Limits   `yaml:"limits"`
	Features  []string `yaml:"features"`
	RateLimit int      `yaml:"rate_limit"`
}

// TierTable is the canonical tier → entitlements mapping. One table feeds
// the resolver's preset merging, the limit gate, and tier-based API quotas,
// so the numbers cannot drift between components. The table is treated as
// immutable after construction.
type TierTable map[Tier]TierConfig

// Feature flag names granted by tiers.
const (
	FeatureCustomDomain    = "custom_domain"
	FeatureAnalytics       = "analytics"
	FeatureAPIAccess       = "api_access"
	FeatureCSVImport       = "csv_import"
	FeatureDiscountCodes   = "discount_codes"
	FeatureWebhooks        = "webhooks"
	FeaturePrioritySupport = "priority_support"
)

// DefaultTiers returns the built-in tier table.
func DefaultTiers() TierTable {
	return TierTable{
		TierStarter: {
			Limits:    Limits{Products: 10, Orders: 100, StorageMB: 500, BandwidthGB: 10, APICalls: 10_000},
			Features:  []string{},
			RateLimit: 100,
		},
		TierGrowth: {
			Limits:    Limits{Products: 100, Orders: 1_000, StorageMB: 5_000, BandwidthGB: 100, APICalls: 100_000},
			Features:  []string{FeatureCustomDomain, FeatureDiscountCodes},
			RateLimit: 500,
		},
		TierPro: {
			Limits:    Limits{Products: 1_000, Orders: 10_000, StorageMB: 50_000, BandwidthGB: 500, APICalls: 1_000_000},
			Features:  []string{FeatureCustomDomain, FeatureDiscountCodes, FeatureAnalytics, FeatureAPIAccess, FeatureCSVImport},
			RateLimit: 2000,
		},
		TierEnterprise: {
			Limits:    Limits{Products: Unlimited, Orders: Unlimited, StorageMB: Unlimited, BandwidthGB: Unlimited, APICalls: Unlimited},
			Features:  []string{FeatureCustomDomain, FeatureDiscountCodes, FeatureAnalytics, FeatureAPIAccess, FeatureCSVImport, FeatureWebhooks, FeaturePrioritySupport},
			RateLimit: 10000,
		},
	}
}

// LoadTiers reads a tier table from YAML, for deployments that override the
// built-in entitlements. Missing tiers fall back to the defaults.
func LoadTiers(r io.Reader) (TierTable, error) {
	table := DefaultTiers()

	var overrides map[Tier]TierConfig
	if err := yaml.NewDecoder(r).Decode(&overrides); err != nil {
		return nil, fmt.Errorf("decode tier table: %w", err)
	}

	for tier, cfg := range overrides {
		if !tier.Valid() {
			return nil, fmt.Errorf("%w: %q", ErrUnknownTier, tier)
		}
		table[tier] = cfg
	}

	if err := table.Validate(); err != nil {
		return nil, err
	}
	return table, nil
}

// Validate checks the table covers all tiers with sane values.
func (t TierTable) Validate() error {
	for _, tier := range []Tier{TierStarter, TierGrowth, TierPro, TierEnterprise} {
		cfg, ok := t[tier]
		if !ok {
			return fmt.Errorf("%w: %q", ErrMissingTier, tier)
		}
		if cfg.RateLimit <= 0 {
			return fmt.Errorf("%w: tier %q has non-positive rate limit", ErrInvalidTierConfig, tier)
		}
		for name, v := range map[string]int64{
			"products":     cfg.Limits.Products,
			"orders":       cfg.Limits.Orders,
			"storage_mb":   cfg.Limits.StorageMB,
			"bandwidth_gb": cfg.Limits.BandwidthGB,
			"api_calls":    cfg.Limits.APICalls,
		} {
			if v < Unlimited {
				return fmt.Errorf("%w: tier %q limit %s is %d", ErrInvalidTierConfig, tier, name, v)
			}
		}
	}
	return nil
}

// LimitsFor returns the resource limits for a tier, falling back to starter
// for unknown tiers so callers always get a complete value.
func (t TierTable) LimitsFor(tier Tier) Limits {
	if cfg, ok := t[tier]; ok {
		return cfg.Limits
	}
	return t[TierStarter].Limits
}

// FeaturesFor returns a copy of the feature list for a tier.
func (t TierTable) FeaturesFor(tier Tier) []string {
	if cfg, ok := t[tier]; ok {
		return slices.Clone(cfg.Features)
	}
	return slices.Clone(t[TierStarter].Features)
}

// RateLimitFor returns the per-tenant API request budget for a tier.
func (t TierTable) RateLimitFor(tier Tier) int {
	if cfg, ok := t[tier]; ok {
		return cfg.RateLimit
	}
	return t[TierStarter].RateLimit
}
