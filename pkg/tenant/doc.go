// Package tenant implements tenant identity resolution for the multi-tenant
// storefront platform: routing-strategy classification (subdomain vs path),
// tenant context construction with tier-based entitlement merging, and the
// HTTP middleware that injects tenant identity into every request before
// route handlers run.
//
// # Request flow
//
// Every inbound request passes classifier → resolver → header injection,
// synchronously, before any handler executes:
//
//	classifier := tenant.NewClassifier("shopgrid.app")
//	resolver := tenant.NewResolver(provider, tenant.WithResolverLogger(log))
//	router.Use(tenant.Middleware(classifier, resolver))
//
// Handlers read identity from the injected X-Tenant-* headers or via
// FromContext. Resolution is memoized per request and never fails: provider
// errors degrade to the starter-tier fallback context and are logged, so
// tenant lookup outages cannot take request serving down with them.
//
// # Tier table
//
// One canonical TierTable maps each tier to its resource limits, feature
// flags, and API rate budget. The resolver, the limit gate, and tier-based
// quotas all read this single table.
package tenant
