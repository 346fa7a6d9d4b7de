// Package store is the storefront domain module: store provisioning,
// catalog and order writes, and the Postgres repository that also serves
// as the tenant configuration provider for the resolver.
//
// Provisioning enforces the routing layer's slug rules: a slug that is
// reserved as a platform route or subdomain label is rejected, because a
// store with that slug could never be reached. Catalog and order writes
// are gated on the tenant's plan limits before touching storage.
package store
