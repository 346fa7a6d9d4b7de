package tenant

import "errors"

var (
	// ErrTenantNotFound is returned by providers when no record matches
	// the identifier. The resolver treats it like any other fetch failure
	// and degrades to the fallback context.
	ErrTenantNotFound = errors.New("tenant not found")

	// ErrNoTenantInContext is returned when a handler requires a tenant
	// context that the middleware never installed.
	ErrNoTenantInContext = errors.New("no tenant in context")

	// ErrUnknownTier is returned when a tier table names a tier the
	// platform does not define.
	ErrUnknownTier = errors.New("unknown tier")

	// ErrMissingTier is returned when a tier table lacks one of the
	// required tiers.
	ErrMissingTier = errors.New("tier table missing tier")

	// ErrInvalidTierConfig is returned for out-of-range tier values.
	ErrInvalidTierConfig = errors.New("invalid tier configuration")
)
