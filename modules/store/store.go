package store

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/shopgrid/shopgrid/pkg/tenant"
)

var (
	ErrStoreNotFound   = errors.New("store not found")
	ErrInvalidSlug     = errors.New("invalid store slug")
	ErrSlugReserved    = errors.New("store slug is reserved")
	ErrSlugTaken       = errors.New("store slug already taken")
	ErrInvalidTier     = errors.New("invalid tier")
	ErrLimitExceeded   = errors.New("plan limit exceeded")
	ErrNoTenant        = errors.New("request has no tenant")
	ErrRepositoryError = errors.New("store repository error")
)

// Store is one merchant storefront. Its slug doubles as the tenant ID the
// routing layer resolves, so slug rules mirror the classifier's.
type Store struct {
	ID            uuid.UUID
	OwnerID       uuid.UUID
	Slug          string
	Name          string
	Tier          tenant.Tier
	Status        tenant.Status
	CustomLimits  *tenant.Limits
	ExtraFeatures []string
	AutoRenew     bool
	PaymentStatus tenant.PaymentStatus
	ExpiresAt     *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Product is a catalog entry.
type Product struct {
	ID         uuid.UUID
	StoreID    uuid.UUID
	Name       string
	PriceCents int64
	CreatedAt  time.Time
}

// Order is a placed order. Payment processing is out of scope; orders are
// recorded for usage accounting and fulfillment.
type Order struct {
	ID         uuid.UUID
	StoreID    uuid.UUID
	TotalCents int64
	Status     string
	CreatedAt  time.Time
}

// Usage aggregates a store's metered resource consumption.
type Usage struct {
	Products int64
	Orders   int64
}
