package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shopgrid/shopgrid/pkg/pg"
	"github.com/shopgrid/shopgrid/pkg/tenant"
)

// Repository is the persistence surface the store service needs.
type Repository interface {
	CreateStore(ctx context.Context, s *Store) error
	GetStoreBySlug(ctx context.Context, slug string) (*Store, error)
	Usage(ctx context.Context, storeID uuid.UUID) (Usage, error)
	CreateProduct(ctx context.Context, p *Product) error
	CreateOrder(ctx context.Context, o *Order) error
}

// PostgresRepository implements Repository on pgx, and doubles as the
// tenant.Provider the resolver consults: store rows are the source of
// truth for tenant configuration.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a Repository over the given pool.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	if pool == nil {
		panic("store.NewPostgresRepository: pool is required")
	}
	return &PostgresRepository{pool: pool}
}

const storeColumns = `id, owner_id, slug, name, tier, status, custom_limits,
	features, auto_renew, payment_status, expires_at, created_at, updated_at`

// CreateStore inserts the store. Returns ErrSlugTaken when the slug is
// already in use.
func (r *PostgresRepository) CreateStore(ctx context.Context, s *Store) error {
	var customLimits []byte
	if s.CustomLimits != nil {
		var err error
		customLimits, err = json.Marshal(s.CustomLimits)
		if err != nil {
			return errors.Join(ErrRepositoryError, err)
		}
	}

	_, err := r.pool.Exec(ctx, `
		INSERT INTO stores (id, owner_id, slug, name, tier, status, custom_limits,
			features, auto_renew, payment_status, expires_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $12)`,
		s.ID, s.OwnerID, s.Slug, s.Name, s.Tier, s.Status, customLimits,
		s.ExtraFeatures, s.AutoRenew, s.PaymentStatus, s.ExpiresAt, s.CreatedAt)
	if err != nil {
		if pg.IsDuplicateKeyError(err) {
			return ErrSlugTaken
		}
		return errors.Join(ErrRepositoryError, err)
	}
	return nil
}

// GetStoreBySlug fetches a store by its slug.
func (r *PostgresRepository) GetStoreBySlug(ctx context.Context, slug string) (*Store, error) {
	row := r.pool.QueryRow(ctx,
		fmt.Sprintf(`SELECT %s FROM stores WHERE slug = $1`, storeColumns), slug)

	var (
		s            Store
		customLimits []byte
	)
	err := row.Scan(&s.ID, &s.OwnerID, &s.Slug, &s.Name, &s.Tier, &s.Status,
		&customLimits, &s.ExtraFeatures, &s.AutoRenew, &s.PaymentStatus,
		&s.ExpiresAt, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, ErrStoreNotFound
		}
		return nil, errors.Join(ErrRepositoryError, err)
	}

	if len(customLimits) > 0 {
		var limits tenant.Limits
		if err := json.Unmarshal(customLimits, &limits); err != nil {
			return nil, errors.Join(ErrRepositoryError, err)
		}
		s.CustomLimits = &limits
	}

	return &s, nil
}

// Usage counts the store's products and orders in one round trip.
func (r *PostgresRepository) Usage(ctx context.Context, storeID uuid.UUID) (Usage, error) {
	var u Usage
	err := r.pool.QueryRow(ctx, `
		SELECT
			(SELECT count(*) FROM products WHERE store_id = $1),
			(SELECT count(*) FROM orders WHERE store_id = $1)`,
		storeID).Scan(&u.Products, &u.Orders)
	if err != nil {
		return Usage{}, errors.Join(ErrRepositoryError, err)
	}
	return u, nil
}

// CreateProduct inserts a catalog entry.
func (r *PostgresRepository) CreateProduct(ctx context.Context, p *Product) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO products (id, store_id, name, price_cents, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		p.ID, p.StoreID, p.Name, p.PriceCents, p.CreatedAt)
	if err != nil {
		return errors.Join(ErrRepositoryError, err)
	}
	return nil
}

// CreateOrder records a placed order.
func (r *PostgresRepository) CreateOrder(ctx context.Context, o *Order) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO orders (id, store_id, total_cents, status, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		o.ID, o.StoreID, o.TotalCents, o.Status, o.CreatedAt)
	if err != nil {
		return errors.Join(ErrRepositoryError, err)
	}
	return nil
}

// TenantConfig implements tenant.Provider: the resolver looks tenants up
// by slug against the stores table.
func (r *PostgresRepository) TenantConfig(ctx context.Context, tenantID string) (*tenant.Config, error) {
	s, err := r.GetStoreBySlug(ctx, tenantID)
	if err != nil {
		if errors.Is(err, ErrStoreNotFound) {
			return nil, tenant.ErrTenantNotFound
		}
		return nil, err
	}

	return &tenant.Config{
		Tier:     s.Tier,
		Limits:   s.CustomLimits,
		Features: s.ExtraFeatures,
		Status:   s.Status,
		Subscription: tenant.Subscription{
			ExpiresAt:     s.ExpiresAt,
			AutoRenew:     s.AutoRenew,
			PaymentStatus: s.PaymentStatus,
		},
	}, nil
}
