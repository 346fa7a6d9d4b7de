package store

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/shopgrid/shopgrid/pkg/limits"
	"github.com/shopgrid/shopgrid/pkg/slug"
	"github.com/shopgrid/shopgrid/pkg/tenant"
)

// Service implements the storefront business rules: store provisioning
// with reserved-slug validation, and plan-limit gates in front of catalog
// and order writes.
type Service struct {
	repo       Repository
	classifier *tenant.Classifier
	log        *slog.Logger
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithServiceLogger sets the service logger.
func WithServiceLogger(log *slog.Logger) ServiceOption {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

// NewService creates a store Service. The classifier supplies the reserved
// route and subdomain label sets, so a slug that would be unroutable can
// never be provisioned.
func NewService(repo Repository, classifier *tenant.Classifier, opts ...ServiceOption) *Service {
	if repo == nil {
		panic("store.NewService: repository is required")
	}
	if classifier == nil {
		panic("store.NewService: classifier is required")
	}

	s := &Service{
		repo:       repo,
		classifier: classifier,
		log:        slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateStoreInput is the provisioning request.
type CreateStoreInput struct {
	OwnerID uuid.UUID
	Slug    string
	Name    string
	Tier    tenant.Tier
}

// CreateStore provisions a storefront. The slug must be a valid tenant
// slug and must not collide with reserved routes or reserved subdomain
// labels, or the new store would be unreachable under one of the routing
// strategies.
func (s *Service) CreateStore(ctx context.Context, in CreateStoreInput) (*Store, error) {
	storeSlug := strings.ToLower(strings.TrimSpace(in.Slug))
	if storeSlug == "" {
		storeSlug = slug.Make(in.Name)
	}

	if !tenant.ValidSlug(storeSlug) || storeSlug == tenant.DefaultTenantID {
		return nil, fmt.Errorf("%w: %q", ErrInvalidSlug, in.Slug)
	}
	if s.classifier.IsReservedRoute(storeSlug) || s.classifier.IsReservedLabel(storeSlug) {
		return nil, fmt.Errorf("%w: %q", ErrSlugReserved, storeSlug)
	}

	tier := in.Tier
	if tier == "" {
		tier = tenant.TierStarter
	}
	if !tier.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTier, in.Tier)
	}

	now := time.Now().UTC()
	st := &Store{
		ID:            uuid.New(),
		OwnerID:       in.OwnerID,
		Slug:          storeSlug,
		Name:          strings.TrimSpace(in.Name),
		Tier:          tier,
		Status:        tenant.StatusActive,
		AutoRenew:     true,
		PaymentStatus: tenant.PaymentCurrent,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.repo.CreateStore(ctx, st); err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "store created",
		slog.String("store_id", st.ID.String()),
		slog.String("slug", st.Slug),
		slog.String("tier", string(st.Tier)))

	return st, nil
}

// AddProductInput is a catalog write request.
type AddProductInput struct {
	Name       string
	PriceCents int64
}

// AddProduct creates a product for the request's tenant, gated on the
// tenant's product limit.
func (s *Service) AddProduct(ctx context.Context, in AddProductInput) (*Product, error) {
	st, tc, err := s.currentStore(ctx)
	if err != nil {
		return nil, err
	}

	usage, err := s.repo.Usage(ctx, st.ID)
	if err != nil {
		return nil, err
	}

	if gate := limits.Check(tc, limits.ResourceProducts, usage.Products); !gate.Allowed {
		return nil, fmt.Errorf("%w: products (%d of %d used)",
			ErrLimitExceeded, usage.Products, tc.Limits.Products)
	}

	p := &Product{
		ID:         uuid.New(),
		StoreID:    st.ID,
		Name:       strings.TrimSpace(in.Name),
		PriceCents: in.PriceCents,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.repo.CreateProduct(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// PlaceOrderInput is an order placement request.
type PlaceOrderInput struct {
	TotalCents int64
}

// PlaceOrder records an order for the request's tenant, gated on the
// tenant's order limit.
func (s *Service) PlaceOrder(ctx context.Context, in PlaceOrderInput) (*Order, error) {
	st, tc, err := s.currentStore(ctx)
	if err != nil {
		return nil, err
	}

	usage, err := s.repo.Usage(ctx, st.ID)
	if err != nil {
		return nil, err
	}

	if gate := limits.Check(tc, limits.ResourceOrders, usage.Orders); !gate.Allowed {
		return nil, fmt.Errorf("%w: orders (%d of %d used)",
			ErrLimitExceeded, usage.Orders, tc.Limits.Orders)
	}

	o := &Order{
		ID:         uuid.New(),
		StoreID:    st.ID,
		TotalCents: in.TotalCents,
		Status:     "pending",
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.repo.CreateOrder(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

// StorefrontInfo describes the current tenant's storefront for API clients.
type StorefrontInfo struct {
	Slug     string        `json:"slug"`
	Name     string        `json:"name"`
	Tier     tenant.Tier   `json:"tier"`
	Status   tenant.Status `json:"status"`
	Strategy string        `json:"strategy"`
	Features []string      `json:"features"`
	Usage    Usage         `json:"usage"`
	Limits   tenant.Limits `json:"limits"`
}

// Storefront returns the resolved storefront view for the request tenant.
func (s *Service) Storefront(ctx context.Context) (*StorefrontInfo, error) {
	st, tc, err := s.currentStore(ctx)
	if err != nil {
		return nil, err
	}

	usage, err := s.repo.Usage(ctx, st.ID)
	if err != nil {
		return nil, err
	}

	return &StorefrontInfo{
		Slug:     st.Slug,
		Name:     st.Name,
		Tier:     tc.Tier,
		Status:   tc.Status,
		Strategy: string(tc.Strategy),
		Features: tc.Features,
		Usage:    usage,
		Limits:   tc.Limits,
	}, nil
}

// currentStore loads the store backing the request's tenant context.
func (s *Service) currentStore(ctx context.Context) (*Store, *tenant.Context, error) {
	tc, ok := tenant.FromContext(ctx)
	if !ok || tc.IsDefault() {
		return nil, nil, ErrNoTenant
	}

	st, err := s.repo.GetStoreBySlug(ctx, tc.TenantID)
	if err != nil {
		return nil, nil, err
	}
	return st, tc, nil
}
