package ratelimit

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// Endpoint class names; surfaced as the Reason on rejection so operators
// can tell which layer fired from logs and response audits alone.
const (
	LayerIP            = "ip"
	LayerTenant        = "tenant"
	LayerAuth          = "auth"
	LayerStoreCreation = "store_creation"
	LayerOrders        = "orders"
	LayerAPI           = "api"
)

// ReasonFailOpen prefixes the Reason of a degraded decision where one or
// more layers could not be evaluated and were skipped.
const ReasonFailOpen = "fail_open"

// Default layer budgets.
const (
	defaultIPLimit        = 100  // per minute per client IP
	defaultTenantLimit    = 1000 // per minute per tenant
	defaultAuthLimit      = 5    // per minute per tenant+IP
	defaultStoreCreations = 2    // per hour per IP
	defaultOrderLimit     = 20   // per minute per tenant
	defaultAPIRate        = 50   // sustained tokens per minute
	defaultAPIBurst       = 100

	defaultCheckTimeout = 500 * time.Millisecond
)

// CheckInput carries the request attributes the layered limiter keys on.
type CheckInput struct {
	IP       string
	TenantID string
	Method   string
	// Path is the endpoint path with any tenant slug prefix already
	// stripped, so subdomain and path routed requests classify identically.
	Path string
}

// Layered evaluates rate limit layers in order: client IP, then tenant,
// then the endpoint class the request falls into. The first rejection
// short-circuits; when every layer passes, the most restrictive result
// (minimum remaining) is reported.
type Layered struct {
	ip            Limiter
	tenant        Limiter
	auth          Limiter
	storeCreation Limiter
	orders        Limiter
	api           Limiter

	log          *slog.Logger
	checkTimeout time.Duration
}

type layeredConfig struct {
	ipLimit      int
	tenantLimit  int
	log          *slog.Logger
	checkTimeout time.Duration
}

// LayeredOption configures a Layered limiter.
type LayeredOption func(*layeredConfig)

// WithIPLimit overrides the per-IP requests-per-minute budget.
func WithIPLimit(limit int) LayeredOption {
	return func(c *layeredConfig) {
		if limit > 0 {
			c.ipLimit = limit
		}
	}
}

// WithTenantLimit overrides the per-tenant requests-per-minute budget.
func WithTenantLimit(limit int) LayeredOption {
	return func(c *layeredConfig) {
		if limit > 0 {
			c.tenantLimit = limit
		}
	}
}

// WithLayeredLogger sets the logger for degraded (fail-open) decisions.
func WithLayeredLogger(log *slog.Logger) LayeredOption {
	return func(c *layeredConfig) {
		if log != nil {
			c.log = log
		}
	}
}

// WithCheckTimeout bounds each store round trip. A slow store degrades that
// layer to fail-open instead of stalling the request.
func WithCheckTimeout(d time.Duration) LayeredOption {
	return func(c *layeredConfig) {
		if d > 0 {
			c.checkTimeout = d
		}
	}
}

// NewLayered creates the layered limiter over a shared store.
func NewLayered(store Store, opts ...LayeredOption) (*Layered, error) {
	if store == nil {
		return nil, ErrStoreRequired
	}

	cfg := &layeredConfig{
		ipLimit:      defaultIPLimit,
		tenantLimit:  defaultTenantLimit,
		log:          slog.New(slog.DiscardHandler),
		checkTimeout: defaultCheckTimeout,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	ip, err := NewSlidingWindow(store, cfg.ipLimit, time.Minute)
	if err != nil {
		return nil, err
	}
	tenant, err := NewSlidingWindow(store, cfg.tenantLimit, time.Minute)
	if err != nil {
		return nil, err
	}
	auth, err := NewFixedWindow(store, defaultAuthLimit, time.Minute)
	if err != nil {
		return nil, err
	}
	storeCreation, err := NewFixedWindow(store, defaultStoreCreations, time.Hour)
	if err != nil {
		return nil, err
	}
	orders, err := NewSlidingWindow(store, defaultOrderLimit, time.Minute)
	if err != nil {
		return nil, err
	}
	api, err := NewTokenBucket(store, defaultAPIRate, time.Minute, WithBurst(defaultAPIBurst))
	if err != nil {
		return nil, err
	}

	return &Layered{
		ip:            ip,
		tenant:        tenant,
		auth:          auth,
		storeCreation: storeCreation,
		orders:        orders,
		api:           api,
		log:           cfg.log,
		checkTimeout:  cfg.checkTimeout,
	}, nil
}

type layerCheck struct {
	name    string
	limiter Limiter
	key     string
}

// Check evaluates all applicable layers for the request. It never returns
// an error: store failures degrade the affected layer to fail-open, with
// the degradation recorded in Reason and logged. Layers checked before a
// rejection stay charged, so retrying a rejected request keeps spending
// the outer budgets.
func (l *Layered) Check(ctx context.Context, in CheckInput) *Result {
	checks := []layerCheck{
		{LayerIP, l.ip, Composite("ip", in.IP)},
		{LayerTenant, l.tenant, Composite("tenant", in.TenantID)},
	}
	if c, ok := l.classify(in); ok {
		checks = append(checks, c)
	}

	var (
		minRes   *Result
		degraded string
	)

	for _, c := range checks {
		cctx, cancel := context.WithTimeout(ctx, l.checkTimeout)
		res, err := c.limiter.Allow(cctx, c.key)
		cancel()

		if err != nil {
			l.log.WarnContext(ctx, "rate limit layer degraded to fail-open",
				slog.String("layer", c.name),
				slog.String("key", c.key),
				slog.Any("error", err))
			degraded = c.name
			continue
		}

		if res.Blocked() {
			res.Reason = c.name
			return res
		}

		if minRes == nil || res.Remaining < minRes.Remaining {
			minRes = res
		}
	}

	if minRes == nil {
		// Every layer degraded; admit the request but say so.
		return &Result{Allowed: true, Reason: ReasonFailOpen + ":" + degraded}
	}
	if degraded != "" {
		minRes.Reason = ReasonFailOpen + ":" + degraded
	}
	return minRes
}

// classify maps the request to its endpoint class layer, if any. Paths
// outside every class are only subject to the IP and tenant layers.
func (l *Layered) classify(in CheckInput) (layerCheck, bool) {
	switch {
	case isAuthPath(in.Path):
		return layerCheck{LayerAuth, l.auth, Composite("auth", in.TenantID, in.IP)}, true
	case in.Method == http.MethodPost && in.Path == "/api/stores":
		return layerCheck{LayerStoreCreation, l.storeCreation, Composite("storecreate", in.IP)}, true
	case in.Method == http.MethodPost && in.Path == "/api/orders":
		return layerCheck{LayerOrders, l.orders, Composite("orders", in.TenantID)}, true
	case strings.HasPrefix(in.Path, "/api/"):
		return layerCheck{LayerAPI, l.api, Composite("api", in.TenantID, in.Path)}, true
	}
	return layerCheck{}, false
}

func isAuthPath(path string) bool {
	return strings.HasPrefix(path, "/auth/") ||
		path == "/auth" || path == "/login" || path == "/signup"
}
