package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/shopgrid/shopgrid/modules/store"
	"github.com/shopgrid/shopgrid/pkg/cache"
	"github.com/shopgrid/shopgrid/pkg/clientip"
	"github.com/shopgrid/shopgrid/pkg/config"
	"github.com/shopgrid/shopgrid/pkg/httpserver"
	"github.com/shopgrid/shopgrid/pkg/limits"
	"github.com/shopgrid/shopgrid/pkg/logger"
	"github.com/shopgrid/shopgrid/pkg/pg"
	"github.com/shopgrid/shopgrid/pkg/ratelimit"
	"github.com/shopgrid/shopgrid/pkg/redis"
	"github.com/shopgrid/shopgrid/pkg/requestid"
	"github.com/shopgrid/shopgrid/pkg/session"
	"github.com/shopgrid/shopgrid/pkg/tenant"
)

type appConfig struct {
	Environment string `env:"APP_ENV" envDefault:"development"`
	ServiceName string `env:"APP_NAME" envDefault:"shopgrid"`
	BaseDomain  string `env:"BASE_DOMAIN" envDefault:"shopgrid.app"`
	HTTPAddr    string `env:"HTTP_ADDR" envDefault:":8080"`

	SessionSecret string `env:"SESSION_SECRET,required"`

	// Optional YAML file overriding the built-in tier presets.
	TiersFile string `env:"TIERS_FILE"`

	// Cross-request tenant config cache; zero disables it so every
	// request hits the provider (with per-request memoization on top).
	TenantCacheTTL time.Duration `env:"TENANT_CACHE_TTL" envDefault:"0s"`

	PG    pg.Config
	Redis redis.Config
}

func main() {
	ctx := context.Background()

	var cfg appConfig
	config.MustLoad(&cfg)

	log := logger.New(
		logger.WithEnvironment(cfg.Environment, cfg.ServiceName),
		logger.WithContextExtractors(
			requestid.LoggerExtractor(),
			tenant.LoggerExtractor(),
		),
	)
	logger.SetAsDefault(log)

	if err := run(ctx, cfg, log); err != nil {
		log.ErrorContext(ctx, "server exited with error", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg appConfig, log *slog.Logger) error {
	pool, err := pg.Connect(ctx, cfg.PG)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := pg.Migrate(ctx, pool, cfg.PG, log); err != nil {
		return err
	}

	rdb, err := redis.Connect(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	defer rdb.Close() //nolint:errcheck

	tiers := tenant.DefaultTiers()
	if cfg.TiersFile != "" {
		f, err := os.Open(cfg.TiersFile)
		if err != nil {
			return err
		}
		tiers, err = tenant.LoadTiers(f)
		f.Close() //nolint:errcheck
		if err != nil {
			return err
		}
	}

	repo := store.NewPostgresRepository(pool)
	classifier := tenant.NewClassifier(cfg.BaseDomain)

	resolverOpts := []tenant.ResolverOption{
		tenant.WithTierTable(tiers),
		tenant.WithResolverLogger(log),
	}
	if cfg.TenantCacheTTL > 0 {
		resolverOpts = append(resolverOpts,
			tenant.WithConfigCache(cache.NewTTL[string, tenant.Config](cfg.TenantCacheTTL)))
	}
	resolver := tenant.NewResolver(repo, resolverOpts...)

	rlStore, err := ratelimit.NewRedisStore(rdb)
	if err != nil {
		return err
	}
	layered, err := ratelimit.NewLayered(rlStore, ratelimit.WithLayeredLogger(log))
	if err != nil {
		return err
	}

	auth, err := session.NewAuthenticator(cfg.SessionSecret)
	if err != nil {
		return err
	}
	guard := session.NewGuard(auth,
		session.Rule{Prefix: "/dashboard", Roles: []session.Role{session.RoleOwner, session.RoleStaff}},
		session.Rule{Prefix: "/dashboard/billing", Roles: []session.Role{session.RoleOwner}},
		session.Rule{Prefix: "/account"},
		session.Rule{Prefix: "/admin", Roles: []session.Role{session.RoleAdmin}},
		session.Rule{Prefix: "/api/stores", Roles: []session.Role{session.RoleOwner, session.RoleAdmin}},
	)

	svc := store.NewService(repo, classifier, store.WithServiceLogger(log))

	r := chi.NewRouter()
	r.Use(requestid.Middleware)
	r.Use(clientip.Middleware)
	r.Use(tenant.Middleware(classifier, resolver))
	r.Use(ratelimit.Middleware(layered))
	r.Use(guard.Middleware)

	r.Get("/healthz", healthHandler(pg.Healthcheck(pool), redis.Healthcheck(rdb)))

	// Storefront API is reachable both on the base domain ("/api/...")
	// and under a tenant path prefix; subdomain requests arrive here
	// already rewritten to the path form.
	r.Mount("/api", store.Router(svc))
	r.Get("/dashboard", dashboardHandler(svc))
	r.Get("/dashboard/*", dashboardHandler(svc))
	r.Route("/{storeSlug}", func(sr chi.Router) {
		sr.Mount("/api", store.Router(svc))
		sr.Get("/dashboard", dashboardHandler(svc))
		sr.Get("/dashboard/*", dashboardHandler(svc))
	})

	srv := httpserver.New(
		httpserver.WithAddr(cfg.HTTPAddr),
		httpserver.WithLogger(log),
	)
	return srv.Run(ctx, r)
}

// healthHandler reports readiness of the server's dependencies.
func healthHandler(checks ...func(context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		for _, check := range checks {
			if err := check(r.Context()); err != nil {
				http.Error(w, "unhealthy", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
	}
}

// dashboardHandler is a minimal authenticated landing endpoint; the real
// dashboard UI ships separately and talks to the storefront API.
func dashboardHandler(svc *store.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		info, err := svc.Storefront(r.Context())
		if err != nil {
			http.Error(w, "store not found", http.StatusNotFound)
			return
		}

		tc := tenant.MustFromContext(r.Context())

		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]any{ //nolint:errcheck
			"store":          info,
			"api_rate_limit": limits.TierRateLimit(tc),
		})
	}
}
