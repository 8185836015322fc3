// Package app arma el grafo de dependencias del servicio a partir de la config.
package app

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	rdb "github.com/redis/go-redis/v9"

	"github.com/dropDatabas3/efedauth/internal/auth"
	"github.com/dropDatabas3/efedauth/internal/cache"
	"github.com/dropDatabas3/efedauth/internal/clock"
	"github.com/dropDatabas3/efedauth/internal/config"
	authctrl "github.com/dropDatabas3/efedauth/internal/http/controllers/auth"
	healthctrl "github.com/dropDatabas3/efedauth/internal/http/controllers/health"
	"github.com/dropDatabas3/efedauth/internal/http/router"
	healthsvc "github.com/dropDatabas3/efedauth/internal/http/services/health"
	"github.com/dropDatabas3/efedauth/internal/metrics"
	"github.com/dropDatabas3/efedauth/internal/observability/logger"
	"github.com/dropDatabas3/efedauth/internal/rate"
	"github.com/dropDatabas3/efedauth/internal/security/csrf"
	"github.com/dropDatabas3/efedauth/internal/security/password"
	"github.com/dropDatabas3/efedauth/internal/security/secretbox"
	"github.com/dropDatabas3/efedauth/internal/session"
	"github.com/dropDatabas3/efedauth/internal/store"
)

// Options permite inyectar reloj y entropía (tests).
type Options struct {
	Clock  clock.Clock
	Rand   io.Reader
	Commit string
}

// Container contiene las dependencias vivas del servicio.
type Container struct {
	Config   *config.Config
	Stores   *store.Stores
	Sessions *session.Manager
	Shared   rate.MultiLimiter // nil si no hay límite compartido
	Metrics  *metrics.Metrics
	Auth     *auth.Manager
	CSRF     *csrf.Deriver
	Handler  http.Handler

	closers []func() error
}

// New abre storage, cache y limiter según cfg y arma el handler HTTP.
// Ante error cierra lo que ya se había abierto.
func New(ctx context.Context, cfg *config.Config, opts Options) (*Container, error) {
	log := logger.From(ctx).With(logger.Component("app"))
	clk := clock.OrSystem(opts.Clock)
	rnd := opts.Rand
	if rnd == nil {
		rnd = rand.Reader
	}

	c := &Container{Config: cfg}
	ready := false
	defer func() {
		if !ready {
			_ = c.Close()
		}
	}()

	var err error

	// metrics
	reg := prometheus.NewRegistry()
	if cfg.Metrics.Enabled {
		if err := reg.Register(collectors.NewGoCollector()); err != nil {
			return nil, fmt.Errorf("app: go collector: %w", err)
		}
		if c.Metrics, err = metrics.New(reg); err != nil {
			return nil, fmt.Errorf("app: metrics: %w", err)
		}
	}

	// storage
	sc := store.Config{Driver: cfg.Storage.Driver, DSN: cfg.Storage.DSN, Migrate: cfg.Storage.Migrate}
	sc.Postgres.MaxOpenConns = cfg.Storage.Postgres.MaxOpenConns
	sc.Postgres.MaxIdleConns = cfg.Storage.Postgres.MaxIdleConns
	sc.Postgres.ConnMaxLifetime = cfg.Storage.Postgres.ConnMaxLifetime
	if c.Stores, err = store.Open(ctx, sc, clk); err != nil {
		return nil, fmt.Errorf("app: storage: %w", err)
	}
	c.closers = append(c.closers, c.Stores.Close)
	if c.Stores.DB != nil && c.Metrics != nil {
		if err := c.Metrics.RegisterPool(reg, c.Stores.DB.Pool); err != nil {
			return nil, fmt.Errorf("app: pool metrics: %w", err)
		}
	}
	log.Info("storage ready", logger.String("driver", cfg.Storage.Driver))

	// APP_KEY: firma CSRF y cifra el estado de sesión
	key, err := cfg.AppKey()
	if err != nil {
		return nil, err
	}
	if len(key) == 0 {
		key = make([]byte, 32)
		if _, err := io.ReadFull(rnd, key); err != nil {
			return nil, fmt.Errorf("app: ephemeral key: %w", err)
		}
		log.Warn("APP_KEY not set; using an ephemeral key (sessions and csrf tokens die on restart)")
	}
	box, err := secretbox.Derive(key, "efedauth/session", rnd)
	if err != nil {
		return nil, fmt.Errorf("app: session box: %w", err)
	}

	// un solo cliente redis para sesiones y limiter
	var redisClient *rdb.Client
	sharedRedis := func() *rdb.Client {
		if redisClient == nil {
			redisClient = rdb.NewClient(&rdb.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
			c.closers = append(c.closers, redisClient.Close)
		}
		return redisClient
	}

	// sesiones
	var kv cache.Client
	if cfg.Session.Store == "redis" {
		client := sharedRedis()
		if err := client.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("app: session store: redis ping: %w", err)
		}
		kv = cache.NewRedisFromClient(client, cfg.Redis.Prefix)
	} else if kv, err = cache.New(ctx, cache.Config{Driver: cfg.Session.Store, Prefix: cfg.Redis.Prefix}); err != nil {
		return nil, fmt.Errorf("app: session store: %w", err)
	}
	c.closers = append(c.closers, kv.Close)
	c.Sessions = session.NewManager(session.NewStore(kv, session.WithBox(box)), clk, rnd, session.Options{
		CookieName:  cfg.Session.CookieName,
		Domain:      cfg.Session.Domain,
		SameSite:    cfg.Session.SameSite,
		Secure:      cfg.Session.Secure,
		Lifetime:    config.Duration(cfg.Session.Lifetime, time.Hour),
		RotateEvery: config.Duration(cfg.Session.RotateEvery, 5*time.Minute),
	})

	// limiter compartido (login por IP y global por IP)
	var limiterCheck healthsvc.Check
	if cfg.Rate.Login.Shared || cfg.Rate.Enabled {
		switch cfg.Rate.Backend {
		case "redis":
			client := sharedRedis()
			c.Shared = rate.NewRedisLimiter(client, cfg.Redis.Prefix+"rl:", clk)
			limiterCheck = func(ctx context.Context) error { return client.Ping(ctx).Err() }
		default:
			c.Shared = rate.NewMemoryLimiter(clk)
		}
	}

	// seguridad
	if c.CSRF, err = csrf.New(key, rnd); err != nil {
		return nil, fmt.Errorf("app: csrf: %w", err)
	}

	var blacklist *password.Blacklist
	if p := cfg.Security.PasswordBlacklistPath; p != "" {
		if blacklist, err = password.LoadBlacklist(p); err != nil {
			return nil, fmt.Errorf("app: blacklist: %w", err)
		}
		log.Info("password blacklist loaded", logger.Count(blacklist.Len()))
	}

	hasher := password.NewHasher()
	hasher.Algorithm = password.Algorithm(cfg.Security.PasswordHash)

	pp := cfg.Security.PasswordPolicy
	authDeps := auth.Deps{
		Users:  c.Stores.Users,
		Hasher: hasher,
		Clock:  clk,
		Policy: password.Policy{
			MinLength:     pp.MinLength,
			MaxLength:     password.DefaultPolicy.MaxLength,
			RequireUpper:  pp.RequireUpper,
			RequireLower:  pp.RequireLower,
			RequireDigit:  pp.RequireDigit,
			RequireSymbol: pp.RequireSymbol,
		},
		Blacklist: blacklist,
		Metrics:   c.Metrics,
		Config: auth.Config{
			LoginMaxAttempts: cfg.Rate.Login.Limit,
			LoginWindow:      config.Duration(cfg.Rate.Login.Window, 300*time.Second),
			PartialTTL:       config.Duration(cfg.Auth.PartialTTL, 5*time.Minute),
			SessionLifetime:  config.Duration(cfg.Session.Lifetime, time.Hour),
			Issuer:           cfg.Auth.TOTPIssuer,
			TOTPWindow:       cfg.Auth.TOTPWindow,
		},
	}
	if cfg.Rate.Login.Shared {
		authDeps.Shared = c.Shared
	}
	c.Auth = auth.NewManager(authDeps)

	// HTTP
	health := healthsvc.NewHealthService(healthsvc.Deps{
		DBCheck: func(ctx context.Context) error {
			if c.Stores.DB == nil {
				return nil
			}
			return c.Stores.DB.Ping(ctx)
		},
		SessionCheck: kv.Ping,
		LimiterCheck: limiterCheck,
		Version:      cfg.App.Version,
		Commit:       opts.Commit,
	})

	rd := router.Deps{
		Auth:              authctrl.NewControllers(c.Auth, c.CSRF, clk.Now()),
		Health:            healthctrl.NewHealthController(health),
		Sessions:          c.Sessions,
		CSRF:              c.CSRF,
		Metrics:           c.Metrics,
		TrustProxyHeaders: cfg.Server.TrustProxyHeaders,
		CORSOrigins:       cfg.Server.CORSAllowedOrigins,
		AllowSeed:         cfg.Auth.AllowHTTPSeed,
	}
	if cfg.Rate.Enabled {
		rd.RateLimiter = rate.NewFixed(c.Shared, cfg.Rate.MaxRequests, config.Duration(cfg.Rate.Window, time.Minute))
	}
	c.Handler = router.New(rd)

	ready = true
	return c, nil
}

// Close libera recursos en orden inverso a la apertura.
func (c *Container) Close() error {
	var errs []error
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	c.closers = nil
	return errors.Join(errs...)
}
