// AngelaMos | 2026
// main.go

package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/carterperez-dev/medassist/internal/admin"
	"github.com/carterperez-dev/medassist/internal/auth"
	"github.com/carterperez-dev/medassist/internal/config"
	"github.com/carterperez-dev/medassist/internal/core"
	"github.com/carterperez-dev/medassist/internal/docs"
	"github.com/carterperez-dev/medassist/internal/health"
	"github.com/carterperez-dev/medassist/internal/medication"
	"github.com/carterperez-dev/medassist/internal/medicine"
	"github.com/carterperez-dev/medassist/internal/metrics"
	"github.com/carterperez-dev/medassist/internal/middleware"
	"github.com/carterperez-dev/medassist/internal/migrations"
	"github.com/carterperez-dev/medassist/internal/prescription"
	"github.com/carterperez-dev/medassist/internal/server"
	"github.com/carterperez-dev/medassist/internal/user"
)

const (
	drainDelay = 5 * time.Second

	authRequestsPerMinute = 30
	authBurst             = 10
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

// stores are the process-wide connections; redis is nil when not
// configured.
type stores struct {
	db    *core.Database
	redis *core.Redis
}

func (s stores) close(logger *slog.Logger) {
	if err := s.redis.Close(); err != nil {
		logger.Error("redis close error", "error", err)
	}
	if err := s.db.Close(); err != nil {
		logger.Error("database close error", "error", err)
	}
}

// tokens is the optional JWT layer. All fields are nil when JWT is disabled.
type tokens struct {
	issuer   user.TokenIssuer
	verifier middleware.TokenVerifier
	jwks     *auth.JWTManager
}

// handlers groups every route owner built from the services.
type handlers struct {
	health       *health.Handler
	docs         *docs.Handler
	user         *user.Handler
	admin        *admin.Handler
	prescription *prescription.Handler
	medication   *medication.Handler
	medicine     *medicine.Handler
}

func run(configPath string) error {
	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGINT,
		syscall.SIGTERM,
	)
	defer stop()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger := newLogger(cfg.Log)
	slog.SetDefault(logger)
	core.ExposeInternalErrors(cfg.IsDevelopment())

	logger.Info("starting application",
		"name", cfg.App.Name,
		"version", cfg.App.Version,
		"environment", cfg.App.Environment,
	)

	telemetry, err := core.NewTelemetry(ctx, cfg.Otel, cfg.App)
	if err != nil {
		logger.Warn("tracing disabled", "error", err)
	}

	st, err := openStores(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer st.close(logger)

	tk, err := newTokens(cfg.JWT, logger)
	if err != nil {
		return err
	}

	h, err := buildHandlers(ctx, cfg, st, tk)
	if err != nil {
		return err
	}

	srv := server.New(server.Config{
		ServerConfig:  cfg.Server,
		HealthHandler: h.health,
		Logger:        logger,
	})
	mountRoutes(srv.Router(), cfg, logger, st, tk, h)

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		cfg.Server.ShutdownTimeout+drainDelay+5*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx, drainDelay); err != nil {
		logger.Error("server shutdown error", "error", err)
	}
	if err := telemetry.Shutdown(shutdownCtx); err != nil {
		logger.Error("telemetry shutdown error", "error", err)
	}

	logger.Info("application stopped")
	return nil
}

func openStores(
	ctx context.Context,
	cfg *config.Config,
	logger *slog.Logger,
) (stores, error) {
	db, err := core.NewDatabase(ctx, cfg.Database)
	if err != nil {
		return stores{}, err
	}
	logger.Info("database connected",
		"driver", db.Dialect().Name(),
		"max_open_conns", cfg.Database.MaxOpenConns,
	)

	if cfg.Database.Migrate {
		if err := migrations.Up(ctx, db.DB.DB, db.Dialect()); err != nil {
			_ = db.Close() //nolint:errcheck // already failing
			return stores{}, err
		}
		logger.Info("database migrations applied")
	}

	rdb, err := core.NewRedis(ctx, cfg.Redis)
	if err != nil {
		_ = db.Close() //nolint:errcheck // already failing
		return stores{}, err
	}
	if rdb == nil {
		logger.Info("redis not configured, using in-process rate limiting")
	} else {
		logger.Info("redis connected", "pool_size", cfg.Redis.PoolSize)
	}

	return stores{db: db, redis: rdb}, nil
}

func newTokens(cfg config.JWTConfig, logger *slog.Logger) (tokens, error) {
	if !cfg.Enabled {
		return tokens{}, nil
	}

	m, err := auth.NewJWTManager(cfg)
	if err != nil {
		return tokens{}, err
	}
	logger.Info("JWT manager initialized", "algorithm", "ES256", "key_id", m.KeyID())

	return tokens{issuer: m, verifier: m, jwks: m}, nil
}

func buildHandlers(
	ctx context.Context,
	cfg *config.Config,
	st stores,
	tk tokens,
) (handlers, error) {
	userSvc := user.NewService(st.db, user.Policy{
		AdminEmail:        cfg.Accounts.AdminEmail,
		MinPasswordLength: cfg.Accounts.MinPasswordLength,
	})
	if err := userSvc.EnsureAdmin(
		ctx,
		cfg.Accounts.AdminName,
		cfg.Accounts.AdminPassword,
	); err != nil {
		return handlers{}, fmt.Errorf("bootstrap admin: %w", err)
	}

	prescriptionSvc := prescription.NewService(st.db, userSvc)
	medications := medication.NewHandler(st.db)

	adminCfg := admin.HandlerConfig{
		Service: admin.NewService(admin.ServiceConfig{
			DB:            st.db,
			Policy:        userSvc.Policy(),
			Prescriptions: prescriptionSvc,
			Runner:        st.db,
			Query:         cfg.Query,
		}),
		DBStats: st.db.Stats,
		DBPing:  st.db.Ping,
	}
	healthCfg := health.Config{
		DB:          st.db,
		Medications: medications,
		Version:     cfg.App.Version,
	}
	if st.redis != nil {
		healthCfg.Redis = st.redis
		adminCfg.RedisStats = st.redis.PoolStats
		adminCfg.RedisPing = st.redis.Ping
	}

	apiDocs, err := docs.NewHandler(docs.Config{
		Name:    cfg.App.Name,
		Version: cfg.App.Version,
		BaseURL: cfg.App.PublicURL,
	})
	if err != nil {
		return handlers{}, err
	}

	return handlers{
		health:       health.NewHandler(healthCfg),
		docs:         apiDocs,
		user:         user.NewHandler(userSvc, tk.issuer),
		admin:        admin.NewHandler(adminCfg),
		prescription: prescription.NewHandler(prescriptionSvc),
		medication:   medications,
		medicine:     medicine.NewHandler(medicine.NewService(st.db, userSvc)),
	}, nil
}

func mountRoutes(
	router chi.Router,
	cfg *config.Config,
	logger *slog.Logger,
	st stores,
	tk tokens,
	h handlers,
) {
	rdb := st.redis.ClientOrNil()

	router.Use(middleware.RequestID)
	router.Use(middleware.Recoverer(logger))
	router.Use(middleware.Logger(logger))
	router.Use(middleware.SecurityHeaders(cfg.IsProduction()))
	router.Use(middleware.CORS(cfg.CORS))
	if cfg.Metrics.Enabled {
		router.Use(middleware.Metrics)
	}
	router.Use(middleware.NewRateLimiter(rdb, middleware.RateLimitConfig{
		Scope: "api",
		Limit: middleware.PerWindow(
			cfg.RateLimit.Requests,
			cfg.RateLimit.Burst,
			cfg.RateLimit.Window,
		),
	}).Handler)
	router.Use(middleware.OptionalAuth(tk.verifier))

	h.health.RegisterRoutes(router)

	if cfg.Metrics.Enabled {
		router.Handle(cfg.Metrics.Path, metrics.Handler())
	}
	if tk.jwks != nil {
		router.Get("/.well-known/jwks.json", tk.jwks.JWKSHandler())
	}

	authLimiter := middleware.NewRateLimiter(rdb, middleware.RateLimitConfig{
		Scope: "auth",
		Limit: middleware.PerMinute(authRequestsPerMinute, authBurst),
	})

	router.Route("/api", func(r chi.Router) {
		h.health.RegisterAPIRoutes(r)
		h.docs.RegisterRoutes(r)

		r.Group(func(r chi.Router) {
			r.Use(authLimiter.Handler)
			h.user.RegisterRoutes(r)
		})

		h.admin.RegisterRoutes(r)
		h.prescription.RegisterRoutes(r)
		h.medication.RegisterRoutes(r)
		h.medicine.RegisterRoutes(r)
	})
}

func newLogger(cfg config.LogConfig) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}
