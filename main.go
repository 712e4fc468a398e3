package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/duke-dds/dds-engine/pkg/auth"
	"github.com/duke-dds/dds-engine/pkg/authz"
	"github.com/duke-dds/dds-engine/pkg/config"
	"github.com/duke-dds/dds-engine/pkg/database"
	"github.com/duke-dds/dds-engine/pkg/handlers"
	"github.com/duke-dds/dds-engine/pkg/logging"
	"github.com/duke-dds/dds-engine/pkg/middleware"
	"github.com/duke-dds/dds-engine/pkg/repositories"
	"github.com/duke-dds/dds-engine/pkg/retry"
	"github.com/duke-dds/dds-engine/pkg/roles"
	"github.com/duke-dds/dds-engine/pkg/services"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	cfg, err := config.Load(Version)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := newLogger(cfg.Env)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("Server failed", zap.Error(err))
	}
}

func newLogger(env string) (*zap.Logger, error) {
	if env == "local" || env == "dev" {
		return zap.NewDevelopmentConfig().Build()
	}
	return zap.NewProductionConfig().Build()
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("Configuration loaded",
		zap.String("env", cfg.Env),
		zap.String("base_url", cfg.BaseURL),
		zap.Bool("auth_verification", cfg.Auth.EnableVerification),
		zap.Bool("auto_provision", cfg.Auth.AutoProvision),
		zap.String("database", logging.SanitizeConnectionString(cfg.Database.ConnectionString())),
		zap.Bool("redis", cfg.Redis.Enabled()))

	// Database
	var db *database.DB
	err := retry.Do(ctx, retry.DefaultConfig(), func() error {
		var err error
		db, err = database.NewConnection(ctx, &database.Config{
			URL:            cfg.Database.ConnectionString(),
			MaxConnections: cfg.Database.MaxConnections,
		})
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %s", logging.SanitizeError(err))
	}
	defer db.Close()

	sqlDB := db.SQLDB()
	if err := database.RunMigrations(sqlDB, logger); err != nil {
		_ = sqlDB.Close()
		return err
	}
	_ = sqlDB.Close()

	// Role registry
	registry, err := roles.Load(cfg.Roles.File)
	if err != nil {
		return err
	}
	if err := syncRoles(ctx, db, registry, logger); err != nil {
		return err
	}

	// Identity cache
	var cache *redis.Client
	err = retry.Do(ctx, retry.DefaultConfig(), func() error {
		var err error
		cache, err = database.NewRedisClient(ctx, &cfg.Redis)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to connect to redis: %w", err)
	}
	if cache != nil {
		defer cache.Close()
	}

	// Auth
	jwksClient, err := auth.NewJWKSClient(ctx, &auth.JWKSConfig{
		EnableVerification: cfg.Auth.EnableVerification,
		JWKSEndpoints:      cfg.Auth.JWKSEndpoints,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize JWKS client: %w", err)
	}
	defer jwksClient.Close()

	projectRepo := repositories.NewProjectRepository()
	permissionRepo := repositories.NewPermissionRepository()
	userRepo := repositories.NewUserRepository()

	authService := auth.NewAuthService(jwksClient, logger)
	identities := auth.NewIdentityResolver(userRepo, cache, auth.IdentityConfig{
		AutoProvision: cfg.Auth.AutoProvision,
		CacheTTL:      cfg.Auth.IdentityCacheTTL,
	}, logger)
	authMiddleware := auth.NewMiddleware(authService, identities, logger)

	gate := authz.NewGate(permissionRepo, registry, authz.NewMetrics(nil), logger)
	txManager := database.NewTxManager()

	projectService := services.NewProjectService(projectRepo, permissionRepo, gate, registry, txManager, logger)
	permissionService := services.NewPermissionService(projectRepo, permissionRepo, userRepo, gate, registry, txManager, logger)

	mux := http.NewServeMux()
	handlers.NewHealthHandler(cfg, db, cache, logger).RegisterRoutes(mux)
	handlers.NewProjectsHandler(projectService, logger).RegisterRoutes(mux, authMiddleware)
	handlers.NewPermissionsHandler(permissionService, registry, logger).RegisterRoutes(mux, authMiddleware)
	handlers.NewUsersHandler(logger).RegisterRoutes(mux, authMiddleware)
	handlers.NewAuthRolesHandler(registry, logger).RegisterRoutes(mux, authMiddleware)
	mux.Handle("GET /metrics", promhttp.Handler())

	// The metrics and logging middleware wrap the mux directly so they see the route pattern.
	var handler http.Handler = middleware.RequestLogger(logger)(mux)
	handler = middleware.NewMetrics(nil).Middleware(handler)
	handler = database.WithRequestScope(db)(handler)

	server := &http.Server{
		Addr:              net.JoinHostPort(cfg.BindAddr, cfg.Port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("Starting dds-engine",
			zap.String("addr", server.Addr),
			zap.String("version", cfg.Version))
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("Shutting down", zap.Duration("timeout", cfg.ShutdownTimeout))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}

// syncRoles mirrors the registry into auth_roles so grants can reference it.
func syncRoles(ctx context.Context, db *database.DB, registry *roles.Registry, logger *zap.Logger) error {
	repo := repositories.NewAuthRoleRepository()

	err := retry.DoIfRetryable(ctx, retry.DefaultConfig(), func() error {
		scopedCtx, done := db.WithScope(ctx)
		defer done()
		return database.NewTxManager().RunInTx(scopedCtx, func(ctx context.Context) error {
			return repo.Sync(ctx, registry.List())
		})
	})
	if err != nil {
		return fmt.Errorf("failed to sync auth roles: %w", err)
	}

	logger.Info("Auth roles synced", zap.Int("count", len(registry.List())))
	return nil
}
