package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jobbridge/jobbridge/internal"
	"github.com/jobbridge/jobbridge/internal/authz"
	"github.com/jobbridge/jobbridge/internal/domain"
	"github.com/jobbridge/jobbridge/internal/handler"
	"github.com/jobbridge/jobbridge/internal/identity"
	"github.com/jobbridge/jobbridge/internal/metrics"
	"github.com/jobbridge/jobbridge/internal/middleware"
	"github.com/jobbridge/jobbridge/internal/repository"
	"github.com/jobbridge/jobbridge/internal/service"
	"github.com/jobbridge/jobbridge/internal/storage"
	_ "github.com/jackc/pgx/v5/stdlib"
)

func run() error {
	ctx := context.Background()

	// Load configuration
	cfg, err := internal.NewConfig()
	if err != nil {
		return fmt.Errorf("config initialization failed: %w", err)
	}

	// Configure logger
	logger := internal.NewLogger(os.Stdout, cfg.Env, cfg.LogLevel)

	// Initialize database connection
	db, err := sql.Open("pgx", cfg.DatabaseUrl)
	if err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	// Run migrations
	if err := internal.RunMigrations(db); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	logger.Info("Database ready")

	// Initialize repository
	repo := repository.New(db)

	// Initialize resume storage
	store, err := newStorage(cfg, logger)
	if err != nil {
		return fmt.Errorf("storage initialization failed: %w", err)
	}

	// Initialize identity provider
	verifier, err := identity.NewSupabaseVerifier(cfg.SupabaseURL, cfg.SupabaseAPIKey, logger)
	if err != nil {
		return fmt.Errorf("identity provider initialization failed: %w", err)
	}

	// Initialize services
	userService := service.NewUserService(repo, logger)
	quotaService := service.NewQuotaService(repo, logger)
	applicationService := service.NewApplicationService(repo, quotaService, store, logger)
	apiKeyService := service.NewAPIKeyService(repo, logger)

	// Initialize admin resolver
	resolver := authz.NewResolver(authz.Config{
		AdminEmails: cfg.AdminEmails,
		Pattern:     cfg.AdminEmailPattern,
		Store:       repo,
		Directory:   verifier,
		Logger:      logger,
	})

	// Initialize middleware
	authMw := middleware.NewAuthMiddleware(verifier, userService, apiKeyService, logger)
	subMw := middleware.NewSubscriptionMiddleware(quotaService, logger)
	adminMw := middleware.NewAdminMiddleware(resolver, logger)
	loggingMw := middleware.NewRequestLoggingMiddleware(logger)
	securityMw := middleware.NewSecurityHeadersMiddleware(cfg.Env != "development")
	metricsAuthMw := middleware.NewMetricsAuthMiddleware(cfg.MetricsUsername, cfg.MetricsPassword)

	rateLimiter := middleware.NewRateLimiter(
		cfg.RateLimitRequests,
		time.Duration(cfg.RateLimitWindowS)*time.Second,
		logger,
	)
	rateLimitMw := middleware.NewRateLimitMiddleware(rateLimiter, logger)

	// Initialize handlers
	applicationHandler := handler.NewApplicationHandler(applicationService, logger)
	subscriptionHandler := handler.NewSubscriptionHandler(quotaService, logger)
	adminHandler := handler.NewAdminHandler(userService, logger)
	apiKeyHandler := handler.NewAPIKeyHandler(apiKeyService, logger)

	// ==========================================================================
	// Create router and register routes
	// ==========================================================================

	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Prometheus metrics (basic auth when configured)
	mux.Handle("GET /metrics", metricsAuthMw.Handler(promhttp.Handler()))

	// Middleware stacks
	requireUser := middleware.Stack(authMw.WithUser, authMw.RequireUser)
	requireAdmin := middleware.Stack(authMw.WithUser, adminMw.RequireAdmin)
	requireAPIAccess := middleware.Stack(
		authMw.WithUser,
		authMw.RequireUser,
		subMw.RequireFeature(domain.FeatureAPIAccess),
	)

	// API routes
	applicationHandler.RegisterRoutes(mux, requireUser, subMw.RequireApplicationQuota)
	subscriptionHandler.RegisterRoutes(mux, requireUser)
	adminHandler.RegisterRoutes(mux, requireAdmin)
	apiKeyHandler.RegisterRoutes(mux, requireAPIAccess)

	// Outer middleware applied to every request
	root := middleware.Stack(
		securityMw.Handler,
		metrics.Middleware,
		loggingMw.Handler,
		rateLimitMw.Limit,
	)(mux)

	// ==========================================================================
	// Start server
	// ==========================================================================

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: root,
	}

	// Channel to listen for interrupt signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// Start server in goroutine
	go func() {
		logger.Info("Server started", "address", server.Addr, "env", cfg.Env)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Server failed", "error", err)
		}
	}()

	// Wait for interrupt signal
	<-sigChan
	logger.Info("Shutdown signal received, initiating graceful shutdown...")

	// Create shutdown context with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown error", "error", err)
	}

	logger.Info("Graceful shutdown complete")
	return nil
}

// newStorage builds the configured resume storage backend.
func newStorage(cfg *internal.Config, logger *slog.Logger) (storage.Storage, error) {
	switch cfg.StorageProvider {
	case storage.ProviderR2:
		return storage.NewR2Storage(storage.R2Config{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			SecretAccessKey: cfg.R2SecretAccessKey,
			BucketName:      cfg.R2BucketName,
		}, logger)
	default:
		return storage.NewLocalStorage(storage.LocalConfig{
			BasePath: cfg.LocalStoragePath,
		}, logger)
	}
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}
