package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SAP-F-2025/progress-service/internal/cache"
	"github.com/SAP-F-2025/progress-service/internal/config"
	"github.com/SAP-F-2025/progress-service/internal/events"
	"github.com/SAP-F-2025/progress-service/internal/handlers"
	"github.com/SAP-F-2025/progress-service/internal/repositories/postgres"
	"github.com/SAP-F-2025/progress-service/internal/services"
	"github.com/SAP-F-2025/progress-service/internal/utils"
	"github.com/SAP-F-2025/progress-service/internal/validator"
	"github.com/SAP-F-2025/progress-service/pkg"
	"github.com/SAP-F-2025/progress-service/pkg/monitoring"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := utils.NewServiceLogger(cfg.Environment, cfg.LogLevel)
	slog.SetDefault(logger)

	ctx := context.Background()

	db, err := pkg.InitDatabase(cfg)
	if err != nil {
		logger.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	if err := postgres.Migrate(ctx, db); err != nil {
		logger.Error("Failed to migrate database", "error", err)
		os.Exit(1)
	}

	progressCache, redisClient := newProgressCache(ctx, cfg, logger)

	publisher, err := cfg.Events.CreateEventPublisher(logger)
	if err != nil {
		logger.Error("Failed to create event publisher, falling back to mock", "error", err)
		publisher = events.NewMockEventPublisher(logger)
	}

	metrics := monitoring.NewRecorder()

	serviceManager := services.NewServiceManager(services.ServiceManagerConfig{
		Repo:             postgres.NewRepository(db),
		Publisher:        publisher,
		Cache:            progressCache,
		ProgressCacheTTL: cfg.ProgressCacheTTL,
		LeaderboardSize:  cfg.LeaderboardDefaultSize,
		Metrics:          metrics,
		Logger:           logger,
		Validator:        validator.New(),
	})

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	httpLogger := utils.NewSlogLogger(logger)

	router := gin.New()
	router.Use(
		gin.Recovery(),
		handlers.RequestIDMiddleware(),
		utils.ContextLogger(httpLogger),
		utils.LoggerMiddleware(httpLogger, "/health", "/metrics"),
		metrics.MetricsMiddleware(),
	)
	handlers.NewHandlerManager(serviceManager, metrics, httpLogger).SetupRoutes(router)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Server running", "port", cfg.Port, "environment", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server stopped unexpectedly", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	if err := publisher.Close(); err != nil {
		logger.Error("Failed to close event publisher", "error", err)
	}
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			logger.Error("Failed to close redis client", "error", err)
		}
	}
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}

	logger.Info("Server exiting")
}

// newProgressCache connects Redis when caching is enabled. An unreachable
// Redis downgrades to the no-op cache instead of failing startup.
func newProgressCache(ctx context.Context, cfg *config.Config, logger *slog.Logger) (cache.CacheService, *redis.Client) {
	if !cfg.CacheEnabled {
		return cache.NewNoopCache(), nil
	}
	client, err := pkg.NewRedisClient(ctx, cfg)
	if err != nil {
		logger.Warn("Progress cache disabled", "error", err)
		return cache.NewNoopCache(), nil
	}
	return cache.NewRedisCache(client, logger), client
}
