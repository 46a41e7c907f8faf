package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"synthkit/internal/cache"
	"synthkit/internal/cache/resultCache"
	"synthkit/internal/config"
	"synthkit/internal/fusion"
	"synthkit/internal/generators"
	"synthkit/internal/http"
	"synthkit/internal/logger"
	"synthkit/internal/models"
	"synthkit/internal/ratelimit"
	"synthkit/internal/seeder"
	"synthkit/internal/synthesis"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	appLogger, err := initializeLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer appLogger.Close()

	// Create internal log event for startup
	startupCtx := logger.WithLogEvent(context.Background(), logger.NewInternalLogEvent())

	appLogger.LogInfo(startupCtx, logger.OpServerStart, "Starting Synthkit Generation API", map[string]interface{}{
		"version": "1.0.0",
		"config": map[string]interface{}{
			"port":       cfg.Port,
			"cache_type": cfg.CacheType,
			"cache_ttl":  cfg.CacheTTL.Seconds(),
		},
	})

	// Initialize cache backend and the result cache on top of it
	cacheService, err := initializeCache(cfg, appLogger)
	if err != nil {
		appLogger.LogError(
			startupCtx,
			"cache_init",
			"",
			"Failed to initialize cache",
			err,
			models.LogSeverityHigh,
			nil,
		)
		log.Fatalf("Failed to initialize cache: %v", err)
	}

	results := resultCache.New(cacheService, cfg.CacheTTL)

	// Initialize components
	registry := generators.Default()
	seederService := seeder.NewService(appLogger)
	fuser := fusion.NewService(cfg.HighValueFields)

	rateLimiter := ratelimit.NewTwoTierLimiter(
		int64(cfg.GlobalRateLimitPerSec),
		int64(cfg.GlobalRateLimitPerSec),
		int64(cfg.PerClientRateLimitPerSec),
		int64(cfg.PerClientRateLimitPerSec),
	)

	// Initialize service
	synthesisService := synthesis.NewService(
		registry,
		seederService,
		results,
		fuser,
		appLogger,
		cfg.MaxConcurrentGenerations,
	)

	// Initialize HTTP handler
	handler := http.NewHandler(synthesisService, cacheService, appLogger)

	// Initialize server
	addr := ":" + cfg.Port
	server := http.NewServer(
		addr,
		handler,
		appLogger,
		rateLimiter,
		cfg.ServerReadTimeout,
		cfg.ServerWriteTimeout,
	)

	// Start server in goroutine
	go func() {
		if err := server.Start(); err != nil {
			appLogger.LogError(
				context.Background(),
				logger.OpServerStart,
				"",
				"Server failed to start",
				err,
				models.LogSeverityHigh,
				map[string]interface{}{"addr": addr},
			)
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	fmt.Printf("🚀 Synthkit Generation API server started on %s\n", addr)
	fmt.Println("📋 Available endpoints:")
	fmt.Println("  GET    /health               - Health check")
	fmt.Println("  POST   /api/generate         - Generate for a single identifier")
	fmt.Println("  POST   /api/batch-generate   - Generate for multiple identifiers")
	fmt.Println("  POST   /api/fusion           - Merge record sources")
	fmt.Println("  DELETE /api/cache/{key}      - Invalidate a cache entry")
	fmt.Println("  DELETE /api/cache?pattern=   - Invalidate cache entries by pattern")
	fmt.Println("  POST   /api/cache/cleanup    - Purge expired cache entries")

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	fmt.Println("\n🛑 Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ServerShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		appLogger.LogError(
			ctx,
			logger.OpServerShutdown,
			"",
			"Server shutdown error",
			err,
			models.LogSeverityMedium,
			nil,
		)
		log.Printf("Server shutdown error: %v", err)
	} else {
		appLogger.LogInfo(ctx, logger.OpServerShutdown, "Server shutdown completed successfully", nil)
		fmt.Println("✅ Server shutdown completed")
	}
}

func initializeLogger(cfg *config.Config) (logger.Service, error) {
	switch cfg.LoggerType {
	case "postgres":
		db, err := logger.NewPostgresConnection(cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		return logger.NewDatabaseLogger(db), nil
	case "console":
		return logger.NewConsoleLogger(), nil
	default:
		return nil, fmt.Errorf("unsupported logger type: %s", cfg.LoggerType)
	}
}

func initializeCache(cfg *config.Config, appLogger logger.Service) (cache.Service, error) {
	switch cfg.CacheType {
	case "redis":
		return cache.NewRedisCache(cfg.RedisURL)
	case "file":
		return cache.NewFileCache(cfg.CacheDir, cfg.DiskWriteTimeout, appLogger)
	case "memory":
		return cache.NewMemoryCache(), nil
	default:
		return nil, fmt.Errorf("unsupported cache type: %s", cfg.CacheType)
	}
}
