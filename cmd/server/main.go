package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/okairos/llm-bridge-api/cmd"
	"github.com/okairos/llm-bridge-api/internal/analytics"
	"github.com/okairos/llm-bridge-api/internal/config"
	"github.com/okairos/llm-bridge-api/internal/gateway"
	"github.com/okairos/llm-bridge-api/internal/platform/logger"
	"github.com/okairos/llm-bridge-api/internal/platform/otel"
	"github.com/okairos/llm-bridge-api/internal/registry"
	"github.com/okairos/llm-bridge-api/internal/server"
	"github.com/okairos/llm-bridge-api/internal/store/cache"
	"github.com/okairos/llm-bridge-api/internal/store/sqlite"
	"go.uber.org/zap"

	// Imported for their init() provider registrations.
	_ "github.com/okairos/llm-bridge-api/internal/llm/ollama"
	_ "github.com/okairos/llm-bridge-api/internal/llm/openai"
	_ "github.com/okairos/llm-bridge-api/internal/llm/perplexity"
)

func main() {
	logger.Initialize(logger.DefaultConfig())
	defer logger.Sync()
	log := logger.Get()

	cmd.CheckForUpdates()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Tracing.Enabled {
		shutdown, err := otel.InitTracer("llm-bridge", log, os.Stdout)
		if err != nil {
			log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = shutdown(shutdownCtx)
		}()
	}

	// Usage persistence is optional; without it analytics endpoints are not
	// mounted and usage logging becomes a no-op.
	var (
		ingestor     analytics.Ingestor = analytics.NopIngestor{}
		analyticsSvc analytics.Service
	)
	if cfg.Store.Enabled {
		repo, err := sqlite.NewSQLiteStorage(cfg.Store.DSN)
		if err != nil {
			log.Fatal("Failed to open store", zap.Error(err))
		}
		defer func() {
			_ = repo.Close()
		}()

		ingestor = analytics.NewIngestor(log, repo)
		analyticsSvc = analytics.NewService(repo)
	}
	ingestor.Start(ctx)
	defer ingestor.Stop()

	var cacheSvc cache.CacheService = cache.NewMemoryCache()
	if cfg.Redis.Enabled {
		redisCache, err := cache.NewRedisCache(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			// Cache is an accelerator, not a dependency.
			log.Warn("Redis unavailable, falling back to in-memory cache", zap.Error(err))
		} else {
			cacheSvc = redisCache
		}
	}

	reg := registry.New()
	service := gateway.NewService(log, reg, ingestor, cacheSvc)

	count := gateway.BootstrapProviders(ctx, service, cfg.Providers, log)
	if count == 0 {
		log.Warn("No providers registered; every request will fail routing")
	}

	srv := server.New(cfg, log, service, analyticsSvc)

	httpServer := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: srv.Handler(),
	}

	go func() {
		log.Info("Server listening",
			zap.String("port", cfg.Server.Port),
			zap.Int("providers", count),
		)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("Graceful shutdown failed", zap.Error(err))
	}
}
