package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/platformbuilds/search-gateway/docs"
	"github.com/platformbuilds/search-gateway/internal/api"
	"github.com/platformbuilds/search-gateway/internal/cache"
	"github.com/platformbuilds/search-gateway/internal/config"
	_ "github.com/platformbuilds/search-gateway/internal/engine/elastic"
	_ "github.com/platformbuilds/search-gateway/internal/engine/meili"
	_ "github.com/platformbuilds/search-gateway/internal/engine/typesense"
	"github.com/platformbuilds/search-gateway/internal/orchestrator"
	"github.com/platformbuilds/search-gateway/pkg/logger"
)

// @title Search Gateway API
// @version 1.0
// @description Normalized REST search API fronting Elasticsearch, OpenSearch, Meilisearch, and Typesense.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the configured API key.
func main() {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	appLogger := logger.New(cfg.LogLevel)
	appLogger.Info("starting search gateway", "port", cfg.Port, "indexes", len(cfg.Indexes))

	var resultCache cache.Cache
	if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
		redisCache, err := cache.NewRedisCache(redisURL, appLogger)
		if err != nil {
			appLogger.Warn("redis unavailable; starting with in-memory-disabled cache", "error", err)
			resultCache = &cache.NoopCache{}
		} else {
			appLogger.Info("redis cache initialized", "addr", redisURL)
			resultCache = redisCache
		}
	} else {
		appLogger.Info("no REDIS_URL configured; result cache disabled")
		resultCache = nil
	}

	registry, err := orchestrator.NewRegistry(cfg.Indexes, resultCache, appLogger)
	if err != nil {
		appLogger.Fatal("failed to build index registry", "error", err)
	}

	server := api.NewServer(cfg, appLogger, registry)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan
		appLogger.Info("shutdown signal received")
		cancel()
	}()

	if err := server.Start(ctx); err != nil {
		appLogger.Fatal("server failed to start", "error", err)
	}

	appLogger.Info("search gateway shutdown complete")
}
