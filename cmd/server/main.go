package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	effisadapter "github.com/moorwatch/wildfire-data-service/internal/adapter/effis"
	httpadapter "github.com/moorwatch/wildfire-data-service/internal/adapter/http"
	kafkaadapter "github.com/moorwatch/wildfire-data-service/internal/adapter/kafka"
	sepaadapter "github.com/moorwatch/wildfire-data-service/internal/adapter/sepa"
	"github.com/moorwatch/wildfire-data-service/internal/cache"
	"github.com/moorwatch/wildfire-data-service/internal/config"
	"github.com/moorwatch/wildfire-data-service/internal/domain"
	"github.com/moorwatch/wildfire-data-service/internal/geo"
	"github.com/moorwatch/wildfire-data-service/internal/observability"
	"github.com/moorwatch/wildfire-data-service/internal/orchestrator"
	"github.com/moorwatch/wildfire-data-service/internal/resolver"
	"github.com/moorwatch/wildfire-data-service/internal/store"
)

// evictInterval bounds how long an expired entry can linger in memory
// before the sweeper reclaims it.
const evictInterval = 5 * time.Minute

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Cache substrate (feature-flagged via REDIS_ADDR).
	var backing store.Store
	if cfg.RedisAddr != "" {
		rs, err := store.NewRedisStore(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			logger.Error("failed to connect to redis", "error", err)
			os.Exit(1)
		}
		backing = rs
		logger.Info("redis cache substrate enabled", "addr", cfg.RedisAddr)
	} else {
		backing = store.NewMemoryStore()
		logger.Info("in-memory cache substrate enabled")
	}

	spatialCache := cache.New(backing, cfg.CacheCapacity, logger)

	effis := effisadapter.NewClient(cfg.EFFISBaseURL, cfg.EFFISUserAgent, cfg.EFFISTimeout, logger)

	// Regional provider (feature-flagged via REGIONAL_ENABLED).
	var regional domain.RiskProvider
	if cfg.RegionalEnabled {
		regional = sepaadapter.NewClient(cfg.RegionalBaseURL, cfg.RegionalTimeout, logger)
		logger.Info("regional risk provider enabled", "base_url", cfg.RegionalBaseURL)
	} else {
		logger.Info("regional risk provider disabled")
	}

	// Incident feed (feature-flagged via KAFKA_ENABLED / KAFKA_BROKERS).
	var publisher domain.IncidentPublisher
	var writer *kafkaadapter.Writer
	if cfg.KafkaEnabled {
		writer = kafkaadapter.NewWriter(cfg, logger)
		publisher = writer
		logger.Info("incident feed enabled", "topic", cfg.KafkaIncidentTopic)
	} else {
		logger.Info("incident feed disabled")
	}

	risk := orchestrator.NewRisk(orchestrator.RiskOptions{
		Primary:         effis,
		Regional:        regional,
		RegionalRegion:  geo.MainlandScotland,
		Cache:           spatialCache,
		PrimaryTimeout:  cfg.EFFISTimeout,
		RegionalTimeout: cfg.RegionalTimeout,
		GlobalDeadline:  cfg.GlobalDeadline,
		CacheTTL:        cfg.RiskTTL,
		Logger:          logger,
		Metrics:         metrics,
	})

	fires := orchestrator.NewActiveFires(orchestrator.ActiveFiresOptions{
		Provider:        effis,
		Cache:           spatialCache,
		Publisher:       publisher,
		ProviderTimeout: cfg.EFFISTimeout,
		GlobalDeadline:  cfg.GlobalDeadline,
		CacheTTL:        cfg.IncidentsTTL,
		Logger:          logger,
		Metrics:         metrics,
	})

	// The server process has no GPS fix to offer and nobody to prompt, so
	// the location chain runs on cached manual entries and the default.
	location := resolver.NewLocation(resolver.LocationOptions{
		Cache:           spatialCache,
		PositionTimeout: cfg.PositionTimeout,
		ManualTTL:       cfg.ManualLocationTTL,
		Logger:          logger,
		Metrics:         metrics,
	})

	ready := httpadapter.ReadinessFunc(backing.Ping)
	srv := httpadapter.NewServer(cfg.HTTPAddr, risk, fires, location, ready, logger)

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Sweep expired cache entries so memory tracks the live working set.
	go func() {
		ticker := time.NewTicker(evictInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := spatialCache.EvictExpired(ctx); n > 0 {
					logger.Debug("evicted expired cache entries", "count", n)
				}
			}
		}
	}()

	metrics.ServiceReady.Set(1)
	<-ctx.Done()
	metrics.ServiceReady.Set(0)
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}
	if err := backing.Close(); err != nil {
		logger.Error("cache substrate close error", "error", err)
	}

	logger.Info("shutdown complete")
}
