package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/samirrijal/aterpe/internal/adapters/http"
	natsadapter "github.com/samirrijal/aterpe/internal/adapters/nats"
	"github.com/samirrijal/aterpe/internal/adapters/postgres"
	"github.com/samirrijal/aterpe/internal/adapters/valkey"
	"github.com/samirrijal/aterpe/internal/core/domain"
	"github.com/samirrijal/aterpe/internal/core/ports"
	"github.com/samirrijal/aterpe/internal/core/usecases"
	"github.com/samirrijal/aterpe/internal/pkg/config"
	"github.com/samirrijal/aterpe/internal/pkg/logging"
	"github.com/samirrijal/aterpe/internal/pkg/metrics"
	"github.com/samirrijal/aterpe/internal/pkg/telemetry"
)

func main() {
	cfg, err := config.Load("aterpe-api")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// Structured logging
	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}
	logging.Setup("aterpe-api", logLevel, "json")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Telemetry
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.TempoAddr)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown(context.Background())
		}
	}

	// Database
	db, err := postgres.New(ctx, cfg.Database.DSN(), int32(cfg.Database.MaxConns))
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Cache. The search services tolerate a nil cache, so a missing Valkey
	// degrades to uncached reads instead of failing startup. cacheSvc stays a
	// nil interface when the connection fails; assigning the nil pointer would
	// defeat the services' nil checks.
	var cacheSvc ports.CacheService
	cache, err := valkey.New(cfg.Valkey.Addr, cfg.Valkey.Password)
	if err != nil {
		slog.Warn("valkey unavailable", "error", err)
		cache = nil
	} else {
		defer cache.Close()
		cacheSvc = cache
	}

	// Raw NATS connection for the WebSocket relay
	natsConn, err := natsadapter.RawConn(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats ws conn unavailable", "error", err)
	}

	// Listing-change subscriber keeps the read-through cache honest: any
	// update or removal published by the ingestor evicts the cached copy.
	repo := postgres.NewListingRepo(db)

	opts := usecases.Options{
		NearestRadiusKm:    cfg.Search.NearestRadiusKm,
		MaxScan:            cfg.Search.MaxScan,
		ClusterBaseCellDeg: cfg.Search.ClusterBaseCellDeg,
		SimilarPriceBand:   cfg.Search.SimilarPriceBand,
		SimilarAreaBand:    cfg.Search.SimilarAreaBand,
	}

	searchSvc := usecases.NewSearchService(repo, cacheSvc, opts)
	similaritySvc := usecases.NewSimilarityService(repo, opts)
	clusterSvc := usecases.NewClusterService(repo, cacheSvc, opts)
	listingSvc := usecases.NewListingService(repo, cacheSvc)

	sub, err := natsadapter.NewSubscriber(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats subscriber unavailable, cache eviction disabled", "error", err)
	} else {
		defer sub.Close()
		err = sub.SubscribeListingEvents(ctx, func(ctx context.Context, e *domain.ListingEvent) error {
			listingSvc.Invalidate(ctx, e.ListingID)
			return nil
		})
		if err != nil {
			slog.Warn("listing event subscription failed", "error", err)
		}
	}

	deps := &http.Dependencies{
		Search:     searchSvc,
		Similarity: similaritySvc,
		Clusters:   clusterSvc,
		Listings:   listingSvc,
		NATS:       natsConn,
		DB:         db,
		Cache:      cache,
	}

	// Fiber
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    1024 * 1024, // 1 MB max request body
		AppName:      "Aterpe API",
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     "http://localhost:3000, http://localhost:5173, https://*.aterpe.eus",
		AllowMethods:     "GET,POST,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: false,
		MaxAge:           3600,
	}))

	http.SetupRoutes(app, deps)

	// Pool stats for the /metrics endpoint
	go func() {
		ticker := time.NewTicker(15 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				metrics.UpdateDBPoolMetrics(db.Pool.Stat())
			case <-ctx.Done():
				return
			}
		}
	}()

	// Graceful shutdown
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("API server starting", "addr", addr)
		if err := app.Listen(addr); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutdown signal received, draining connections...", "signal", sig.String())

	// Give in-flight requests up to 10s to complete
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	slog.Info("server stopped")
}
