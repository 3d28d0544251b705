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

	"github.com/samirrijal/tripcost/internal/adapters/http"
	natsadapter "github.com/samirrijal/tripcost/internal/adapters/nats"
	"github.com/samirrijal/tripcost/internal/adapters/postgres"
	"github.com/samirrijal/tripcost/internal/adapters/provider"
	"github.com/samirrijal/tripcost/internal/adapters/valkey"
	"github.com/samirrijal/tripcost/internal/core/ports"
	"github.com/samirrijal/tripcost/internal/core/usecases"
	"github.com/samirrijal/tripcost/internal/pkg/config"
	"github.com/samirrijal/tripcost/internal/pkg/logging"
	"github.com/samirrijal/tripcost/internal/pkg/telemetry"
)

func main() {
	cfg, err := config.Load("tripcost-api")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logging.Setup("tripcost-api", cfg.Log.Level, cfg.Log.Format)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Telemetry
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.TempoAddr)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	// Data provider
	operator := provider.New(provider.Options{
		BaseURL:   cfg.Provider.BaseURL,
		CityID:    cfg.Provider.CityID,
		GeozoneID: cfg.Provider.GeozoneID,
		Timeout:   time.Duration(cfg.Provider.TimeoutMs) * time.Millisecond,
	})

	// Cache (optional)
	var tariffCache ports.CacheService
	cache, err := valkey.New(cfg.Valkey.Addr)
	if err != nil {
		slog.Warn("valkey unavailable, tariffs will not be cached", "error", err)
		cache = nil
	} else {
		tariffCache = cache
		defer cache.Close()
	}

	// NATS (optional)
	var publisher ports.EventPublisher
	nc, err := natsadapter.NewPublisher(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats unavailable, estimates will not be recorded", "error", err)
	} else {
		publisher = nc
		defer nc.Close()
	}

	// Raw NATS connection for WebSocket relay
	natsConn, err := natsadapter.RawConn(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats ws conn unavailable", "error", err)
		natsConn = nil
	} else {
		defer natsConn.Drain()
	}

	// Database (optional, read side of the audit log)
	var history *usecases.HistoryService
	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		slog.Warn("database unavailable, estimate history disabled", "error", err)
		db = nil
	} else {
		defer db.Close()
		history = usecases.NewHistoryService(postgres.NewEstimateRepo(db))
		go db.ReportPoolMetrics(ctx, 15*time.Second)
	}

	// Use cases
	tariffSvc := usecases.NewTariffService(operator, operator, tariffCache, cfg.Valkey.TariffTTLSeconds)
	estimationSvc := usecases.NewEstimationService(operator, tariffSvc, publisher, usecases.PricingRules{
		WalkSpeedKmh:       cfg.Pricing.WalkSpeedKmh,
		DriveSpeedKmh:      cfg.Pricing.DriveSpeedKmh,
		FreeBookingMinutes: cfg.Pricing.FreeBookingMinutes,
		VAT:                cfg.Pricing.VAT,
	})

	deps := &http.Dependencies{
		Estimation:     estimationSvc,
		Tariffs:        tariffSvc,
		History:        history,
		NATS:           natsConn,
		DB:             db,
		Cache:          cache,
		RequestTimeout: time.Duration(cfg.Server.RequestTimeout) * time.Second,
		DocsPath:       http.DefaultDocsPath,
	}

	// Fiber
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    1024 * 1024, // 1 MB max request body
		AppName:      "Tripcost API",
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     "*",
		AllowMethods:     "GET,POST,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept",
		AllowCredentials: false,
		MaxAge:           3600,
	}))

	http.SetupRoutes(app, deps)

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
