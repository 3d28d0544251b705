package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"

	natsadapter "github.com/samirrijal/tripcost/internal/adapters/nats"
	"github.com/samirrijal/tripcost/internal/adapters/postgres"
	"github.com/samirrijal/tripcost/internal/core/domain"
	"github.com/samirrijal/tripcost/internal/core/usecases"
	"github.com/samirrijal/tripcost/internal/pkg/config"
	"github.com/samirrijal/tripcost/internal/pkg/logging"
	"github.com/samirrijal/tripcost/internal/pkg/metrics"
)

// metricsPort serves /metrics next to the API's own port.
const metricsPort = 9101

func main() {
	cfg, err := config.Load("tripcost-recorder")
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logging.Setup("tripcost-recorder", cfg.Log.Level, cfg.Log.Format)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()
	go db.ReportPoolMetrics(ctx, 15*time.Second)

	history := usecases.NewHistoryService(postgres.NewEstimateRepo(db))

	sub, err := natsadapter.NewSubscriber(cfg.NATS.URL)
	if err != nil {
		log.Fatalf("nats: %v", err)
	}
	defer sub.Close()

	err = sub.SubscribeEstimates(ctx, func(ctx context.Context, estimate *domain.Estimate) error {
		if err := history.Record(ctx, estimate); err != nil {
			if errors.Is(err, domain.ErrInvalidInput) {
				// Redelivery cannot fix an estimate without an id.
				metrics.EstimatesRecorded.WithLabelValues("rejected").Inc()
				slog.Warn("rejected estimate event", "error", err)
				return nil
			}
			metrics.EstimatesRecorded.WithLabelValues("error").Inc()
			slog.Error("record estimate", "id", estimate.ID, "error", err)
			return err
		}
		metrics.EstimatesRecorded.WithLabelValues("ok").Inc()
		slog.Debug("estimate recorded", "id", estimate.ID, "best_choice", estimate.BestChoice)
		return nil
	})
	if err != nil {
		log.Fatalf("subscribe: %v", err)
	}

	app := fiber.New(fiber.Config{
		AppName:               "Tripcost Recorder",
		DisableStartupMessage: true,
	})
	app.Get("/metrics", metrics.Handler())
	go func() {
		addr := fmt.Sprintf(":%d", metricsPort)
		if err := app.Listen(addr); err != nil {
			slog.Error("metrics listener", "error", err)
		}
	}()

	slog.Info("recorder started", "subject", natsadapter.SubjectEstimateComputed)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutting down recorder", "signal", sig.String())
	cancel()
	_ = app.ShutdownWithTimeout(5 * time.Second)
}
