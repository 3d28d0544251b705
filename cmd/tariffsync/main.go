package main

import (
	"context"
	"log"
	"log/slog"
	"time"

	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"

	"github.com/samirrijal/tripcost/internal/adapters/provider"
	"github.com/samirrijal/tripcost/internal/adapters/valkey"
	"github.com/samirrijal/tripcost/internal/core/usecases"
	"github.com/samirrijal/tripcost/internal/pkg/config"
	"github.com/samirrijal/tripcost/internal/pkg/logging"
	"github.com/samirrijal/tripcost/internal/workflows"
)

func main() {
	cfg, err := config.Load("tripcost-tariffsync")
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logging.Setup("tripcost-tariffsync", cfg.Log.Level, cfg.Log.Format)

	// A refresh without a cache has nothing to warm.
	cache, err := valkey.New(cfg.Valkey.Addr)
	if err != nil {
		log.Fatalf("valkey: %v", err)
	}
	defer cache.Close()

	operator := provider.New(provider.Options{
		BaseURL:   cfg.Provider.BaseURL,
		CityID:    cfg.Provider.CityID,
		GeozoneID: cfg.Provider.GeozoneID,
		Timeout:   time.Duration(cfg.Provider.TimeoutMs) * time.Millisecond,
	})
	tariffs := usecases.NewTariffService(operator, operator, cache, cfg.Valkey.TariffTTLSeconds)

	c, err := client.Dial(client.Options{
		HostPort:  cfg.Temporal.HostPort,
		Namespace: cfg.Temporal.Namespace,
	})
	if err != nil {
		log.Fatalf("temporal: %v", err)
	}
	defer c.Close()

	w := worker.New(c, cfg.Temporal.TaskQueue, worker.Options{})
	w.RegisterWorkflow(workflows.TariffRefreshWorkflow)
	w.RegisterActivity(&workflows.TariffActivities{Tariffs: tariffs})

	// Starting an already running cron workflow is a no-op.
	run, err := c.ExecuteWorkflow(context.Background(), client.StartWorkflowOptions{
		ID:           workflows.TariffRefreshWorkflowID,
		TaskQueue:    cfg.Temporal.TaskQueue,
		CronSchedule: cfg.Temporal.RefreshCron,
	}, workflows.TariffRefreshWorkflow, workflows.TariffRefreshInput{})
	if err != nil {
		slog.Warn("start tariff refresh schedule", "error", err)
	} else {
		slog.Info("tariff refresh scheduled", "workflow_id", run.GetID(), "run_id", run.GetRunID(), "cron", cfg.Temporal.RefreshCron)
	}

	slog.Info("tariff sync worker started", "queue", cfg.Temporal.TaskQueue)
	if err := w.Run(worker.InterruptCh()); err != nil {
		log.Fatalf("worker: %v", err)
	}
}
