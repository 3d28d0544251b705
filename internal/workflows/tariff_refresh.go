package workflows

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"
)

// TariffRefreshWorkflowID is the id of the cron workflow started by cmd/tariffsync.
const TariffRefreshWorkflowID = "tariff-refresh"

// TariffRefreshInput selects the tiers to refresh. Empty means every tier
// currently present in the fleet.
type TariffRefreshInput struct {
	Tiers []string
}

// TariffRefreshResult reports how many tiers were refreshed and which failed.
type TariffRefreshResult struct {
	Refreshed int
	Failed    []string
}

// TariffRefreshWorkflow re-fetches the tariff table of every tier and
// overwrites the cache, so estimates rarely pay for a provider round trip.
// A failing tier is logged and skipped; the workflow only fails when the
// tier list itself cannot be loaded.
func TariffRefreshWorkflow(ctx workflow.Context, input TariffRefreshInput) (TariffRefreshResult, error) {
	logger := workflow.GetLogger(ctx)

	ctx = workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval: time.Second,
			MaximumAttempts: 3,
		},
	})

	tiers := input.Tiers
	if len(tiers) == 0 {
		if err := workflow.ExecuteActivity(ctx, "ListTiers").Get(ctx, &tiers); err != nil {
			return TariffRefreshResult{}, err
		}
	}
	logger.Info("Refreshing tariffs", "tiers", len(tiers))

	futures := make([]workflow.Future, len(tiers))
	for i, tier := range tiers {
		futures[i] = workflow.ExecuteActivity(ctx, "RefreshTariff", tier)
	}

	var result TariffRefreshResult
	for i, f := range futures {
		if err := f.Get(ctx, nil); err != nil {
			logger.Warn("tariff refresh failed, skipping tier", "tier", tiers[i], "error", err)
			result.Failed = append(result.Failed, tiers[i])
			continue
		}
		result.Refreshed++
	}

	logger.Info("Tariffs refreshed", "refreshed", result.Refreshed, "failed", len(result.Failed))
	return result, nil
}
