package workflows

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.temporal.io/sdk/temporal"

	"github.com/samirrijal/tripcost/internal/core/domain"
)

// TariffRefresher is the part of usecases.TariffService the activities need.
type TariffRefresher interface {
	Tiers(ctx context.Context) ([]string, error)
	Refresh(ctx context.Context, tier string) (*domain.TariffTable, error)
}

// TariffActivities holds the activity implementations for the tariff refresh workflow.
type TariffActivities struct {
	Tariffs TariffRefresher
}

// ListTiers returns the distinct car tiers of the current fleet.
func (a *TariffActivities) ListTiers(ctx context.Context) ([]string, error) {
	tiers, err := a.Tariffs.Tiers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tiers: %w", err)
	}
	return tiers, nil
}

// RefreshTariff fetches one tier from the provider and overwrites its cache
// entry. An unknown tier will not get better by retrying.
func (a *TariffActivities) RefreshTariff(ctx context.Context, tier string) error {
	table, err := a.Tariffs.Refresh(ctx, tier)
	if errors.Is(err, domain.ErrUnknownTariffTier) {
		return temporal.NewNonRetryableApplicationError(err.Error(), "UnknownTariffTier", err)
	}
	if err != nil {
		return fmt.Errorf("refresh tier %s: %w", tier, err)
	}
	slog.InfoContext(ctx, "tariff refreshed", "tier", tier, "fetched_at", table.FetchedAt)
	return nil
}
