package usecases

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/samirrijal/tripcost/internal/core/domain"
	"github.com/samirrijal/tripcost/internal/core/ports"
)

const defaultTariffTTL = 3600

// TariffService serves tariff tables through a read-through cache.
type TariffService struct {
	tariffs    ports.TariffProvider
	fleet      ports.FleetProvider
	cache      ports.CacheService
	ttlSeconds int
}

// NewTariffService creates a new TariffService. cache may be nil.
func NewTariffService(tariffs ports.TariffProvider, fleet ports.FleetProvider, cache ports.CacheService, ttlSeconds int) *TariffService {
	if ttlSeconds <= 0 {
		ttlSeconds = defaultTariffTTL
	}
	return &TariffService{tariffs: tariffs, fleet: fleet, cache: cache, ttlSeconds: ttlSeconds}
}

func tariffCacheKey(tier string) string {
	return "tariffs:" + tier
}

// Tariff returns the table of a tier, from cache when possible.
func (s *TariffService) Tariff(ctx context.Context, tier string) (*domain.TariffTable, error) {
	tier = strings.TrimSpace(tier)
	if tier == "" {
		return nil, fmt.Errorf("empty tier: %w", domain.ErrUnknownTariffTier)
	}

	if s.cache != nil {
		if data, err := s.cache.Get(ctx, tariffCacheKey(tier)); err == nil {
			var table domain.TariffTable
			if err := json.Unmarshal(data, &table); err == nil {
				return &table, nil
			}
		}
	}

	return s.Refresh(ctx, tier)
}

// Refresh fetches the table of a tier from the provider and overwrites the cache.
func (s *TariffService) Refresh(ctx context.Context, tier string) (*domain.TariffTable, error) {
	table, err := s.tariffs.Tariff(ctx, tier)
	if err != nil {
		return nil, fmt.Errorf("tariff %s: %w", tier, err)
	}

	if s.cache != nil {
		if data, err := json.Marshal(table); err == nil {
			_ = s.cache.Set(ctx, tariffCacheKey(tier), data, s.ttlSeconds)
		}
	}

	return table, nil
}

// Tiers lists the distinct tiers of the cars currently in the fleet, sorted.
func (s *TariffService) Tiers(ctx context.Context) ([]string, error) {
	vehicles, err := s.fleet.Vehicles(ctx)
	if err != nil {
		return nil, fmt.Errorf("load fleet: %w", err)
	}

	seen := make(map[string]struct{})
	var tiers []string
	for _, v := range vehicles {
		if !v.IsCar() || v.Model.Tier == "" {
			continue
		}
		if _, ok := seen[v.Model.Tier]; ok {
			continue
		}
		seen[v.Model.Tier] = struct{}{}
		tiers = append(tiers, v.Model.Tier)
	}
	sort.Strings(tiers)
	return tiers, nil
}
