package usecases_test

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/samirrijal/tripcost/internal/core/domain"
	"github.com/samirrijal/tripcost/internal/core/usecases"
)

// --- Mock CacheService ---

type mockCache struct {
	data map[string][]byte
	ttl  map[string]int
}

func newMockCache() *mockCache {
	return &mockCache{data: map[string][]byte{}, ttl: map[string]int{}}
}

func (m *mockCache) Get(ctx context.Context, key string) ([]byte, error) {
	if v, ok := m.data[key]; ok {
		return v, nil
	}
	return nil, errors.New("valkey nil message")
}

func (m *mockCache) Set(ctx context.Context, key string, value []byte, ttlSeconds int) error {
	m.data[key] = value
	m.ttl[key] = ttlSeconds
	return nil
}

func (m *mockCache) Delete(ctx context.Context, key string) error {
	delete(m.data, key)
	return nil
}

// --- Tests ---

func TestTariffService_ReadThrough(t *testing.T) {
	calls := map[string]int{}
	cache := newMockCache()
	svc := usecases.NewTariffService(countingTariffs(calls), &mockFleet{}, cache, 600)

	for i := 0; i < 3; i++ {
		table, err := svc.Tariff(context.Background(), "M")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if table.PricingPerMinute.MinutePrice != 300 {
			t.Fatalf("unexpected table %+v", table)
		}
	}

	if calls["M"] != 1 {
		t.Errorf("expected one provider call, got %d", calls["M"])
	}
	if cache.ttl["tariffs:M"] != 600 {
		t.Errorf("expected ttl 600, got %d", cache.ttl["tariffs:M"])
	}
}

func TestTariffService_CorruptCacheFallsBack(t *testing.T) {
	calls := map[string]int{}
	cache := newMockCache()
	cache.data["tariffs:M"] = []byte("{not json")
	svc := usecases.NewTariffService(countingTariffs(calls), &mockFleet{}, cache, 0)

	if _, err := svc.Tariff(context.Background(), "M"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls["M"] != 1 {
		t.Errorf("expected provider to be called, got %d", calls["M"])
	}
}

func TestTariffService_UnknownTier(t *testing.T) {
	svc := usecases.NewTariffService(countingTariffs(map[string]int{}), &mockFleet{}, newMockCache(), 0)

	for _, tier := range []string{"XL", "", "  "} {
		if _, err := svc.Tariff(context.Background(), tier); !errors.Is(err, domain.ErrUnknownTariffTier) {
			t.Errorf("tier %q: expected ErrUnknownTariffTier, got %v", tier, err)
		}
	}
}

func TestTariffService_RefreshOverwritesCache(t *testing.T) {
	calls := map[string]int{}
	cache := newMockCache()
	svc := usecases.NewTariffService(countingTariffs(calls), &mockFleet{}, cache, 0)

	_, _ = svc.Tariff(context.Background(), "M")
	if _, err := svc.Refresh(context.Background(), "M"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls["M"] != 2 {
		t.Errorf("refresh should bypass the cache, got %d calls", calls["M"])
	}
}

func TestTariffService_Tiers(t *testing.T) {
	fleet := staticFleet([]domain.Vehicle{
		{ID: "1", Model: domain.VehicleModel{Type: domain.ModelTypeCar, Tier: "L"}},
		{ID: "2", Model: domain.VehicleModel{Type: domain.ModelTypeCar, Tier: "M"}},
		{ID: "3", Model: domain.VehicleModel{Type: domain.ModelTypeCar, Tier: "L"}},
		{ID: "4", Model: domain.VehicleModel{Type: "scooter", Tier: "S"}},
		{ID: "5", Model: domain.VehicleModel{Type: domain.ModelTypeCar}},
	}, nil)
	svc := usecases.NewTariffService(&mockTariffs{}, fleet, nil, 0)

	tiers, err := svc.Tiers(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := []string{"L", "M"}; !reflect.DeepEqual(tiers, want) {
		t.Errorf("expected %v, got %v", want, tiers)
	}
}
