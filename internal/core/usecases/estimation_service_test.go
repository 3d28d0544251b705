package usecases_test

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/samirrijal/tripcost/internal/core/domain"
	"github.com/samirrijal/tripcost/internal/core/usecases"
	"github.com/samirrijal/tripcost/internal/pkg/geospatial"
)

// --- Mock providers ---

type mockFleet struct {
	vehiclesFn func(ctx context.Context) ([]domain.Vehicle, error)
	zonesFn    func(ctx context.Context) ([]domain.ParkingZone, error)
}

func (m *mockFleet) Vehicles(ctx context.Context) ([]domain.Vehicle, error) {
	if m.vehiclesFn != nil {
		return m.vehiclesFn(ctx)
	}
	return nil, nil
}

func (m *mockFleet) ParkingZones(ctx context.Context) ([]domain.ParkingZone, error) {
	if m.zonesFn != nil {
		return m.zonesFn(ctx)
	}
	return nil, nil
}

type mockTariffs struct {
	tariffFn func(ctx context.Context, tier string) (*domain.TariffTable, error)
}

func (m *mockTariffs) Tariff(ctx context.Context, tier string) (*domain.TariffTable, error) {
	if m.tariffFn != nil {
		return m.tariffFn(ctx, tier)
	}
	return nil, fmt.Errorf("tier %s: %w", tier, domain.ErrUnknownTariffTier)
}

type mockPublisher struct {
	published []*domain.Estimate
	err       error
}

func (m *mockPublisher) PublishEstimate(ctx context.Context, e *domain.Estimate) error {
	m.published = append(m.published, e)
	return m.err
}

func staticFleet(vehicles []domain.Vehicle, zones []domain.ParkingZone) *mockFleet {
	return &mockFleet{
		vehiclesFn: func(ctx context.Context) ([]domain.Vehicle, error) { return vehicles, nil },
		zonesFn:    func(ctx context.Context) ([]domain.ParkingZone, error) { return zones, nil },
	}
}

var tableM = domain.TariffTable{
	Tier:                "M",
	PricingPerMinute:    domain.Tariff{UnlockFee: 1000, MinutePrice: 300, PauseUnitPrice: 100, HourCapPrice: 5000},
	PricingPerKilometer: domain.Tariff{UnlockFee: 500, KilometerPrice: 2000, PauseUnitPrice: 100, HourCapPrice: 5000},
}

func countingTariffs(calls map[string]int) *mockTariffs {
	return &mockTariffs{
		tariffFn: func(ctx context.Context, tier string) (*domain.TariffTable, error) {
			calls[tier]++
			if tier != "M" {
				return nil, fmt.Errorf("tier %s: %w", tier, domain.ErrUnknownTariffTier)
			}
			t := tableM
			return &t, nil
		},
	}
}

// --- Tests ---

func TestEstimationService_SingleLeg(t *testing.T) {
	fleet := staticFleet([]domain.Vehicle{scooter, car}, []domain.ParkingZone{noParkingZone, parkingZone})
	calls := map[string]int{}
	pub := &mockPublisher{}
	svc := usecases.NewEstimationService(fleet, usecases.NewTariffService(countingTariffs(calls), fleet, nil, 0), pub, usecases.DefaultPricingRules())

	est, err := svc.Estimate(context.Background(), []domain.Leg{{Timestamp: t0, Start: origin, End: parkedEnd}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	km := geospatial.Distance(carLocation, parkedEnd)
	minutes := km / (25.0 / 60)
	wantMinute := (1000 + 300*minutes) * 1.21 / 1000
	wantKilometer := (500 + 2000*km) * 1.21 / 1000

	if !almostEqual(est.Prices.PricingPerMinute, wantMinute) {
		t.Errorf("expected per-minute %v, got %v", wantMinute, est.Prices.PricingPerMinute)
	}
	if !almostEqual(est.Prices.PricingPerKilometer, wantKilometer) {
		t.Errorf("expected per-kilometer %v, got %v", wantKilometer, est.Prices.PricingPerKilometer)
	}
	if want := est.Prices.BestChoice(); est.BestChoice != want {
		t.Errorf("expected best choice %s, got %s", want, est.BestChoice)
	}
	if len(est.Reservations) != 1 {
		t.Fatalf("expected 1 reservation, got %d", len(est.Reservations))
	}
	if est.ID == "" {
		t.Error("expected an estimate id")
	}
	if len(pub.published) != 1 || pub.published[0].ID != est.ID {
		t.Errorf("expected the estimate to be published once, got %d", len(pub.published))
	}
}

func TestEstimationService_TwoLegsWithPause(t *testing.T) {
	fleet := staticFleet([]domain.Vehicle{car}, []domain.ParkingZone{parkingZone})
	calls := map[string]int{}
	svc := usecases.NewEstimationService(fleet, usecases.NewTariffService(countingTariffs(calls), fleet, nil, 0), nil, usecases.DefaultPricingRules())

	legs := []domain.Leg{
		{Timestamp: t0, Start: origin, End: openEnd},
		{Timestamp: t0.Add(90 * time.Minute), Start: openEnd, End: parkedEnd},
	}
	est, err := svc.Estimate(context.Background(), legs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(est.Reservations) != 1 {
		t.Fatalf("expected a single reservation, got %d", len(est.Reservations))
	}

	walk := geospatial.Distance(origin, carLocation) / (5.0 / 60)
	drive1 := geospatial.Distance(carLocation, openEnd) / (25.0 / 60)
	drive2 := geospatial.Distance(openEnd, parkedEnd) / (25.0 / 60)
	wantPause := 90 - walk - drive1

	// timestamps are minutes since the epoch, so allow for their rounding
	u := est.Reservations[0].Units
	if math.Abs(u.PauseUnits-wantPause) > 1e-6 {
		t.Errorf("expected %v pause minutes, got %v", wantPause, u.PauseUnits)
	}
	if !almostEqual(u.Minutes, drive1+drive2) {
		t.Errorf("expected %v minutes, got %v", drive1+drive2, u.Minutes)
	}
	if calls["M"] != 1 {
		t.Errorf("expected tier M to be fetched once, got %d", calls["M"])
	}
}

func TestEstimationService_UnknownTierAborts(t *testing.T) {
	xl := domain.Vehicle{ID: "car-xl", Model: domain.VehicleModel{Type: domain.ModelTypeCar, Tier: "XL"}, Location: carLocation}
	fleet := staticFleet([]domain.Vehicle{xl}, []domain.ParkingZone{parkingZone})
	pub := &mockPublisher{}
	svc := usecases.NewEstimationService(fleet, usecases.NewTariffService(countingTariffs(map[string]int{}), fleet, nil, 0), pub, usecases.DefaultPricingRules())

	est, err := svc.Estimate(context.Background(), []domain.Leg{{Timestamp: t0, Start: origin, End: parkedEnd}})
	if !errors.Is(err, domain.ErrUnknownTariffTier) {
		t.Fatalf("expected ErrUnknownTariffTier, got %v", err)
	}
	if est != nil {
		t.Error("expected no partial estimate")
	}
	if len(pub.published) != 0 {
		t.Error("failed estimates must not be published")
	}
}

func TestEstimationService_ProviderFailure(t *testing.T) {
	fleet := &mockFleet{
		vehiclesFn: func(ctx context.Context) ([]domain.Vehicle, error) {
			return nil, fmt.Errorf("status 502: %w", domain.ErrDataProvider)
		},
	}
	svc := usecases.NewEstimationService(fleet, usecases.NewTariffService(&mockTariffs{}, fleet, nil, 0), nil, usecases.DefaultPricingRules())

	_, err := svc.Estimate(context.Background(), []domain.Leg{{Timestamp: t0, Start: origin, End: parkedEnd}})
	if !errors.Is(err, domain.ErrDataProvider) {
		t.Fatalf("expected ErrDataProvider, got %v", err)
	}
}

func TestEstimationService_EmptyLegs(t *testing.T) {
	fleet := staticFleet(nil, nil)
	svc := usecases.NewEstimationService(fleet, usecases.NewTariffService(&mockTariffs{}, fleet, nil, 0), nil, usecases.DefaultPricingRules())

	_, err := svc.Estimate(context.Background(), nil)
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestEstimationService_PublishFailureIsIgnored(t *testing.T) {
	fleet := staticFleet([]domain.Vehicle{car}, []domain.ParkingZone{parkingZone})
	pub := &mockPublisher{err: errors.New("nats down")}
	svc := usecases.NewEstimationService(fleet, usecases.NewTariffService(countingTariffs(map[string]int{}), fleet, nil, 0), pub, usecases.DefaultPricingRules())

	if _, err := svc.Estimate(context.Background(), []domain.Leg{{Timestamp: t0, Start: origin, End: parkedEnd}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
