package ports

import (
	"context"

	"github.com/samirrijal/tripcost/internal/core/domain"
)

// FleetProvider returns the snapshots the leg reconstruction runs against.
type FleetProvider interface {
	Vehicles(ctx context.Context) ([]domain.Vehicle, error)
	ParkingZones(ctx context.Context) ([]domain.ParkingZone, error)
}

// TariffProvider looks up the tariff table of a vehicle tier.
// An unknown tier is reported as domain.ErrUnknownTariffTier.
type TariffProvider interface {
	Tariff(ctx context.Context, tier string) (*domain.TariffTable, error)
}

// EventPublisher publishes domain events to a message broker.
type EventPublisher interface {
	PublishEstimate(ctx context.Context, estimate *domain.Estimate) error
}

// EventSubscriber subscribes to domain events from a message broker.
type EventSubscriber interface {
	SubscribeEstimates(ctx context.Context, handler func(ctx context.Context, estimate *domain.Estimate) error) error
}

// CacheService provides read-through caching.
type CacheService interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttlSeconds int) error
	Delete(ctx context.Context, key string) error
}
