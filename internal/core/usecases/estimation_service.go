package usecases

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/samirrijal/tripcost/internal/core/domain"
	"github.com/samirrijal/tripcost/internal/core/ports"
)

var tracer = otel.Tracer("github.com/samirrijal/tripcost/internal/core/usecases")

// EstimationService turns a list of legs into a priced estimate.
type EstimationService struct {
	fleet     ports.FleetProvider
	tariffs   *TariffService
	publisher ports.EventPublisher
	rules     PricingRules
	now       func() time.Time
}

// NewEstimationService creates a new EstimationService. publisher may be nil.
func NewEstimationService(
	fleet ports.FleetProvider,
	tariffs *TariffService,
	publisher ports.EventPublisher,
	rules PricingRules,
) *EstimationService {
	return &EstimationService{
		fleet:     fleet,
		tariffs:   tariffs,
		publisher: publisher,
		rules:     rules,
		now:       time.Now,
	}
}

// Estimate reconstructs the journey, prices every reservation under both
// schemes and picks the cheaper one. Lookups run one after the other; tariff
// tables are fetched once per tier.
func (s *EstimationService) Estimate(ctx context.Context, legs []domain.Leg) (_ *domain.Estimate, err error) {
	ctx, span := tracer.Start(ctx, "EstimationService.Estimate")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()
	span.SetAttributes(attribute.Int("estimate.legs", len(legs)))

	if len(legs) == 0 {
		return nil, fmt.Errorf("no legs: %w", domain.ErrInvalidInput)
	}

	vehicles, err := s.fleet.Vehicles(ctx)
	if err != nil {
		return nil, fmt.Errorf("load fleet: %w", err)
	}
	zones, err := s.fleet.ParkingZones(ctx)
	if err != nil {
		return nil, fmt.Errorf("load parking zones: %w", err)
	}

	journey, err := Reconstruct(legs, vehicles, zones, s.rules)
	if err != nil {
		return nil, fmt.Errorf("reconstruct journey: %w", err)
	}

	tables, err := s.tariffTables(ctx, journey)
	if err != nil {
		return nil, err
	}

	reservations, prices, err := PriceReservations(Reservations(journey, s.rules), tables, s.rules.VAT)
	if err != nil {
		return nil, fmt.Errorf("price reservations: %w", err)
	}

	estimate := &domain.Estimate{
		ID:           uuid.NewString(),
		BestChoice:   prices.BestChoice(),
		Prices:       prices,
		Reservations: reservations,
		Legs:         legs,
		CreatedAt:    s.now().UTC(),
	}
	span.SetAttributes(
		attribute.String("estimate.id", estimate.ID),
		attribute.String("estimate.best_choice", string(estimate.BestChoice)),
		attribute.Int("estimate.reservations", len(reservations)),
	)

	if s.publisher != nil {
		if perr := s.publisher.PublishEstimate(ctx, estimate); perr != nil {
			slog.WarnContext(ctx, "publish estimate failed", "estimate_id", estimate.ID, "error", perr)
		}
	}

	return estimate, nil
}

// tariffTables fetches the table of every tier used by the journey, once each.
func (s *EstimationService) tariffTables(ctx context.Context, journey []domain.ComputedLeg) (map[string]domain.TariffTable, error) {
	tables := make(map[string]domain.TariffTable)
	for _, leg := range journey {
		tier := leg.Car.Model.Tier
		if _, ok := tables[tier]; ok {
			continue
		}
		table, err := s.tariffs.Tariff(ctx, tier)
		if err != nil {
			return nil, err
		}
		tables[tier] = *table
	}
	return tables, nil
}
