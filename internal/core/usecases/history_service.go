package usecases

import (
	"context"
	"fmt"

	"github.com/samirrijal/tripcost/internal/core/domain"
	"github.com/samirrijal/tripcost/internal/core/ports"
)

// HistoryService records computed estimates and serves them back.
type HistoryService struct {
	estimates ports.EstimateRepository
}

// NewHistoryService creates a new HistoryService.
func NewHistoryService(estimates ports.EstimateRepository) *HistoryService {
	return &HistoryService{estimates: estimates}
}

// Record stores an estimate. Computed legs are never part of it.
func (s *HistoryService) Record(ctx context.Context, estimate *domain.Estimate) error {
	if estimate == nil || estimate.ID == "" {
		return fmt.Errorf("estimate without id: %w", domain.ErrInvalidInput)
	}
	if err := s.estimates.Insert(ctx, estimate); err != nil {
		return fmt.Errorf("insert estimate: %w", err)
	}
	return nil
}

// GetByID returns one recorded estimate.
func (s *HistoryService) GetByID(ctx context.Context, id string) (*domain.Estimate, error) {
	return s.estimates.GetByID(ctx, id)
}

// List returns a page of recorded estimates, newest first, and the total count.
func (s *HistoryService) List(ctx context.Context, offset, limit int) ([]domain.Estimate, int, error) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	total, err := s.estimates.Count(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("count estimates: %w", err)
	}
	if offset >= total {
		return []domain.Estimate{}, total, nil
	}

	estimates, err := s.estimates.List(ctx, offset, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("list estimates: %w", err)
	}
	return estimates, total, nil
}
