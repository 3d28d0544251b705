package ports

import (
	"context"

	"github.com/samirrijal/tripcost/internal/core/domain"
)

// EstimateRepository persists the audit log of computed estimates.
type EstimateRepository interface {
	Insert(ctx context.Context, estimate *domain.Estimate) error
	GetByID(ctx context.Context, id string) (*domain.Estimate, error)
	List(ctx context.Context, offset, limit int) ([]domain.Estimate, error)
	Count(ctx context.Context) (int, error)
}
