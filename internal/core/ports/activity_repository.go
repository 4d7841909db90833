package ports

import (
	"context"

	"github.com/kopinusa/storefront/internal/core/domain"
)

// ActivityRepository appends admin mutations to the audit trail.
type ActivityRepository interface {
	Record(ctx context.Context, a *domain.AdminActivity) error
	Recent(ctx context.Context, limit int) ([]domain.AdminActivity, error)
}
