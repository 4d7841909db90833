package ports

import (
	"context"

	"github.com/kopinusa/storefront/internal/core/domain"
)

// FavoriteRepository stores the favorites list of each visitor.
type FavoriteRepository interface {
	List(ctx context.Context, visitorID string) ([]domain.Favorite, error)
	// Add is idempotent: adding an existing favorite is not an error.
	Add(ctx context.Context, fav *domain.Favorite) error
	Remove(ctx context.Context, visitorID, coffeeID string) error
}
