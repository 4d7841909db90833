package ports

import (
	"context"

	"github.com/kopinusa/storefront/internal/core/domain"
	"github.com/kopinusa/storefront/internal/core/listing"
)

// AdminService hands out the session's back-office list controllers.
// Every method fails with domain.ErrForbidden for non-admin sessions.
type AdminService interface {
	Users(sess *domain.Session) (*listing.Controller[domain.User], error)
	Menus(sess *domain.Session) (*listing.Controller[domain.MenuItem], error)
	Variants(sess *domain.Session) (*listing.Controller[domain.Variant], error)
	Orders(sess *domain.Session) (*listing.Controller[domain.Order], error)
	Dashboard(ctx context.Context, sess *domain.Session) (*domain.Dashboard, error)
	Activity(ctx context.Context, sess *domain.Session, limit int) ([]domain.AdminActivity, error)
}
