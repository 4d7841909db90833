package service

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/kopinusa/storefront/internal/core/domain"
	"github.com/kopinusa/storefront/internal/core/listing"
)

const (
	dashboardRecentOrders   = 5
	dashboardRecentActivity = 10
)

// Dashboard fetches users, orders and menu concurrently and aggregates them.
// Revenue counts paid orders only. A failing audit-trail read leaves
// RecentActivity empty.
func (s *AdminService) Dashboard(ctx context.Context, sess *domain.Session) (*domain.Dashboard, error) {
	if sess == nil {
		return nil, domain.ErrUnauthenticated
	}
	if !sess.HasRole(domain.RoleAdmin) {
		return nil, domain.ErrForbidden
	}

	backend := s.backend.WithToken(sess.Token)
	var (
		users    []domain.User
		orders   []domain.Order
		menu     []domain.MenuItem
		activity []domain.AdminActivity
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return backend.Get(gctx, usersPath, &users) })
	g.Go(func() error { return backend.Get(gctx, ordersPath, &orders) })
	g.Go(func() error { return backend.Get(gctx, menusPath, &menu) })
	if s.activity != nil {
		g.Go(func() error {
			recent, err := s.activity.Recent(gctx, dashboardRecentActivity)
			if err != nil {
				s.log.Warn().Err(err).Msg("load admin activity failed")
				return nil
			}
			activity = recent
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	d := &domain.Dashboard{
		TotalUsers:     len(users),
		TotalOrders:    len(orders),
		OrdersByStatus: make(map[domain.OrderStatus]int),
		MenuItems:      len(menu),
		RecentActivity: activity,
		GeneratedAt:    time.Now().UTC(),
	}
	if d.RecentActivity == nil {
		d.RecentActivity = []domain.AdminActivity{}
	}
	for _, u := range users {
		if u.IsActive {
			d.ActiveUsers++
		}
	}
	for _, o := range orders {
		d.OrdersByStatus[o.Status]++
		if o.PaymentStatus == domain.PaymentPaid {
			d.Revenue += o.TotalAmount
		}
	}
	for _, m := range menu {
		if m.IsAvailable {
			d.AvailableItems++
		}
	}

	recent := listing.Sort(orders, OrderSchema, listing.SortNewest)
	if len(recent) > dashboardRecentOrders {
		recent = recent[:dashboardRecentOrders]
	}
	d.RecentOrders = recent
	return d, nil
}
