package service

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/kopinusa/storefront/internal/core/domain"
	"github.com/kopinusa/storefront/internal/core/ports"
	"github.com/kopinusa/storefront/internal/core/validation"
)

// FavoriteService keeps each visitor's list of favourite coffees.
type FavoriteService struct {
	repo    ports.FavoriteRepository
	backend ports.Backend
	now     func() time.Time
}

var _ ports.FavoriteService = (*FavoriteService)(nil)

func NewFavoriteService(repo ports.FavoriteRepository, backend ports.Backend) *FavoriteService {
	return &FavoriteService{repo: repo, backend: backend, now: time.Now}
}

// List returns coffee IDs, most recently added first.
func (s *FavoriteService) List(ctx context.Context, visitorID string) ([]string, error) {
	if visitorID == "" {
		return []string{}, nil
	}
	favs, err := s.repo.List(ctx, visitorID)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(favs))
	for _, f := range favs {
		ids = append(ids, f.CoffeeID)
	}
	return ids, nil
}

// Add marks coffeeID as a favourite once it is known to exist on the menu.
func (s *FavoriteService) Add(ctx context.Context, visitorID, coffeeID string) error {
	coffeeID = strings.TrimSpace(coffeeID)
	if err := checkFavorite(visitorID, coffeeID); err != nil {
		return err
	}

	var item domain.MenuItem
	if err := s.backend.Get(ctx, "/menu/"+url.PathEscape(coffeeID), &item); err != nil {
		return err
	}
	return s.repo.Add(ctx, &domain.Favorite{
		VisitorID: visitorID,
		CoffeeID:  coffeeID,
		CreatedAt: s.now().UTC(),
	})
}

func (s *FavoriteService) Remove(ctx context.Context, visitorID, coffeeID string) error {
	coffeeID = strings.TrimSpace(coffeeID)
	if err := checkFavorite(visitorID, coffeeID); err != nil {
		return err
	}
	return s.repo.Remove(ctx, visitorID, coffeeID)
}

func checkFavorite(visitorID, coffeeID string) error {
	if visitorID == "" {
		return domain.ErrUnauthenticated
	}
	if coffeeID == "" {
		verrs := &validation.Errors{}
		verrs.Add("coffee_id", "is required")
		return verrs
	}
	return nil
}
