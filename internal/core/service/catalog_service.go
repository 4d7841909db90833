package service

import (
	"context"
	"net/url"
	"slices"

	"github.com/rs/zerolog"

	"github.com/kopinusa/storefront/internal/core/domain"
	"github.com/kopinusa/storefront/internal/core/listing"
	"github.com/kopinusa/storefront/internal/core/ports"
)

// CatalogService serves the public menu. Unavailable items and variants are
// hidden from customers.
type CatalogService struct {
	backend ports.Backend
	log     zerolog.Logger
}

var _ ports.CatalogService = (*CatalogService)(nil)

func NewCatalogService(backend ports.Backend, log zerolog.Logger) *CatalogService {
	return &CatalogService{backend: backend, log: log.With().Str("component", "catalog").Logger()}
}

// Featured returns the newest available items, at most limit of them.
func (s *CatalogService) Featured(ctx context.Context, limit int) ([]domain.MenuItem, error) {
	items, err := s.available(ctx)
	if err != nil {
		return nil, err
	}
	items = listing.Sort(items, MenuSchema, listing.SortNewest)
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func (s *CatalogService) Menu(ctx context.Context, q ports.CatalogQuery) ([]domain.MenuItem, error) {
	items, err := s.available(ctx)
	if err != nil {
		return nil, err
	}
	return listing.Apply(items, MenuSchema, listing.Query{
		Search: q.Search,
		Facets: map[string]string{"category": q.Category},
		Sort:   listing.SortKey(q.Sort),
	}), nil
}

// Coffee returns one available item with the variants that can be ordered
// with it.
func (s *CatalogService) Coffee(ctx context.Context, id string) (*ports.CoffeeDetail, error) {
	var item domain.MenuItem
	if err := s.backend.Get(ctx, "/menu/"+url.PathEscape(id), &item); err != nil {
		return nil, err
	}
	if !item.IsAvailable {
		return nil, domain.ErrNotFound
	}

	var variants []domain.Variant
	if err := s.backend.Get(ctx, "/variants", &variants); err != nil {
		// The item is still orderable without variants.
		s.log.Warn().Err(err).Str("menu_item_id", id).Msg("load variants failed")
	}
	variants = slices.DeleteFunc(variants, func(v domain.Variant) bool { return !v.IsAvailable })
	variants = listing.Sort(variants, VariantSchema, listing.SortName)

	return &ports.CoffeeDetail{Item: item, Variants: variants}, nil
}

func (s *CatalogService) available(ctx context.Context) ([]domain.MenuItem, error) {
	var items []domain.MenuItem
	if err := s.backend.Get(ctx, "/menu", &items); err != nil {
		return nil, err
	}
	return slices.DeleteFunc(items, func(m domain.MenuItem) bool { return !m.IsAvailable }), nil
}
