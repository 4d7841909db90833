package ports

import (
	"context"

	"github.com/kopinusa/storefront/internal/core/domain"
)

// CatalogQuery filters and sorts the public menu.
type CatalogQuery struct {
	Search   string
	Category string
	Sort     string
}

// CoffeeDetail is a menu item with the variants that can be ordered with it.
type CoffeeDetail struct {
	Item     domain.MenuItem
	Variants []domain.Variant
}

// CatalogService serves the public menu pages.
type CatalogService interface {
	Featured(ctx context.Context, limit int) ([]domain.MenuItem, error)
	Menu(ctx context.Context, q CatalogQuery) ([]domain.MenuItem, error)
	Coffee(ctx context.Context, id string) (*CoffeeDetail, error)
}

type AddToCartInput struct {
	MenuItemID string
	VariantID  string
	Quantity   int
}

type CheckoutInput struct {
	Notes         string
	PaymentMethod string
}

// CartService owns the cart context and the checkout/payment flow.
type CartService interface {
	Get(ctx context.Context, sess *domain.Session) (*domain.Cart, error)
	Add(ctx context.Context, sess *domain.Session, in AddToCartInput) (*domain.Cart, error)
	SetQuantity(ctx context.Context, sess *domain.Session, menuItemID, variantID string, qty int) (*domain.Cart, error)
	Clear(ctx context.Context, sess *domain.Session) error
	Checkout(ctx context.Context, sess *domain.Session, in CheckoutInput) (*domain.Order, error)
	InitiatePayment(ctx context.Context, sess *domain.Session, orderID, method string) (*domain.Payment, error)
	OrderHistory(ctx context.Context, sess *domain.Session) ([]domain.Order, error)
}

// FavoriteService manages the visitor's favorites list.
type FavoriteService interface {
	List(ctx context.Context, visitorID string) ([]string, error)
	Add(ctx context.Context, visitorID, coffeeID string) error
	Remove(ctx context.Context, visitorID, coffeeID string) error
}
