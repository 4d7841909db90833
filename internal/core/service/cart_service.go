package service

import (
	"context"
	"fmt"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/kopinusa/storefront/internal/api/metrics"
	"github.com/kopinusa/storefront/internal/core/domain"
	"github.com/kopinusa/storefront/internal/core/listing"
	"github.com/kopinusa/storefront/internal/core/ports"
	"github.com/kopinusa/storefront/internal/core/validation"
)

// CartService owns the cart context of each session and turns it into an
// order at checkout.
type CartService struct {
	backend ports.Backend
	carts   ports.CartStore
	guard   ports.SubmitGuard
	log     zerolog.Logger
	now     func() time.Time
}

var _ ports.CartService = (*CartService)(nil)

func NewCartService(backend ports.Backend, carts ports.CartStore, guard ports.SubmitGuard, log zerolog.Logger) *CartService {
	return &CartService{
		backend: backend,
		carts:   carts,
		guard:   guard,
		log:     log.With().Str("component", "cart").Logger(),
		now:     time.Now,
	}
}

func (s *CartService) Get(ctx context.Context, sess *domain.Session) (*domain.Cart, error) {
	if sess == nil {
		return nil, domain.ErrUnauthenticated
	}
	return s.carts.Load(ctx, sess.ID)
}

// Add prices the item (and variant) from the menu and merges it into the cart.
func (s *CartService) Add(ctx context.Context, sess *domain.Session, in ports.AddToCartInput) (*domain.Cart, error) {
	if sess == nil {
		return nil, domain.ErrUnauthenticated
	}
	if in.Quantity <= 0 {
		return nil, domain.ErrInvalidQuantity
	}

	line, err := s.priceLine(ctx, in)
	if err != nil {
		return nil, err
	}

	cart, err := s.carts.Load(ctx, sess.ID)
	if err != nil {
		return nil, err
	}
	if err := cart.Add(line); err != nil {
		return nil, err
	}
	return cart, s.save(ctx, cart)
}

func (s *CartService) priceLine(ctx context.Context, in ports.AddToCartInput) (domain.CartLine, error) {
	var item domain.MenuItem
	if err := s.backend.Get(ctx, "/menu/"+url.PathEscape(in.MenuItemID), &item); err != nil {
		return domain.CartLine{}, err
	}
	if !item.IsAvailable {
		return domain.CartLine{}, domain.ErrItemUnavailable
	}

	line := domain.CartLine{
		MenuItemID: item.ID,
		Name:       item.Name,
		UnitPrice:  item.Price,
		Quantity:   in.Quantity,
	}
	if in.VariantID == "" {
		return line, nil
	}

	var variant domain.Variant
	if err := s.backend.Get(ctx, "/variants/"+url.PathEscape(in.VariantID), &variant); err != nil {
		return domain.CartLine{}, err
	}
	if !variant.IsAvailable {
		return domain.CartLine{}, domain.ErrItemUnavailable
	}
	line.VariantID = variant.ID
	line.VariantName = variant.Name
	line.UnitPrice += variant.ExtraPrice
	return line, nil
}

func (s *CartService) SetQuantity(ctx context.Context, sess *domain.Session, menuItemID, variantID string, qty int) (*domain.Cart, error) {
	if sess == nil {
		return nil, domain.ErrUnauthenticated
	}
	cart, err := s.carts.Load(ctx, sess.ID)
	if err != nil {
		return nil, err
	}
	if err := cart.SetQuantity(menuItemID, variantID, qty); err != nil {
		return nil, err
	}
	return cart, s.save(ctx, cart)
}

func (s *CartService) Clear(ctx context.Context, sess *domain.Session) error {
	if sess == nil {
		return domain.ErrUnauthenticated
	}
	return s.carts.Clear(ctx, sess.ID)
}

func (s *CartService) save(ctx context.Context, cart *domain.Cart) error {
	cart.UpdatedAt = s.now().UTC()
	if err := s.carts.Save(ctx, cart); err != nil {
		return fmt.Errorf("cart: save: %w", err)
	}
	return nil
}

type orderLine struct {
	MenuItemID string `json:"menu_item_id"`
	VariantID  string `json:"variant_id,omitempty"`
	Quantity   int    `json:"quantity"`
}

type orderRequest struct {
	Items         []orderLine `json:"items"`
	Notes         string      `json:"notes,omitempty"`
	PaymentMethod string      `json:"payment_method,omitempty"`
}

// Checkout places the cart as an order and clears it. Only one checkout per
// session may be in flight; prices are re-computed by the backend.
func (s *CartService) Checkout(ctx context.Context, sess *domain.Session, in ports.CheckoutInput) (*domain.Order, error) {
	if sess == nil {
		return nil, domain.ErrUnauthenticated
	}

	key := "checkout:" + sess.ID
	token, ok, err := s.guard.Acquire(ctx, key)
	if err != nil {
		metrics.CheckoutsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("cart: acquire checkout flag: %w", err)
	}
	if !ok {
		metrics.CheckoutsTotal.WithLabelValues("in_flight").Inc()
		return nil, domain.ErrSubmitInFlight
	}
	defer func() {
		if err := s.guard.Release(context.WithoutCancel(ctx), key, token); err != nil {
			s.log.Warn().Err(err).Str("session_id", sess.ID).Msg("release checkout flag failed")
		}
	}()

	cart, err := s.carts.Load(ctx, sess.ID)
	if err != nil {
		return nil, err
	}
	if cart.IsEmpty() {
		metrics.CheckoutsTotal.WithLabelValues("empty").Inc()
		return nil, domain.ErrEmptyCart
	}

	req := orderRequest{
		Notes:         strings.TrimSpace(in.Notes),
		PaymentMethod: strings.TrimSpace(in.PaymentMethod),
	}
	for _, l := range cart.Lines {
		req.Items = append(req.Items, orderLine{MenuItemID: l.MenuItemID, VariantID: l.VariantID, Quantity: l.Quantity})
	}

	var order domain.Order
	if err := s.backend.WithToken(sess.Token).Post(ctx, "/orders", req, &order); err != nil {
		metrics.CheckoutsTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	if err := s.carts.Clear(ctx, sess.ID); err != nil {
		// The order exists; a stale cart is the lesser problem.
		s.log.Error().Err(err).Str("order_id", order.ID).Msg("clear cart after checkout failed")
	}
	metrics.CheckoutsTotal.WithLabelValues("placed").Inc()
	s.log.Info().
		Str("order_id", order.ID).
		Str("user_id", sess.Identity.UserID).
		Float64("total", order.TotalAmount).
		Msg("order placed")
	return &order, nil
}

// InitiatePayment asks the backend to start a payment; the gateway redirect
// is returned untouched.
func (s *CartService) InitiatePayment(ctx context.Context, sess *domain.Session, orderID, method string) (*domain.Payment, error) {
	if sess == nil {
		return nil, domain.ErrUnauthenticated
	}
	orderID, method = strings.TrimSpace(orderID), strings.TrimSpace(method)
	verrs := &validation.Errors{}
	if orderID == "" {
		verrs.Add("order_id", "is required")
	}
	if method == "" {
		verrs.Add("payment_method", "is required")
	}
	if !verrs.Empty() {
		return nil, verrs
	}

	body := map[string]string{"order_id": orderID, "payment_method": method}
	var payment domain.Payment
	if err := s.backend.WithToken(sess.Token).Post(ctx, "/payments", body, &payment); err != nil {
		return nil, err
	}
	if payment.OrderID == "" {
		payment.OrderID = orderID
	}
	if payment.Method == "" {
		payment.Method = method
	}
	return &payment, nil
}

// OrderHistory lists the session owner's orders, newest first.
func (s *CartService) OrderHistory(ctx context.Context, sess *domain.Session) ([]domain.Order, error) {
	if sess == nil {
		return nil, domain.ErrUnauthenticated
	}
	var orders []domain.Order
	if err := s.backend.WithToken(sess.Token).Get(ctx, "/orders/history", &orders); err != nil {
		return nil, err
	}
	slices.SortStableFunc(orders, listing.NewestFirst(func(o domain.Order) time.Time { return o.CreatedAt }))
	return orders, nil
}
