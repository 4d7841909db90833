package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/kopinusa/storefront/internal/api/middleware"
	"github.com/kopinusa/storefront/internal/core/domain"
	"github.com/kopinusa/storefront/internal/core/ports"
	"github.com/kopinusa/storefront/internal/core/validation"
)

type stubCartService struct {
	ports.CartService
	cart       domain.Cart
	checkoutFn func(ctx context.Context, sess *domain.Session, in ports.CheckoutInput) (*domain.Order, error)
}

func (s *stubCartService) Add(_ context.Context, _ *domain.Session, in ports.AddToCartInput) (*domain.Cart, error) {
	if err := s.cart.Add(domain.CartLine{MenuItemID: in.MenuItemID, VariantID: in.VariantID, UnitPrice: 20000, Quantity: in.Quantity}); err != nil {
		return nil, err
	}
	return &s.cart, nil
}

func (s *stubCartService) SetQuantity(_ context.Context, _ *domain.Session, menuItemID, variantID string, qty int) (*domain.Cart, error) {
	if err := s.cart.SetQuantity(menuItemID, variantID, qty); err != nil {
		return nil, err
	}
	return &s.cart, nil
}

func (s *stubCartService) Checkout(ctx context.Context, sess *domain.Session, in ports.CheckoutInput) (*domain.Order, error) {
	return s.checkoutFn(ctx, sess, in)
}

func TestCartHandler_AddItem(t *testing.T) {
	handler := NewCartHandler(&stubCartService{})

	c, rec := newJSONContext(http.MethodPost, "/cart/items", `{"menu_item_id":"m1","quantity":2}`)
	c.Echo().Validator = validation.New()
	middleware.SetSession(c, testSession("s1", domain.RoleUser))

	if err := handler.AddItem(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	var resp cartResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Count != 2 || resp.Total != 40000 {
		t.Fatalf("unexpected cart: %+v", resp)
	}
}

func TestCartHandler_AddItem_RequiresMenuItem(t *testing.T) {
	handler := NewCartHandler(&stubCartService{})

	c, _ := newJSONContext(http.MethodPost, "/cart/items", `{"menu_item_id":"  ","quantity":1}`)
	c.Echo().Validator = validation.New()
	middleware.SetSession(c, testSession("s1", domain.RoleUser))

	var verrs *validation.Errors
	if err := handler.AddItem(c); !errors.As(err, &verrs) || verrs.Fields["menu_item_id"] == "" {
		t.Fatalf("expected menu_item_id validation error, got %v", err)
	}
}

func TestCartHandler_RemoveItem(t *testing.T) {
	stub := &stubCartService{cart: domain.Cart{Lines: []domain.CartLine{
		{MenuItemID: "m1", VariantID: "v1", UnitPrice: 10000, Quantity: 1},
		{MenuItemID: "m2", UnitPrice: 15000, Quantity: 2},
	}}}
	handler := NewCartHandler(stub)

	c, rec := newJSONContext(http.MethodDelete, "/cart/items/m1?variant_id=v1", "")
	c.SetParamNames("id")
	c.SetParamValues("m1")
	middleware.SetSession(c, testSession("s1", domain.RoleUser))

	if err := handler.RemoveItem(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	var resp cartResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(resp.Lines) != 1 || resp.Lines[0].MenuItemID != "m2" || resp.Total != 30000 {
		t.Fatalf("unexpected cart after remove: %+v", resp)
	}
}

func TestCartHandler_Checkout(t *testing.T) {
	stub := &stubCartService{
		checkoutFn: func(_ context.Context, sess *domain.Session, in ports.CheckoutInput) (*domain.Order, error) {
			if in.Notes != "less sugar" || in.PaymentMethod != "qris" {
				t.Fatalf("unexpected input: %+v", in)
			}
			return &domain.Order{ID: "o1", Status: domain.OrderPending}, nil
		},
	}
	handler := NewCartHandler(stub)

	c, rec := newJSONContext(http.MethodPost, "/checkout", `{"notes":"less sugar","payment_method":"qris"}`)
	c.Echo().Validator = validation.New()
	middleware.SetSession(c, testSession("s1", domain.RoleUser))

	if err := handler.Checkout(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
}

func TestCartHandler_Checkout_InFlight(t *testing.T) {
	stub := &stubCartService{
		checkoutFn: func(context.Context, *domain.Session, ports.CheckoutInput) (*domain.Order, error) {
			return nil, domain.ErrSubmitInFlight
		},
	}
	handler := NewCartHandler(stub)

	c, _ := newJSONContext(http.MethodPost, "/checkout", "")
	c.Echo().Validator = validation.New()
	middleware.SetSession(c, testSession("s1", domain.RoleUser))

	if err := handler.Checkout(c); !errors.Is(err, domain.ErrSubmitInFlight) {
		t.Fatalf("expected ErrSubmitInFlight, got %v", err)
	}
}
