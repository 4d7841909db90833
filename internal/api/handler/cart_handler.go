package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/kopinusa/storefront/internal/core/domain"
	"github.com/kopinusa/storefront/internal/core/ports"
)

// CartHandler serves the cart, checkout, payment and order history pages.
type CartHandler struct {
	carts ports.CartService
}

func NewCartHandler(carts ports.CartService) *CartHandler {
	return &CartHandler{carts: carts}
}

type cartResponse struct {
	Lines []domain.CartLine `json:"lines"`
	Count int               `json:"count"`
	Total float64           `json:"total"`
}

func newCartResponse(cart *domain.Cart) cartResponse {
	lines := cart.Lines
	if lines == nil {
		lines = []domain.CartLine{}
	}
	return cartResponse{Lines: lines, Count: cart.Count(), Total: cart.Total()}
}

type addToCartRequest struct {
	MenuItemID string `json:"menu_item_id" validate:"notblank"`
	VariantID  string `json:"variant_id"`
	Quantity   int    `json:"quantity"`
}

type updateCartLineRequest struct {
	VariantID string `json:"variant_id"`
	Quantity  int    `json:"quantity"`
}

type checkoutRequest struct {
	Notes         string `json:"notes" validate:"max=500"`
	PaymentMethod string `json:"payment_method"`
}

type paymentRequest struct {
	OrderID       string `json:"order_id"`
	PaymentMethod string `json:"payment_method"`
}

type ordersResponse struct {
	Orders []domain.Order `json:"orders"`
}

// Cart returns the session's cart.
//
// @Summary      Get cart
// @Tags         cart
// @Produce      json
// @Success      200  {object}  cartResponse
// @Router       /cart [get]
func (h *CartHandler) Cart(c echo.Context) error {
	sess, err := requireSession(c)
	if err != nil {
		return err
	}
	cart, err := h.carts.Get(c.Request().Context(), sess)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newCartResponse(cart))
}

// AddItem adds a menu item (and optional variant) to the cart.
//
// @Summary      Add to cart
// @Tags         cart
// @Accept       json
// @Produce      json
// @Param        body  body      addToCartRequest  true  "Item to add"
// @Success      200   {object}  cartResponse
// @Failure      422   {object}  ErrorResponse
// @Router       /cart/items [post]
func (h *CartHandler) AddItem(c echo.Context) error {
	sess, err := requireSession(c)
	if err != nil {
		return err
	}
	var req addToCartRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	cart, err := h.carts.Add(c.Request().Context(), sess, ports.AddToCartInput{
		MenuItemID: req.MenuItemID,
		VariantID:  req.VariantID,
		Quantity:   req.Quantity,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newCartResponse(cart))
}

// UpdateItem sets the quantity of a cart line; 0 removes it.
//
// @Summary      Update cart line
// @Tags         cart
// @Accept       json
// @Produce      json
// @Param        id    path      string                 true  "Menu item ID"
// @Param        body  body      updateCartLineRequest  true  "New quantity"
// @Success      200   {object}  cartResponse
// @Failure      404   {object}  ErrorResponse
// @Router       /cart/items/{id} [put]
func (h *CartHandler) UpdateItem(c echo.Context) error {
	sess, err := requireSession(c)
	if err != nil {
		return err
	}
	var req updateCartLineRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	cart, err := h.carts.SetQuantity(c.Request().Context(), sess, c.Param("id"), req.VariantID, req.Quantity)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newCartResponse(cart))
}

// RemoveItem drops a cart line.
//
// @Summary      Remove cart line
// @Tags         cart
// @Produce      json
// @Param        id          path      string  true   "Menu item ID"
// @Param        variant_id  query     string  false  "Variant ID"
// @Success      200         {object}  cartResponse
// @Router       /cart/items/{id} [delete]
func (h *CartHandler) RemoveItem(c echo.Context) error {
	sess, err := requireSession(c)
	if err != nil {
		return err
	}
	cart, err := h.carts.SetQuantity(c.Request().Context(), sess, c.Param("id"), c.QueryParam("variant_id"), 0)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newCartResponse(cart))
}

// Clear empties the cart.
//
// @Summary      Clear cart
// @Tags         cart
// @Success      204
// @Router       /cart [delete]
func (h *CartHandler) Clear(c echo.Context) error {
	sess, err := requireSession(c)
	if err != nil {
		return err
	}
	if err := h.carts.Clear(c.Request().Context(), sess); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Checkout places the cart as an order.
//
// @Summary      Checkout
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        body  body      checkoutRequest  false  "Order notes and payment method"
// @Success      201   {object}  domain.Order
// @Failure      409   {object}  ErrorResponse
// @Failure      422   {object}  ErrorResponse
// @Router       /checkout [post]
func (h *CartHandler) Checkout(c echo.Context) error {
	sess, err := requireSession(c)
	if err != nil {
		return err
	}
	var req checkoutRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	order, err := h.carts.Checkout(c.Request().Context(), sess, ports.CheckoutInput{
		Notes:         req.Notes,
		PaymentMethod: req.PaymentMethod,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, order)
}

// Pay starts a payment for an order and returns the gateway redirect.
//
// @Summary      Initiate payment
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        body  body      paymentRequest  true  "Order and payment method"
// @Success      200   {object}  domain.Payment
// @Failure      422   {object}  ErrorResponse
// @Router       /payment [post]
func (h *CartHandler) Pay(c echo.Context) error {
	sess, err := requireSession(c)
	if err != nil {
		return err
	}
	var req paymentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	payment, err := h.carts.InitiatePayment(c.Request().Context(), sess, req.OrderID, req.PaymentMethod)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, payment)
}

// Orders lists the session owner's order history, newest first.
//
// @Summary      Order history
// @Tags         orders
// @Produce      json
// @Success      200  {object}  ordersResponse
// @Router       /orders [get]
func (h *CartHandler) Orders(c echo.Context) error {
	sess, err := requireSession(c)
	if err != nil {
		return err
	}
	orders, err := h.carts.OrderHistory(c.Request().Context(), sess)
	if err != nil {
		return err
	}
	if orders == nil {
		orders = []domain.Order{}
	}
	return c.JSON(http.StatusOK, ordersResponse{Orders: orders})
}
