package domain

import "time"

// OrderStatus represents the fulfilment state of an order.
type OrderStatus string

const (
	OrderPending    OrderStatus = "pending"
	OrderProcessing OrderStatus = "processing"
	OrderCompleted  OrderStatus = "completed"
	OrderCancelled  OrderStatus = "cancelled"
)

// PaymentStatus is reported by the backend after payment initiation.
type PaymentStatus string

const (
	PaymentUnpaid   PaymentStatus = "unpaid"
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentFailed   PaymentStatus = "failed"
	PaymentRefunded PaymentStatus = "refunded"
)

// OrderItem is a single priced line of a placed order.
type OrderItem struct {
	MenuItemID  string  `json:"menu_item_id"`
	VariantID   string  `json:"variant_id,omitempty"`
	Name        string  `json:"name"`
	VariantName string  `json:"variant_name,omitempty"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
}

// Order is a placed order as held by the backend.
type Order struct {
	ID            string        `json:"id"`
	UserID        string        `json:"user_id"`
	CustomerName  string        `json:"customer_name"`
	CustomerEmail string        `json:"customer_email"`
	Items         []OrderItem   `json:"items"`
	TotalAmount   float64       `json:"total_amount"`
	Status        OrderStatus   `json:"status"`
	PaymentStatus PaymentStatus `json:"payment_status"`
	Notes         string        `json:"notes,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
}

// Payment is the backend's answer to a payment initiation. RedirectURL and
// Token are opaque gateway values passed through to the browser.
type Payment struct {
	OrderID     string        `json:"order_id"`
	Method      string        `json:"method"`
	Status      PaymentStatus `json:"status"`
	RedirectURL string        `json:"redirect_url,omitempty"`
	Token       string        `json:"token,omitempty"`
}
