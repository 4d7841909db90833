package domain

import "time"

// Dashboard is the admin overview of users, orders and the menu.
type Dashboard struct {
	TotalUsers     int                 `json:"total_users"`
	ActiveUsers    int                 `json:"active_users"`
	TotalOrders    int                 `json:"total_orders"`
	OrdersByStatus map[OrderStatus]int `json:"orders_by_status"`
	Revenue        float64             `json:"revenue"`
	MenuItems      int                 `json:"menu_items"`
	AvailableItems int                 `json:"available_items"`
	RecentOrders   []Order             `json:"recent_orders"`
	RecentActivity []AdminActivity     `json:"recent_activity"`
	GeneratedAt    time.Time           `json:"generated_at"`
}
