package domain

import "time"

// Favorite marks a coffee as liked by a visitor (one browser context).
type Favorite struct {
	VisitorID string    `json:"-"`
	CoffeeID  string    `json:"coffee_id"`
	CreatedAt time.Time `json:"created_at"`
}
