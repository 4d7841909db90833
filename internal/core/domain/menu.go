package domain

import "time"

// Availability filter values shared by menu items and variants.
const (
	Available   = "available"
	Unavailable = "unavailable"
)

// MenuItem is a coffee or other product on the shop's menu.
type MenuItem struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Price       float64   `json:"price"`
	ImageURL    string    `json:"image_url,omitempty"`
	IsAvailable bool      `json:"is_available"`
	CreatedAt   time.Time `json:"created_at"`
}

func (m MenuItem) Availability() string {
	return availability(m.IsAvailable)
}

// Variant is an option applied on top of a menu item (size, milk, sugar level).
type Variant struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Type        string    `json:"type"`
	ExtraPrice  float64   `json:"extra_price"`
	IsAvailable bool      `json:"is_available"`
	CreatedAt   time.Time `json:"created_at"`
}

func (v Variant) Availability() string {
	return availability(v.IsAvailable)
}

func availability(ok bool) string {
	if ok {
		return Available
	}
	return Unavailable
}
