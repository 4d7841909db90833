package domain

import "time"

// CartLine references a menu item and optional variant with a quantity.
type CartLine struct {
	MenuItemID  string  `json:"menu_item_id"`
	VariantID   string  `json:"variant_id,omitempty"`
	Name        string  `json:"name"`
	VariantName string  `json:"variant_name,omitempty"`
	UnitPrice   float64 `json:"unit_price"`
	Quantity    int     `json:"quantity"`
}

// Subtotal is UnitPrice × Quantity.
func (l CartLine) Subtotal() float64 {
	return l.UnitPrice * float64(l.Quantity)
}

func (l CartLine) sameProduct(menuItemID, variantID string) bool {
	return l.MenuItemID == menuItemID && l.VariantID == variantID
}

// Cart is the in-progress order of one session. It is independent of the
// backend until checkout.
type Cart struct {
	SessionID string     `json:"session_id"`
	Lines     []CartLine `json:"lines"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// Add appends line, merging quantities with an existing line for the same
// menu item and variant.
func (c *Cart) Add(line CartLine) error {
	if line.Quantity <= 0 {
		return ErrInvalidQuantity
	}
	for i := range c.Lines {
		if c.Lines[i].sameProduct(line.MenuItemID, line.VariantID) {
			c.Lines[i].Quantity += line.Quantity
			return nil
		}
	}
	c.Lines = append(c.Lines, line)
	return nil
}

// SetQuantity replaces the quantity of a line. Zero removes the line.
func (c *Cart) SetQuantity(menuItemID, variantID string, qty int) error {
	if qty < 0 {
		return ErrInvalidQuantity
	}
	for i := range c.Lines {
		if c.Lines[i].sameProduct(menuItemID, variantID) {
			if qty == 0 {
				c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
				return nil
			}
			c.Lines[i].Quantity = qty
			return nil
		}
	}
	return ErrCartLineNotFound
}

// Remove drops the line for the given product.
func (c *Cart) Remove(menuItemID, variantID string) error {
	return c.SetQuantity(menuItemID, variantID, 0)
}

// Total is the sum of all line subtotals.
func (c *Cart) Total() float64 {
	var sum float64
	for _, l := range c.Lines {
		sum += l.Subtotal()
	}
	return sum
}

// Count is the number of units in the cart.
func (c *Cart) Count() int {
	n := 0
	for _, l := range c.Lines {
		n += l.Quantity
	}
	return n
}

func (c *Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}
