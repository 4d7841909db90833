package service

import (
	"strconv"
	"time"

	"github.com/kopinusa/storefront/internal/core/domain"
	"github.com/kopinusa/storefront/internal/core/listing"
)

// Collection kinds managed from the back office.
const (
	KindUsers    = "users"
	KindMenus    = "menus"
	KindVariants = "variants"
	KindOrders   = "orders"
)

// Backend resource paths of each managed collection.
const (
	usersPath    = "/admin/user-management/users"
	menusPath    = "/admin/menu-management/menus"
	variantsPath = "/admin/menu-management/variants"
	ordersPath   = "/admin/order-management/orders"
)

var UserSchema = listing.Schema[domain.User]{
	Kind: KindUsers,
	ID:   func(u domain.User) string { return u.ID },
	SearchFields: func(u domain.User) []string {
		return []string{u.Name, u.Email, u.PhoneNumber}
	},
	Facets: map[string]func(domain.User) string{
		"role":   func(u domain.User) string { return string(u.Role) },
		"status": domain.User.Status,
	},
	Sorts: map[listing.SortKey]func(a, b domain.User) int{
		listing.SortNewest:     listing.NewestFirst(userCreated),
		listing.SortOldest:     listing.OldestFirst(userCreated),
		listing.SortName:       listing.Alphabetical(func(u domain.User) string { return u.Name }),
		listing.SortEmail:      listing.Alphabetical(func(u domain.User) string { return u.Email }),
		listing.SortOrdersDesc: listing.Descending(func(u domain.User) int { return u.TotalOrders }),
		listing.SortSpentDesc:  listing.Descending(func(u domain.User) float64 { return u.TotalSpent }),
	},
	DefaultSort: listing.SortNewest,
}

func userCreated(u domain.User) time.Time { return u.CreatedAt }

var MenuSchema = listing.Schema[domain.MenuItem]{
	Kind: KindMenus,
	ID:   func(m domain.MenuItem) string { return m.ID },
	SearchFields: func(m domain.MenuItem) []string {
		return []string{m.Name, m.Description, m.Category}
	},
	Facets: map[string]func(domain.MenuItem) string{
		"category":     func(m domain.MenuItem) string { return m.Category },
		"availability": domain.MenuItem.Availability,
	},
	Sorts: map[listing.SortKey]func(a, b domain.MenuItem) int{
		listing.SortNewest:    listing.NewestFirst(menuCreated),
		listing.SortOldest:    listing.OldestFirst(menuCreated),
		listing.SortName:      listing.Alphabetical(func(m domain.MenuItem) string { return m.Name }),
		listing.SortPriceAsc:  listing.Ascending(func(m domain.MenuItem) float64 { return m.Price }),
		listing.SortPriceDesc: listing.Descending(func(m domain.MenuItem) float64 { return m.Price }),
	},
	DefaultSort: listing.SortNewest,
}

func menuCreated(m domain.MenuItem) time.Time { return m.CreatedAt }

var VariantSchema = listing.Schema[domain.Variant]{
	Kind: KindVariants,
	ID:   func(v domain.Variant) string { return v.ID },
	SearchFields: func(v domain.Variant) []string {
		return []string{v.Name, v.Type}
	},
	Facets: map[string]func(domain.Variant) string{
		"type":         func(v domain.Variant) string { return v.Type },
		"availability": domain.Variant.Availability,
	},
	Sorts: map[listing.SortKey]func(a, b domain.Variant) int{
		listing.SortNewest:    listing.NewestFirst(variantCreated),
		listing.SortOldest:    listing.OldestFirst(variantCreated),
		listing.SortName:      listing.Alphabetical(func(v domain.Variant) string { return v.Name }),
		listing.SortPriceAsc:  listing.Ascending(func(v domain.Variant) float64 { return v.ExtraPrice }),
		listing.SortPriceDesc: listing.Descending(func(v domain.Variant) float64 { return v.ExtraPrice }),
	},
	DefaultSort: listing.SortNewest,
}

func variantCreated(v domain.Variant) time.Time { return v.CreatedAt }

var OrderSchema = listing.Schema[domain.Order]{
	Kind: KindOrders,
	ID:   func(o domain.Order) string { return o.ID },
	SearchFields: func(o domain.Order) []string {
		return []string{o.ID, o.CustomerName, o.CustomerEmail, strconv.FormatFloat(o.TotalAmount, 'f', -1, 64)}
	},
	Facets: map[string]func(domain.Order) string{
		"status":         func(o domain.Order) string { return string(o.Status) },
		"payment_status": func(o domain.Order) string { return string(o.PaymentStatus) },
	},
	Sorts: map[listing.SortKey]func(a, b domain.Order) int{
		listing.SortNewest:    listing.NewestFirst(orderCreated),
		listing.SortOldest:    listing.OldestFirst(orderCreated),
		listing.SortTotalDesc: listing.Descending(func(o domain.Order) float64 { return o.TotalAmount }),
	},
	DefaultSort: listing.SortNewest,
}

func orderCreated(o domain.Order) time.Time { return o.CreatedAt }
