// Package listing implements the entity list controller: fetch the whole
// collection once, filter and sort it in memory, and mediate create/edit/delete
// through a dialog that re-fetches the collection after every mutation.
package listing

import (
	"cmp"
	"strings"
	"time"
)

// SortKey names one of the orderings a Schema supports.
type SortKey string

const (
	SortNewest     SortKey = "newest"
	SortOldest     SortKey = "oldest"
	SortName       SortKey = "name"
	SortEmail      SortKey = "email"
	SortOrdersDesc SortKey = "orders-desc"
	SortSpentDesc  SortKey = "spent-desc"
	SortPriceAsc   SortKey = "price-asc"
	SortPriceDesc  SortKey = "price-desc"
	SortTotalDesc  SortKey = "total-desc"
)

// All is the sentinel categorical filter value that matches everything.
const All = "all"

// Schema describes how a collection of T is searched, filtered and sorted.
type Schema[T any] struct {
	// Kind names the collection ("users", "menus", ...).
	Kind string
	ID   func(T) string
	// SearchFields returns the text fields the free-text query is matched against.
	SearchFields func(T) []string
	// Facets maps a categorical filter name to the field it compares with.
	Facets map[string]func(T) string
	// Sorts maps each supported key to a comparison function.
	Sorts       map[SortKey]func(a, b T) int
	DefaultSort SortKey
}

// SortKeys lists the supported keys with the default first.
func (s Schema[T]) SortKeys() []SortKey {
	keys := []SortKey{s.DefaultSort}
	for _, k := range []SortKey{SortNewest, SortOldest, SortName, SortEmail, SortOrdersDesc, SortSpentDesc, SortPriceAsc, SortPriceDesc, SortTotalDesc} {
		if _, ok := s.Sorts[k]; ok && k != s.DefaultSort {
			keys = append(keys, k)
		}
	}
	return keys
}

// NewestFirst orders by a timestamp, latest first.
func NewestFirst[T any](at func(T) time.Time) func(a, b T) int {
	return func(a, b T) int { return at(b).Compare(at(a)) }
}

// OldestFirst orders by a timestamp, earliest first.
func OldestFirst[T any](at func(T) time.Time) func(a, b T) int {
	return func(a, b T) int { return at(a).Compare(at(b)) }
}

// Alphabetical orders by a string field, ignoring case.
func Alphabetical[T any](field func(T) string) func(a, b T) int {
	return func(a, b T) int {
		return strings.Compare(strings.ToLower(field(a)), strings.ToLower(field(b)))
	}
}

// Ascending orders by an ordered field, smallest first.
func Ascending[T any, V cmp.Ordered](field func(T) V) func(a, b T) int {
	return func(a, b T) int { return cmp.Compare(field(a), field(b)) }
}

// Descending orders by an ordered field, largest first.
func Descending[T any, V cmp.Ordered](field func(T) V) func(a, b T) int {
	return func(a, b T) int { return cmp.Compare(field(b), field(a)) }
}
