package listing

import (
	"slices"
	"strings"
)

// Query is the state of the list's search box, filter dropdowns and sort menu.
type Query struct {
	Search string
	Facets map[string]string
	Sort   SortKey
}

// Filter returns the items matching q, in their original order. The search
// text matches case-insensitively against any search field; every facet must
// equal its field unless it is empty or All. Facets unknown to the schema are
// ignored. items is never modified.
func Filter[T any](items []T, s Schema[T], q Query) []T {
	needle := strings.ToLower(strings.TrimSpace(q.Search))

	out := make([]T, 0, len(items))
	for _, item := range items {
		if needle != "" && !matchesText(s.SearchFields(item), needle) {
			continue
		}
		if !matchesFacets(item, s, q.Facets) {
			continue
		}
		out = append(out, item)
	}
	return out
}

func matchesText(fields []string, needle string) bool {
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), needle) {
			return true
		}
	}
	return false
}

func matchesFacets[T any](item T, s Schema[T], facets map[string]string) bool {
	for name, want := range facets {
		want = strings.TrimSpace(want)
		if want == "" || strings.EqualFold(want, All) {
			continue
		}
		field, ok := s.Facets[name]
		if !ok {
			continue
		}
		if !strings.EqualFold(field(item), want) {
			return false
		}
	}
	return true
}

// Sort returns a stably sorted copy of items. Unknown keys fall back to the
// schema default.
func Sort[T any](items []T, s Schema[T], key SortKey) []T {
	less, ok := s.Sorts[key]
	if !ok {
		less = s.Sorts[s.DefaultSort]
	}
	out := slices.Clone(items)
	if less != nil {
		slices.SortStableFunc(out, less)
	}
	return out
}

// ResolveSort returns key when the schema supports it, otherwise the default.
func (s Schema[T]) ResolveSort(key SortKey) SortKey {
	if _, ok := s.Sorts[key]; ok {
		return key
	}
	return s.DefaultSort
}

// Apply filters then sorts.
func Apply[T any](items []T, s Schema[T], q Query) []T {
	return Sort(Filter(items, s, q), s, q.Sort)
}
