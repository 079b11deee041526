// Package listing implements the table semantics shared by every listable
// resource: case-insensitive substring search, per-field equality filters,
// single-key sorting by the field's natural ordering, and 1-indexed
// pagination. Both the orders and products endpoints go through Apply so the
// two cannot drift apart.
package listing

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// FilterAll is the sentinel value meaning "no constraint on this field".
const FilterAll = "all"

type Params struct {
	Page      int
	Limit     int
	Search    string
	SortBy    string
	SortOrder string
	Filters   map[string]string
}

// Schema declares which fields of T are searchable, filterable, and sortable.
// Sort accessors return string, int, int64, float64, time.Time, or
// decimal.Decimal; anything else compares as equal.
type Schema[T any] struct {
	SearchFields []func(T) string
	FilterFields map[string]func(T) string
	SortFields   map[string]func(T) any
}

// Apply runs search, filters, sort, and pagination over items and returns the
// visible page plus the total count after search/filter but before paging.
// The input slice is not modified.
func Apply[T any](items []T, p Params, s Schema[T]) ([]T, int) {
	term := strings.ToLower(strings.TrimSpace(p.Search))

	out := make([]T, 0, len(items))
	for _, it := range items {
		if term != "" && !matchesSearch(it, term, s.SearchFields) {
			continue
		}
		if !matchesFilters(it, p.Filters, s.FilterFields) {
			continue
		}
		out = append(out, it)
	}

	if key, ok := s.SortFields[p.SortBy]; ok {
		desc := strings.EqualFold(p.SortOrder, "desc")
		sort.SliceStable(out, func(i, j int) bool {
			c := compare(key(out[i]), key(out[j]))
			if desc {
				return c > 0
			}
			return c < 0
		})
	}

	total := len(out)
	return paginate(out, p.Page, p.Limit), total
}

func matchesSearch[T any](it T, term string, fields []func(T) string) bool {
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f(it)), term) {
			return true
		}
	}
	return false
}

// Filters compose with AND. Empty values and FilterAll pass; filter names the
// schema does not declare are ignored.
func matchesFilters[T any](it T, filters map[string]string, fields map[string]func(T) string) bool {
	for name, want := range filters {
		if want == "" || want == FilterAll {
			continue
		}
		f, ok := fields[name]
		if !ok {
			continue
		}
		if f(it) != want {
			return false
		}
	}
	return true
}

func compare(a, b any) int {
	switch av := a.(type) {
	case string:
		return strings.Compare(av, b.(string))
	case int:
		return cmpOrdered(av, b.(int))
	case int64:
		return cmpOrdered(av, b.(int64))
	case float64:
		return cmpOrdered(av, b.(float64))
	case time.Time:
		return av.Compare(b.(time.Time))
	case decimal.Decimal:
		return av.Cmp(b.(decimal.Decimal))
	}
	return 0
}

func cmpOrdered[T int | int64 | float64](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// paginate slices out page p.Page (1-indexed) of size limit, clamped to the
// collection. A page past the end is empty, never an error.
func paginate[T any](items []T, page, limit int) []T {
	if limit <= 0 {
		return items
	}
	if page < 1 {
		page = 1
	}
	start := (page - 1) * limit
	if start >= len(items) {
		return []T{}
	}
	end := start + limit
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}
