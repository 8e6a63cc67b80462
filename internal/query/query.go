// Package query implements the in-memory filter, sort, and pagination
// pipeline used by listing endpoints. All functions are pure: inputs are
// never mutated and results are fresh slices.
package query

import "sort"

// Predicate reports whether an item passes a filter.
type Predicate[T any] func(T) bool

// Filter returns the items matching every predicate. Predicates compose
// with AND: a free-text search predicate must be combined here with the
// structural filters, never applied instead of them.
func Filter[T any](items []T, preds ...Predicate[T]) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		ok := true
		for _, p := range preds {
			if p == nil {
				continue
			}
			if !p(item) {
				ok = false
				break
			}
		}
		if ok {
			out = append(out, item)
		}
	}
	return out
}

// Any builds a predicate passing items that match at least one of the
// given predicates. Used for multi-select facets like categories.
func Any[T any](preds ...Predicate[T]) Predicate[T] {
	return func(item T) bool {
		for _, p := range preds {
			if p != nil && p(item) {
				return true
			}
		}
		return false
	}
}

// SortBy returns a copy of items ordered by the key function. The sort is
// stable so equal keys keep their incoming order, which matters when the
// key is a coarse timestamp.
func SortBy[T any](items []T, less func(a, b T) bool) []T {
	out := make([]T, len(items))
	copy(out, items)
	sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}

// Page is one page of a paginated listing.
type Page[T any] struct {
	Items      []T `json:"items"`
	PageNumber int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalItems int `json:"total_items"`
	TotalPages int `json:"total_pages"`
}

// Paginate slices items into the requested page. Pages are 1-based. An
// empty input still yields one (empty) page, and out-of-range page numbers
// clamp to the nearest valid page.
func Paginate[T any](items []T, page, pageSize int) Page[T] {
	if pageSize < 1 {
		pageSize = 1
	}
	total := len(items)
	totalPages := (total + pageSize - 1) / pageSize
	if totalPages < 1 {
		totalPages = 1
	}
	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}
	start := (page - 1) * pageSize
	end := start + pageSize
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}
	out := make([]T, end-start)
	copy(out, items[start:end])
	return Page[T]{
		Items:      out,
		PageNumber: page,
		PageSize:   pageSize,
		TotalItems: total,
		TotalPages: totalPages,
	}
}
