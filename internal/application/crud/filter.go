// Package crud holds the page-level state shared by every list and form screen.
package crud

import "strings"

// Filter keeps the items where any field returned by fields contains term, case-insensitively.
// PRE: fields is non-nil
// POST: A blank term returns items unchanged; otherwise order is preserved
func Filter[T any](items []T, term string, fields func(T) []string) []T {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return items
	}
	out := make([]T, 0, len(items))
	for _, it := range items {
		for _, f := range fields(it) {
			if strings.Contains(strings.ToLower(f), term) {
				out = append(out, it)
				break
			}
		}
	}
	return out
}

// Where keeps the items for which keep returns true.
func Where[T any](items []T, keep func(T) bool) []T {
	out := make([]T, 0, len(items))
	for _, it := range items {
		if keep(it) {
			out = append(out, it)
		}
	}
	return out
}
