// Package journal derives display views from an entry collection: the
// filtered, newest-first list and the course progress summary.
//
// Everything here is a pure function over a slice. The service layer reads
// the user's collection once and hands it over; nothing in this package
// touches storage.
package journal

import (
	"sort"
	"strings"

	"github.com/sakif/dailylog/internal/model"
)

// Filter selects which entries to show.
//
// Category "" or "all" passes every entry. Search is matched
// case-insensitively against title and content, spaces included; only ""
// passes every entry.
// Both conditions must hold.
type Filter struct {
	Category string
	Search   string
}

// Match reports whether e passes the filter.
func (f Filter) Match(e model.Entry) bool {
	if f.Category != "" && f.Category != model.CategoryAll && string(e.Category) != f.Category {
		return false
	}

	term := strings.ToLower(f.Search)
	if term == "" {
		return true
	}
	return strings.Contains(strings.ToLower(e.Title), term) ||
		strings.Contains(strings.ToLower(e.Content), term)
}

// Apply returns the entries that pass f, newest first.
// The input slice is not modified.
func Apply(entries []model.Entry, f Filter) []model.Entry {
	out := make([]model.Entry, 0, len(entries))
	for _, e := range entries {
		if f.Match(e) {
			out = append(out, e)
		}
	}
	SortNewestFirst(out)
	return out
}

// SortNewestFirst sorts entries by timestamp, descending.
// Equal timestamps keep their relative order.
func SortNewestFirst(entries []model.Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Timestamp.After(entries[j].Timestamp)
	})
}
