// Package reconcile merges a client-held set of entries into the
// authoritative server-held set.
//
// LAST-WRITER-WINS:
// For every client entry, in order:
//  1. no ID              → skipped (a dirty cache must not block the rest)
//  2. ID unknown         → inserted verbatim, counted as added
//  3. ID known, client newer (strictly) → client replaces server, counted as updated
//  4. ID known, otherwise → server kept (ties go to the server)
//
// Entries that exist only on the server are never touched or reported.
//
// PURE FUNCTION:
// Merge reads nothing but its arguments and never calls time.Now. The same
// inputs always produce the same merged map and the same counts, which is why
// the sync endpoint and the import command can share it.
package reconcile

import (
	"strings"
	"time"

	"github.com/sakif/dailylog/internal/model"
)

// Result is the outcome of a merge.
type Result struct {
	// Entries is the merged collection, keyed by entry ID.
	// It is a fresh map; the caller's server map is left as it was.
	Entries map[string]model.Entry

	Added   int
	Updated int
	Skipped int

	// AddedIDs and UpdatedIDs list the affected IDs in client order.
	// Callers persist only these and notify only on AddedIDs.
	AddedIDs   []string
	UpdatedIDs []string
}

// Changed returns the entries that were added or updated, in client order.
func (r Result) Changed() []model.Entry {
	out := make([]model.Entry, 0, len(r.AddedIDs)+len(r.UpdatedIDs))
	seen := make(map[string]bool, cap(out))
	for _, ids := range [][]string{r.AddedIDs, r.UpdatedIDs} {
		for _, id := range ids {
			if seen[id] {
				continue
			}
			seen[id] = true
			out = append(out, r.Entries[id])
		}
	}
	return out
}

// Newer reports whether instant a is strictly later than instant b.
//
// This is the only timestamp comparison used for conflict resolution.
// Comparing parsed instants (not strings) makes "2024-01-02T10:00:00+02:00"
// and "2024-01-02T08:00:00Z" equal, as they should be.
func Newer(a, b time.Time) bool {
	return a.After(b)
}

// Merge merges client into server using last-writer-wins.
// It never fails; malformed candidates are skipped and counted.
func Merge(server map[string]model.Entry, client []model.Entry) Result {
	merged := make(map[string]model.Entry, len(server)+len(client))
	for id, e := range server {
		merged[id] = e
	}

	res := Result{Entries: merged}

	for _, candidate := range client {
		// Whitespace-only ids count as missing; any other id is used verbatim.
		id := candidate.ID
		if strings.TrimSpace(id) == "" {
			res.Skipped++
			continue
		}

		existing, ok := merged[id]
		if !ok {
			merged[id] = candidate
			res.Added++
			res.AddedIDs = append(res.AddedIDs, id)
			continue
		}

		if Newer(candidate.Timestamp, existing.Timestamp) {
			merged[id] = candidate
			res.Updated++
			res.UpdatedIDs = append(res.UpdatedIDs, id)
		}
	}

	return res
}

// Index turns a slice into the id-keyed map Merge expects.
// Later duplicates overwrite earlier ones. Entries whose ID is empty or
// whitespace are dropped, the same rule Merge applies to candidates.
func Index(entries []model.Entry) map[string]model.Entry {
	m := make(map[string]model.Entry, len(entries))
	for _, e := range entries {
		if strings.TrimSpace(e.ID) == "" {
			continue
		}
		m[e.ID] = e
	}
	return m
}
