package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/dailylog/internal/apperror"
	"github.com/sakif/dailylog/internal/metrics"
	"github.com/sakif/dailylog/internal/model"
	"github.com/sakif/dailylog/internal/reconcile"
)

// SyncResult reports what a sync did.
type SyncResult struct {
	Added   int
	Updated int
	Skipped int
}

// Message is the human-readable summary returned to the client.
func (r SyncResult) Message() string {
	msg := fmt.Sprintf("Synced %d new logs and updated %d existing logs", r.Added, r.Updated)
	if r.Skipped > 0 {
		msg += fmt.Sprintf(" (%d skipped)", r.Skipped)
	}
	return msg
}

// DecodeCandidates decodes each raw item on its own so that one bad item
// (wrong types, unparseable timestamp) does not sink the batch. It returns
// the decoded entries and how many items failed.
func DecodeCandidates(raw []json.RawMessage) ([]model.Entry, int) {
	out := make([]model.Entry, 0, len(raw))
	malformed := 0
	for _, r := range raw {
		var e model.Entry
		if err := json.Unmarshal(r, &e); err != nil {
			malformed++
			continue
		}
		out = append(out, e)
	}
	return out, malformed
}

// Sync reconciles an offline client's cache into the user's collection.
//
// FLOW:
//  1. drop candidates that fail validation (counted as skipped)
//  2. ReadAll the server collection and Merge (last-writer-wins)
//  3. WriteAll only the added and updated entries, in one transaction
//  4. schedule a notification for every added entry
//
// malformed is the number of items the transport could not even decode;
// they are reported as skipped too. A sync with nothing at all to look at is
// a validation error.
func (s *EntryService) Sync(ctx context.Context, userID string, candidates []model.Entry, malformed int) (SyncResult, error) {
	return s.reconcile(ctx, userID, candidates, malformed, true)
}

// Import is Sync without notifications, for bulk-loading a legacy log file.
func (s *EntryService) Import(ctx context.Context, userID string, candidates []model.Entry, malformed int) (SyncResult, error) {
	return s.reconcile(ctx, userID, candidates, malformed, false)
}

func (s *EntryService) reconcile(ctx context.Context, userID string, candidates []model.Entry, malformed int, notify bool) (SyncResult, error) {
	if len(candidates)+malformed == 0 {
		return SyncResult{}, apperror.ValidationFailed("logs", "logs array is required and must not be empty")
	}

	valid := make([]model.Entry, 0, len(candidates))
	invalid := malformed
	for _, c := range candidates {
		c.ID = strings.TrimSpace(c.ID)
		if c.ID == "" {
			// Merge skips and counts these itself.
			valid = append(valid, c)
			continue
		}
		if err := normalize(&c); err != nil || c.Timestamp.IsZero() {
			invalid++
			s.logger.Debug("sync candidate rejected", slog.String("id", c.ID))
			continue
		}
		valid = append(valid, c)
	}

	current, err := s.repo.ReadAll(ctx, userID)
	if err != nil {
		return SyncResult{}, fmt.Errorf("sync: reading collection: %w", err)
	}

	merged := reconcile.Merge(reconcile.Index(current), valid)

	if err := s.repo.WriteAll(ctx, userID, merged.Changed()); err != nil {
		s.logger.Error("sync write failed",
			slog.String("userID", userID),
			slog.String("error", err.Error()),
		)
		return SyncResult{}, fmt.Errorf("sync: writing merged entries: %w", err)
	}

	res := SyncResult{
		Added:   merged.Added,
		Updated: merged.Updated,
		Skipped: merged.Skipped + invalid,
	}
	metrics.ObserveSync(res.Added, res.Updated, res.Skipped)

	if notify {
		for _, id := range merged.AddedIDs {
			s.notifier.Enqueue(merged.Entries[id])
		}
	}

	s.logger.Info("sync completed",
		slog.String("userID", userID),
		slog.Int("added", res.Added),
		slog.Int("updated", res.Updated),
		slog.Int("skipped", res.Skipped),
	)
	return res, nil
}
