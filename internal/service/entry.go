// Package service contains the business logic layer of the application.
//
// THE THREE-LAYER ARCHITECTURE:
//
//	Handler (HTTP layer)     → parses requests, writes responses
//	Service (Business layer) → validates, enforces rules, orchestrates
//	Repository (Data layer)  → reads/writes to the database
//
// Services accept plain Go values (never *http.Request) and return domain
// errors from internal/apperror. The same EntryService backs the HTTP API and
// the `dailylog import` command.
//
// DEPENDENCY INJECTION:
// EntryService takes a repository.EntryRepository (interface), NOT a
// *sqlite.DB. Tests pass an in-memory fake; main.go passes SQLite.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sakif/dailylog/internal/apperror"
	"github.com/sakif/dailylog/internal/config"
	"github.com/sakif/dailylog/internal/journal"
	"github.com/sakif/dailylog/internal/model"
	"github.com/sakif/dailylog/internal/reconcile"
	"github.com/sakif/dailylog/internal/repository"
)

// Validation limits.
const (
	MaxTitleLength   = 200
	MaxContentLength = 50000
)

// EntryNotifier schedules "new entry" notifications. Implemented by
// *notify.Queue; Enqueue must not block.
type EntryNotifier interface {
	Enqueue(entry model.Entry) bool
}

// EntryService handles business logic for journal entries.
type EntryService struct {
	repo     repository.EntryRepository
	notifier EntryNotifier
	progress config.ProgressConfig
	logger   *slog.Logger

	// Replaced in tests.
	now   func() time.Time
	newID func() string
}

// NewEntryService creates a new EntryService.
func NewEntryService(
	repo repository.EntryRepository,
	notifier EntryNotifier,
	progress config.ProgressConfig,
	logger *slog.Logger,
) *EntryService {
	return &EntryService{
		repo:     repo,
		notifier: notifier,
		progress: progress,
		logger:   logger,
		now:      time.Now,
		newID:    func() string { return uuid.NewString() },
	}
}

// normalize trims text fields and fills defaults (category "other",
// importance 3) in place, then checks the entry invariants.
func normalize(e *model.Entry) error {
	e.Title = strings.TrimSpace(e.Title)
	e.Content = strings.TrimSpace(e.Content)
	e.Category = model.Category(strings.TrimSpace(string(e.Category)))

	if e.Category == "" {
		e.Category = model.CategoryOther
	}
	if e.Importance == 0 {
		e.Importance = model.DefaultImportance
	}
	return validate(e)
}

func validate(e *model.Entry) error {
	if e.Title == "" {
		return apperror.ValidationFailed("title", "title is required")
	}
	if len(e.Title) > MaxTitleLength {
		return apperror.ValidationFailed("title",
			fmt.Sprintf("title must be %d characters or less", MaxTitleLength))
	}
	if e.Content == "" {
		return apperror.ValidationFailed("content", "content is required")
	}
	if len(e.Content) > MaxContentLength {
		return apperror.ValidationFailed("content",
			fmt.Sprintf("content must be %d characters or less", MaxContentLength))
	}
	if e.Importance < model.MinImportance || e.Importance > model.MaxImportance {
		return apperror.ValidationFailed("importance",
			fmt.Sprintf("importance must be between %d and %d", model.MinImportance, model.MaxImportance))
	}
	return nil
}

// List returns the user's entries that pass f, newest first.
func (s *EntryService) List(ctx context.Context, userID string, f journal.Filter) ([]model.Entry, error) {
	entries, err := s.repo.ReadAll(ctx, userID)
	if err != nil {
		s.logger.Error("failed to list entries", slog.String("userID", userID), slog.String("error", err.Error()))
		return nil, fmt.Errorf("listing entries: %w", err)
	}
	return journal.Apply(entries, f), nil
}

// Get returns one entry or apperror.ErrNotFound.
func (s *EntryService) Get(ctx context.Context, userID, id string) (*model.Entry, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "entry ID is required")
	}
	return s.repo.GetByID(ctx, userID, id)
}

// Create validates and stores a new entry, then schedules its notification.
//
// An offline client may already have assigned an ID and timestamp; both are
// kept. Otherwise the server assigns a UUID and the current time.
func (s *EntryService) Create(ctx context.Context, userID string, in model.Entry) (*model.Entry, error) {
	e := in
	e.ID = strings.TrimSpace(e.ID)
	if err := normalize(&e); err != nil {
		return nil, err
	}
	if e.ID == "" {
		e.ID = s.newID()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = s.now()
	}

	if err := s.repo.Create(ctx, userID, &e); err != nil {
		s.logger.Error("failed to create entry",
			slog.String("userID", userID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating entry: %w", err)
	}

	s.logger.Info("entry created",
		slog.String("userID", userID),
		slog.String("id", e.ID),
		slog.String("category", string(e.Category)),
	)
	s.notifier.Enqueue(e)

	return &e, nil
}

// Update applies an edit to an existing entry.
//
// Empty title/content/category and zero importance mean "leave as is". The
// timestamp only moves when the client sends one strictly newer than the
// stored one: that is how an offline edit wins the next sync.
func (s *EntryService) Update(ctx context.Context, userID, id string, patch model.Entry) (*model.Entry, error) {
	existing, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	e := *existing
	if t := strings.TrimSpace(patch.Title); t != "" {
		e.Title = t
	}
	if c := strings.TrimSpace(patch.Content); c != "" {
		e.Content = c
	}
	if c := strings.TrimSpace(string(patch.Category)); c != "" {
		e.Category = model.Category(c)
	}
	if patch.Importance != 0 {
		e.Importance = patch.Importance
	}
	if reconcile.Newer(patch.Timestamp, e.Timestamp) {
		e.Timestamp = patch.Timestamp
	}

	if err := validate(&e); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, userID, &e); err != nil {
		return nil, fmt.Errorf("updating entry: %w", err)
	}

	s.logger.Info("entry updated", slog.String("userID", userID), slog.String("id", e.ID))
	return &e, nil
}

// Delete removes an entry. Returns apperror.ErrNotFound if it doesn't exist.
func (s *EntryService) Delete(ctx context.Context, userID, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return apperror.ValidationFailed("id", "entry ID is required")
	}

	if err := s.repo.Delete(ctx, userID, id); err != nil {
		return err
	}

	s.logger.Info("entry deleted", slog.String("userID", userID), slog.String("id", id))
	return nil
}

// Progress computes the user's course progress.
func (s *EntryService) Progress(ctx context.Context, userID string) (journal.Progress, error) {
	entries, err := s.repo.ReadAll(ctx, userID)
	if err != nil {
		return journal.Progress{}, fmt.Errorf("computing progress: %w", err)
	}
	return journal.ComputeProgress(entries, s.progress.TargetDays, s.progress.Location), nil
}
