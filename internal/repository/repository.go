// Package repository declares the storage contracts the service layer
// depends on. Implementations live in subpackages (see repository/sqlite).
//
// Every entry operation is scoped by userID: one user's collection is
// invisible to another, and entry IDs only need to be unique per user.
package repository

import (
	"context"

	"github.com/sakif/dailylog/internal/model"
)

// EntryRepository stores journal entries.
type EntryRepository interface {
	// ReadAll returns the user's whole collection, newest first.
	ReadAll(ctx context.Context, userID string) ([]model.Entry, error)

	// WriteAll upserts every given entry in a single transaction.
	// It never deletes: entries not in the slice are left alone.
	WriteAll(ctx context.Context, userID string, entries []model.Entry) error

	GetByID(ctx context.Context, userID, id string) (*model.Entry, error)

	// Create inserts a new entry; an existing ID yields apperror.ErrConflict.
	Create(ctx context.Context, userID string, entry *model.Entry) error

	// Upsert inserts or replaces a single entry.
	Upsert(ctx context.Context, userID string, entry *model.Entry) error

	// Update replaces an existing entry; a missing ID yields apperror.ErrNotFound.
	Update(ctx context.Context, userID string, entry *model.Entry) error

	Delete(ctx context.Context, userID, id string) error
}

// UserRepository stores accounts.
type UserRepository interface {
	// CreateUser inserts a password user; a taken email yields apperror.ErrConflict.
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)

	// UpsertGitHub creates or refreshes the user linked to user.GitHubID.
	UpsertGitHub(ctx context.Context, user *model.User) error
}
