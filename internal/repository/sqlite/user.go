package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/rs/xid"

	"github.com/sakif/dailylog/internal/apperror"
	"github.com/sakif/dailylog/internal/model"
	"github.com/sakif/dailylog/internal/repository"
)

// compile-time check that *DB implements repository.UserRepository
var _ repository.UserRepository = (*DB)(nil)

var userColumns = []string{
	"id", "email", "name", "password_hash", "github_id", "avatar_url", "created_at", "updated_at",
}

// NULLABLE COLUMNS:
// email and github_id carry UNIQUE indexes. A password user has no GitHub ID
// and a GitHub user may hide their email, so the "missing" value is stored as
// NULL (UNIQUE allows any number of NULLs) rather than "" or 0, which would
// collide on the second such user.
func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullInt(n int64) sql.NullInt64 {
	return sql.NullInt64{Int64: n, Valid: n != 0}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func scanUser(s rowScanner) (*model.User, error) {
	var (
		u        model.User
		email    sql.NullString
		githubID sql.NullInt64
		created  string
		updated  string
	)
	if err := s.Scan(&u.ID, &email, &u.Name, &u.PasswordHash, &githubID, &u.AvatarURL, &created, &updated); err != nil {
		return nil, err
	}
	u.Email = email.String
	u.GitHubID = githubID.Int64

	var err error
	if u.CreatedAt, err = parseTime(created); err != nil {
		return nil, err
	}
	if u.UpdatedAt, err = parseTime(updated); err != nil {
		return nil, err
	}
	return &u, nil
}

// CreateUser inserts a new user, assigning ID and timestamps in place.
// A taken email or GitHub ID yields apperror.ErrConflict.
func (db *DB) CreateUser(ctx context.Context, user *model.User) error {
	now := time.Now().UTC()
	user.ID = xid.New().String()
	user.Email = normalizeEmail(user.Email)
	user.CreatedAt = now
	user.UpdatedAt = now

	query, args, err := sq.Insert("users").
		Columns(userColumns...).
		Values(
			user.ID,
			nullString(user.Email),
			user.Name,
			user.PasswordHash,
			nullInt(user.GitHubID),
			user.AvatarURL,
			formatTime(user.CreatedAt),
			formatTime(user.UpdatedAt),
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("sqlite: building user insert: %w", err)
	}

	if _, err := db.conn.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("user", user.Email)
		}
		return fmt.Errorf("sqlite: inserting user: %w", err)
	}
	return nil
}

// GetUserByID retrieves a user by their internal ID.
// Returns apperror.ErrNotFound if no user exists with that ID.
func (db *DB) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	return db.getUser(ctx, sq.Eq{"id": id}, id)
}

// GetUserByEmail looks a user up by (case-insensitive) email address.
func (db *DB) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	email = normalizeEmail(email)
	return db.getUser(ctx, sq.Eq{"email": email}, email)
}

func (db *DB) getByGitHubID(ctx context.Context, githubID int64) (*model.User, error) {
	return db.getUser(ctx, sq.Eq{"github_id": githubID}, fmt.Sprintf("github:%d", githubID))
}

func (db *DB) getUser(ctx context.Context, where sq.Eq, label string) (*model.User, error) {
	query, args, err := sq.Select(userColumns...).From("users").Where(where).ToSql()
	if err != nil {
		return nil, fmt.Errorf("sqlite: building user query: %w", err)
	}

	u, err := scanUser(db.conn.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("user", label)
		}
		return nil, fmt.Errorf("sqlite: getting user %s: %w", label, err)
	}
	return u, nil
}

// UpsertGitHub inserts or refreshes the user linked to user.GitHubID.
//
// The internal ID and CreatedAt of an existing account are KEPT: entries
// reference users by ID, so a second login must land on the same row. Only
// the profile fields GitHub owns (name, email, avatar) are refreshed.
func (db *DB) UpsertGitHub(ctx context.Context, user *model.User) error {
	if user.GitHubID == 0 {
		return apperror.ValidationFailed("githubId", "github id is required")
	}

	existing, err := db.getByGitHubID(ctx, user.GitHubID)
	if err != nil && !errors.Is(err, apperror.ErrNotFound) {
		return err
	}

	if existing == nil {
		return db.CreateUser(ctx, user)
	}

	user.ID = existing.ID
	user.Email = normalizeEmail(user.Email)
	user.CreatedAt = existing.CreatedAt
	user.UpdatedAt = time.Now().UTC()

	query, args, err := sq.Update("users").
		Set("email", nullString(user.Email)).
		Set("name", user.Name).
		Set("avatar_url", user.AvatarURL).
		Set("updated_at", formatTime(user.UpdatedAt)).
		Where(sq.Eq{"id": user.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("sqlite: building user update: %w", err)
	}

	if _, err := db.conn.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("user", user.Email)
		}
		return fmt.Errorf("sqlite: updating user %s: %w", user.ID, err)
	}
	return nil
}
