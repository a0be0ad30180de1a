package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"

	"github.com/sakif/dailylog/internal/apperror"
	"github.com/sakif/dailylog/internal/model"
	"github.com/sakif/dailylog/internal/repository"
)

// compile-time check that *DB implements repository.EntryRepository
var _ repository.EntryRepository = (*DB)(nil)

// entryColumns is the SELECT list shared by every entry query. scanEntry
// expects exactly this order.
var entryColumns = []string{"id", "title", "category", "content", "importance", "timestamp"}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(s rowScanner) (model.Entry, error) {
	var (
		e   model.Entry
		cat string
		ts  string
	)
	if err := s.Scan(&e.ID, &e.Title, &cat, &e.Content, &e.Importance, &ts); err != nil {
		return model.Entry{}, err
	}
	t, err := parseTime(ts)
	if err != nil {
		return model.Entry{}, err
	}
	e.Category = model.Category(cat)
	e.Timestamp = t
	return e, nil
}

// ReadAll returns every entry owned by userID, newest first.
//
// SQUIRREL:
// Queries are assembled with squirrel and turned into a (sql, args) pair with
// ToSql(). The builder never touches the connection itself; we still execute
// through database/sql so contexts and the single-connection pool apply.
func (db *DB) ReadAll(ctx context.Context, userID string) ([]model.Entry, error) {
	query, args, err := sq.Select(entryColumns...).
		From("entries").
		Where(sq.Eq{"user_id": userID}).
		OrderBy("timestamp DESC", "id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("sqlite: building read query: %w", err)
	}

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: reading entries for %s: %w", userID, err)
	}
	defer rows.Close()

	// Return an empty slice, not nil, so JSON renders [] instead of null.
	entries := []model.Entry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating entries: %w", err)
	}
	return entries, nil
}

// GetByID returns a single entry or apperror.ErrNotFound.
func (db *DB) GetByID(ctx context.Context, userID, id string) (*model.Entry, error) {
	query, args, err := sq.Select(entryColumns...).
		From("entries").
		Where(sq.Eq{"user_id": userID, "id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("sqlite: building get query: %w", err)
	}

	e, err := scanEntry(db.conn.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("entry", id)
		}
		return nil, fmt.Errorf("sqlite: getting entry %s: %w", id, err)
	}
	return &e, nil
}

// Create inserts a new entry. A duplicate ID for the same user is a conflict.
func (db *DB) Create(ctx context.Context, userID string, entry *model.Entry) error {
	query, args, err := insertEntry(userID, entry).ToSql()
	if err != nil {
		return fmt.Errorf("sqlite: building insert: %w", err)
	}

	if _, err := db.conn.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("entry", entry.ID)
		}
		return fmt.Errorf("sqlite: inserting entry %s: %w", entry.ID, err)
	}
	return nil
}

// Upsert inserts the entry or replaces the stored one with the same ID.
func (db *DB) Upsert(ctx context.Context, userID string, entry *model.Entry) error {
	return db.upsert(ctx, db.conn, userID, entry)
}

// Update replaces an existing entry. Returns apperror.ErrNotFound when no
// entry with that ID belongs to userID.
func (db *DB) Update(ctx context.Context, userID string, entry *model.Entry) error {
	query, args, err := sq.Update("entries").
		Set("title", entry.Title).
		Set("category", string(entry.Category)).
		Set("content", entry.Content).
		Set("importance", entry.Importance).
		Set("timestamp", formatTime(entry.Timestamp)).
		Where(sq.Eq{"user_id": userID, "id": entry.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("sqlite: building update: %w", err)
	}

	res, err := db.conn.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("sqlite: updating entry %s: %w", entry.ID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: rows affected: %w", err)
	}
	if n == 0 {
		return apperror.NotFound("entry", entry.ID)
	}
	return nil
}

// Delete removes an entry. Returns apperror.ErrNotFound if it does not exist.
func (db *DB) Delete(ctx context.Context, userID, id string) error {
	query, args, err := sq.Delete("entries").
		Where(sq.Eq{"user_id": userID, "id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("sqlite: building delete: %w", err)
	}

	res, err := db.conn.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("sqlite: deleting entry %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: rows affected: %w", err)
	}
	if n == 0 {
		return apperror.NotFound("entry", id)
	}
	return nil
}

// WriteAll upserts every entry inside one transaction.
//
// TRANSACTIONS:
// A sync can touch dozens of rows. Either all of them land or none do, so a
// half-applied merge is never visible. Because the pool has exactly one
// connection, everything inside the transaction MUST go through tx; calling
// db.conn here would wait forever for the connection tx is holding.
func (db *DB) WriteAll(ctx context.Context, userID string, entries []model.Entry) error {
	if len(entries) == 0 {
		return nil
	}

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: begin: %w", err)
	}
	// Rollback after a successful Commit is a no-op that returns ErrTxDone.
	defer tx.Rollback()

	for i := range entries {
		if err := db.upsert(ctx, tx, userID, &entries[i]); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: commit: %w", err)
	}
	return nil
}

// execer is the subset of *sql.DB and *sql.Tx that upsert needs.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (db *DB) upsert(ctx context.Context, ex execer, userID string, entry *model.Entry) error {
	query, args, err := insertEntry(userID, entry).
		Suffix(`ON CONFLICT(user_id, id) DO UPDATE SET
			title = excluded.title,
			category = excluded.category,
			content = excluded.content,
			importance = excluded.importance,
			timestamp = excluded.timestamp`).
		ToSql()
	if err != nil {
		return fmt.Errorf("sqlite: building upsert: %w", err)
	}

	if _, err := ex.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("sqlite: upserting entry %s: %w", entry.ID, err)
	}
	return nil
}

func insertEntry(userID string, e *model.Entry) sq.InsertBuilder {
	return sq.Insert("entries").
		Columns("user_id", "id", "title", "category", "content", "importance", "timestamp").
		Values(userID, e.ID, e.Title, string(e.Category), e.Content, e.Importance, formatTime(e.Timestamp))
}

// isUniqueViolation matches SQLite's constraint error text.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
