// Package model defines the data structures used throughout the application.
package model

import "time"

// User represents a registered account.
//
// Two identity sources feed the same table:
//   - email + password (bcrypt hash in PasswordHash)
//   - GitHub OAuth (GitHubID set, PasswordHash empty)
//
// WHY GitHubID int64?
// GitHub user IDs are integers (e.g. 1234567). Using int64 avoids overflow
// for large GitHub account numbers. Zero means "not linked to GitHub".
//
// PasswordHash is tagged json:"-" so it can never leak through an API response,
// even if a handler encodes the whole struct.
type User struct {
	ID           string    `json:"id"        db:"id"`
	Email        string    `json:"email"     db:"email"`
	Name         string    `json:"name"      db:"name"`
	PasswordHash string    `json:"-"         db:"password_hash"`
	GitHubID     int64     `json:"githubId,omitempty" db:"github_id"`
	AvatarURL    string    `json:"avatarUrl,omitempty" db:"avatar_url"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`
}
