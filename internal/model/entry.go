// Package model holds the journal's core types: Entry, Category and User.
// Entries serialize to JSON with RFC 3339 timestamps, and categories outside
// the known set are kept as sent rather than rejected.
package model

import "time"

// Category is the topic tag attached to an entry.
//
// WHY A NAMED STRING TYPE (not an int enum)?
// Categories travel over JSON and live in SQLite as TEXT. Clients written
// against older versions may send values we don't know about, and those must
// survive a round trip untouched. A string type keeps unknown values intact
// while still giving us typed constants for the ones we do know.
type Category string

const (
	CategoryHTMLCSS    Category = "html-css"
	CategoryJavaScript Category = "javascript"
	CategoryNode       Category = "node"
	CategoryExpress    Category = "express"
	CategoryMongoDB    Category = "mongodb"
	CategoryProject    Category = "project"
	CategoryOther      Category = "other"
)

// CategoryAll is the filter sentinel that matches every category.
const CategoryAll = "all"

// Categories lists the known categories in display order.
var Categories = []Category{
	CategoryHTMLCSS,
	CategoryJavaScript,
	CategoryNode,
	CategoryExpress,
	CategoryMongoDB,
	CategoryProject,
	CategoryOther,
}

// Known reports whether c is one of the predefined categories.
func (c Category) Known() bool {
	for _, k := range Categories {
		if c == k {
			return true
		}
	}
	return false
}

// DisplayName returns the human-readable label for a category.
// Unknown categories are shown verbatim.
func (c Category) DisplayName() string {
	switch c {
	case CategoryHTMLCSS:
		return "HTML & CSS"
	case CategoryJavaScript:
		return "JavaScript"
	case CategoryNode:
		return "Node.js"
	case CategoryExpress:
		return "Express"
	case CategoryMongoDB:
		return "MongoDB"
	case CategoryProject:
		return "Project"
	case CategoryOther:
		return "Other"
	default:
		return string(c)
	}
}

// Encouragement returns the short message shown after an entry is saved.
func (c Category) Encouragement() string {
	switch c {
	case CategoryHTMLCSS:
		return "Great job learning HTML & CSS! You're building the foundation of the web!"
	case CategoryJavaScript:
		return "JavaScript entry added! Keep mastering the language of the web!"
	case CategoryNode:
		return "Node.js progress logged! You're becoming a full-stack developer!"
	case CategoryExpress:
		return "Express.js concepts recorded! Your backend skills are growing!"
	case CategoryMongoDB:
		return "MongoDB knowledge tracked! Database skills are crucial - great work!"
	case CategoryProject:
		return "Project work recorded! Building real applications is the best way to learn!"
	default:
		return "New entry added! Keep up the great work!"
	}
}

// Importance bounds. Importance is the self-assessed understanding level.
const (
	MinImportance     = 1
	MaxImportance     = 5
	DefaultImportance = 3
)

// Entry is a single journal record.
//
// The JSON tags match the wire format clients already cache locally, so an
// offline client can post its cached array straight to /api/logs/sync.
// Timestamp marshals as RFC 3339 (an ISO-8601 instant) via time.Time's
// MarshalJSON.
//
// ID and Timestamp identify an entry across sync cycles: an edit keeps the ID
// and only moves the Timestamp forward when the editor wants the edit to win a
// later merge.
type Entry struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Category   Category  `json:"category"`
	Content    string    `json:"content"`
	Importance int       `json:"importance"`
	Timestamp  time.Time `json:"timestamp"`
}
