package models

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// State is the pipeline position of an emoji request.
type State string

const (
	StatePendingGeneration        State = "pending_generation"
	StatePendingBackgroundRemoval State = "pending_background_removal"
	StateComplete                 State = "complete"
	StateFlagged                  State = "flagged"
)

// IsTerminal reports whether no further callback can move the record.
func (s State) IsTerminal() bool {
	return s == StateComplete || s == StateFlagged
}

func (s State) Valid() bool {
	switch s {
	case StatePendingGeneration, StatePendingBackgroundRemoval, StateComplete, StateFlagged:
		return true
	}
	return false
}

type Emoji struct {
	ID              uuid.UUID
	Prompt          string
	State           State
	OriginalURL     sql.NullString
	NoBackgroundURL sql.NullString
	SafetyRating    int
	IsFlagged       bool
	IsFeatured      bool
	Error           sql.NullString
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// EmojiUpdate is a conditional write: it only applies while the stored
// record is still in the expected state. Nil fields are left untouched.
type EmojiUpdate struct {
	State           State
	OriginalURL     *string
	NoBackgroundURL *string
	Error           *string
}

// Apply returns a copy of e with the update applied.
func (u EmojiUpdate) Apply(e Emoji, now time.Time) Emoji {
	e.State = u.State
	if u.OriginalURL != nil {
		e.OriginalURL = sql.NullString{String: *u.OriginalURL, Valid: true}
	}
	if u.NoBackgroundURL != nil {
		e.NoBackgroundURL = sql.NullString{String: *u.NoBackgroundURL, Valid: true}
	}
	if u.Error != nil {
		e.Error = sql.NullString{String: *u.Error, Valid: true}
	}
	e.IsFlagged = u.State == StateFlagged
	e.UpdatedAt = now
	return e
}

// ListOptions mirrors the query parameters accepted by the listing endpoints.
type ListOptions struct {
	Take           int
	Skip           int
	OrderBy        string // "createdAt" or "updatedAt"
	OrderDirection string // "asc" or "desc"
	FeaturedOnly   bool
}

const (
	DefaultListTake = 100
	MaxListTake     = 1000
)

// Normalize fills defaults and clamps out-of-range values.
func (o ListOptions) Normalize() ListOptions {
	if o.Take <= 0 {
		o.Take = DefaultListTake
	}
	if o.Take > MaxListTake {
		o.Take = MaxListTake
	}
	if o.Skip < 0 {
		o.Skip = 0
	}
	if o.OrderBy != "updatedAt" {
		o.OrderBy = "createdAt"
	}
	if o.OrderDirection != "asc" {
		o.OrderDirection = "desc"
	}
	return o
}
