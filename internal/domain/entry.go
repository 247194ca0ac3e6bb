package domain

import (
	"context"
	"time"
)

// DefaultUserID scopes entries submitted without an explicit user.
const DefaultUserID = "default_user"

// Emotion is the coarse ordinal label derived from a sentiment score.
type Emotion string

const (
	EmotionVeryPositive Emotion = "very_positive"
	EmotionPositive     Emotion = "positive"
	EmotionNeutral      Emotion = "neutral"
	EmotionNegative     Emotion = "negative"
	EmotionVeryNegative Emotion = "very_negative"
)

// Entry is a single journal submission together with its derived analysis.
// Entries are written once and never updated.
type Entry struct {
	ID              string    `json:"_id"`
	UserID          string    `json:"userId"`
	Text            string    `json:"text"`
	CreatedAt       time.Time `json:"createdAt"`
	Sentiment       float64   `json:"sentiment"`
	Confidence      float64   `json:"confidence"`
	Emotion         Emotion   `json:"emotion"`
	Themes          []string  `json:"themes"`
	Summary         string    `json:"summary"`
	IsReflection    bool      `json:"isReflection"`
	OriginalEntryID string    `json:"originalEntryId,omitempty"`
}

// EntryQuery selects entries for a single user. Zero-valued time bounds are
// unbounded and a zero Limit returns every match. Results are ordered by
// CreatedAt descending unless Ascending is set.
type EntryQuery struct {
	UserID string

	// From and To bound CreatedAt inclusively.
	From time.Time
	To   time.Time
	// Before keeps only entries created strictly before the instant.
	Before time.Time

	OnlyReflections    bool
	ExcludeReflections bool
	OriginalEntryID    string
	ExcludeIDs         []string

	Skip      int
	Limit     int
	Ascending bool
}

// Matches reports whether e satisfies every filter in q. Ordering and paging
// are not considered.
func (q EntryQuery) Matches(e Entry) bool {
	if e.UserID != q.UserID {
		return false
	}
	if !q.From.IsZero() && e.CreatedAt.Before(q.From) {
		return false
	}
	if !q.To.IsZero() && e.CreatedAt.After(q.To) {
		return false
	}
	if !q.Before.IsZero() && !e.CreatedAt.Before(q.Before) {
		return false
	}
	if q.OnlyReflections && !e.IsReflection {
		return false
	}
	if q.ExcludeReflections && e.IsReflection {
		return false
	}
	if q.OriginalEntryID != "" && e.OriginalEntryID != q.OriginalEntryID {
		return false
	}
	for _, id := range q.ExcludeIDs {
		if id == e.ID {
			return false
		}
	}
	return true
}

// EntryRepository is the port for entry persistence.
type EntryRepository interface {
	// InsertEntry stores e and returns the identifier assigned to it.
	InsertEntry(ctx context.Context, e *Entry) (string, error)
	FindEntries(ctx context.Context, q EntryQuery) ([]Entry, error)
}
