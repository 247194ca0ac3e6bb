package domain

import (
	"context"
	"time"
)

// WeeklySummary is a generated narrative over a 7-day window, together with
// the statistics it was generated from.
type WeeklySummary struct {
	ID           string    `json:"_id"`
	UserID       string    `json:"userId"`
	WeekStart    time.Time `json:"weekStart"`
	WeekEnd      time.Time `json:"weekEnd"`
	GeneratedAt  time.Time `json:"generatedAt"`
	Summary      string    `json:"summary"`
	EntryCount   int       `json:"entryCount"`
	AvgSentiment float64   `json:"avgSentiment"`
	TopThemes    []string  `json:"topThemes"`
}

// SummaryRepository is the port for weekly summary persistence.
type SummaryRepository interface {
	InsertSummary(ctx context.Context, s *WeeklySummary) (string, error)
	// LatestSummary returns the most recent summary generated at or after
	// since, or nil when there is none. A zero since matches any summary.
	LatestSummary(ctx context.Context, userID string, since time.Time) (*WeeklySummary, error)
}

// NarrativeGenerator produces free text from a system instruction and a
// user prompt, typically by calling an external language model.
type NarrativeGenerator interface {
	Generate(ctx context.Context, system, prompt string) (string, error)
}
