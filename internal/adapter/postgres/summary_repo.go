package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"journal/internal/domain"
)

var _ domain.SummaryRepository = (*DB)(nil)

// InsertSummary stores s under a fresh id.
func (d *DB) InsertSummary(ctx context.Context, s *domain.WeeklySummary) (string, error) {
	id := uuid.NewString()
	themes := s.TopThemes
	if themes == nil {
		themes = []string{}
	}
	_, err := d.sql.ExecContext(ctx,
		`INSERT INTO weekly_summaries(id, user_id, week_start, week_end, generated_at, summary, entry_count, avg_sentiment, top_themes)
		VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9);`,
		id, s.UserID, s.WeekStart.UTC(), s.WeekEnd.UTC(), s.GeneratedAt.UTC(), s.Summary,
		s.EntryCount, s.AvgSentiment, pq.Array(themes),
	)
	if err != nil {
		return "", err
	}
	return id, nil
}

// LatestSummary returns the newest summary for userID generated at or after
// since. A zero since matches any summary.
func (d *DB) LatestSummary(ctx context.Context, userID string, since time.Time) (*domain.WeeklySummary, error) {
	var s domain.WeeklySummary
	var themes []string
	err := d.sql.QueryRowContext(ctx,
		`SELECT id, user_id, week_start, week_end, generated_at, summary, entry_count, avg_sentiment, top_themes
		FROM weekly_summaries WHERE user_id = $1 AND generated_at >= $2
		ORDER BY generated_at DESC LIMIT 1;`,
		userID, since.UTC(),
	).Scan(&s.ID, &s.UserID, &s.WeekStart, &s.WeekEnd, &s.GeneratedAt, &s.Summary,
		&s.EntryCount, &s.AvgSentiment, pq.Array(&themes))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if themes == nil {
		themes = []string{}
	}
	s.TopThemes = themes
	return &s, nil
}
