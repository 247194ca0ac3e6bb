package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"journal/internal/domain"
)

var _ domain.EntryRepository = (*DB)(nil)

const entryColumns = "id, user_id, text, created_at, sentiment, confidence, emotion, themes, summary, is_reflection, original_entry_id"

// InsertEntry stores e under a fresh id.
func (d *DB) InsertEntry(ctx context.Context, e *domain.Entry) (string, error) {
	id := uuid.NewString()
	themes := e.Themes
	if themes == nil {
		themes = []string{}
	}
	_, err := d.sql.ExecContext(ctx,
		"INSERT INTO entries("+entryColumns+") VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);",
		id, e.UserID, e.Text, e.CreatedAt.UTC(), e.Sentiment, e.Confidence, string(e.Emotion),
		pq.Array(themes), e.Summary, e.IsReflection, e.OriginalEntryID,
	)
	if err != nil {
		return "", err
	}
	return id, nil
}

// FindEntries returns the entries matching q.
func (d *DB) FindEntries(ctx context.Context, q domain.EntryQuery) ([]domain.Entry, error) {
	query, args := buildEntryQuery(q)
	rows, err := d.sql.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.Entry, 0)
	for rows.Next() {
		var (
			e       domain.Entry
			emotion string
			themes  []string
		)
		if err := rows.Scan(&e.ID, &e.UserID, &e.Text, &e.CreatedAt, &e.Sentiment, &e.Confidence,
			&emotion, pq.Array(&themes), &e.Summary, &e.IsReflection, &e.OriginalEntryID); err != nil {
			return nil, err
		}
		e.Emotion = domain.Emotion(emotion)
		if themes == nil {
			themes = []string{}
		}
		e.Themes = themes
		out = append(out, e)
	}
	return out, rows.Err()
}

// buildEntryQuery renders q as a parameterised SELECT.
func buildEntryQuery(q domain.EntryQuery) (string, []any) {
	var (
		where []string
		args  []any
	)
	add := func(cond string, arg any) {
		args = append(args, arg)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}

	add("user_id = $%d", q.UserID)
	if !q.From.IsZero() {
		add("created_at >= $%d", q.From.UTC())
	}
	if !q.To.IsZero() {
		add("created_at <= $%d", q.To.UTC())
	}
	if !q.Before.IsZero() {
		add("created_at < $%d", q.Before.UTC())
	}
	if q.OnlyReflections {
		where = append(where, "is_reflection")
	}
	if q.ExcludeReflections {
		where = append(where, "NOT is_reflection")
	}
	if q.OriginalEntryID != "" {
		add("original_entry_id = $%d", q.OriginalEntryID)
	}
	if len(q.ExcludeIDs) > 0 {
		add("NOT (id = ANY($%d))", pq.Array(q.ExcludeIDs))
	}

	var b strings.Builder
	b.WriteString("SELECT " + entryColumns + " FROM entries WHERE ")
	b.WriteString(strings.Join(where, " AND "))
	if q.Ascending {
		b.WriteString(" ORDER BY created_at ASC")
	} else {
		b.WriteString(" ORDER BY created_at DESC")
	}
	if q.Limit > 0 {
		args = append(args, q.Limit)
		fmt.Fprintf(&b, " LIMIT $%d", len(args))
	}
	if q.Skip > 0 {
		args = append(args, q.Skip)
		fmt.Fprintf(&b, " OFFSET $%d", len(args))
	}
	b.WriteString(";")
	return b.String(), args
}
