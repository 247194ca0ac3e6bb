// Package app holds the application services and business logic.
package app

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"go.uber.org/zap"

	"journal/internal/analysis"
	"journal/internal/domain"
	"journal/internal/metrics"
)

const (
	defaultListLimit = 50
	maxListLimit     = 100
)

// ErrTextRequired indicates an entry without any text.
var ErrTextRequired = errors.New("text is required")

// NewEntry is the validated input for creating an entry.
type NewEntry struct {
	UserID          string
	Text            string
	IsReflection    bool
	OriginalEntryID string
}

// EntryService encapsulates journaling use cases.
type EntryService struct {
	repo     domain.EntryRepository
	analyzer *analysis.Analyzer
	now      func() time.Time
	log      *zap.Logger
}

// NewEntryService creates an EntryService backed by the given repository.
func NewEntryService(repo domain.EntryRepository, analyzer *analysis.Analyzer, log *zap.Logger) *EntryService {
	if log == nil {
		log = zap.NewNop()
	}
	if analyzer == nil {
		analyzer = analysis.NewAnalyzer(nil, log)
	}
	return &EntryService{repo: repo, analyzer: analyzer, now: time.Now, log: log}
}

// WithClock overrides the service clock.
func (s *EntryService) WithClock(now func() time.Time) *EntryService {
	s.now = now
	return s
}

// Create analyzes and stores a new entry. Analysis cannot fail; only the
// store can.
func (s *EntryService) Create(ctx context.Context, in NewEntry) (*domain.Entry, error) {
	text := strings.TrimSpace(in.Text)
	if text == "" {
		return nil, ErrTextRequired
	}

	a := s.analyzer.Analyze(text, in.IsReflection, in.OriginalEntryID)
	e := &domain.Entry{
		UserID:          NormalizeUserID(in.UserID),
		Text:            text,
		CreatedAt:       s.now().UTC(),
		Sentiment:       a.Sentiment.Score,
		Confidence:      a.Sentiment.Confidence,
		Emotion:         a.Sentiment.Emotion,
		Themes:          a.Themes,
		Summary:         a.Summary,
		IsReflection:    a.IsReflection,
		OriginalEntryID: a.OriginalEntryID,
	}

	id, err := s.repo.InsertEntry(ctx, e)
	if err != nil {
		return nil, fmt.Errorf("insert entry: %w", err)
	}
	e.ID = id
	metrics.EntriesCreated.Inc()
	s.log.Debug("entry created",
		zap.String("user_id", e.UserID),
		zap.String("entry_id", id),
		zap.String("emotion", string(e.Emotion)),
		zap.Strings("themes", e.Themes),
	)
	return e, nil
}

// ListRecent returns a page of the user's entries, newest first.
func (s *EntryService) ListRecent(ctx context.Context, userID string, skip, limit int) ([]domain.Entry, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	if skip < 0 {
		skip = 0
	}
	return s.repo.FindEntries(ctx, domain.EntryQuery{
		UserID: NormalizeUserID(userID),
		Skip:   skip,
		Limit:  limit,
	})
}

// NormalizeUserID trims id and substitutes the default user when empty.
func NormalizeUserID(id string) string {
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.DefaultUserID
	}
	return id
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
