package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"journal/internal/domain"
	"journal/internal/metrics"
)

const (
	summaryWindowDays = 7
	summaryCooldown   = 24 * time.Hour
	maxTranscriptLen  = 3000
	minSummaryEntries = 2
)

const weeklySystemPrompt = "You are an empathetic but balanced journaling assistant. " +
	"You help people understand their week through their own words. Be warm and supportive " +
	"without being saccharine, honest about difficulties without dwelling on them, and never " +
	"offer medical or clinical advice."

// WeeklyStatus is the outcome of a weekly summary request.
type WeeklyStatus string

const (
	WeeklyUnavailable  WeeklyStatus = "unavailable"
	WeeklyNoEntries    WeeklyStatus = "no_entries"
	WeeklyInsufficient WeeklyStatus = "insufficient_entries"
	WeeklyCached       WeeklyStatus = "cached"
	WeeklyGenerated    WeeklyStatus = "generated"
)

// ErrGenerationFailed wraps any failure of the external generation call.
var ErrGenerationFailed = errors.New("weekly summary generation failed")

// WeeklyResult reports what a weekly summary request did. Summary is nil for
// every status except cached and generated.
type WeeklyResult struct {
	Status     WeeklyStatus          `json:"status"`
	Summary    *domain.WeeklySummary `json:"summary"`
	Message    string                `json:"message,omitempty"`
	EntryCount int                   `json:"entryCount"`
}

// WeeklySummaryService generates narrative summaries of a user's week.
// Generation is rate limited by a 24 hour cooldown per user unless dev mode
// is on, and concurrent requests for one user share a single generation.
type WeeklySummaryService struct {
	entries   domain.EntryRepository
	summaries domain.SummaryRepository
	gen       domain.NarrativeGenerator
	devMode   bool
	now       func() time.Time
	log       *zap.Logger
	flight    singleflight.Group
}

// NewWeeklySummaryService creates a WeeklySummaryService. A nil gen disables
// generation; requests then report WeeklyUnavailable.
func NewWeeklySummaryService(
	entries domain.EntryRepository,
	summaries domain.SummaryRepository,
	gen domain.NarrativeGenerator,
	devMode bool,
	log *zap.Logger,
) *WeeklySummaryService {
	if log == nil {
		log = zap.NewNop()
	}
	return &WeeklySummaryService{
		entries:   entries,
		summaries: summaries,
		gen:       gen,
		devMode:   devMode,
		now:       time.Now,
		log:       log,
	}
}

// WithClock overrides the service clock.
func (s *WeeklySummaryService) WithClock(now func() time.Time) *WeeklySummaryService {
	s.now = now
	return s
}

// Generate returns the user's weekly summary, generating a new one when
// none was produced in the last 24 hours. Only generation and storage
// failures are returned as errors.
func (s *WeeklySummaryService) Generate(ctx context.Context, userID string) (*WeeklyResult, error) {
	userID = NormalizeUserID(userID)
	if s.gen == nil {
		metrics.RecordWeekly(string(WeeklyUnavailable))
		return &WeeklyResult{
			Status:  WeeklyUnavailable,
			Message: "Weekly summaries are unavailable: no generation credential is configured",
		}, nil
	}

	// The shared generation outlives any single caller; the generator's own
	// timeout bounds it.
	flightCtx := context.WithoutCancel(ctx)
	v, err, shared := s.flight.Do(userID, func() (any, error) {
		return s.generate(flightCtx, userID)
	})
	if err != nil {
		metrics.RecordWeekly("failed")
		return nil, err
	}
	res := v.(*WeeklyResult)
	if shared {
		s.log.Debug("weekly summary request shared an in-flight generation", zap.String("user_id", userID))
	}
	metrics.RecordWeekly(string(res.Status))
	return res, nil
}

func (s *WeeklySummaryService) generate(ctx context.Context, userID string) (*WeeklyResult, error) {
	now := s.now().UTC()
	weekStart := now.AddDate(0, 0, -summaryWindowDays)

	entries, err := s.entries.FindEntries(ctx, domain.EntryQuery{
		UserID:    userID,
		From:      weekStart,
		To:        now,
		Ascending: true,
	})
	if err != nil {
		return nil, fmt.Errorf("load week entries: %w", err)
	}

	switch len(entries) {
	case 0:
		return &WeeklyResult{
			Status:  WeeklyNoEntries,
			Message: "No journal entries found for the past week",
		}, nil
	case 1:
		return &WeeklyResult{
			Status:     WeeklyInsufficient,
			Message:    fmt.Sprintf("Need at least %d entries in the past week to generate a summary", minSummaryEntries),
			EntryCount: 1,
		}, nil
	}

	if !s.devMode {
		recent, err := s.summaries.LatestSummary(ctx, userID, now.Add(-summaryCooldown))
		if err != nil {
			return nil, fmt.Errorf("look up recent summary: %w", err)
		}
		if recent != nil {
			return &WeeklyResult{Status: WeeklyCached, Summary: recent, EntryCount: recent.EntryCount}, nil
		}
	}

	avg := meanSentiment(entries)
	themes := CountThemes(entries).top(topThemeCount)
	prompt := BuildWeeklyPrompt(entries, avg, themes)

	start := time.Now()
	text, err := s.gen.Generate(ctx, weeklySystemPrompt, prompt)
	metrics.RecordGeneration(time.Since(start).Seconds())
	if err != nil {
		s.log.Error("weekly summary generation failed", zap.String("user_id", userID), zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrGenerationFailed, err)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("%w: empty response", ErrGenerationFailed)
	}

	summary := &domain.WeeklySummary{
		UserID:       userID,
		WeekStart:    weekStart,
		WeekEnd:      now,
		GeneratedAt:  now,
		Summary:      text,
		EntryCount:   len(entries),
		AvgSentiment: avg,
		TopThemes:    themes,
	}
	id, err := s.summaries.InsertSummary(ctx, summary)
	if err != nil {
		return nil, fmt.Errorf("store weekly summary: %w", err)
	}
	summary.ID = id
	s.log.Info("weekly summary generated",
		zap.String("user_id", userID),
		zap.Int("entry_count", summary.EntryCount),
		zap.Float64("avg_sentiment", avg),
	)
	return &WeeklyResult{Status: WeeklyGenerated, Summary: summary, EntryCount: summary.EntryCount}, nil
}

// Latest returns the user's most recent stored summary, or nil.
func (s *WeeklySummaryService) Latest(ctx context.Context, userID string) (*domain.WeeklySummary, error) {
	return s.summaries.LatestSummary(ctx, NormalizeUserID(userID), time.Time{})
}

// BuildWeeklyPrompt renders the generation prompt for a week of entries in
// chronological order.
func BuildWeeklyPrompt(entries []domain.Entry, avgSentiment float64, themes []string) string {
	themeList := "none detected"
	if len(themes) > 0 {
		themeList = strings.Join(themes, ", ")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Here are my journal entries from the past week (%d entries):\n\n", len(entries))
	b.WriteString(Transcript(entries))
	fmt.Fprintf(&b, "\n\nOverall mood this week: %s (average sentiment %.2f on a scale from -1 to 1).\n",
		SentimentDescriptor(avgSentiment), avgSentiment)
	fmt.Fprintf(&b, "Recurring themes: %s.\n\n", themeList)
	b.WriteString("Write a 3-4 paragraph reflection on my week. Acknowledge the highs and the lows " +
		"honestly, point out patterns you notice, and end with one gentle suggestion for the week ahead. " +
		"Speak to me directly in the second person.")
	return b.String()
}

// Transcript joins entry texts with blank lines, capped at 3000 characters.
func Transcript(entries []domain.Entry) string {
	texts := make([]string, len(entries))
	for i, e := range entries {
		texts[i] = e.Text
	}
	joined := strings.Join(texts, "\n\n")
	if utf8.RuneCountInString(joined) <= maxTranscriptLen {
		return joined
	}
	return string([]rune(joined)[:maxTranscriptLen]) + "..."
}

// SentimentDescriptor describes an average sentiment in words.
func SentimentDescriptor(avg float64) string {
	switch {
	case avg > 0.3:
		return "quite positive"
	case avg > 0.1:
		return "somewhat positive"
	case avg < -0.3:
		return "quite negative"
	case avg < -0.1:
		return "somewhat negative"
	default:
		return "neutral"
	}
}

func meanSentiment(entries []domain.Entry) float64 {
	if len(entries) == 0 {
		return 0
	}
	var sum float64
	for _, e := range entries {
		sum += e.Sentiment
	}
	return round3(sum / float64(len(entries)))
}
