package app

import (
	"context"
	"math"
	"sort"
	"time"

	"journal/internal/domain"
)

// Insight periods.
const (
	PeriodWeekly  = "weekly"
	PeriodMonthly = "monthly"
)

// Sentiment trend labels.
const (
	TrendImproving = "improving"
	TrendStable    = "stable"
)

const topThemeCount = 3

// InsightsService aggregates a user's entries over a trailing window.
type InsightsService struct {
	repo domain.EntryRepository
	now  func() time.Time
}

// NewInsightsService creates an InsightsService backed by the given repository.
func NewInsightsService(repo domain.EntryRepository) *InsightsService {
	return &InsightsService{repo: repo, now: time.Now}
}

// WithClock overrides the service clock.
func (s *InsightsService) WithClock(now func() time.Time) *InsightsService {
	s.now = now
	return s
}

// Insights summarizes the entries of one window.
type Insights struct {
	Period           string         `json:"period"`
	EntryCount       int            `json:"entryCount"`
	AvgSentiment     float64        `json:"avgSentiment"`
	TopThemes        []string       `json:"topThemes"`
	ThemeCounts      map[string]int `json:"themeCounts"`
	SentimentTrend   string         `json:"sentimentTrend"`
	WritingFrequency float64        `json:"writingFrequency"`
	EmotionalRange   float64        `json:"emotionalRange"`
}

// PeriodDays maps a period name to its length in days. Unknown names fall
// back to weekly.
func PeriodDays(period string) (string, int) {
	if period == PeriodMonthly {
		return PeriodMonthly, 30
	}
	return PeriodWeekly, 7
}

// Get computes insights over [now-period, now]. An empty window yields a
// zero-valued result rather than an error.
func (s *InsightsService) Get(ctx context.Context, userID, period string) (*Insights, error) {
	period, days := PeriodDays(period)
	now := s.now().UTC()

	entries, err := s.repo.FindEntries(ctx, domain.EntryQuery{
		UserID: NormalizeUserID(userID),
		From:   now.AddDate(0, 0, -days),
		To:     now,
	})
	if err != nil {
		return nil, err
	}
	return aggregate(period, days, entries), nil
}

// aggregate relies on entries being in the order the store returned them;
// the trend compares the first and last of that order.
func aggregate(period string, days int, entries []domain.Entry) *Insights {
	out := &Insights{
		Period:         period,
		TopThemes:      []string{},
		ThemeCounts:    map[string]int{},
		SentimentTrend: TrendStable,
	}
	if len(entries) == 0 {
		return out
	}

	var sum float64
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, e := range entries {
		sum += e.Sentiment
		lo = math.Min(lo, e.Sentiment)
		hi = math.Max(hi, e.Sentiment)
	}

	freq := CountThemes(entries)
	out.EntryCount = len(entries)
	out.AvgSentiment = round3(sum / float64(len(entries)))
	out.ThemeCounts = freq.counts
	out.TopThemes = freq.top(topThemeCount)
	if len(entries) >= 2 && entries[0].Sentiment > entries[len(entries)-1].Sentiment {
		out.SentimentTrend = TrendImproving
	}
	out.WritingFrequency = float64(len(entries)) / float64(days)
	out.EmotionalRange = round3(hi - lo)
	return out
}

// ThemeFrequency counts themes while remembering first-seen order.
type ThemeFrequency struct {
	order  []string
	counts map[string]int
}

// CountThemes flattens the themes of entries in the order given.
func CountThemes(entries []domain.Entry) ThemeFrequency {
	f := ThemeFrequency{counts: map[string]int{}}
	for _, e := range entries {
		for _, t := range e.Themes {
			if _, ok := f.counts[t]; !ok {
				f.order = append(f.order, t)
			}
			f.counts[t]++
		}
	}
	return f
}

// ranked returns themes by descending count, ties in first-seen order.
func (f ThemeFrequency) ranked() []string {
	out := make([]string, len(f.order))
	copy(out, f.order)
	sort.SliceStable(out, func(i, j int) bool {
		return f.counts[out[i]] > f.counts[out[j]]
	})
	return out
}

func (f ThemeFrequency) top(n int) []string {
	r := f.ranked()
	if len(r) > n {
		r = r[:n]
	}
	return r
}
