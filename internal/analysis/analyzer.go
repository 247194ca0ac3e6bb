package analysis

import (
	"fmt"

	"go.uber.org/zap"

	"journal/internal/metrics"
)

// Analysis holds the fields derived from an entry's text.
type Analysis struct {
	Sentiment       Sentiment
	Themes          []string
	Summary         string
	IsReflection    bool
	OriginalEntryID string
}

// Analyzer composes sentiment scoring, theme extraction and summarization.
// A failing stage falls back to its default so analysis never blocks the
// creation of an entry.
type Analyzer struct {
	scorer    *Scorer
	themes    func(string) []string
	summarize func(string) string
	log       *zap.Logger
}

// NewAnalyzer returns an Analyzer using scorer and the built-in theme
// extractor and summarizer.
func NewAnalyzer(scorer *Scorer, log *zap.Logger) *Analyzer {
	if scorer == nil {
		scorer = NewDefaultScorer()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Analyzer{scorer: scorer, themes: ExtractThemes, summarize: Summarize, log: log}
}

// Analyze derives the analysis fields for text. It does not fail.
func (a *Analyzer) Analyze(text string, isReflection bool, originalEntryID string) Analysis {
	sent, err := guard(func() (Sentiment, error) { return a.scorer.Score(text) })
	if err != nil {
		a.fallback("sentiment", err)
		sent = NeutralSentiment
	}

	themes, err := guard(func() ([]string, error) { return a.themes(text), nil })
	if err != nil || themes == nil {
		if err != nil {
			a.fallback("themes", err)
		}
		themes = []string{}
	}

	summary, err := guard(func() (string, error) { return a.summarize(text), nil })
	if err != nil {
		a.fallback("summary", err)
		summary = truncate(text, fallbackLength)
	}

	return Analysis{
		Sentiment:       sent,
		Themes:          themes,
		Summary:         summary,
		IsReflection:    isReflection,
		OriginalEntryID: originalEntryID,
	}
}

func (a *Analyzer) fallback(stage string, err error) {
	metrics.RecordFallback(stage)
	a.log.Warn("analysis stage fell back to default", zap.String("stage", stage), zap.Error(err))
}

// guard runs fn, turning a panic into an error.
func guard[T any](fn func() (T, error)) (v T, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return fn()
}
