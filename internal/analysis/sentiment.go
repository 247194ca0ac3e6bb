// Package analysis derives sentiment, themes and a short summary from the
// text of a journal entry.
package analysis

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"journal/internal/domain"
)

// PolarityScorer estimates the polarity of text in [-1, 1].
type PolarityScorer interface {
	Polarity(text string) (float64, error)
}

const (
	lexiconWeight = 0.6
	patternWeight = 0.4
)

var (
	// ErrEmptyText is returned when there is nothing to analyze.
	ErrEmptyText = errors.New("text is empty")
	// ErrInvalidPolarity is returned when an estimator produces NaN.
	ErrInvalidPolarity = errors.New("polarity is not a number")
)

// Sentiment is the combined output of the two polarity estimators.
type Sentiment struct {
	Score      float64        `json:"sentiment"`
	Confidence float64        `json:"confidence"`
	Emotion    domain.Emotion `json:"emotion"`
}

// NeutralSentiment is used whenever scoring fails.
var NeutralSentiment = Sentiment{Score: 0, Confidence: 0, Emotion: domain.EmotionNeutral}

// Scorer combines a rule-based lexicon estimator with a statistical one.
type Scorer struct {
	lexicon PolarityScorer
	pattern PolarityScorer
}

// NewScorer returns a Scorer weighting lexicon by 0.6 and statistical by 0.4.
func NewScorer(lexicon, statistical PolarityScorer) *Scorer {
	return &Scorer{lexicon: lexicon, pattern: statistical}
}

// NewDefaultScorer returns a Scorer backed by the built-in analyzers.
func NewDefaultScorer() *Scorer {
	return NewScorer(NewLexiconAnalyzer(), NewPatternAnalyzer())
}

// Score returns the weighted sentiment of text. Confidence is 1 when both
// estimators agree and 0 when they are maximally opposed.
func (s *Scorer) Score(text string) (Sentiment, error) {
	if strings.TrimSpace(text) == "" {
		return NeutralSentiment, ErrEmptyText
	}
	l, err := polarity(s.lexicon, text)
	if err != nil {
		return NeutralSentiment, fmt.Errorf("lexicon polarity: %w", err)
	}
	p, err := polarity(s.pattern, text)
	if err != nil {
		return NeutralSentiment, fmt.Errorf("statistical polarity: %w", err)
	}

	score := lexiconWeight*l + patternWeight*p
	confidence := 1 - math.Abs(l-p)/2
	return Sentiment{
		Score:      round3(score),
		Confidence: round3(confidence),
		Emotion:    EmotionFor(score),
	}, nil
}

func polarity(ps PolarityScorer, text string) (float64, error) {
	v, err := ps.Polarity(text)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) {
		return 0, ErrInvalidPolarity
	}
	return clamp(v, -1, 1), nil
}

// EmotionFor maps a combined score onto the emotion scale. Thresholds are
// checked from the top; the first match wins.
func EmotionFor(score float64) domain.Emotion {
	switch {
	case score >= 0.5:
		return domain.EmotionVeryPositive
	case score >= 0.1:
		return domain.EmotionPositive
	case score > -0.1:
		return domain.EmotionNeutral
	case score > -0.5:
		return domain.EmotionNegative
	default:
		return domain.EmotionVeryNegative
	}
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
