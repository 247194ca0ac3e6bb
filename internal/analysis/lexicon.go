package analysis

import (
	"sync"

	"github.com/jonreiter/govader"
)

// vaderMaxValence is the largest absolute word valence in the VADER lexicon.
const vaderMaxValence = 4

var sharedVader = sync.OnceValue(govader.NewSentimentIntensityAnalyzer)

// LexiconAnalyzer is the rule-based VADER estimator. It applies boosters,
// negation, contrast and caps emphasis and returns the compound score.
type LexiconAnalyzer struct {
	vader *govader.SentimentIntensityAnalyzer
}

// NewLexiconAnalyzer returns an analyzer over the VADER lexicon. The lexicon
// is parsed once per process.
func NewLexiconAnalyzer() *LexiconAnalyzer {
	return &LexiconAnalyzer{vader: sharedVader()}
}

// Polarity implements PolarityScorer.
func (a *LexiconAnalyzer) Polarity(text string) (float64, error) {
	return a.vader.PolarityScores(text).Compound, nil
}

// vaderPolarities rescales the VADER word valences from -4..4 to -1..1.
var vaderPolarities = sync.OnceValue(func() map[string]float64 {
	lex := sharedVader().Lexicon
	out := make(map[string]float64, len(lex))
	for w, v := range lex {
		out[w] = clamp(v/vaderMaxValence, -1, 1)
	}
	return out
})
