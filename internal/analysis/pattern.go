package analysis

import "strings"

// Intensifiers multiply the polarity of the next opinion word.
var patternIntensity = map[string]float64{
	"very": 1.3, "really": 1.3, "so": 1.3, "extremely": 1.5, "incredibly": 1.5,
	"super": 1.3, "totally": 1.4, "absolutely": 1.5, "quite": 1.1, "too": 1.2,
	"truly": 1.3, "slightly": 0.5, "somewhat": 0.7, "barely": 0.5, "rather": 0.9,
	"fairly": 0.9, "pretty": 1.1,
}

const patternNegationFactor = -0.5

// PatternAnalyzer averages the polarity of recognized opinion words. An
// intensifier scales the word after it and a preceding negation flips and
// halves it.
type PatternAnalyzer struct {
	polarity  map[string]float64
	intensity map[string]float64
}

// NewPatternAnalyzer returns an analyzer whose opinion words are the VADER
// lexicon rescaled to [-1, 1].
func NewPatternAnalyzer() *PatternAnalyzer {
	return NewPatternAnalyzerWith(vaderPolarities())
}

// NewPatternAnalyzerWith returns an analyzer over polarity, a map of lower
// case words to polarities in [-1, 1].
func NewPatternAnalyzerWith(polarity map[string]float64) *PatternAnalyzer {
	return &PatternAnalyzer{polarity: polarity, intensity: patternIntensity}
}

// Polarity implements PolarityScorer. Text without opinion words scores 0.
func (a *PatternAnalyzer) Polarity(text string) (float64, error) {
	words := tokenize(text)
	var (
		sum      float64
		assessed int
	)
	for i, w := range words {
		lw := strings.ToLower(w)
		if _, ok := a.intensity[lw]; ok {
			continue
		}
		if isNegation(lw) {
			continue
		}
		p, ok := a.polarity[lw]
		if !ok {
			continue
		}
		if i > 0 {
			if m, ok := a.intensity[strings.ToLower(words[i-1])]; ok {
				p *= m
				if i > 1 && isNegation(words[i-2]) {
					p *= patternNegationFactor
				}
			} else if isNegation(words[i-1]) {
				p *= patternNegationFactor
			}
		}
		sum += clamp(p, -1, 1)
		assessed++
	}
	if assessed == 0 {
		return 0, nil
	}
	return clamp(sum/float64(assessed), -1, 1), nil
}
