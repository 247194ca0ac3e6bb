package analysis

import (
	"strings"
	"unicode"
)

var negations = map[string]struct{}{
	"not": {}, "no": {}, "never": {}, "none": {}, "nobody": {}, "nothing": {},
	"neither": {}, "nor": {}, "nowhere": {}, "cannot": {}, "without": {},
	"hardly": {}, "rarely": {}, "seldom": {},
}

// tokenize splits text into words, dropping surrounding punctuation but
// keeping inner apostrophes. Case is preserved.
func tokenize(text string) []string {
	text = strings.ReplaceAll(text, "’", "'")
	fields := strings.Fields(text)
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		w := strings.TrimFunc(f, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		})
		if len(w) < 2 {
			continue
		}
		out = append(out, w)
	}
	return out
}

func isNegation(word string) bool {
	w := strings.ToLower(word)
	if _, ok := negations[w]; ok {
		return true
	}
	return strings.HasSuffix(w, "n't")
}
