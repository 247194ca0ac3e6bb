package analysis

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"
)

const (
	minSegmentLength = 10
	fallbackLength   = 100
	edgeWeight       = 1.2
	truncationMarker = "..."
)

var sentenceBoundary = regexp.MustCompile(`[.!?]+`)

// Summarize returns a short extractive excerpt of text.
//
// Segments of more than ten characters are considered. With none, the first
// hundred characters are returned; with one, that segment; with two or three,
// the first two; with more, the two longest, where the first and last
// segments get a 1.2 bonus, joined in ranking order.
func Summarize(text string) string {
	segments := qualifyingSegments(text)

	switch n := len(segments); {
	case n == 0:
		return truncate(text, fallbackLength)
	case n == 1:
		return segments[0]
	case n <= 3:
		return segments[0] + ". " + segments[1] + "."
	}

	type ranked struct {
		text  string
		score float64
	}
	ranks := make([]ranked, len(segments))
	last := len(segments) - 1
	for i, s := range segments {
		score := float64(utf8.RuneCountInString(s))
		if i == 0 || i == last {
			score *= edgeWeight
		}
		ranks[i] = ranked{text: s, score: score}
	}
	sort.SliceStable(ranks, func(i, j int) bool {
		return ranks[i].score > ranks[j].score
	})
	return ranks[0].text + ". " + ranks[1].text + "."
}

func qualifyingSegments(text string) []string {
	parts := sentenceBoundary.Split(text, -1)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if utf8.RuneCountInString(p) > minSegmentLength {
			out = append(out, p)
		}
	}
	return out
}

// truncate returns the first n characters of text, marking any cut.
func truncate(text string, n int) string {
	if utf8.RuneCountInString(text) <= n {
		return text
	}
	runes := []rune(text)
	return string(runes[:n]) + truncationMarker
}
