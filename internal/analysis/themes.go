package analysis

import (
	"sort"
	"strings"
)

// MaxThemes caps the number of themes attached to an entry.
const MaxThemes = 3

// ThemeKeywords is one row of the theme table.
type ThemeKeywords struct {
	Theme    string
	Keywords []string
}

// themeTable is ordered; the order breaks score ties.
var themeTable = []ThemeKeywords{
	{"work", []string{"work", "job", "office", "meeting", "boss", "project", "deadline", "career", "colleague", "coworker", "client", "promotion", "email"}},
	{"relationships", []string{"friend", "partner", "relationship", "date", "dating", "people", "social", "conversation", "together", "party"}},
	{"family", []string{"family", "mom", "dad", "mother", "father", "sister", "brother", "parent", "kids", "children", "son", "daughter", "grandma", "grandpa"}},
	{"health", []string{"health", "exercise", "workout", "gym", "run", "sleep", "doctor", "diet", "yoga", "walk", "tired", "sick", "energy"}},
	{"stress", []string{"stress", "anxious", "anxiety", "worried", "worry", "overwhelm", "pressure", "panic", "nervous", "tense"}},
	{"growth", []string{"learn", "growth", "goal", "improve", "progress", "challenge", "habit", "practice", "read", "course", "skill"}},
	{"gratitude", []string{"grateful", "thankful", "gratitude", "appreciate", "blessed", "thank", "lucky"}},
	{"creativity", []string{"create", "creative", "write", "writing", "paint", "draw", "music", "art", "design", "idea", "song", "guitar"}},
	{"leisure", []string{"movie", "game", "travel", "vacation", "weekend", "relax", "hobby", "trip", "beach", "book", "show", "fun"}},
	{"love", []string{"love", "romance", "romantic", "crush", "kiss", "heart", "affection", "boyfriend", "girlfriend", "husband", "wife"}},
}

// ThemeTable returns a copy of the fixed theme table in iteration order.
func ThemeTable() []ThemeKeywords {
	out := make([]ThemeKeywords, len(themeTable))
	copy(out, themeTable)
	return out
}

// ExtractThemes scores text against the theme table by counting keyword
// occurrences as substrings, and returns at most three themes ordered by
// descending score. It never returns nil.
func ExtractThemes(text string) []string {
	lower := strings.ToLower(text)

	type scored struct {
		theme string
		score int
	}
	candidates := make([]scored, 0, len(themeTable))
	for _, row := range themeTable {
		score := 0
		for _, kw := range row.Keywords {
			score += strings.Count(lower, kw)
		}
		if score > 0 {
			candidates = append(candidates, scored{theme: row.Theme, score: score})
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})

	out := make([]string, 0, MaxThemes)
	for i := 0; i < len(candidates) && i < MaxThemes; i++ {
		out = append(out, candidates[i].theme)
	}
	return out
}
