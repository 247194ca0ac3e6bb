package adapthttp

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"

	"journal/internal/app"
)

const (
	minTextLength   = 3
	maxTextLength   = 10000
	maxUserIDLength = 100
)

var (
	errTextLength   = fmt.Errorf("text must be between %d and %d characters", minTextLength, maxTextLength)
	errUserIDLength = fmt.Errorf("userId must be at most %d characters", maxUserIDLength)
)

// Sanitizer strips markup from user supplied text.
type Sanitizer struct {
	policy *bluemonday.Policy
}

// NewSanitizer creates a Sanitizer that removes every HTML element.
func NewSanitizer() *Sanitizer {
	return &Sanitizer{policy: bluemonday.StrictPolicy()}
}

// textEntities are the escapes the policy adds to plain text that cannot form
// markup. Angle brackets stay escaped.
var textEntities = strings.NewReplacer(
	"&#39;", "'",
	"&#34;", `"`,
	"&quot;", `"`,
	"&amp;", "&",
)

// Text removes markup from in and trims it. Quotes and ampersands are
// decoded so stored text reads as the user wrote it.
func (s *Sanitizer) Text(in string) string {
	return strings.TrimSpace(textEntities.Replace(s.policy.Sanitize(in)))
}

// EntryText sanitizes raw entry text and enforces its length bounds.
func (s *Sanitizer) EntryText(raw string) (string, error) {
	text := s.Text(raw)
	if text == "" {
		return "", app.ErrTextRequired
	}
	if n := utf8.RuneCountInString(text); n < minTextLength || n > maxTextLength {
		return "", errTextLength
	}
	return text, nil
}

// UserID trims raw and enforces its length bound. Empty is allowed.
func (s *Sanitizer) UserID(raw string) (string, error) {
	id := strings.TrimSpace(s.Text(raw))
	if utf8.RuneCountInString(id) > maxUserIDLength {
		return "", errUserIDLength
	}
	return id, nil
}
