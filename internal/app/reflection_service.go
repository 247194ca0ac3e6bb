package app

import (
	"context"
	"math/rand/v2"
	"time"

	"journal/internal/domain"
)

const (
	// MinReflectionAge is how old an entry must be before it is offered for
	// reflection. Kept short so a session can reflect on its own entries;
	// production deployments should raise it to at least a day.
	MinReflectionAge = time.Hour

	reflectionPoolSize = 20
	noReflectionYet    = "No entries old enough for reflection yet"
)

var reflectionPrompts = []string{
	"How do you feel about this now?",
	"What would you tell yourself back then?",
	"What has changed since you wrote this?",
	"What did this moment teach you?",
	"Is this still on your mind? Why or why not?",
	"What are you grateful for when you read this?",
	"How did things turn out?",
	"What would you do differently today?",
	"What patterns do you notice between then and now?",
	"What part of this entry surprises you most?",
}

// RandSource picks uniformly from [0, n).
type RandSource interface {
	IntN(n int) int
}

type globalRand struct{}

func (globalRand) IntN(n int) int { return rand.IntN(n) }

// Reflection is a past entry offered for re-reading, or a message when
// nothing qualifies.
type Reflection struct {
	Entry   *domain.Entry `json:"entry"`
	Prompt  string        `json:"prompt,omitempty"`
	DaysAgo *int          `json:"daysAgo,omitempty"`
	Message string        `json:"message,omitempty"`
}

// ReflectionService selects past entries to reflect on.
type ReflectionService struct {
	repo domain.EntryRepository
	rnd  RandSource
	now  func() time.Time
}

// NewReflectionService creates a ReflectionService. A nil rnd uses the
// process-wide random source.
func NewReflectionService(repo domain.EntryRepository, rnd RandSource) *ReflectionService {
	if rnd == nil {
		rnd = globalRand{}
	}
	return &ReflectionService{repo: repo, rnd: rnd, now: time.Now}
}

// WithClock overrides the service clock.
func (s *ReflectionService) WithClock(now func() time.Time) *ReflectionService {
	s.now = now
	return s
}

// Pick chooses uniformly among up to 20 of the user's non-reflection entries
// older than MinReflectionAge, skipping ids in exclude, and pairs it with a
// random prompt.
func (s *ReflectionService) Pick(ctx context.Context, userID string, exclude []string) (*Reflection, error) {
	now := s.now().UTC()
	cutoff := now.Add(-MinReflectionAge)

	candidates, err := s.repo.FindEntries(ctx, domain.EntryQuery{
		UserID:             NormalizeUserID(userID),
		Before:             cutoff,
		ExcludeReflections: true,
		ExcludeIDs:         exclude,
		Limit:              reflectionPoolSize,
	})
	if err != nil {
		return nil, err
	}

	excluded := make(map[string]struct{}, len(exclude))
	for _, id := range exclude {
		excluded[id] = struct{}{}
	}
	pool := candidates[:0]
	for _, e := range candidates {
		if _, skip := excluded[e.ID]; skip || e.IsReflection || !e.CreatedAt.Before(cutoff) {
			continue
		}
		pool = append(pool, e)
	}
	if len(pool) == 0 {
		return &Reflection{Message: noReflectionYet}, nil
	}

	chosen := pool[s.rnd.IntN(len(pool))]
	daysAgo := int(now.Sub(chosen.CreatedAt).Hours() / 24)
	return &Reflection{
		Entry:   &chosen,
		Prompt:  reflectionPrompts[s.rnd.IntN(len(reflectionPrompts))],
		DaysAgo: &daysAgo,
	}, nil
}

// ListReflections returns the user's reflection entries, newest first,
// optionally narrowed to those written about originalEntryID.
func (s *ReflectionService) ListReflections(ctx context.Context, userID, originalEntryID string) ([]domain.Entry, error) {
	return s.repo.FindEntries(ctx, domain.EntryQuery{
		UserID:          NormalizeUserID(userID),
		OnlyReflections: true,
		OriginalEntryID: originalEntryID,
	})
}

// ReflectionPrompts returns a copy of the fixed prompt list.
func ReflectionPrompts() []string {
	out := make([]string, len(reflectionPrompts))
	copy(out, reflectionPrompts)
	return out
}
