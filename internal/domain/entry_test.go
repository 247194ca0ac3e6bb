package domain_test

import (
	"testing"
	"time"

	"journal/internal/domain"
)

func TestEntryQueryMatches(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	base := domain.Entry{ID: "a", UserID: "u1", CreatedAt: now}

	tests := []struct {
		name  string
		q     domain.EntryQuery
		entry domain.Entry
		want  bool
	}{
		{"same user", domain.EntryQuery{UserID: "u1"}, base, true},
		{"other user", domain.EntryQuery{UserID: "u2"}, base, false},
		{"from inclusive", domain.EntryQuery{UserID: "u1", From: now}, base, true},
		{"to inclusive", domain.EntryQuery{UserID: "u1", To: now}, base, true},
		{"before window", domain.EntryQuery{UserID: "u1", From: now.Add(time.Second)}, base, false},
		{"before is exclusive", domain.EntryQuery{UserID: "u1", Before: now}, base, false},
		{"before later", domain.EntryQuery{UserID: "u1", Before: now.Add(time.Hour)}, base, true},
		{"only reflections", domain.EntryQuery{UserID: "u1", OnlyReflections: true}, base, false},
		{
			"exclude reflections",
			domain.EntryQuery{UserID: "u1", ExcludeReflections: true},
			domain.Entry{ID: "b", UserID: "u1", IsReflection: true, CreatedAt: now},
			false,
		},
		{
			"original entry",
			domain.EntryQuery{UserID: "u1", OriginalEntryID: "x"},
			domain.Entry{ID: "b", UserID: "u1", OriginalEntryID: "x", CreatedAt: now},
			true,
		},
		{"excluded id", domain.EntryQuery{UserID: "u1", ExcludeIDs: []string{"z", "a"}}, base, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.q.Matches(tc.entry); got != tc.want {
				t.Errorf("Matches() = %v; want %v", got, tc.want)
			}
		})
	}
}
