package app

import (
	"context"
	"errors"
	"time"

	"journal/internal/domain"
)

type mockUserRepo struct {
	getByUsernameFn func(ctx context.Context, username string) (*domain.User, error)
	getByIDFn       func(ctx context.Context, id int64) (*domain.User, error)
	createFn        func(ctx context.Context, username, passwordHash string) (*domain.User, error)
	countFn         func(ctx context.Context) (int, error)
}

func (m *mockUserRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	if m.getByUsernameFn != nil {
		return m.getByUsernameFn(ctx, username)
	}
	return nil, errors.New("not found")
}

func (m *mockUserRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, errors.New("not found")
}

func (m *mockUserRepo) Create(ctx context.Context, username, passwordHash string) (*domain.User, error) {
	if m.createFn != nil {
		return m.createFn(ctx, username, passwordHash)
	}
	return &domain.User{ID: 1, Username: username, PasswordHash: passwordHash}, nil
}

func (m *mockUserRepo) Count(ctx context.Context) (int, error) {
	if m.countFn != nil {
		return m.countFn(ctx)
	}
	return 0, nil
}

type mockSessionRepo struct {
	createFn        func(ctx context.Context, userID int64, token, userAgent, ip string, expiresAt time.Time) error
	getByTokenFn    func(ctx context.Context, token string) (*domain.Session, error)
	deleteFn        func(ctx context.Context, token string) error
	deleteExpiredFn func(ctx context.Context) error
}

func (m *mockSessionRepo) Create(ctx context.Context, userID int64, token, userAgent, ip string, expiresAt time.Time) error {
	if m.createFn != nil {
		return m.createFn(ctx, userID, token, userAgent, ip, expiresAt)
	}
	return nil
}

func (m *mockSessionRepo) GetByToken(ctx context.Context, token string) (*domain.Session, error) {
	if m.getByTokenFn != nil {
		return m.getByTokenFn(ctx, token)
	}
	return nil, errors.New("not found")
}

func (m *mockSessionRepo) Delete(ctx context.Context, token string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, token)
	}
	return nil
}

func (m *mockSessionRepo) DeleteExpired(ctx context.Context) error {
	if m.deleteExpiredFn != nil {
		return m.deleteExpiredFn(ctx)
	}
	return nil
}

type mockEntryRepo struct {
	insertFn func(ctx context.Context, e *domain.Entry) (string, error)
	findFn   func(ctx context.Context, q domain.EntryQuery) ([]domain.Entry, error)
}

func (m *mockEntryRepo) InsertEntry(ctx context.Context, e *domain.Entry) (string, error) {
	if m.insertFn != nil {
		return m.insertFn(ctx, e)
	}
	return "entry-1", nil
}

func (m *mockEntryRepo) FindEntries(ctx context.Context, q domain.EntryQuery) ([]domain.Entry, error) {
	if m.findFn != nil {
		return m.findFn(ctx, q)
	}
	return nil, nil
}

type mockSummaryRepo struct {
	insertFn func(ctx context.Context, s *domain.WeeklySummary) (string, error)
	latestFn func(ctx context.Context, userID string, since time.Time) (*domain.WeeklySummary, error)
}

func (m *mockSummaryRepo) InsertSummary(ctx context.Context, s *domain.WeeklySummary) (string, error) {
	if m.insertFn != nil {
		return m.insertFn(ctx, s)
	}
	return "summary-1", nil
}

func (m *mockSummaryRepo) LatestSummary(ctx context.Context, userID string, since time.Time) (*domain.WeeklySummary, error) {
	if m.latestFn != nil {
		return m.latestFn(ctx, userID, since)
	}
	return nil, nil
}

type mockGenerator struct {
	generateFn func(ctx context.Context, system, prompt string) (string, error)
}

func (m *mockGenerator) Generate(ctx context.Context, system, prompt string) (string, error) {
	if m.generateFn != nil {
		return m.generateFn(ctx, system, prompt)
	}
	return "A good week.", nil
}

// sequenceRand returns the queued values in order, then zeros.
type sequenceRand struct {
	values []int
	calls  []int
}

func (r *sequenceRand) IntN(n int) int {
	r.calls = append(r.calls, n)
	if len(r.values) == 0 {
		return 0
	}
	v := r.values[0]
	r.values = r.values[1:]
	return v % n
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
