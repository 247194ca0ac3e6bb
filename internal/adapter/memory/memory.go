// Package memory implements an in-memory repository for development and testing.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"journal/internal/domain"
)

// ErrUserExists is returned when creating a user whose name is taken.
var ErrUserExists = domain.ErrUsernameTaken

// DB implements an in-memory database storage.
type DB struct {
	mu        sync.Mutex
	entries   []domain.Entry
	summaries []domain.WeeklySummary
	users     []*domain.User
	sessions  map[string]*domain.Session

	userIDCounter int64
}

// New creates a new in-memory database.
func New() *DB {
	return &DB{
		sessions: make(map[string]*domain.Session),
	}
}

// Ensure interfaces are met.
var _ domain.EntryRepository = (*DB)(nil)
var _ domain.SummaryRepository = (*DB)(nil)
var _ domain.UserRepository = (*DB)(nil)
var _ domain.SessionRepository = (*SessionRepo)(nil)

// --- EntryRepository ---

// InsertEntry stores a copy of e under a fresh id.
func (db *DB) InsertEntry(ctx context.Context, e *domain.Entry) (string, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	stored := *e
	stored.ID = uuid.NewString()
	stored.CreatedAt = e.CreatedAt.UTC()
	stored.Themes = append([]string{}, e.Themes...)
	db.entries = append(db.entries, stored)
	return stored.ID, nil
}

// FindEntries returns copies of the entries matching q.
func (db *DB) FindEntries(ctx context.Context, q domain.EntryQuery) ([]domain.Entry, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	result := make([]domain.Entry, 0)
	for _, e := range db.entries {
		if q.Matches(e) {
			e.Themes = append([]string{}, e.Themes...)
			result = append(result, e)
		}
	}

	sort.SliceStable(result, func(i, j int) bool {
		if q.Ascending {
			return result[i].CreatedAt.Before(result[j].CreatedAt)
		}
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})

	if q.Skip > 0 {
		if q.Skip >= len(result) {
			return []domain.Entry{}, nil
		}
		result = result[q.Skip:]
	}
	if q.Limit > 0 && len(result) > q.Limit {
		result = result[:q.Limit]
	}
	return result, nil
}

// --- SummaryRepository ---

// InsertSummary stores a copy of s under a fresh id.
func (db *DB) InsertSummary(ctx context.Context, s *domain.WeeklySummary) (string, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	stored := *s
	stored.ID = uuid.NewString()
	stored.TopThemes = append([]string{}, s.TopThemes...)
	db.summaries = append(db.summaries, stored)
	return stored.ID, nil
}

// LatestSummary returns the newest summary for userID generated at or after since.
func (db *DB) LatestSummary(ctx context.Context, userID string, since time.Time) (*domain.WeeklySummary, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	var latest *domain.WeeklySummary
	for i := range db.summaries {
		s := &db.summaries[i]
		if s.UserID != userID || s.GeneratedAt.Before(since) {
			continue
		}
		if latest == nil || s.GeneratedAt.After(latest.GeneratedAt) {
			latest = s
		}
	}
	if latest == nil {
		return nil, nil
	}
	ret := *latest
	ret.TopThemes = append([]string{}, latest.TopThemes...)
	return &ret, nil
}

// --- UserRepository ---

// GetByUsername retrieves a user by username.
func (db *DB) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, u := range db.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, nil
}

// GetByID retrieves a user by ID.
func (db *DB) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, u := range db.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, nil
}

// Create creates a new user.
func (db *DB) Create(ctx context.Context, username, passwordHash string) (*domain.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, u := range db.users {
		if u.Username == username {
			return nil, ErrUserExists
		}
	}

	db.userIDCounter++
	u := &domain.User{
		ID:           db.userIDCounter,
		Username:     username,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}
	db.users = append(db.users, u)
	return u, nil
}

// Count returns the total number of users.
func (db *DB) Count(ctx context.Context) (int, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	return len(db.users), nil
}

// --- SessionRepository ---

// SessionRepo implements session persistence.
type SessionRepo struct {
	db *DB
}

// NewSessionRepo creates a new session repository.
func (db *DB) NewSessionRepo() *SessionRepo {
	return &SessionRepo{db: db}
}

// Create creates a new session.
func (r *SessionRepo) Create(ctx context.Context, userID int64, token, userAgent, ip string, expiresAt time.Time) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	r.db.sessions[token] = &domain.Session{
		Token:     token,
		UserID:    userID,
		UserAgent: userAgent,
		IP:        ip,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now().UTC(),
	}
	return nil
}

// GetByToken retrieves a session by token. Expiry is left to the caller.
func (r *SessionRepo) GetByToken(ctx context.Context, token string) (*domain.Session, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if s, ok := r.db.sessions[token]; ok {
		ret := *s
		return &ret, nil
	}
	return nil, nil
}

// Delete deletes a session.
func (r *SessionRepo) Delete(ctx context.Context, token string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	delete(r.db.sessions, token)
	return nil
}

// DeleteExpired deletes all expired sessions.
func (r *SessionRepo) DeleteExpired(ctx context.Context) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	now := time.Now()
	for k, v := range r.db.sessions {
		if now.After(v.ExpiresAt) {
			delete(r.db.sessions, k)
		}
	}
	return nil
}
