package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lib/pq"

	"journal/internal/domain"
)

var (
	_ domain.UserRepository    = (*DB)(nil)
	_ domain.SessionRepository = (*SessionRepo)(nil)
)

const (
	userColumns    = "id, username, password_hash, created_at"
	sessionColumns = "token, user_id, user_agent, ip, expires_at, created_at"

	// uniqueViolation is the SQLSTATE for a unique constraint failure.
	uniqueViolation pq.ErrorCode = "23505"
)

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanUser reads one users row. A missing row yields (nil, nil).
func scanUser(row rowScanner) (*domain.User, error) {
	var u domain.User
	err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func scanSession(row rowScanner) (*domain.Session, error) {
	var s domain.Session
	err := row.Scan(&s.Token, &s.UserID, &s.UserAgent, &s.IP, &s.ExpiresAt, &s.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// usernameTaken maps a unique violation on insert to domain.ErrUsernameTaken.
func usernameTaken(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return domain.ErrUsernameTaken
	}
	return err
}

// GetByUsername looks a user up by name.
func (d *DB) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return scanUser(d.sql.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE username = $1;", username))
}

// GetByID looks a user up by id.
func (d *DB) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	return scanUser(d.sql.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id = $1;", id))
}

// Create registers username. An empty hash marks an SSO or proxy account.
func (d *DB) Create(ctx context.Context, username, passwordHash string) (*domain.User, error) {
	u, err := scanUser(d.sql.QueryRowContext(ctx,
		"INSERT INTO users(username, password_hash, created_at) VALUES($1, $2, $3) RETURNING "+userColumns+";",
		username, passwordHash, time.Now().UTC()))
	if err != nil {
		return nil, usernameTaken(err)
	}
	return u, nil
}

// Count reports how many accounts exist.
func (d *DB) Count(ctx context.Context) (int, error) {
	var n int
	err := d.sql.QueryRowContext(ctx, "SELECT COUNT(*) FROM users;").Scan(&n)
	return n, err
}

// SessionRepo stores login sessions in the sessions table.
type SessionRepo struct {
	db *DB
}

// NewSessionRepo wraps db as a domain.SessionRepository.
func NewSessionRepo(db *DB) *SessionRepo {
	return &SessionRepo{db: db}
}

// Create records a session bound to the client's user agent and address.
func (r *SessionRepo) Create(ctx context.Context, userID int64, token, userAgent, ip string, expiresAt time.Time) error {
	_, err := r.db.sql.ExecContext(ctx,
		"INSERT INTO sessions("+sessionColumns+") VALUES($1, $2, $3, $4, $5, $6);",
		token, userID, userAgent, ip, expiresAt.UTC(), time.Now().UTC())
	return err
}

// GetByToken returns the session for token, or nil. Expiry is left to the
// caller.
func (r *SessionRepo) GetByToken(ctx context.Context, token string) (*domain.Session, error) {
	return scanSession(r.db.sql.QueryRowContext(ctx,
		"SELECT "+sessionColumns+" FROM sessions WHERE token = $1;", token))
}

func (r *SessionRepo) Delete(ctx context.Context, token string) error {
	_, err := r.db.sql.ExecContext(ctx, "DELETE FROM sessions WHERE token = $1;", token)
	return err
}

// DeleteExpired drops every session past its expiry.
func (r *SessionRepo) DeleteExpired(ctx context.Context) error {
	_, err := r.db.sql.ExecContext(ctx, "DELETE FROM sessions WHERE expires_at < $1;", time.Now().UTC())
	return err
}
