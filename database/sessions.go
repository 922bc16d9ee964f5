package database

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/CrowderSoup/taskboard/api"
)

// ErrNoSession is returned when no usable remote session is stored.
var ErrNoSession = errors.New("no session")

// DefaultTokenLifetime applies to tokens whose expiry cannot be read.
const DefaultTokenLifetime = 7 * 24 * time.Hour

type sessionRow struct {
	AccessToken string         `db:"access_token"`
	ExpiresAt   int64          `db:"expires_at"`
	User        sql.NullString `db:"profile"`
}

// SessionStore keeps the single remote session: the access token, when it
// expires and the last known profile. An expired session reads as absent.
type SessionStore struct {
	db     *sqlx.DB
	now    func() time.Time
	expiry func(token string) time.Time
}

var _ api.TokenSource = (*SessionStore)(nil)

type SessionOption func(*SessionStore)

// WithExpiry sets how the expiry of a token given to SetToken is decided.
func WithExpiry(f func(token string) time.Time) SessionOption {
	return func(s *SessionStore) { s.expiry = f }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) SessionOption {
	return func(s *SessionStore) { s.now = now }
}

func NewSessionStore(db *sqlx.DB, opts ...SessionOption) *SessionStore {
	s := &SessionStore{db: db, now: time.Now}
	s.expiry = func(string) time.Time { return s.now().Add(DefaultTokenLifetime) }
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *SessionStore) load() (*sessionRow, error) {
	var row sessionRow
	err := s.db.Get(&row, "SELECT access_token, expires_at, profile FROM sessions WHERE id = 1")
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query session: %w", err)
	}
	if !s.now().Before(time.Unix(row.ExpiresAt, 0)) {
		return nil, ErrNoSession
	}
	return &row, nil
}

// Token returns the stored access token, or "" when there is none or it has
// expired.
func (s *SessionStore) Token() (string, error) {
	row, err := s.load()
	if errors.Is(err, ErrNoSession) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return row.AccessToken, nil
}

// SetToken stores token with the expiry the store was configured to read.
func (s *SessionStore) SetToken(token string) error {
	return s.SaveToken(token, s.expiry(token))
}

// SaveToken stores token until expiresAt. A cached profile survives a token
// refresh.
func (s *SessionStore) SaveToken(token string, expiresAt time.Time) error {
	_, err := s.db.Exec(`
		INSERT INTO sessions (id, access_token, expires_at, updated_at)
		VALUES (1, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET
			access_token = excluded.access_token,
			expires_at = excluded.expires_at,
			updated_at = CURRENT_TIMESTAMP
	`, token, expiresAt.Unix())
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// ExpiresAt reports when the stored session expires.
func (s *SessionStore) ExpiresAt() (time.Time, error) {
	row, err := s.load()
	if err != nil {
		return time.Time{}, err
	}
	return time.Unix(row.ExpiresAt, 0), nil
}

// Clear forgets the session.
func (s *SessionStore) Clear() error {
	if _, err := s.db.Exec("DELETE FROM sessions"); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

// SaveUser caches the profile of the logged in user.
func (s *SessionStore) SaveUser(user *api.User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to marshal user: %w", err)
	}

	res, err := s.db.Exec("UPDATE sessions SET profile = ?, updated_at = CURRENT_TIMESTAMP WHERE id = 1", string(data))
	if err != nil {
		return fmt.Errorf("failed to save user: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNoSession
	}
	return nil
}

// User returns the cached profile. It is nil when none was cached.
func (s *SessionStore) User() (*api.User, error) {
	row, err := s.load()
	if err != nil {
		return nil, err
	}
	if !row.User.Valid || row.User.String == "" {
		return nil, nil
	}

	var user api.User
	if err := json.Unmarshal([]byte(row.User.String), &user); err != nil {
		return nil, fmt.Errorf("failed to unmarshal user: %w", err)
	}
	return &user, nil
}
