package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/CrowderSoup/taskboard/board"
)

// Preferences is what the dashboard remembers for a user between runs.
type Preferences struct {
	SelectedProject int64         `json:"selectedProject,omitempty"`
	Filters         board.Filters `json:"filters"`
	Language        string        `json:"language,omitempty"`
}

// DataService handles database operations for user preferences
type DataService struct {
	db *sqlx.DB
}

func NewDataService(db *sqlx.DB) *DataService {
	return &DataService{db: db}
}

// GetUserData returns the preferences saved for email, or the defaults when
// nothing was saved yet.
func (s *DataService) GetUserData(ctx context.Context, email string) (*Preferences, error) {
	var dataStr string
	err := s.db.GetContext(ctx, &dataStr, "SELECT data FROM user_data WHERE email = ?", email)
	if errors.Is(err, sql.ErrNoRows) {
		return &Preferences{Filters: board.DefaultFilters()}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query user data: %w", err)
	}

	prefs := Preferences{Filters: board.DefaultFilters()}
	if err := json.Unmarshal([]byte(dataStr), &prefs); err != nil {
		return nil, fmt.Errorf("failed to unmarshal user data: %w", err)
	}
	return &prefs, nil
}

// SaveUserData saves or updates the preferences of email
func (s *DataService) SaveUserData(ctx context.Context, email string, prefs *Preferences) error {
	dataJSON, err := json.Marshal(prefs)
	if err != nil {
		return fmt.Errorf("failed to marshal user data: %w", err)
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "INSERT OR IGNORE INTO users (email) VALUES (?)", email); err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO user_data (email, data, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(email) DO UPDATE SET
			data = excluded.data,
			updated_at = CURRENT_TIMESTAMP
	`, email, string(dataJSON))
	if err != nil {
		return fmt.Errorf("failed to upsert user data: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
