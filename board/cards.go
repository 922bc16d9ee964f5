package board

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/CrowderSoup/taskboard/api"
	"github.com/CrowderSoup/taskboard/notice"
)

// NewCard holds the fields of the "add card" form.
type NewCard struct {
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	EstimatedTime *float64 `json:"estimated_time,omitempty"`
	Priority      *int     `json:"priority,omitempty"`
}

// InsertCard appends a card that already exists on the backend. Its status
// is taken from the column.
func (m *Model) InsertCard(column ColumnID, card Card) error {
	if !column.Valid() {
		return ErrUnknownColumn
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrClosed
	}
	if m.containsLocked(card.ID) {
		m.mu.Unlock()
		return ErrDuplicateCard
	}

	card = card.clone()
	card.Status = column.Status()
	if card.ProjectID == 0 {
		card.ProjectID = m.projectID
	}
	m.columns[column.index()] = append(m.columns[column.index()], card)
	snap := m.snapshotLocked()
	m.mu.Unlock()

	m.publish(snap)
	return nil
}

// RemoveCard drops a card from whichever column holds it and reports whether
// there was one. The backend is not called.
func (m *Model) RemoveCard(cardID int64) bool {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return false
	}

	col, idx, ok := m.findLocked(cardID)
	if !ok {
		m.mu.Unlock()
		return false
	}
	cards := m.columns[col.index()]
	m.columns[col.index()] = append(cards[:idx:idx], cards[idx+1:]...)
	snap := m.snapshotLocked()
	m.mu.Unlock()

	m.publish(snap)
	return true
}

// Card looks a card up and returns a copy together with its column.
func (m *Model) Card(cardID int64) (Card, ColumnID, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	col, idx, ok := m.findLocked(cardID)
	if !ok {
		return Card{}, 0, false
	}
	return m.columns[col.index()][idx].clone(), col, true
}

// PatchCard applies an edit made elsewhere (task details, assignment) to the
// card on the board. Id and status stay as they are; moving is MoveCard's job.
func (m *Model) PatchCard(cardID int64, edit func(*Card)) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrClosed
	}

	col, idx, ok := m.findLocked(cardID)
	if !ok {
		m.mu.Unlock()
		return ErrCardNotFound
	}

	card := m.columns[col.index()][idx].clone()
	edit(&card)
	if card.ID != cardID || card.Status != col.Status() {
		m.mu.Unlock()
		return ErrImmutableField
	}
	m.columns[col.index()][idx] = card
	snap := m.snapshotLocked()
	m.mu.Unlock()

	m.publish(snap)
	return nil
}

// CreateCard creates a task in the selected project and, once the backend
// accepted it, adds it to column. The board is left alone on failure.
func (m *Model) CreateCard(ctx context.Context, column ColumnID, in NewCard) (*Card, error) {
	if !column.Valid() {
		return nil, ErrUnknownColumn
	}

	projectID, _ := m.Selection()
	title := strings.TrimSpace(in.Title)
	if title == "" || projectID <= 0 {
		m.notify(notice.New(notice.LevelWarning, notice.MsgInvalidTitle, nil))
		return nil, ErrInvalidTitle
	}

	created, err := m.backend.CreateTask(ctx, projectID, api.NewTask{
		Title:         in.Title,
		Description:   in.Description,
		EstimatedTime: in.EstimatedTime,
		Priority:      in.Priority,
		Status:        column.Status(),
	})
	if err != nil {
		m.log.Warn("failed to create task", zap.Int64("project_id", projectID), zap.Error(err))
		m.notify(notice.New(notice.LevelError, notice.MsgTaskCreateFailed, nil))
		return nil, fmt.Errorf("failed to create task: %w", err)
	}
	m.notify(notice.New(notice.LevelSuccess, notice.MsgTaskCreated, nil))

	card := Card{
		ID:            created.ID,
		Title:         created.Title,
		Description:   created.Description,
		Priority:      created.Priority,
		EstimatedTime: created.EstimatedTime,
		ProjectID:     projectID,
		AssignedUsers: []Assignee{},
	}
	if err := m.InsertCard(column, card); err != nil {
		return nil, err
	}

	card.Status = column.Status()
	return &card, nil
}

// DeleteCard deletes a task on the backend and then drops its card.
func (m *Model) DeleteCard(ctx context.Context, cardID int64) error {
	msg, err := m.backend.DeleteTask(ctx, cardID)
	if err != nil {
		m.log.Warn("failed to delete task", zap.Int64("task_id", cardID), zap.Error(err))
		text := api.MessageOf(err)
		if text == "" {
			text = notice.Translate(notice.MsgUnexpectedError, nil)
		}
		m.notify(notice.Notice{Level: notice.LevelError, Message: text})
		return fmt.Errorf("failed to delete task: %w", err)
	}

	if msg != "" {
		m.notify(notice.Notice{Level: notice.LevelSuccess, Message: msg})
	}
	m.RemoveCard(cardID)
	return nil
}
