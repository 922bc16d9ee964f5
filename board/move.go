package board

import (
	"context"

	"go.uber.org/zap"

	"github.com/CrowderSoup/taskboard/api"
	"github.com/CrowderSoup/taskboard/notice"
)

// MoveCard moves a card from one column to another at position, appending
// when position is negative or past the end. The board changes right away;
// the new status is written to the backend once moves have been quiet for
// the debounce window. A rejected write is reported but not rolled back.
func (m *Model) MoveCard(cardID int64, from, to ColumnID, position int) error {
	if !from.Valid() || !to.Valid() {
		return ErrUnknownColumn
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrClosed
	}

	src := m.columns[from.index()]
	idx := -1
	for i := range src {
		if src[i].ID == cardID {
			idx = i
			break
		}
	}
	if idx < 0 {
		m.mu.Unlock()
		return ErrCardNotFound
	}

	card := src[idx]
	m.columns[from.index()] = append(src[:idx:idx], src[idx+1:]...)

	card.Status = to.Status()
	dst := m.columns[to.index()]
	if position < 0 || position > len(dst) {
		position = len(dst)
	}
	next := make([]Card, 0, len(dst)+1)
	next = append(next, dst[:position]...)
	next = append(next, card)
	next = append(next, dst[position:]...)
	m.columns[to.index()] = next

	snap := m.snapshotLocked()
	m.mu.Unlock()

	m.publish(snap)
	m.persist.Trigger(func() { m.persistStatus(cardID, to) })
	return nil
}

// Flush writes a pending status change now instead of waiting for the
// debounce window.
func (m *Model) Flush() {
	m.persist.Flush()
}

func (m *Model) persistStatus(taskID int64, to ColumnID) {
	ctx, cancel := context.WithTimeout(context.Background(), m.persistTimeout)
	defer cancel()

	status := to.Status()
	err := m.backend.UpdateTaskStatus(ctx, taskID, status)
	switch {
	case err == nil:
		m.notify(notice.New(notice.LevelInfo, notice.MsgStatusUpdated, map[string]any{
			"TaskID": taskID,
			"Status": status,
		}))
	case api.IsPermissionDenied(err):
		m.log.Info("status change refused", zap.Int64("task_id", taskID), zap.String("status", status), zap.Error(err))
		m.notify(notice.New(notice.LevelWarning, notice.MsgNoPermission, nil))
	default:
		m.log.Warn("failed to update task status", zap.Int64("task_id", taskID), zap.String("status", status), zap.Error(err))
		m.notify(notice.New(notice.LevelWarning, notice.MsgStatusUpdateFailed, nil))
	}
}
