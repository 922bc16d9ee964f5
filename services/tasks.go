package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/CrowderSoup/taskboard/api"
	"github.com/CrowderSoup/taskboard/board"
	"github.com/CrowderSoup/taskboard/notice"
)

// ErrEmptyComment is returned for a blank comment.
var ErrEmptyComment = errors.New("comment is empty")

// Backend messages the assignment answer is told apart by.
const (
	msgTaskAssigned        = "Task assigned successfully to new users."
	msgTaskAlreadyAssigned = "No new users were assigned. All provided users are already assigned to this task."
)

// TaskBackend is the part of the remote API behind the task detail view.
type TaskBackend interface {
	GetTask(ctx context.Context, taskID int64) (*api.Task, error)
	UpdateTaskDescription(ctx context.Context, taskID int64, description string) error
	UpdateTaskPriority(ctx context.Context, taskID int64, priority int) error
	UpdateTaskEstimate(ctx context.Context, taskID int64, estimate float64) error
	AssignUsers(ctx context.Context, taskID int64, userIDs ...int64) (string, error)
	UnassignUsers(ctx context.Context, taskID int64, userIDs ...int64) (string, error)
	Comments(ctx context.Context, taskID int64) ([]api.Comment, error)
	CreateComment(ctx context.Context, taskID int64, text string) (*api.Comment, string, error)
	UpdateComment(ctx context.Context, commentID int64, text string) error
	DeleteComment(ctx context.Context, commentID int64) (string, error)
}

// CardPatcher applies edits to the card a task is shown as.
type CardPatcher interface {
	PatchCard(cardID int64, edit func(*board.Card)) error
}

// TaskService backs the task detail view: details, assignees and comments.
// Successful edits are mirrored onto the board card.
type TaskService struct {
	remote   TaskBackend
	cards    CardPatcher
	identity *IdentityStore
	notifier notice.Notifier
	log      *zap.Logger
}

func NewTaskService(remote TaskBackend, cards CardPatcher, identity *IdentityStore, notifier notice.Notifier, log *zap.Logger) *TaskService {
	if log == nil {
		log = zap.L()
	}
	if notifier == nil {
		notifier = notice.Discard
	}
	return &TaskService{remote: remote, cards: cards, identity: identity, notifier: notifier, log: log}
}

func (s *TaskService) requireManager() error {
	user := s.identity.Current()
	if user == nil {
		return api.ErrNotAuthenticated
	}
	if !user.IsManager() {
		return ErrNotManager
	}
	return nil
}

func (s *TaskService) patch(taskID int64, edit func(*board.Card)) {
	if s.cards == nil {
		return
	}
	// the task may live on a page the board is not showing
	if err := s.cards.PatchCard(taskID, edit); err != nil && !errors.Is(err, board.ErrCardNotFound) {
		s.log.Warn("failed to patch card", zap.Int64("task_id", taskID), zap.Error(err))
	}
}

func (s *TaskService) fail(msgID string, taskID int64, err error) {
	s.log.Warn("task detail request failed", zap.String("notice", msgID), zap.Int64("task_id", taskID), zap.Error(err))
	s.notifier.Notify(notice.New(notice.LevelError, msgID, nil))
}

func (s *TaskService) Task(ctx context.Context, taskID int64) (*api.Task, error) {
	task, err := s.remote.GetTask(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to load task %d: %w", taskID, err)
	}
	return task, nil
}

func (s *TaskService) UpdateDescription(ctx context.Context, taskID int64, description string) error {
	if err := s.remote.UpdateTaskDescription(ctx, taskID, description); err != nil {
		s.fail(notice.MsgDescriptionFailed, taskID, err)
		return fmt.Errorf("failed to update description: %w", err)
	}
	s.notifier.Notify(notice.New(notice.LevelSuccess, notice.MsgDescriptionUpdated, nil))
	s.patch(taskID, func(c *board.Card) { c.Description = description })
	return nil
}

func (s *TaskService) UpdatePriority(ctx context.Context, taskID int64, priority int) error {
	if err := s.remote.UpdateTaskPriority(ctx, taskID, priority); err != nil {
		s.fail(notice.MsgPriorityFailed, taskID, err)
		return fmt.Errorf("failed to update priority: %w", err)
	}
	s.notifier.Notify(notice.New(notice.LevelSuccess, notice.MsgPriorityUpdated, nil))
	s.patch(taskID, func(c *board.Card) { c.Priority = &priority })
	return nil
}

func (s *TaskService) UpdateEstimate(ctx context.Context, taskID int64, estimate float64) error {
	if err := s.remote.UpdateTaskEstimate(ctx, taskID, estimate); err != nil {
		s.fail(notice.MsgEstimateFailed, taskID, err)
		return fmt.Errorf("failed to update estimated time: %w", err)
	}
	s.notifier.Notify(notice.New(notice.LevelSuccess, notice.MsgEstimateUpdated, nil))
	s.patch(taskID, func(c *board.Card) { c.EstimatedTime = &estimate })
	return nil
}

// Assign adds a user to a task. Only managers may.
func (s *TaskService) Assign(ctx context.Context, taskID, userID int64) error {
	if err := s.requireManager(); err != nil {
		return err
	}

	msg, err := s.remote.AssignUsers(ctx, taskID, userID)
	if err != nil {
		s.fail(notice.MsgAssignFailed, taskID, err)
		return fmt.Errorf("failed to assign user %d: %w", userID, err)
	}

	switch msg {
	case msgTaskAssigned:
		s.notifier.Notify(notice.New(notice.LevelSuccess, notice.MsgUserAssigned, nil))
		s.syncAssignees(ctx, taskID)
	case msgTaskAlreadyAssigned:
		s.notifier.Notify(notice.New(notice.LevelWarning, notice.MsgUserAlreadyAssigned, nil))
	}
	return nil
}

// Unassign removes a user from a task. Only managers may.
func (s *TaskService) Unassign(ctx context.Context, taskID, userID int64) error {
	if err := s.requireManager(); err != nil {
		return err
	}

	if _, err := s.remote.UnassignUsers(ctx, taskID, userID); err != nil {
		s.fail(notice.MsgUnassignFailed, taskID, err)
		return fmt.Errorf("failed to unassign user %d: %w", userID, err)
	}
	s.notifier.Notify(notice.New(notice.LevelSuccess, notice.MsgUserUnassigned, nil))
	s.syncAssignees(ctx, taskID)
	return nil
}

// syncAssignees reloads the task and copies its assignees onto the card.
func (s *TaskService) syncAssignees(ctx context.Context, taskID int64) {
	task, err := s.remote.GetTask(ctx, taskID)
	if err != nil {
		s.log.Warn("failed to reload task users", zap.Int64("task_id", taskID), zap.Error(err))
		return
	}

	assignees := make([]board.Assignee, 0, len(task.AssignedUsers))
	for _, u := range task.AssignedUsers {
		assignees = append(assignees, board.Assignee{ID: u.ID, Name: u.Name, Avatar: u.Avatar})
	}
	s.patch(taskID, func(c *board.Card) { c.AssignedUsers = assignees })
}

func (s *TaskService) Comments(ctx context.Context, taskID int64) ([]api.Comment, error) {
	comments, err := s.remote.Comments(ctx, taskID)
	if err != nil {
		s.fail(notice.MsgCommentsFailed, taskID, err)
		return nil, fmt.Errorf("failed to load comments: %w", err)
	}
	return comments, nil
}

func (s *TaskService) AddComment(ctx context.Context, taskID int64, text string) (*api.Comment, error) {
	if strings.TrimSpace(text) == "" {
		s.notifier.Notify(notice.New(notice.LevelWarning, notice.MsgCommentEmpty, nil))
		return nil, ErrEmptyComment
	}

	comment, msg, err := s.remote.CreateComment(ctx, taskID, text)
	if err != nil {
		s.fail(notice.MsgCommentPostFailed, taskID, err)
		return nil, fmt.Errorf("failed to post comment: %w", err)
	}
	if msg != "" {
		s.notifier.Notify(notice.Notice{Level: notice.LevelSuccess, Message: msg})
	}
	return comment, nil
}

func (s *TaskService) EditComment(ctx context.Context, commentID int64, text string) error {
	if strings.TrimSpace(text) == "" {
		s.notifier.Notify(notice.New(notice.LevelWarning, notice.MsgCommentEmpty, nil))
		return ErrEmptyComment
	}

	if err := s.remote.UpdateComment(ctx, commentID, text); err != nil {
		s.fail(notice.MsgCommentUpdateFail, 0, err)
		return fmt.Errorf("failed to update comment %d: %w", commentID, err)
	}
	s.notifier.Notify(notice.New(notice.LevelSuccess, notice.MsgCommentUpdated, nil))
	return nil
}

func (s *TaskService) DeleteComment(ctx context.Context, commentID int64) error {
	msg, err := s.remote.DeleteComment(ctx, commentID)
	if err != nil {
		s.fail(notice.MsgCommentDeleteFail, 0, err)
		return fmt.Errorf("failed to delete comment %d: %w", commentID, err)
	}
	if msg != "" {
		s.notifier.Notify(notice.Notice{Level: notice.LevelSuccess, Message: msg})
	}
	return nil
}
