package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/CrowderSoup/taskboard/api"
	"github.com/CrowderSoup/taskboard/notice"
)

var (
	ErrNotManager = errors.New("only managers can do this")
	ErrNoProjects = errors.New("no projects")
)

// Backend messages the invitation answer is told apart by.
const (
	msgUserAddedToProject   = "User assigned to project successfully."
	msgUserAlreadyInProject = "User already added to project."
)

// ProjectBackend is the part of the remote API that deals with projects.
type ProjectBackend interface {
	Projects(ctx context.Context, role string) ([]api.Project, error)
	GetProject(ctx context.Context, projectID int64) (*api.Project, error)
	ProjectUsers(ctx context.Context, projectID int64) ([]api.User, error)
	CreateProject(ctx context.Context, title, description string) (*api.Project, error)
	InviteToProject(ctx context.Context, projectID int64, userIDs ...int64) (string, error)
	Users(ctx context.Context) ([]api.User, error)
}

// ProjectDetail is a project together with its members.
type ProjectDetail struct {
	api.Project
	Members []api.User `json:"members"`
}

// WorkspaceService lists and manages the projects of the current user.
type WorkspaceService struct {
	remote   ProjectBackend
	identity *IdentityStore
	notifier notice.Notifier
	log      *zap.Logger
}

func NewWorkspaceService(remote ProjectBackend, identity *IdentityStore, notifier notice.Notifier, log *zap.Logger) *WorkspaceService {
	if log == nil {
		log = zap.L()
	}
	if notifier == nil {
		notifier = notice.Discard
	}
	return &WorkspaceService{remote: remote, identity: identity, notifier: notifier, log: log}
}

func (s *WorkspaceService) currentUser() (*api.User, error) {
	user := s.identity.Current()
	if user == nil {
		return nil, api.ErrNotAuthenticated
	}
	return user, nil
}

// Projects lists the projects the current user can see.
func (s *WorkspaceService) Projects(ctx context.Context) ([]api.Project, error) {
	user, err := s.currentUser()
	if err != nil {
		return nil, err
	}

	projects, err := s.remote.Projects(ctx, user.Role)
	if err != nil {
		s.log.Warn("failed to list projects", zap.Error(err))
		s.notifier.Notify(notice.New(notice.LevelError, notice.MsgProjectFetchFailed, nil))
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	return projects, nil
}

// DefaultProject returns selected when it is set, otherwise the first
// project of the user. ErrNoProjects is returned when there is none.
func (s *WorkspaceService) DefaultProject(ctx context.Context, selected int64) (int64, error) {
	if selected > 0 {
		return selected, nil
	}

	projects, err := s.Projects(ctx)
	if err != nil {
		return 0, err
	}
	if len(projects) == 0 {
		return 0, ErrNoProjects
	}
	return projects[0].ID, nil
}

// Project loads a project and its members.
func (s *WorkspaceService) Project(ctx context.Context, projectID int64) (*ProjectDetail, error) {
	var (
		project *api.Project
		members []api.User
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		project, err = s.remote.GetProject(gctx, projectID)
		return err
	})
	g.Go(func() error {
		var err error
		members, err = s.remote.ProjectUsers(gctx, projectID)
		return err
	})
	if err := g.Wait(); err != nil {
		s.log.Warn("failed to load project", zap.Int64("project_id", projectID), zap.Error(err))
		s.notifier.Notify(notice.New(notice.LevelError, notice.MsgProjectFetchFailed, nil))
		return nil, fmt.Errorf("failed to load project %d: %w", projectID, err)
	}

	if members == nil {
		members = []api.User{}
	}
	return &ProjectDetail{Project: *project, Members: members}, nil
}

// CreateProject creates a project. Only managers may.
func (s *WorkspaceService) CreateProject(ctx context.Context, title, description string) (*api.Project, error) {
	user, err := s.currentUser()
	if err != nil {
		return nil, err
	}
	if !user.IsManager() {
		return nil, ErrNotManager
	}
	if strings.TrimSpace(title) == "" {
		s.notifier.Notify(notice.New(notice.LevelWarning, notice.MsgInvalidTitle, nil))
		return nil, fmt.Errorf("project title is empty")
	}

	project, err := s.remote.CreateProject(ctx, title, description)
	if err != nil {
		msg := api.MessageOf(err)
		if msg == "" {
			msg = notice.Translate(notice.MsgUnexpectedError, nil)
		}
		s.notifier.Notify(notice.Notice{Level: notice.LevelError, Message: msg})
		return nil, fmt.Errorf("failed to create project: %w", err)
	}
	s.notifier.Notify(notice.New(notice.LevelSuccess, notice.MsgProjectCreated, nil))
	return project, nil
}

// Invitable lists the accounts a manager can add to a project.
func (s *WorkspaceService) Invitable(ctx context.Context) ([]api.User, error) {
	users, err := s.remote.Users(ctx)
	if err != nil {
		s.notifier.Notify(notice.New(notice.LevelError, notice.MsgFetchUsersFailed, nil))
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// Invite adds a user to a project. The notice depends on whether the user
// was a member already.
func (s *WorkspaceService) Invite(ctx context.Context, projectID, userID int64) error {
	user, err := s.currentUser()
	if err != nil {
		return err
	}
	if !user.IsManager() {
		return ErrNotManager
	}

	msg, err := s.remote.InviteToProject(ctx, projectID, userID)
	if err != nil {
		s.log.Warn("failed to invite user", zap.Int64("project_id", projectID), zap.Int64("user_id", userID), zap.Error(err))
		s.notifier.Notify(notice.New(notice.LevelError, notice.MsgAddUserFailed, nil))
		return fmt.Errorf("failed to invite user %d: %w", userID, err)
	}

	switch msg {
	case msgUserAddedToProject:
		s.notifier.Notify(notice.New(notice.LevelSuccess, notice.MsgUserAddedToProject, nil))
	case msgUserAlreadyInProject:
		s.notifier.Notify(notice.New(notice.LevelWarning, notice.MsgUserAlreadyInProject, nil))
	}
	return nil
}
