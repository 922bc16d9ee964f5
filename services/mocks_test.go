package services

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/CrowderSoup/taskboard/api"
	"github.com/CrowderSoup/taskboard/board"
)

type memTokens struct {
	mu    sync.Mutex
	token string
}

func (m *memTokens) Token() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token, nil
}

func (m *memTokens) SetToken(token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = token
	return nil
}

func (m *memTokens) Clear() error { return m.SetToken("") }

type profilerMock struct{ mock.Mock }

func (p *profilerMock) Me(ctx context.Context) (*api.User, error) {
	args := p.Called(ctx)
	var u *api.User
	if v := args.Get(0); v != nil {
		u = v.(*api.User)
	}
	return u, args.Error(1)
}

// identityFor returns a store whose current user is user.
func identityFor(user *api.User) *IdentityStore {
	profiles := new(profilerMock)
	profiles.On("Me", mock.Anything).Return(user, nil)
	store := NewIdentityStore(profiles, &memTokens{token: "t"}, nil, nil)
	store.Refresh(context.Background())
	return store
}

var (
	manager = &api.User{ID: 1, Name: "Maya", Email: "maya@example.com", Role: api.RoleManager}
	member  = &api.User{ID: 2, Name: "Lin", Email: "lin@example.com", Role: api.RoleUser}
)

type projectBackendMock struct{ mock.Mock }

func (m *projectBackendMock) Projects(ctx context.Context, role string) ([]api.Project, error) {
	args := m.Called(ctx, role)
	p, _ := args.Get(0).([]api.Project)
	return p, args.Error(1)
}

func (m *projectBackendMock) GetProject(ctx context.Context, projectID int64) (*api.Project, error) {
	args := m.Called(ctx, projectID)
	p, _ := args.Get(0).(*api.Project)
	return p, args.Error(1)
}

func (m *projectBackendMock) ProjectUsers(ctx context.Context, projectID int64) ([]api.User, error) {
	args := m.Called(ctx, projectID)
	u, _ := args.Get(0).([]api.User)
	return u, args.Error(1)
}

func (m *projectBackendMock) CreateProject(ctx context.Context, title, description string) (*api.Project, error) {
	args := m.Called(ctx, title, description)
	p, _ := args.Get(0).(*api.Project)
	return p, args.Error(1)
}

func (m *projectBackendMock) InviteToProject(ctx context.Context, projectID int64, userIDs ...int64) (string, error) {
	args := m.Called(ctx, projectID, userIDs)
	return args.String(0), args.Error(1)
}

func (m *projectBackendMock) Users(ctx context.Context) ([]api.User, error) {
	args := m.Called(ctx)
	u, _ := args.Get(0).([]api.User)
	return u, args.Error(1)
}

type taskBackendMock struct{ mock.Mock }

func (m *taskBackendMock) GetTask(ctx context.Context, taskID int64) (*api.Task, error) {
	args := m.Called(ctx, taskID)
	t, _ := args.Get(0).(*api.Task)
	return t, args.Error(1)
}

func (m *taskBackendMock) UpdateTaskDescription(ctx context.Context, taskID int64, description string) error {
	return m.Called(ctx, taskID, description).Error(0)
}

func (m *taskBackendMock) UpdateTaskPriority(ctx context.Context, taskID int64, priority int) error {
	return m.Called(ctx, taskID, priority).Error(0)
}

func (m *taskBackendMock) UpdateTaskEstimate(ctx context.Context, taskID int64, estimate float64) error {
	return m.Called(ctx, taskID, estimate).Error(0)
}

func (m *taskBackendMock) AssignUsers(ctx context.Context, taskID int64, userIDs ...int64) (string, error) {
	args := m.Called(ctx, taskID, userIDs)
	return args.String(0), args.Error(1)
}

func (m *taskBackendMock) UnassignUsers(ctx context.Context, taskID int64, userIDs ...int64) (string, error) {
	args := m.Called(ctx, taskID, userIDs)
	return args.String(0), args.Error(1)
}

func (m *taskBackendMock) Comments(ctx context.Context, taskID int64) ([]api.Comment, error) {
	args := m.Called(ctx, taskID)
	c, _ := args.Get(0).([]api.Comment)
	return c, args.Error(1)
}

func (m *taskBackendMock) CreateComment(ctx context.Context, taskID int64, text string) (*api.Comment, string, error) {
	args := m.Called(ctx, taskID, text)
	c, _ := args.Get(0).(*api.Comment)
	return c, args.String(1), args.Error(2)
}

func (m *taskBackendMock) UpdateComment(ctx context.Context, commentID int64, text string) error {
	return m.Called(ctx, commentID, text).Error(0)
}

func (m *taskBackendMock) DeleteComment(ctx context.Context, commentID int64) (string, error) {
	args := m.Called(ctx, commentID)
	return args.String(0), args.Error(1)
}

// cardStore is a stand-in for the board.
type cardStore struct {
	mu    sync.Mutex
	cards map[int64]board.Card
}

func newCardStore(cards ...board.Card) *cardStore {
	s := &cardStore{cards: map[int64]board.Card{}}
	for _, c := range cards {
		s.cards[c.ID] = c
	}
	return s
}

func (s *cardStore) PatchCard(cardID int64, edit func(*board.Card)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	card, ok := s.cards[cardID]
	if !ok {
		return board.ErrCardNotFound
	}
	edit(&card)
	s.cards[cardID] = card
	return nil
}

func (s *cardStore) get(id int64) board.Card {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cards[id]
}
