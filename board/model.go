package board

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/CrowderSoup/taskboard/api"
	"github.com/CrowderSoup/taskboard/notice"
	"github.com/CrowderSoup/taskboard/util"
)

var (
	ErrNoProject      = errors.New("no project selected")
	ErrUnknownColumn  = errors.New("unknown column")
	ErrCardNotFound   = errors.New("card not found")
	ErrDuplicateCard  = errors.New("card already on the board")
	ErrInvalidTitle   = errors.New("invalid title")
	ErrImmutableField = errors.New("card id and status cannot be patched")
	ErrClosed         = errors.New("board closed")
)

// Backend is the part of the task API a board depends on.
type Backend interface {
	FetchTasks(ctx context.Context, projectID int64, filter api.TaskFilter, page int) (*api.TaskPage, error)
	CreateTask(ctx context.Context, projectID int64, task api.NewTask) (*api.Task, error)
	UpdateTaskStatus(ctx context.Context, taskID int64, status string) error
	DeleteTask(ctx context.Context, taskID int64) (string, error)
}

var _ Backend = (*api.Client)(nil)

// State is where a board is in its load cycle.
type State string

const (
	StateIdle      State = "idle"
	StateLoading   State = "loading"
	StatePopulated State = "populated"
	StateEmpty     State = "empty"
	StateFailed    State = "failed"
)

const (
	DefaultDebounce       = 300 * time.Millisecond
	defaultPersistTimeout = 15 * time.Second
)

// Model holds the three columns of one (project, filters, page) selection
// and mediates every change between the view and the backend.
type Model struct {
	backend        Backend
	notifier       notice.Notifier
	log            *zap.Logger
	observer       func(Snapshot)
	debounce       time.Duration
	persistTimeout time.Duration
	persist        *util.Debouncer

	mu        sync.Mutex
	columns   [numColumns][]Card
	projectID int64
	filters   Filters
	cursor    Cursor
	state     State
	inflight  int
	closed    bool
}

type Option func(*Model)

// WithDebounce sets the quiescence window of status writes.
func WithDebounce(d time.Duration) Option {
	return func(m *Model) { m.debounce = d }
}

func WithPersistTimeout(d time.Duration) Option {
	return func(m *Model) { m.persistTimeout = d }
}

func WithLogger(log *zap.Logger) Option {
	return func(m *Model) { m.log = log }
}

// WithObserver registers a function called with a fresh snapshot after
// every change. It runs outside the model's lock.
func WithObserver(f func(Snapshot)) Option {
	return func(m *Model) { m.observer = f }
}

func New(backend Backend, notifier notice.Notifier, opts ...Option) *Model {
	if notifier == nil {
		notifier = notice.Discard
	}
	m := &Model{
		backend:        backend,
		notifier:       notifier,
		log:            zap.L(),
		debounce:       DefaultDebounce,
		persistTimeout: defaultPersistTimeout,
		cursor:         firstPage(),
		state:          StateIdle,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.persist = util.NewDebouncer(m.debounce)
	return m
}

// Select starts a new selection: the board and its cursor are reset and
// the first page is loaded.
func (m *Model) Select(ctx context.Context, projectID int64, filters Filters) error {
	if projectID <= 0 {
		m.notify(notice.New(notice.LevelInfo, notice.MsgNoProject, nil))
		return ErrNoProject
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrClosed
	}
	m.cursor = firstPage()
	m.mu.Unlock()

	return m.Reload(ctx, projectID, filters, 1)
}

// Reload clears the board and fills it again from the backend. page 0
// reloads the cursor's current page. Concurrent reloads are not fenced: the
// last answer to arrive wins.
func (m *Model) Reload(ctx context.Context, projectID int64, filters Filters, page int) error {
	if projectID <= 0 {
		m.notify(notice.New(notice.LevelInfo, notice.MsgNoProject, nil))
		return ErrNoProject
	}

	page, err := m.beginLoad(projectID, filters, page)
	if err != nil {
		return err
	}

	var notices []notice.Notice
	defer func() { m.endLoad(notices) }()

	resp, fetchErr := m.backend.FetchTasks(ctx, projectID, filters.taskFilter(), page)

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}

	if fetchErr != nil {
		m.log.Warn("failed to fetch tasks",
			zap.Int64("project_id", projectID),
			zap.Int("page", page),
			zap.Error(fetchErr),
		)
		m.clearColumns()
		m.state = StateFailed
		notices = append(notices, notice.New(notice.LevelError, notice.MsgFetchTasksFailed, nil))
		return fmt.Errorf("failed to fetch tasks: %w", fetchErr)
	}

	m.clearColumns()
	if resp.Pagination.CurrentPage > 0 {
		m.cursor = cursorFrom(resp.Pagination)
	}

	if resp.Total() == 0 {
		m.state = StateEmpty
		notices = append(notices, notice.New(notice.LevelInfo, notice.MsgNoTasks, nil))
		return nil
	}

	for _, col := range Columns {
		tasks := resp.Group(col.Status())
		cards := make([]Card, 0, len(tasks))
		for _, t := range tasks {
			if m.containsLocked(t.ID) || containsCard(cards, t.ID) {
				m.log.Warn("task listed twice, keeping first", zap.Int64("task_id", t.ID))
				continue
			}
			cards = append(cards, cardFromTask(t, col, projectID))
		}
		m.columns[col.index()] = cards
	}
	m.state = StatePopulated
	return nil
}

func (m *Model) beginLoad(projectID int64, filters Filters, page int) (int, error) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return 0, ErrClosed
	}

	m.projectID = projectID
	m.filters = filters.clone()
	if page <= 0 {
		page = m.cursor.CurrentPage
	}
	if page <= 0 {
		page = 1
	}
	m.clearColumns()
	m.inflight++
	snap := m.snapshotLocked()
	m.mu.Unlock()

	m.publish(snap)
	return page, nil
}

func (m *Model) endLoad(notices []notice.Notice) {
	m.mu.Lock()
	m.inflight--
	closed := m.closed
	snap := m.snapshotLocked()
	m.mu.Unlock()

	if closed {
		return
	}
	m.publish(snap)
	for _, n := range notices {
		m.notify(n)
	}
}

// Loading reports whether a reload is in flight.
func (m *Model) Loading() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.inflight > 0
}

func (m *Model) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stateLocked()
}

func (m *Model) stateLocked() State {
	if m.inflight > 0 {
		return StateLoading
	}
	return m.state
}

// Selection returns the project and filters the board was last loaded with.
func (m *Model) Selection() (int64, Filters) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.projectID, m.filters.clone()
}

func (m *Model) clearColumns() {
	for i := range m.columns {
		m.columns[i] = []Card{}
	}
}

func (m *Model) containsLocked(id int64) bool {
	_, _, ok := m.findLocked(id)
	return ok
}

func (m *Model) findLocked(id int64) (ColumnID, int, bool) {
	for i, cards := range m.columns {
		for j := range cards {
			if cards[j].ID == id {
				return ColumnID(i + 1), j, true
			}
		}
	}
	return 0, 0, false
}

func containsCard(cards []Card, id int64) bool {
	for i := range cards {
		if cards[i].ID == id {
			return true
		}
	}
	return false
}

func (m *Model) notify(n notice.Notice) {
	m.notifier.Notify(n)
}

func (m *Model) publish(snap Snapshot) {
	if m.observer != nil {
		m.observer(snap)
	}
}

// Close flushes a pending status write, then detaches the model: later
// answers and mutations are ignored.
func (m *Model) Close() {
	m.persist.Flush()
	m.persist.Stop()

	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
}
