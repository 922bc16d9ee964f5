package board

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/CrowderSoup/taskboard/api"
)

func pagedModel(t *testing.T) (*Model, *backendMock) {
	t.Helper()

	backend := new(backendMock)
	backend.On("FetchTasks", mock.Anything, int64(5), mock.Anything, 1).
		Return(taskPage([]api.Task{task(1, "p1")}, nil, nil, api.Pagination{
			CurrentPage: 1, LastPage: 3, NextPageURL: "/?page=2",
		}), nil).Once()

	m := New(backend, nil)
	require.NoError(t, m.Select(context.Background(), 5, Filters{}))
	return m, backend
}

func TestCursor_FromServer(t *testing.T) {
	m, _ := pagedModel(t)
	assert.Equal(t, Cursor{CurrentPage: 1, LastPage: 3, HasNext: true}, m.Cursor())
}

func TestNextAndPrevPage(t *testing.T) {
	m, backend := pagedModel(t)
	backend.On("FetchTasks", mock.Anything, int64(5), mock.Anything, 2).
		Return(taskPage([]api.Task{task(2, "p2")}, nil, nil, api.Pagination{
			CurrentPage: 2, LastPage: 3, NextPageURL: "/?page=3", PrevPageURL: "/?page=1",
		}), nil).Once()
	backend.On("FetchTasks", mock.Anything, int64(5), mock.Anything, 1).
		Return(taskPage([]api.Task{task(1, "p1")}, nil, nil, api.Pagination{
			CurrentPage: 1, LastPage: 3, NextPageURL: "/?page=2",
		}), nil).Once()

	moved, err := m.NextPage(context.Background())
	require.NoError(t, err)
	assert.True(t, moved)
	assert.Equal(t, []int64{2}, cardIDs(m.Snapshot()))
	assert.Equal(t, Cursor{CurrentPage: 2, LastPage: 3, HasNext: true, HasPrev: true}, m.Cursor())

	moved, err = m.PrevPage(context.Background())
	require.NoError(t, err)
	assert.True(t, moved)
	assert.Equal(t, []int64{1}, cardIDs(m.Snapshot()))

	backend.AssertExpectations(t)
}

func TestChangePage_NoOpWithoutNeighbour(t *testing.T) {
	backend := new(backendMock)
	backend.On("FetchTasks", mock.Anything, int64(5), mock.Anything, 1).
		Return(defaultPage(), nil).Once()

	m := New(backend, nil)
	require.NoError(t, m.Select(context.Background(), 5, Filters{}))
	before := m.Cursor()

	moved, err := m.NextPage(context.Background())
	require.NoError(t, err)
	assert.False(t, moved)

	moved, err = m.PrevPage(context.Background())
	require.NoError(t, err)
	assert.False(t, moved)

	assert.Equal(t, before, m.Cursor())
	backend.AssertNumberOfCalls(t, "FetchTasks", 1)
}

func TestGoToPage(t *testing.T) {
	m, backend := pagedModel(t)
	backend.On("FetchTasks", mock.Anything, int64(5), mock.Anything, 3).
		Return(taskPage(nil, nil, []api.Task{task(3, "p3")}, api.Pagination{
			CurrentPage: 3, LastPage: 3, PrevPageURL: "/?page=2",
		}), nil).Once()

	for _, page := range []int{0, -1, 4} {
		moved, err := m.GoToPage(context.Background(), page)
		require.NoError(t, err)
		assert.False(t, moved, "page %d", page)
	}
	backend.AssertNumberOfCalls(t, "FetchTasks", 1)

	moved, err := m.GoToPage(context.Background(), 3)
	require.NoError(t, err)
	assert.True(t, moved)
	assert.Equal(t, Cursor{CurrentPage: 3, LastPage: 3, HasPrev: true}, m.Cursor())
	assert.Equal(t, []int64{3}, cardIDs(m.Snapshot()))
}

func TestSelect_ResetsCursor(t *testing.T) {
	m, backend := pagedModel(t)
	backend.On("FetchTasks", mock.Anything, int64(5), mock.Anything, 3).
		Return(taskPage([]api.Task{task(3, "p3")}, nil, nil, api.Pagination{CurrentPage: 3, LastPage: 3}), nil).Once()
	backend.On("FetchTasks", mock.Anything, int64(6), mock.Anything, 1).
		Return(taskPage([]api.Task{task(9, "other")}, nil, nil, api.Pagination{}), nil).Once()

	_, err := m.GoToPage(context.Background(), 3)
	require.NoError(t, err)

	require.NoError(t, m.Select(context.Background(), 6, Filters{}))
	// the answer carried no pagination, so the reset cursor stays
	assert.Equal(t, Cursor{CurrentPage: 1, LastPage: 1}, m.Cursor())
	projectID, _ := m.Selection()
	assert.Equal(t, int64(6), projectID)
}

func TestSelect_WithoutProjectKeepsCursor(t *testing.T) {
	m, backend := pagedModel(t)
	backend.On("FetchTasks", mock.Anything, int64(5), mock.Anything, 2).
		Return(taskPage([]api.Task{task(2, "p2")}, nil, nil, api.Pagination{
			CurrentPage: 2, LastPage: 3, NextPageURL: "/?page=3", PrevPageURL: "/?page=1",
		}), nil).Once()

	moved, err := m.NextPage(context.Background())
	require.NoError(t, err)
	require.True(t, moved)

	err = m.Select(context.Background(), 0, Filters{})
	assert.ErrorIs(t, err, ErrNoProject)
	assert.Equal(t, Cursor{CurrentPage: 2, LastPage: 3, HasNext: true, HasPrev: true}, m.Cursor())
	assert.Equal(t, []int64{2}, cardIDs(m.Snapshot()))
	backend.AssertExpectations(t)
}
