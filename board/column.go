package board

import "github.com/CrowderSoup/taskboard/api"

// ColumnID identifies one of the three fixed board columns.
type ColumnID int

const (
	ColumnTodo       ColumnID = 1
	ColumnInProgress ColumnID = 2
	ColumnDone       ColumnID = 3
)

// Columns lists the board columns in display order.
var Columns = []ColumnID{ColumnTodo, ColumnInProgress, ColumnDone}

const numColumns = 3

func (c ColumnID) Valid() bool {
	return c >= ColumnTodo && c <= ColumnDone
}

func (c ColumnID) Title() string {
	switch c {
	case ColumnTodo:
		return "To Do"
	case ColumnInProgress:
		return "In Progress"
	case ColumnDone:
		return "Done"
	default:
		return ""
	}
}

// Status is the task status held by cards of this column.
func (c ColumnID) Status() string {
	return StatusByColumnID(int(c))
}

func (c ColumnID) index() int { return int(c) - 1 }

// StatusByColumnID maps a column id to a task status. Any id outside the
// board's columns yields "", which callers must treat as unknown.
func StatusByColumnID(columnID int) string {
	switch ColumnID(columnID) {
	case ColumnTodo:
		return api.GroupTodo
	case ColumnInProgress:
		return api.GroupInProgress
	case ColumnDone:
		return api.GroupCompleted
	default:
		return ""
	}
}

// ColumnByStatus is the inverse of StatusByColumnID.
func ColumnByStatus(status string) (ColumnID, bool) {
	switch status {
	case api.GroupTodo:
		return ColumnTodo, true
	case api.GroupInProgress:
		return ColumnInProgress, true
	case api.GroupCompleted:
		return ColumnDone, true
	default:
		return 0, false
	}
}
