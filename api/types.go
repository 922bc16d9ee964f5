package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// number decodes the loosely typed numeric fields the backend sends: JSON
// numbers, numeric strings, empty strings and null.
type number struct {
	value float64
	valid bool
}

func (n *number) UnmarshalJSON(b []byte) error {
	*n = number{}
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return nil
	}

	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			return nil
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("invalid number %q: %w", s, err)
		}
		*n = number{value: v, valid: true}
		return nil
	}

	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*n = number{value: v, valid: true}
	return nil
}

func (n number) int64() int64 { return int64(n.value) }

func (n number) intPtr() *int {
	if !n.valid {
		return nil
	}
	v := int(n.value)
	return &v
}

func (n number) floatPtr() *float64 {
	if !n.valid {
		return nil
	}
	v := n.value
	return &v
}

// User is an account as seen by the backend.
type User struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	Avatar string `json:"avatar,omitempty"`
}

const (
	RoleUser    = "user"
	RoleManager = "manager"
)

// IsManager reports whether u may create tasks and assign users.
func (u *User) IsManager() bool {
	return u != nil && u.Role == RoleManager
}

func (u *User) UnmarshalJSON(b []byte) error {
	var raw struct {
		ID     number `json:"id"`
		Name   string `json:"name"`
		Email  string `json:"email"`
		Role   string `json:"role"`
		Avatar string `json:"avatar"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*u = User{
		ID:     raw.ID.int64(),
		Name:   raw.Name,
		Email:  raw.Email,
		Role:   raw.Role,
		Avatar: raw.Avatar,
	}
	return nil
}

// Task is a task record. Priority and EstimatedTime are nil when the
// backend leaves them out, sends null or an empty string.
type Task struct {
	ID            int64    `json:"id"`
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	Status        string   `json:"status"`
	Priority      *int     `json:"priority"`
	EstimatedTime *float64 `json:"estimated_time"`
	ProjectID     int64    `json:"project_id"`
	AssignedUsers []User   `json:"assigned_users"`
}

func (t *Task) UnmarshalJSON(b []byte) error {
	var raw struct {
		ID            number  `json:"id"`
		Title         *string `json:"title"`
		Description   *string `json:"description"`
		Status        *string `json:"status"`
		Priority      number  `json:"priority"`
		EstimatedTime number  `json:"estimated_time"`
		ProjectID     number  `json:"project_id"`
		AssignedUsers []User  `json:"assigned_users"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*t = Task{
		ID:            raw.ID.int64(),
		Title:         deref(raw.Title),
		Description:   deref(raw.Description),
		Status:        deref(raw.Status),
		Priority:      raw.Priority.intPtr(),
		EstimatedTime: raw.EstimatedTime.floatPtr(),
		ProjectID:     raw.ProjectID.int64(),
		AssignedUsers: raw.AssignedUsers,
	}
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// TaskGroup is one server-side status bucket.
type TaskGroup struct {
	Tasks []Task `json:"tasks"`
}

// UnmarshalJSON also accepts a bare list of tasks, which is how the backend
// sends an empty bucket.
func (g *TaskGroup) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*g = TaskGroup{}
		return nil
	}
	if b[0] == '[' {
		var tasks []Task
		if err := json.Unmarshal(b, &tasks); err != nil {
			return err
		}
		*g = TaskGroup{Tasks: tasks}
		return nil
	}

	var raw struct {
		Tasks []Task `json:"tasks"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*g = TaskGroup{Tasks: raw.Tasks}
	return nil
}

// Status keys used by the backend for grouping.
const (
	GroupTodo       = "todo"
	GroupInProgress = "in-progress"
	GroupCompleted  = "completed"
)

// Pagination is the page metadata returned with a task listing.
type Pagination struct {
	CurrentPage int    `json:"current_page"`
	LastPage    int    `json:"last_page"`
	NextPageURL string `json:"next_page_url,omitempty"`
	PrevPageURL string `json:"prev_page_url,omitempty"`
}

func (p *Pagination) UnmarshalJSON(b []byte) error {
	var raw struct {
		CurrentPage number  `json:"current_page"`
		LastPage    number  `json:"last_page"`
		NextPageURL *string `json:"next_page_url"`
		PrevPageURL *string `json:"prev_page_url"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*p = Pagination{
		CurrentPage: int(raw.CurrentPage.int64()),
		LastPage:    int(raw.LastPage.int64()),
		NextPageURL: deref(raw.NextPageURL),
		PrevPageURL: deref(raw.PrevPageURL),
	}
	return nil
}

// TaskPage is the answer to a task listing.
type TaskPage struct {
	GroupedTasks map[string]TaskGroup `json:"grouped_tasks"`
	Pagination   Pagination           `json:"pagination"`
}

func (p *TaskPage) UnmarshalJSON(b []byte) error {
	var raw struct {
		GroupedTasks json.RawMessage `json:"grouped_tasks"`
		Pagination   Pagination      `json:"pagination"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}

	groups := map[string]TaskGroup{}
	body := bytes.TrimSpace(raw.GroupedTasks)
	switch {
	case len(body) == 0, bytes.Equal(body, []byte("null")):
	case body[0] == '[':
		// an empty grouping arrives as a list
		var list []json.RawMessage
		if err := json.Unmarshal(body, &list); err != nil {
			return err
		}
		if len(list) > 0 {
			return fmt.Errorf("grouped_tasks: expected an object, got a list of %d entries", len(list))
		}
	default:
		if err := json.Unmarshal(body, &groups); err != nil {
			return err
		}
	}

	*p = TaskPage{GroupedTasks: groups, Pagination: raw.Pagination}
	return nil
}

// Total counts the tasks across every group.
func (p *TaskPage) Total() int {
	n := 0
	for _, g := range p.GroupedTasks {
		n += len(g.Tasks)
	}
	return n
}

// Group returns the tasks of one bucket, or nil when the bucket is absent.
func (p *TaskPage) Group(key string) []Task {
	return p.GroupedTasks[key].Tasks
}

// TaskFilter is the body of a task listing. Empty fields are left out.
type TaskFilter struct {
	Status    []string `json:"status,omitempty"`
	Priority  []string `json:"priority,omitempty"`
	DateRange string   `json:"date_range,omitempty"`
	DateField string   `json:"date_field,omitempty"`
	SortBy    string   `json:"sort_by,omitempty"`
	SortOrder string   `json:"sort_order,omitempty"`

	// AssignedByManager selects the manager's "assigned" listing instead of
	// the caller's own tasks. It is not part of the body.
	AssignedByManager bool `json:"-"`
}

// NewTask is the body of a task creation.
type NewTask struct {
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	EstimatedTime *float64 `json:"estimated_time,omitempty"`
	Priority      *int     `json:"priority,omitempty"`
	Status        string   `json:"status"`
}

// Project is a workspace.
type Project struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

func (p *Project) UnmarshalJSON(b []byte) error {
	var raw struct {
		ID          number  `json:"id"`
		Title       string  `json:"title"`
		Description *string `json:"description"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*p = Project{ID: raw.ID.int64(), Title: raw.Title, Description: deref(raw.Description)}
	return nil
}

// Comment belongs to a task.
type Comment struct {
	ID        int64  `json:"id"`
	Comment   string `json:"comment"`
	User      *User  `json:"user,omitempty"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

func (c *Comment) UnmarshalJSON(b []byte) error {
	var raw struct {
		ID        number  `json:"id"`
		Comment   string  `json:"comment"`
		User      *User   `json:"user"`
		CreatedAt *string `json:"created_at"`
		UpdatedAt *string `json:"updated_at"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*c = Comment{
		ID:        raw.ID.int64(),
		Comment:   raw.Comment,
		User:      raw.User,
		CreatedAt: deref(raw.CreatedAt),
		UpdatedAt: deref(raw.UpdatedAt),
	}
	return nil
}

// Edited reports whether the comment changed after it was posted.
func (c *Comment) Edited() bool {
	return c.UpdatedAt != "" && c.UpdatedAt != c.CreatedAt
}

// MessageResponse is the common `{message}` answer.
type MessageResponse struct {
	Message string `json:"message"`
}

type envelope[T any] struct {
	Data    T      `json:"data"`
	Message string `json:"message"`
}
