package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

// FetchTasks lists the tasks of a project grouped by status. page 0 lets the
// backend pick its first page.
func (c *Client) FetchTasks(ctx context.Context, projectID int64, filter TaskFilter, page int) (*TaskPage, error) {
	path := fmt.Sprintf("/users/tasks/created/%d", projectID)
	if filter.AssignedByManager {
		path = fmt.Sprintf("/dashboard/managers/tasks/assigned/%d", projectID)
	}

	var query url.Values
	if page > 0 {
		query = url.Values{"page": []string{strconv.Itoa(page)}}
	}

	var out TaskPage
	if err := c.do(ctx, request{method: http.MethodPost, path: path, query: query, body: filter}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateTask(ctx context.Context, projectID int64, task NewTask) (*Task, error) {
	var out envelope[Task]
	path := fmt.Sprintf("/dashboard/managers/tasks/create/%d", projectID)
	if err := c.do(ctx, request{method: http.MethodPost, path: path, body: task}, &out); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

func (c *Client) UpdateTaskStatus(ctx context.Context, taskID int64, status string) error {
	path := fmt.Sprintf("/users/tasks/edit/status/%d", taskID)
	return c.do(ctx, request{method: http.MethodPatch, path: path, body: map[string]string{"status": status}}, nil)
}

// DeleteTask removes a task and returns the backend's confirmation message.
func (c *Client) DeleteTask(ctx context.Context, taskID int64) (string, error) {
	var out MessageResponse
	path := fmt.Sprintf("/dashboard/managers/tasks/delete/%d", taskID)
	if err := c.do(ctx, request{method: http.MethodDelete, path: path}, &out); err != nil {
		return "", err
	}
	return out.Message, nil
}

// GetTask returns one task with its assignees.
func (c *Client) GetTask(ctx context.Context, taskID int64) (*Task, error) {
	var out envelope[Task]
	path := fmt.Sprintf("/dashboard/managers/tasks/show/%d", taskID)
	if err := c.do(ctx, request{method: http.MethodGet, path: path}, &out); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

func (c *Client) UpdateTaskDescription(ctx context.Context, taskID int64, description string) error {
	path := fmt.Sprintf("/dashboard/managers/tasks/edit/description/%d", taskID)
	return c.do(ctx, request{method: http.MethodPatch, path: path, body: map[string]string{"description": description}}, nil)
}

func (c *Client) UpdateTaskPriority(ctx context.Context, taskID int64, priority int) error {
	path := fmt.Sprintf("/dashboard/managers/tasks/edit/priority/%d", taskID)
	return c.do(ctx, request{method: http.MethodPatch, path: path, body: map[string]int{"priority": priority}}, nil)
}

func (c *Client) UpdateTaskEstimate(ctx context.Context, taskID int64, estimate float64) error {
	path := fmt.Sprintf("/dashboard/managers/tasks/edit/estimated-time/%d", taskID)
	return c.do(ctx, request{method: http.MethodPatch, path: path, body: map[string]float64{"estimated_time": estimate}}, nil)
}

// AssignUsers adds users to a task and returns the backend message, which
// tells whether anyone new was assigned.
func (c *Client) AssignUsers(ctx context.Context, taskID int64, userIDs ...int64) (string, error) {
	var out MessageResponse
	path := fmt.Sprintf("/dashboard/managers/tasks/assign/%d", taskID)
	if err := c.do(ctx, request{method: http.MethodPost, path: path, body: map[string][]int64{"user_ids": userIDs}}, &out); err != nil {
		return "", err
	}
	return out.Message, nil
}

func (c *Client) UnassignUsers(ctx context.Context, taskID int64, userIDs ...int64) (string, error) {
	var out MessageResponse
	path := fmt.Sprintf("/dashboard/managers/tasks/unassign/%d", taskID)
	if err := c.do(ctx, request{method: http.MethodPost, path: path, body: map[string][]int64{"user_ids": userIDs}}, &out); err != nil {
		return "", err
	}
	return out.Message, nil
}
