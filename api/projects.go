package api

import (
	"context"
	"fmt"
	"net/http"
)

// Projects lists the projects visible to a user of the given role: a
// manager sees the projects they own, a user those they were invited to.
func (c *Client) Projects(ctx context.Context, role string) ([]Project, error) {
	path := "/users/projects"
	if role == RoleManager {
		path = "/projects/index"
	}

	var out envelope[[]Project]
	if err := c.do(ctx, request{method: http.MethodGet, path: path}, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

func (c *Client) GetProject(ctx context.Context, projectID int64) (*Project, error) {
	var out envelope[Project]
	if err := c.do(ctx, request{method: http.MethodGet, path: fmt.Sprintf("/projects/show/%d", projectID)}, &out); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

// ProjectUsers lists the members of a project.
func (c *Client) ProjectUsers(ctx context.Context, projectID int64) ([]User, error) {
	var out struct {
		Users []User `json:"users"`
	}
	if err := c.do(ctx, request{method: http.MethodGet, path: fmt.Sprintf("/projects/users/%d", projectID)}, &out); err != nil {
		return nil, err
	}
	return out.Users, nil
}

func (c *Client) CreateProject(ctx context.Context, title, description string) (*Project, error) {
	var out envelope[Project]
	body := map[string]string{"title": title, "description": description}
	if err := c.do(ctx, request{method: http.MethodPost, path: "/projects/create", body: body}, &out); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

// InviteToProject adds users to a project and returns the backend message.
func (c *Client) InviteToProject(ctx context.Context, projectID int64, userIDs ...int64) (string, error) {
	var out MessageResponse
	path := fmt.Sprintf("/manager/projects/assign/%d", projectID)
	if err := c.do(ctx, request{method: http.MethodPost, path: path, body: map[string][]int64{"user_ids": userIDs}}, &out); err != nil {
		return "", err
	}
	return out.Message, nil
}

// Users lists every account a manager can invite.
func (c *Client) Users(ctx context.Context) ([]User, error) {
	var out envelope[[]User]
	if err := c.do(ctx, request{method: http.MethodGet, path: "/dashboard/managers/users"}, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}
