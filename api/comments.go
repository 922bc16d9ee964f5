package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// Comments lists the comments of a task. The backend nests them in arrays of
// arbitrary depth; they are flattened in order.
func (c *Client) Comments(ctx context.Context, taskID int64) ([]Comment, error) {
	var out envelope[json.RawMessage]
	if err := c.do(ctx, request{method: http.MethodGet, path: fmt.Sprintf("/users/comments/%d", taskID)}, &out); err != nil {
		return nil, err
	}

	comments := []Comment{}
	if err := flattenComments(out.Data, &comments); err != nil {
		return nil, fmt.Errorf("failed to decode comments: %w", err)
	}
	return comments, nil
}

func flattenComments(raw json.RawMessage, into *[]Comment) error {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}

	var list []json.RawMessage
	if err := json.Unmarshal(raw, &list); err == nil {
		for _, item := range list {
			if err := flattenComments(item, into); err != nil {
				return err
			}
		}
		return nil
	}

	var comment Comment
	if err := json.Unmarshal(raw, &comment); err != nil {
		return err
	}
	*into = append(*into, comment)
	return nil
}

// CreateComment posts a comment and returns it with the backend message.
func (c *Client) CreateComment(ctx context.Context, taskID int64, text string) (*Comment, string, error) {
	var out envelope[Comment]
	path := fmt.Sprintf("/dashboard/managers/comments/create/%d", taskID)
	if err := c.do(ctx, request{method: http.MethodPost, path: path, body: map[string]string{"comment": text}}, &out); err != nil {
		return nil, "", err
	}
	return &out.Data, out.Message, nil
}

func (c *Client) UpdateComment(ctx context.Context, commentID int64, text string) error {
	path := fmt.Sprintf("/dashboard/managers/comments/update/%d", commentID)
	return c.do(ctx, request{method: http.MethodPatch, path: path, body: map[string]string{"comment": text}}, nil)
}

// DeleteComment removes a comment and returns the backend message.
func (c *Client) DeleteComment(ctx context.Context, commentID int64) (string, error) {
	var out MessageResponse
	path := fmt.Sprintf("/dashboard/managers/comments/delete/%d", commentID)
	if err := c.do(ctx, request{method: http.MethodDelete, path: path}, &out); err != nil {
		return "", err
	}
	return out.Message, nil
}
