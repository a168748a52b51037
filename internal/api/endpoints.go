package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/fatim-sangare/frontend-test-nan/internal/domain"
	"github.com/fatim-sangare/frontend-test-nan/internal/dto"
)

// Register creates an account.
func (c *Client) Register(ctx context.Context, email, password string) error {
	return c.do(ctx, http.MethodPost, "/auth/register", dto.Credentials{Email: email, Password: password}, nil)
}

// Login exchanges credentials for a token and the user record.
func (c *Client) Login(ctx context.Context, email, password string) (dto.LoginResponse, error) {
	var out dto.LoginResponse
	err := c.do(ctx, http.MethodPost, "/auth/login", dto.Credentials{Email: email, Password: password}, &out)
	return out, err
}

// ListGroups returns the groups the caller belongs to.
func (c *Client) ListGroups(ctx context.Context) ([]domain.Group, error) {
	var out []domain.Group
	err := c.do(ctx, http.MethodGet, "/groups", nil, &out)
	return out, err
}

// CreateGroup creates a group owned by the caller.
func (c *Client) CreateGroup(ctx context.Context, name string) (domain.Group, error) {
	var out domain.Group
	err := c.do(ctx, http.MethodPost, "/groups", dto.CreateGroupRequest{Name: name}, &out)
	return out, err
}

// GetGroup fetches one group.
func (c *Client) GetGroup(ctx context.Context, id string) (domain.Group, error) {
	var out domain.Group
	err := c.do(ctx, http.MethodGet, "/groups/"+url.PathEscape(id), nil, &out)
	return out, err
}

// DeleteGroup deletes a group.
func (c *Client) DeleteGroup(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/groups/"+url.PathEscape(id), nil, nil)
}

// JoinGroup joins the group identified by an invite code.
func (c *Client) JoinGroup(ctx context.Context, inviteCode string) (dto.JoinGroupResponse, error) {
	var out dto.JoinGroupResponse
	err := c.do(ctx, http.MethodPost, "/groups/join/"+url.PathEscape(inviteCode), nil, &out)
	return out, err
}

// LeaveGroup removes the caller from a group.
func (c *Client) LeaveGroup(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodPost, "/groups/"+url.PathEscape(id)+"/leave", nil, nil)
}

// RemoveMember removes another member from a group.
func (c *Client) RemoveMember(ctx context.Context, groupID, memberID string) error {
	return c.do(ctx, http.MethodDelete, "/groups/"+url.PathEscape(groupID)+"/members/"+url.PathEscape(memberID), nil, nil)
}

// ListTasks returns the caller's tasks, personal and group.
func (c *Client) ListTasks(ctx context.Context) ([]domain.Task, error) {
	var out []domain.Task
	err := c.do(ctx, http.MethodGet, "/tasks", nil, &out)
	return out, err
}

// CreateTask creates a task. The returned task is nil when the API answered
// without a body.
func (c *Client) CreateTask(ctx context.Context, req dto.CreateTaskRequest) (*domain.Task, error) {
	var out domain.Task
	if err := c.do(ctx, http.MethodPost, "/tasks", req, &out); err != nil {
		return nil, err
	}
	if out.ID == "" {
		return nil, nil
	}
	return &out, nil
}

// GetTask fetches one task.
func (c *Client) GetTask(ctx context.Context, id string) (domain.Task, error) {
	var out domain.Task
	err := c.do(ctx, http.MethodGet, "/tasks/"+url.PathEscape(id), nil, &out)
	return out, err
}

// UpdateTaskStatus sets a task's status.
func (c *Client) UpdateTaskStatus(ctx context.Context, id string, status domain.Status) (domain.Task, error) {
	var out domain.Task
	err := c.do(ctx, http.MethodPut, "/tasks/"+url.PathEscape(id), dto.TaskStatusPatch{Status: status}, &out)
	return out, err
}

// EditTask replaces title, description and deadline.
func (c *Client) EditTask(ctx context.Context, id string, patch dto.TaskEditPatch) (domain.Task, error) {
	var out domain.Task
	err := c.do(ctx, http.MethodPut, "/tasks/"+url.PathEscape(id), patch, &out)
	return out, err
}

// DeleteTask deletes a task.
func (c *Client) DeleteTask(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/tasks/"+url.PathEscape(id), nil, nil)
}

// ListGroupTasks returns the tasks of one group.
func (c *Client) ListGroupTasks(ctx context.Context, groupID string) ([]domain.Task, error) {
	var out []domain.Task
	err := c.do(ctx, http.MethodGet, "/tasks/group/"+url.PathEscape(groupID), nil, &out)
	return out, err
}
