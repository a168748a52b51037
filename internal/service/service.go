// Package service holds the view-state logic behind the screens: what is
// fetched, in which order, and how local state follows each mutation.
package service

import (
	"context"
	"errors"
	"strings"

	"github.com/fatim-sangare/frontend-test-nan/internal/domain"
	"github.com/fatim-sangare/frontend-test-nan/internal/dto"
)

var (
	ErrEmptyTitle = errors.New("title is required")
	ErrEmptyName  = errors.New("group name is required")
	ErrEmptyCode  = errors.New("invite code is required")
	ErrNotFound   = errors.New("not found")
)

// API is the part of the task API the services use. *api.Client satisfies it.
type API interface {
	ListGroups(ctx context.Context) ([]domain.Group, error)
	CreateGroup(ctx context.Context, name string) (domain.Group, error)
	GetGroup(ctx context.Context, id string) (domain.Group, error)
	DeleteGroup(ctx context.Context, id string) error
	JoinGroup(ctx context.Context, inviteCode string) (dto.JoinGroupResponse, error)
	LeaveGroup(ctx context.Context, id string) error
	RemoveMember(ctx context.Context, groupID, memberID string) error

	ListTasks(ctx context.Context) ([]domain.Task, error)
	CreateTask(ctx context.Context, req dto.CreateTaskRequest) (*domain.Task, error)
	GetTask(ctx context.Context, id string) (domain.Task, error)
	UpdateTaskStatus(ctx context.Context, id string, status domain.Status) (domain.Task, error)
	EditTask(ctx context.Context, id string, patch dto.TaskEditPatch) (domain.Task, error)
	DeleteTask(ctx context.Context, id string) error
	ListGroupTasks(ctx context.Context, groupID string) ([]domain.Task, error)
}

// TaskForm is what the create and edit forms submit. Date is a calendar
// date, "2006-01-02", or empty.
type TaskForm struct {
	Title       string
	Description string
	Date        string
}

func optionalText(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
