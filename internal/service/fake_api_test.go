package service

import (
	"context"
	"errors"
	"sync"

	"github.com/fatim-sangare/frontend-test-nan/internal/domain"
	"github.com/fatim-sangare/frontend-test-nan/internal/dto"
)

var errNotStubbed = errors.New("not stubbed")

// fakeAPI records calls in order and delegates to the Func fields.
type fakeAPI struct {
	mu    sync.Mutex
	calls []string

	ListGroupsFunc       func(ctx context.Context) ([]domain.Group, error)
	CreateGroupFunc      func(ctx context.Context, name string) (domain.Group, error)
	GetGroupFunc         func(ctx context.Context, id string) (domain.Group, error)
	DeleteGroupFunc      func(ctx context.Context, id string) error
	JoinGroupFunc        func(ctx context.Context, code string) (dto.JoinGroupResponse, error)
	LeaveGroupFunc       func(ctx context.Context, id string) error
	RemoveMemberFunc     func(ctx context.Context, groupID, memberID string) error
	ListTasksFunc        func(ctx context.Context) ([]domain.Task, error)
	CreateTaskFunc       func(ctx context.Context, req dto.CreateTaskRequest) (*domain.Task, error)
	GetTaskFunc          func(ctx context.Context, id string) (domain.Task, error)
	UpdateTaskStatusFunc func(ctx context.Context, id string, status domain.Status) (domain.Task, error)
	EditTaskFunc         func(ctx context.Context, id string, patch dto.TaskEditPatch) (domain.Task, error)
	DeleteTaskFunc       func(ctx context.Context, id string) error
	ListGroupTasksFunc   func(ctx context.Context, groupID string) ([]domain.Task, error)
}

func (f *fakeAPI) record(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, name)
}

func (f *fakeAPI) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeAPI) ListGroups(ctx context.Context) ([]domain.Group, error) {
	f.record("ListGroups")
	if f.ListGroupsFunc == nil {
		return nil, nil
	}
	return f.ListGroupsFunc(ctx)
}

func (f *fakeAPI) CreateGroup(ctx context.Context, name string) (domain.Group, error) {
	f.record("CreateGroup")
	if f.CreateGroupFunc == nil {
		return domain.Group{}, errNotStubbed
	}
	return f.CreateGroupFunc(ctx, name)
}

func (f *fakeAPI) GetGroup(ctx context.Context, id string) (domain.Group, error) {
	f.record("GetGroup")
	if f.GetGroupFunc == nil {
		return domain.Group{}, errNotStubbed
	}
	return f.GetGroupFunc(ctx, id)
}

func (f *fakeAPI) DeleteGroup(ctx context.Context, id string) error {
	f.record("DeleteGroup")
	if f.DeleteGroupFunc == nil {
		return nil
	}
	return f.DeleteGroupFunc(ctx, id)
}

func (f *fakeAPI) JoinGroup(ctx context.Context, code string) (dto.JoinGroupResponse, error) {
	f.record("JoinGroup")
	if f.JoinGroupFunc == nil {
		return dto.JoinGroupResponse{}, errNotStubbed
	}
	return f.JoinGroupFunc(ctx, code)
}

func (f *fakeAPI) LeaveGroup(ctx context.Context, id string) error {
	f.record("LeaveGroup")
	if f.LeaveGroupFunc == nil {
		return nil
	}
	return f.LeaveGroupFunc(ctx, id)
}

func (f *fakeAPI) RemoveMember(ctx context.Context, groupID, memberID string) error {
	f.record("RemoveMember")
	if f.RemoveMemberFunc == nil {
		return nil
	}
	return f.RemoveMemberFunc(ctx, groupID, memberID)
}

func (f *fakeAPI) ListTasks(ctx context.Context) ([]domain.Task, error) {
	f.record("ListTasks")
	if f.ListTasksFunc == nil {
		return nil, nil
	}
	return f.ListTasksFunc(ctx)
}

func (f *fakeAPI) CreateTask(ctx context.Context, req dto.CreateTaskRequest) (*domain.Task, error) {
	f.record("CreateTask")
	if f.CreateTaskFunc == nil {
		return nil, errNotStubbed
	}
	return f.CreateTaskFunc(ctx, req)
}

func (f *fakeAPI) GetTask(ctx context.Context, id string) (domain.Task, error) {
	f.record("GetTask")
	if f.GetTaskFunc == nil {
		return domain.Task{}, errNotStubbed
	}
	return f.GetTaskFunc(ctx, id)
}

func (f *fakeAPI) UpdateTaskStatus(ctx context.Context, id string, status domain.Status) (domain.Task, error) {
	f.record("UpdateTaskStatus")
	if f.UpdateTaskStatusFunc == nil {
		return domain.Task{ID: id, Status: status}, nil
	}
	return f.UpdateTaskStatusFunc(ctx, id, status)
}

func (f *fakeAPI) EditTask(ctx context.Context, id string, patch dto.TaskEditPatch) (domain.Task, error) {
	f.record("EditTask")
	if f.EditTaskFunc == nil {
		return domain.Task{}, errNotStubbed
	}
	return f.EditTaskFunc(ctx, id, patch)
}

func (f *fakeAPI) DeleteTask(ctx context.Context, id string) error {
	f.record("DeleteTask")
	if f.DeleteTaskFunc == nil {
		return nil
	}
	return f.DeleteTaskFunc(ctx, id)
}

func (f *fakeAPI) ListGroupTasks(ctx context.Context, groupID string) ([]domain.Task, error) {
	f.record("ListGroupTasks")
	if f.ListGroupTasksFunc == nil {
		return nil, nil
	}
	return f.ListGroupTasksFunc(ctx, groupID)
}
