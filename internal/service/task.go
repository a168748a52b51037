package service

import (
	"context"
	"time"

	"github.com/fatim-sangare/frontend-test-nan/internal/domain"
)

// TaskService backs the task details screen and the shared task component.
// Unlike the dashboard it keeps no local list: after each change the page
// fetches the task again.
type TaskService struct {
	api   API
	stale Invalidator
	loc   *time.Location
}

func NewTaskService(api API, stale Invalidator, loc *time.Location) *TaskService {
	if loc == nil {
		loc = time.Local
	}
	return &TaskService{api: api, stale: stale, loc: loc}
}

// Get fetches one task.
func (s *TaskService) Get(ctx context.Context, id string) (domain.Task, error) {
	return s.api.GetTask(ctx, id)
}

// Toggle flips the task's status starting from current, the status the page
// was showing. An unknown current status is looked up first.
func (s *TaskService) Toggle(ctx context.Context, sid, id string, current domain.Status) (domain.Status, error) {
	if !current.Valid() {
		t, err := s.api.GetTask(ctx, id)
		if err != nil {
			return "", err
		}
		current = t.Status
	}
	next := current.Toggle()
	if _, err := s.api.UpdateTaskStatus(ctx, id, next); err != nil {
		return "", err
	}
	s.invalidate(ctx, sid)
	return next, nil
}

// Edit saves title, description and deadline.
func (s *TaskService) Edit(ctx context.Context, sid, id string, form TaskForm) (domain.Task, error) {
	patch, err := editPatch(form, s.loc)
	if err != nil {
		return domain.Task{}, err
	}
	t, err := s.api.EditTask(ctx, id, patch)
	if err != nil {
		return domain.Task{}, err
	}
	s.invalidate(ctx, sid)
	return t, nil
}

// Delete deletes the task.
func (s *TaskService) Delete(ctx context.Context, sid, id string) error {
	if err := s.api.DeleteTask(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, sid)
	return nil
}

// EditDate is the edit form's prefilled date for t.
func (s *TaskService) EditDate(t domain.Task) string {
	return domain.LocalDate(t.Deadline, s.loc)
}

func (s *TaskService) invalidate(ctx context.Context, sid string) {
	if s.stale != nil {
		s.stale.Invalidate(ctx, sid)
	}
}
