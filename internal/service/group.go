package service

import (
	"context"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/fatim-sangare/frontend-test-nan/internal/domain"
	"github.com/fatim-sangare/frontend-test-nan/internal/dto"
)

// GroupPage is what the group details screen shows.
type GroupPage struct {
	Group domain.Group
	Tasks []domain.Task
}

// Invalidator forgets a session's dashboard snapshot. *DashboardService
// satisfies it.
type Invalidator interface {
	Invalidate(ctx context.Context, sid string)
}

// GroupService backs the group details and join screens. Every successful
// mutation makes the dashboard snapshot stale.
type GroupService struct {
	api   API
	stale Invalidator
	loc   *time.Location
}

func NewGroupService(api API, stale Invalidator, loc *time.Location) *GroupService {
	if loc == nil {
		loc = time.Local
	}
	return &GroupService{api: api, stale: stale, loc: loc}
}

// Page fetches the group and its tasks concurrently.
func (s *GroupService) Page(ctx context.Context, groupID string) (GroupPage, error) {
	var p GroupPage
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		group, err := s.api.GetGroup(gctx, groupID)
		p.Group = group
		return err
	})
	g.Go(func() error {
		tasks, err := s.api.ListGroupTasks(gctx, groupID)
		p.Tasks = tasks
		return err
	})
	if err := g.Wait(); err != nil {
		return GroupPage{}, err
	}
	return p, nil
}

// CreateTask creates a task in the group.
func (s *GroupService) CreateTask(ctx context.Context, sid, groupID string, form TaskForm) (*domain.Task, error) {
	title := strings.TrimSpace(form.Title)
	if title == "" {
		return nil, ErrEmptyTitle
	}
	deadline, err := domain.EndOfDay(form.Date, s.loc)
	if err != nil {
		return nil, err
	}
	t, err := s.api.CreateTask(ctx, dto.CreateTaskRequest{
		Title:       title,
		Description: optionalText(form.Description),
		Deadline:    deadline,
		Group:       groupID,
	})
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, sid)
	return t, nil
}

// RemoveMember removes another member. Their tasks in the group are
// unassigned by the API.
func (s *GroupService) RemoveMember(ctx context.Context, sid, groupID, memberID string) error {
	if err := s.api.RemoveMember(ctx, groupID, memberID); err != nil {
		return err
	}
	s.invalidate(ctx, sid)
	return nil
}

// Leave removes the caller from the group.
func (s *GroupService) Leave(ctx context.Context, sid, groupID string) error {
	if err := s.api.LeaveGroup(ctx, groupID); err != nil {
		return err
	}
	s.invalidate(ctx, sid)
	return nil
}

// Delete deletes the group.
func (s *GroupService) Delete(ctx context.Context, sid, groupID string) error {
	if err := s.api.DeleteGroup(ctx, groupID); err != nil {
		return err
	}
	s.invalidate(ctx, sid)
	return nil
}

// Join joins by invite code and returns the joined group. A blank code sends
// nothing.
func (s *GroupService) Join(ctx context.Context, sid, code string) (domain.Group, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return domain.Group{}, ErrEmptyCode
	}
	resp, err := s.api.JoinGroup(ctx, code)
	if err != nil {
		return domain.Group{}, err
	}
	s.invalidate(ctx, sid)
	return resp.Group, nil
}

func (s *GroupService) invalidate(ctx context.Context, sid string) {
	if s.stale != nil {
		s.stale.Invalidate(ctx, sid)
	}
}
