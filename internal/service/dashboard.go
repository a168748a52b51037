package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/fatim-sangare/frontend-test-nan/internal/cache"
	"github.com/fatim-sangare/frontend-test-nan/internal/domain"
	"github.com/fatim-sangare/frontend-test-nan/internal/dto"
)

// DashboardService owns the dashboard's groups and tasks lists. The lists
// live in a per-session snapshot; each mutation updates the snapshot the way
// the screen's local state would.
type DashboardService struct {
	api    API
	views  cache.ViewCache
	loc    *time.Location
	logger *slog.Logger
	sf     singleflight.Group
	now    func() time.Time
}

// NewDashboardService creates a DashboardService. If views is nil, every load
// fetches.
func NewDashboardService(api API, views cache.ViewCache, loc *time.Location, logger *slog.Logger) *DashboardService {
	if loc == nil {
		loc = time.Local
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &DashboardService{api: api, views: views, loc: loc, logger: logger, now: time.Now}
}

// Load returns the session's snapshot, fetching groups and tasks when there
// is none. Concurrent loads for one session share a single fetch.
func (s *DashboardService) Load(ctx context.Context, sid string) (cache.Dashboard, error) {
	if s.views == nil || sid == "" {
		return s.fetch(ctx)
	}
	v, err, _ := s.sf.Do("dashboard:"+sid, func() (interface{}, error) {
		if d, err := s.views.Get(ctx, sid); err == nil && d != nil {
			return *d, nil
		}
		d, err := s.fetch(ctx)
		if err != nil {
			return nil, err
		}
		s.store(ctx, sid, d)
		return d, nil
	})
	if err != nil {
		return cache.Dashboard{}, err
	}
	return v.(cache.Dashboard).Clone(), nil
}

// Refresh fetches both lists again and replaces the snapshot.
func (s *DashboardService) Refresh(ctx context.Context, sid string) (cache.Dashboard, error) {
	d, err := s.fetch(ctx)
	if err != nil {
		return cache.Dashboard{}, err
	}
	s.store(ctx, sid, d)
	return d, nil
}

// fetch gets groups and tasks concurrently; the first error wins.
func (s *DashboardService) fetch(ctx context.Context) (cache.Dashboard, error) {
	var d cache.Dashboard
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		groups, err := s.api.ListGroups(gctx)
		d.Groups = groups
		return err
	})
	g.Go(func() error {
		tasks, err := s.api.ListTasks(gctx)
		d.Tasks = tasks
		return err
	})
	if err := g.Wait(); err != nil {
		return cache.Dashboard{}, err
	}
	d.FetchedAt = s.now()
	return d, nil
}

// CreateGroup creates a group, prepends it to the groups list and refetches
// the tasks.
func (s *DashboardService) CreateGroup(ctx context.Context, sid, name string) (domain.Group, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Group{}, ErrEmptyName
	}
	g, err := s.api.CreateGroup(ctx, name)
	if err != nil {
		return domain.Group{}, err
	}
	s.update(ctx, sid, func(d *cache.Dashboard) {
		d.Groups = append([]domain.Group{g}, d.Groups...)
	})
	s.refetchTasks(ctx, sid)
	return g, nil
}

// QuickJoin joins by invite code, then refetches groups and then tasks.
func (s *DashboardService) QuickJoin(ctx context.Context, sid, code string) (dto.JoinGroupResponse, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return dto.JoinGroupResponse{}, ErrEmptyCode
	}
	resp, err := s.api.JoinGroup(ctx, code)
	if err != nil {
		return dto.JoinGroupResponse{}, err
	}
	groups, err := s.api.ListGroups(ctx)
	if err != nil {
		s.logger.Warn("refetch groups", "err", err)
		s.drop(ctx, sid)
		return resp, nil
	}
	s.update(ctx, sid, func(d *cache.Dashboard) { d.Groups = groups })
	s.refetchTasks(ctx, sid)
	return resp, nil
}

// CreatePersonalTask creates a task without a group. The returned task is
// prepended; when the API returns none the tasks are refetched.
func (s *DashboardService) CreatePersonalTask(ctx context.Context, sid string, form TaskForm) (*domain.Task, error) {
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
	})
	if err != nil {
		return nil, err
	}
	if t == nil {
		s.refetchTasks(ctx, sid)
		return nil, nil
	}
	s.update(ctx, sid, func(d *cache.Dashboard) {
		d.Tasks = append([]domain.Task{*t}, d.Tasks...)
	})
	return t, nil
}

// ToggleTask flips a task between done and not done. The snapshot is updated
// before the API call and left as is when the call fails.
func (s *DashboardService) ToggleTask(ctx context.Context, sid, taskID string) (domain.Status, error) {
	d, err := s.Load(ctx, sid)
	if err != nil {
		return "", err
	}
	var next domain.Status
	found := false
	for i := range d.Tasks {
		if d.Tasks[i].ID == taskID {
			next = d.Tasks[i].Status.Toggle()
			d.Tasks[i].Status = next
			found = true
			break
		}
	}
	if !found {
		return "", ErrNotFound
	}
	s.store(ctx, sid, d)

	if _, err := s.api.UpdateTaskStatus(ctx, taskID, next); err != nil {
		return next, err
	}
	return next, nil
}

// EditTask saves title, description and deadline and replaces the task with
// the API's version.
func (s *DashboardService) EditTask(ctx context.Context, sid, taskID string, form TaskForm) (domain.Task, error) {
	patch, err := editPatch(form, s.loc)
	if err != nil {
		return domain.Task{}, err
	}
	updated, err := s.api.EditTask(ctx, taskID, patch)
	if err != nil {
		return domain.Task{}, err
	}
	if updated.ID == "" {
		updated.ID = taskID
	}
	s.update(ctx, sid, func(d *cache.Dashboard) {
		for i := range d.Tasks {
			if d.Tasks[i].ID == updated.ID {
				d.Tasks[i] = updated
			}
		}
	})
	return updated, nil
}

// DeleteTask deletes a task and removes it from the list.
func (s *DashboardService) DeleteTask(ctx context.Context, sid, taskID string) error {
	if err := s.api.DeleteTask(ctx, taskID); err != nil {
		return err
	}
	s.update(ctx, sid, func(d *cache.Dashboard) {
		kept := d.Tasks[:0]
		for _, t := range d.Tasks {
			if t.ID != taskID {
				kept = append(kept, t)
			}
		}
		d.Tasks = kept
	})
	return nil
}

// Invalidate forgets the session's snapshot so the next load fetches.
func (s *DashboardService) Invalidate(ctx context.Context, sid string) {
	s.drop(ctx, sid)
}

func (s *DashboardService) refetchTasks(ctx context.Context, sid string) {
	tasks, err := s.api.ListTasks(ctx)
	if err != nil {
		s.logger.Warn("refetch tasks", "err", err)
		s.drop(ctx, sid)
		return
	}
	s.update(ctx, sid, func(d *cache.Dashboard) { d.Tasks = tasks })
}

// update applies fn to the cached snapshot, if there is one. Without a
// snapshot the next Load fetches anyway.
func (s *DashboardService) update(ctx context.Context, sid string, fn func(d *cache.Dashboard)) {
	if s.views == nil || sid == "" {
		return
	}
	d, err := s.views.Get(ctx, sid)
	if err != nil || d == nil {
		return
	}
	fn(d)
	s.store(ctx, sid, *d)
}

func (s *DashboardService) store(ctx context.Context, sid string, d cache.Dashboard) {
	if s.views == nil || sid == "" {
		return
	}
	if err := s.views.Set(ctx, sid, d); err != nil {
		s.logger.Warn("store dashboard snapshot", "err", err)
	}
}

func (s *DashboardService) drop(ctx context.Context, sid string) {
	if s.views == nil || sid == "" {
		return
	}
	if err := s.views.Drop(ctx, sid); err != nil {
		s.logger.Warn("drop dashboard snapshot", "err", err)
	}
}

func editPatch(form TaskForm, loc *time.Location) (dto.TaskEditPatch, error) {
	title := strings.TrimSpace(form.Title)
	if title == "" {
		return dto.TaskEditPatch{}, ErrEmptyTitle
	}
	deadline, err := domain.EndOfDay(form.Date, loc)
	if err != nil {
		return dto.TaskEditPatch{}, err
	}
	return dto.TaskEditPatch{
		Title:       title,
		Description: optionalText(form.Description),
		Deadline:    deadline,
	}, nil
}
