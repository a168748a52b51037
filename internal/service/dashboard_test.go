package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fatim-sangare/frontend-test-nan/internal/cache"
	"github.com/fatim-sangare/frontend-test-nan/internal/domain"
	"github.com/fatim-sangare/frontend-test-nan/internal/dto"
)

const sid = "sid-1"

func newDashboard(api API) (*DashboardService, *cache.MemoryViewCache) {
	views := cache.NewMemoryViewCache(time.Minute)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewDashboardService(api, views, time.UTC, logger), views
}

func seeded(t *testing.T, views *cache.MemoryViewCache, d cache.Dashboard) {
	t.Helper()
	require.NoError(t, views.Set(context.Background(), sid, d))
}

func TestLoadFetchesOnceThenServesSnapshot(t *testing.T) {
	var listCalls atomic.Int32
	f := &fakeAPI{
		ListGroupsFunc: func(context.Context) ([]domain.Group, error) {
			return []domain.Group{{ID: "g1"}}, nil
		},
		ListTasksFunc: func(context.Context) ([]domain.Task, error) {
			listCalls.Add(1)
			return []domain.Task{{ID: "t1"}}, nil
		},
	}
	svc, _ := newDashboard(f)
	ctx := context.Background()

	d, err := svc.Load(ctx, sid)
	require.NoError(t, err)
	assert.Len(t, d.Groups, 1)
	assert.Len(t, d.Tasks, 1)

	_, err = svc.Load(ctx, sid)
	require.NoError(t, err)
	assert.Equal(t, int32(1), listCalls.Load())
}

func TestLoadConcurrentCallersShareOneFetch(t *testing.T) {
	release := make(chan struct{})
	var listCalls atomic.Int32
	f := &fakeAPI{
		ListTasksFunc: func(context.Context) ([]domain.Task, error) {
			listCalls.Add(1)
			<-release
			return nil, nil
		},
	}
	svc, _ := newDashboard(f)

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = svc.Load(context.Background(), sid)
		}()
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()
	assert.Equal(t, int32(1), listCalls.Load())
}

func TestLoadFirstErrorWins(t *testing.T) {
	boom := errors.New("boom")
	f := &fakeAPI{
		ListGroupsFunc: func(context.Context) ([]domain.Group, error) { return nil, boom },
	}
	svc, views := newDashboard(f)
	_, err := svc.Load(context.Background(), sid)
	assert.ErrorIs(t, err, boom)

	d, _ := views.Get(context.Background(), sid)
	assert.Nil(t, d, "failed fetch is not cached")
}

func TestCreateGroupPrependsThenRefetchesTasks(t *testing.T) {
	f := &fakeAPI{
		CreateGroupFunc: func(_ context.Context, name string) (domain.Group, error) {
			return domain.Group{ID: "g2", Name: name}, nil
		},
		ListTasksFunc: func(context.Context) ([]domain.Task, error) {
			return []domain.Task{{ID: "fresh"}}, nil
		},
	}
	svc, views := newDashboard(f)
	seeded(t, views, cache.Dashboard{Groups: []domain.Group{{ID: "g1"}}})

	g, err := svc.CreateGroup(context.Background(), sid, "  Famille ")
	require.NoError(t, err)
	assert.Equal(t, "Famille", g.Name)
	assert.Equal(t, []string{"CreateGroup", "ListTasks"}, f.Calls())

	d, _ := views.Get(context.Background(), sid)
	require.Len(t, d.Groups, 2)
	assert.Equal(t, "g2", d.Groups[0].ID)
	assert.Equal(t, "fresh", d.Tasks[0].ID)
}

func TestCreateGroupBlankNameSendsNothing(t *testing.T) {
	f := &fakeAPI{}
	svc, _ := newDashboard(f)
	_, err := svc.CreateGroup(context.Background(), sid, "   ")
	assert.ErrorIs(t, err, ErrEmptyName)
	assert.Empty(t, f.Calls())
}

func TestQuickJoinRefetchesGroupsThenTasks(t *testing.T) {
	var gotCode string
	f := &fakeAPI{
		JoinGroupFunc: func(_ context.Context, code string) (dto.JoinGroupResponse, error) {
			gotCode = code
			return dto.JoinGroupResponse{Message: "ok", Group: domain.Group{ID: "g9"}}, nil
		},
		ListGroupsFunc: func(context.Context) ([]domain.Group, error) {
			return []domain.Group{{ID: "g9"}, {ID: "g1"}}, nil
		},
		ListTasksFunc: func(context.Context) ([]domain.Task, error) {
			return []domain.Task{{ID: "gt", Group: &domain.Ref{ID: "g9"}}}, nil
		},
	}
	svc, views := newDashboard(f)
	seeded(t, views, cache.Dashboard{Groups: []domain.Group{{ID: "g1"}}})

	resp, err := svc.QuickJoin(context.Background(), sid, " ABC123 ")
	require.NoError(t, err)
	assert.Equal(t, "g9", resp.Group.ID)
	assert.Equal(t, "ABC123", gotCode)
	assert.Equal(t, []string{"JoinGroup", "ListGroups", "ListTasks"}, f.Calls())

	d, _ := views.Get(context.Background(), sid)
	assert.Len(t, d.Groups, 2)
	assert.Len(t, d.Tasks, 1)
}

func TestQuickJoinBlankCodeSendsNothing(t *testing.T) {
	f := &fakeAPI{}
	svc, _ := newDashboard(f)
	_, err := svc.QuickJoin(context.Background(), sid, "  ")
	assert.ErrorIs(t, err, ErrEmptyCode)
	assert.Empty(t, f.Calls())
}

func TestCreatePersonalTaskLandsInPersonalPartition(t *testing.T) {
	var sent dto.CreateTaskRequest
	f := &fakeAPI{
		CreateTaskFunc: func(_ context.Context, req dto.CreateTaskRequest) (*domain.Task, error) {
			sent = req
			return &domain.Task{ID: "new", Title: req.Title, Status: domain.StatusTodo}, nil
		},
	}
	svc, views := newDashboard(f)
	seeded(t, views, cache.Dashboard{Tasks: []domain.Task{{ID: "gt", Group: &domain.Ref{ID: "g1"}}}})

	task, err := svc.CreatePersonalTask(context.Background(), sid, TaskForm{Title: " Courses ", Date: "2024-03-05"})
	require.NoError(t, err)
	require.NotNil(t, task)

	assert.Equal(t, "Courses", sent.Title)
	assert.Empty(t, sent.Group)
	assert.Nil(t, sent.Description, "blank description is sent as null")
	require.NotNil(t, sent.Deadline)
	assert.Equal(t, "2024-03-05", domain.LocalDate(sent.Deadline, time.UTC))

	d, err := svc.Load(context.Background(), sid)
	require.NoError(t, err)
	personal, group := domain.Partition(d.Tasks)
	require.Len(t, personal, 1)
	assert.Equal(t, "new", personal[0].ID)
	require.Len(t, group, 1)
	assert.Equal(t, "gt", group[0].ID)
	assert.Equal(t, "new", d.Tasks[0].ID, "prepended")
}

func TestCreatePersonalTaskWithoutResultRefetches(t *testing.T) {
	f := &fakeAPI{
		CreateTaskFunc: func(context.Context, dto.CreateTaskRequest) (*domain.Task, error) { return nil, nil },
		ListTasksFunc: func(context.Context) ([]domain.Task, error) {
			return []domain.Task{{ID: "from-server"}}, nil
		},
	}
	svc, views := newDashboard(f)
	seeded(t, views, cache.Dashboard{})

	task, err := svc.CreatePersonalTask(context.Background(), sid, TaskForm{Title: "x"})
	require.NoError(t, err)
	assert.Nil(t, task)
	assert.Equal(t, []string{"CreateTask", "ListTasks"}, f.Calls())

	d, _ := views.Get(context.Background(), sid)
	assert.Equal(t, "from-server", d.Tasks[0].ID)
}

func TestCreatePersonalTaskValidation(t *testing.T) {
	f := &fakeAPI{}
	svc, _ := newDashboard(f)

	_, err := svc.CreatePersonalTask(context.Background(), sid, TaskForm{Title: "  "})
	assert.ErrorIs(t, err, ErrEmptyTitle)
	_, err = svc.CreatePersonalTask(context.Background(), sid, TaskForm{Title: "x", Date: "05/03/2024"})
	assert.ErrorIs(t, err, domain.ErrInvalidDate)
	assert.Empty(t, f.Calls())
}

func TestToggleIsOptimisticAndNotRolledBack(t *testing.T) {
	boom := errors.New("boom")
	f := &fakeAPI{
		UpdateTaskStatusFunc: func(context.Context, string, domain.Status) (domain.Task, error) {
			return domain.Task{}, boom
		},
	}
	svc, views := newDashboard(f)
	seeded(t, views, cache.Dashboard{Tasks: []domain.Task{{ID: "t1", Status: domain.StatusTodo}}})

	next, err := svc.ToggleTask(context.Background(), sid, "t1")
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, domain.StatusDone, next)

	d, _ := views.Get(context.Background(), sid)
	assert.Equal(t, domain.StatusDone, d.Tasks[0].Status)
}

func TestToggleTwiceFromDone(t *testing.T) {
	var sent []domain.Status
	f := &fakeAPI{
		UpdateTaskStatusFunc: func(_ context.Context, id string, status domain.Status) (domain.Task, error) {
			sent = append(sent, status)
			return domain.Task{ID: id, Status: status}, nil
		},
	}
	svc, views := newDashboard(f)
	seeded(t, views, cache.Dashboard{Tasks: []domain.Task{{ID: "t1", Status: domain.StatusDone}}})

	_, err := svc.ToggleTask(context.Background(), sid, "t1")
	require.NoError(t, err)
	_, err = svc.ToggleTask(context.Background(), sid, "t1")
	require.NoError(t, err)

	assert.Equal(t, []domain.Status{domain.StatusInProgress, domain.StatusDone}, sent)
	d, _ := views.Get(context.Background(), sid)
	assert.Equal(t, domain.StatusDone, d.Tasks[0].Status)
}

func TestToggleUnknownTask(t *testing.T) {
	svc, views := newDashboard(&fakeAPI{})
	seeded(t, views, cache.Dashboard{})
	_, err := svc.ToggleTask(context.Background(), sid, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestEditReplacesWithServerVersion(t *testing.T) {
	var sent dto.TaskEditPatch
	f := &fakeAPI{
		EditTaskFunc: func(_ context.Context, id string, patch dto.TaskEditPatch) (domain.Task, error) {
			sent = patch
			return domain.Task{ID: id, Title: patch.Title, Status: domain.StatusInProgress}, nil
		},
	}
	svc, views := newDashboard(f)
	seeded(t, views, cache.Dashboard{Tasks: []domain.Task{
		{ID: "t0", Title: "other"},
		{ID: "t1", Title: "old", Description: "desc"},
	}})

	_, err := svc.EditTask(context.Background(), sid, "t1", TaskForm{Title: "new", Description: "  "})
	require.NoError(t, err)
	assert.Nil(t, sent.Description)
	assert.Nil(t, sent.Deadline)

	d, _ := views.Get(context.Background(), sid)
	assert.Equal(t, "other", d.Tasks[0].Title)
	assert.Equal(t, "new", d.Tasks[1].Title)
	assert.Empty(t, d.Tasks[1].Description)
	assert.Equal(t, domain.StatusInProgress, d.Tasks[1].Status)
}

func TestDeleteRemovesOnlyOnSuccess(t *testing.T) {
	fail := true
	f := &fakeAPI{
		DeleteTaskFunc: func(context.Context, string) error {
			if fail {
				return errors.New("nope")
			}
			return nil
		},
	}
	svc, views := newDashboard(f)
	seeded(t, views, cache.Dashboard{Tasks: []domain.Task{{ID: "t1"}, {ID: "t2"}}})

	assert.Error(t, svc.DeleteTask(context.Background(), sid, "t1"))
	d, _ := views.Get(context.Background(), sid)
	assert.Len(t, d.Tasks, 2)

	fail = false
	require.NoError(t, svc.DeleteTask(context.Background(), sid, "t1"))
	d, _ = views.Get(context.Background(), sid)
	require.Len(t, d.Tasks, 1)
	assert.Equal(t, "t2", d.Tasks[0].ID)
}
