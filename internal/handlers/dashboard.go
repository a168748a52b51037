package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fatim-sangare/frontend-test-nan/internal/auth"
	"github.com/fatim-sangare/frontend-test-nan/internal/cache"
	"github.com/fatim-sangare/frontend-test-nan/internal/domain"
	"github.com/fatim-sangare/frontend-test-nan/internal/service"
)

// DashboardHandler serves the home screen: groups, quick join and personal
// tasks.
type DashboardHandler struct {
	*Renderer
	svc *service.DashboardService
}

func NewDashboardHandler(r *Renderer, svc *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{Renderer: r, svc: svc}
}

type dashboardView struct {
	Groups   []domain.Group
	Personal []domain.Task
	Shared   []domain.Task
	Editing  *editView
}

type editView struct {
	Task domain.Task
	Date string
}

// Index renders the dashboard. ?edit=<task id> opens the edit dialog for a
// personal task.
func (h *DashboardHandler) Index(c *gin.Context) {
	sid := auth.Current(c).ID()
	d, err := h.svc.Load(c.Request.Context(), sid)
	if err != nil {
		if h.expired(c, err) {
			return
		}
		h.render(c, http.StatusOK, "dashboard.html", "Tableau de bord", dashboardView{},
			cache.Notice{Kind: cache.KindError, Text: message(err, "Erreur lors du chargement")})
		return
	}

	v := dashboardView{Groups: d.Groups}
	v.Personal, v.Shared = domain.Partition(d.Tasks)
	if id := c.Query("edit"); id != "" {
		for _, t := range v.Personal {
			if t.ID == id {
				v.Editing = &editView{Task: t, Date: domain.LocalDate(t.Deadline, h.loc)}
				break
			}
		}
	}
	h.render(c, http.StatusOK, "dashboard.html", "Tableau de bord", v)
}

// CreateGroup handles POST /groups.
func (h *DashboardHandler) CreateGroup(c *gin.Context) {
	sid, name := auth.Current(c).ID(), c.PostForm("name")
	h.submit(c, func(ctx context.Context) outcome {
		if _, err := h.svc.CreateGroup(ctx, sid, name); err != nil {
			return outcome{next: "/", err: err, fallback: "Erreur lors de la création du groupe"}
		}
		return outcome{next: "/", info: "Groupe créé avec succès !"}
	})
}

// QuickJoin handles POST /join/quick.
func (h *DashboardHandler) QuickJoin(c *gin.Context) {
	sid, code := auth.Current(c).ID(), c.PostForm("code")
	h.submit(c, func(ctx context.Context) outcome {
		if _, err := h.svc.QuickJoin(ctx, sid, code); err != nil {
			return outcome{next: "/", err: err, fallback: "Erreur lors de la jonction"}
		}
		return outcome{next: "/", info: "Groupe rejoint !"}
	})
}

// CreateTask handles POST /tasks, a personal task.
func (h *DashboardHandler) CreateTask(c *gin.Context) {
	sid, form := auth.Current(c).ID(), taskForm(c)
	h.submit(c, func(ctx context.Context) outcome {
		if _, err := h.svc.CreatePersonalTask(ctx, sid, form); err != nil {
			return outcome{next: "/", err: err, fallback: "Erreur lors de la création de la tâche"}
		}
		return outcome{next: "/", info: "Tâche personnelle créée !"}
	})
}

// ToggleTask handles POST /tasks/:id/toggle.
func (h *DashboardHandler) ToggleTask(c *gin.Context) {
	sid, id := auth.Current(c).ID(), c.Param("id")
	h.submit(c, func(ctx context.Context) outcome {
		if _, err := h.svc.ToggleTask(ctx, sid, id); err != nil {
			return outcome{next: "/", err: err, fallback: "Erreur lors de la mise à jour du statut"}
		}
		return outcome{next: "/"}
	})
}

// EditTask handles POST /tasks/:id/edit. A failed save reopens the dialog.
func (h *DashboardHandler) EditTask(c *gin.Context) {
	sid, id, form := auth.Current(c).ID(), c.Param("id"), taskForm(c)
	h.submit(c, func(ctx context.Context) outcome {
		if _, err := h.svc.EditTask(ctx, sid, id, form); err != nil {
			return outcome{next: link("/", "edit", id), err: editError(err), fallback: "Erreur lors de la modification"}
		}
		return outcome{next: "/", info: "Tâche mise à jour !"}
	})
}

// DeleteTask handles POST /tasks/:id/delete.
func (h *DashboardHandler) DeleteTask(c *gin.Context) {
	sid, id := auth.Current(c).ID(), c.Param("id")
	h.submit(c, func(ctx context.Context) outcome {
		if err := h.svc.DeleteTask(ctx, sid, id); err != nil {
			return outcome{next: "/", err: err, fallback: "Erreur lors de la suppression"}
		}
		return outcome{next: "/"}
	})
}
