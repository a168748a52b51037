package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fatim-sangare/frontend-test-nan/internal/auth"
	"github.com/fatim-sangare/frontend-test-nan/internal/domain"
	"github.com/fatim-sangare/frontend-test-nan/internal/service"
	"github.com/fatim-sangare/frontend-test-nan/internal/utils"
)

// taskCard is one rendering of the shared task component. Return is the
// page shown again after a toggle or an edit; AfterDelete is where a deleted
// task's page goes.
type taskCard struct {
	Task        domain.Task
	Editing     bool
	Date        string
	Return      string
	AfterDelete string
	EditLink    string
	DetailLink  string
}

// TaskHandler serves the task details screen and the actions of the shared
// task component.
type TaskHandler struct {
	*Renderer
	svc *service.TaskService
}

func NewTaskHandler(r *Renderer, svc *service.TaskService) *TaskHandler {
	return &TaskHandler{Renderer: r, svc: svc}
}

// Show renders GET /task/:id. ?edit=1 opens the inline editor and ?back= is
// where the page returns after a delete.
func (h *TaskHandler) Show(c *gin.Context) {
	id := c.Param("id")
	back := utils.LocalPath(c.Query("back"), "/")
	t, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		if h.expired(c, err) {
			return
		}
		h.errorPage(c, err, "Impossible de récupérer la tâche.", back)
		return
	}
	self := link("/task/"+id, "back", nonRoot(back))
	card := taskCard{
		Task:        t,
		Editing:     c.Query("edit") != "",
		Date:        h.svc.EditDate(t),
		Return:      self,
		AfterDelete: back,
		EditLink:    link("/task/"+id, "back", nonRoot(back), "edit", "1"),
	}
	h.render(c, http.StatusOK, "task.html", t.Title, struct {
		Card taskCard
		Back string
	}{card, back})
}

// Toggle handles POST /task/:id/toggle. The form carries the status the page
// was showing.
func (h *TaskHandler) Toggle(c *gin.Context) {
	sid, id := auth.Current(c).ID(), c.Param("id")
	current := domain.Status(c.PostForm("status"))
	next := utils.LocalPath(c.PostForm("return"), "/")
	h.submit(c, func(ctx context.Context) outcome {
		if _, err := h.svc.Toggle(ctx, sid, id, current); err != nil {
			return outcome{next: next, err: err, fallback: "Erreur lors de la mise à jour"}
		}
		return outcome{next: next}
	})
}

// Edit handles POST /task/:id/edit. A failed save goes back to the editor.
func (h *TaskHandler) Edit(c *gin.Context) {
	sid, id, form := auth.Current(c).ID(), c.Param("id"), taskForm(c)
	next := utils.LocalPath(c.PostForm("return"), "/")
	retry := utils.LocalPath(c.PostForm("editing"), next)
	h.submit(c, func(ctx context.Context) outcome {
		if _, err := h.svc.Edit(ctx, sid, id, form); err != nil {
			return outcome{next: retry, err: editError(err), fallback: "Erreur lors de la sauvegarde"}
		}
		return outcome{next: next}
	})
}

// Delete handles POST /task/:id/delete.
func (h *TaskHandler) Delete(c *gin.Context) {
	sid, id := auth.Current(c).ID(), c.Param("id")
	stay := utils.LocalPath(c.PostForm("return"), "/")
	next := utils.LocalPath(c.PostForm("after_delete"), stay)
	h.submit(c, func(ctx context.Context) outcome {
		if err := h.svc.Delete(ctx, sid, id); err != nil {
			return outcome{next: stay, err: err, fallback: "Erreur lors de la suppression"}
		}
		return outcome{next: next}
	})
}

func nonRoot(p string) string {
	if p == "/" {
		return ""
	}
	return p
}
