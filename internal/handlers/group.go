package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/fatim-sangare/frontend-test-nan/internal/auth"
	"github.com/fatim-sangare/frontend-test-nan/internal/domain"
	"github.com/fatim-sangare/frontend-test-nan/internal/service"
)

// GroupHandler serves the group details and join screens.
type GroupHandler struct {
	*Renderer
	svc *service.GroupService
}

func NewGroupHandler(r *Renderer, svc *service.GroupService) *GroupHandler {
	return &GroupHandler{Renderer: r, svc: svc}
}

type memberView struct {
	domain.User
	Removable bool
}

type groupView struct {
	Group   domain.Group
	Can     domain.Capabilities
	Members []memberView
	Cards   []taskCard
}

// Show renders GET /groups/:id. ?edit=<task id> opens that task's editor.
func (h *GroupHandler) Show(c *gin.Context) {
	id := c.Param("id")
	viewer := auth.Current(c).User()
	p, err := h.svc.Page(c.Request.Context(), id)
	if err != nil {
		if h.expired(c, err) {
			return
		}
		h.errorPage(c, err, "Erreur", "/")
		return
	}

	self := "/groups/" + id
	v := groupView{Group: p.Group, Can: domain.CapabilitiesFor(p.Group, viewer)}
	for _, m := range p.Group.Members {
		v.Members = append(v.Members, memberView{User: m, Removable: v.Can.CanRemoveMembers && m.ID != viewer.ID})
	}
	editing := c.Query("edit")
	for _, t := range p.Tasks {
		v.Cards = append(v.Cards, taskCard{
			Task:        t,
			Editing:     t.ID == editing,
			Date:        domain.LocalDate(t.Deadline, h.loc),
			Return:      self,
			AfterDelete: self,
			EditLink:    link(self, "edit", t.ID),
			DetailLink:  link("/task/"+t.ID, "back", self),
		})
	}
	h.render(c, http.StatusOK, "group.html", p.Group.Name, v)
}

// CreateTask handles POST /groups/:id/tasks.
func (h *GroupHandler) CreateTask(c *gin.Context) {
	sid, id, form := auth.Current(c).ID(), c.Param("id"), taskForm(c)
	self := "/groups/" + id
	h.submit(c, func(ctx context.Context) outcome {
		if _, err := h.svc.CreateTask(ctx, sid, id, form); err != nil {
			return outcome{next: self, err: err, fallback: "Erreur"}
		}
		return outcome{next: self}
	})
}

// RemoveMember handles POST /groups/:id/members/:memberId/remove.
func (h *GroupHandler) RemoveMember(c *gin.Context) {
	sid, id, member := auth.Current(c).ID(), c.Param("id"), c.Param("memberId")
	self := "/groups/" + id
	h.submit(c, func(ctx context.Context) outcome {
		if err := h.svc.RemoveMember(ctx, sid, id, member); err != nil {
			return outcome{next: self, err: err, fallback: "Erreur"}
		}
		return outcome{next: self}
	})
}

// Leave handles POST /groups/:id/leave.
func (h *GroupHandler) Leave(c *gin.Context) {
	sid, id := auth.Current(c).ID(), c.Param("id")
	h.submit(c, func(ctx context.Context) outcome {
		if err := h.svc.Leave(ctx, sid, id); err != nil {
			return outcome{next: "/groups/" + id, err: err, fallback: "Erreur"}
		}
		return outcome{next: "/"}
	})
}

// Delete handles POST /groups/:id/delete.
func (h *GroupHandler) Delete(c *gin.Context) {
	sid, id := auth.Current(c).ID(), c.Param("id")
	h.submit(c, func(ctx context.Context) outcome {
		if err := h.svc.Delete(ctx, sid, id); err != nil {
			return outcome{next: "/groups/" + id, err: err, fallback: "Erreur"}
		}
		return outcome{next: "/"}
	})
}

// JoinForm renders GET /join; ?code= prefills the field.
func (h *GroupHandler) JoinForm(c *gin.Context) {
	h.render(c, http.StatusOK, "join.html", "Rejoindre un groupe", struct{ Code string }{strings.TrimSpace(c.Query("code"))})
}

// Join handles POST /join and opens the joined group.
func (h *GroupHandler) Join(c *gin.Context) {
	sid, code := auth.Current(c).ID(), c.PostForm("code")
	h.submit(c, func(ctx context.Context) outcome {
		g, err := h.svc.Join(ctx, sid, code)
		if err != nil {
			return outcome{next: link("/join", "code", strings.TrimSpace(code)), err: err, fallback: "Erreur lors de la jonction"}
		}
		next := "/"
		if g.ID != "" {
			next = "/groups/" + g.ID
		}
		return outcome{next: next, info: "Groupe rejoint avec succès !"}
	})
}
