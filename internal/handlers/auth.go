package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/fatim-sangare/frontend-test-nan/internal/api"
	"github.com/fatim-sangare/frontend-test-nan/internal/auth"
	"github.com/fatim-sangare/frontend-test-nan/internal/dto"
)

// Authenticator is the part of the API the login screen uses.
type Authenticator interface {
	Register(ctx context.Context, email, password string) error
	Login(ctx context.Context, email, password string) (dto.LoginResponse, error)
}

// AuthHandler handles login, register and logout.
type AuthHandler struct {
	*Renderer
	api   Authenticator
	views auth.ViewDropper
}

// NewAuthHandler returns a new AuthHandler. views may be nil.
func NewAuthHandler(r *Renderer, a Authenticator, views auth.ViewDropper) *AuthHandler {
	return &AuthHandler{Renderer: r, api: a, views: views}
}

type authView struct {
	Register bool
	Email    string
	Error    string
}

func (v authView) mode() string {
	if v.Register {
		return "register"
	}
	return "login"
}

func (h *AuthHandler) show(c *gin.Context, status int, v authView) {
	title := "Connexion"
	if v.Register {
		title = "Inscription"
	}
	h.render(c, status, "auth.html", title, v)
}

// Show renders the login or register form (?mode=register).
func (h *AuthHandler) Show(c *gin.Context) {
	if auth.Current(c).Authenticated() {
		c.Redirect(http.StatusSeeOther, "/")
		return
	}
	h.show(c, http.StatusOK, authView{Register: c.Query("mode") == "register"})
}

// Login signs in with the posted credentials.
func (h *AuthHandler) Login(c *gin.Context) {
	h.signIn(c, authView{Email: strings.TrimSpace(c.PostForm("email"))}, c.PostForm("password"))
}

// Register creates the account and then signs in with the same credentials.
func (h *AuthHandler) Register(c *gin.Context) {
	h.signIn(c, authView{Register: true, Email: strings.TrimSpace(c.PostForm("email"))}, c.PostForm("password"))
}

func (h *AuthHandler) signIn(c *gin.Context, v authView, password string) {
	if v.Email == "" || password == "" {
		v.Error = "Email et mot de passe requis"
		h.show(c, http.StatusUnprocessableEntity, v)
		return
	}
	ctx := c.Request.Context()
	if v.Register {
		if err := h.api.Register(ctx, v.Email, password); err != nil {
			h.rejected(c, v, err)
			return
		}
	}
	resp, err := h.api.Login(ctx, v.Email, password)
	if err != nil {
		h.rejected(c, v, err)
		return
	}

	s := auth.Current(c)
	if err := s.Login(ctx, resp.Token, resp.User); err != nil {
		h.logger.Error("store session", "err", err)
		v.Error = "Erreur"
		h.show(c, http.StatusServiceUnavailable, v)
		return
	}
	h.cookie.Set(c, s.ID())
	h.logger.Info("signed in", "mode", v.mode(), "user", resp.User.ID)
	c.Redirect(http.StatusSeeOther, "/")
}

// rejected shows the API's answer on the form. A 401 here means bad
// credentials; the user is already on the login page.
func (h *AuthHandler) rejected(c *gin.Context, v authView, err error) {
	v.Error = api.Message(err, "Erreur")
	status := api.StatusOf(err)
	if status < 400 {
		status = http.StatusBadGateway
	}
	h.show(c, status, v)
}

// Logout clears the session and the cached views.
func (h *AuthHandler) Logout(c *gin.Context) {
	s := auth.Current(c)
	ctx := c.Request.Context()
	id := s.ID()
	if err := s.Logout(ctx); err != nil {
		h.logger.Warn("clear session", "err", err)
	}
	if h.views != nil && id != "" {
		if err := h.views.Drop(ctx, id); err != nil {
			h.logger.Warn("drop view state", "err", err)
		}
	}
	h.cookie.Clear(c)
	c.Redirect(http.StatusSeeOther, auth.LoginPath)
}
