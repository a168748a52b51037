// Package handlers serves the HTML screens. Every form post answers with a
// redirect; results and failures reach the user as notices on the next page.
package handlers

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/singleflight"

	"github.com/fatim-sangare/frontend-test-nan/internal/api"
	"github.com/fatim-sangare/frontend-test-nan/internal/auth"
	"github.com/fatim-sangare/frontend-test-nan/internal/cache"
	"github.com/fatim-sangare/frontend-test-nan/internal/domain"
	"github.com/fatim-sangare/frontend-test-nan/internal/service"
)

//go:embed templates/*.html
var templateFS embed.FS

// Templates parses the embedded pages. Dates are shown in loc.
func Templates(loc *time.Location) *template.Template {
	if loc == nil {
		loc = time.Local
	}
	funcs := template.FuncMap{
		"datetime": func(t *time.Time) string {
			if t == nil {
				return ""
			}
			return t.In(loc).Format("02/01/2006 15:04")
		},
	}
	return template.Must(template.New("").Funcs(funcs).ParseFS(templateFS, "templates/*.html"))
}

// Page is what every template receives.
type Page struct {
	Title    string
	User     domain.User
	SignedIn bool
	Notices  []cache.Notice
	Data     any
}

// Renderer holds what all screens share: notices, the session cookie and
// the duplicate-submission guard.
type Renderer struct {
	notices cache.Notices
	cookie  auth.Cookie
	loc     *time.Location
	logger  *slog.Logger
	flight  singleflight.Group
}

func NewRenderer(notices cache.Notices, cookie auth.Cookie, loc *time.Location, logger *slog.Logger) *Renderer {
	if loc == nil {
		loc = time.Local
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Renderer{notices: notices, cookie: cookie, loc: loc, logger: logger}
}

func (r *Renderer) render(c *gin.Context, status int, name, title string, data any, extra ...cache.Notice) {
	s := auth.Current(c)
	var notices []cache.Notice
	if s.Ready() {
		notices = r.pop(c)
	}
	c.HTML(status, name, Page{
		Title:    title,
		User:     s.User(),
		SignedIn: s.Authenticated(),
		Notices:  append(notices, extra...),
		Data:     data,
	})
}

// Restoring answers requests that arrive while the session cannot be read.
func (r *Renderer) Restoring(c *gin.Context) {
	r.render(c, http.StatusServiceUnavailable, "restoring.html", "Chargement...", nil)
}

// NotFound sends unknown paths to the dashboard.
func (r *Renderer) NotFound(c *gin.Context) {
	c.Redirect(http.StatusSeeOther, "/")
}

type errorView struct {
	Message string
	Back    string
}

func (r *Renderer) errorPage(c *gin.Context, err error, fallback, back string) {
	status := api.StatusOf(err)
	if status < 400 {
		status = http.StatusBadGateway
	}
	r.render(c, status, "error.html", "Erreur", errorView{Message: message(err, fallback), Back: back})
}

// expired sends the browser to the login page when the API rejected the
// session during this request, or when err comes from a rejection seen by a
// concurrent request sharing the same fetch.
func (r *Renderer) expired(c *gin.Context, err error) bool {
	if !auth.Current(c).Invalidated() && !errors.Is(err, api.ErrSessionInvalidated) {
		return false
	}
	r.cookie.Clear(c)
	c.Redirect(http.StatusSeeOther, auth.LoginPath)
	return true
}

func (r *Renderer) notify(c *gin.Context, kind, text string) {
	sid := auth.Current(c).ID()
	if r.notices == nil || sid == "" {
		r.logger.Info("notice without session", "kind", kind, "text", text)
		return
	}
	if err := r.notices.Push(c.Request.Context(), sid, cache.Notice{Kind: kind, Text: text}); err != nil {
		r.logger.Warn("push notice", "err", err)
	}
}

func (r *Renderer) pop(c *gin.Context) []cache.Notice {
	sid := auth.Current(c).ID()
	if r.notices == nil || sid == "" {
		return nil
	}
	notices, err := r.notices.Pop(c.Request.Context(), sid)
	if err != nil {
		r.logger.Warn("pop notices", "err", err)
		return nil
	}
	return notices
}

// outcome is the result of a form action: where to go next and what to tell
// the user.
type outcome struct {
	next        string
	info        string
	err         error
	fallback    string
	invalidated bool
}

// submit runs action once per session, method and path at a time; a second
// identical post made while the first is in flight gets the same outcome.
// The notice is queued once.
func (r *Renderer) submit(c *gin.Context, action func(ctx context.Context) outcome) {
	s := auth.Current(c)
	key := s.ID() + " " + c.Request.Method + " " + c.Request.URL.Path
	v, _, _ := r.flight.Do(key, func() (interface{}, error) {
		o := action(c.Request.Context())
		if s.Invalidated() {
			o.invalidated = true
			return o, nil
		}
		switch {
		case o.err != nil:
			r.logger.Debug("action failed", "path", c.Request.URL.Path, "err", o.err)
			r.notify(c, cache.KindError, message(o.err, o.fallback))
		case o.info != "":
			r.notify(c, cache.KindInfo, o.info)
		}
		return o, nil
	})
	o := v.(outcome)
	if o.invalidated || s.Invalidated() {
		r.cookie.Clear(c)
		c.Redirect(http.StatusSeeOther, auth.LoginPath)
		return
	}
	c.Redirect(http.StatusSeeOther, o.next)
}

var errBlankEditTitle = errors.New("edited title is blank")

// message is the text shown for err: fixed wording for checks made before
// sending, the API's message otherwise, else fallback.
func message(err error, fallback string) string {
	switch {
	case errors.Is(err, errBlankEditTitle):
		return "Le titre ne peut pas être vide"
	case errors.Is(err, service.ErrEmptyTitle):
		return "Titre requis"
	case errors.Is(err, service.ErrEmptyName):
		return "Nom du groupe requis"
	case errors.Is(err, service.ErrEmptyCode):
		return "Entre un code d'invitation valide"
	case errors.Is(err, domain.ErrInvalidDate):
		return "Date invalide"
	}
	return api.Message(err, fallback)
}

// editError keeps the edit form's own wording for a blank title.
func editError(err error) error {
	if errors.Is(err, service.ErrEmptyTitle) {
		return errBlankEditTitle
	}
	return err
}

func taskForm(c *gin.Context) service.TaskForm {
	return service.TaskForm{
		Title:       c.PostForm("title"),
		Description: c.PostForm("description"),
		Date:        c.PostForm("date"),
	}
}

// link builds path?k=v&... skipping empty values.
func link(path string, kv ...string) string {
	q := url.Values{}
	for i := 0; i+1 < len(kv); i += 2 {
		if kv[i+1] != "" {
			q.Set(kv[i], kv[i+1])
		}
	}
	if len(q) == 0 {
		return path
	}
	return path + "?" + q.Encode()
}
