package app

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/fatim-sangare/frontend-test-nan/internal/auth"
	"github.com/fatim-sangare/frontend-test-nan/internal/cache"
	"github.com/fatim-sangare/frontend-test-nan/internal/config"
	"github.com/fatim-sangare/frontend-test-nan/internal/handlers"
	"github.com/fatim-sangare/frontend-test-nan/internal/service"
	"github.com/fatim-sangare/frontend-test-nan/internal/session"
)

// Client is everything the screens ask of the task API. *api.Client
// satisfies it.
type Client interface {
	service.API
	handlers.Authenticator
}

// Deps is what the router is built from.
type Deps struct {
	Config   config.Config
	Logger   *slog.Logger
	Location *time.Location
	Sessions session.Store
	Views    cache.ViewCache
	Notices  cache.Notices
	API      Client
}

func newRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	Setup(r, d)
	return r
}

// Setup registers all routes on the given engine.
func Setup(r *gin.Engine, d Deps) {
	r.SetHTMLTemplate(handlers.Templates(d.Location))
	r.GET("/health", healthHandler(d.Config))
	r.GET("/version", versionHandler(d.Config))

	cookie := auth.Cookie{
		Name:   d.Config.Session.CookieName,
		Secure: d.Config.Session.CookieSecure,
		TTL:    d.Config.Session.TTL.Duration(),
	}
	renderer := handlers.NewRenderer(d.Notices, cookie, d.Location, d.Logger)

	dashboardSvc := service.NewDashboardService(d.API, d.Views, d.Location, d.Logger)
	groupSvc := service.NewGroupService(d.API, dashboardSvc, d.Location)
	taskSvc := service.NewTaskService(d.API, dashboardSvc, d.Location)

	web := r.Group("", auth.Restore(d.Sessions, cookie, d.Logger))
	registerAuthRoutes(web, handlers.NewAuthHandler(renderer, d.API, d.Views))

	protected := web.Group("", auth.RequireSession(renderer.Restoring))
	registerDashboardRoutes(protected, handlers.NewDashboardHandler(renderer, dashboardSvc))
	registerGroupRoutes(protected, handlers.NewGroupHandler(renderer, groupSvc))
	registerTaskRoutes(protected, handlers.NewTaskHandler(renderer, taskSvc))

	r.NoRoute(renderer.NotFound)
}

func healthHandler(cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true, "env": cfg.App.Env})
	}
}

func versionHandler(cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"version": cfg.App.Version})
	}
}

func registerAuthRoutes(web *gin.RouterGroup, h *handlers.AuthHandler) {
	web.GET("/auth", h.Show)
	web.POST("/auth/login", h.Login)
	web.POST("/auth/register", h.Register)
	web.POST("/auth/logout", h.Logout)
}

func registerDashboardRoutes(web *gin.RouterGroup, h *handlers.DashboardHandler) {
	web.GET("/", h.Index)
	web.POST("/groups", h.CreateGroup)
	web.POST("/join/quick", h.QuickJoin)
	web.POST("/tasks", h.CreateTask)
	web.POST("/tasks/:id/toggle", h.ToggleTask)
	web.POST("/tasks/:id/edit", h.EditTask)
	web.POST("/tasks/:id/delete", h.DeleteTask)
}

func registerGroupRoutes(web *gin.RouterGroup, h *handlers.GroupHandler) {
	web.GET("/groups/:id", h.Show)
	web.POST("/groups/:id/tasks", h.CreateTask)
	web.POST("/groups/:id/members/:memberId/remove", h.RemoveMember)
	web.POST("/groups/:id/leave", h.Leave)
	web.POST("/groups/:id/delete", h.Delete)
	web.GET("/join", h.JoinForm)
	web.POST("/join", h.Join)
}

func registerTaskRoutes(web *gin.RouterGroup, h *handlers.TaskHandler) {
	web.GET("/task/:id", h.Show)
	web.POST("/task/:id/toggle", h.Toggle)
	web.POST("/task/:id/edit", h.Edit)
	web.POST("/task/:id/delete", h.Delete)
}
