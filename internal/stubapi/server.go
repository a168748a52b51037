package stubapi

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"github.com/swaggo/swag"
)

// @title           MesTâches stub API
// @version         1.0
// @description     In-memory task and group API for local development of the MesTâches web client.
// @host            localhost:3000
// @BasePath        /
// @securityDefinitions.apikey  BearerAuth
// @in              header
// @name            Authorization

// NewRouter returns the stub API engine: CORS, swagger docs and the task API
// routes.
func NewRouter(h *Handler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "HEAD"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders: []string{"Content-Length", "Content-Type"},
		MaxAge:        12 * time.Hour,
	}))

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": true}) })
	r.GET("/swagger-doc.json", swaggerDocHandler())
	r.GET("/swagger", func(c *gin.Context) { c.Redirect(http.StatusFound, "/swagger/index.html") })
	r.GET("/swagger/*any", ginSwagger.WrapHandler(
		swaggerFiles.Handler,
		ginSwagger.URL("/swagger-doc.json"),
		ginSwagger.DefaultModelsExpandDepth(-1),
		ginSwagger.PersistAuthorization(true),
	))

	r.POST("/auth/register", h.Register)
	r.POST("/auth/login", h.Login)

	api := r.Group("", h.RequireBearer())
	registerGroupRoutes(api, h)
	registerTaskRoutes(api, h)
	return r
}

func swaggerDocHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		doc, err := swag.ReadDoc("swagger")
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
			return
		}
		c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(doc))
	}
}

func registerGroupRoutes(api *gin.RouterGroup, h *Handler) {
	api.GET("/groups", h.ListGroups)
	api.POST("/groups", h.CreateGroup)
	api.POST("/groups/join/:inviteCode", h.JoinGroup)
	api.GET("/groups/:id", h.GetGroup)
	api.DELETE("/groups/:id", h.DeleteGroup)
	api.POST("/groups/:id/leave", h.LeaveGroup)
	api.DELETE("/groups/:id/members/:memberId", h.RemoveMember)
}

func registerTaskRoutes(api *gin.RouterGroup, h *Handler) {
	api.GET("/tasks", h.ListTasks)
	api.POST("/tasks", h.CreateTask)
	api.GET("/tasks/group/:groupId", h.ListGroupTasks)
	api.GET("/tasks/:id", h.GetTask)
	api.PUT("/tasks/:id", h.UpdateTask)
	api.DELETE("/tasks/:id", h.DeleteTask)
}
