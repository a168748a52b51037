package stubapi

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/fatim-sangare/frontend-test-nan/internal/dto"
)

const contextKeyUserID = "user_id"

// Handler serves the task API from a Store.
type Handler struct {
	store  *Store
	tokens *Tokens
}

func NewHandler(store *Store, tokens *Tokens) *Handler {
	return &Handler{store: store, tokens: tokens}
}

func userID(c *gin.Context) string {
	return c.GetString(contextKeyUserID)
}

func writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, ErrBadRequest):
		status = http.StatusBadRequest
	case errors.Is(err, ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, ErrConflict):
		status = http.StatusConflict
	}
	msg := err.Error()
	var ae *apiError
	if !errors.As(err, &ae) {
		msg = "Erreur serveur"
	}
	c.JSON(status, dto.ErrorResponse{Message: msg})
}

// RequireBearer checks the bearer token and sets the caller's id. Missing or
// invalid tokens get 401.
func (h *Handler) RequireBearer() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
		if !ok || strings.TrimSpace(raw) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.ErrorResponse{Message: "Token manquant"})
			return
		}
		claims, err := h.tokens.Parse(strings.TrimSpace(raw))
		if err != nil || !h.store.userExists(claims.UserID) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.ErrorResponse{Message: "Token invalide"})
			return
		}
		c.Set(contextKeyUserID, claims.UserID)
		c.Next()
	}
}

// Register godoc
// @Summary      Register
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      dto.Credentials  true  "Credentials"
// @Success      201   {object}  dto.RegisterResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /auth/register [post]
func (h *Handler) Register(c *gin.Context) {
	var req dto.Credentials
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Email et mot de passe requis"})
		return
	}
	u, err := h.store.Register(req.Email, req.Password)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.RegisterResponse{Message: "Compte créé", User: u})
}

// Login godoc
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      dto.Credentials  true  "Credentials"
// @Success      200   {object}  dto.LoginResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      401   {object}  dto.ErrorResponse
// @Router       /auth/login [post]
func (h *Handler) Login(c *gin.Context) {
	var req dto.Credentials
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Email et mot de passe requis"})
		return
	}
	u, err := h.store.ValidateCredentials(req.Email, req.Password)
	if err != nil {
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{Message: "Email ou mot de passe incorrect"})
		return
	}
	token, err := h.tokens.Sign(u.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Message: "Connexion impossible"})
		return
	}
	c.JSON(http.StatusOK, dto.LoginResponse{Token: token, User: u})
}

// ListGroups godoc
// @Summary      List the caller's groups
// @Tags         groups
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   domain.Group
// @Failure      401  {object}  dto.ErrorResponse
// @Router       /groups [get]
func (h *Handler) ListGroups(c *gin.Context) {
	c.JSON(http.StatusOK, h.store.ListGroups(userID(c)))
}

// CreateGroup godoc
// @Summary      Create a group
// @Tags         groups
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      dto.CreateGroupRequest  true  "Group"
// @Success      201   {object}  domain.Group
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /groups [post]
func (h *Handler) CreateGroup(c *gin.Context) {
	var req dto.CreateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Le nom du groupe est requis"})
		return
	}
	g, err := h.store.CreateGroup(userID(c), req.Name)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, g)
}

// GetGroup godoc
// @Summary      Get a group
// @Tags         groups
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Group ID"
// @Success      200  {object}  domain.Group
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /groups/{id} [get]
func (h *Handler) GetGroup(c *gin.Context) {
	g, err := h.store.GetGroup(userID(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, g)
}

// DeleteGroup godoc
// @Summary      Delete a group and its tasks (creator only)
// @Tags         groups
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Group ID"
// @Success      200  {object}  dto.MessageResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /groups/{id} [delete]
func (h *Handler) DeleteGroup(c *gin.Context) {
	if err := h.store.DeleteGroup(userID(c), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Groupe supprimé"})
}

// JoinGroup godoc
// @Summary      Join a group by invite code
// @Tags         groups
// @Produce      json
// @Security     BearerAuth
// @Param        inviteCode  path      string  true  "Invite code"
// @Success      200         {object}  dto.JoinGroupResponse
// @Failure      404         {object}  dto.ErrorResponse
// @Router       /groups/join/{inviteCode} [post]
func (h *Handler) JoinGroup(c *gin.Context) {
	g, err := h.store.JoinGroup(userID(c), c.Param("inviteCode"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.JoinGroupResponse{Message: "Groupe rejoint", Group: g})
}

// LeaveGroup godoc
// @Summary      Leave a group (not the creator)
// @Tags         groups
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Group ID"
// @Success      200  {object}  dto.MessageResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /groups/{id}/leave [post]
func (h *Handler) LeaveGroup(c *gin.Context) {
	if err := h.store.LeaveGroup(userID(c), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Vous avez quitté le groupe"})
}

// RemoveMember godoc
// @Summary      Remove a member (creator only)
// @Tags         groups
// @Produce      json
// @Security     BearerAuth
// @Param        id        path      string  true  "Group ID"
// @Param        memberId  path      string  true  "Member ID"
// @Success      200       {object}  dto.MessageResponse
// @Failure      403       {object}  dto.ErrorResponse
// @Failure      404       {object}  dto.ErrorResponse
// @Router       /groups/{id}/members/{memberId} [delete]
func (h *Handler) RemoveMember(c *gin.Context) {
	if err := h.store.RemoveMember(userID(c), c.Param("id"), c.Param("memberId")); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Membre retiré"})
}

// ListTasks godoc
// @Summary      List own tasks and the tasks of the caller's groups
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   domain.Task
// @Router       /tasks [get]
func (h *Handler) ListTasks(c *gin.Context) {
	c.JSON(http.StatusOK, h.store.ListTasks(userID(c)))
}

// CreateTask godoc
// @Summary      Create a task
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      dto.CreateTaskRequest  true  "Task"
// @Success      201   {object}  domain.Task
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Router       /tasks [post]
func (h *Handler) CreateTask(c *gin.Context) {
	var req dto.CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Le titre est requis"})
		return
	}
	t, err := h.store.CreateTask(userID(c), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, t)
}

// GetTask godoc
// @Summary      Get a task
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Task ID"
// @Success      200  {object}  domain.Task
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /tasks/{id} [get]
func (h *Handler) GetTask(c *gin.Context) {
	t, err := h.store.GetTask(userID(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

// UpdateTask godoc
// @Summary      Update a task (partial)
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string         true  "Task ID"
// @Param        body  body      dto.TaskPatch  true  "Fields to change; null clears"
// @Success      200   {object}  domain.Task
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /tasks/{id} [put]
func (h *Handler) UpdateTask(c *gin.Context) {
	var req dto.TaskPatch
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Requête invalide"})
		return
	}
	t, err := h.store.UpdateTask(userID(c), c.Param("id"), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

// DeleteTask godoc
// @Summary      Delete a task
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Task ID"
// @Success      200  {object}  dto.MessageResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /tasks/{id} [delete]
func (h *Handler) DeleteTask(c *gin.Context) {
	if err := h.store.DeleteTask(userID(c), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Tâche supprimée"})
}

// ListGroupTasks godoc
// @Summary      List the tasks of a group
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Param        groupId  path      string  true  "Group ID"
// @Success      200      {array}   domain.Task
// @Failure      403      {object}  dto.ErrorResponse
// @Failure      404      {object}  dto.ErrorResponse
// @Router       /tasks/group/{groupId} [get]
func (h *Handler) ListGroupTasks(c *gin.Context) {
	tasks, err := h.store.ListGroupTasks(userID(c), c.Param("groupId"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, tasks)
}
