package stubapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fatim-sangare/frontend-test-nan/internal/domain"
	"github.com/fatim-sangare/frontend-test-nan/internal/dto"
)

type harness struct {
	t *testing.T
	r *gin.Engine
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	gin.SetMode(gin.TestMode)
	store, err := NewStore()
	require.NoError(t, err)
	return &harness{t: t, r: NewRouter(NewHandler(store, NewTokens("test-secret", time.Hour)))}
}

func (h *harness) do(method, path, token string, body any) *httptest.ResponseRecorder {
	h.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(h.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	h.r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

// signup registers and logs in, returning the token and user.
func (h *harness) signup(email string) (string, domain.User) {
	h.t.Helper()
	w := h.do(http.MethodPost, "/auth/register", "", dto.Credentials{Email: email, Password: "pw"})
	require.Equal(h.t, http.StatusCreated, w.Code, w.Body.String())
	w = h.do(http.MethodPost, "/auth/login", "", dto.Credentials{Email: email, Password: "pw"})
	require.Equal(h.t, http.StatusOK, w.Code, w.Body.String())
	resp := decode[dto.LoginResponse](h.t, w)
	return resp.Token, resp.User
}

func TestAuthFlow(t *testing.T) {
	h := newHarness(t)

	w := h.do(http.MethodPost, "/auth/register", "", dto.Credentials{Email: "a@b.com", Password: ""})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	token, user := h.signup("a@b.com")
	assert.NotEmpty(t, token)
	assert.Equal(t, "a@b.com", user.Email)

	w = h.do(http.MethodPost, "/auth/register", "", dto.Credentials{Email: "A@B.com", Password: "pw"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = h.do(http.MethodPost, "/auth/login", "", dto.Credentials{Email: "a@b.com", Password: "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.NotEmpty(t, decode[dto.ErrorResponse](t, w).Message)
}

func TestBearerRequired(t *testing.T) {
	h := newHarness(t)
	for _, token := range []string{"", "garbage"} {
		w := h.do(http.MethodGet, "/tasks", token, nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.NotEmpty(t, decode[dto.ErrorResponse](t, w).Message)
	}

	other := NewTokens("other-secret", time.Hour)
	forged, err := other.Sign("u1")
	require.NoError(t, err)
	w := h.do(http.MethodGet, "/tasks", forged, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGroupLifecycle(t *testing.T) {
	h := newHarness(t)
	owner, ownerUser := h.signup("owner@x.com")
	member, memberUser := h.signup("member@x.com")

	w := h.do(http.MethodPost, "/groups", owner, dto.CreateGroupRequest{Name: "Famille"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	g := decode[domain.Group](t, w)
	assert.Regexp(t, regexp.MustCompile(`^[A-HJ-NP-Z2-9]{8}$`), g.InviteLink)
	require.NotNil(t, g.CreatedBy)
	assert.Equal(t, ownerUser.ID, g.CreatedBy.ID)

	// not a member yet
	w = h.do(http.MethodGet, "/groups/"+g.ID, member, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = h.do(http.MethodPost, "/groups/join/NOPE1234", member, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	for i := 0; i < 2; i++ {
		w = h.do(http.MethodPost, "/groups/join/"+g.InviteLink, member, nil)
		require.Equal(t, http.StatusOK, w.Code)
		joined := decode[dto.JoinGroupResponse](t, w)
		assert.Equal(t, g.ID, joined.Group.ID)
		assert.Len(t, joined.Group.Members, 2, "joining twice adds once")
	}

	// group task assigned to the member, then the member is removed
	w = h.do(http.MethodPost, "/tasks", member, dto.CreateTaskRequest{Title: "Vaisselle", Group: g.ID})
	require.Equal(t, http.StatusCreated, w.Code)
	task := decode[domain.Task](t, w)
	assert.Equal(t, domain.StatusTodo, task.Status)
	require.NotNil(t, task.Group)
	assert.Equal(t, "Famille", task.Group.Name)
	require.NotNil(t, task.AssignedTo)
	assert.Equal(t, memberUser.ID, task.AssignedTo.ID)

	w = h.do(http.MethodPost, "/groups/"+g.ID+"/leave", owner, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code, "creator cannot leave")

	w = h.do(http.MethodDelete, "/groups/"+g.ID+"/members/"+ownerUser.ID, member, nil)
	assert.Equal(t, http.StatusForbidden, w.Code, "creator only")

	w = h.do(http.MethodDelete, "/groups/"+g.ID, member, nil)
	assert.Equal(t, http.StatusForbidden, w.Code, "creator only")

	w = h.do(http.MethodDelete, "/groups/"+g.ID+"/members/"+memberUser.ID, owner, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = h.do(http.MethodGet, "/groups/"+g.ID, owner, nil)
	assert.Len(t, decode[domain.Group](t, w).Members, 1)

	w = h.do(http.MethodGet, "/tasks/group/"+g.ID, owner, nil)
	require.Equal(t, http.StatusOK, w.Code)
	groupTasks := decode[[]domain.Task](t, w)
	require.Len(t, groupTasks, 1)
	assert.Nil(t, groupTasks[0].AssignedTo, "removed member's tasks are unassigned")

	w = h.do(http.MethodDelete, "/groups/"+g.ID, owner, nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = h.do(http.MethodGet, "/tasks/"+task.ID, owner, nil)
	assert.Equal(t, http.StatusNotFound, w.Code, "group tasks go with the group")
}

func TestTasksListAndUpdate(t *testing.T) {
	h := newHarness(t)
	a, _ := h.signup("a@x.com")
	b, _ := h.signup("b@x.com")

	w := h.do(http.MethodPost, "/tasks", a, dto.CreateTaskRequest{Title: "first"})
	require.Equal(t, http.StatusCreated, w.Code)
	first := decode[domain.Task](t, w)
	assert.Nil(t, first.Group)

	desc := "details"
	w = h.do(http.MethodPost, "/tasks", a, dto.CreateTaskRequest{Title: "second", Description: &desc})
	require.Equal(t, http.StatusCreated, w.Code)

	w = h.do(http.MethodGet, "/tasks", a, nil)
	list := decode[[]domain.Task](t, w)
	require.Len(t, list, 2)
	assert.Equal(t, "second", list[0].Title, "newest first")

	w = h.do(http.MethodGet, "/tasks", b, nil)
	assert.Empty(t, decode[[]domain.Task](t, w))
	w = h.do(http.MethodGet, "/tasks/"+first.ID, b, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = h.do(http.MethodPut, "/tasks/"+first.ID, a, dto.TaskStatusPatch{Status: domain.StatusDone})
	require.Equal(t, http.StatusOK, w.Code)
	updated := decode[domain.Task](t, w)
	assert.Equal(t, domain.StatusDone, updated.Status)
	assert.Equal(t, "first", updated.Title, "absent fields are kept")

	w = h.do(http.MethodPut, "/tasks/"+first.ID, a, dto.TaskStatusPatch{Status: "NOPE"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	deadline := time.Date(2024, 3, 5, 22, 59, 59, 999_000_000, time.UTC)
	w = h.do(http.MethodPut, "/tasks/"+first.ID, a, dto.TaskEditPatch{Title: "renamed", Deadline: &deadline})
	require.Equal(t, http.StatusOK, w.Code)
	updated = decode[domain.Task](t, w)
	assert.Equal(t, "renamed", updated.Title)
	require.NotNil(t, updated.Deadline)
	assert.True(t, deadline.Equal(*updated.Deadline))
	assert.Equal(t, domain.StatusDone, updated.Status)

	w = h.do(http.MethodPut, "/tasks/"+first.ID, a, dto.TaskEditPatch{Title: "renamed"})
	assert.Nil(t, decode[domain.Task](t, w).Deadline, "null clears")

	w = h.do(http.MethodDelete, "/tasks/"+first.ID, b, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = h.do(http.MethodDelete, "/tasks/"+first.ID, a, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCreateTaskValidation(t *testing.T) {
	h := newHarness(t)
	a, _ := h.signup("a@x.com")
	b, _ := h.signup("b@x.com")

	w := h.do(http.MethodPost, "/tasks", a, dto.CreateTaskRequest{Title: ""})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = h.do(http.MethodPost, "/groups", b, dto.CreateGroupRequest{Name: "B only"})
	g := decode[domain.Group](t, w)
	w = h.do(http.MethodPost, "/tasks", a, dto.CreateTaskRequest{Title: "x", Group: g.ID})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestSeed(t *testing.T) {
	store, err := NewStore()
	require.NoError(t, err)
	require.NoError(t, store.Seed([]string{"demo@x.com:demo:pw"}))

	u, err := store.ValidateCredentials("demo@x.com", "demo:pw")
	require.NoError(t, err)
	assert.Equal(t, "demo@x.com", u.Email)

	assert.Error(t, store.Seed([]string{"no-password"}))
	assert.ErrorIs(t, store.Seed([]string{"demo@x.com:other"}), ErrConflict)
}
