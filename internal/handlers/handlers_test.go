package handlers

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fatim-sangare/frontend-test-nan/internal/api"
	"github.com/fatim-sangare/frontend-test-nan/internal/auth"
	"github.com/fatim-sangare/frontend-test-nan/internal/cache"
	"github.com/fatim-sangare/frontend-test-nan/internal/domain"
	"github.com/fatim-sangare/frontend-test-nan/internal/dto"
	"github.com/fatim-sangare/frontend-test-nan/internal/service"
	"github.com/fatim-sangare/frontend-test-nan/internal/session"
)

var testCookie = auth.Cookie{Name: "sid", TTL: time.Hour}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// signedIn returns a restored session for id backed by store.
func signedIn(t *testing.T, store session.Store, id string) *auth.Session {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, store.Set(ctx, id, "tok", domain.User{ID: "u1", Email: "a@b.com"}))
	s := auth.NewSession(store, id)
	require.NoError(t, s.Restore(ctx))
	return s
}

func postContext(s *auth.Session, path string) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req := httptest.NewRequest(http.MethodPost, path, nil)
	c.Request = req.WithContext(auth.WithSession(req.Context(), s))
	return c, w
}

func TestSubmitCollapsesDuplicatePosts(t *testing.T) {
	gin.SetMode(gin.TestMode)
	store := session.NewMemoryStore(time.Hour)
	notices := cache.NewMemoryNotices(time.Hour)
	r := NewRenderer(notices, testCookie, time.UTC, discardLogger())

	var calls atomic.Int32
	started := make(chan struct{})
	release := make(chan struct{})
	action := func(context.Context) outcome {
		if calls.Add(1) == 1 {
			close(started)
		}
		<-release
		return outcome{next: "/", info: "Groupe créé avec succès !"}
	}

	c1, w1 := postContext(signedIn(t, store, "sid-1"), "/groups")
	c2, w2 := postContext(signedIn(t, store, "sid-1"), "/groups")
	var wg sync.WaitGroup
	wg.Add(2)
	go func() { defer wg.Done(); r.submit(c1, action); c1.Writer.WriteHeaderNow() }()
	<-started
	go func() { defer wg.Done(); r.submit(c2, action); c2.Writer.WriteHeaderNow() }()
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
	for _, w := range []*httptest.ResponseRecorder{w1, w2} {
		assert.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, "/", w.Header().Get("Location"))
	}
	got, err := notices.Pop(context.Background(), "sid-1")
	require.NoError(t, err)
	assert.Equal(t, []cache.Notice{{Kind: cache.KindInfo, Text: "Groupe créé avec succès !"}}, got)
}

func TestSubmitOtherSessionsAreIndependent(t *testing.T) {
	gin.SetMode(gin.TestMode)
	store := session.NewMemoryStore(time.Hour)
	r := NewRenderer(cache.NewMemoryNotices(time.Hour), testCookie, time.UTC, discardLogger())

	var calls atomic.Int32
	action := func(context.Context) outcome {
		calls.Add(1)
		return outcome{next: "/"}
	}
	c1, _ := postContext(signedIn(t, store, "sid-1"), "/groups")
	c2, _ := postContext(signedIn(t, store, "sid-2"), "/groups")
	r.submit(c1, action)
	r.submit(c2, action)
	assert.Equal(t, int32(2), calls.Load())
}

func TestSubmitFailureBecomesNotice(t *testing.T) {
	gin.SetMode(gin.TestMode)
	store := session.NewMemoryStore(time.Hour)
	notices := cache.NewMemoryNotices(time.Hour)
	r := NewRenderer(notices, testCookie, time.UTC, discardLogger())

	c, w := postContext(signedIn(t, store, "sid-1"), "/groups/g1/leave")
	r.submit(c, func(context.Context) outcome {
		return outcome{next: "/groups/g1", err: &api.Error{Status: http.StatusBadRequest}, fallback: "Erreur"}
	})
	c.Writer.WriteHeaderNow()
	assert.Equal(t, "/groups/g1", w.Header().Get("Location"))
	got, _ := notices.Pop(context.Background(), "sid-1")
	assert.Equal(t, []cache.Notice{{Kind: cache.KindError, Text: "Erreur"}}, got)
}

func TestSubmitInvalidatedSessionGoesToLogin(t *testing.T) {
	gin.SetMode(gin.TestMode)
	store := session.NewMemoryStore(time.Hour)
	notices := cache.NewMemoryNotices(time.Hour)
	r := NewRenderer(notices, testCookie, time.UTC, discardLogger())
	coord := auth.NewCoordinator(nil, discardLogger())

	c, w := postContext(signedIn(t, store, "sid-1"), "/tasks")
	r.submit(c, func(ctx context.Context) outcome {
		coord.SessionInvalidated(ctx)
		return outcome{next: "/", err: &api.Error{Status: http.StatusUnauthorized}, fallback: "Erreur"}
	})
	c.Writer.WriteHeaderNow()

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, auth.LoginPath, w.Header().Get("Location"))
	assert.Contains(t, w.Header().Get("Set-Cookie"), "sid=;")
	got, _ := notices.Pop(context.Background(), "sid-1")
	assert.Empty(t, got, "no notice for a rejected session")
	_, ok, _ := store.Token(context.Background(), "sid-1")
	assert.False(t, ok)
}

func TestExpiredOnSharedRejection(t *testing.T) {
	gin.SetMode(gin.TestMode)
	store := session.NewMemoryStore(time.Hour)
	r := NewRenderer(cache.NewMemoryNotices(time.Hour), testCookie, time.UTC, discardLogger())

	// this request's session was not the one marked; the error still says 401
	c, w := postContext(signedIn(t, store, "sid-1"), "/")
	require.True(t, r.expired(c, &api.Error{Status: http.StatusUnauthorized}))
	c.Writer.WriteHeaderNow()
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, auth.LoginPath, w.Header().Get("Location"))
	assert.Contains(t, w.Header().Get("Set-Cookie"), "sid=;")

	c, _ = postContext(signedIn(t, store, "sid-2"), "/")
	assert.False(t, r.expired(c, &api.Error{Status: http.StatusBadGateway}))
}

func TestMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"blank title", service.ErrEmptyTitle, "Titre requis"},
		{"blank edit title", editError(service.ErrEmptyTitle), "Le titre ne peut pas être vide"},
		{"blank code", service.ErrEmptyCode, "Entre un code d'invitation valide"},
		{"bad date", domain.ErrInvalidDate, "Date invalide"},
		{"server message", &api.Error{Status: 403, Message: "Action réservée au créateur"}, "Action réservée au créateur"},
		{"no message", &api.Error{Status: 500}, "fallback"},
		{"transport", api.ErrTransport, "fallback"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, message(tt.err, "fallback"))
		})
	}
}

func TestLink(t *testing.T) {
	assert.Equal(t, "/", link("/", "edit", ""))
	assert.Equal(t, "/?edit=t1", link("/", "edit", "t1"))
	assert.Equal(t, "/task/t1?back=%2Fgroups%2Fg1&edit=1", link("/task/t1", "back", "/groups/g1", "edit", "1"))
}

func TestTemplatesParse(t *testing.T) {
	tmpl := Templates(time.UTC)
	for _, name := range []string{"auth.html", "dashboard.html", "group.html", "join.html", "task.html", "restoring.html", "error.html", "card"} {
		assert.NotNil(t, tmpl.Lookup(name), name)
	}
}

type fakeAuth struct {
	RegisterFunc func(ctx context.Context, email, password string) error
	LoginFunc    func(ctx context.Context, email, password string) (dto.LoginResponse, error)
	calls        []string
}

func (f *fakeAuth) Register(ctx context.Context, email, password string) error {
	f.calls = append(f.calls, "register")
	if f.RegisterFunc != nil {
		return f.RegisterFunc(ctx, email, password)
	}
	return nil
}

func (f *fakeAuth) Login(ctx context.Context, email, password string) (dto.LoginResponse, error) {
	f.calls = append(f.calls, "login")
	if f.LoginFunc != nil {
		return f.LoginFunc(ctx, email, password)
	}
	return dto.LoginResponse{Token: "tok", User: domain.User{ID: "u1", Email: email}}, nil
}

func newAuthRouter(store session.Store, a Authenticator) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.SetHTMLTemplate(Templates(time.UTC))
	h := NewAuthHandler(NewRenderer(cache.NewMemoryNotices(time.Hour), testCookie, time.UTC, discardLogger()), a, nil)
	web := r.Group("", auth.Restore(store, testCookie, discardLogger()))
	web.GET("/auth", h.Show)
	web.POST("/auth/login", h.Login)
	web.POST("/auth/register", h.Register)
	web.POST("/auth/logout", h.Logout)
	return r
}

func postForm(r http.Handler, path string, form url.Values, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRegisterFailureStopsBeforeLogin(t *testing.T) {
	fa := &fakeAuth{RegisterFunc: func(context.Context, string, string) error {
		return &api.Error{Status: http.StatusConflict, Message: "Email déjà utilisé"}
	}}
	r := newAuthRouter(session.NewMemoryStore(time.Hour), fa)

	w := postForm(r, "/auth/register", url.Values{"email": {"a@b.com"}, "password": {"pw"}})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "Email déjà utilisé")
	assert.Contains(t, w.Body.String(), "Inscription")
	assert.Equal(t, []string{"register"}, fa.calls)
}

func TestLoginRotatesCookie(t *testing.T) {
	store := session.NewMemoryStore(time.Hour)
	fa := &fakeAuth{}
	r := newAuthRouter(store, fa)

	w := postForm(r, "/auth/login", url.Values{"email": {" a@b.com "}, "password": {"pw"}})
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))
	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	sid := cookies[0].Value
	user, ok, err := store.User(context.Background(), sid)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "a@b.com", user.Email)

	// a second login on the same browser gets a new id and drops the old one
	w = postForm(r, "/auth/login", url.Values{"email": {"a@b.com"}, "password": {"pw"}}, &http.Cookie{Name: testCookie.Name, Value: sid})
	require.Equal(t, http.StatusSeeOther, w.Code)
	cookies = w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.NotEqual(t, sid, cookies[0].Value)
	_, ok, err = store.User(context.Background(), sid)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLoginTransportFailure(t *testing.T) {
	fa := &fakeAuth{LoginFunc: func(context.Context, string, string) (dto.LoginResponse, error) {
		return dto.LoginResponse{}, errors.Join(api.ErrTransport, errors.New("dial tcp: refused"))
	}}
	r := newAuthRouter(session.NewMemoryStore(time.Hour), fa)

	w := postForm(r, "/auth/login", url.Values{"email": {"a@b.com"}, "password": {"pw"}})
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, w.Body.String(), "Erreur")
}
