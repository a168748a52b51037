// Package auth holds the per-request session context: who is signed in, and
// whether that is known yet.
package auth

import (
	"context"
	"sync"

	"github.com/fatim-sangare/frontend-test-nan/internal/domain"
	"github.com/fatim-sangare/frontend-test-nan/internal/session"
)

// State of a Session.
type State int

const (
	// StateRestoring means the persisted session has not been read yet.
	StateRestoring State = iota
	StateAuthenticated
	StateAnonymous
)

func (s State) String() string {
	switch s {
	case StateRestoring:
		return "restoring"
	case StateAuthenticated:
		return "authenticated"
	case StateAnonymous:
		return "anonymous"
	}
	return "unknown"
}

// Session is the session context of one browser request. It only changes
// through Restore, Login and Logout.
type Session struct {
	mu          sync.RWMutex
	store       session.Store
	id          string
	state       State
	token       string
	user        domain.User
	invalidated bool
}

// NewSession returns a Session in the restoring state for the given cookie id
// (may be empty).
func NewSession(store session.Store, id string) *Session {
	return &Session{store: store, id: id}
}

// Restore reads token and user from the store. On a read error the session
// stays restoring and the error is returned.
func (s *Session) Restore(ctx context.Context) error {
	h := session.Bind(s.store, s.id)
	token, hasToken, err := h.Token(ctx)
	if err != nil {
		return err
	}
	user, hasUser, err := h.User(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if hasToken && hasUser && token != "" {
		s.state, s.token, s.user = StateAuthenticated, token, user
	} else {
		s.state, s.token, s.user = StateAnonymous, "", domain.User{}
	}
	return nil
}

// Login stores token and user under a freshly allocated session id and moves
// to authenticated. Whatever was stored under the previous id is cleared; the
// caller sends the new ID to the browser.
func (s *Session) Login(ctx context.Context, token string, user domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := session.NewID()
	if err := session.Bind(s.store, id).SetSession(ctx, token, user); err != nil {
		return err
	}
	if s.id != "" {
		_ = session.Bind(s.store, s.id).ClearSession(ctx)
	}
	s.id = id
	s.state, s.token, s.user = StateAuthenticated, token, user
	s.invalidated = false
	return nil
}

// Logout clears the store and moves to anonymous. The in-memory state is
// cleared even when the store fails.
func (s *Session) Logout(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state, s.token, s.user = StateAnonymous, "", domain.User{}
	return session.Bind(s.store, s.id).ClearSession(ctx)
}

// invalidate is Logout plus the mark checked by response helpers.
func (s *Session) invalidate(ctx context.Context) error {
	err := s.Logout(ctx)
	s.mu.Lock()
	s.invalidated = true
	s.mu.Unlock()
	return err
}

func (s *Session) ID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.id
}

func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Ready reports whether restoration has completed.
func (s *Session) Ready() bool { return s.State() != StateRestoring }

func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *Session) User() domain.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

// Authenticated reports whether a token is held.
func (s *Session) Authenticated() bool { return s.State() == StateAuthenticated }

// Invalidated reports whether the API rejected this session during the
// current request.
func (s *Session) Invalidated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.invalidated
}

type ctxKey struct{}

// WithSession returns a copy of ctx carrying s.
func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// FromContext returns the Session carried by ctx, or nil.
func FromContext(ctx context.Context) *Session {
	s, _ := ctx.Value(ctxKey{}).(*Session)
	return s
}
