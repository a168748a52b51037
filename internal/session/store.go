// Package session persists the browser session: the bearer token and the user
// record it belongs to, keyed by the id carried in the session cookie.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/fatim-sangare/frontend-test-nan/internal/domain"
)

// Fixed keys under which a session's values are stored.
const (
	keyToken = "token"
	keyUser  = "user"

	defaultTTL = 24 * time.Hour
)

// ErrNoSession is returned by Handle operations when no session id is bound.
var ErrNoSession = errors.New("no session id")

// Store keeps token and user per session id. Set writes both, Clear removes
// both; a store never holds one without the other.
type Store interface {
	Token(ctx context.Context, id string) (string, bool, error)
	User(ctx context.Context, id string) (domain.User, bool, error)
	Set(ctx context.Context, id, token string, user domain.User) error
	Clear(ctx context.Context, id string) error
}

// NewID returns a fresh random session id.
func NewID() string {
	return uuid.NewString()
}

// Handle is a Store bound to one session id.
type Handle struct {
	store Store
	id    string
}

// Bind returns a Handle for id.
func Bind(store Store, id string) Handle {
	return Handle{store: store, id: id}
}

// ID returns the bound session id.
func (h Handle) ID() string { return h.id }

// Token returns the stored token, if any.
func (h Handle) Token(ctx context.Context) (string, bool, error) {
	if h.id == "" {
		return "", false, nil
	}
	return h.store.Token(ctx, h.id)
}

// User returns the stored user, if any.
func (h Handle) User(ctx context.Context) (domain.User, bool, error) {
	if h.id == "" {
		return domain.User{}, false, nil
	}
	return h.store.User(ctx, h.id)
}

// SetSession stores token and user together.
func (h Handle) SetSession(ctx context.Context, token string, user domain.User) error {
	if h.id == "" {
		return ErrNoSession
	}
	return h.store.Set(ctx, h.id, token, user)
}

// ClearSession removes token and user together.
func (h Handle) ClearSession(ctx context.Context) error {
	if h.id == "" {
		return nil
	}
	return h.store.Clear(ctx, h.id)
}
