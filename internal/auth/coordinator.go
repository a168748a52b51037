package auth

import (
	"context"
	"log/slog"
)

// ViewDropper forgets state kept for a session id.
type ViewDropper interface {
	Drop(ctx context.Context, sessionID string) error
}

// Coordinator is the one place that reacts to the API rejecting a session.
// It also hands the API client the token of the request's session.
type Coordinator struct {
	views  ViewDropper
	logger *slog.Logger
}

// NewCoordinator returns a Coordinator. views may be nil.
func NewCoordinator(views ViewDropper, logger *slog.Logger) *Coordinator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Coordinator{views: views, logger: logger}
}

// Token implements api.TokenSource.
func (co *Coordinator) Token(ctx context.Context) (string, bool) {
	s := FromContext(ctx)
	if s == nil {
		return "", false
	}
	t := s.Token()
	return t, t != ""
}

// SessionInvalidated implements api.SessionObserver: the persisted session is
// cleared, cached views are dropped and the session is marked so the response
// sends the browser to the login page.
func (co *Coordinator) SessionInvalidated(ctx context.Context) {
	s := FromContext(ctx)
	if s == nil {
		return
	}
	id := s.ID()
	if err := s.invalidate(ctx); err != nil {
		co.logger.Error("clear rejected session", "err", err)
	}
	if co.views != nil && id != "" {
		if err := co.views.Drop(ctx, id); err != nil {
			co.logger.Warn("drop view state", "err", err)
		}
	}
	co.logger.Info("session invalidated", "state", s.State().String())
}
