package auth

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/fatim-sangare/frontend-test-nan/internal/session"
)

// LoginPath is where anonymous visitors are sent.
const LoginPath = "/auth"

// Cookie describes the session cookie.
type Cookie struct {
	Name   string
	Secure bool
	TTL    time.Duration
}

// Set writes the session id cookie (httpOnly, Lax).
func (ck Cookie) Set(c *gin.Context, id string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(ck.Name, id, int(ck.TTL.Seconds()), "/", "", ck.Secure, true)
}

// Clear expires the session cookie.
func (ck Cookie) Clear(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(ck.Name, "", -1, "/", "", ck.Secure, true)
}

// Current returns the Session restored for this request. Handlers behind
// Restore always get one.
func Current(c *gin.Context) *Session {
	if s := FromContext(c.Request.Context()); s != nil {
		return s
	}
	return NewSession(nil, "")
}

// Restore builds the request's Session from the cookie and the store, and
// puts it into the request context. A store failure is logged and leaves the
// session restoring; the guard decides what that means.
func Restore(store session.Store, ck Cookie, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := c.Cookie(ck.Name)
		if err != nil {
			id = ""
		}
		s := NewSession(store, id)
		if err := s.Restore(c.Request.Context()); err != nil {
			logger.Warn("session restore failed", "err", err)
		}
		c.Request = c.Request.WithContext(WithSession(c.Request.Context(), s))
		c.Next()
	}
}

// RequireSession guards routes that need a signed-in user. While the session
// is still restoring it answers 503 through restoring and never redirects.
// Once ready, a missing token redirects to LoginPath.
func RequireSession(restoring gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		s := Current(c)
		if !s.Ready() {
			c.Header("Retry-After", "1")
			if restoring != nil {
				restoring(c)
			} else {
				c.String(http.StatusServiceUnavailable, "session is being restored")
			}
			c.Abort()
			return
		}
		if s.Token() == "" {
			c.Redirect(http.StatusSeeOther, LoginPath)
			c.Abort()
			return
		}
		c.Next()
	}
}
