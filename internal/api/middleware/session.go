package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/userdesk/user-portal/internal/core/domain"
	"github.com/userdesk/user-portal/internal/core/ports"
)

// CookieName is the session cookie. Its value is an opaque signed token;
// all session state stays server-side.
const CookieName = "portal_session"

// Context keys set by WithSession.
const (
	ContextToken   = "session_token"
	ContextSession = "session_state"
)

// WithSession resolves the session cookie into server-side state and
// stashes token + state in the request context. Requests without a valid
// session get a fresh anonymous one so a flash can always be parked.
func WithSession(sessions ports.SessionManager, ttlSeconds int) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			var (
				token string
				state *domain.SessionState
			)

			if cookie, err := c.Cookie(CookieName); err == nil {
				if resolved, err := sessions.Resolve(c.Request().Context(), cookie.Value); err == nil {
					token = cookie.Value
					state = resolved
				}
			}

			if state == nil {
				fresh, err := sessions.Create(c.Request().Context(), nil)
				if err != nil {
					return err
				}
				token = fresh
				state = &domain.SessionState{}
				SetSessionCookie(c, token, ttlSeconds)
			}

			c.Set(ContextToken, token)
			c.Set(ContextSession, state)
			return next(c)
		}
	}
}

// RequireSession redirects unauthenticated requests to the anonymous
// landing page. The redirect is a normal control outcome, not an error.
func RequireSession() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			state := SessionState(c)
			if state == nil || !state.Authenticated {
				return c.Redirect(http.StatusSeeOther, "/")
			}
			return next(c)
		}
	}
}

// RequireAdmin gates admin routes on the session's admin flag, not just
// on having any session. Non-admins land back on their own dashboard
// with a danger flash.
func RequireAdmin(sessions ports.SessionManager) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			state := SessionState(c)
			if state == nil || !state.Authenticated {
				return c.Redirect(http.StatusSeeOther, "/")
			}
			if !state.IsAdmin {
				_ = sessions.SetFlash(c.Request().Context(), Token(c), domain.Flash{
					Type:    domain.FlashDanger,
					Message: "Admin access required",
				})
				return c.Redirect(http.StatusSeeOther, "/user")
			}
			return next(c)
		}
	}
}

// Token returns the session token stashed by WithSession.
func Token(c echo.Context) string {
	token, _ := c.Get(ContextToken).(string)
	return token
}

// SessionState returns the resolved session state, or nil.
func SessionState(c echo.Context) *domain.SessionState {
	state, _ := c.Get(ContextSession).(*domain.SessionState)
	return state
}

// SetSessionCookie writes the session cookie for a token.
func SetSessionCookie(c echo.Context, token string, ttlSeconds int) {
	c.SetCookie(&http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   ttlSeconds,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearSessionCookie expires the session cookie.
func ClearSessionCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
