package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/userdesk/user-portal/internal/api/metrics"
	"github.com/userdesk/user-portal/internal/api/middleware"
	"github.com/userdesk/user-portal/internal/core/domain"
	"github.com/userdesk/user-portal/internal/core/ports"
)

type AuthHandler struct {
	authService ports.AuthService
	sessions    ports.SessionManager
	cookieTTL   int // seconds
}

func NewAuthHandler(authService ports.AuthService, sessions ports.SessionManager, cookieTTL int) *AuthHandler {
	return &AuthHandler{authService: authService, sessions: sessions, cookieTTL: cookieTTL}
}

// Signup registers a new account from the signup form.
//
// @Summary      Register a new user
// @Tags         auth
// @Accept       mpfd
// @Success      303
// @Failure      422  {object}  map[string]any
// @Router       /signup [post]
func (h *AuthHandler) Signup(c echo.Context) error {
	image, imageName, err := readImage(c)
	if err != nil {
		return err
	}

	input := ports.RegisterInput{
		Name:      c.FormValue("name"),
		Email:     c.FormValue("email"),
		Phone:     c.FormValue("phone"),
		Password:  c.FormValue("password"),
		Image:     image,
		ImageName: imageName,
	}

	_, err = h.authService.Register(c.Request().Context(), input)
	switch {
	case err == nil:
		metrics.RegistrationsTotal.WithLabelValues("success").Inc()
		setFlash(c, h.sessions, domain.FlashSuccess, "Registered successfully")
		return c.Redirect(http.StatusSeeOther, "/")
	case isValidationError(err):
		metrics.RegistrationsTotal.WithLabelValues("invalid").Inc()
		return err // central handler renders the field map
	case errors.Is(err, domain.ErrEmailTaken):
		metrics.RegistrationsTotal.WithLabelValues("conflict").Inc()
		setFlash(c, h.sessions, domain.FlashDanger, err.Error())
		return c.Redirect(http.StatusSeeOther, "/signup")
	default:
		metrics.RegistrationsTotal.WithLabelValues("error").Inc()
		setFlash(c, h.sessions, domain.FlashDanger, "Something went wrong. Please try again.")
		return c.Redirect(http.StatusSeeOther, "/signup")
	}
}

// Login authenticates a user, rotates the session cookie and redirects
// to the admin or user landing page depending on the stored role. That
// branch is the only login-time authorization decision; every later
// request re-checks the role through the session middleware.
//
// @Summary      Login
// @Tags         auth
// @Accept       mpfd
// @Success      303
// @Router       /login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	email := c.FormValue("email")
	password := c.FormValue("password")

	token, user, err := h.authService.Login(c.Request().Context(), email, password)
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrUserNotFound):
		metrics.LoginsTotal.WithLabelValues("not_found").Inc()
		setFlash(c, h.sessions, domain.FlashDanger, "Email ID not found. Please register or try again.")
		return c.Redirect(http.StatusSeeOther, "/")
	case errors.Is(err, domain.ErrInvalidCredentials):
		metrics.LoginsTotal.WithLabelValues("bad_password").Inc()
		setFlash(c, h.sessions, domain.FlashDanger, "Invalid email or password")
		return c.Redirect(http.StatusSeeOther, "/")
	default:
		metrics.LoginsTotal.WithLabelValues("error").Inc()
		setFlash(c, h.sessions, domain.FlashDanger, "Something went wrong. Please try again.")
		return c.Redirect(http.StatusSeeOther, "/")
	}

	metrics.LoginsTotal.WithLabelValues("success").Inc()
	middleware.SetSessionCookie(c, token, h.cookieTTL)
	_ = h.sessions.SetFlash(c.Request().Context(), token, domain.Flash{
		Type:    domain.FlashSuccess,
		Message: "Logged in successfully",
	})

	if user.IsAdmin {
		return c.Redirect(http.StatusSeeOther, "/admin")
	}
	return c.Redirect(http.StatusSeeOther, "/user")
}

// Logout destroys the session and issues a fresh anonymous one that
// carries the logged-out flash. The outcome is logged-out even when the
// store refused the destroy.
//
// @Summary      Logout
// @Tags         auth
// @Success      303
// @Router       /logout [get]
func (h *AuthHandler) Logout(c echo.Context) error {
	_ = h.authService.Logout(c.Request().Context(), middleware.Token(c))

	fresh, err := h.sessions.Create(c.Request().Context(), nil)
	if err != nil {
		middleware.ClearSessionCookie(c)
		return c.Redirect(http.StatusSeeOther, "/")
	}

	middleware.SetSessionCookie(c, fresh, h.cookieTTL)
	_ = h.sessions.SetFlash(c.Request().Context(), fresh, domain.Flash{
		Type:    domain.FlashInfo,
		Message: "Successfully logged out",
	})
	return c.Redirect(http.StatusSeeOther, "/")
}

// Whoami is the renderer boundary: it returns the request's identity
// plus the popped flash. Reading the flash here is what clears it.
//
// @Summary      Current session
// @Tags         auth
// @Produce      json
// @Success      200  {object}  map[string]any
// @Router       /session [get]
func (h *AuthHandler) Whoami(c echo.Context) error {
	state := middleware.SessionState(c)
	if state == nil {
		state = &domain.SessionState{}
	}

	flash, err := h.sessions.PopFlash(c.Request().Context(), middleware.Token(c))
	if err != nil && !errors.Is(err, domain.ErrUnauthenticated) {
		return err
	}

	return c.JSON(http.StatusOK, map[string]any{
		"authenticated": state.Authenticated,
		"email":         state.Email,
		"name":          state.Name,
		"is_admin":      state.IsAdmin,
		"flash":         flash,
	})
}

func isValidationError(err error) bool {
	var ve *domain.ValidationError
	return errors.As(err, &ve)
}
