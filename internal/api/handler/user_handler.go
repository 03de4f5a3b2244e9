package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/userdesk/user-portal/internal/api/metrics"
	"github.com/userdesk/user-portal/internal/core/domain"
	"github.com/userdesk/user-portal/internal/core/ports"
)

// UserHandler exposes the admin-side user lifecycle. Every route here is
// mounted behind the session and admin guards.
type UserHandler struct {
	userService ports.UserService
	sessions    ports.SessionManager
}

func NewUserHandler(userService ports.UserService, sessions ports.SessionManager) *UserHandler {
	return &UserHandler{userService: userService, sessions: sessions}
}

// List returns all user records for the admin dashboard.
//
// @Summary      List users
// @Tags         admin
// @Produce      json
// @Success      200  {array}  domain.User
// @Router       /admin/users [get]
func (h *UserHandler) List(c echo.Context) error {
	users, err := h.userService.List(c.Request().Context())
	if err != nil {
		return err
	}
	if users == nil {
		users = []domain.User{}
	}
	return c.JSON(http.StatusOK, users)
}

// Get returns one user record, as prefill data for the edit form.
//
// @Summary      Fetch a user
// @Tags         admin
// @Produce      json
// @Success      200  {object}  domain.User
// @Failure      404  {object}  map[string]string
// @Router       /admin/users/{id} [get]
func (h *UserHandler) Get(c echo.Context) error {
	user, err := h.userService.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// Create adds a user from the admin add-user form.
//
// @Summary      Add a user
// @Tags         admin
// @Accept       mpfd
// @Success      303
// @Failure      422  {object}  map[string]any
// @Router       /admin/users [post]
func (h *UserHandler) Create(c echo.Context) error {
	image, imageName, err := readImage(c)
	if err != nil {
		return err
	}

	input := ports.AddUserInput{
		Name:      c.FormValue("name"),
		Email:     c.FormValue("email"),
		Phone:     c.FormValue("phone"),
		Password:  c.FormValue("password"),
		Image:     image,
		ImageName: imageName,
		IsAdmin:   c.FormValue("is_admin") == "true",
	}

	_, err = h.userService.Add(c.Request().Context(), input)
	switch {
	case err == nil:
		metrics.UserMutationsTotal.WithLabelValues("add", "success").Inc()
		setFlash(c, h.sessions, domain.FlashSuccess, "User created successfully")
		return c.Redirect(http.StatusSeeOther, "/admin")
	case isValidationError(err):
		metrics.UserMutationsTotal.WithLabelValues("add", "invalid").Inc()
		return err
	case errors.Is(err, domain.ErrEmailTaken):
		metrics.UserMutationsTotal.WithLabelValues("add", "conflict").Inc()
		setFlash(c, h.sessions, domain.FlashDanger, err.Error())
		return c.Redirect(http.StatusSeeOther, "/admin")
	default:
		metrics.UserMutationsTotal.WithLabelValues("add", "error").Inc()
		setFlash(c, h.sessions, domain.FlashDanger, "Something went wrong. Please try again.")
		return c.Redirect(http.StatusSeeOther, "/admin")
	}
}

// Update edits a user. Leaving the password blank keeps the stored hash;
// omitting the image keeps the stored avatar.
//
// @Summary      Update a user
// @Tags         admin
// @Accept       mpfd
// @Success      303
// @Failure      422  {object}  map[string]any
// @Router       /admin/users/{id} [post]
func (h *UserHandler) Update(c echo.Context) error {
	id := c.Param("id")

	image, imageName, err := readImage(c)
	if err != nil {
		return err
	}

	input := ports.UpdateUserInput{
		ID:        id,
		Name:      c.FormValue("name"),
		Email:     c.FormValue("email"),
		Phone:     c.FormValue("phone"),
		Password:  c.FormValue("password"),
		Image:     image,
		ImageName: imageName,
		IsAdmin:   c.FormValue("is_admin") == "true",
	}

	_, err = h.userService.Update(c.Request().Context(), input)
	switch {
	case err == nil:
		metrics.UserMutationsTotal.WithLabelValues("update", "success").Inc()
		setFlash(c, h.sessions, domain.FlashSuccess, "User updated successfully")
		return c.Redirect(http.StatusSeeOther, "/admin")
	case isValidationError(err):
		metrics.UserMutationsTotal.WithLabelValues("update", "invalid").Inc()
		return err
	case errors.Is(err, domain.ErrUserNotFound):
		metrics.UserMutationsTotal.WithLabelValues("update", "not_found").Inc()
		setFlash(c, h.sessions, domain.FlashDanger, "User not found")
		return c.Redirect(http.StatusSeeOther, "/admin")
	case errors.Is(err, domain.ErrEmailTaken):
		metrics.UserMutationsTotal.WithLabelValues("update", "conflict").Inc()
		setFlash(c, h.sessions, domain.FlashDanger, err.Error())
		return c.Redirect(http.StatusSeeOther, "/edit/"+id)
	default:
		metrics.UserMutationsTotal.WithLabelValues("update", "error").Inc()
		setFlash(c, h.sessions, domain.FlashDanger, "Failed to update user")
		return c.Redirect(http.StatusSeeOther, "/edit/"+id)
	}
}

// Delete removes a user and cascades to their avatar file.
//
// @Summary      Delete a user
// @Tags         admin
// @Success      303
// @Router       /admin/users/{id}/delete [post]
func (h *UserHandler) Delete(c echo.Context) error {
	_, err := h.userService.Delete(c.Request().Context(), c.Param("id"))
	switch {
	case err == nil:
		metrics.UserMutationsTotal.WithLabelValues("delete", "success").Inc()
		setFlash(c, h.sessions, domain.FlashInfo, "User deleted successfully")
	case errors.Is(err, domain.ErrUserNotFound):
		metrics.UserMutationsTotal.WithLabelValues("delete", "not_found").Inc()
		setFlash(c, h.sessions, domain.FlashDanger, "User not found")
	default:
		metrics.UserMutationsTotal.WithLabelValues("delete", "error").Inc()
		setFlash(c, h.sessions, domain.FlashDanger, "Error deleting user")
	}
	return c.Redirect(http.StatusSeeOther, "/admin")
}
