package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/userdesk/user-portal/internal/api/middleware"
	"github.com/userdesk/user-portal/internal/core/domain"
	"github.com/userdesk/user-portal/internal/core/ports"
)

// readImage pulls the optional "image" part out of a multipart form.
// A missing part is not an error; required-ness is the service's call.
func readImage(c echo.Context) ([]byte, string, error) {
	fh, err := c.FormFile("image")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, "", nil
		}
		return nil, "", err
	}

	f, err := fh.Open()
	if err != nil {
		return nil, "", err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, "", err
	}
	return data, fh.Filename, nil
}

// setFlash parks a one-shot message on the request's session. A flash
// that cannot be stored only costs the user a status line, so the error
// is dropped here rather than failing the whole operation.
func setFlash(c echo.Context, sessions ports.SessionManager, flashType, message string) {
	_ = sessions.SetFlash(c.Request().Context(), middleware.Token(c), domain.Flash{
		Type:    flashType,
		Message: message,
	})
}
