package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/idea_drop/internal/middleware"
	"github.com/Skotchmaster/idea_drop/internal/service"
)

const (
	msgInvalidBody        = "invalid body"
	msgValidation         = "all fields are required"
	msgDuplicateEmail     = "user already exists"
	msgInvalidCredentials = "invalid credentials"
	msgInternal           = "internal error"
)

// httpError maps service errors to responses. Nothing from err itself reaches
// the body except per-field validation messages.
func httpError(err error) *echo.HTTPError {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		return echo.NewHTTPError(http.StatusBadRequest, echo.Map{
			"message": msgValidation,
			"fields":  verr.Fields,
		})
	case errors.Is(err, service.ErrValidation):
		return echo.NewHTTPError(http.StatusBadRequest, msgValidation)
	case errors.Is(err, service.ErrDuplicateEmail):
		return echo.NewHTTPError(http.StatusBadRequest, msgDuplicateEmail)
	case errors.Is(err, service.ErrInvalidCredentials):
		return echo.NewHTTPError(http.StatusUnauthorized, msgInvalidCredentials)
	case errors.Is(err, service.ErrUnauthenticated):
		return echo.NewHTTPError(http.StatusUnauthorized, middleware.MsgUnauthenticated)
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, msgInternal)
	}
}
