package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/idea_drop/internal/cookie"
	"github.com/Skotchmaster/idea_drop/internal/logging"
	"github.com/Skotchmaster/idea_drop/internal/middleware"
	"github.com/Skotchmaster/idea_drop/internal/models"
	"github.com/Skotchmaster/idea_drop/internal/service"
)

type AuthHTTP struct {
	Svc     *service.AuthService
	Cookies cookie.Policy
}

type sessionResponse struct {
	AccessToken string            `json:"accessToken"`
	User        models.PublicUser `json:"user"`
}

func (h *AuthHTTP) Register(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_register")

	var req service.RegisterInput
	if err := c.Bind(&req); err != nil {
		l.Warn("register_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, msgInvalidBody)
	}

	res, err := h.Svc.Register(ctx, req)
	if err != nil {
		return httpError(err)
	}

	c.SetCookie(h.Cookies.Set(res.RefreshToken))
	return c.JSON(http.StatusCreated, sessionResponse{
		AccessToken: res.AccessToken,
		User:        res.User.Public(),
	})
}

func (h *AuthHTTP) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_login")

	var req service.LoginInput
	if err := c.Bind(&req); err != nil {
		l.Warn("login_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, msgInvalidBody)
	}

	res, err := h.Svc.Login(ctx, req)
	if err != nil {
		return httpError(err)
	}

	c.SetCookie(h.Cookies.Set(res.RefreshToken))
	return c.JSON(http.StatusCreated, sessionResponse{
		AccessToken: res.AccessToken,
		User:        res.User.Public(),
	})
}

func (h *AuthHTTP) Refresh(c echo.Context) error {
	ctx := c.Request().Context()

	var token string
	if ck, err := c.Cookie(h.Cookies.Name); err == nil {
		token = ck.Value
	}

	res, err := h.Svc.Refresh(ctx, token)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, sessionResponse{
		AccessToken: res.AccessToken,
		User:        res.User.Public(),
	})
}

// LogOut always succeeds; there is no server-side session to end.
func (h *AuthHTTP) LogOut(c echo.Context) error {
	l := logging.FromContext(c.Request().Context()).With("handler", "auth_logout")

	c.SetCookie(h.Cookies.Clear())
	l.Info("successful_logout")
	return c.JSON(http.StatusOK, echo.Map{
		"message": "Logged out successfully",
	})
}

func (h *AuthHTTP) Me(c echo.Context) error {
	userID, _ := c.Get(middleware.UserIDKey).(string)

	user, err := h.Svc.CurrentUser(c.Request().Context(), userID)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"user": user.Public(),
	})
}
