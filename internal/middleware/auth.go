package middleware

import (
	"net/http"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/idea_drop/internal/tokens"
)

const (
	ClaimsKey = "claims"
	UserIDKey = "user_id"

	// MsgUnauthenticated is the body of every 401 not caused by a login attempt.
	MsgUnauthenticated = "not authorized"
)

type Verifier interface {
	Verify(token string) (*tokens.Claims, error)
}

// RequireAuth accepts requests carrying a valid "Authorization: Bearer" access
// token and stores its subject under UserIDKey.
func RequireAuth(v Verifier) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		TokenLookup: "header:Authorization:Bearer ",
		ContextKey:  ClaimsKey,
		ParseTokenFunc: func(c echo.Context, auth string) (interface{}, error) {
			return v.Verify(auth)
		},
		SuccessHandler: func(c echo.Context) {
			if claims, ok := c.Get(ClaimsKey).(*tokens.Claims); ok {
				c.Set(UserIDKey, claims.UserID())
			}
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return echo.NewHTTPError(http.StatusUnauthorized, MsgUnauthenticated)
		},
	})
}
