package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/design-studio/internal/model"
)

// Authenticator resolves a bearer token to its user.
type Authenticator interface {
	Authenticate(ctx context.Context, raw string) (model.User, error)
}

// JWTAuth requires an "Authorization: Bearer <token>" header, resolves the
// token's user and stores it on the context under UserKey (and its id
// under UserIDKey).  Authentication errors are passed to the HTTP error
// handler unchanged.
func JWTAuth(auth Authenticator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			raw, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || strings.TrimSpace(raw) == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
			}
			u, err := auth.Authenticate(c.Request().Context(), strings.TrimSpace(raw))
			if err != nil {
				return err
			}
			c.Set(UserIDKey, u.ID)
			c.Set(UserKey, u)
			return next(c)
		}
	}
}
