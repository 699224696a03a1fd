package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/design-studio/internal/model"
)

// Context keys set by JWTAuth.
const (
	UserIDKey = "user_id"
	UserKey   = "user"
)

// CurrentUser returns the authenticated user stored by JWTAuth.
func CurrentUser(c echo.Context) (model.User, bool) {
	u, ok := c.Get(UserKey).(model.User)
	return u, ok
}

// currentUserID returns the authenticated user id, or "anon".
func currentUserID(c echo.Context) string {
	if s, ok := c.Get(UserIDKey).(string); ok && s != "" {
		return s
	}
	return "anon"
}
