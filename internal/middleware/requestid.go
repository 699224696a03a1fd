package middleware

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/design-studio/internal/logger"
)

// RequestID propagates the caller's X-Request-ID or mints a new one, and
// echoes it on the response.
func RequestID() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			rid := c.Request().Header.Get(logger.RequestIDKey)
			if rid == "" || len(rid) > 128 {
				rid = uuid.NewString()
			}
			c.Set(logger.RequestIDKey, rid)
			c.Response().Header().Set(logger.RequestIDKey, rid)
			return next(c)
		}
	}
}
