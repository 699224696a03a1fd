package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/design-studio/internal/middleware"
	"github.com/iliyamo/design-studio/internal/model"
)

// storeTimeout bounds the store work of a single request.
const storeTimeout = 5 * time.Second

func storeCtx(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), storeTimeout)
}

func bind(c echo.Context, dst any) error {
	if err := c.Bind(dst); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	return nil
}

func currentUser(c echo.Context) (model.User, error) {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		return model.User{}, echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
	}
	return u, nil
}

// quotaView is the wire shape of a quota.
func quotaView(q model.Quota) echo.Map {
	return echo.Map{
		"designs_limit":     q.Limit,
		"designs_used":      q.Used,
		"designs_remaining": q.Remaining(),
		"is_unlimited":      q.IsUnlimited,
	}
}

func message(c echo.Context, msg string) error {
	return c.JSON(http.StatusOK, echo.Map{"message": msg})
}
