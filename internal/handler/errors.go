package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/design-studio/internal/logger"
	"github.com/iliyamo/design-studio/internal/service"
)

// ErrorHandler renders every error as {"detail": msg}.  Service errors
// carry their own status; internal failures are logged and replaced with
// a generic message.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status, msg := http.StatusInternalServerError, "internal server error"
	var se *service.Error
	var he *echo.HTTPError
	switch {
	case errors.As(err, &se):
		status = se.Kind.Status()
		if se.Kind != service.KindInternal {
			msg = se.Message
		}
	case errors.As(err, &he):
		status = he.Code
		msg = http.StatusText(he.Code)
		if m, ok := he.Message.(string); ok && m != "" {
			msg = m
		}
	}

	log := logger.FromEcho(c)
	if status >= http.StatusInternalServerError {
		log.Error("request error", zap.Int("status", status), zap.Error(err))
	}

	var werr error
	if c.Request().Method == http.MethodHead {
		werr = c.NoContent(status)
	} else {
		werr = c.JSON(status, echo.Map{"detail": msg})
	}
	if werr != nil {
		log.Warn("write error response failed", zap.Error(werr))
	}
}
