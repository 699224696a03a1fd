package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/design-studio/internal/service"
)

// NotificationHandler serves the caller's inbox.
type NotificationHandler struct {
	inbox *service.Notifications
}

func NewNotificationHandler(s *service.Notifications) *NotificationHandler {
	return &NotificationHandler{inbox: s}
}

func (h *NotificationHandler) List(c echo.Context) error {
	u, err := currentUser(c)
	if err != nil {
		return err
	}
	ctx, cancel := storeCtx(c)
	defer cancel()

	list, err := h.inbox.List(ctx, u.ID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, list)
}

func (h *NotificationHandler) UnreadCount(c echo.Context) error {
	u, err := currentUser(c)
	if err != nil {
		return err
	}
	ctx, cancel := storeCtx(c)
	defer cancel()

	n, err := h.inbox.UnreadCount(ctx, u.ID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"count": n})
}

func (h *NotificationHandler) MarkRead(c echo.Context) error {
	u, err := currentUser(c)
	if err != nil {
		return err
	}
	ctx, cancel := storeCtx(c)
	defer cancel()

	if err := h.inbox.MarkRead(ctx, c.Param("id"), u.ID); err != nil {
		return err
	}
	return message(c, "notification updated")
}

func (h *NotificationHandler) MarkAllRead(c echo.Context) error {
	u, err := currentUser(c)
	if err != nil {
		return err
	}
	ctx, cancel := storeCtx(c)
	defer cancel()

	n, err := h.inbox.MarkAllRead(ctx, u.ID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"updated": n})
}

func (h *NotificationHandler) Delete(c echo.Context) error {
	u, err := currentUser(c)
	if err != nil {
		return err
	}
	ctx, cancel := storeCtx(c)
	defer cancel()

	if err := h.inbox.Delete(ctx, c.Param("id"), u.ID); err != nil {
		return err
	}
	return message(c, "notification deleted")
}
