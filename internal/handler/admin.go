package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/design-studio/internal/model"
	"github.com/iliyamo/design-studio/internal/service"
)

// AdminHandler serves the admin dashboard.  Every route sits behind
// RequireAdmin.
type AdminHandler struct {
	admin    *service.Admin
	showcase *service.Showcase
}

func NewAdminHandler(a *service.Admin, s *service.Showcase) *AdminHandler {
	return &AdminHandler{admin: a, showcase: s}
}

func (h *AdminHandler) Stats(c echo.Context) error {
	ctx, cancel := storeCtx(c)
	defer cancel()

	st, err := h.admin.Stats(ctx)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, st)
}

func (h *AdminHandler) Orders(c echo.Context) error {
	ctx, cancel := storeCtx(c)
	defer cancel()

	list, err := h.admin.Orders(ctx)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, list)
}

func (h *AdminHandler) Users(c echo.Context) error {
	ctx, cancel := storeCtx(c)
	defer cancel()

	list, err := h.admin.Users(ctx)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, list)
}

func (h *AdminHandler) Designs(c echo.Context) error {
	ctx, cancel := storeCtx(c)
	defer cancel()

	list, err := h.admin.Designs(ctx)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, list)
}

type orderStatusReq struct {
	Status model.OrderStatus `json:"status"`
}

func (h *AdminHandler) UpdateOrderStatus(c echo.Context) error {
	var req orderStatusReq
	if err := bind(c, &req); err != nil {
		return err
	}
	ctx, cancel := storeCtx(c)
	defer cancel()

	if err := h.admin.UpdateOrderStatus(ctx, c.Param("id"), req.Status); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "order status updated", "status": req.Status})
}

type designsLimitReq struct {
	DesignsLimit *int  `json:"designs_limit"`
	IsUnlimited  *bool `json:"is_unlimited"`
}

// UpdateDesignsLimit sets a user's generation cap and/or unlimited flag.
func (h *AdminHandler) UpdateDesignsLimit(c echo.Context) error {
	var req designsLimitReq
	if err := bind(c, &req); err != nil {
		return err
	}
	ctx, cancel := storeCtx(c)
	defer cancel()

	u, err := h.admin.UpdateUserQuota(ctx, c.Param("id"), req.DesignsLimit, req.IsUnlimited)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message":       "user quota updated",
		"user_id":       u.ID,
		"designs_limit": u.DesignsLimit,
		"is_unlimited":  u.IsUnlimited,
	})
}

func (h *AdminHandler) DeleteDesign(c echo.Context) error {
	ctx, cancel := storeCtx(c)
	defer cancel()

	if err := h.admin.DeleteDesign(ctx, c.Param("id")); err != nil {
		return err
	}
	return message(c, "design deleted")
}

func (h *AdminHandler) ListShowcase(c echo.Context) error {
	ctx, cancel := storeCtx(c)
	defer cancel()

	list, err := h.showcase.List(ctx)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, list)
}

func (h *AdminHandler) CreateShowcase(c echo.Context) error {
	var req service.ShowcaseInput
	if err := bind(c, &req); err != nil {
		return err
	}
	ctx, cancel := storeCtx(c)
	defer cancel()

	d, err := h.showcase.Create(ctx, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, d)
}

func (h *AdminHandler) UpdateShowcase(c echo.Context) error {
	var req model.ShowcasePatch
	if err := bind(c, &req); err != nil {
		return err
	}
	ctx, cancel := storeCtx(c)
	defer cancel()

	d, err := h.showcase.Update(ctx, c.Param("id"), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, d)
}

func (h *AdminHandler) DeleteShowcase(c echo.Context) error {
	ctx, cancel := storeCtx(c)
	defer cancel()

	if err := h.showcase.Delete(ctx, c.Param("id")); err != nil {
		return err
	}
	return message(c, "showcase design deleted")
}

func (h *AdminHandler) ToggleFeatured(c echo.Context) error {
	ctx, cancel := storeCtx(c)
	defer cancel()

	featured, err := h.showcase.ToggleFeatured(ctx, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"is_featured": featured})
}
