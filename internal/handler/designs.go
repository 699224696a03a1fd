package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/design-studio/internal/service"
)

// DesignHandler serves generation, the user's saved designs and the
// public showcase.
type DesignHandler struct {
	pipeline *service.Pipeline
	quota    *service.Quota
	orders   *service.Orders
	showcase *service.Showcase
}

func NewDesignHandler(p *service.Pipeline, q *service.Quota, o *service.Orders, s *service.Showcase) *DesignHandler {
	return &DesignHandler{pipeline: p, quota: q, orders: o, showcase: s}
}

// Quota returns the caller's generation allowance.
func (h *DesignHandler) Quota(c echo.Context) error {
	u, err := currentUser(c)
	if err != nil {
		return err
	}
	ctx, cancel := storeCtx(c)
	defer cancel()

	q, err := h.quota.Status(ctx, u.ID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, quotaView(q))
}

// Preview renders a design.  The request context is passed unbounded; the
// pipeline applies the image service deadline itself.
func (h *DesignHandler) Preview(c echo.Context) error {
	u, err := currentUser(c)
	if err != nil {
		return err
	}
	var req service.PreviewInput
	if err := bind(c, &req); err != nil {
		return err
	}
	res, err := h.pipeline.Generate(c.Request().Context(), u, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, res)
}

func (h *DesignHandler) Save(c echo.Context) error {
	u, err := currentUser(c)
	if err != nil {
		return err
	}
	var req service.SaveDesignInput
	if err := bind(c, &req); err != nil {
		return err
	}
	ctx, cancel := storeCtx(c)
	defer cancel()

	d, _, err := h.orders.SaveDesign(ctx, u, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, d)
}

func (h *DesignHandler) List(c echo.Context) error {
	u, err := currentUser(c)
	if err != nil {
		return err
	}
	ctx, cancel := storeCtx(c)
	defer cancel()

	list, err := h.orders.ListDesigns(ctx, u.ID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, list)
}

func (h *DesignHandler) ToggleFavorite(c echo.Context) error {
	u, err := currentUser(c)
	if err != nil {
		return err
	}
	ctx, cancel := storeCtx(c)
	defer cancel()

	fav, err := h.orders.ToggleFavorite(ctx, c.Param("id"), u.ID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"is_favorite": fav})
}

// Delete removes one of the caller's designs and gives the generation
// slot back.
func (h *DesignHandler) Delete(c echo.Context) error {
	u, err := currentUser(c)
	if err != nil {
		return err
	}
	ctx, cancel := storeCtx(c)
	defer cancel()

	if err := h.orders.DeleteDesign(ctx, c.Param("id"), u.ID); err != nil {
		return err
	}
	return message(c, "design deleted")
}

// Showcase lists the active inspiration designs.
func (h *DesignHandler) Showcase(c echo.Context) error {
	ctx, cancel := storeCtx(c)
	defer cancel()

	list, err := h.showcase.ListPublic(ctx)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, list)
}
