package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/design-studio/internal/service"
)

type OrderHandler struct {
	orders *service.Orders
}

func NewOrderHandler(o *service.Orders) *OrderHandler {
	return &OrderHandler{orders: o}
}

// Create places an order, redeeming coupon_code when present.
func (h *OrderHandler) Create(c echo.Context) error {
	u, err := currentUser(c)
	if err != nil {
		return err
	}
	var req service.CreateOrderInput
	if err := bind(c, &req); err != nil {
		return err
	}
	ctx, cancel := storeCtx(c)
	defer cancel()

	o, err := h.orders.CreateOrder(ctx, u, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, o)
}

func (h *OrderHandler) Mine(c echo.Context) error {
	u, err := currentUser(c)
	if err != nil {
		return err
	}
	ctx, cancel := storeCtx(c)
	defer cancel()

	list, err := h.orders.ListOrders(ctx, u.ID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, list)
}
