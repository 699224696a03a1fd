package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/design-studio/internal/middleware"
)

// RegisterCustomer registers the endpoints of a signed-in user under /api.
// Generation and prompt enhancement are additionally rate limited.
func RegisterCustomer(e *echo.Echo, h Handlers, g Guards) {
	api := e.Group("/api", middleware.JWTAuth(g.Auth))

	api.GET("/auth/me", h.Auth.Me)
	api.GET("/user/designs-quota", h.Designs.Quota)
	api.PUT("/user/measurements", h.Auth.UpdateMeasurements)

	api.POST("/prompt/enhance", h.Prompt.Enhance, g.RateLimit)

	api.POST("/designs/preview", h.Designs.Preview, g.RateLimit)
	api.POST("/designs/save", h.Designs.Save)
	api.GET("/designs", h.Designs.List)
	api.PUT("/designs/:id/favorite", h.Designs.ToggleFavorite)
	api.DELETE("/designs/:id", h.Designs.Delete)

	api.POST("/orders/create", h.Orders.Create)
	api.GET("/orders/my-orders", h.Orders.Mine)
	api.GET("/orders", h.Orders.Mine)

	api.POST("/coupons/validate", h.Coupons.Validate)

	api.GET("/notifications", h.Notifications.List)
	api.GET("/notifications/unread-count", h.Notifications.UnreadCount)
	api.PUT("/notifications/mark-all-read", h.Notifications.MarkAllRead)
	api.PUT("/notifications/:id/read", h.Notifications.MarkRead)
	api.DELETE("/notifications/:id", h.Notifications.Delete)

	// coupon administration lives beside validate rather than under /admin
	admin := middleware.RequireAdmin()
	api.GET("/coupons", h.Coupons.List, admin)
	api.POST("/coupons", h.Coupons.Create, admin)
	api.PUT("/coupons/:id", h.Coupons.Update, admin)
	api.DELETE("/coupons/:id", h.Coupons.Delete, admin)
}
