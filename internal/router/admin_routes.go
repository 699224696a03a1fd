package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/design-studio/internal/middleware"
)

// RegisterAdmin registers the dashboard endpoints under /api/admin.  All
// routes require a valid token of an admin account.
func RegisterAdmin(e *echo.Echo, h Handlers, auth middleware.Authenticator) {
	g := e.Group(
		"/api/admin",
		middleware.JWTAuth(auth),
		middleware.RequireAdmin(),
	)
	g.GET("/stats", h.Admin.Stats)
	g.GET("/orders", h.Admin.Orders)
	g.PUT("/orders/:id/status", h.Admin.UpdateOrderStatus)
	g.GET("/users", h.Admin.Users)
	g.PUT("/users/:id/designs-limit", h.Admin.UpdateDesignsLimit)
	g.GET("/designs", h.Admin.Designs)
	g.DELETE("/designs/:id", h.Admin.DeleteDesign)

	g.GET("/showcase-designs", h.Admin.ListShowcase)
	g.POST("/showcase-designs", h.Admin.CreateShowcase)
	g.PUT("/showcase-designs/:id", h.Admin.UpdateShowcase)
	g.DELETE("/showcase-designs/:id", h.Admin.DeleteShowcase)
	g.PUT("/showcase-designs/:id/toggle-featured", h.Admin.ToggleFeatured)
}
