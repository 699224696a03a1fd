// Package router maps URLs onto handlers and their middleware.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/design-studio/internal/handler"
	"github.com/iliyamo/design-studio/internal/metrics"
	"github.com/iliyamo/design-studio/internal/middleware"
)

// Handlers bundles every HTTP handler of the API.
type Handlers struct {
	Auth          *handler.AuthHandler
	Designs       *handler.DesignHandler
	Orders        *handler.OrderHandler
	Coupons       *handler.CouponHandler
	Notifications *handler.NotificationHandler
	Admin         *handler.AdminHandler
	Prompt        *handler.PromptHandler
}

// Guards are the cross-cutting middlewares placed on individual routes.
// RateLimit and Cache may be pass-throughs when Redis is unavailable.
type Guards struct {
	Auth      middleware.Authenticator
	RateLimit echo.MiddlewareFunc
	Cache     echo.MiddlewareFunc
}

// Register wires the full surface onto e.
func Register(e *echo.Echo, h Handlers, g Guards, ready map[string]handler.Check) {
	RegisterRoutes(e, ready)
	RegisterPublic(e, h, g.Cache)
	RegisterCustomer(e, h, g)
	RegisterAdmin(e, h, g.Auth)
}

// RegisterRoutes registers the probes and the metrics endpoint.
func RegisterRoutes(e *echo.Echo, ready map[string]handler.Check) {
	e.GET("/healthz", handler.Health)
	e.GET("/readyz", handler.Ready(ready))
	e.GET("/metrics", metrics.Handler())
}

// RegisterPublic registers sign-in and the catalog.  Catalog reads go
// through the response cache.
func RegisterPublic(e *echo.Echo, h Handlers, cache echo.MiddlewareFunc) {
	a := e.Group("/api/auth")
	a.POST("/register", h.Auth.Register)
	a.POST("/login", h.Auth.Login)
	a.POST("/google", h.Auth.Google)

	e.GET("/api/designs/showcase", h.Designs.Showcase, cache)
	e.GET("/api/templates", handler.Templates, cache)
	e.GET("/api/size-chart", handler.SizeChart, cache)
	e.GET("/api/color-palettes", handler.ColorPalettes, cache)
	e.GET("/api/calculate-price", handler.CalculatePrice, cache)
	e.POST("/api/calculate-price", handler.CalculatePrice)
}
