package client

import (
	"github.com/labstack/echo/v4"
)

// RegisterRoutes wires the storefront endpoints under the given Echo group.
// The throttle middleware applies only to serial number lookups.
func RegisterRoutes(g *echo.Group, h *Handler, throttle echo.MiddlewareFunc) {

	// Page and the caller's own registrations
	g.GET("/", h.Page)
	g.GET("", h.Page)
	g.GET("/mine", h.Mine)

	// Two step workflow: look up the serial, then claim it
	g.POST("/validate", h.Validate, throttle)
	g.POST("/register", h.Register)
}
