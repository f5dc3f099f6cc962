package web

import (
	"github.com/labstack/echo/v4"
)

// RegisterRoutes registers all web UI routes
func RegisterRoutes(e *echo.Group, h *Handler) {
	// Authentication
	e.GET("/login", h.LoginPage)
	e.POST("/login", h.Login)
	e.POST("/logout", h.Logout)

	// Registrations
	e.GET("/", h.Index)
	e.GET("", h.Index)
	e.GET("/registrations/:id/edit", h.EditRegistrationForm)
	e.POST("/registrations/:id", h.UpdateRegistration)
	e.PUT("/registrations/:id", h.UpdateRegistration)
	e.POST("/registrations/:id/delete", h.DeleteRegistration)
	e.DELETE("/registrations/:id", h.DeleteRegistration)

	// Import
	e.POST("/import", h.ImportSerials)
}
