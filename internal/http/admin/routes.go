package admin

import "github.com/labstack/echo/v4"

func RegisterRoutes(g *echo.Group, h *Handler) {

	// Registrations
	g.GET("/registrations", h.GetRegistrations)
	g.GET("/registrations/:id", h.GetRegistration)
	g.PUT("/registrations/:id", h.UpdateRegistration)
	g.DELETE("/registrations/:id", h.DeleteRegistration)
	g.POST("/registrations/import", h.ImportSerials)

	// Products
	g.GET("/products", h.GetProducts)
	g.GET("/products/:id", h.GetProduct)
	g.POST("/products", h.CreateProduct)
	g.PUT("/products/:id", h.UpdateProduct)
	g.DELETE("/products/:id", h.DeleteProduct)

	// Accounts
	g.GET("/accounts", h.GetAccounts)
	g.GET("/accounts/:id", h.GetAccount)
	g.POST("/accounts", h.CreateAccount)
	g.PUT("/accounts/:id", h.UpdateAccount)
	g.DELETE("/accounts/:id", h.DeleteAccount)

	// Backup
	g.GET("/backups", h.GetBackups)
	g.POST("/backup", h.BackupDatabase)
}
