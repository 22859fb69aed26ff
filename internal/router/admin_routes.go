package router

import (
	"github.com/labstack/echo/v4"

	"github.com/turnosmx/sistema-turnos/internal/handler"
	"github.com/turnosmx/sistema-turnos/internal/middleware"
)

// RegisterAdmin registers the back-office routes behind JWT + ADMIN role.
func RegisterAdmin(e *echo.Echo, t *handler.AdminTicketHandler, m *handler.AdminMunicipioHandler, jwtSecret string) {
	g := e.Group("/admin")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.RequireRole("ADMIN"))

	g.GET("/dashboard", t.Dashboard)

	g.GET("/tickets", t.List)
	g.POST("/tickets", t.Create)
	g.GET("/tickets/:id", t.Get)
	g.PUT("/tickets/:id", t.Update)
	g.POST("/tickets/:id/estatus", t.ToggleEstatus)
	g.DELETE("/tickets/:id", t.Delete)

	g.GET("/municipios", m.List)
	g.POST("/municipios", m.Create)
	g.GET("/municipios/:id", m.Get)
	g.PUT("/municipios/:id", m.Update)
	g.DELETE("/municipios/:id", m.Delete)
}
