package router

import (
	"github.com/labstack/echo/v4"

	"github.com/turnosmx/sistema-turnos/internal/handler"
)

// RegisterAPI registers the integrator JSON API. Creation shares the
// public rate limiter; estadisticas sits behind the response cache.
func RegisterAPI(e *echo.Echo, a *handler.APIHandler, limit, cache echo.MiddlewareFunc) {
	g := e.Group("/api")
	g.GET("/tickets", a.ListTickets)
	g.POST("/tickets", a.CreateTicket, limit)
	g.GET("/estadisticas", a.Estadisticas, cache)
}
