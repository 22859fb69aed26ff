// Package router wires HTTP routes to their handlers. The citizen flow
// lives at the root, the back office under /admin and the JSON API under
// /api.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/turnosmx/sistema-turnos/internal/handler"
	"github.com/turnosmx/sistema-turnos/internal/middleware"
)

// RegisterRoutes registers the health probe.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterPublic registers the citizen-facing flow. The rate limiter
// guards the submission endpoints; the response cache fronts the
// municipality catalog, which changes rarely.
func RegisterPublic(e *echo.Echo, p *handler.PublicHandler, limit, cache echo.MiddlewareFunc) {
	e.GET("/", p.Home, cache)
	e.POST("/solicitar-turno", p.SolicitarTurno, limit)
	// GET takes curp and numero_turno as query parameters, POST as a
	// form or JSON body; both land on the same lookup.
	e.GET("/modificar-turno", p.ModificarTurno)
	e.POST("/modificar-turno", p.ModificarTurno, limit)
	e.POST("/actualizar-turno/:id", p.ActualizarTurno, limit)
	e.GET("/comprobante/:id", p.Comprobante)
}

// RegisterAuth registers login and session management. Logout works with
// either a refresh token in the body or a bearer token, so it is mounted
// both outside and inside the protected group.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/auth")
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	g.POST("/logout", a.Logout)

	auth := e.Group("/admin")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.Use(middleware.RequireRole("ADMIN"))
	auth.GET("/me", a.Me)
	auth.POST("/logout", a.Logout)
}
