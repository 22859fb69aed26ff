package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/turnosmx/sistema-turnos/internal/repository"
)

// APIHandler exposes the integrator-facing JSON API. Kiosks and partner
// sites consume it without authentication, so these routes carry the rate
// limiter instead of JWT.
type APIHandler struct {
	Public  *PublicHandler
	Tickets *repository.TicketRepo
	Stats   *repository.StatsRepo
}

func NewAPIHandler(p *PublicHandler, t *repository.TicketRepo, s *repository.StatsRepo) *APIHandler {
	return &APIHandler{Public: p, Tickets: t, Stats: s}
}

// ListTickets mirrors the admin list with the same filters but without
// the search box.
func (h *APIHandler) ListTickets(c echo.Context) error {
	f := repository.ListFilter{Estatus: strings.TrimSpace(c.QueryParam("estatus"))}
	if raw := c.QueryParam("municipio_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid municipio_id"})
		}
		f.MunicipioID = id
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	items, err := h.Tickets.List(ctx, f)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"tickets": items, "total": len(items)})
}

// CreateTicket is the programmatic twin of SolicitarTurno; validation
// and event publishing are identical, but a duplicate CURP answers 400
// instead of the web endpoint's 409.
func (h *APIHandler) CreateTicket(c echo.Context) error {
	return h.Public.createTicket(c, http.StatusBadRequest)
}

// Estadisticas returns the counters for one municipality or the whole
// system when municipio_id is absent.
func (h *APIHandler) Estadisticas(c echo.Context) error {
	var municipioID uint64
	if raw := c.QueryParam("municipio_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid municipio_id"})
		}
		municipioID = id
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	totals, err := h.Stats.Totals(ctx, municipioID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	pct := 0.0
	if totals.Total > 0 {
		pct = float64(totals.Resueltos) / float64(totals.Total) * 100
	}
	return c.JSON(http.StatusOK, echo.Map{
		"total":                totals.Total,
		"pendientes":           totals.Pendientes,
		"resueltos":            totals.Resueltos,
		"porcentaje_resueltos": pct,
	})
}
