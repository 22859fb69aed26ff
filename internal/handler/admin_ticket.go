package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/turnosmx/sistema-turnos/internal/model"
	"github.com/turnosmx/sistema-turnos/internal/repository"
	"github.com/turnosmx/sistema-turnos/internal/turno"
	"github.com/turnosmx/sistema-turnos/internal/utils"
)

// AdminTicketHandler covers the back-office view of tickets: creation on
// behalf of a citizen, listing with filters, full edits, the estatus
// toggle and deletion. All routes sit behind JWTAuth + RequireRole(ADMIN).
type AdminTicketHandler struct {
	Assigner   *turno.Assigner
	Tickets    *repository.TicketRepo
	Municipios *repository.MunicipioRepo
	Stats      *repository.StatsRepo
}

func NewAdminTicketHandler(a *turno.Assigner, t *repository.TicketRepo, m *repository.MunicipioRepo, s *repository.StatsRepo) *AdminTicketHandler {
	return &AdminTicketHandler{Assigner: a, Tickets: t, Municipios: m, Stats: s}
}

type adminTicketReq struct {
	CURP            string `json:"curp"`
	Nombre          string `json:"nombre"`
	ApellidoPaterno string `json:"apellido_paterno"`
	ApellidoMaterno string `json:"apellido_materno"`
	Telefono        string `json:"telefono"`
	Email           string `json:"email"`
	MunicipioID     uint64 `json:"municipio_id"`
	Estatus         string `json:"estatus"`
}

// Dashboard aggregates the counters the admin landing page shows.
func (h *AdminTicketHandler) Dashboard(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	totals, err := h.Stats.Totals(ctx, 0)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	porMunicipio, err := h.Stats.ByMunicipio(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	porDia, err := h.Stats.PerDay(ctx, 7)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"totales":       totals,
		"por_municipio": porMunicipio,
		"por_dia":       porDia,
	})
}

// Create registers a ticket on behalf of a citizen who showed up at the
// desk. Same assignment path as the public flow; the admin may set the
// estatus directly, for walk-ins resolved on the spot.
func (h *AdminTicketHandler) Create(c echo.Context) error {
	var req adminTicketReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	curp := utils.NormalizeCURP(req.CURP)
	if !utils.ValidCURP(curp) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "curp invalido"})
	}
	req.Nombre = strings.TrimSpace(req.Nombre)
	req.ApellidoPaterno = strings.TrimSpace(req.ApellidoPaterno)
	if !utils.ValidName(req.Nombre) || !utils.ValidName(req.ApellidoPaterno) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "nombre y apellido paterno requeridos"})
	}
	if req.MunicipioID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "municipio_id requerido"})
	}
	estatus := strings.TrimSpace(req.Estatus)
	if estatus != "" && estatus != model.EstatusPendiente && estatus != model.EstatusResuelto {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "estatus invalido"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	t := &model.Ticket{
		CURP:            curp,
		Nombre:          req.Nombre,
		ApellidoPaterno: req.ApellidoPaterno,
		ApellidoMaterno: strings.TrimSpace(req.ApellidoMaterno),
		Telefono:        strings.TrimSpace(req.Telefono),
		Email:           strings.ToLower(strings.TrimSpace(req.Email)),
		MunicipioID:     req.MunicipioID,
		Estatus:         estatus,
	}
	if err := h.Assigner.Create(ctx, t); err != nil {
		switch err {
		case repository.ErrMunicipioNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"error": "municipio no encontrado"})
		case repository.ErrDuplicateCURP:
			return c.JSON(http.StatusConflict, echo.Map{"error": "ya existe un turno registrado con esta curp en el municipio"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "no se pudo asignar el turno"})
		}
	}

	go publishTicketCreated(h.Municipios, *t)

	return c.JSON(http.StatusCreated, t)
}

// List returns tickets with optional municipio_id, estatus and q search
// query parameters.
func (h *AdminTicketHandler) List(c echo.Context) error {
	f := repository.ListFilter{
		Estatus: strings.TrimSpace(c.QueryParam("estatus")),
		Search:  strings.TrimSpace(c.QueryParam("q")),
	}
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

// Get returns a single ticket by id.
func (h *AdminTicketHandler) Get(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	t, err := h.Tickets.GetByID(ctx, id)
	if err != nil {
		if err == repository.ErrTicketNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "ticket no encontrado"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, t)
}

// Update lets an administrator edit the mutable fields of a ticket.
// CURP and turn number are assigned once and never change.
func (h *AdminTicketHandler) Update(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req adminTicketReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	req.Nombre = strings.TrimSpace(req.Nombre)
	req.ApellidoPaterno = strings.TrimSpace(req.ApellidoPaterno)
	if !utils.ValidName(req.Nombre) || !utils.ValidName(req.ApellidoPaterno) || req.MunicipioID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "nombre, apellido paterno y municipio_id requeridos"})
	}
	estatus := strings.TrimSpace(req.Estatus)
	if estatus != model.EstatusPendiente && estatus != model.EstatusResuelto {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "estatus invalido"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	t := &model.Ticket{
		ID:              id,
		Nombre:          req.Nombre,
		ApellidoPaterno: req.ApellidoPaterno,
		ApellidoMaterno: strings.TrimSpace(req.ApellidoMaterno),
		Telefono:        strings.TrimSpace(req.Telefono),
		Email:           strings.ToLower(strings.TrimSpace(req.Email)),
		MunicipioID:     req.MunicipioID,
		Estatus:         estatus,
	}
	if err := h.Tickets.UpdateAdmin(ctx, t); err != nil {
		switch err {
		case repository.ErrTicketNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"error": "ticket no encontrado"})
		case repository.ErrDuplicateCURP:
			return c.JSON(http.StatusConflict, echo.Map{"error": "ya existe un turno con esta curp en el municipio"})
		case repository.ErrMunicipioNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"error": "municipio no encontrado"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
		}
	}

	updated, err := h.Tickets.GetByID(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, updated)
}

// ToggleEstatus flips Pendiente to Resuelto and back.
func (h *AdminTicketHandler) ToggleEstatus(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	estatus, err := h.Tickets.ToggleStatus(ctx, id)
	if err != nil {
		if err == repository.ErrTicketNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "ticket no encontrado"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"id": id, "estatus": estatus})
}

// Delete removes a ticket. Its turn number is never reassigned.
func (h *AdminTicketHandler) Delete(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Tickets.Delete(ctx, id); err != nil {
		if err == repository.ErrTicketNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "ticket no encontrado"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.NoContent(http.StatusNoContent)
}
