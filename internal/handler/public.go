package handler

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/turnosmx/sistema-turnos/internal/model"
	"github.com/turnosmx/sistema-turnos/internal/receipt"
	"github.com/turnosmx/sistema-turnos/internal/repository"
	"github.com/turnosmx/sistema-turnos/internal/turno"
	"github.com/turnosmx/sistema-turnos/internal/utils"
)

// PublicHandler serves the citizen-facing flow: requesting a turn,
// looking an existing one up, correcting contact data and downloading
// the comprobante. None of these routes require authentication.
type PublicHandler struct {
	Assigner   *turno.Assigner
	Tickets    *repository.TicketRepo
	Municipios *repository.MunicipioRepo
}

func NewPublicHandler(a *turno.Assigner, t *repository.TicketRepo, m *repository.MunicipioRepo) *PublicHandler {
	return &PublicHandler{Assigner: a, Tickets: t, Municipios: m}
}

// ----- DTOs -----

// The kiosk pages submit these as regular form posts while the JSON API
// sends the same field names as a JSON body, so both tag sets are bound.
type solicitarReq struct {
	CURP            string `json:"curp" form:"curp"`
	Nombre          string `json:"nombre" form:"nombre"`
	ApellidoPaterno string `json:"apellido_paterno" form:"apellido_paterno"`
	ApellidoMaterno string `json:"apellido_materno" form:"apellido_materno"`
	Telefono        string `json:"telefono" form:"telefono"`
	Email           string `json:"email" form:"email"`
	MunicipioID     uint64 `json:"municipio_id" form:"municipio_id"`
}

// Lookups additionally bind query parameters for the GET variant.
type modificarReq struct {
	CURP        string `json:"curp" form:"curp" query:"curp"`
	NumeroTurno uint32 `json:"numero_turno" form:"numero_turno" query:"numero_turno"`
}

type actualizarReq struct {
	Nombre          string `json:"nombre" form:"nombre"`
	ApellidoPaterno string `json:"apellido_paterno" form:"apellido_paterno"`
	ApellidoMaterno string `json:"apellido_materno" form:"apellido_materno"`
	Telefono        string `json:"telefono" form:"telefono"`
	Email           string `json:"email" form:"email"`
}

// Home lists the active municipalities a citizen can request a turn for.
func (h *PublicHandler) Home(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	ms, err := h.Municipios.List(ctx, true)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"municipios": ms})
}

// SolicitarTurno validates the citizen's data and assigns the next turn
// number in the chosen municipality. Duplicate CURPs within the same
// municipality are rejected with 409. On success the full ticket is
// returned and a turno.created event is published best-effort.
func (h *PublicHandler) SolicitarTurno(c echo.Context) error {
	return h.createTicket(c, http.StatusConflict)
}

// createTicket is the creation path shared by the web form and the JSON
// API; the two surfaces only disagree on the duplicate-CURP status code.
func (h *PublicHandler) createTicket(c echo.Context, duplicateStatus int) error {
	var req solicitarReq
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
	if !utils.ValidTelefono(req.Telefono) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "telefono invalido"})
	}
	if !utils.ValidEmail(req.Email) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email invalido"})
	}
	if req.MunicipioID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "municipio_id requerido"})
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
	}
	if err := h.Assigner.Create(ctx, t); err != nil {
		switch err {
		case repository.ErrMunicipioNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"error": "municipio no encontrado"})
		case repository.ErrDuplicateCURP:
			return c.JSON(duplicateStatus, echo.Map{"error": "ya existe un turno registrado con esta curp en el municipio"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "no se pudo asignar el turno"})
		}
	}

	go publishTicketCreated(h.Municipios, *t)

	return c.JSON(http.StatusCreated, t)
}

// ModificarTurno looks up a ticket by CURP and turn number so the citizen
// can review it before submitting corrections.
func (h *PublicHandler) ModificarTurno(c echo.Context) error {
	var req modificarReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	curp := utils.NormalizeCURP(req.CURP)
	if !utils.ValidCURP(curp) || req.NumeroTurno == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "curp y numero_turno requeridos"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	t, err := h.Tickets.GetByCURPAndTurn(ctx, curp, req.NumeroTurno)
	if err != nil {
		if err == repository.ErrTicketNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "turno no encontrado"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, t)
}

// ActualizarTurno applies contact corrections to an existing ticket. The
// CURP, municipality and turn number are immutable from the public flow.
func (h *PublicHandler) ActualizarTurno(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req actualizarReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Nombre = strings.TrimSpace(req.Nombre)
	req.ApellidoPaterno = strings.TrimSpace(req.ApellidoPaterno)
	if !utils.ValidName(req.Nombre) || !utils.ValidName(req.ApellidoPaterno) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "nombre y apellido paterno requeridos"})
	}
	if !utils.ValidTelefono(req.Telefono) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "telefono invalido"})
	}
	if !utils.ValidEmail(req.Email) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email invalido"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	err = h.Tickets.UpdateContact(ctx, id, req.Nombre, req.ApellidoPaterno,
		strings.TrimSpace(req.ApellidoMaterno), strings.TrimSpace(req.Telefono),
		strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if err == repository.ErrTicketNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "turno no encontrado"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}

	t, err := h.Tickets.GetByID(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, t)
}

// Comprobante streams the ticket's PDF receipt as a download.
func (h *PublicHandler) Comprobante(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	t, err := h.Tickets.GetByID(ctx, id)
	if err != nil {
		if err == repository.ErrTicketNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "turno no encontrado"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	nombre := ""
	if m, err := h.Municipios.GetByID(ctx, t.MunicipioID); err == nil {
		nombre = m.Nombre
	}

	pdf, err := receipt.RenderPDF(t, nombre)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "render failed"})
	}

	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename=%q`, receipt.Filename(t)))
	return c.Blob(http.StatusOK, "application/pdf", pdf)
}
