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
	"github.com/turnosmx/sistema-turnos/internal/utils"
)

// AdminMunicipioHandler manages the municipality catalog.
type AdminMunicipioHandler struct {
	Municipios *repository.MunicipioRepo
}

func NewAdminMunicipioHandler(m *repository.MunicipioRepo) *AdminMunicipioHandler {
	return &AdminMunicipioHandler{Municipios: m}
}

type municipioReq struct {
	Nombre string `json:"nombre"`
	Codigo string `json:"codigo"`
	Activo *bool  `json:"activo"`
}

// List returns every municipality, active or not. The admin screen needs
// the full catalog; the public one filters to active.
func (h *AdminMunicipioHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	ms, err := h.Municipios.List(ctx, false)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"municipios": ms})
}

// Create adds a municipality. Codes are uppercased and must be unique.
func (h *AdminMunicipioHandler) Create(c echo.Context) error {
	var req municipioReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Nombre = strings.TrimSpace(req.Nombre)
	req.Codigo = strings.TrimSpace(req.Codigo)
	if !utils.ValidName(req.Nombre) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "nombre requerido"})
	}
	if !utils.ValidCodigo(req.Codigo) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "codigo invalido"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	m := &model.Municipio{Nombre: req.Nombre, Codigo: req.Codigo, Activo: true}
	if req.Activo != nil {
		m.Activo = *req.Activo
	}
	if err := h.Municipios.Create(ctx, m); err != nil {
		if err == repository.ErrDuplicateMunicipio {
			return c.JSON(http.StatusConflict, echo.Map{"error": "ya existe un municipio con ese codigo"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create failed"})
	}
	return c.JSON(http.StatusCreated, m)
}

// Get returns one municipality by id.
func (h *AdminMunicipioHandler) Get(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	m, err := h.Municipios.GetByID(ctx, id)
	if err != nil {
		if err == repository.ErrMunicipioNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "municipio no encontrado"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, m)
}

// Update renames a municipality, changes its code or toggles activo.
func (h *AdminMunicipioHandler) Update(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req municipioReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Nombre = strings.TrimSpace(req.Nombre)
	req.Codigo = strings.TrimSpace(req.Codigo)
	if !utils.ValidName(req.Nombre) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "nombre requerido"})
	}
	if !utils.ValidCodigo(req.Codigo) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "codigo invalido"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	activo := true
	if req.Activo != nil {
		activo = *req.Activo
	}
	m := &model.Municipio{ID: id, Nombre: req.Nombre, Codigo: req.Codigo, Activo: activo}
	if err := h.Municipios.Update(ctx, m); err != nil {
		switch err {
		case repository.ErrMunicipioNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"error": "municipio no encontrado"})
		case repository.ErrDuplicateMunicipio:
			return c.JSON(http.StatusConflict, echo.Map{"error": "ya existe un municipio con ese codigo"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
		}
	}
	return c.JSON(http.StatusOK, m)
}

// Delete removes a municipality unless tickets still reference it, in
// which case 409 tells the admin to move or delete those first.
func (h *AdminMunicipioHandler) Delete(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Municipios.Delete(ctx, id); err != nil {
		switch err {
		case repository.ErrMunicipioNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"error": "municipio no encontrado"})
		case repository.ErrConflict:
			return c.JSON(http.StatusConflict, echo.Map{"error": "el municipio tiene turnos registrados"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
		}
	}
	return c.NoContent(http.StatusNoContent)
}
