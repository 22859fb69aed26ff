package handler

import (
	"context"
	"log"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/turnosmx/sistema-turnos/internal/model"
	"github.com/turnosmx/sistema-turnos/internal/queue"
	"github.com/turnosmx/sistema-turnos/internal/repository"
	queue_publisher "github.com/turnosmx/sistema-turnos/internal/service"
)

// currentUserID reads the subject stored by the JWT middleware. The jwt
// library decodes numeric claims as float64, so both encodings are handled.
func currentUserID(c echo.Context) (uint64, bool) {
	switch v := c.Get("user_id").(type) {
	case float64:
		return uint64(v), v > 0
	case string:
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			return n, n > 0
		}
	}
	return 0, false
}

// publishTicketCreated resolves the municipality name and emits the
// turno.created event. Every creation path (public, admin, API) calls it
// in a goroutine; failures only log, the turn is already assigned.
func publishTicketCreated(municipios *repository.MunicipioRepo, t model.Ticket) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	nombre := ""
	if m, err := municipios.GetByID(ctx, t.MunicipioID); err == nil {
		nombre = m.Nombre
	}
	ev := queue.TicketCreatedEvent{
		TicketID:        t.ID,
		CURP:            t.CURP,
		NombreCompleto:  t.NombreCompleto(),
		MunicipioID:     t.MunicipioID,
		MunicipioNombre: nombre,
		NumeroTurno:     t.NumeroTurno,
		Estatus:         t.Estatus,
		CreatedAt:       t.FechaCreacion.UTC().Format(time.RFC3339),
	}
	if err := queue_publisher.PublishTicketCreated(ctx, ev); err != nil {
		log.Printf("publish turno.created failed: %v", err)
	}
}
