package model

import (
	"strings"
	"time"
)

// Ticket status values.  The lifecycle is a simple two-state toggle
// driven only by administrator action.
const (
	EstatusPendiente = "Pendiente"
	EstatusResuelto  = "Resuelto"
)

// Ticket records a citizen's turn request at a municipality.  Turn
// numbers start at 1 per municipality and grow by exactly one for each
// new ticket; numbers of deleted tickets are never reused.  The pair
// (municipio_id, numero_turno) is unique, as is (municipio_id, curp).
// This struct corresponds to a row in the `tickets` table.
//
// Fields:
//  ID                 – primary key identifier.
//  CURP               – 18-character citizen identity code.
//  Nombre             – given name.
//  ApellidoPaterno    – first surname.
//  ApellidoMaterno    – second surname.
//  Telefono           – contact phone number.
//  Email              – contact email address.
//  MunicipioID        – owning municipality.
//  NumeroTurno        – sequential turn number within the municipality.
//  Estatus            – Pendiente or Resuelto.
//  FechaCreacion      – creation timestamp (UTC).
//  FechaActualizacion – last update timestamp (UTC).
type Ticket struct {
	ID                 uint64    `json:"id"`                  // tickets.id
	CURP               string    `json:"curp"`                // tickets.curp
	Nombre             string    `json:"nombre"`              // tickets.nombre
	ApellidoPaterno    string    `json:"apellido_paterno"`    // tickets.apellido_paterno
	ApellidoMaterno    string    `json:"apellido_materno"`    // tickets.apellido_materno
	Telefono           string    `json:"telefono"`            // tickets.telefono
	Email              string    `json:"email"`               // tickets.email
	MunicipioID        uint64    `json:"municipio_id"`        // tickets.municipio_id
	NumeroTurno        uint32    `json:"numero_turno"`        // tickets.numero_turno
	Estatus            string    `json:"estatus"`             // tickets.estatus
	FechaCreacion      time.Time `json:"fecha_creacion"`      // tickets.fecha_creacion
	FechaActualizacion time.Time `json:"fecha_actualizacion"` // tickets.fecha_actualizacion
}

// NombreCompleto assembles the citizen's full name in the order the
// comprobante prints it.
func (t *Ticket) NombreCompleto() string {
	return strings.TrimSpace(t.Nombre + " " + t.ApellidoPaterno + " " + t.ApellidoMaterno)
}
