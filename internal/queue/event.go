// Package queue defines message payloads exchanged over the message broker.
package queue

// TicketCreatedEvent is published when a turn is successfully assigned.
// It carries enough information for downstream consumers to log or
// notify without querying the primary database.
type TicketCreatedEvent struct {
	TicketID        uint64 `json:"ticket_id"`
	CURP            string `json:"curp"`
	NombreCompleto  string `json:"nombre_completo"`
	MunicipioID     uint64 `json:"municipio_id"`
	MunicipioNombre string `json:"municipio_nombre"`
	NumeroTurno     uint32 `json:"numero_turno"`
	Estatus         string `json:"estatus"`
	CreatedAt       string `json:"created_at"`
}
