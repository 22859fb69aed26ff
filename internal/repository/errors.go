// Package repository contains data access logic separated from HTTP
// handlers.  This file defines sentinel errors reused across the
// individual repositories so that handlers can map failure scenarios to
// HTTP status codes without string matching.
package repository

import (
	"errors"
	"strings"
)

// ErrMunicipioNotFound is returned when a municipality lookup matches no row.
var ErrMunicipioNotFound = errors.New("municipio not found")

// ErrTicketNotFound is returned when a ticket lookup matches no row.
var ErrTicketNotFound = errors.New("ticket not found")

// ErrDuplicateMunicipio is returned when a create or update would reuse
// another municipality's name or code.  Handlers translate it to 409.
var ErrDuplicateMunicipio = errors.New("municipio name or code already exists")

// ErrDuplicateCURP is returned when a citizen already holds a ticket in
// the target municipality.  Handlers translate it to 409.
var ErrDuplicateCURP = errors.New("curp already has a ticket in this municipio")

// ErrTurnConflict is returned when two concurrent creations collide on
// the same (municipio, numero_turno) pair even after retrying.  It
// indicates contention beyond what the serialization discipline absorbed
// and is surfaced as 500 rather than 409.
var ErrTurnConflict = errors.New("turn number conflict")

// ErrConflict is returned when a delete cannot proceed because of
// dependent records, such as removing a municipality that still has
// tickets.  Handlers translate it to 409.
var ErrConflict = errors.New("conflict")

// ErrUsernameExists is returned when a user insert violates the unique
// username or email key.
var ErrUsernameExists = errors.New("username or email already exists")

// ErrTokenInvalid is returned when a refresh token is unknown, revoked
// or expired.  Handlers translate it to 401 without distinguishing the
// three cases.
var ErrTokenInvalid = errors.New("refresh token invalid")

// isDuplicateKey reports whether err is a MySQL duplicate-entry error
// (code 1062).  The driver does not expose a typed error for this, so
// the code is matched in the message, same as every repo in this tree.
func isDuplicateKey(err error) bool {
	return err != nil && strings.Contains(err.Error(), "1062")
}
