package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/turnosmx/sistema-turnos/internal/model"
)

// TicketRepo provides persistence for turn tickets.  The interesting
// part is CreateWithTurn, which reserves the next turn number and
// inserts the ticket inside one transaction so two concurrent requests
// for the same municipality can never observe the same "next" value.
type TicketRepo struct {
	db *sql.DB
}

// NewTicketRepo returns a TicketRepo bound to the given database.
func NewTicketRepo(db *sql.DB) *TicketRepo { return &TicketRepo{db: db} }

// DB exposes the underlying handle for callers that need to compose
// transactions across repositories.
func (r *TicketRepo) DB() *sql.DB { return r.db }

// TicketDetail is a ticket joined with its municipality name, the shape
// the listing endpoints return.
type TicketDetail struct {
	model.Ticket
	MunicipioNombre string `json:"municipio"`
	NombreCompleto  string `json:"nombre_completo"`
}

const ticketColumns = "id, curp, nombre, apellido_paterno, apellido_materno, telefono, email, municipio_id, numero_turno, estatus, fecha_creacion, fecha_actualizacion"

func scanTicket(row interface{ Scan(...any) error }, t *model.Ticket) error {
	return row.Scan(&t.ID, &t.CURP, &t.Nombre, &t.ApellidoPaterno, &t.ApellidoMaterno,
		&t.Telefono, &t.Email, &t.MunicipioID, &t.NumeroTurno, &t.Estatus,
		&t.FechaCreacion, &t.FechaActualizacion)
}

// CreateWithTurn atomically assigns the next turn number for the
// ticket's municipality and inserts the row.  The transaction first
// locks the municipio row, which serializes concurrent creations for the
// same municipality across processes, then re-checks the CURP and bumps
// the ultimo_turno counter.  The counter is independent of ticket rows,
// so deleting the ticket holding the current maximum leaves a permanent
// hole instead of freeing its number.  Sentinels:
//
//	ErrMunicipioNotFound – unknown or missing municipality
//	ErrDuplicateCURP     – citizen already has a ticket there
//	ErrTurnConflict      – unique (municipio, turno) key fired anyway
//
// On success the ticket's ID, NumeroTurno and timestamps are populated.
func (r *TicketRepo) CreateWithTurn(ctx context.Context, t *model.Ticket) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	// Lock the parent row for the duration of the assignment; the
	// counter read below must not race with another reservation.
	var (
		activo    bool
		lastTurno uint32
	)
	err = tx.QueryRowContext(ctx,
		"SELECT activo, ultimo_turno FROM municipios WHERE id = ? FOR UPDATE",
		t.MunicipioID).Scan(&activo, &lastTurno)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrMunicipioNotFound
		}
		return err
	}
	if !activo {
		// Deactivated municipalities are invisible to the public flow.
		return ErrMunicipioNotFound
	}

	var exists bool
	err = tx.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM tickets WHERE municipio_id = ? AND curp = ?)",
		t.MunicipioID, t.CURP).Scan(&exists)
	if err != nil {
		return err
	}
	if exists {
		return ErrDuplicateCURP
	}

	t.NumeroTurno = lastTurno + 1
	if t.Estatus == "" {
		t.Estatus = model.EstatusPendiente
	}

	res, err := tx.ExecContext(ctx,
		"INSERT INTO tickets (curp, nombre, apellido_paterno, apellido_materno, telefono, email, municipio_id, numero_turno, estatus) VALUES (?,?,?,?,?,?,?,?,?)",
		t.CURP, t.Nombre, t.ApellidoPaterno, t.ApellidoMaterno, t.Telefono, t.Email,
		t.MunicipioID, t.NumeroTurno, t.Estatus)
	if err != nil {
		if isDuplicateKey(err) {
			if strings.Contains(err.Error(), "uq_municipio_curp") {
				return ErrDuplicateCURP
			}
			return ErrTurnConflict
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	t.ID = uint64(id)

	if _, err := tx.ExecContext(ctx,
		"UPDATE municipios SET ultimo_turno = ? WHERE id = ?",
		t.NumeroTurno, t.MunicipioID); err != nil {
		return err
	}

	// Query back timestamps populated by column defaults.
	err = tx.QueryRowContext(ctx,
		"SELECT fecha_creacion, fecha_actualizacion FROM tickets WHERE id = ?", t.ID).
		Scan(&t.FechaCreacion, &t.FechaActualizacion)
	if err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// LastTurnNumber returns the municipality's assignment high-water mark,
// 0 when no ticket was ever created there.  The counter survives
// deletions, so this read stays truthful after the ticket holding the
// maximum is removed.
func (r *TicketRepo) LastTurnNumber(ctx context.Context, municipioID uint64) (uint32, error) {
	var last uint32
	err := r.db.QueryRowContext(ctx,
		"SELECT ultimo_turno FROM municipios WHERE id = ?", municipioID).Scan(&last)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrMunicipioNotFound
	}
	return last, err
}

// HasTicketForCURP reports whether the citizen already holds a ticket in
// the municipality, regardless of status.
func (r *TicketRepo) HasTicketForCURP(ctx context.Context, municipioID uint64, curp string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM tickets WHERE municipio_id = ? AND curp = ?)",
		municipioID, curp).Scan(&exists)
	return exists, err
}

// GetByID fetches a ticket by primary key.
func (r *TicketRepo) GetByID(ctx context.Context, id uint64) (*model.Ticket, error) {
	var t model.Ticket
	err := scanTicket(r.db.QueryRowContext(ctx,
		"SELECT "+ticketColumns+" FROM tickets WHERE id = ?", id), &t)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTicketNotFound
		}
		return nil, err
	}
	return &t, nil
}

// GetByCURPAndTurn looks a ticket up the way citizens identify theirs:
// by CURP plus assigned turn number.
func (r *TicketRepo) GetByCURPAndTurn(ctx context.Context, curp string, numeroTurno uint32) (*model.Ticket, error) {
	var t model.Ticket
	err := scanTicket(r.db.QueryRowContext(ctx,
		"SELECT "+ticketColumns+" FROM tickets WHERE curp = ? AND numero_turno = ?",
		curp, numeroTurno), &t)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTicketNotFound
		}
		return nil, err
	}
	return &t, nil
}

// ListFilter narrows List results.  Zero values mean "no filter".
// Search matches CURP, first name and first surname, mirroring the
// admin search box.
type ListFilter struct {
	MunicipioID uint64
	Estatus     string
	Search      string
}

// List returns tickets joined with their municipality name, newest
// first.
func (r *TicketRepo) List(ctx context.Context, f ListFilter) ([]TicketDetail, error) {
	q := `SELECT t.id, t.curp, t.nombre, t.apellido_paterno, t.apellido_materno,
	             t.telefono, t.email, t.municipio_id, t.numero_turno, t.estatus,
	             t.fecha_creacion, t.fecha_actualizacion, m.nombre
	      FROM tickets t
	      JOIN municipios m ON m.id = t.municipio_id`
	conds := []string{}
	args := []any{}
	if f.MunicipioID != 0 {
		conds = append(conds, "t.municipio_id = ?")
		args = append(args, f.MunicipioID)
	}
	if f.Estatus != "" {
		conds = append(conds, "t.estatus = ?")
		args = append(args, f.Estatus)
	}
	if f.Search != "" {
		conds = append(conds, "(t.curp LIKE ? OR t.nombre LIKE ? OR t.apellido_paterno LIKE ?)")
		pat := "%" + f.Search + "%"
		args = append(args, pat, pat, pat)
	}
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += " ORDER BY t.fecha_creacion DESC"

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := make([]TicketDetail, 0)
	for rows.Next() {
		var d TicketDetail
		if err := rows.Scan(&d.ID, &d.CURP, &d.Nombre, &d.ApellidoPaterno, &d.ApellidoMaterno,
			&d.Telefono, &d.Email, &d.MunicipioID, &d.NumeroTurno, &d.Estatus,
			&d.FechaCreacion, &d.FechaActualizacion, &d.MunicipioNombre); err != nil {
			return nil, err
		}
		d.NombreCompleto = d.Ticket.NombreCompleto()
		items = append(items, d)
	}
	return items, rows.Err()
}

// UpdateContact rewrites the citizen-editable fields only.  CURP, turn
// number and municipality stay untouched; this is the path behind the
// public "modificar turno" flow.
func (r *TicketRepo) UpdateContact(ctx context.Context, id uint64, nombre, apPaterno, apMaterno, telefono, email string) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE tickets SET nombre = ?, apellido_paterno = ?, apellido_materno = ?, telefono = ?, email = ? WHERE id = ?",
		nombre, apPaterno, apMaterno, telefono, email, id)
	if err != nil {
		return err
	}
	return r.ensureExists(ctx, res, id)
}

// UpdateAdmin rewrites every mutable field, including municipality and
// status.  CURP and turn number are immutable.  Moving a ticket keeps
// its number; when the number is already taken in the destination
// municipality the unique key fires and ErrTurnConflict is returned.  A
// CURP collision in the destination maps to ErrDuplicateCURP.
func (r *TicketRepo) UpdateAdmin(ctx context.Context, t *model.Ticket) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE tickets SET nombre = ?, apellido_paterno = ?, apellido_materno = ?, telefono = ?, email = ?, municipio_id = ?, estatus = ? WHERE id = ?",
		t.Nombre, t.ApellidoPaterno, t.ApellidoMaterno, t.Telefono, t.Email,
		t.MunicipioID, t.Estatus, t.ID)
	if err != nil {
		if isDuplicateKey(err) {
			if strings.Contains(err.Error(), "uq_municipio_curp") {
				return ErrDuplicateCURP
			}
			return ErrTurnConflict
		}
		if strings.Contains(err.Error(), "1452") { // foreign key fails
			return ErrMunicipioNotFound
		}
		return err
	}
	return r.ensureExists(ctx, res, t.ID)
}

// ToggleStatus flips Pendiente to Resuelto and back, returning the new
// status.
func (r *TicketRepo) ToggleStatus(ctx context.Context, id uint64) (string, error) {
	t, err := r.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	next := model.EstatusResuelto
	if t.Estatus == model.EstatusResuelto {
		next = model.EstatusPendiente
	}
	if _, err := r.db.ExecContext(ctx,
		"UPDATE tickets SET estatus = ? WHERE id = ?", next, id); err != nil {
		return "", err
	}
	return next, nil
}

// Delete removes a ticket.  The turn number is not recycled; the next
// creation continues from the municipality's high-water mark.
func (r *TicketRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM tickets WHERE id = ?", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrTicketNotFound
	}
	return nil
}

// ensureExists distinguishes "no such ticket" from "update changed
// nothing" after an UPDATE reporting zero affected rows.
func (r *TicketRepo) ensureExists(ctx context.Context, res sql.Result, id uint64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
	}
	return nil
}
