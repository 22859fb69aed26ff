package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/turnosmx/sistema-turnos/internal/model"
)

// MunicipioRepo encapsulates all database queries related to
// municipalities.  Codes are normalized to uppercase before any write so
// "ags" and "AGS" cannot coexist.
type MunicipioRepo struct {
	db *sql.DB
}

// NewMunicipioRepo constructs a MunicipioRepo with the provided DB handle.
func NewMunicipioRepo(db *sql.DB) *MunicipioRepo {
	return &MunicipioRepo{db: db}
}

// Create inserts a new municipality.  On success the ID field is
// populated with the auto-generated value.  A duplicate name or code is
// reported as ErrDuplicateMunicipio.
func (r *MunicipioRepo) Create(ctx context.Context, m *model.Municipio) error {
	m.Codigo = strings.ToUpper(strings.TrimSpace(m.Codigo))
	m.Nombre = strings.TrimSpace(m.Nombre)
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO municipios (nombre, codigo, activo) VALUES (?,?,?)",
		m.Nombre, m.Codigo, m.Activo)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrDuplicateMunicipio
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	m.ID = uint64(id)
	return nil
}

// GetByID fetches a municipality by id.  It returns ErrMunicipioNotFound
// when no row matches.
func (r *MunicipioRepo) GetByID(ctx context.Context, id uint64) (*model.Municipio, error) {
	var m model.Municipio
	err := r.db.QueryRowContext(ctx,
		"SELECT id, nombre, codigo, activo FROM municipios WHERE id = ?", id).
		Scan(&m.ID, &m.Nombre, &m.Codigo, &m.Activo)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMunicipioNotFound
		}
		return nil, err
	}
	return &m, nil
}

// List returns every municipality ordered by name.  When activeOnly is
// true, deactivated municipalities are excluded; the citizen-facing form
// uses that mode while the admin list shows everything.
func (r *MunicipioRepo) List(ctx context.Context, activeOnly bool) ([]model.Municipio, error) {
	q := "SELECT id, nombre, codigo, activo FROM municipios"
	if activeOnly {
		q += " WHERE activo = 1"
	}
	q += " ORDER BY nombre"
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := make([]model.Municipio, 0)
	for rows.Next() {
		var m model.Municipio
		if err := rows.Scan(&m.ID, &m.Nombre, &m.Codigo, &m.Activo); err != nil {
			return nil, err
		}
		items = append(items, m)
	}
	return items, rows.Err()
}

// Update rewrites name, code and active flag.  The duplicate check
// against other rows is left to the unique keys; a violation surfaces as
// ErrDuplicateMunicipio.  ErrMunicipioNotFound is returned when the id
// does not exist.
func (r *MunicipioRepo) Update(ctx context.Context, m *model.Municipio) error {
	m.Codigo = strings.ToUpper(strings.TrimSpace(m.Codigo))
	m.Nombre = strings.TrimSpace(m.Nombre)
	res, err := r.db.ExecContext(ctx,
		"UPDATE municipios SET nombre = ?, codigo = ?, activo = ? WHERE id = ?",
		m.Nombre, m.Codigo, m.Activo, m.ID)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrDuplicateMunicipio
		}
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		// RowsAffected is also 0 on a no-change update; confirm existence.
		if _, err := r.GetByID(ctx, m.ID); err != nil {
			return err
		}
	}
	return nil
}

// Delete removes a municipality permanently.  Deletion is refused with
// ErrConflict while any ticket still references it; deactivation is the
// soft alternative for municipalities with history.
func (r *MunicipioRepo) Delete(ctx context.Context, id uint64) error {
	var count int
	if err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM tickets WHERE municipio_id = ?", id).Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return ErrConflict
	}
	res, err := r.db.ExecContext(ctx, "DELETE FROM municipios WHERE id = ?", id)
	if err != nil {
		// The FK constraint backs up the count check under races.
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrMunicipioNotFound
	}
	return nil
}
