package repository

import (
	"context"
	"database/sql"
)

// StatsRepo aggregates ticket counts for the admin dashboard and the
// public statistics endpoint.
type StatsRepo struct {
	db *sql.DB
}

// NewStatsRepo returns a StatsRepo bound to the given database.
func NewStatsRepo(db *sql.DB) *StatsRepo { return &StatsRepo{db: db} }

// Totals carries the global (or per-municipality) counters.
type Totals struct {
	Total      int `json:"total"`
	Pendientes int `json:"pendientes"`
	Resueltos  int `json:"resueltos"`
}

// MunicipioStats is one row of the per-municipality breakdown shown on
// the dashboard.
type MunicipioStats struct {
	MunicipioID uint64 `json:"municipio_id"`
	Nombre      string `json:"nombre"`
	Total       int    `json:"total"`
	Pendientes  int    `json:"pendientes"`
	Resueltos   int    `json:"resueltos"`
}

// DailyCount is one point of the tickets-per-day series.
type DailyCount struct {
	Fecha    string `json:"fecha"` // YYYY-MM-DD
	Cantidad int    `json:"cantidad"`
}

// Totals counts tickets by status.  A zero municipioID aggregates across
// all municipalities.
func (r *StatsRepo) Totals(ctx context.Context, municipioID uint64) (Totals, error) {
	q := `SELECT COUNT(*),
	             COALESCE(SUM(CASE WHEN estatus = 'Pendiente' THEN 1 ELSE 0 END), 0),
	             COALESCE(SUM(CASE WHEN estatus = 'Resuelto' THEN 1 ELSE 0 END), 0)
	      FROM tickets`
	args := []any{}
	if municipioID != 0 {
		q += " WHERE municipio_id = ?"
		args = append(args, municipioID)
	}
	var t Totals
	err := r.db.QueryRowContext(ctx, q, args...).Scan(&t.Total, &t.Pendientes, &t.Resueltos)
	return t, err
}

// ByMunicipio returns the per-municipality breakdown, only for
// municipalities that have at least one ticket.
func (r *StatsRepo) ByMunicipio(ctx context.Context) ([]MunicipioStats, error) {
	const q = `SELECT m.id, m.nombre, COUNT(t.id),
	                  COALESCE(SUM(CASE WHEN t.estatus = 'Pendiente' THEN 1 ELSE 0 END), 0),
	                  COALESCE(SUM(CASE WHEN t.estatus = 'Resuelto' THEN 1 ELSE 0 END), 0)
	           FROM municipios m
	           JOIN tickets t ON t.municipio_id = m.id
	           GROUP BY m.id, m.nombre
	           ORDER BY m.nombre`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := make([]MunicipioStats, 0)
	for rows.Next() {
		var s MunicipioStats
		if err := rows.Scan(&s.MunicipioID, &s.Nombre, &s.Total, &s.Pendientes, &s.Resueltos); err != nil {
			return nil, err
		}
		items = append(items, s)
	}
	return items, rows.Err()
}

// PerDay returns tickets created per day over the last `days` days,
// oldest first.  Days with no tickets produce no row.
func (r *StatsRepo) PerDay(ctx context.Context, days int) ([]DailyCount, error) {
	const q = `SELECT DATE(fecha_creacion), COUNT(*)
	           FROM tickets
	           WHERE fecha_creacion >= DATE_SUB(UTC_TIMESTAMP(), INTERVAL ? DAY)
	           GROUP BY DATE(fecha_creacion)
	           ORDER BY DATE(fecha_creacion)`
	rows, err := r.db.QueryContext(ctx, q, days)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := make([]DailyCount, 0)
	for rows.Next() {
		var d DailyCount
		if err := rows.Scan(&d.Fecha, &d.Cantidad); err != nil {
			return nil, err
		}
		items = append(items, d)
	}
	return items, rows.Err()
}
