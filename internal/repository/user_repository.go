package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/turnosmx/sistema-turnos/internal/model"
	"github.com/turnosmx/sistema-turnos/internal/utils"
)

// UserRepo persists administrative accounts.  The service has no public
// registration; accounts are seeded by cmd/initdb or created by an
// existing administrator.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

// Create inserts a user with a freshly hashed password and returns its ID.
func (r *UserRepo) Create(ctx context.Context, username, password, email string, esAdmin bool, cost int) (uint64, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO usuarios (username, password_hash, email, es_admin) VALUES (?,?,?,?)",
		username, hash, email, esAdmin)
	if err != nil {
		if isDuplicateKey(err) {
			return 0, ErrUsernameExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByUsername fetches an active user by normalized username.  Inactive
// accounts are invisible to login.
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (model.Usuario, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	var u model.Usuario
	err := r.DB.QueryRowContext(ctx,
		"SELECT id, username, password_hash, email, es_admin, activo, fecha_creacion FROM usuarios WHERE username = ? AND activo = 1 LIMIT 1",
		username).Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Email, &u.EsAdmin, &u.Activo, &u.FechaCreacion)
	return u, err
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.Usuario, error) {
	var u model.Usuario
	err := r.DB.QueryRowContext(ctx,
		"SELECT id, username, password_hash, email, es_admin, activo, fecha_creacion FROM usuarios WHERE id = ? LIMIT 1",
		id).Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Email, &u.EsAdmin, &u.Activo, &u.FechaCreacion)
	return u, err
}
