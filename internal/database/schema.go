package database

// Schema creation and seeding used by cmd/initdb.  Statements are
// idempotent (IF NOT EXISTS / INSERT IGNORE) so the command can be rerun
// safely against an existing database.

import (
	"context"
	"database/sql"
	"fmt"
)

// schema lists the DDL statements in dependency order.  The two UNIQUE
// keys on tickets are load-bearing: uq_municipio_turno guarantees turn
// numbers never collide within a municipality and uq_municipio_curp
// enforces one ticket per citizen per municipality at the storage layer.
// ultimo_turno on municipios is the assignment high-water mark; it only
// ever grows, so numbers of deleted tickets are never handed out again.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS municipios (
		id           BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		nombre       VARCHAR(100) NOT NULL,
		codigo       VARCHAR(10)  NOT NULL,
		activo       TINYINT(1)   NOT NULL DEFAULT 1,
		ultimo_turno INT UNSIGNED NOT NULL DEFAULT 0,
		UNIQUE KEY uq_municipio_nombre (nombre),
		UNIQUE KEY uq_municipio_codigo (codigo)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS usuarios (
		id             BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		username       VARCHAR(50)  NOT NULL,
		password_hash  VARCHAR(255) NOT NULL,
		email          VARCHAR(100) NOT NULL,
		es_admin       TINYINT(1)   NOT NULL DEFAULT 0,
		activo         TINYINT(1)   NOT NULL DEFAULT 1,
		fecha_creacion DATETIME     NOT NULL DEFAULT CURRENT_TIMESTAMP,
		UNIQUE KEY uq_usuario_username (username),
		UNIQUE KEY uq_usuario_email (email)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS tickets (
		id                  BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		curp                CHAR(18)     NOT NULL,
		nombre              VARCHAR(100) NOT NULL,
		apellido_paterno    VARCHAR(100) NOT NULL,
		apellido_materno    VARCHAR(100) NOT NULL,
		telefono            VARCHAR(15)  NOT NULL,
		email               VARCHAR(100) NOT NULL,
		municipio_id        BIGINT UNSIGNED NOT NULL,
		numero_turno        INT UNSIGNED NOT NULL,
		estatus             ENUM('Pendiente','Resuelto') NOT NULL DEFAULT 'Pendiente',
		fecha_creacion      DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		fecha_actualizacion DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		KEY idx_ticket_curp (curp),
		UNIQUE KEY uq_municipio_turno (municipio_id, numero_turno),
		UNIQUE KEY uq_municipio_curp (municipio_id, curp),
		CONSTRAINT fk_ticket_municipio FOREIGN KEY (municipio_id) REFERENCES municipios (id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS refresh_tokens (
		id         BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		user_id    BIGINT UNSIGNED NOT NULL,
		token_hash CHAR(64) NOT NULL,
		expires_at DATETIME NOT NULL,
		revoked_at DATETIME NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		KEY idx_refresh_hash (token_hash),
		CONSTRAINT fk_refresh_usuario FOREIGN KEY (user_id) REFERENCES usuarios (id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

// seedMunicipios holds the Aguascalientes-area defaults a fresh install
// starts with.  INSERT IGNORE keeps reruns quiet.
var seedMunicipios = [][2]string{
	{"Aguascalientes", "AGS"},
	{"Jesús María", "JEM"},
	{"Calvillo", "CAL"},
	{"Asientos", "ASI"},
	{"Rincón de Romos", "RIN"},
}

// Migrate creates all tables.
func Migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

// Seed inserts the default administrator account and the default
// municipalities.  The caller supplies the already-hashed admin password
// so this package stays free of hashing concerns.
func Seed(ctx context.Context, db *sql.DB, adminUser, adminPassHash, adminEmail string) error {
	if _, err := db.ExecContext(ctx,
		"INSERT IGNORE INTO usuarios (username, password_hash, email, es_admin) VALUES (?,?,?,1)",
		adminUser, adminPassHash, adminEmail); err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	for _, m := range seedMunicipios {
		if _, err := db.ExecContext(ctx,
			"INSERT IGNORE INTO municipios (nombre, codigo) VALUES (?,?)",
			m[0], m[1]); err != nil {
			return fmt.Errorf("seed municipio %s: %w", m[1], err)
		}
	}
	return nil
}
