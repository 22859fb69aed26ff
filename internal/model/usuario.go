package model

import "time"

// Usuario represents an application user as stored in the `usuarios`
// table.  Only accounts flagged es_admin may reach the administrative
// surface; authentication state itself lives in refresh_tokens, not on
// the user record.
//
// Fields:
//  ID            – primary key identifier.
//  Username      – unique login name.
//  PasswordHash  – bcrypt hashed password.
//  Email         – unique email address.
//  EsAdmin       – whether the account has administrator rights.
//  Activo        – whether the account is active.
//  FechaCreacion – timestamp of creation.
type Usuario struct {
	ID            uint64    // usuarios.id
	Username      string    // usuarios.username
	PasswordHash  string    // usuarios.password_hash
	Email         string    // usuarios.email
	EsAdmin       bool      // usuarios.es_admin
	Activo        bool      // usuarios.activo
	FechaCreacion time.Time // usuarios.fecha_creacion
}

// RefreshToken models an entry in the `refresh_tokens` table.  Each
// refresh token belongs to a user; only the SHA-256 hash of the raw
// token is stored.
//
// Fields:
//  ID        – primary key identifier.
//  UserID    – owner of the token.
//  TokenHash – SHA-256 hex digest of the token value.
//  ExpiresAt – expiration timestamp of the token.
//  RevokedAt – when the token was revoked (null if still active).
//  CreatedAt – timestamp of creation.
type RefreshToken struct {
	ID        uint64     // refresh_tokens.id
	UserID    uint64     // refresh_tokens.user_id
	TokenHash string     // refresh_tokens.token_hash
	ExpiresAt time.Time  // refresh_tokens.expires_at
	RevokedAt *time.Time // refresh_tokens.revoked_at (nullable)
	CreatedAt time.Time  // refresh_tokens.created_at
}
