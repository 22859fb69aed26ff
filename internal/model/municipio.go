package model

// Municipio represents a municipal service location.  Each municipio
// scopes its own sequence of turn numbers and can be switched off for
// citizen-facing selection without losing its existing tickets.  This
// struct corresponds to a row in the `municipios` table.
//
// Fields:
//  ID     – primary key identifier.
//  Nombre – unique display name of the municipality.
//  Codigo – unique short code, normalized to uppercase (e.g. "AGS").
//  Activo – whether the municipality accepts new turn requests.
type Municipio struct {
	ID     uint64 `json:"id"`     // municipios.id
	Nombre string `json:"nombre"` // municipios.nombre
	Codigo string `json:"codigo"` // municipios.codigo
	Activo bool   `json:"activo"` // municipios.activo
}
