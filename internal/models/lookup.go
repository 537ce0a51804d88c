package models

// Role is an employee role (director, secretario, preceptor, rector).
type Role struct {
	ID   string `db:"id" json:"id"`
	Name string `db:"name" json:"nombre_rol"`
}

// Relationship is a tutor-student relationship type (parentesco).
type Relationship struct {
	ID   string `db:"id" json:"id"`
	Name string `db:"name" json:"parentesco_nombre"`
}

// SchoolOfOrigin is a school a student may come from.
type SchoolOfOrigin struct {
	ID     string `db:"id" json:"id"`
	Number *int   `db:"number" json:"nro_colegio_procedencia,omitempty"`
	Name   string `db:"name" json:"nombre_colegio_procedencia"`
}

// Place is a location where a disciplinary incident occurred.
type Place struct {
	ID   string `db:"id" json:"id"`
	Name string `db:"name" json:"nombre_lugar"`
}

// IncidentType categorizes incidents.
type IncidentType struct {
	ID   string `db:"id" json:"id"`
	Name string `db:"name" json:"tipo_incidencia_nombre"`
}
