package models

import "time"

// Student represents a learner stored in the alumnos table.
type Student struct {
	ID        string    `db:"id" json:"id"`
	DNI       string    `db:"dni" json:"dni"`
	FirstName string    `db:"first_name" json:"nombre"`
	LastName  string    `db:"last_name" json:"apellido"`
	BirthDate time.Time `db:"birth_date" json:"fecha_nacimiento"`
	Gender    string    `db:"gender" json:"genero"`
	Notes     string    `db:"notes" json:"observaciones"`
	Status    Status    `db:"status" json:"status"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// StudentDetail adds the currently active grade link, when any.
type StudentDetail struct {
	Student
	CurrentGradeID   *string `db:"current_grade_id" json:"grado_id,omitempty"`
	CurrentGradeName *string `db:"current_grade_name" json:"grado,omitempty"`
}

// StudentFilter captures filtering criteria for listing students.
type StudentFilter struct {
	Search    string
	GradeID   string
	Status    *Status
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
