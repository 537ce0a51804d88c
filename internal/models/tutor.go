package models

import "time"

// Tutor represents a student's guardian stored in the tutores table.
type Tutor struct {
	ID         string    `db:"id" json:"id"`
	DNI        string    `db:"dni" json:"dni"`
	FirstName  string    `db:"first_name" json:"nombre"`
	LastName   string    `db:"last_name" json:"apellido"`
	Phone      string    `db:"phone" json:"telefono"`
	Email      string    `db:"email" json:"correo"`
	Gender     string    `db:"gender" json:"genero"`
	Status     Status    `db:"status" json:"status"`
	FirstLogin bool      `db:"first_login" json:"primer_login"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// TutorFilter captures filtering criteria for listing tutors.
type TutorFilter struct {
	Search    string
	Status    *Status
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
