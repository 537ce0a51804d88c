package models

import "time"

// Grade represents a grade level with finite enrollment capacity.
// AvailableSeats never goes below zero; the repository guards every
// decrement with a conditional update.
type Grade struct {
	ID             string    `db:"id" json:"id"`
	Name           string    `db:"name" json:"nombre"`
	AvailableSeats int       `db:"available_seats" json:"asientos_disponibles"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// GradeCapacity is the capacity snapshot returned by the capacity endpoint.
type GradeCapacity struct {
	GradeID        string `json:"grado_id"`
	Name           string `json:"nombre"`
	AvailableSeats int    `json:"asientos_disponibles"`
	HasSeats       bool   `json:"tiene_cupos"`
}
