package models

import "time"

// Activity is an extracurricular activity offered by the school.
type Activity struct {
	ID          string `db:"id" json:"id"`
	Name        string `db:"name" json:"nombre_actividad"`
	Destination string `db:"destination" json:"destino_actividad"`
	Description string `db:"description" json:"descripcion_actividad"`
}

// ActivityGradeLink schedules an activity for a grade. The
// (activity, grade) pair is unique at the storage layer.
type ActivityGradeLink struct {
	ID         string    `db:"id" json:"id"`
	ActivityID string    `db:"activity_id" json:"id_actividad"`
	GradeID    string    `db:"grade_id" json:"id_grado"`
	StartsAt   time.Time `db:"starts_at" json:"fecha_hora_actividad"`
	DepartsAt  time.Time `db:"departs_at" json:"fecha_hora_salida"`
}
