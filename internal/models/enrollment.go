package models

import "time"

// StudentGradeLink ties a student to a grade with its school of origin.
// The (student, grade) pair is unique at the storage layer.
type StudentGradeLink struct {
	ID         string    `db:"id" json:"id"`
	StudentID  string    `db:"student_id" json:"id_alumno"`
	GradeID    string    `db:"grade_id" json:"id_grado"`
	SchoolID   string    `db:"school_id" json:"id_colegio_procedencia"`
	EnrolledAt time.Time `db:"enrolled_at" json:"fecha_inscripcion"`
	Active     bool      `db:"active" json:"activo"`
}

// StudentTutorLink ties a student to a tutor with a relationship type.
// The (student, tutor) pair is unique at the storage layer.
type StudentTutorLink struct {
	ID             string `db:"id" json:"id"`
	StudentID      string `db:"student_id" json:"id_alumno"`
	TutorID        string `db:"tutor_id" json:"id_tutor"`
	RelationshipID string `db:"relationship_id" json:"id_parentesco"`
}

// EnrollmentResult reports the identifiers created by a successful
// complete enrollment.
type EnrollmentResult struct {
	Success     bool   `json:"success"`
	Message     string `json:"message,omitempty"`
	StudentID   string `json:"alumno_id"`
	StudentDNI  string `json:"alumno_dni"`
	GradeLinkID string `json:"relacion_grado_id"`
	TutorLinkID string `json:"relacion_tutor_id"`
}
