package models

import "time"

// MeetingType enumerates the meeting formats held with families.
type MeetingType string

const (
	MeetingIndividual     MeetingType = "INDIVIDUAL"
	MeetingGeneralParents MeetingType = "GENERAL_PADRES"
	MeetingBilateral      MeetingType = "BILATERAL_PADRES"
)

// Meeting is a scheduled meeting convened by an employee.
type Meeting struct {
	ID          string      `db:"id" json:"id"`
	ScheduledAt time.Time   `db:"scheduled_at" json:"fecha_hora_reunion"`
	Type        MeetingType `db:"type" json:"tipo_reunion"`
	Description string      `db:"description" json:"descripcion_reunion"`
	EmployeeID  string      `db:"employee_id" json:"id_empleado"`
}

// AttendanceStatus records whether a tutor attended a meeting.
type AttendanceStatus string

const (
	AttendancePresent   AttendanceStatus = "PRESENT"
	AttendanceAbsent    AttendanceStatus = "ABSENT"
	AttendanceLeftEarly AttendanceStatus = "LEFT_EARLY"
)

// Attendance is a tutor's attendance record for a meeting. The
// (meeting, tutor) pair is unique at the storage layer.
type Attendance struct {
	ID        string           `db:"id" json:"id"`
	MeetingID string           `db:"meeting_id" json:"id_reunion"`
	TutorID   string           `db:"tutor_id" json:"id_tutor"`
	ArrivedAt *time.Time       `db:"arrived_at" json:"fecha_llegada,omitempty"`
	Status    AttendanceStatus `db:"status" json:"estado_asistencia"`
}
