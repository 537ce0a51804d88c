package models

import "time"

// Incident is a catalogued disciplinary incident.
type Incident struct {
	ID     string `db:"id" json:"id"`
	Name   string `db:"name" json:"nombre_incidencia"`
	TypeID string `db:"type_id" json:"id_tipo_incidencia"`
}

// IncidentDetail enriches Incident with its type name.
type IncidentDetail struct {
	Incident
	TypeName string `db:"type_name" json:"tipo_incidencia"`
}

// Measure is a disciplinary measure applied to a student.
type Measure struct {
	ID             string    `db:"id" json:"id"`
	IncidentID     string    `db:"incident_id" json:"id_incidencia"`
	StudentID      string    `db:"student_id" json:"id_alumno"`
	EmployeeID     string    `db:"employee_id" json:"id_empleado"`
	PlaceID        string    `db:"place_id" json:"id_lugar"`
	Date           time.Time `db:"date" json:"fecha_medida"`
	SuspensionDays int       `db:"suspension_days" json:"cantidad_dias"`
	Description    string    `db:"description" json:"descripcion_caso"`
}

// IsSuspension reports whether the measure carries suspension days.
func (m Measure) IsSuspension() bool {
	return m.SuspensionDays > 0
}

// MeasureDetail enriches Measure with display names for listings.
type MeasureDetail struct {
	Measure
	StudentName  string `db:"student_name" json:"alumno"`
	IncidentName string `db:"incident_name" json:"incidencia"`
	TypeName     string `db:"type_name" json:"tipo_incidencia"`
	PlaceName    string `db:"place_name" json:"lugar"`
	EmployeeName string `db:"employee_name" json:"empleado"`
}

// MeasureFilter captures filtering criteria for listing measures.
type MeasureFilter struct {
	StudentID  string
	TypeID     string
	IncidentID string
	Page       int
	PageSize   int
}
