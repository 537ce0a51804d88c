package models

// Status represents the activation state shared by person and student records.
type Status string

const (
	StatusActive   Status = "ACTIVE"
	StatusInactive Status = "INACTIVE"
)

// PersonVariant tags which backing table a resolved person came from.
type PersonVariant string

const (
	PersonEmployee PersonVariant = "EMPLOYEE"
	PersonTutor    PersonVariant = "TUTOR"
)

// TutorRole is the fixed role reported for guardians at login.
const TutorRole = "tutor"

// Person is the tagged union produced by DNI resolution. Employees are
// tried before tutors; the two tables do not share a uniqueness
// constraint on DNI, so the priority order is part of the contract.
type Person struct {
	Variant    PersonVariant `json:"variant"`
	ID         string        `json:"id"`
	DNI        string        `json:"dni"`
	FirstName  string        `json:"nombre"`
	LastName   string        `json:"apellido"`
	Role       string        `json:"rol"`
	Status     Status        `json:"status"`
	FirstLogin bool          `json:"primer_login"`
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
