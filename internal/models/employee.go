package models

import "time"

// Employee represents a staff member stored in the empleados table.
type Employee struct {
	ID         string    `db:"id" json:"id"`
	DNI        string    `db:"dni" json:"dni"`
	FirstName  string    `db:"first_name" json:"nombre"`
	LastName   string    `db:"last_name" json:"apellido"`
	Phone      string    `db:"phone" json:"telefono"`
	Email      string    `db:"email" json:"correo"`
	Gender     string    `db:"gender" json:"genero"`
	RoleID     string    `db:"role_id" json:"role_id"`
	Status     Status    `db:"status" json:"status"`
	FirstLogin bool      `db:"first_login" json:"primer_login"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// EmployeeDetail enriches Employee with its role name.
type EmployeeDetail struct {
	Employee
	RoleName string `db:"role_name" json:"rol"`
}

// EmployeeFilter captures filtering criteria for listing employees.
type EmployeeFilter struct {
	Search    string
	Status    *Status
	RoleID    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
