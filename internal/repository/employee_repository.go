package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/colegioadm/colegio-api/internal/models"
)

// EmployeeRepository manages persistence for staff records.
type EmployeeRepository struct {
	db *sqlx.DB
}

// NewEmployeeRepository constructs an EmployeeRepository.
func NewEmployeeRepository(db *sqlx.DB) *EmployeeRepository {
	return &EmployeeRepository{db: db}
}

const employeeColumns = `e.id, e.dni, e.first_name, e.last_name, e.phone, e.email, e.gender, e.role_id, e.status, e.first_login, e.created_at, e.updated_at, r.name AS role_name`

// List returns employees matching the provided filters.
func (r *EmployeeRepository) List(ctx context.Context, filter models.EmployeeFilter) ([]models.EmployeeDetail, int, error) {
	base := "FROM empleados e LEFT JOIN roles r ON r.id = e.role_id"
	conditions := []string{"1=1"}
	var args []interface{}

	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("e.status = $%d", len(args)+1))
		args = append(args, *filter.Status)
	}
	if filter.RoleID != "" {
		conditions = append(conditions, fmt.Sprintf("e.role_id = $%d", len(args)+1))
		args = append(args, filter.RoleID)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(LOWER(e.first_name) LIKE $%d OR LOWER(e.last_name) LIKE $%d OR e.dni LIKE $%d)", len(args)+1, len(args)+1, len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}

	base = fmt.Sprintf("%s WHERE %s", base, strings.Join(conditions, " AND "))

	allowedSorts := map[string]string{
		"last_name":  "e.last_name",
		"dni":        "e.dni",
		"created_at": "e.created_at",
	}
	column, ok := allowedSorts[filter.SortBy]
	if !ok {
		column = "e.last_name"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "ASC"
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s ORDER BY %s %s, e.first_name ASC LIMIT %d OFFSET %d", employeeColumns, base, column, order, size, offset)

	var employees []models.EmployeeDetail
	if err := r.db.SelectContext(ctx, &employees, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list employees: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count employees: %w", err)
	}
	return employees, total, nil
}

// FindByID returns an employee by identifier.
func (r *EmployeeRepository) FindByID(ctx context.Context, id string) (*models.EmployeeDetail, error) {
	query := fmt.Sprintf("SELECT %s FROM empleados e LEFT JOIN roles r ON r.id = e.role_id WHERE e.id = $1 LIMIT 1", employeeColumns)
	var employee models.EmployeeDetail
	if err := r.db.GetContext(ctx, &employee, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find employee by id: %w", err)
	}
	return &employee, nil
}

// FindByDNI returns an employee by national ID.
func (r *EmployeeRepository) FindByDNI(ctx context.Context, dni string) (*models.EmployeeDetail, error) {
	query := fmt.Sprintf("SELECT %s FROM empleados e LEFT JOIN roles r ON r.id = e.role_id WHERE e.dni = $1 LIMIT 1", employeeColumns)
	var employee models.EmployeeDetail
	if err := r.db.GetContext(ctx, &employee, query, dni); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find employee by dni: %w", err)
	}
	return &employee, nil
}

// Create inserts a new employee.
func (r *EmployeeRepository) Create(ctx context.Context, employee *models.Employee) error {
	if employee.ID == "" {
		employee.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if employee.CreatedAt.IsZero() {
		employee.CreatedAt = now
	}
	employee.UpdatedAt = now
	if employee.Status == "" {
		employee.Status = models.StatusActive
	}

	const query = `INSERT INTO empleados (id, dni, first_name, last_name, phone, email, gender, role_id, status, first_login, created_at, updated_at)
        VALUES (:id, :dni, :first_name, :last_name, :phone, :email, :gender, :role_id, :status, :first_login, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, employee); err != nil {
		return fmt.Errorf("create employee: %w", err)
	}
	return nil
}

// Update updates mutable fields of an employee.
func (r *EmployeeRepository) Update(ctx context.Context, employee *models.Employee) error {
	employee.UpdatedAt = time.Now().UTC()
	const query = `UPDATE empleados SET first_name = :first_name, last_name = :last_name, phone = :phone, email = :email,
        gender = :gender, role_id = :role_id, status = :status, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, employee); err != nil {
		return fmt.Errorf("update employee: %w", err)
	}
	return nil
}

// Delete removes an employee row. Credential revocation is the identity
// service's responsibility and happens after this commit.
func (r *EmployeeRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM empleados WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete employee: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// SetFirstLogin flips the first_login flag for the employee owning the
// DNI, returning sql.ErrNoRows when no employee matches.
func (r *EmployeeRepository) SetFirstLogin(ctx context.Context, dni string, firstLogin bool) error {
	const query = `UPDATE empleados SET first_login = $2, updated_at = $3 WHERE dni = $1`
	res, err := r.db.ExecContext(ctx, query, dni, firstLogin, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("set employee first login: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
