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

// StudentRepository manages persistence for student records.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs a StudentRepository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

const studentDetailColumns = `s.id, s.dni, s.first_name, s.last_name, s.birth_date, s.gender, s.notes, s.status, s.created_at, s.updated_at,
        g.id AS current_grade_id, g.name AS current_grade_name`

// List returns students matching the provided filters with their active
// grade link, when any.
func (r *StudentRepository) List(ctx context.Context, filter models.StudentFilter) ([]models.StudentDetail, int, error) {
	base := "FROM alumnos s LEFT JOIN alumnos_x_grados ag ON ag.student_id = s.id AND ag.active = TRUE LEFT JOIN grados g ON g.id = ag.grade_id"
	conditions := []string{"1=1"}
	var args []interface{}

	if filter.GradeID != "" {
		conditions = append(conditions, fmt.Sprintf("ag.grade_id = $%d", len(args)+1))
		args = append(args, filter.GradeID)
	}
	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("s.status = $%d", len(args)+1))
		args = append(args, *filter.Status)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(LOWER(s.first_name) LIKE $%d OR LOWER(s.last_name) LIKE $%d OR s.dni LIKE $%d)", len(args)+1, len(args)+1, len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}

	base = fmt.Sprintf("%s WHERE %s", base, strings.Join(conditions, " AND "))

	allowedSorts := map[string]string{
		"last_name":  "s.last_name",
		"dni":        "s.dni",
		"created_at": "s.created_at",
	}
	column, ok := allowedSorts[filter.SortBy]
	if !ok {
		column = "s.last_name"
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

	query := fmt.Sprintf("SELECT %s %s ORDER BY %s %s, s.first_name ASC LIMIT %d OFFSET %d", studentDetailColumns, base, column, order, size, offset)

	var students []models.StudentDetail
	if err := r.db.SelectContext(ctx, &students, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list students: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count students: %w", err)
	}
	return students, total, nil
}

// FindByID returns a student by identifier.
func (r *StudentRepository) FindByID(ctx context.Context, id string) (*models.StudentDetail, error) {
	query := fmt.Sprintf(`SELECT %s FROM alumnos s
        LEFT JOIN alumnos_x_grados ag ON ag.student_id = s.id AND ag.active = TRUE
        LEFT JOIN grados g ON g.id = ag.grade_id
        WHERE s.id = $1 LIMIT 1`, studentDetailColumns)
	var student models.StudentDetail
	if err := r.db.GetContext(ctx, &student, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find student by id: %w", err)
	}
	return &student, nil
}

// FindByDNI returns a student by national ID.
func (r *StudentRepository) FindByDNI(ctx context.Context, dni string) (*models.StudentDetail, error) {
	query := fmt.Sprintf(`SELECT %s FROM alumnos s
        LEFT JOIN alumnos_x_grados ag ON ag.student_id = s.id AND ag.active = TRUE
        LEFT JOIN grados g ON g.id = ag.grade_id
        WHERE s.dni = $1 LIMIT 1`, studentDetailColumns)
	var student models.StudentDetail
	if err := r.db.GetContext(ctx, &student, query, dni); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find student by dni: %w", err)
	}
	return &student, nil
}

// Create inserts a new student outside the complete-enrollment flow.
func (r *StudentRepository) Create(ctx context.Context, student *models.Student) error {
	if student.ID == "" {
		student.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if student.CreatedAt.IsZero() {
		student.CreatedAt = now
	}
	student.UpdatedAt = now
	if student.Status == "" {
		student.Status = models.StatusActive
	}

	const query = `INSERT INTO alumnos (id, dni, first_name, last_name, birth_date, gender, notes, status, created_at, updated_at)
        VALUES (:id, :dni, :first_name, :last_name, :birth_date, :gender, :notes, :status, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, student); err != nil {
		return fmt.Errorf("create student: %w", err)
	}
	return nil
}

// Update updates mutable fields of a student.
func (r *StudentRepository) Update(ctx context.Context, student *models.Student) error {
	student.UpdatedAt = time.Now().UTC()
	const query = `UPDATE alumnos SET first_name = :first_name, last_name = :last_name, birth_date = :birth_date,
        gender = :gender, notes = :notes, status = :status, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, student); err != nil {
		return fmt.Errorf("update student: %w", err)
	}
	return nil
}

// Delete performs a soft delete by marking the student inactive. Seat
// capacity is not restored (consumption is per academic cycle).
func (r *StudentRepository) Delete(ctx context.Context, id string) error {
	const query = `UPDATE alumnos SET status = $2, updated_at = $3 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id, models.StatusInactive, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("delete student: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
