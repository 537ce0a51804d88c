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
	appErrors "github.com/colegioadm/colegio-api/pkg/errors"
)

// IncidentRepository manages the incident catalog and the disciplinary
// measures applied to students.
type IncidentRepository struct {
	db *sqlx.DB
}

// NewIncidentRepository constructs an IncidentRepository.
func NewIncidentRepository(db *sqlx.DB) *IncidentRepository {
	return &IncidentRepository{db: db}
}

// ListIncidents returns the incident catalog with type names.
func (r *IncidentRepository) ListIncidents(ctx context.Context) ([]models.IncidentDetail, error) {
	const query = `SELECT i.id, i.name, i.type_id, t.name AS type_name
        FROM incidencias i JOIN tipos_incidencia t ON t.id = i.type_id
        ORDER BY t.name ASC, i.name ASC`
	var incidents []models.IncidentDetail
	if err := r.db.SelectContext(ctx, &incidents, query); err != nil {
		return nil, fmt.Errorf("list incidents: %w", err)
	}
	return incidents, nil
}

// CreateIncident adds an entry to the incident catalog.
func (r *IncidentRepository) CreateIncident(ctx context.Context, incident *models.Incident) error {
	if incident.ID == "" {
		incident.ID = uuid.NewString()
	}
	const query = `INSERT INTO incidencias (id, name, type_id) VALUES (:id, :name, :type_id)`
	if _, err := r.db.NamedExecContext(ctx, query, incident); err != nil {
		if isForeignKeyViolation(err) {
			return appErrors.Clone(appErrors.ErrNotFound, "incident type not found")
		}
		return fmt.Errorf("create incident: %w", err)
	}
	return nil
}

const measureDetailColumns = `m.id, m.incident_id, m.student_id, m.employee_id, m.place_id, m.date, m.suspension_days, m.description,
        s.first_name || ' ' || s.last_name AS student_name,
        i.name AS incident_name,
        t.name AS type_name,
        p.name AS place_name,
        e.first_name || ' ' || e.last_name AS employee_name`

const measureDetailJoins = `FROM medidas_x_alumnos m
        JOIN alumnos s ON s.id = m.student_id
        JOIN incidencias i ON i.id = m.incident_id
        JOIN tipos_incidencia t ON t.id = i.type_id
        JOIN lugares p ON p.id = m.place_id
        JOIN empleados e ON e.id = m.employee_id`

// ListMeasures returns disciplinary measures matching the filter.
func (r *IncidentRepository) ListMeasures(ctx context.Context, filter models.MeasureFilter) ([]models.MeasureDetail, int, error) {
	conditions := []string{"1=1"}
	var args []interface{}

	if filter.StudentID != "" {
		conditions = append(conditions, fmt.Sprintf("m.student_id = $%d", len(args)+1))
		args = append(args, filter.StudentID)
	}
	if filter.IncidentID != "" {
		conditions = append(conditions, fmt.Sprintf("m.incident_id = $%d", len(args)+1))
		args = append(args, filter.IncidentID)
	}
	if filter.TypeID != "" {
		conditions = append(conditions, fmt.Sprintf("i.type_id = $%d", len(args)+1))
		args = append(args, filter.TypeID)
	}

	base := fmt.Sprintf("%s WHERE %s", measureDetailJoins, strings.Join(conditions, " AND "))

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s ORDER BY m.date DESC LIMIT %d OFFSET %d", measureDetailColumns, base, size, offset)

	var measures []models.MeasureDetail
	if err := r.db.SelectContext(ctx, &measures, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list measures: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count measures: %w", err)
	}
	return measures, total, nil
}

// FindMeasureByID returns a single measure with display names.
func (r *IncidentRepository) FindMeasureByID(ctx context.Context, id string) (*models.MeasureDetail, error) {
	query := fmt.Sprintf("SELECT %s %s WHERE m.id = $1 LIMIT 1", measureDetailColumns, measureDetailJoins)
	var measure models.MeasureDetail
	if err := r.db.GetContext(ctx, &measure, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find measure by id: %w", err)
	}
	return &measure, nil
}

// CreateMeasure records a disciplinary measure against a student.
func (r *IncidentRepository) CreateMeasure(ctx context.Context, measure *models.Measure) error {
	if measure.ID == "" {
		measure.ID = uuid.NewString()
	}
	if measure.Date.IsZero() {
		measure.Date = time.Now().UTC()
	}
	const query = `INSERT INTO medidas_x_alumnos (id, incident_id, student_id, employee_id, place_id, date, suspension_days, description)
        VALUES (:id, :incident_id, :student_id, :employee_id, :place_id, :date, :suspension_days, :description)`
	if _, err := r.db.NamedExecContext(ctx, query, measure); err != nil {
		switch {
		case isForeignKeyViolation(err) && constraintMentions(err, "student"):
			return appErrors.Clone(appErrors.ErrNotFound, "student not found")
		case isForeignKeyViolation(err) && constraintMentions(err, "incident"):
			return appErrors.Clone(appErrors.ErrNotFound, "incident not found")
		case isForeignKeyViolation(err) && constraintMentions(err, "place"):
			return appErrors.Clone(appErrors.ErrNotFound, "place not found")
		case isForeignKeyViolation(err) && constraintMentions(err, "employee"):
			return appErrors.Clone(appErrors.ErrNotFound, "employee not found")
		}
		return fmt.Errorf("create measure: %w", err)
	}
	return nil
}

// DeleteMeasure removes a measure record.
func (r *IncidentRepository) DeleteMeasure(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM medidas_x_alumnos WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete measure: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
