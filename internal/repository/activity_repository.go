package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/colegioadm/colegio-api/internal/models"
	appErrors "github.com/colegioadm/colegio-api/pkg/errors"
)

// ActivityRepository manages extracurricular activities and their grade
// schedules.
type ActivityRepository struct {
	db *sqlx.DB
}

// NewActivityRepository constructs an ActivityRepository.
func NewActivityRepository(db *sqlx.DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

// List returns all activities.
func (r *ActivityRepository) List(ctx context.Context) ([]models.Activity, error) {
	const query = `SELECT id, name, destination, description FROM actividades ORDER BY name ASC`
	var activities []models.Activity
	if err := r.db.SelectContext(ctx, &activities, query); err != nil {
		return nil, fmt.Errorf("list activities: %w", err)
	}
	return activities, nil
}

// FindByID returns an activity by identifier.
func (r *ActivityRepository) FindByID(ctx context.Context, id string) (*models.Activity, error) {
	const query = `SELECT id, name, destination, description FROM actividades WHERE id = $1 LIMIT 1`
	var activity models.Activity
	if err := r.db.GetContext(ctx, &activity, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find activity by id: %w", err)
	}
	return &activity, nil
}

// Create registers a new activity.
func (r *ActivityRepository) Create(ctx context.Context, activity *models.Activity) error {
	if activity.ID == "" {
		activity.ID = uuid.NewString()
	}
	const query = `INSERT INTO actividades (id, name, destination, description)
        VALUES (:id, :name, :destination, :description)`
	if _, err := r.db.NamedExecContext(ctx, query, activity); err != nil {
		return fmt.Errorf("create activity: %w", err)
	}
	return nil
}

// Delete removes an activity and cascades its grade schedules.
func (r *ActivityRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM actividades WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete activity: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ListGradeLinks returns the schedules for an activity.
func (r *ActivityRepository) ListGradeLinks(ctx context.Context, activityID string) ([]models.ActivityGradeLink, error) {
	const query = `SELECT id, activity_id, grade_id, starts_at, departs_at FROM actividades_x_grados WHERE activity_id = $1 ORDER BY starts_at ASC`
	var links []models.ActivityGradeLink
	if err := r.db.SelectContext(ctx, &links, query, activityID); err != nil {
		return nil, fmt.Errorf("list activity grade links: %w", err)
	}
	return links, nil
}

// ScheduleForGrade links an activity to a grade with its schedule. The
// (activity, grade) pair is unique.
func (r *ActivityRepository) ScheduleForGrade(ctx context.Context, link *models.ActivityGradeLink) error {
	if link.ID == "" {
		link.ID = uuid.NewString()
	}
	const query = `INSERT INTO actividades_x_grados (id, activity_id, grade_id, starts_at, departs_at)
        VALUES (:id, :activity_id, :grade_id, :starts_at, :departs_at)`
	if _, err := r.db.NamedExecContext(ctx, query, link); err != nil {
		if isUniqueViolation(err) {
			return appErrors.Clone(appErrors.ErrConflict, "activity already scheduled for grade")
		}
		if isForeignKeyViolation(err) {
			return appErrors.Clone(appErrors.ErrNotFound, "activity or grade not found")
		}
		return fmt.Errorf("schedule activity for grade: %w", err)
	}
	return nil
}
