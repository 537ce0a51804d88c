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

// MeetingRepository manages meetings and tutor attendance records.
type MeetingRepository struct {
	db *sqlx.DB
}

// NewMeetingRepository constructs a MeetingRepository.
func NewMeetingRepository(db *sqlx.DB) *MeetingRepository {
	return &MeetingRepository{db: db}
}

// List returns meetings ordered by schedule, most recent first.
func (r *MeetingRepository) List(ctx context.Context) ([]models.Meeting, error) {
	const query = `SELECT id, scheduled_at, type, description, employee_id FROM reuniones ORDER BY scheduled_at DESC`
	var meetings []models.Meeting
	if err := r.db.SelectContext(ctx, &meetings, query); err != nil {
		return nil, fmt.Errorf("list meetings: %w", err)
	}
	return meetings, nil
}

// FindByID returns a meeting by identifier.
func (r *MeetingRepository) FindByID(ctx context.Context, id string) (*models.Meeting, error) {
	const query = `SELECT id, scheduled_at, type, description, employee_id FROM reuniones WHERE id = $1 LIMIT 1`
	var meeting models.Meeting
	if err := r.db.GetContext(ctx, &meeting, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find meeting by id: %w", err)
	}
	return &meeting, nil
}

// Create schedules a new meeting.
func (r *MeetingRepository) Create(ctx context.Context, meeting *models.Meeting) error {
	if meeting.ID == "" {
		meeting.ID = uuid.NewString()
	}
	const query = `INSERT INTO reuniones (id, scheduled_at, type, description, employee_id)
        VALUES (:id, :scheduled_at, :type, :description, :employee_id)`
	if _, err := r.db.NamedExecContext(ctx, query, meeting); err != nil {
		if isForeignKeyViolation(err) {
			return appErrors.Clone(appErrors.ErrNotFound, "employee not found")
		}
		return fmt.Errorf("create meeting: %w", err)
	}
	return nil
}

// Delete removes a meeting and cascades its attendance rows.
func (r *MeetingRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM reuniones WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete meeting: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ListAttendance returns attendance rows for a meeting.
func (r *MeetingRepository) ListAttendance(ctx context.Context, meetingID string) ([]models.Attendance, error) {
	const query = `SELECT id, meeting_id, tutor_id, arrived_at, status FROM asistencias WHERE meeting_id = $1`
	var rows []models.Attendance
	if err := r.db.SelectContext(ctx, &rows, query, meetingID); err != nil {
		return nil, fmt.Errorf("list attendance: %w", err)
	}
	return rows, nil
}

// RecordAttendance registers a tutor's attendance at a meeting. The
// (meeting, tutor) pair is unique.
func (r *MeetingRepository) RecordAttendance(ctx context.Context, attendance *models.Attendance) error {
	if attendance.ID == "" {
		attendance.ID = uuid.NewString()
	}
	const query = `INSERT INTO asistencias (id, meeting_id, tutor_id, arrived_at, status)
        VALUES (:id, :meeting_id, :tutor_id, :arrived_at, :status)`
	if _, err := r.db.NamedExecContext(ctx, query, attendance); err != nil {
		if isUniqueViolation(err) {
			return appErrors.Clone(appErrors.ErrConflict, "attendance already recorded for tutor")
		}
		if isForeignKeyViolation(err) {
			return appErrors.Clone(appErrors.ErrNotFound, "meeting or tutor not found")
		}
		return fmt.Errorf("record attendance: %w", err)
	}
	return nil
}
