package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/colegioadm/colegio-api/internal/models"
	appErrors "github.com/colegioadm/colegio-api/pkg/errors"
)

// EnrollmentRepository owns the complete-enrollment unit of work: the
// student row, both link rows and the seat decrement commit or roll
// back together, so a failed enrollment leaves zero trace.
type EnrollmentRepository struct {
	db *sqlx.DB
}

// NewEnrollmentRepository constructs an EnrollmentRepository.
func NewEnrollmentRepository(db *sqlx.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

// CompleteEnrollmentParams carries the three rows created by a complete
// enrollment. IDs are assigned during the transaction.
type CompleteEnrollmentParams struct {
	Student   *models.Student
	GradeLink *models.StudentGradeLink
	TutorLink *models.StudentTutorLink
}

// CreateComplete runs the enrollment transaction. Statement order is
// deliberate: the seat decrement goes last so capacity is only consumed
// once every other write has succeeded, and the guarded update
// serializes concurrent enrollments on the grade row.
func (r *EnrollmentRepository) CreateComplete(ctx context.Context, params CompleteEnrollmentParams) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin enrollment transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	now := time.Now().UTC()

	student := params.Student
	if student.ID == "" {
		student.ID = uuid.NewString()
	}
	student.CreatedAt = now
	student.UpdatedAt = now
	if student.Status == "" {
		student.Status = models.StatusActive
	}
	const insertStudent = `INSERT INTO alumnos (id, dni, first_name, last_name, birth_date, gender, notes, status, created_at, updated_at)
        VALUES (:id, :dni, :first_name, :last_name, :birth_date, :gender, :notes, :status, :created_at, :updated_at)`
	if _, err = tx.NamedExecContext(ctx, insertStudent, student); err != nil {
		if isUniqueViolation(err) {
			return appErrors.Clone(appErrors.ErrConflict, "student dni already registered")
		}
		return fmt.Errorf("create student: %w", err)
	}

	gradeLink := params.GradeLink
	if gradeLink.ID == "" {
		gradeLink.ID = uuid.NewString()
	}
	gradeLink.StudentID = student.ID
	gradeLink.EnrolledAt = now
	gradeLink.Active = true
	const insertGradeLink = `INSERT INTO alumnos_x_grados (id, student_id, grade_id, school_id, enrolled_at, active)
        VALUES (:id, :student_id, :grade_id, :school_id, :enrolled_at, :active)`
	if _, err = tx.NamedExecContext(ctx, insertGradeLink, gradeLink); err != nil {
		switch {
		case isUniqueViolation(err):
			return appErrors.Clone(appErrors.ErrConflict, "student already linked to grade")
		case isForeignKeyViolation(err) && constraintMentions(err, "grade"):
			return appErrors.Clone(appErrors.ErrNotFound, "grade not found")
		case isForeignKeyViolation(err) && constraintMentions(err, "school"):
			return appErrors.Clone(appErrors.ErrNotFound, "school of origin not found")
		}
		return fmt.Errorf("create grade link: %w", err)
	}

	tutorLink := params.TutorLink
	if tutorLink.ID == "" {
		tutorLink.ID = uuid.NewString()
	}
	tutorLink.StudentID = student.ID
	const insertTutorLink = `INSERT INTO alumnos_x_tutores (id, student_id, tutor_id, relationship_id)
        VALUES (:id, :student_id, :tutor_id, :relationship_id)`
	if _, err = tx.NamedExecContext(ctx, insertTutorLink, tutorLink); err != nil {
		switch {
		case isUniqueViolation(err):
			return appErrors.Clone(appErrors.ErrConflict, "student already linked to tutor")
		case isForeignKeyViolation(err) && constraintMentions(err, "tutor"):
			return appErrors.Clone(appErrors.ErrNotFound, "tutor not found")
		case isForeignKeyViolation(err) && constraintMentions(err, "relationship"):
			return appErrors.Clone(appErrors.ErrNotFound, "relationship type not found")
		}
		return fmt.Errorf("create tutor link: %w", err)
	}

	var res sql.Result
	if res, err = tx.ExecContext(ctx, reserveSeatQuery, gradeLink.GradeID, now); err != nil {
		return fmt.Errorf("reserve seat: %w", err)
	}
	var affected int64
	if affected, err = res.RowsAffected(); err != nil {
		return fmt.Errorf("reserve seat: %w", err)
	}
	if affected == 0 {
		var exists int
		err = tx.GetContext(ctx, &exists, `SELECT 1 FROM grados WHERE id = $1`, gradeLink.GradeID)
		if err == sql.ErrNoRows {
			err = appErrors.Clone(appErrors.ErrNotFound, "grade not found")
			return err
		}
		if err != nil {
			return fmt.Errorf("reserve seat lookup: %w", err)
		}
		err = appErrors.ErrCapacityExceeded
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit enrollment: %w", err)
	}
	return nil
}

// ListGradeLinks returns the grade links for a student.
func (r *EnrollmentRepository) ListGradeLinks(ctx context.Context, studentID string) ([]models.StudentGradeLink, error) {
	const query = `SELECT id, student_id, grade_id, school_id, enrolled_at, active FROM alumnos_x_grados WHERE student_id = $1 ORDER BY enrolled_at DESC`
	var links []models.StudentGradeLink
	if err := r.db.SelectContext(ctx, &links, query, studentID); err != nil {
		return nil, fmt.Errorf("list grade links: %w", err)
	}
	return links, nil
}

// ListTutorLinks returns the tutor links for a student.
func (r *EnrollmentRepository) ListTutorLinks(ctx context.Context, studentID string) ([]models.StudentTutorLink, error) {
	const query = `SELECT id, student_id, tutor_id, relationship_id FROM alumnos_x_tutores WHERE student_id = $1`
	var links []models.StudentTutorLink
	if err := r.db.SelectContext(ctx, &links, query, studentID); err != nil {
		return nil, fmt.Errorf("list tutor links: %w", err)
	}
	return links, nil
}

// CreateTutorLink links an existing student to a tutor outside the
// complete-enrollment flow.
func (r *EnrollmentRepository) CreateTutorLink(ctx context.Context, link *models.StudentTutorLink) error {
	if link.ID == "" {
		link.ID = uuid.NewString()
	}
	const query = `INSERT INTO alumnos_x_tutores (id, student_id, tutor_id, relationship_id)
        VALUES (:id, :student_id, :tutor_id, :relationship_id)`
	if _, err := r.db.NamedExecContext(ctx, query, link); err != nil {
		if isUniqueViolation(err) {
			return appErrors.Clone(appErrors.ErrConflict, "student already linked to tutor")
		}
		if isForeignKeyViolation(err) {
			return appErrors.Clone(appErrors.ErrNotFound, "student, tutor or relationship not found")
		}
		return fmt.Errorf("create tutor link: %w", err)
	}
	return nil
}
