package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colegioadm/colegio-api/internal/models"
	appErrors "github.com/colegioadm/colegio-api/pkg/errors"
)

func newEnrollmentRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func completeParams() CompleteEnrollmentParams {
	return CompleteEnrollmentParams{
		Student: &models.Student{
			DNI:       "40111222",
			FirstName: "Ana",
			LastName:  "Gomez",
			BirthDate: time.Date(2012, 3, 14, 0, 0, 0, 0, time.UTC),
		},
		GradeLink: &models.StudentGradeLink{GradeID: "g1", SchoolID: "s1"},
		TutorLink: &models.StudentTutorLink{TutorID: "t1", RelationshipID: "rel1"},
	}
}

func TestEnrollmentRepositoryCreateComplete(t *testing.T) {
	db, mock, cleanup := newEnrollmentRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO alumnos \(`).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO alumnos_x_grados").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO alumnos_x_tutores").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE grados SET available_seats = available_seats - 1")).
		WithArgs("g1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	params := completeParams()
	err := repo.CreateComplete(context.Background(), params)
	require.NoError(t, err)

	assert.NotEmpty(t, params.Student.ID)
	assert.Equal(t, params.Student.ID, params.GradeLink.StudentID)
	assert.Equal(t, params.Student.ID, params.TutorLink.StudentID)
	assert.True(t, params.GradeLink.Active)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryCreateCompleteCapacityExceeded(t *testing.T) {
	db, mock, cleanup := newEnrollmentRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO alumnos \(`).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO alumnos_x_grados").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO alumnos_x_tutores").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE grados SET available_seats = available_seats - 1")).
		WithArgs("g1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM grados WHERE id = $1")).
		WithArgs("g1").
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))
	mock.ExpectRollback()

	err := repo.CreateComplete(context.Background(), completeParams())
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrCapacityExceeded.Code, appErr.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryCreateCompleteGradeMissing(t *testing.T) {
	db, mock, cleanup := newEnrollmentRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO alumnos \(`).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO alumnos_x_grados").
		WillReturnError(&pq.Error{Code: "23503", Constraint: "alumnos_x_grados_grade_id_fkey"})
	mock.ExpectRollback()

	err := repo.CreateComplete(context.Background(), completeParams())
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
	assert.Equal(t, "grade not found", appErr.Message)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryCreateCompleteDuplicateDNI(t *testing.T) {
	db, mock, cleanup := newEnrollmentRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO alumnos \(`).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "alumnos_dni_key"})
	mock.ExpectRollback()

	err := repo.CreateComplete(context.Background(), completeParams())
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryCreateCompleteTutorMissing(t *testing.T) {
	db, mock, cleanup := newEnrollmentRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO alumnos \(`).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO alumnos_x_grados").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO alumnos_x_tutores").
		WillReturnError(&pq.Error{Code: "23503", Constraint: "alumnos_x_tutores_tutor_id_fkey"})
	mock.ExpectRollback()

	err := repo.CreateComplete(context.Background(), completeParams())
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
	assert.Equal(t, "tutor not found", appErr.Message)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryCreateTutorLinkConflict(t *testing.T) {
	db, mock, cleanup := newEnrollmentRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	mock.ExpectExec("INSERT INTO alumnos_x_tutores").
		WillReturnError(&pq.Error{Code: "23505", Constraint: "alumnos_x_tutores_student_tutor_key"})

	err := repo.CreateTutorLink(context.Background(), &models.StudentTutorLink{
		StudentID: "st1", TutorID: "t1", RelationshipID: "rel1",
	})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryListGradeLinks(t *testing.T) {
	db, mock, cleanup := newEnrollmentRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	rows := sqlmock.NewRows([]string{"id", "student_id", "grade_id", "school_id", "enrolled_at", "active"}).
		AddRow("l1", "st1", "g1", "s1", time.Now(), true)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, student_id, grade_id, school_id, enrolled_at, active FROM alumnos_x_grados WHERE student_id = $1")).
		WithArgs("st1").
		WillReturnRows(rows)

	links, err := repo.ListGradeLinks(context.Background(), "st1")
	require.NoError(t, err)
	assert.Len(t, links, 1)
	assert.Equal(t, "g1", links[0].GradeID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
