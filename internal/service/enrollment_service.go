package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/colegioadm/colegio-api/internal/models"
	"github.com/colegioadm/colegio-api/internal/repository"
	appErrors "github.com/colegioadm/colegio-api/pkg/errors"
)

type enrollmentRepository interface {
	CreateComplete(ctx context.Context, params repository.CompleteEnrollmentParams) error
}

// EnrollStudentSection carries the student fields of a complete
// enrollment request.
type EnrollStudentSection struct {
	DNI       string    `json:"dni" validate:"required,numeric"`
	FirstName string    `json:"nombre" validate:"required"`
	LastName  string    `json:"apellido" validate:"required"`
	BirthDate time.Time `json:"fecha_nacimiento" validate:"required"`
	Gender    string    `json:"genero,omitempty"`
	Notes     string    `json:"observaciones,omitempty"`
}

// EnrollGradeSection identifies the grade the student enrolls into.
type EnrollGradeSection struct {
	GradeID  string `json:"id_grado" validate:"required"`
	SchoolID string `json:"id_colegio_procedencia" validate:"required"`
}

// EnrollTutorSection links the student to an existing tutor.
type EnrollTutorSection struct {
	TutorID        string `json:"id_tutor" validate:"required"`
	RelationshipID string `json:"id_parentesco" validate:"required"`
}

// EnrollCompleteRequest is the three-section payload for the complete
// enrollment operation. All sections are mandatory; a missing one fails
// validation before any write happens.
type EnrollCompleteRequest struct {
	Student   *EnrollStudentSection `json:"alumno" validate:"required"`
	GradeLink *EnrollGradeSection   `json:"relacion_grado" validate:"required"`
	TutorLink *EnrollTutorSection   `json:"relacion_tutor" validate:"required"`
}

// EnrollmentService coordinates the all-or-nothing student enrollment.
type EnrollmentService struct {
	repo      enrollmentRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewEnrollmentService constructs an EnrollmentService instance.
func NewEnrollmentService(repo enrollmentRepository, validate *validator.Validate, logger *zap.Logger) *EnrollmentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &EnrollmentService{repo: repo, validator: validate, logger: logger}
}

// EnrollComplete creates the student, its grade link and its tutor link
// in a single transaction, consuming one seat from the grade. Any
// failure leaves the database untouched.
func (s *EnrollmentService) EnrollComplete(ctx context.Context, req EnrollCompleteRequest) (*models.EnrollmentResult, error) {
	switch {
	case req.Student == nil:
		return nil, appErrors.Clone(appErrors.ErrValidation, "missing required section: alumno")
	case req.GradeLink == nil:
		return nil, appErrors.Clone(appErrors.ErrValidation, "missing required section: relacion_grado")
	case req.TutorLink == nil:
		return nil, appErrors.Clone(appErrors.ErrValidation, "missing required section: relacion_tutor")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid enrollment payload")
	}

	student := &models.Student{
		DNI:       req.Student.DNI,
		FirstName: req.Student.FirstName,
		LastName:  req.Student.LastName,
		BirthDate: req.Student.BirthDate,
		Gender:    req.Student.Gender,
		Notes:     req.Student.Notes,
		Status:    models.StatusActive,
	}
	gradeLink := &models.StudentGradeLink{
		GradeID:  req.GradeLink.GradeID,
		SchoolID: req.GradeLink.SchoolID,
	}
	tutorLink := &models.StudentTutorLink{
		TutorID:        req.TutorLink.TutorID,
		RelationshipID: req.TutorLink.RelationshipID,
	}

	params := repository.CompleteEnrollmentParams{
		Student:   student,
		GradeLink: gradeLink,
		TutorLink: tutorLink,
	}
	if err := s.repo.CreateComplete(ctx, params); err != nil {
		s.logger.Warn("complete enrollment rolled back",
			zap.String("dni", req.Student.DNI),
			zap.String("grade_id", req.GradeLink.GradeID),
			zap.Error(err))
		return nil, err
	}

	s.logger.Info("student enrolled",
		zap.String("student_id", student.ID),
		zap.String("grade_id", gradeLink.GradeID))

	return &models.EnrollmentResult{
		Success:     true,
		Message:     "alumno registrado correctamente",
		StudentID:   student.ID,
		StudentDNI:  student.DNI,
		GradeLinkID: gradeLink.ID,
		TutorLinkID: tutorLink.ID,
	}, nil
}
