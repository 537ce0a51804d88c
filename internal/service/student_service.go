package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/colegioadm/colegio-api/internal/models"
	appErrors "github.com/colegioadm/colegio-api/pkg/errors"
)

type studentRepository interface {
	List(ctx context.Context, filter models.StudentFilter) ([]models.StudentDetail, int, error)
	FindByID(ctx context.Context, id string) (*models.StudentDetail, error)
	FindByDNI(ctx context.Context, dni string) (*models.StudentDetail, error)
	Update(ctx context.Context, student *models.Student) error
	Delete(ctx context.Context, id string) error
}

type studentLinkRepository interface {
	ListGradeLinks(ctx context.Context, studentID string) ([]models.StudentGradeLink, error)
	ListTutorLinks(ctx context.Context, studentID string) ([]models.StudentTutorLink, error)
	CreateTutorLink(ctx context.Context, link *models.StudentTutorLink) error
}

// UpdateStudentRequest is the payload for updating a student record.
// Students are only created through the complete enrollment flow.
type UpdateStudentRequest struct {
	FirstName string         `json:"nombre" validate:"required"`
	LastName  string         `json:"apellido" validate:"required"`
	BirthDate time.Time      `json:"fecha_nacimiento" validate:"required"`
	Gender    string         `json:"genero,omitempty"`
	Notes     string         `json:"observaciones,omitempty"`
	Status    *models.Status `json:"status,omitempty"`
}

// LinkTutorRequest attaches an additional tutor to a student.
type LinkTutorRequest struct {
	TutorID        string `json:"id_tutor" validate:"required"`
	RelationshipID string `json:"id_parentesco" validate:"required"`
}

// StudentService manages learner records after enrollment.
type StudentService struct {
	repo      studentRepository
	links     studentLinkRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewStudentService constructs a StudentService instance.
func NewStudentService(repo studentRepository, links studentLinkRepository, validate *validator.Validate, logger *zap.Logger) *StudentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &StudentService{repo: repo, links: links, validator: validate, logger: logger}
}

// List returns students matching the filter with pagination metadata.
func (s *StudentService) List(ctx context.Context, filter models.StudentFilter) ([]models.StudentDetail, *models.Pagination, error) {
	students, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	return students, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get returns a student by identifier.
func (s *StudentService) Get(ctx context.Context, id string) (*models.StudentDetail, error) {
	student, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	return student, nil
}

// GetByDNI returns a student by national ID.
func (s *StudentService) GetByDNI(ctx context.Context, dni string) (*models.StudentDetail, error) {
	student, err := s.repo.FindByDNI(ctx, dni)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	return student, nil
}

// Update updates mutable fields of a student.
func (s *StudentService) Update(ctx context.Context, id string, req UpdateStudentRequest) (*models.StudentDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student payload")
	}

	existing, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	student := existing.Student
	student.FirstName = req.FirstName
	student.LastName = req.LastName
	student.BirthDate = req.BirthDate
	student.Gender = req.Gender
	student.Notes = req.Notes
	if req.Status != nil {
		student.Status = *req.Status
	}

	if err := s.repo.Update(ctx, &student); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update student")
	}
	return s.Get(ctx, id)
}

// Delete marks a student inactive. The seat consumed at enrollment is
// not restored.
func (s *StudentService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete student")
	}
	s.logger.Info("student deactivated", zap.String("student_id", id))
	return nil
}

// Tutors returns the tutor links for a student.
func (s *StudentService) Tutors(ctx context.Context, id string) ([]models.StudentTutorLink, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	links, err := s.links.ListTutorLinks(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list tutor links")
	}
	return links, nil
}

// GradeHistory returns the grade links for a student, newest first.
func (s *StudentService) GradeHistory(ctx context.Context, id string) ([]models.StudentGradeLink, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	links, err := s.links.ListGradeLinks(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list grade links")
	}
	return links, nil
}

// LinkTutor attaches an additional tutor to an existing student.
func (s *StudentService) LinkTutor(ctx context.Context, id string, req LinkTutorRequest) (*models.StudentTutorLink, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid tutor link payload")
	}
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}

	link := &models.StudentTutorLink{
		StudentID:      id,
		TutorID:        req.TutorID,
		RelationshipID: req.RelationshipID,
	}
	if err := s.links.CreateTutorLink(ctx, link); err != nil {
		return nil, err
	}
	return link, nil
}
