package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/colegioadm/colegio-api/internal/models"
	appErrors "github.com/colegioadm/colegio-api/pkg/errors"
)

type tutorRepository interface {
	List(ctx context.Context, filter models.TutorFilter) ([]models.Tutor, int, error)
	FindByID(ctx context.Context, id string) (*models.Tutor, error)
	FindByDNI(ctx context.Context, dni string) (*models.Tutor, error)
	Create(ctx context.Context, tutor *models.Tutor) error
	Update(ctx context.Context, tutor *models.Tutor) error
	Delete(ctx context.Context, id string) error
}

// CreateTutorRequest is the payload for registering a guardian.
type CreateTutorRequest struct {
	DNI       string `json:"dni" validate:"required,numeric"`
	FirstName string `json:"nombre" validate:"required"`
	LastName  string `json:"apellido" validate:"required"`
	Phone     string `json:"telefono,omitempty"`
	Email     string `json:"correo,omitempty" validate:"omitempty,email"`
	Gender    string `json:"genero,omitempty"`
}

// UpdateTutorRequest is the payload for updating a guardian.
type UpdateTutorRequest struct {
	FirstName string         `json:"nombre" validate:"required"`
	LastName  string         `json:"apellido" validate:"required"`
	Phone     string         `json:"telefono,omitempty"`
	Email     string         `json:"correo,omitempty" validate:"omitempty,email"`
	Gender    string         `json:"genero,omitempty"`
	Status    *models.Status `json:"status,omitempty"`
}

// TutorService manages guardian records. Like employees, tutors carry a
// credential keyed by DNI; a DNI already holding a credential from the
// other variant reuses it untouched.
type TutorService struct {
	repo      tutorRepository
	identity  credentialProvisioner
	validator *validator.Validate
	logger    *zap.Logger
}

// NewTutorService constructs a TutorService instance.
func NewTutorService(repo tutorRepository, identity credentialProvisioner, validate *validator.Validate, logger *zap.Logger) *TutorService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &TutorService{repo: repo, identity: identity, validator: validate, logger: logger}
}

// List returns tutors matching the filter with pagination metadata.
func (s *TutorService) List(ctx context.Context, filter models.TutorFilter) ([]models.Tutor, *models.Pagination, error) {
	tutors, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list tutors")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	return tutors, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get returns a tutor by identifier.
func (s *TutorService) Get(ctx context.Context, id string) (*models.Tutor, error) {
	tutor, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "tutor not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load tutor")
	}
	return tutor, nil
}

// GetByDNI returns a tutor by DNI. Used as the availability check
// before registering a new guardian.
func (s *TutorService) GetByDNI(ctx context.Context, dni string) (*models.Tutor, error) {
	tutor, err := s.repo.FindByDNI(ctx, dni)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "tutor not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load tutor")
	}
	return tutor, nil
}

// Create registers a tutor and provisions its credential, rolling the
// tutor row back when provisioning fails.
func (s *TutorService) Create(ctx context.Context, req CreateTutorRequest) (*models.Tutor, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid tutor payload")
	}

	if _, err := s.repo.FindByDNI(ctx, req.DNI); err == nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "tutor dni already registered")
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check tutor dni")
	}

	tutor := &models.Tutor{
		DNI:        req.DNI,
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		Phone:      req.Phone,
		Email:      req.Email,
		Gender:     req.Gender,
		Status:     models.StatusActive,
		FirstLogin: true,
	}
	if err := s.repo.Create(ctx, tutor); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create tutor")
	}

	if err := s.identity.Provision(ctx, tutor.DNI); err != nil {
		if delErr := s.repo.Delete(ctx, tutor.ID); delErr != nil {
			s.logger.Error("failed to roll back tutor after provisioning failure",
				zap.String("tutor_id", tutor.ID), zap.Error(delErr))
		}
		return nil, err
	}

	s.logger.Info("tutor created", zap.String("tutor_id", tutor.ID))
	return tutor, nil
}

// Update updates mutable fields of a tutor.
func (s *TutorService) Update(ctx context.Context, id string, req UpdateTutorRequest) (*models.Tutor, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid tutor payload")
	}

	tutor, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	tutor.FirstName = req.FirstName
	tutor.LastName = req.LastName
	tutor.Phone = req.Phone
	tutor.Email = req.Email
	tutor.Gender = req.Gender
	if req.Status != nil {
		tutor.Status = *req.Status
	}

	if err := s.repo.Update(ctx, tutor); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update tutor")
	}
	return tutor, nil
}

// Delete removes a tutor and revokes its credential. Revocation is
// non-fatal when the credential is already gone.
func (s *TutorService) Delete(ctx context.Context, id string) error {
	tutor, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "tutor not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete tutor")
	}

	if err := s.identity.Revoke(ctx, tutor.DNI); err != nil {
		s.logger.Warn("failed to revoke credential for deleted tutor",
			zap.String("dni", tutor.DNI), zap.Error(err))
	}

	s.logger.Info("tutor deleted", zap.String("tutor_id", id))
	return nil
}
