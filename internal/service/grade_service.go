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

type gradeRepository interface {
	List(ctx context.Context) ([]models.Grade, error)
	FindByID(ctx context.Context, id string) (*models.Grade, error)
	AvailableSeats(ctx context.Context, id string) (int, error)
	ReserveSeat(ctx context.Context, id string) error
	Create(ctx context.Context, grade *models.Grade) error
	UpdateSeats(ctx context.Context, id string, seats int) error
}

// CreateGradeRequest is the payload for registering a grade level.
type CreateGradeRequest struct {
	Name           string `json:"nombre" validate:"required"`
	AvailableSeats int    `json:"asientos_disponibles" validate:"gte=0"`
}

// UpdateSeatsRequest sets the seat counter for a grade directly.
type UpdateSeatsRequest struct {
	AvailableSeats int `json:"asientos_disponibles" validate:"gte=0"`
}

// GradeService manages grade levels and their seat ledger.
type GradeService struct {
	repo      gradeRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewGradeService constructs a GradeService instance.
func NewGradeService(repo gradeRepository, validate *validator.Validate, logger *zap.Logger) *GradeService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &GradeService{repo: repo, validator: validate, logger: logger}
}

// List returns all grades.
func (s *GradeService) List(ctx context.Context) ([]models.Grade, error) {
	grades, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list grades")
	}
	return grades, nil
}

// Get returns a grade by identifier.
func (s *GradeService) Get(ctx context.Context, id string) (*models.Grade, error) {
	grade, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "grade not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load grade")
	}
	return grade, nil
}

// Capacity returns the seat snapshot used by enrollment screens.
func (s *GradeService) Capacity(ctx context.Context, id string) (*models.GradeCapacity, error) {
	grade, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &models.GradeCapacity{
		GradeID:        grade.ID,
		Name:           grade.Name,
		AvailableSeats: grade.AvailableSeats,
		HasSeats:       grade.AvailableSeats > 0,
	}, nil
}

// Create registers a new grade level.
func (s *GradeService) Create(ctx context.Context, req CreateGradeRequest) (*models.Grade, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid grade payload")
	}

	grade := &models.Grade{Name: req.Name, AvailableSeats: req.AvailableSeats}
	if err := s.repo.Create(ctx, grade); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create grade")
	}
	s.logger.Info("grade created", zap.String("grade_id", grade.ID), zap.Int("seats", grade.AvailableSeats))
	return grade, nil
}

// UpdateSeats sets the seat counter for manual corrections.
func (s *GradeService) UpdateSeats(ctx context.Context, id string, req UpdateSeatsRequest) (*models.Grade, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid seats payload")
	}

	if err := s.repo.UpdateSeats(ctx, id, req.AvailableSeats); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "grade not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update seats")
	}
	return s.Get(ctx, id)
}

// ReserveSeat consumes one seat outside the enrollment transaction.
// Used by administrative corrections.
func (s *GradeService) ReserveSeat(ctx context.Context, id string) (*models.GradeCapacity, error) {
	if err := s.repo.ReserveSeat(ctx, id); err != nil {
		return nil, err
	}
	return s.Capacity(ctx, id)
}
