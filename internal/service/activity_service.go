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

type activityRepository interface {
	List(ctx context.Context) ([]models.Activity, error)
	FindByID(ctx context.Context, id string) (*models.Activity, error)
	Create(ctx context.Context, activity *models.Activity) error
	Delete(ctx context.Context, id string) error
	ListGradeLinks(ctx context.Context, activityID string) ([]models.ActivityGradeLink, error)
	ScheduleForGrade(ctx context.Context, link *models.ActivityGradeLink) error
}

// CreateActivityRequest registers an extracurricular activity.
type CreateActivityRequest struct {
	Name        string `json:"nombre_actividad" validate:"required"`
	Destination string `json:"destino_actividad,omitempty"`
	Description string `json:"descripcion_actividad,omitempty"`
}

// ScheduleActivityRequest links an activity to a grade with a schedule.
type ScheduleActivityRequest struct {
	GradeID   string    `json:"id_grado" validate:"required"`
	StartsAt  time.Time `json:"fecha_hora_actividad" validate:"required"`
	DepartsAt time.Time `json:"fecha_hora_salida" validate:"required"`
}

// ActivityService manages extracurricular activities.
type ActivityService struct {
	repo      activityRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewActivityService constructs an ActivityService instance.
func NewActivityService(repo activityRepository, validate *validator.Validate, logger *zap.Logger) *ActivityService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &ActivityService{repo: repo, validator: validate, logger: logger}
}

// List returns all activities.
func (s *ActivityService) List(ctx context.Context) ([]models.Activity, error) {
	activities, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list activities")
	}
	return activities, nil
}

// Get returns an activity by identifier.
func (s *ActivityService) Get(ctx context.Context, id string) (*models.Activity, error) {
	activity, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "activity not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load activity")
	}
	return activity, nil
}

// Create registers an activity.
func (s *ActivityService) Create(ctx context.Context, req CreateActivityRequest) (*models.Activity, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid activity payload")
	}

	activity := &models.Activity{
		Name:        req.Name,
		Destination: req.Destination,
		Description: req.Description,
	}
	if err := s.repo.Create(ctx, activity); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create activity")
	}
	return activity, nil
}

// Delete removes an activity.
func (s *ActivityService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "activity not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete activity")
	}
	return nil
}

// Schedule links an activity to a grade. Departure must not precede the
// start.
func (s *ActivityService) Schedule(ctx context.Context, activityID string, req ScheduleActivityRequest) (*models.ActivityGradeLink, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid schedule payload")
	}
	if req.DepartsAt.Before(req.StartsAt) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "departure must not precede the activity start")
	}
	if _, err := s.Get(ctx, activityID); err != nil {
		return nil, err
	}

	link := &models.ActivityGradeLink{
		ActivityID: activityID,
		GradeID:    req.GradeID,
		StartsAt:   req.StartsAt,
		DepartsAt:  req.DepartsAt,
	}
	if err := s.repo.ScheduleForGrade(ctx, link); err != nil {
		return nil, err
	}
	return link, nil
}

// Schedules returns the grade schedules for an activity.
func (s *ActivityService) Schedules(ctx context.Context, activityID string) ([]models.ActivityGradeLink, error) {
	if _, err := s.Get(ctx, activityID); err != nil {
		return nil, err
	}
	links, err := s.repo.ListGradeLinks(ctx, activityID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list activity schedules")
	}
	return links, nil
}
