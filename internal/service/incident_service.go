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

type incidentRepository interface {
	ListIncidents(ctx context.Context) ([]models.IncidentDetail, error)
	CreateIncident(ctx context.Context, incident *models.Incident) error
	ListMeasures(ctx context.Context, filter models.MeasureFilter) ([]models.MeasureDetail, int, error)
	FindMeasureByID(ctx context.Context, id string) (*models.MeasureDetail, error)
	CreateMeasure(ctx context.Context, measure *models.Measure) error
	DeleteMeasure(ctx context.Context, id string) error
}

// CreateIncidentRequest adds an entry to the incident catalog.
type CreateIncidentRequest struct {
	Name   string `json:"nombre_incidencia" validate:"required"`
	TypeID string `json:"id_tipo_incidencia" validate:"required"`
}

// CreateMeasureRequest records a disciplinary measure against a student.
type CreateMeasureRequest struct {
	IncidentID     string    `json:"id_incidencia" validate:"required"`
	StudentID      string    `json:"id_alumno" validate:"required"`
	EmployeeID     string    `json:"id_empleado" validate:"required"`
	PlaceID        string    `json:"id_lugar" validate:"required"`
	Date           time.Time `json:"fecha_medida,omitempty"`
	SuspensionDays int       `json:"cantidad_dias" validate:"gte=0"`
	Description    string    `json:"descripcion_caso" validate:"required"`
}

// IncidentService manages the incident catalog and disciplinary
// measures.
type IncidentService struct {
	repo      incidentRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewIncidentService constructs an IncidentService instance.
func NewIncidentService(repo incidentRepository, validate *validator.Validate, logger *zap.Logger) *IncidentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &IncidentService{repo: repo, validator: validate, logger: logger}
}

// ListIncidents returns the incident catalog.
func (s *IncidentService) ListIncidents(ctx context.Context) ([]models.IncidentDetail, error) {
	incidents, err := s.repo.ListIncidents(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list incidents")
	}
	return incidents, nil
}

// CreateIncident adds an entry to the incident catalog.
func (s *IncidentService) CreateIncident(ctx context.Context, req CreateIncidentRequest) (*models.Incident, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid incident payload")
	}

	incident := &models.Incident{Name: req.Name, TypeID: req.TypeID}
	if err := s.repo.CreateIncident(ctx, incident); err != nil {
		var appErr *appErrors.Error
		if errors.As(err, &appErr) {
			return nil, err
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create incident")
	}
	return incident, nil
}

// ListMeasures returns disciplinary measures matching the filter.
func (s *IncidentService) ListMeasures(ctx context.Context, filter models.MeasureFilter) ([]models.MeasureDetail, *models.Pagination, error) {
	measures, total, err := s.repo.ListMeasures(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list measures")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	return measures, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// GetMeasure returns a single measure with display names.
func (s *IncidentService) GetMeasure(ctx context.Context, id string) (*models.MeasureDetail, error) {
	measure, err := s.repo.FindMeasureByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "measure not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load measure")
	}
	return measure, nil
}

// CreateMeasure records a disciplinary measure.
func (s *IncidentService) CreateMeasure(ctx context.Context, req CreateMeasureRequest) (*models.MeasureDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid measure payload")
	}

	measure := &models.Measure{
		IncidentID:     req.IncidentID,
		StudentID:      req.StudentID,
		EmployeeID:     req.EmployeeID,
		PlaceID:        req.PlaceID,
		Date:           req.Date,
		SuspensionDays: req.SuspensionDays,
		Description:    req.Description,
	}
	if err := s.repo.CreateMeasure(ctx, measure); err != nil {
		var appErr *appErrors.Error
		if errors.As(err, &appErr) {
			return nil, err
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create measure")
	}

	if measure.IsSuspension() {
		s.logger.Info("suspension recorded",
			zap.String("student_id", measure.StudentID),
			zap.Int("days", measure.SuspensionDays))
	}
	return s.GetMeasure(ctx, measure.ID)
}

// DeleteMeasure removes a measure record.
func (s *IncidentService) DeleteMeasure(ctx context.Context, id string) error {
	if err := s.repo.DeleteMeasure(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "measure not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete measure")
	}
	return nil
}
