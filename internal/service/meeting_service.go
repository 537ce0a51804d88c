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

type meetingRepository interface {
	List(ctx context.Context) ([]models.Meeting, error)
	FindByID(ctx context.Context, id string) (*models.Meeting, error)
	Create(ctx context.Context, meeting *models.Meeting) error
	Delete(ctx context.Context, id string) error
	ListAttendance(ctx context.Context, meetingID string) ([]models.Attendance, error)
	RecordAttendance(ctx context.Context, attendance *models.Attendance) error
}

// CreateMeetingRequest schedules a meeting with families.
type CreateMeetingRequest struct {
	ScheduledAt time.Time          `json:"fecha_hora_reunion" validate:"required"`
	Type        models.MeetingType `json:"tipo_reunion" validate:"required,oneof=INDIVIDUAL GENERAL_PADRES BILATERAL_PADRES"`
	Description string             `json:"descripcion_reunion,omitempty"`
	EmployeeID  string             `json:"id_empleado" validate:"required"`
}

// RecordAttendanceRequest registers a tutor's attendance at a meeting.
type RecordAttendanceRequest struct {
	TutorID   string                  `json:"id_tutor" validate:"required"`
	ArrivedAt *time.Time              `json:"fecha_llegada,omitempty"`
	Status    models.AttendanceStatus `json:"estado_asistencia" validate:"required,oneof=PRESENT ABSENT LEFT_EARLY"`
}

// MeetingService manages meetings and tutor attendance.
type MeetingService struct {
	repo      meetingRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewMeetingService constructs a MeetingService instance.
func NewMeetingService(repo meetingRepository, validate *validator.Validate, logger *zap.Logger) *MeetingService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &MeetingService{repo: repo, validator: validate, logger: logger}
}

// List returns scheduled meetings, most recent first.
func (s *MeetingService) List(ctx context.Context) ([]models.Meeting, error) {
	meetings, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list meetings")
	}
	return meetings, nil
}

// Get returns a meeting by identifier.
func (s *MeetingService) Get(ctx context.Context, id string) (*models.Meeting, error) {
	meeting, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "meeting not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load meeting")
	}
	return meeting, nil
}

// Create schedules a meeting.
func (s *MeetingService) Create(ctx context.Context, req CreateMeetingRequest) (*models.Meeting, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid meeting payload")
	}

	meeting := &models.Meeting{
		ScheduledAt: req.ScheduledAt,
		Type:        req.Type,
		Description: req.Description,
		EmployeeID:  req.EmployeeID,
	}
	if err := s.repo.Create(ctx, meeting); err != nil {
		var appErr *appErrors.Error
		if errors.As(err, &appErr) {
			return nil, err
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create meeting")
	}
	return meeting, nil
}

// Delete removes a meeting.
func (s *MeetingService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "meeting not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete meeting")
	}
	return nil
}

// Attendance returns attendance rows for a meeting.
func (s *MeetingService) Attendance(ctx context.Context, meetingID string) ([]models.Attendance, error) {
	if _, err := s.Get(ctx, meetingID); err != nil {
		return nil, err
	}
	rows, err := s.repo.ListAttendance(ctx, meetingID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list attendance")
	}
	return rows, nil
}

// RecordAttendance registers a tutor's attendance at a meeting.
func (s *MeetingService) RecordAttendance(ctx context.Context, meetingID string, req RecordAttendanceRequest) (*models.Attendance, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid attendance payload")
	}
	if _, err := s.Get(ctx, meetingID); err != nil {
		return nil, err
	}

	attendance := &models.Attendance{
		MeetingID: meetingID,
		TutorID:   req.TutorID,
		ArrivedAt: req.ArrivedAt,
		Status:    req.Status,
	}
	if err := s.repo.RecordAttendance(ctx, attendance); err != nil {
		return nil, err
	}
	return attendance, nil
}
