package service

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/colegioadm/colegio-api/internal/models"
	appErrors "github.com/colegioadm/colegio-api/pkg/errors"
)

type lookupRepository interface {
	ListRoles(ctx context.Context) ([]models.Role, error)
	ListRelationships(ctx context.Context) ([]models.Relationship, error)
	ListSchools(ctx context.Context) ([]models.SchoolOfOrigin, error)
	ListPlaces(ctx context.Context) ([]models.Place, error)
	ListIncidentTypes(ctx context.Context) ([]models.IncidentType, error)
	CreateSchool(ctx context.Context, school *models.SchoolOfOrigin) error
}

type lookupCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

type cacheMetricsRecorder interface {
	RecordCacheOperation(hit bool, duration time.Duration)
}

// Cache keys for the lookup catalogs.
const (
	cacheKeyRoles         = "lookup:roles"
	cacheKeyRelationships = "lookup:relationships"
	cacheKeySchools       = "lookup:schools"
	cacheKeyPlaces        = "lookup:places"
	cacheKeyIncidentTypes = "lookup:incident_types"
)

// CreateSchoolRequest registers a new school of origin.
type CreateSchoolRequest struct {
	Number *int   `json:"nro_colegio_procedencia,omitempty"`
	Name   string `json:"nombre_colegio_procedencia" validate:"required"`
}

// LookupService serves reference catalogs through a cache-aside layer.
// The catalogs change rarely, so misses fall back to the database and
// repopulate Redis with a short TTL.
type LookupService struct {
	repo      lookupRepository
	cache     lookupCache
	metrics   cacheMetricsRecorder
	validator *validator.Validate
	logger    *zap.Logger
	ttl       time.Duration
}

// NewLookupService constructs a LookupService instance.
func NewLookupService(repo lookupRepository, cache lookupCache, metrics cacheMetricsRecorder, validate *validator.Validate, logger *zap.Logger, ttl time.Duration) *LookupService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &LookupService{repo: repo, cache: cache, metrics: metrics, validator: validate, logger: logger, ttl: ttl}
}

// Roles returns the employee role catalog.
func (s *LookupService) Roles(ctx context.Context) ([]models.Role, error) {
	var roles []models.Role
	err := s.cached(ctx, cacheKeyRoles, &roles, func() (interface{}, error) {
		return s.repo.ListRoles(ctx)
	})
	return roles, err
}

// Relationships returns the tutor relationship catalog.
func (s *LookupService) Relationships(ctx context.Context) ([]models.Relationship, error) {
	var rels []models.Relationship
	err := s.cached(ctx, cacheKeyRelationships, &rels, func() (interface{}, error) {
		return s.repo.ListRelationships(ctx)
	})
	return rels, err
}

// Schools returns the schools-of-origin catalog.
func (s *LookupService) Schools(ctx context.Context) ([]models.SchoolOfOrigin, error) {
	var schools []models.SchoolOfOrigin
	err := s.cached(ctx, cacheKeySchools, &schools, func() (interface{}, error) {
		return s.repo.ListSchools(ctx)
	})
	return schools, err
}

// Places returns the incident place catalog.
func (s *LookupService) Places(ctx context.Context) ([]models.Place, error) {
	var places []models.Place
	err := s.cached(ctx, cacheKeyPlaces, &places, func() (interface{}, error) {
		return s.repo.ListPlaces(ctx)
	})
	return places, err
}

// IncidentTypes returns the incident type catalog.
func (s *LookupService) IncidentTypes(ctx context.Context) ([]models.IncidentType, error) {
	var types []models.IncidentType
	err := s.cached(ctx, cacheKeyIncidentTypes, &types, func() (interface{}, error) {
		return s.repo.ListIncidentTypes(ctx)
	})
	return types, err
}

// CreateSchool registers a school of origin and invalidates the cached
// catalog.
func (s *LookupService) CreateSchool(ctx context.Context, req CreateSchoolRequest) (*models.SchoolOfOrigin, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid school payload")
	}

	school := &models.SchoolOfOrigin{Number: req.Number, Name: req.Name}
	if err := s.repo.CreateSchool(ctx, school); err != nil {
		var appErr *appErrors.Error
		if errors.As(err, &appErr) {
			return nil, err
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create school")
	}

	if s.cache != nil {
		if err := s.cache.DeleteByPattern(ctx, cacheKeySchools); err != nil {
			s.logger.Warn("failed to invalidate school catalog cache", zap.Error(err))
		}
	}
	return school, nil
}

func (s *LookupService) cached(ctx context.Context, key string, dest interface{}, load func() (interface{}, error)) error {
	if s.cache != nil {
		start := time.Now()
		err := s.cache.Get(ctx, key, dest)
		if err == nil {
			if s.metrics != nil {
				s.metrics.RecordCacheOperation(true, time.Since(start))
			}
			return nil
		}
		if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("lookup cache read failed", zap.String("key", key), zap.Error(err))
		}
		if s.metrics != nil {
			s.metrics.RecordCacheOperation(false, time.Since(start))
		}
	}

	value, err := load()
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load lookup catalog")
	}
	assign(dest, value)

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, value, s.ttl); err != nil {
			s.logger.Warn("lookup cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return nil
}

func assign(dest, value interface{}) {
	switch d := dest.(type) {
	case *[]models.Role:
		*d = value.([]models.Role)
	case *[]models.Relationship:
		*d = value.([]models.Relationship)
	case *[]models.SchoolOfOrigin:
		*d = value.([]models.SchoolOfOrigin)
	case *[]models.Place:
		*d = value.([]models.Place)
	case *[]models.IncidentType:
		*d = value.([]models.IncidentType)
	}
}
