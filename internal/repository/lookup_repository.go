package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/colegioadm/colegio-api/internal/models"
	appErrors "github.com/colegioadm/colegio-api/pkg/errors"
)

// LookupRepository serves the small reference catalogs backing dropdown
// fields: roles, relationships, schools of origin, places and incident
// types.
type LookupRepository struct {
	db *sqlx.DB
}

// NewLookupRepository constructs a LookupRepository.
func NewLookupRepository(db *sqlx.DB) *LookupRepository {
	return &LookupRepository{db: db}
}

// ListRoles returns the employee role catalog.
func (r *LookupRepository) ListRoles(ctx context.Context) ([]models.Role, error) {
	var roles []models.Role
	if err := r.db.SelectContext(ctx, &roles, `SELECT id, name FROM roles ORDER BY name ASC`); err != nil {
		return nil, fmt.Errorf("list roles: %w", err)
	}
	return roles, nil
}

// ListRelationships returns the tutor relationship catalog.
func (r *LookupRepository) ListRelationships(ctx context.Context) ([]models.Relationship, error) {
	var rels []models.Relationship
	if err := r.db.SelectContext(ctx, &rels, `SELECT id, name FROM parentescos ORDER BY name ASC`); err != nil {
		return nil, fmt.Errorf("list relationships: %w", err)
	}
	return rels, nil
}

// ListSchools returns the schools-of-origin catalog.
func (r *LookupRepository) ListSchools(ctx context.Context) ([]models.SchoolOfOrigin, error) {
	var schools []models.SchoolOfOrigin
	if err := r.db.SelectContext(ctx, &schools, `SELECT id, number, name FROM colegios ORDER BY name ASC`); err != nil {
		return nil, fmt.Errorf("list schools: %w", err)
	}
	return schools, nil
}

// ListPlaces returns the incident place catalog.
func (r *LookupRepository) ListPlaces(ctx context.Context) ([]models.Place, error) {
	var places []models.Place
	if err := r.db.SelectContext(ctx, &places, `SELECT id, name FROM lugares ORDER BY name ASC`); err != nil {
		return nil, fmt.Errorf("list places: %w", err)
	}
	return places, nil
}

// ListIncidentTypes returns the incident type catalog.
func (r *LookupRepository) ListIncidentTypes(ctx context.Context) ([]models.IncidentType, error) {
	var types []models.IncidentType
	if err := r.db.SelectContext(ctx, &types, `SELECT id, name FROM tipos_incidencia ORDER BY name ASC`); err != nil {
		return nil, fmt.Errorf("list incident types: %w", err)
	}
	return types, nil
}

// CreateSchool registers a new school of origin.
func (r *LookupRepository) CreateSchool(ctx context.Context, school *models.SchoolOfOrigin) error {
	if school.ID == "" {
		school.ID = uuid.NewString()
	}
	const query = `INSERT INTO colegios (id, number, name) VALUES (:id, :number, :name)`
	if _, err := r.db.NamedExecContext(ctx, query, school); err != nil {
		if isUniqueViolation(err) {
			return appErrors.Clone(appErrors.ErrConflict, "school already registered")
		}
		return fmt.Errorf("create school: %w", err)
	}
	return nil
}

// FindRoleByID returns a role by identifier.
func (r *LookupRepository) FindRoleByID(ctx context.Context, id string) (*models.Role, error) {
	var role models.Role
	if err := r.db.GetContext(ctx, &role, `SELECT id, name FROM roles WHERE id = $1 LIMIT 1`, id); err != nil {
		return nil, err
	}
	return &role, nil
}
