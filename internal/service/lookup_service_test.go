package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/colegioadm/colegio-api/internal/models"
	appErrors "github.com/colegioadm/colegio-api/pkg/errors"
)

type mockLookupRepo struct {
	roles       []models.Role
	schools     []models.SchoolOfOrigin
	listCalls   int
	createdName string
}

func (m *mockLookupRepo) ListRoles(ctx context.Context) ([]models.Role, error) {
	m.listCalls++
	return m.roles, nil
}

func (m *mockLookupRepo) ListRelationships(ctx context.Context) ([]models.Relationship, error) {
	return nil, nil
}

func (m *mockLookupRepo) ListSchools(ctx context.Context) ([]models.SchoolOfOrigin, error) {
	m.listCalls++
	return m.schools, nil
}

func (m *mockLookupRepo) ListPlaces(ctx context.Context) ([]models.Place, error) {
	return nil, nil
}

func (m *mockLookupRepo) ListIncidentTypes(ctx context.Context) ([]models.IncidentType, error) {
	return nil, nil
}

func (m *mockLookupRepo) CreateSchool(ctx context.Context, school *models.SchoolOfOrigin) error {
	school.ID = "sch-new"
	m.createdName = school.Name
	return nil
}

type memoryCache struct {
	entries map[string][]byte
	deleted []string
}

func (m *memoryCache) Get(ctx context.Context, key string, dest interface{}) error {
	raw, ok := m.entries[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *memoryCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if m.entries == nil {
		m.entries = make(map[string][]byte)
	}
	m.entries[key] = raw
	return nil
}

func (m *memoryCache) DeleteByPattern(ctx context.Context, pattern string) error {
	m.deleted = append(m.deleted, pattern)
	delete(m.entries, pattern)
	return nil
}

type mockCacheMetrics struct {
	hits   int
	misses int
}

func (m *mockCacheMetrics) RecordCacheOperation(hit bool, duration time.Duration) {
	if hit {
		m.hits++
	} else {
		m.misses++
	}
}

func TestLookupServiceRolesCacheAside(t *testing.T) {
	repo := &mockLookupRepo{roles: []models.Role{{ID: "r1", Name: "director"}}}
	cache := &memoryCache{}
	metrics := &mockCacheMetrics{}
	svc := NewLookupService(repo, cache, metrics, validator.New(), zap.NewNop(), time.Minute)

	roles, err := svc.Roles(context.Background())
	require.NoError(t, err)
	require.Len(t, roles, 1)
	assert.Equal(t, 1, repo.listCalls)
	assert.Equal(t, 1, metrics.misses)

	// Second read comes from cache.
	roles, err = svc.Roles(context.Background())
	require.NoError(t, err)
	require.Len(t, roles, 1)
	assert.Equal(t, "director", roles[0].Name)
	assert.Equal(t, 1, repo.listCalls)
	assert.Equal(t, 1, metrics.hits)
}

func TestLookupServiceWorksWithoutCache(t *testing.T) {
	repo := &mockLookupRepo{roles: []models.Role{{ID: "r1", Name: "rector"}}}
	svc := NewLookupService(repo, nil, nil, validator.New(), zap.NewNop(), time.Minute)

	roles, err := svc.Roles(context.Background())
	require.NoError(t, err)
	assert.Len(t, roles, 1)
}

func TestLookupServiceCreateSchoolInvalidatesCache(t *testing.T) {
	repo := &mockLookupRepo{}
	cache := &memoryCache{}
	svc := NewLookupService(repo, cache, nil, validator.New(), zap.NewNop(), time.Minute)

	// Warm the catalog cache first.
	_, err := svc.Schools(context.Background())
	require.NoError(t, err)
	assert.Contains(t, cache.entries, "lookup:schools")

	school, err := svc.CreateSchool(context.Background(), CreateSchoolRequest{Name: "Escuela 12"})
	require.NoError(t, err)
	assert.Equal(t, "sch-new", school.ID)
	assert.Equal(t, "Escuela 12", repo.createdName)
	assert.Contains(t, cache.deleted, "lookup:schools")
}

func TestLookupServiceCreateSchoolRequiresName(t *testing.T) {
	svc := NewLookupService(&mockLookupRepo{}, nil, nil, validator.New(), zap.NewNop(), time.Minute)

	_, err := svc.CreateSchool(context.Background(), CreateSchoolRequest{})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}
