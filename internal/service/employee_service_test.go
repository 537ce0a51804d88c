package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/colegioadm/colegio-api/internal/models"
	appErrors "github.com/colegioadm/colegio-api/pkg/errors"
)

type mockEmployeeRepo struct {
	byID    map[string]*models.EmployeeDetail
	byDNI   map[string]*models.EmployeeDetail
	deleted []string
}

func (m *mockEmployeeRepo) List(ctx context.Context, filter models.EmployeeFilter) ([]models.EmployeeDetail, int, error) {
	var out []models.EmployeeDetail
	for _, e := range m.byID {
		out = append(out, *e)
	}
	return out, len(out), nil
}

func (m *mockEmployeeRepo) FindByID(ctx context.Context, id string) (*models.EmployeeDetail, error) {
	e, ok := m.byID[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return e, nil
}

func (m *mockEmployeeRepo) FindByDNI(ctx context.Context, dni string) (*models.EmployeeDetail, error) {
	e, ok := m.byDNI[dni]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return e, nil
}

func (m *mockEmployeeRepo) Create(ctx context.Context, employee *models.Employee) error {
	employee.ID = "e-new"
	detail := &models.EmployeeDetail{Employee: *employee, RoleName: "preceptor"}
	if m.byID == nil {
		m.byID = make(map[string]*models.EmployeeDetail)
	}
	if m.byDNI == nil {
		m.byDNI = make(map[string]*models.EmployeeDetail)
	}
	m.byID[employee.ID] = detail
	m.byDNI[employee.DNI] = detail
	return nil
}

func (m *mockEmployeeRepo) Update(ctx context.Context, employee *models.Employee) error {
	detail, ok := m.byID[employee.ID]
	if !ok {
		return sql.ErrNoRows
	}
	detail.Employee = *employee
	return nil
}

func (m *mockEmployeeRepo) Delete(ctx context.Context, id string) error {
	detail, ok := m.byID[id]
	if !ok {
		return sql.ErrNoRows
	}
	delete(m.byID, id)
	delete(m.byDNI, detail.DNI)
	m.deleted = append(m.deleted, id)
	return nil
}

type mockProvisioner struct {
	provisioned  []string
	revoked      []string
	provisionErr error
	revokeErr    error
}

func (m *mockProvisioner) Provision(ctx context.Context, dni string) error {
	if m.provisionErr != nil {
		return m.provisionErr
	}
	m.provisioned = append(m.provisioned, dni)
	return nil
}

func (m *mockProvisioner) Revoke(ctx context.Context, dni string) error {
	if m.revokeErr != nil {
		return m.revokeErr
	}
	m.revoked = append(m.revoked, dni)
	return nil
}

func TestEmployeeServiceCreateProvisionsCredential(t *testing.T) {
	repo := &mockEmployeeRepo{}
	identity := &mockProvisioner{}
	svc := NewEmployeeService(repo, identity, validator.New(), zap.NewNop())

	detail, err := svc.Create(context.Background(), CreateEmployeeRequest{
		DNI: "30123456", FirstName: "Maria", LastName: "Lopez", RoleID: "r1",
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusActive, detail.Status)
	assert.True(t, detail.FirstLogin)
	assert.Equal(t, []string{"30123456"}, identity.provisioned)
}

func TestEmployeeServiceCreateRollsBackOnProvisionFailure(t *testing.T) {
	repo := &mockEmployeeRepo{}
	identity := &mockProvisioner{provisionErr: errors.New("boom")}
	svc := NewEmployeeService(repo, identity, validator.New(), zap.NewNop())

	_, err := svc.Create(context.Background(), CreateEmployeeRequest{
		DNI: "30123456", FirstName: "Maria", LastName: "Lopez", RoleID: "r1",
	})
	require.Error(t, err)
	assert.Contains(t, repo.deleted, "e-new")
	assert.Empty(t, repo.byDNI)
}

func TestEmployeeServiceCreateDuplicateDNI(t *testing.T) {
	existing := &models.EmployeeDetail{Employee: models.Employee{ID: "e1", DNI: "30123456"}}
	repo := &mockEmployeeRepo{
		byID:  map[string]*models.EmployeeDetail{"e1": existing},
		byDNI: map[string]*models.EmployeeDetail{"30123456": existing},
	}
	svc := NewEmployeeService(repo, &mockProvisioner{}, validator.New(), zap.NewNop())

	_, err := svc.Create(context.Background(), CreateEmployeeRequest{
		DNI: "30123456", FirstName: "Maria", LastName: "Lopez", RoleID: "r1",
	})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
}

func TestEmployeeServiceDeleteRevokesCredential(t *testing.T) {
	existing := &models.EmployeeDetail{Employee: models.Employee{ID: "e1", DNI: "30123456"}}
	repo := &mockEmployeeRepo{
		byID:  map[string]*models.EmployeeDetail{"e1": existing},
		byDNI: map[string]*models.EmployeeDetail{"30123456": existing},
	}
	identity := &mockProvisioner{}
	svc := NewEmployeeService(repo, identity, validator.New(), zap.NewNop())

	require.NoError(t, svc.Delete(context.Background(), "e1"))
	assert.Equal(t, []string{"30123456"}, identity.revoked)
}

func TestEmployeeServiceDeleteSurvivesRevokeFailure(t *testing.T) {
	existing := &models.EmployeeDetail{Employee: models.Employee{ID: "e1", DNI: "30123456"}}
	repo := &mockEmployeeRepo{
		byID:  map[string]*models.EmployeeDetail{"e1": existing},
		byDNI: map[string]*models.EmployeeDetail{"30123456": existing},
	}
	identity := &mockProvisioner{revokeErr: errors.New("redis down")}
	svc := NewEmployeeService(repo, identity, validator.New(), zap.NewNop())

	require.NoError(t, svc.Delete(context.Background(), "e1"))
	assert.Contains(t, repo.deleted, "e1")
}

func TestEmployeeServiceGetMissing(t *testing.T) {
	svc := NewEmployeeService(&mockEmployeeRepo{}, &mockProvisioner{}, validator.New(), zap.NewNop())

	_, err := svc.Get(context.Background(), "404")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}
