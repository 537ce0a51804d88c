package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/colegioadm/colegio-api/internal/models"
	appErrors "github.com/colegioadm/colegio-api/pkg/errors"
)

type mockCredentialRepo struct {
	credentials     map[string]*models.Credential
	created         []*models.Credential
	refreshTokens   map[string]*models.RefreshToken
	revokedDNIs     []string
	findErr         error
	createErr       error
	updateErr       error
	deleteErr       error
	revokeByDNIErr  error
	updatedPassword string
}

func (m *mockCredentialRepo) FindByDNI(ctx context.Context, dni string) (*models.Credential, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	cred, ok := m.credentials[dni]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return cred, nil
}

func (m *mockCredentialRepo) Create(ctx context.Context, cred *models.Credential) error {
	if m.createErr != nil {
		return m.createErr
	}
	if m.credentials == nil {
		m.credentials = make(map[string]*models.Credential)
	}
	m.credentials[cred.DNI] = cred
	m.created = append(m.created, cred)
	return nil
}

func (m *mockCredentialRepo) UpdatePassword(ctx context.Context, dni, passwordHash string) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	if _, ok := m.credentials[dni]; !ok {
		return sql.ErrNoRows
	}
	m.updatedPassword = passwordHash
	return nil
}

func (m *mockCredentialRepo) Delete(ctx context.Context, dni string) (bool, error) {
	if m.deleteErr != nil {
		return false, m.deleteErr
	}
	if _, ok := m.credentials[dni]; !ok {
		return false, nil
	}
	delete(m.credentials, dni)
	return true, nil
}

func (m *mockCredentialRepo) CreateRefreshToken(ctx context.Context, token *models.RefreshToken) error {
	if m.refreshTokens == nil {
		m.refreshTokens = make(map[string]*models.RefreshToken)
	}
	m.refreshTokens[token.Token] = token
	return nil
}

func (m *mockCredentialRepo) FindRefreshToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	rt, ok := m.refreshTokens[token]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return rt, nil
}

func (m *mockCredentialRepo) RevokeRefreshToken(ctx context.Context, id string, revokedAt time.Time) error {
	for _, token := range m.refreshTokens {
		if token.ID == id {
			token.Revoked = true
			token.RevokedAt = &revokedAt
		}
	}
	return nil
}

func (m *mockCredentialRepo) RevokeRefreshTokensByDNI(ctx context.Context, dni string) error {
	if m.revokeByDNIErr != nil {
		return m.revokeByDNIErr
	}
	m.revokedDNIs = append(m.revokedDNIs, dni)
	return nil
}

type mockEmployeeLookup struct {
	employee      *models.EmployeeDetail
	findErr       error
	setErr        error
	firstLoginSet []string
}

func (m *mockEmployeeLookup) FindByDNI(ctx context.Context, dni string) (*models.EmployeeDetail, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	if m.employee == nil || m.employee.DNI != dni {
		return nil, sql.ErrNoRows
	}
	return m.employee, nil
}

func (m *mockEmployeeLookup) SetFirstLogin(ctx context.Context, dni string, firstLogin bool) error {
	if m.setErr != nil {
		return m.setErr
	}
	if m.employee == nil || m.employee.DNI != dni {
		return sql.ErrNoRows
	}
	m.employee.FirstLogin = firstLogin
	m.firstLoginSet = append(m.firstLoginSet, dni)
	return nil
}

type mockTutorLookup struct {
	tutor         *models.Tutor
	findErr       error
	setErr        error
	firstLoginSet []string
}

func (m *mockTutorLookup) FindByDNI(ctx context.Context, dni string) (*models.Tutor, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	if m.tutor == nil || m.tutor.DNI != dni {
		return nil, sql.ErrNoRows
	}
	return m.tutor, nil
}

func (m *mockTutorLookup) SetFirstLogin(ctx context.Context, dni string, firstLogin bool) error {
	if m.setErr != nil {
		return m.setErr
	}
	if m.tutor == nil || m.tutor.DNI != dni {
		return sql.ErrNoRows
	}
	m.tutor.FirstLogin = firstLogin
	m.firstLoginSet = append(m.firstLoginSet, dni)
	return nil
}

func newIdentityService(creds *mockCredentialRepo, employees *mockEmployeeLookup, tutors *mockTutorLookup) *IdentityService {
	return NewIdentityService(creds, employees, tutors, zap.NewNop(), IdentityConfig{MinPasswordLength: 4, BcryptCost: bcrypt.MinCost})
}

func TestIdentityServiceProvisionUsesDNIAsPassword(t *testing.T) {
	creds := &mockCredentialRepo{}
	svc := newIdentityService(creds, &mockEmployeeLookup{}, &mockTutorLookup{})

	require.NoError(t, svc.Provision(context.Background(), "30123456"))
	require.Len(t, creds.created, 1)

	cred := creds.created[0]
	assert.Equal(t, "30123456", cred.DNI)
	assert.True(t, cred.Enabled)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(cred.PasswordHash), []byte("30123456")))
}

func TestIdentityServiceProvisionIdempotent(t *testing.T) {
	creds := &mockCredentialRepo{credentials: map[string]*models.Credential{
		"30123456": {DNI: "30123456", PasswordHash: "existing", Enabled: true},
	}}
	svc := newIdentityService(creds, &mockEmployeeLookup{}, &mockTutorLookup{})

	require.NoError(t, svc.Provision(context.Background(), "30123456"))
	assert.Empty(t, creds.created)
	assert.Equal(t, "existing", creds.credentials["30123456"].PasswordHash)
}

func TestIdentityServiceRevokeMissingCredential(t *testing.T) {
	creds := &mockCredentialRepo{}
	svc := newIdentityService(creds, &mockEmployeeLookup{}, &mockTutorLookup{})

	require.NoError(t, svc.Revoke(context.Background(), "404"))
	assert.Empty(t, creds.revokedDNIs)
}

func TestIdentityServiceRevokeKillsSessions(t *testing.T) {
	creds := &mockCredentialRepo{credentials: map[string]*models.Credential{
		"30123456": {DNI: "30123456"},
	}}
	svc := newIdentityService(creds, &mockEmployeeLookup{}, &mockTutorLookup{})

	require.NoError(t, svc.Revoke(context.Background(), "30123456"))
	assert.NotContains(t, creds.credentials, "30123456")
	assert.Equal(t, []string{"30123456"}, creds.revokedDNIs)
}

func TestIdentityServiceResetPasswordTooShort(t *testing.T) {
	creds := &mockCredentialRepo{credentials: map[string]*models.Credential{"30123456": {DNI: "30123456"}}}
	svc := newIdentityService(creds, &mockEmployeeLookup{}, &mockTutorLookup{})

	err := svc.ResetPassword(context.Background(), "30123456", "abc")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
	assert.Empty(t, creds.updatedPassword)
}

func TestIdentityServiceResetPasswordClearsEmployeeFirstLogin(t *testing.T) {
	creds := &mockCredentialRepo{credentials: map[string]*models.Credential{"30123456": {DNI: "30123456"}}}
	employees := &mockEmployeeLookup{employee: &models.EmployeeDetail{
		Employee: models.Employee{DNI: "30123456", FirstLogin: true},
	}}
	tutors := &mockTutorLookup{tutor: &models.Tutor{DNI: "30123456", FirstLogin: true}}
	svc := newIdentityService(creds, employees, tutors)

	require.NoError(t, svc.ResetPassword(context.Background(), "30123456", "newpass"))
	assert.NotEmpty(t, creds.updatedPassword)
	assert.False(t, employees.employee.FirstLogin)
	// The employee record wins; the tutor flag stays untouched.
	assert.True(t, tutors.tutor.FirstLogin)
	assert.Empty(t, tutors.firstLoginSet)
}

func TestIdentityServiceResetPasswordTutorFallback(t *testing.T) {
	creds := &mockCredentialRepo{credentials: map[string]*models.Credential{"40111222": {DNI: "40111222"}}}
	tutors := &mockTutorLookup{tutor: &models.Tutor{DNI: "40111222", FirstLogin: true}}
	svc := newIdentityService(creds, &mockEmployeeLookup{}, tutors)

	require.NoError(t, svc.ResetPassword(context.Background(), "40111222", "newpass"))
	assert.False(t, tutors.tutor.FirstLogin)
}

func TestIdentityServiceResetPasswordNoPersonIsSilent(t *testing.T) {
	creds := &mockCredentialRepo{credentials: map[string]*models.Credential{"50000000": {DNI: "50000000"}}}
	svc := newIdentityService(creds, &mockEmployeeLookup{}, &mockTutorLookup{})

	require.NoError(t, svc.ResetPassword(context.Background(), "50000000", "newpass"))
	assert.NotEmpty(t, creds.updatedPassword)
}

func TestIdentityServiceResetPasswordMissingCredential(t *testing.T) {
	svc := newIdentityService(&mockCredentialRepo{}, &mockEmployeeLookup{}, &mockTutorLookup{})

	err := svc.ResetPassword(context.Background(), "404", "newpass")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

func TestIdentityServiceResolveEmployeePriority(t *testing.T) {
	employees := &mockEmployeeLookup{employee: &models.EmployeeDetail{
		Employee: models.Employee{ID: "e1", DNI: "30123456", FirstName: "Maria", LastName: "Lopez", Status: models.StatusActive},
		RoleName: "director",
	}}
	tutors := &mockTutorLookup{tutor: &models.Tutor{ID: "t1", DNI: "30123456", Status: models.StatusActive}}
	svc := newIdentityService(&mockCredentialRepo{}, employees, tutors)

	person, err := svc.ResolveByDNI(context.Background(), "30123456")
	require.NoError(t, err)
	assert.Equal(t, models.PersonEmployee, person.Variant)
	assert.Equal(t, "e1", person.ID)
	assert.Equal(t, "director", person.Role)
}

func TestIdentityServiceResolveTutorFallback(t *testing.T) {
	tutors := &mockTutorLookup{tutor: &models.Tutor{ID: "t1", DNI: "40111222", FirstName: "Jose", Status: models.StatusActive}}
	svc := newIdentityService(&mockCredentialRepo{}, &mockEmployeeLookup{}, tutors)

	person, err := svc.ResolveByDNI(context.Background(), "40111222")
	require.NoError(t, err)
	assert.Equal(t, models.PersonTutor, person.Variant)
	assert.Equal(t, models.TutorRole, person.Role)
}

func TestIdentityServiceResolveNoPerson(t *testing.T) {
	svc := newIdentityService(&mockCredentialRepo{}, &mockEmployeeLookup{}, &mockTutorLookup{})

	_, err := svc.ResolveByDNI(context.Background(), "404")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}
