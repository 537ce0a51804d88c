package service

import (
	"context"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/colegioadm/colegio-api/internal/models"
	appErrors "github.com/colegioadm/colegio-api/pkg/errors"
)

type mockAuditRepo struct {
	logs []*models.AuditLog
}

func (m *mockAuditRepo) Create(ctx context.Context, log *models.AuditLog) error {
	m.logs = append(m.logs, log)
	return nil
}

func authTestConfig() AuthConfig {
	return AuthConfig{
		AccessTokenSecret:  "secret",
		AccessTokenExpiry:  time.Hour,
		RefreshTokenExpiry: 24 * time.Hour,
		Issuer:             "colegio-api",
	}
}

func hashFor(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func newAuthFixture(t *testing.T, creds *mockCredentialRepo, employees *mockEmployeeLookup, tutors *mockTutorLookup) (*AuthService, *mockAuditRepo) {
	t.Helper()
	identity := newIdentityService(creds, employees, tutors)
	audit := &mockAuditRepo{}
	svc := NewAuthService(creds, identity, audit, validator.New(), zap.NewNop(), authTestConfig())
	return svc, audit
}

func TestAuthServiceLoginEmployee(t *testing.T) {
	creds := &mockCredentialRepo{credentials: map[string]*models.Credential{
		"30123456": {DNI: "30123456", PasswordHash: hashFor(t, "30123456"), Enabled: true},
	}}
	employees := &mockEmployeeLookup{employee: &models.EmployeeDetail{
		Employee: models.Employee{ID: "e1", DNI: "30123456", FirstName: "Maria", LastName: "Lopez", Status: models.StatusActive, FirstLogin: true},
		RoleName: "director",
	}}
	svc, audit := newAuthFixture(t, creds, employees, &mockTutorLookup{})

	res, err := svc.Login(context.Background(), models.LoginRequest{DNI: "30123456", Password: "30123456"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.AccessToken)
	assert.NotEmpty(t, res.RefreshToken)
	assert.Equal(t, "director", res.Role)
	assert.True(t, res.FirstLogin)
	assert.Equal(t, FirstLoginMessage, res.Message)
	assert.NotEmpty(t, creds.refreshTokens)
	assert.Len(t, audit.logs, 1)

	claims, err := svc.ValidateToken(res.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "30123456", claims.DNI)
	assert.Equal(t, "director", claims.Role)
	assert.Equal(t, "Maria Lopez", claims.FullName)
}

func TestAuthServiceLoginTutorFallbackRole(t *testing.T) {
	creds := &mockCredentialRepo{credentials: map[string]*models.Credential{
		"40111222": {DNI: "40111222", PasswordHash: hashFor(t, "clave"), Enabled: true},
	}}
	tutors := &mockTutorLookup{tutor: &models.Tutor{ID: "t1", DNI: "40111222", FirstName: "Jose", Status: models.StatusActive}}
	svc, _ := newAuthFixture(t, creds, &mockEmployeeLookup{}, tutors)

	res, err := svc.Login(context.Background(), models.LoginRequest{DNI: "40111222", Password: "clave"})
	require.NoError(t, err)
	assert.Equal(t, models.TutorRole, res.Role)
	assert.False(t, res.FirstLogin)
	assert.Empty(t, res.Message)
}

func TestAuthServiceLoginWrongPassword(t *testing.T) {
	creds := &mockCredentialRepo{credentials: map[string]*models.Credential{
		"30123456": {DNI: "30123456", PasswordHash: hashFor(t, "correct"), Enabled: true},
	}}
	svc, _ := newAuthFixture(t, creds, &mockEmployeeLookup{}, &mockTutorLookup{})

	_, err := svc.Login(context.Background(), models.LoginRequest{DNI: "30123456", Password: "wrong"})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErr.Code)
}

func TestAuthServiceLoginUnknownDNI(t *testing.T) {
	svc, _ := newAuthFixture(t, &mockCredentialRepo{}, &mockEmployeeLookup{}, &mockTutorLookup{})

	_, err := svc.Login(context.Background(), models.LoginRequest{DNI: "99999999", Password: "pass"})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErr.Code)
}

func TestAuthServiceLoginDisabledCredential(t *testing.T) {
	creds := &mockCredentialRepo{credentials: map[string]*models.Credential{
		"30123456": {DNI: "30123456", PasswordHash: hashFor(t, "pass"), Enabled: false},
	}}
	svc, _ := newAuthFixture(t, creds, &mockEmployeeLookup{}, &mockTutorLookup{})

	_, err := svc.Login(context.Background(), models.LoginRequest{DNI: "30123456", Password: "pass"})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrAccountDisabled.Code, appErr.Code)
}

func TestAuthServiceLoginInactivePerson(t *testing.T) {
	creds := &mockCredentialRepo{credentials: map[string]*models.Credential{
		"30123456": {DNI: "30123456", PasswordHash: hashFor(t, "pass"), Enabled: true},
	}}
	employees := &mockEmployeeLookup{employee: &models.EmployeeDetail{
		Employee: models.Employee{ID: "e1", DNI: "30123456", Status: models.StatusInactive},
		RoleName: "preceptor",
	}}
	svc, _ := newAuthFixture(t, creds, employees, &mockTutorLookup{})

	_, err := svc.Login(context.Background(), models.LoginRequest{DNI: "30123456", Password: "pass"})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrAccountDisabled.Code, appErr.Code)
}

func TestAuthServiceLoginCredentialWithoutPerson(t *testing.T) {
	creds := &mockCredentialRepo{credentials: map[string]*models.Credential{
		"30123456": {DNI: "30123456", PasswordHash: hashFor(t, "pass"), Enabled: true},
	}}
	svc, _ := newAuthFixture(t, creds, &mockEmployeeLookup{}, &mockTutorLookup{})

	_, err := svc.Login(context.Background(), models.LoginRequest{DNI: "30123456", Password: "pass"})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

func TestAuthServiceCheckSessionRolelessFallback(t *testing.T) {
	svc, _ := newAuthFixture(t, &mockCredentialRepo{}, &mockEmployeeLookup{}, &mockTutorLookup{})

	info, err := svc.CheckSession(context.Background(), &models.JWTClaims{DNI: "30123456"})
	require.NoError(t, err)
	assert.Equal(t, "30123456", info.DNI)
	assert.Nil(t, info.Role)
	assert.Nil(t, info.PersonID)
}

func TestAuthServiceCheckSession(t *testing.T) {
	employees := &mockEmployeeLookup{employee: &models.EmployeeDetail{
		Employee: models.Employee{ID: "e1", DNI: "30123456", FirstName: "Maria", Status: models.StatusActive},
		RoleName: "secretario",
	}}
	svc, _ := newAuthFixture(t, &mockCredentialRepo{}, employees, &mockTutorLookup{})

	info, err := svc.CheckSession(context.Background(), &models.JWTClaims{DNI: "30123456"})
	require.NoError(t, err)
	require.NotNil(t, info.Role)
	assert.Equal(t, "secretario", *info.Role)
	require.NotNil(t, info.PersonID)
	assert.Equal(t, "e1", *info.PersonID)
}

func TestAuthServiceChangePasswordRevokesSessions(t *testing.T) {
	creds := &mockCredentialRepo{credentials: map[string]*models.Credential{
		"30123456": {DNI: "30123456", PasswordHash: hashFor(t, "30123456")},
	}}
	employees := &mockEmployeeLookup{employee: &models.EmployeeDetail{
		Employee: models.Employee{DNI: "30123456", FirstLogin: true, Status: models.StatusActive},
	}}
	svc, audit := newAuthFixture(t, creds, employees, &mockTutorLookup{})

	err := svc.ChangePassword(context.Background(), "30123456", models.ChangePasswordRequest{NewPassword: "nueva1234"})
	require.NoError(t, err)
	assert.NotEmpty(t, creds.updatedPassword)
	assert.False(t, employees.employee.FirstLogin)
	assert.Contains(t, creds.revokedDNIs, "30123456")
	assert.Len(t, audit.logs, 1)
}

func TestAuthServiceChangePasswordTooShort(t *testing.T) {
	creds := &mockCredentialRepo{credentials: map[string]*models.Credential{
		"30123456": {DNI: "30123456"},
	}}
	svc, _ := newAuthFixture(t, creds, &mockEmployeeLookup{}, &mockTutorLookup{})

	err := svc.ChangePassword(context.Background(), "30123456", models.ChangePasswordRequest{NewPassword: "abc"})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
	assert.Empty(t, creds.revokedDNIs)
}

func TestAuthServiceRefreshTokenRotation(t *testing.T) {
	creds := &mockCredentialRepo{refreshTokens: map[string]*models.RefreshToken{
		"old-token": {ID: "rt1", DNI: "30123456", Token: "old-token", ExpiresAt: time.Now().Add(time.Hour)},
	}}
	employees := &mockEmployeeLookup{employee: &models.EmployeeDetail{
		Employee: models.Employee{ID: "e1", DNI: "30123456", Status: models.StatusActive},
		RoleName: "director",
	}}
	svc, _ := newAuthFixture(t, creds, employees, &mockTutorLookup{})

	res, err := svc.RefreshToken(context.Background(), models.RefreshTokenRequest{RefreshToken: "old-token"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.AccessToken)
	assert.NotEqual(t, "old-token", res.RefreshToken)
	assert.True(t, creds.refreshTokens["old-token"].Revoked)
	assert.Contains(t, creds.refreshTokens, res.RefreshToken)
}

func TestAuthServiceRefreshTokenExpired(t *testing.T) {
	creds := &mockCredentialRepo{refreshTokens: map[string]*models.RefreshToken{
		"old-token": {ID: "rt1", DNI: "30123456", Token: "old-token", ExpiresAt: time.Now().Add(-time.Minute)},
	}}
	svc, _ := newAuthFixture(t, creds, &mockEmployeeLookup{}, &mockTutorLookup{})

	_, err := svc.RefreshToken(context.Background(), models.RefreshTokenRequest{RefreshToken: "old-token"})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErr.Code)
}

func TestAuthServiceLogoutForeignToken(t *testing.T) {
	creds := &mockCredentialRepo{refreshTokens: map[string]*models.RefreshToken{
		"token": {ID: "rt1", DNI: "30123456", Token: "token", ExpiresAt: time.Now().Add(time.Hour)},
	}}
	svc, _ := newAuthFixture(t, creds, &mockEmployeeLookup{}, &mockTutorLookup{})

	err := svc.Logout(context.Background(), "token", "99999999", models.LoginRequest{})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErr.Code)
	assert.False(t, creds.refreshTokens["token"].Revoked)
}

func TestAuthServiceLogout(t *testing.T) {
	creds := &mockCredentialRepo{refreshTokens: map[string]*models.RefreshToken{
		"token": {ID: "rt1", DNI: "30123456", Token: "token", ExpiresAt: time.Now().Add(time.Hour)},
	}}
	svc, audit := newAuthFixture(t, creds, &mockEmployeeLookup{}, &mockTutorLookup{})

	require.NoError(t, svc.Logout(context.Background(), "token", "30123456", models.LoginRequest{}))
	assert.True(t, creds.refreshTokens["token"].Revoked)
	assert.Len(t, audit.logs, 1)
}
