package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/colegioadm/colegio-api/internal/models"
	appErrors "github.com/colegioadm/colegio-api/pkg/errors"
)

type identityCredentialRepository interface {
	FindByDNI(ctx context.Context, dni string) (*models.Credential, error)
	Create(ctx context.Context, cred *models.Credential) error
	UpdatePassword(ctx context.Context, dni, passwordHash string) error
	Delete(ctx context.Context, dni string) (bool, error)
	RevokeRefreshTokensByDNI(ctx context.Context, dni string) error
}

type identityEmployeeRepository interface {
	FindByDNI(ctx context.Context, dni string) (*models.EmployeeDetail, error)
	SetFirstLogin(ctx context.Context, dni string, firstLogin bool) error
}

type identityTutorRepository interface {
	FindByDNI(ctx context.Context, dni string) (*models.Tutor, error)
	SetFirstLogin(ctx context.Context, dni string, firstLogin bool) error
}

// IdentityConfig governs password rules for provisioned credentials.
type IdentityConfig struct {
	MinPasswordLength int
	BcryptCost        int
}

// IdentityService owns the credential lifecycle. Every employee and
// tutor gets exactly one credential keyed by DNI, provisioned with the
// DNI itself as the initial password.
type IdentityService struct {
	credentials identityCredentialRepository
	employees   identityEmployeeRepository
	tutors      identityTutorRepository
	logger      *zap.Logger
	config      IdentityConfig
}

// NewIdentityService constructs an IdentityService instance.
func NewIdentityService(credentials identityCredentialRepository, employees identityEmployeeRepository, tutors identityTutorRepository, logger *zap.Logger, config IdentityConfig) *IdentityService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.MinPasswordLength <= 0 {
		config.MinPasswordLength = 4
	}
	return &IdentityService{credentials: credentials, employees: employees, tutors: tutors, logger: logger, config: config}
}

// Provision ensures a credential exists for the DNI. Idempotent: an
// existing credential is left untouched, whichever variant created it
// first. New credentials use the DNI as the initial password and the
// owning person starts with first_login set.
func (s *IdentityService) Provision(ctx context.Context, dni string) error {
	_, err := s.credentials.FindByDNI(ctx, dni)
	if err == nil {
		return nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check credential")
	}

	hash, err := s.hashPassword(dni)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash initial password")
	}

	cred := &models.Credential{DNI: dni, PasswordHash: hash, Enabled: true}
	if err := s.credentials.Create(ctx, cred); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create credential")
	}

	s.logger.Info("credential provisioned", zap.String("dni", dni))
	return nil
}

// Revoke removes the credential for the DNI and kills its sessions.
// A missing credential is not an error.
func (s *IdentityService) Revoke(ctx context.Context, dni string) error {
	existed, err := s.credentials.Delete(ctx, dni)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete credential")
	}
	if !existed {
		return nil
	}

	if err := s.credentials.RevokeRefreshTokensByDNI(ctx, dni); err != nil {
		s.logger.Warn("failed to revoke refresh tokens", zap.String("dni", dni), zap.Error(err))
	}

	s.logger.Info("credential revoked", zap.String("dni", dni))
	return nil
}

// ResetPassword replaces the password for the DNI and clears the
// first_login flag on the owning person. The employee record is tried
// before the tutor record; when neither exists the flag update is a
// silent no-op.
func (s *IdentityService) ResetPassword(ctx context.Context, dni, newPassword string) error {
	if len(newPassword) < s.config.MinPasswordLength {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("password must be at least %d characters", s.config.MinPasswordLength))
	}

	hash, err := s.hashPassword(newPassword)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}

	if err := s.credentials.UpdatePassword(ctx, dni, hash); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "credential not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update password")
	}

	if err := s.employees.SetFirstLogin(ctx, dni, false); err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to clear first login flag")
		}
		if err := s.tutors.SetFirstLogin(ctx, dni, false); err != nil && !errors.Is(err, sql.ErrNoRows) {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to clear first login flag")
		}
	}

	return nil
}

// ResolveByDNI maps a DNI to the person owning it. Employees take
// priority over tutors; both tables may legitimately hold the same DNI.
func (s *IdentityService) ResolveByDNI(ctx context.Context, dni string) (*models.Person, error) {
	employee, err := s.employees.FindByDNI(ctx, dni)
	if err == nil {
		return &models.Person{
			Variant:    models.PersonEmployee,
			ID:         employee.ID,
			DNI:        employee.DNI,
			FirstName:  employee.FirstName,
			LastName:   employee.LastName,
			Role:       employee.RoleName,
			Status:     employee.Status,
			FirstLogin: employee.FirstLogin,
		}, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve employee")
	}

	tutor, err := s.tutors.FindByDNI(ctx, dni)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "no person owns this dni")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve tutor")
	}

	return &models.Person{
		Variant:    models.PersonTutor,
		ID:         tutor.ID,
		DNI:        tutor.DNI,
		FirstName:  tutor.FirstName,
		LastName:   tutor.LastName,
		Role:       models.TutorRole,
		Status:     tutor.Status,
		FirstLogin: tutor.FirstLogin,
	}, nil
}

func (s *IdentityService) hashPassword(password string) (string, error) {
	cost := s.config.BcryptCost
	if cost <= 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
