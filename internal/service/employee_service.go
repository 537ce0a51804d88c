package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/colegioadm/colegio-api/internal/models"
	appErrors "github.com/colegioadm/colegio-api/pkg/errors"
)

type employeeRepository interface {
	List(ctx context.Context, filter models.EmployeeFilter) ([]models.EmployeeDetail, int, error)
	FindByID(ctx context.Context, id string) (*models.EmployeeDetail, error)
	FindByDNI(ctx context.Context, dni string) (*models.EmployeeDetail, error)
	Create(ctx context.Context, employee *models.Employee) error
	Update(ctx context.Context, employee *models.Employee) error
	Delete(ctx context.Context, id string) error
}

type credentialProvisioner interface {
	Provision(ctx context.Context, dni string) error
	Revoke(ctx context.Context, dni string) error
}

// CreateEmployeeRequest is the payload for registering a staff member.
type CreateEmployeeRequest struct {
	DNI       string `json:"dni" validate:"required,numeric"`
	FirstName string `json:"nombre" validate:"required"`
	LastName  string `json:"apellido" validate:"required"`
	Phone     string `json:"telefono,omitempty"`
	Email     string `json:"correo,omitempty" validate:"omitempty,email"`
	Gender    string `json:"genero,omitempty"`
	RoleID    string `json:"role_id" validate:"required"`
}

// UpdateEmployeeRequest is the payload for updating a staff member.
type UpdateEmployeeRequest struct {
	FirstName string         `json:"nombre" validate:"required"`
	LastName  string         `json:"apellido" validate:"required"`
	Phone     string         `json:"telefono,omitempty"`
	Email     string         `json:"correo,omitempty" validate:"omitempty,email"`
	Gender    string         `json:"genero,omitempty"`
	RoleID    string         `json:"role_id" validate:"required"`
	Status    *models.Status `json:"status,omitempty"`
}

// EmployeeService manages staff records. Creating an employee
// provisions a credential for its DNI; deleting one revokes it.
type EmployeeService struct {
	repo      employeeRepository
	identity  credentialProvisioner
	validator *validator.Validate
	logger    *zap.Logger
}

// NewEmployeeService constructs an EmployeeService instance.
func NewEmployeeService(repo employeeRepository, identity credentialProvisioner, validate *validator.Validate, logger *zap.Logger) *EmployeeService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &EmployeeService{repo: repo, identity: identity, validator: validate, logger: logger}
}

// List returns employees matching the filter with pagination metadata.
func (s *EmployeeService) List(ctx context.Context, filter models.EmployeeFilter) ([]models.EmployeeDetail, *models.Pagination, error) {
	employees, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list employees")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	return employees, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get returns an employee by identifier.
func (s *EmployeeService) Get(ctx context.Context, id string) (*models.EmployeeDetail, error) {
	employee, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "employee not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load employee")
	}
	return employee, nil
}

// GetByDNI returns an employee by DNI. Used as the availability check
// before registering a new staff member.
func (s *EmployeeService) GetByDNI(ctx context.Context, dni string) (*models.EmployeeDetail, error) {
	employee, err := s.repo.FindByDNI(ctx, dni)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "employee not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load employee")
	}
	return employee, nil
}

// Create registers an employee and provisions its credential. When
// provisioning fails the employee row is removed again so the two never
// diverge.
func (s *EmployeeService) Create(ctx context.Context, req CreateEmployeeRequest) (*models.EmployeeDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid employee payload")
	}

	if _, err := s.repo.FindByDNI(ctx, req.DNI); err == nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "employee dni already registered")
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check employee dni")
	}

	employee := &models.Employee{
		DNI:        req.DNI,
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		Phone:      req.Phone,
		Email:      req.Email,
		Gender:     req.Gender,
		RoleID:     req.RoleID,
		Status:     models.StatusActive,
		FirstLogin: true,
	}
	if err := s.repo.Create(ctx, employee); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create employee")
	}

	if err := s.identity.Provision(ctx, employee.DNI); err != nil {
		if delErr := s.repo.Delete(ctx, employee.ID); delErr != nil {
			s.logger.Error("failed to roll back employee after provisioning failure",
				zap.String("employee_id", employee.ID), zap.Error(delErr))
		}
		return nil, err
	}

	s.logger.Info("employee created", zap.String("employee_id", employee.ID))
	return s.Get(ctx, employee.ID)
}

// Update updates mutable fields of an employee.
func (s *EmployeeService) Update(ctx context.Context, id string, req UpdateEmployeeRequest) (*models.EmployeeDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid employee payload")
	}

	existing, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	employee := existing.Employee
	employee.FirstName = req.FirstName
	employee.LastName = req.LastName
	employee.Phone = req.Phone
	employee.Email = req.Email
	employee.Gender = req.Gender
	employee.RoleID = req.RoleID
	if req.Status != nil {
		employee.Status = *req.Status
	}

	if err := s.repo.Update(ctx, &employee); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update employee")
	}
	return s.Get(ctx, id)
}

// Delete removes an employee and revokes its credential. Revocation is
// non-fatal when the credential is already gone.
func (s *EmployeeService) Delete(ctx context.Context, id string) error {
	employee, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "employee not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete employee")
	}

	if err := s.identity.Revoke(ctx, employee.DNI); err != nil {
		s.logger.Warn("failed to revoke credential for deleted employee",
			zap.String("dni", employee.DNI), zap.Error(err))
	}

	s.logger.Info("employee deleted", zap.String("employee_id", id))
	return nil
}
