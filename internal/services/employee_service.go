package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"bizflow_backend/internal/models"
	"bizflow_backend/internal/repositories"
	"bizflow_backend/pkg/utils"

	"github.com/google/uuid"
)

// --- Employee DTOs ---
type CreateEmployeeRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

type UpdateEmployeeRequest struct {
	Name     *string `json:"name"`
	Email    *string `json:"email" binding:"omitempty,email"`
	Password *string `json:"password" binding:"omitempty,min=6"`
}

// --- EmployeeService Interface ---
// Employees are the STAFF users of the caller's business.
type EmployeeService interface {
	CreateEmployee(ctx context.Context, principal models.Principal, req CreateEmployeeRequest) (*models.User, error)
	GetEmployeeByID(ctx context.Context, principal models.Principal, id uuid.UUID) (*models.User, error)
	GetEmployees(ctx context.Context, principal models.Principal) ([]models.User, error)
	UpdateEmployee(ctx context.Context, principal models.Principal, id uuid.UUID, req UpdateEmployeeRequest) (*models.User, error)
	DeleteEmployee(ctx context.Context, principal models.Principal, id uuid.UUID) error
}

// --- employeeService Implementation ---
type employeeService struct {
	userRepo     repositories.UserRepository
	employeeRepo repositories.EmployeeRepository
	db           repositories.SQLExecutor
	hasher       PasswordHasher
}

// NewEmployeeService creates a new instance of EmployeeService.
func NewEmployeeService(userRepo repositories.UserRepository, employeeRepo repositories.EmployeeRepository, db repositories.SQLExecutor, hasher PasswordHasher) EmployeeService {
	return &employeeService{
		userRepo:     userRepo,
		employeeRepo: employeeRepo,
		db:           db,
		hasher:       hasher,
	}
}

// ensureEmailFree checks the global staff email index.
func (s *employeeService) ensureEmailFree(ctx context.Context, email string, self uuid.UUID) error {
	existing, err := s.userRepo.FindUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("failed to check email uniqueness: %w", err)
	}
	if existing.ID != self {
		return ErrEmailExists
	}
	return nil
}

func (s *employeeService) CreateEmployee(ctx context.Context, p models.Principal, req CreateEmployeeRequest) (*models.User, error) {
	u := &models.User{
		Name:       strings.TrimSpace(req.Name),
		Email:      utils.NormalizeEmail(req.Email),
		Role:       models.RoleStaff,
		BusinessID: p.BusinessID,
	}

	errs := fieldErrors{}
	if u.Name == "" {
		errs.add("name", "is required")
	}
	if !utils.IsValidEmail(u.Email) {
		errs.add("email", "must be a valid email address")
	}
	if !utils.IsValidPasswordLength(req.Password, MinPasswordLength) {
		errs.add("password", fmt.Sprintf("must be at least %d characters", MinPasswordLength))
	}
	if err := errs.Err(); err != nil {
		return nil, err
	}

	if err := s.ensureEmailFree(ctx, u.Email, uuid.Nil); err != nil {
		return nil, err
	}
	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, err
	}
	u.PasswordHash = hash

	if err := s.userRepo.CreateUser(ctx, s.db, u); err != nil {
		if repositories.IsConstraint(err, repositories.UserEmailConstraint) {
			return nil, ErrEmailExists
		}
		return nil, fmt.Errorf("failed to create employee: %w", err)
	}
	return u, nil
}

func (s *employeeService) GetEmployeeByID(ctx context.Context, p models.Principal, id uuid.UUID) (*models.User, error) {
	u, err := s.employeeRepo.GetEmployeeByID(ctx, p.BusinessID, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrEmployeeNotFound
		}
		return nil, fmt.Errorf("failed to get employee: %w", err)
	}
	return u, nil
}

func (s *employeeService) GetEmployees(ctx context.Context, p models.Principal) ([]models.User, error) {
	employees, err := s.employeeRepo.GetEmployees(ctx, p.BusinessID)
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}
	return employees, nil
}

func (s *employeeService) UpdateEmployee(ctx context.Context, p models.Principal, id uuid.UUID, req UpdateEmployeeRequest) (*models.User, error) {
	u, err := s.GetEmployeeByID(ctx, p, id)
	if err != nil {
		return nil, err
	}

	errs := fieldErrors{}
	if req.Name != nil {
		u.Name = strings.TrimSpace(*req.Name)
		if u.Name == "" {
			errs.add("name", "cannot be empty")
		}
	}
	emailChanged := false
	if req.Email != nil {
		email := utils.NormalizeEmail(*req.Email)
		if !utils.IsValidEmail(email) {
			errs.add("email", "must be a valid email address")
		}
		emailChanged = email != u.Email
		u.Email = email
	}
	validateOptionalPassword(errs, req.Password)
	if err := errs.Err(); err != nil {
		return nil, err
	}

	if emailChanged {
		if err := s.ensureEmailFree(ctx, u.Email, u.ID); err != nil {
			return nil, err
		}
	}
	if req.Password != nil {
		hash, err := s.hasher.Hash(*req.Password)
		if err != nil {
			return nil, err
		}
		u.PasswordHash = hash
	}

	if err := s.employeeRepo.UpdateEmployee(ctx, s.db, u); err != nil {
		switch {
		case errors.Is(err, repositories.ErrNotFound):
			return nil, ErrEmployeeNotFound
		case repositories.IsConstraint(err, repositories.UserEmailConstraint):
			return nil, ErrEmailExists
		}
		return nil, fmt.Errorf("failed to update employee: %w", err)
	}
	return u, nil
}

func (s *employeeService) DeleteEmployee(ctx context.Context, p models.Principal, id uuid.UUID) error {
	if err := s.employeeRepo.DeleteEmployee(ctx, s.db, p.BusinessID, id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrEmployeeNotFound
		}
		return fmt.Errorf("failed to delete employee: %w", err)
	}
	return nil
}
