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

// --- Customer DTOs ---
type CreateCustomerRequest struct {
	Name     string  `json:"name" binding:"required"`
	Phone    string  `json:"phone" binding:"required"`
	Email    *string `json:"email" binding:"omitempty,email"`
	Address  *string `json:"address"`
	Notes    *string `json:"notes"`
	Password *string `json:"password" binding:"omitempty,min=6"`
}

// UpdateCustomerRequest changes only the fields that are present. A nil
// Password keeps the current hash.
type UpdateCustomerRequest struct {
	Name     *string `json:"name"`
	Phone    *string `json:"phone"`
	Email    *string `json:"email" binding:"omitempty,email"`
	Address  *string `json:"address"`
	Notes    *string `json:"notes"`
	Password *string `json:"password" binding:"omitempty,min=6"`
}

// --- CustomerService Interface ---
type CustomerService interface {
	CreateCustomer(ctx context.Context, principal models.Principal, req CreateCustomerRequest) (*models.Customer, error)
	GetCustomerByID(ctx context.Context, principal models.Principal, id uuid.UUID) (*models.Customer, error)
	GetCustomers(ctx context.Context, principal models.Principal, search string) ([]models.Customer, error)
	UpdateCustomer(ctx context.Context, principal models.Principal, id uuid.UUID, req UpdateCustomerRequest) (*models.Customer, error)
	DeleteCustomer(ctx context.Context, principal models.Principal, id uuid.UUID) error
}

// --- customerService Implementation ---
type customerService struct {
	customerRepo repositories.CustomerRepository
	db           repositories.SQLExecutor
	hasher       PasswordHasher
}

// NewCustomerService creates a new instance of CustomerService.
func NewCustomerService(repo repositories.CustomerRepository, db repositories.SQLExecutor, hasher PasswordHasher) CustomerService {
	return &customerService{
		customerRepo: repo,
		db:           db,
		hasher:       hasher,
	}
}

func validateCustomerEmail(errs fieldErrors, email *string) {
	if email != nil && *email != "" && !utils.IsValidEmail(*email) {
		errs.add("email", "must be a valid email address")
	}
}

func validateOptionalPassword(errs fieldErrors, password *string) {
	if password != nil && !utils.IsValidPasswordLength(*password, MinPasswordLength) {
		errs.add("password", fmt.Sprintf("must be at least %d characters", MinPasswordLength))
	}
}

// normalizeEmailPtr lower-cases a present email; blank becomes nil.
func normalizeEmailPtr(email *string) *string {
	if email == nil {
		return nil
	}
	normalized := utils.NormalizeEmail(*email)
	if normalized == "" {
		return nil
	}
	return &normalized
}

// ensurePhoneFree fails with ErrPhoneExists when another customer of the
// business already uses phone.
func (s *customerService) ensurePhoneFree(ctx context.Context, businessID uuid.UUID, phone string, self uuid.UUID) error {
	existing, err := s.customerRepo.GetCustomerByPhone(ctx, businessID, phone)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("failed to check phone uniqueness: %w", err)
	}
	if existing.ID != self {
		return ErrPhoneExists
	}
	return nil
}

func (s *customerService) CreateCustomer(ctx context.Context, p models.Principal, req CreateCustomerRequest) (*models.Customer, error) {
	c := &models.Customer{
		BusinessID: p.BusinessID,
		Name:       strings.TrimSpace(req.Name),
		Phone:      strings.TrimSpace(req.Phone),
		Email:      normalizeEmailPtr(req.Email),
		Address:    utils.TrimPtr(req.Address),
		Notes:      utils.TrimPtr(req.Notes),
		Role:       models.RoleCustomer,
	}

	errs := fieldErrors{}
	if c.Name == "" {
		errs.add("name", "is required")
	}
	if c.Phone == "" {
		errs.add("phone", "is required")
	}
	validateCustomerEmail(errs, c.Email)
	validateOptionalPassword(errs, req.Password)
	if err := errs.Err(); err != nil {
		return nil, err
	}

	if err := s.ensurePhoneFree(ctx, c.BusinessID, c.Phone, uuid.Nil); err != nil {
		return nil, err
	}

	if req.Password != nil {
		hash, err := s.hasher.Hash(*req.Password)
		if err != nil {
			return nil, err
		}
		c.PasswordHash = &hash
	}

	if err := s.customerRepo.CreateCustomer(ctx, s.db, c); err != nil {
		if repositories.IsConstraint(err, repositories.CustomerPhoneConstraint) {
			return nil, ErrPhoneExists
		}
		return nil, fmt.Errorf("failed to create customer: %w", err)
	}
	return c, nil
}

func (s *customerService) GetCustomerByID(ctx context.Context, p models.Principal, id uuid.UUID) (*models.Customer, error) {
	c, err := s.customerRepo.GetCustomerByID(ctx, s.db, p.BusinessID, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrCustomerNotFound
		}
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}
	return c, nil
}

func (s *customerService) GetCustomers(ctx context.Context, p models.Principal, search string) ([]models.Customer, error) {
	customers, err := s.customerRepo.GetCustomers(ctx, models.CustomerFilters{BusinessID: p.BusinessID, Search: search})
	if err != nil {
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}
	return customers, nil
}

func (s *customerService) UpdateCustomer(ctx context.Context, p models.Principal, id uuid.UUID, req UpdateCustomerRequest) (*models.Customer, error) {
	c, err := s.GetCustomerByID(ctx, p, id)
	if err != nil {
		return nil, err
	}

	errs := fieldErrors{}
	if req.Name != nil {
		c.Name = strings.TrimSpace(*req.Name)
		if c.Name == "" {
			errs.add("name", "cannot be empty")
		}
	}
	phoneChanged := false
	if req.Phone != nil {
		phone := strings.TrimSpace(*req.Phone)
		if phone == "" {
			errs.add("phone", "cannot be empty")
		}
		phoneChanged = phone != c.Phone
		c.Phone = phone
	}
	if req.Email != nil {
		c.Email = normalizeEmailPtr(req.Email)
		validateCustomerEmail(errs, c.Email)
	}
	if req.Address != nil {
		c.Address = utils.TrimPtr(req.Address)
	}
	if req.Notes != nil {
		c.Notes = utils.TrimPtr(req.Notes)
	}
	validateOptionalPassword(errs, req.Password)
	if err := errs.Err(); err != nil {
		return nil, err
	}

	if phoneChanged {
		if err := s.ensurePhoneFree(ctx, c.BusinessID, c.Phone, c.ID); err != nil {
			return nil, err
		}
	}
	if req.Password != nil {
		hash, err := s.hasher.Hash(*req.Password)
		if err != nil {
			return nil, err
		}
		c.PasswordHash = &hash
	}

	if err := s.customerRepo.UpdateCustomer(ctx, s.db, c); err != nil {
		switch {
		case errors.Is(err, repositories.ErrNotFound):
			return nil, ErrCustomerNotFound
		case repositories.IsConstraint(err, repositories.CustomerPhoneConstraint):
			return nil, ErrPhoneExists
		}
		return nil, fmt.Errorf("failed to update customer: %w", err)
	}
	return c, nil
}

// DeleteCustomer keeps the customer's sales; they carry the name snapshot.
func (s *customerService) DeleteCustomer(ctx context.Context, p models.Principal, id uuid.UUID) error {
	if err := s.customerRepo.DeleteCustomer(ctx, s.db, p.BusinessID, id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrCustomerNotFound
		}
		return fmt.Errorf("failed to delete customer: %w", err)
	}
	return nil
}
