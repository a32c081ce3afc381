package services

import (
	"context"
	"errors"
	"fmt"

	"bizflow_backend/internal/models"
	"bizflow_backend/internal/rbac"
	"bizflow_backend/internal/repositories"

	"github.com/google/uuid"
)

// PrincipalResolver turns a token subject into the current principal.
type PrincipalResolver interface {
	ResolvePrincipal(ctx context.Context, id uuid.UUID) (*models.Principal, error)
}

type principalResolver struct {
	userRepo     repositories.UserRepository
	customerRepo repositories.CustomerRepository
}

// NewPrincipalResolver probes staff first, then customers.
func NewPrincipalResolver(userRepo repositories.UserRepository, customerRepo repositories.CustomerRepository) PrincipalResolver {
	return &principalResolver{userRepo: userRepo, customerRepo: customerRepo}
}

func (r *principalResolver) ResolvePrincipal(ctx context.Context, id uuid.UUID) (*models.Principal, error) {
	user, err := r.userRepo.FindUserByID(ctx, id)
	if err == nil {
		return staffPrincipal(user), nil
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		return nil, fmt.Errorf("resolving staff principal: %w", err)
	}

	customer, err := r.customerRepo.FindCustomerByID(ctx, id)
	if err == nil {
		return customerPrincipal(customer), nil
	}
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrPrincipalNotFound
	}
	return nil, fmt.Errorf("resolving customer principal: %w", err)
}

func staffPrincipal(u *models.User) *models.Principal {
	return &models.Principal{
		ID:         u.ID,
		BusinessID: u.BusinessID,
		Role:       rbac.NormalizeRole(u.Role),
		Kind:       models.PrincipalStaff,
		Name:       u.Name,
		Email:      u.Email,
	}
}

func customerPrincipal(c *models.Customer) *models.Principal {
	role := rbac.NormalizeRole(c.Role)
	if role == "" {
		role = models.RoleCustomer
	}
	p := &models.Principal{
		ID:         c.ID,
		BusinessID: c.BusinessID,
		Role:       role,
		Kind:       models.PrincipalCustomer,
		Name:       c.Name,
	}
	if c.Email != nil {
		p.Email = *c.Email
	}
	return p
}
