package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"bizflow_backend/internal/models"
	"bizflow_backend/internal/repositories"
	"bizflow_backend/pkg/utils"
)

// UpdateBusinessRequest changes the profile fields that are present.
// Blank optional fields are cleared.
type UpdateBusinessRequest struct {
	Name          *string `json:"name"`
	Category      *string `json:"category"`
	Email         *string `json:"email" binding:"omitempty,email"`
	Phone         *string `json:"phone"`
	Address       *string `json:"address"`
	GSTNumber     *string `json:"gst_number"`
	LicenseNumber *string `json:"license_number"`
	Description   *string `json:"description"`
	Website       *string `json:"website"`
}

type BusinessService interface {
	GetBusiness(ctx context.Context, principal models.Principal) (*models.Business, error)
	UpdateBusiness(ctx context.Context, principal models.Principal, req UpdateBusinessRequest) (*models.Business, error)
}

type businessService struct {
	businessRepo repositories.BusinessRepository
	db           repositories.SQLExecutor
}

// NewBusinessService creates a new instance of BusinessService.
func NewBusinessService(repo repositories.BusinessRepository, db repositories.SQLExecutor) BusinessService {
	return &businessService{businessRepo: repo, db: db}
}

func (s *businessService) GetBusiness(ctx context.Context, p models.Principal) (*models.Business, error) {
	b, err := s.businessRepo.GetBusinessByID(ctx, p.BusinessID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrBusinessNotFound
		}
		return nil, fmt.Errorf("failed to get business: %w", err)
	}
	return b, nil
}

func (s *businessService) UpdateBusiness(ctx context.Context, p models.Principal, req UpdateBusinessRequest) (*models.Business, error) {
	b, err := s.GetBusiness(ctx, p)
	if err != nil {
		return nil, err
	}

	errs := fieldErrors{}
	if req.Name != nil {
		b.Name = strings.TrimSpace(*req.Name)
		if b.Name == "" {
			errs.add("name", "cannot be empty")
		}
	}
	if req.Category != nil {
		b.Category = strings.TrimSpace(*req.Category)
		if b.Category == "" {
			errs.add("category", "cannot be empty")
		}
	}
	if req.Email != nil {
		b.Email = normalizeEmailPtr(req.Email)
		if b.Email != nil && !utils.IsValidEmail(*b.Email) {
			errs.add("email", "must be a valid email address")
		}
	}
	if err := errs.Err(); err != nil {
		return nil, err
	}

	for dst, src := range map[**string]*string{
		&b.Phone:         req.Phone,
		&b.Address:       req.Address,
		&b.GSTNumber:     req.GSTNumber,
		&b.LicenseNumber: req.LicenseNumber,
		&b.Description:   req.Description,
		&b.Website:       req.Website,
	} {
		if src != nil {
			*dst = utils.TrimPtr(src)
		}
	}

	if err := s.businessRepo.UpdateBusiness(ctx, s.db, b); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrBusinessNotFound
		}
		return nil, fmt.Errorf("failed to update business: %w", err)
	}
	return b, nil
}
