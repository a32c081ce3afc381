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
	"github.com/shopspring/decimal"
)

const (
	defaultMovementLimit = 50
	maxMovementLimit     = 500
)

// --- Product DTOs ---
type CreateProductRequest struct {
	Name          string          `json:"name" binding:"required"`
	Category      string          `json:"category" binding:"required"`
	Price         decimal.Decimal `json:"price"`
	StockQuantity int             `json:"stock_quantity" binding:"gte=0"`
	Unit          string          `json:"unit"`
	IsAvailable   *bool           `json:"is_available"`
	Description   *string         `json:"description"`
}

type UpdateProductRequest struct {
	Name          *string          `json:"name"`
	Category      *string          `json:"category"`
	Price         *decimal.Decimal `json:"price"`
	StockQuantity *int             `json:"stock_quantity" binding:"omitempty,gte=0"`
	Unit          *string          `json:"unit"`
	IsAvailable   *bool            `json:"is_available"`
	Description   *string          `json:"description"`
}

// AdjustStockRequest is a manual stock change. Reason defaults to "adjustment".
type AdjustStockRequest struct {
	QuantityChanged int    `json:"quantity_changed" binding:"required"`
	Reason          string `json:"reason"`
}

// ProductListParams are the optional listing filters.
type ProductListParams struct {
	Category      string
	Search        string
	AvailableOnly bool
}

// --- ProductService Interface ---
type ProductService interface {
	CreateProduct(ctx context.Context, principal models.Principal, req CreateProductRequest) (*models.Product, error)
	GetProductByID(ctx context.Context, principal models.Principal, id uuid.UUID) (*models.Product, error)
	GetProducts(ctx context.Context, principal models.Principal, params ProductListParams) ([]models.Product, error)
	UpdateProduct(ctx context.Context, principal models.Principal, id uuid.UUID, req UpdateProductRequest) (*models.Product, error)
	DeleteProduct(ctx context.Context, principal models.Principal, id uuid.UUID) error
	// GetStockMovements lists applied stock changes of one product, newest first.
	GetStockMovements(ctx context.Context, principal models.Principal, productID uuid.UUID, limit int) ([]models.StockMovement, error)
	// AdjustStock applies a manual stock change and records it as a movement.
	AdjustStock(ctx context.Context, principal models.Principal, productID uuid.UUID, req AdjustStockRequest) (*models.Product, error)
}

// --- productService Implementation ---
type productService struct {
	productRepo  repositories.ProductRepository
	movementRepo repositories.StockMovementRepository
	db           repositories.SQLExecutor
	tx           repositories.Transactor
}

// NewProductService creates a new instance of ProductService.
func NewProductService(productRepo repositories.ProductRepository, movementRepo repositories.StockMovementRepository, db repositories.SQLExecutor, tx repositories.Transactor) ProductService {
	return &productService{
		productRepo:  productRepo,
		movementRepo: movementRepo,
		db:           db,
		tx:           tx,
	}
}

func validateProduct(p *models.Product) error {
	errs := fieldErrors{}
	if p.Name == "" {
		errs.add("name", "is required")
	}
	if p.Category == "" {
		errs.add("category", "is required")
	}
	if p.Price.IsNegative() {
		errs.add("price", "must not be negative")
	} else if !models.IsWholeCents(p.Price) {
		errs.add("price", centsMessage)
	}
	if p.StockQuantity < 0 {
		errs.add("stock_quantity", "must not be negative")
	}
	return errs.Err()
}

func (s *productService) CreateProduct(ctx context.Context, principal models.Principal, req CreateProductRequest) (*models.Product, error) {
	p := &models.Product{
		BusinessID:    principal.BusinessID,
		Name:          strings.TrimSpace(req.Name),
		Category:      strings.TrimSpace(req.Category),
		Price:         req.Price,
		StockQuantity: req.StockQuantity,
		Unit:          strings.TrimSpace(req.Unit),
		IsAvailable:   true,
		Description:   utils.TrimPtr(req.Description),
	}
	if p.Unit == "" {
		p.Unit = models.DefaultProductUnit
	}
	if req.IsAvailable != nil {
		p.IsAvailable = *req.IsAvailable
	}
	if err := validateProduct(p); err != nil {
		return nil, err
	}

	if err := s.productRepo.CreateProduct(ctx, s.db, p); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	return p, nil
}

func (s *productService) GetProductByID(ctx context.Context, principal models.Principal, id uuid.UUID) (*models.Product, error) {
	p, err := s.productRepo.GetProductByID(ctx, s.db, principal.BusinessID, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return p, nil
}

func (s *productService) GetProducts(ctx context.Context, principal models.Principal, params ProductListParams) ([]models.Product, error) {
	products, err := s.productRepo.GetProducts(ctx, models.ProductFilters{
		BusinessID:    principal.BusinessID,
		Category:      params.Category,
		Search:        params.Search,
		AvailableOnly: params.AvailableOnly,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}

// UpdateProduct never writes stock_quantity unless the request sets it, so
// concurrent sale decrements are not overwritten. An explicit quantity is
// recorded as an adjustment movement.
func (s *productService) UpdateProduct(ctx context.Context, principal models.Principal, id uuid.UUID, req UpdateProductRequest) (*models.Product, error) {
	p, err := s.GetProductByID(ctx, principal, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		p.Name = strings.TrimSpace(*req.Name)
	}
	if req.Category != nil {
		p.Category = strings.TrimSpace(*req.Category)
	}
	if req.Price != nil {
		p.Price = *req.Price
	}
	if req.StockQuantity != nil {
		p.StockQuantity = *req.StockQuantity
	}
	if req.Unit != nil {
		if unit := strings.TrimSpace(*req.Unit); unit != "" {
			p.Unit = unit
		}
	}
	if req.IsAvailable != nil {
		p.IsAvailable = *req.IsAvailable
	}
	if req.Description != nil {
		p.Description = utils.TrimPtr(req.Description)
	}
	if err := validateProduct(p); err != nil {
		return nil, err
	}

	err = s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		if req.StockQuantity != nil {
			if err := s.setStock(ctx, exec, principal, id, *req.StockQuantity); err != nil {
				return err
			}
		}
		if err := s.productRepo.UpdateProduct(ctx, exec, p); err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return ErrProductNotFound
			}
			return fmt.Errorf("failed to update product: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (s *productService) setStock(ctx context.Context, exec repositories.SQLExecutor, principal models.Principal, id uuid.UUID, quantity int) error {
	previous, err := s.productRepo.SetStock(ctx, exec, principal.BusinessID, id, quantity)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrProductNotFound
		}
		return fmt.Errorf("failed to set stock: %w", err)
	}
	if previous == quantity {
		return nil
	}
	staffID := principal.ID
	movement := &models.StockMovement{
		BusinessID:      principal.BusinessID,
		ProductID:       id,
		StaffID:         &staffID,
		QuantityChanged: quantity - previous,
		Reason:          models.StockReasonAdjustment,
	}
	if err := s.movementRepo.CreateMovement(ctx, exec, movement); err != nil {
		return fmt.Errorf("failed to record stock movement: %w", err)
	}
	return nil
}

// DeleteProduct leaves past sales intact; their items hold a name snapshot.
func (s *productService) DeleteProduct(ctx context.Context, principal models.Principal, id uuid.UUID) error {
	if err := s.productRepo.DeleteProduct(ctx, s.db, principal.BusinessID, id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrProductNotFound
		}
		return fmt.Errorf("failed to delete product: %w", err)
	}
	return nil
}

func (s *productService) GetStockMovements(ctx context.Context, principal models.Principal, productID uuid.UUID, limit int) ([]models.StockMovement, error) {
	if _, err := s.GetProductByID(ctx, principal, productID); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultMovementLimit
	}
	if limit > maxMovementLimit {
		limit = maxMovementLimit
	}
	movements, err := s.movementRepo.GetMovementsByProduct(ctx, principal.BusinessID, productID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list stock movements: %w", err)
	}
	return movements, nil
}

func (s *productService) AdjustStock(ctx context.Context, principal models.Principal, productID uuid.UUID, req AdjustStockRequest) (*models.Product, error) {
	reason := strings.ToLower(strings.TrimSpace(req.Reason))
	if reason == "" {
		reason = models.StockReasonAdjustment
	}
	errs := fieldErrors{}
	if req.QuantityChanged == 0 {
		errs.add("quantity_changed", "must not be zero")
	}
	if !models.ValidManualStockReason(reason) {
		errs.add("reason", "must be one of restock, adjustment, damage, return")
	}
	if err := errs.Err(); err != nil {
		return nil, err
	}

	product, err := s.GetProductByID(ctx, principal, productID)
	if err != nil {
		return nil, err
	}

	err = s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		quantity, applied, err := s.productRepo.AdjustStock(ctx, exec, principal.BusinessID, productID, req.QuantityChanged)
		if err != nil {
			return fmt.Errorf("failed to adjust stock: %w", err)
		}
		if !applied {
			return ErrStockNegative
		}
		product.StockQuantity = quantity

		staffID := principal.ID
		movement := &models.StockMovement{
			BusinessID:      principal.BusinessID,
			ProductID:       productID,
			StaffID:         &staffID,
			QuantityChanged: req.QuantityChanged,
			Reason:          reason,
		}
		if err := s.movementRepo.CreateMovement(ctx, exec, movement); err != nil {
			return fmt.Errorf("failed to record stock movement: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	utils.LogInfo("Stock adjusted", map[string]interface{}{
		"product_id":       productID.String(),
		"quantity_changed": req.QuantityChanged,
		"reason":           reason,
		"stock_quantity":   product.StockQuantity,
	})
	return product, nil
}
