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

// --- Data Transfer Objects (DTOs) ---

// CreateSaleItemRequest is one line of a new sale. Price is the unit price
// agreed at the till, not the current catalog price.
type CreateSaleItemRequest struct {
	ProductID uuid.UUID       `json:"product_id"`
	Quantity  int             `json:"quantity" binding:"required,gt=0"`
	Price     decimal.Decimal `json:"price"`
}

type CreateSaleRequest struct {
	CustomerID    uuid.UUID               `json:"customer_id"`
	Items         []CreateSaleItemRequest `json:"items" binding:"required,min=1,dive"`
	AmountPaid    decimal.Decimal         `json:"amount_paid"`
	PaymentMethod *string                 `json:"payment_method"`
	Notes         *string                 `json:"notes"`
}

// UpdateSaleRequest applies a payment. AmountPaid is an increment added to
// what was already paid, not a new total.
type UpdateSaleRequest struct {
	AmountPaid    *decimal.Decimal `json:"amount_paid"`
	PaymentMethod *string          `json:"payment_method"`
	Notes         *string          `json:"notes"`
}

// --- SaleService Interface ---
type SaleService interface {
	CreateSale(ctx context.Context, principal models.Principal, req CreateSaleRequest) (*models.Sale, error)
	GetSaleByID(ctx context.Context, principal models.Principal, id uuid.UUID) (*models.Sale, error)
	GetSales(ctx context.Context, principal models.Principal, params SaleListParams) ([]models.Sale, error)
	UpdateSale(ctx context.Context, principal models.Principal, id uuid.UUID, req UpdateSaleRequest) (*models.Sale, error)
	// DeleteSale does not put sold quantities back into stock.
	DeleteSale(ctx context.Context, principal models.Principal, id uuid.UUID) error
}

// --- saleService Implementation ---
type saleService struct {
	saleRepo     repositories.SaleRepository
	customerRepo repositories.CustomerRepository
	productRepo  repositories.ProductRepository
	movementRepo repositories.StockMovementRepository
	tx           repositories.Transactor
}

// NewSaleService creates a new instance of SaleService.
func NewSaleService(
	saleRepo repositories.SaleRepository,
	customerRepo repositories.CustomerRepository,
	productRepo repositories.ProductRepository,
	movementRepo repositories.StockMovementRepository,
	tx repositories.Transactor,
) SaleService {
	return &saleService{
		saleRepo:     saleRepo,
		customerRepo: customerRepo,
		productRepo:  productRepo,
		movementRepo: movementRepo,
		tx:           tx,
	}
}

// productNotFound names the missing product so the caller can fix the request.
func productNotFound(id uuid.UUID) error {
	return newClassError(ErrNotFound, fmt.Sprintf("product not found: %s", id))
}

func (req CreateSaleRequest) validate() error {
	errs := fieldErrors{}
	if req.CustomerID == uuid.Nil {
		errs.add("customer_id", "is required")
	}
	if len(req.Items) == 0 {
		errs.add("items", "at least one item is required")
	}
	for i, item := range req.Items {
		prefix := fmt.Sprintf("items[%d]", i)
		if item.ProductID == uuid.Nil {
			errs.add(prefix+".product_id", "is required")
		}
		if item.Quantity <= 0 {
			errs.add(prefix+".quantity", "must be greater than 0")
		}
		if item.Price.IsNegative() {
			errs.add(prefix+".price", "must not be negative")
		} else if !models.IsWholeCents(item.Price) {
			errs.add(prefix+".price", centsMessage)
		}
	}
	if req.AmountPaid.IsNegative() {
		errs.add("amount_paid", "must not be negative")
	} else if !models.IsWholeCents(req.AmountPaid) {
		errs.add("amount_paid", centsMessage)
	}
	return errs.Err()
}

// CreateSale prices every item from the request, decrements stock where
// enough is on hand and stores the sale, all in one transaction. An item
// whose stock is insufficient is still sold; its stock is left unchanged.
func (s *saleService) CreateSale(ctx context.Context, p models.Principal, req CreateSaleRequest) (*models.Sale, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	sale := &models.Sale{
		ID:            uuid.New(),
		BusinessID:    p.BusinessID,
		CustomerID:    req.CustomerID,
		AmountPaid:    req.AmountPaid,
		PaymentMethod: utils.TrimPtr(req.PaymentMethod),
		Notes:         utils.TrimPtr(req.Notes),
		CreatedBy:     p.ID,
	}

	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		customer, err := s.customerRepo.GetCustomerByID(ctx, exec, p.BusinessID, req.CustomerID)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return ErrCustomerNotFound
			}
			return fmt.Errorf("failed to get customer: %w", err)
		}
		sale.CustomerName = customer.Name

		items := make([]models.SaleItem, 0, len(req.Items))
		for _, line := range req.Items {
			product, err := s.productRepo.GetProductByID(ctx, exec, p.BusinessID, line.ProductID)
			if err != nil {
				if errors.Is(err, repositories.ErrNotFound) {
					return productNotFound(line.ProductID)
				}
				return fmt.Errorf("failed to get product %s: %w", line.ProductID, err)
			}
			items = append(items, models.NewSaleItem(product.ID, product.Name, line.Quantity, line.Price))

			if err := s.decrementStock(ctx, exec, p, sale.ID, product, line.Quantity); err != nil {
				return err
			}
		}

		sale.Items = items
		sale.TotalAmount = models.SumSubtotals(items)
		sale.Recompute()

		if err := s.saleRepo.CreateSale(ctx, exec, sale); err != nil {
			return fmt.Errorf("failed to create sale: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sale.CreatedByName = &p.Name
	utils.LogInfo("Sale created", map[string]interface{}{
		"sale_id":        sale.ID.String(),
		"business_id":    sale.BusinessID.String(),
		"total_amount":   sale.TotalAmount.String(),
		"payment_status": string(sale.PaymentStatus),
	})
	return sale, nil
}

// decrementStock applies the conditional decrement and records the movement.
func (s *saleService) decrementStock(ctx context.Context, exec repositories.SQLExecutor, p models.Principal, saleID uuid.UUID, product *models.Product, quantity int) error {
	applied, err := s.productRepo.DecrementStock(ctx, exec, p.BusinessID, product.ID, quantity)
	if err != nil {
		return fmt.Errorf("failed to decrement stock: %w", err)
	}
	if !applied {
		utils.LogWarn("Insufficient stock, decrement skipped", map[string]interface{}{
			"product_id": product.ID.String(),
			"sale_id":    saleID.String(),
			"requested":  quantity,
		})
		return nil
	}

	staffID := p.ID
	movement := &models.StockMovement{
		BusinessID:      p.BusinessID,
		ProductID:       product.ID,
		SaleID:          &saleID,
		StaffID:         &staffID,
		QuantityChanged: -quantity,
		Reason:          models.StockReasonSale,
	}
	if err := s.movementRepo.CreateMovement(ctx, exec, movement); err != nil {
		return fmt.Errorf("failed to record stock movement: %w", err)
	}
	return nil
}

// GetSaleByID hides other customers' sales from a customer caller.
func (s *saleService) GetSaleByID(ctx context.Context, p models.Principal, id uuid.UUID) (*models.Sale, error) {
	sale, err := s.saleRepo.GetSaleByID(ctx, p.BusinessID, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrSaleNotFound
		}
		return nil, fmt.Errorf("failed to get sale: %w", err)
	}
	if !CanViewSale(p, sale) {
		return nil, ErrSaleNotFound
	}
	return sale, nil
}

func (s *saleService) GetSales(ctx context.Context, p models.Principal, params SaleListParams) ([]models.Sale, error) {
	filters, err := SaleListScope(p, params)
	if err != nil {
		return nil, err
	}
	sales, err := s.saleRepo.GetSales(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list sales: %w", err)
	}
	return sales, nil
}

// UpdateSale adds a payment and/or changes payment method and notes. The
// row is locked so concurrent payments accumulate.
func (s *saleService) UpdateSale(ctx context.Context, p models.Principal, id uuid.UUID, req UpdateSaleRequest) (*models.Sale, error) {
	if req.AmountPaid != nil {
		if req.AmountPaid.IsNegative() {
			return nil, invalidField("amount_paid", "must not be negative")
		}
		if !models.IsWholeCents(*req.AmountPaid) {
			return nil, invalidField("amount_paid", centsMessage)
		}
	}

	var sale *models.Sale
	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		var err error
		sale, err = s.saleRepo.GetSaleForUpdate(ctx, exec, p.BusinessID, id)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return ErrSaleNotFound
			}
			return fmt.Errorf("failed to lock sale: %w", err)
		}

		if req.AmountPaid != nil {
			sale.ApplyPayment(*req.AmountPaid)
		}
		if req.PaymentMethod != nil {
			if method := strings.TrimSpace(*req.PaymentMethod); method != "" {
				sale.PaymentMethod = &method
			}
		}
		if req.Notes != nil {
			sale.Notes = utils.TrimPtr(req.Notes)
		}

		if err := s.saleRepo.UpdateSalePayment(ctx, exec, sale); err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return ErrSaleNotFound
			}
			return fmt.Errorf("failed to update sale: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return sale, nil
}

func (s *saleService) DeleteSale(ctx context.Context, p models.Principal, id uuid.UUID) error {
	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		return s.saleRepo.DeleteSale(ctx, exec, p.BusinessID, id)
	})
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrSaleNotFound
		}
		return fmt.Errorf("failed to delete sale: %w", err)
	}
	return nil
}
