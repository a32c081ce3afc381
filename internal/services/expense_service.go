package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"bizflow_backend/internal/models"
	"bizflow_backend/internal/repositories"
	"bizflow_backend/pkg/utils"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// --- Expense DTOs ---
type CreateExpenseRequest struct {
	Category    models.ExpenseCategory `json:"category" binding:"required,expense_category"`
	Amount      decimal.Decimal        `json:"amount"`
	Description string                 `json:"description" binding:"required"`
	Date        string                 `json:"date"` // YYYY-MM-DD, defaults to now
	Notes       *string                `json:"notes"`
}

type UpdateExpenseRequest struct {
	Category    *models.ExpenseCategory `json:"category" binding:"omitempty,expense_category"`
	Amount      *decimal.Decimal        `json:"amount"`
	Description *string                 `json:"description"`
	Date        *string                 `json:"date"`
	Notes       *string                 `json:"notes"`
}

// ExpenseListParams holds raw query values; dates are YYYY-MM-DD and inclusive.
type ExpenseListParams struct {
	Category  string
	StartDate string
	EndDate   string
}

// --- ExpenseService Interface ---
type ExpenseService interface {
	CreateExpense(ctx context.Context, principal models.Principal, req CreateExpenseRequest) (*models.Expense, error)
	GetExpenseByID(ctx context.Context, principal models.Principal, id uuid.UUID) (*models.Expense, error)
	GetExpenses(ctx context.Context, principal models.Principal, params ExpenseListParams) ([]models.Expense, error)
	UpdateExpense(ctx context.Context, principal models.Principal, id uuid.UUID, req UpdateExpenseRequest) (*models.Expense, error)
	DeleteExpense(ctx context.Context, principal models.Principal, id uuid.UUID) error
}

// --- expenseService Implementation ---
type expenseService struct {
	expenseRepo repositories.ExpenseRepository
	db          repositories.SQLExecutor
}

// NewExpenseService creates a new instance of ExpenseService.
func NewExpenseService(repo repositories.ExpenseRepository, db repositories.SQLExecutor) ExpenseService {
	return &expenseService{expenseRepo: repo, db: db}
}

func validateExpense(e *models.Expense) error {
	errs := fieldErrors{}
	if !e.Category.Valid() {
		errs.add("category", "must be one of RENT, UTILITIES, INVENTORY, SALARY, MARKETING, MAINTENANCE, OTHER")
	}
	if e.Amount.IsNegative() {
		errs.add("amount", "must not be negative")
	} else if !models.IsWholeCents(e.Amount) {
		errs.add("amount", centsMessage)
	}
	if e.Description == "" {
		errs.add("description", "is required")
	}
	return errs.Err()
}

func parseExpenseDate(raw string) (time.Time, error) {
	d, err := utils.ParseOptionalDate(raw)
	if err != nil {
		return time.Time{}, invalidField("date", "must be a date in YYYY-MM-DD format")
	}
	if d == nil {
		return time.Time{}, nil
	}
	return *d, nil
}

func (s *expenseService) CreateExpense(ctx context.Context, p models.Principal, req CreateExpenseRequest) (*models.Expense, error) {
	date, err := parseExpenseDate(req.Date)
	if err != nil {
		return nil, err
	}
	e := &models.Expense{
		BusinessID:  p.BusinessID,
		Category:    models.ExpenseCategory(strings.ToUpper(strings.TrimSpace(string(req.Category)))),
		Amount:      req.Amount,
		Description: strings.TrimSpace(req.Description),
		Date:        date,
		Notes:       utils.TrimPtr(req.Notes),
		CreatedBy:   p.ID,
	}
	if err := validateExpense(e); err != nil {
		return nil, err
	}

	if err := s.expenseRepo.CreateExpense(ctx, s.db, e); err != nil {
		return nil, fmt.Errorf("failed to create expense: %w", err)
	}
	return e, nil
}

func (s *expenseService) GetExpenseByID(ctx context.Context, p models.Principal, id uuid.UUID) (*models.Expense, error) {
	e, err := s.expenseRepo.GetExpenseByID(ctx, p.BusinessID, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrExpenseNotFound
		}
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}
	return e, nil
}

func (s *expenseService) GetExpenses(ctx context.Context, p models.Principal, params ExpenseListParams) ([]models.Expense, error) {
	filters := models.ExpenseFilters{BusinessID: p.BusinessID}
	if raw := strings.TrimSpace(params.Category); raw != "" {
		category := models.ExpenseCategory(strings.ToUpper(raw))
		if !category.Valid() {
			return nil, invalidField("category", "unknown expense category")
		}
		filters.Category = &category
	}
	start, end, err := parseDateRange(params.StartDate, params.EndDate)
	if err != nil {
		return nil, err
	}
	filters.StartDate, filters.EndDate = start, end

	expenses, err := s.expenseRepo.GetExpenses(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	return expenses, nil
}

func (s *expenseService) UpdateExpense(ctx context.Context, p models.Principal, id uuid.UUID, req UpdateExpenseRequest) (*models.Expense, error) {
	e, err := s.GetExpenseByID(ctx, p, id)
	if err != nil {
		return nil, err
	}

	if req.Category != nil {
		e.Category = models.ExpenseCategory(strings.ToUpper(strings.TrimSpace(string(*req.Category))))
	}
	if req.Amount != nil {
		e.Amount = *req.Amount
	}
	if req.Description != nil {
		e.Description = strings.TrimSpace(*req.Description)
	}
	if req.Date != nil {
		date, err := parseExpenseDate(*req.Date)
		if err != nil {
			return nil, err
		}
		if !date.IsZero() {
			e.Date = date
		}
	}
	if req.Notes != nil {
		e.Notes = utils.TrimPtr(req.Notes)
	}
	if err := validateExpense(e); err != nil {
		return nil, err
	}

	if err := s.expenseRepo.UpdateExpense(ctx, s.db, e); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrExpenseNotFound
		}
		return nil, fmt.Errorf("failed to update expense: %w", err)
	}
	return e, nil
}

func (s *expenseService) DeleteExpense(ctx context.Context, p models.Principal, id uuid.UUID) error {
	if err := s.expenseRepo.DeleteExpense(ctx, s.db, p.BusinessID, id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrExpenseNotFound
		}
		return fmt.Errorf("failed to delete expense: %w", err)
	}
	return nil
}
