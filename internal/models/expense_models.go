package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ExpenseCategory string

const (
	ExpenseRent        ExpenseCategory = "RENT"
	ExpenseUtilities   ExpenseCategory = "UTILITIES"
	ExpenseInventory   ExpenseCategory = "INVENTORY"
	ExpenseSalary      ExpenseCategory = "SALARY"
	ExpenseMarketing   ExpenseCategory = "MARKETING"
	ExpenseMaintenance ExpenseCategory = "MAINTENANCE"
	ExpenseOther       ExpenseCategory = "OTHER"
)

// ExpenseCategories lists the closed set of categories.
var ExpenseCategories = []ExpenseCategory{
	ExpenseRent, ExpenseUtilities, ExpenseInventory, ExpenseSalary,
	ExpenseMarketing, ExpenseMaintenance, ExpenseOther,
}

func (c ExpenseCategory) Valid() bool {
	for _, known := range ExpenseCategories {
		if c == known {
			return true
		}
	}
	return false
}

type Expense struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	BusinessID  uuid.UUID       `json:"business_id" db:"business_id"`
	Category    ExpenseCategory `json:"category" db:"category"`
	Amount      decimal.Decimal `json:"amount" db:"amount"`
	Description string          `json:"description" db:"description"`
	Date        time.Time       `json:"date" db:"date"`
	Notes       *string         `json:"notes,omitempty" db:"notes"`
	CreatedBy   uuid.UUID       `json:"created_by" db:"created_by"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at" db:"updated_at"`
}

type ExpenseFilters struct {
	BusinessID uuid.UUID
	Category   *ExpenseCategory
	StartDate  *time.Time // inclusive
	EndDate    *time.Time // exclusive upper bound
}
