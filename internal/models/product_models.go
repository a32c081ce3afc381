package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const DefaultProductUnit = "piece"

// Product is a catalog entry (good or service) of one business.
type Product struct {
	ID            uuid.UUID       `json:"id" db:"id"`
	BusinessID    uuid.UUID       `json:"business_id" db:"business_id"`
	Name          string          `json:"name" db:"name"`
	Category      string          `json:"category" db:"category"`
	Price         decimal.Decimal `json:"price" db:"price"`
	StockQuantity int             `json:"stock_quantity" db:"stock_quantity"`
	Unit          string          `json:"unit" db:"unit"`
	IsAvailable   bool            `json:"is_available" db:"is_available"`
	Description   *string         `json:"description,omitempty" db:"description"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at" db:"updated_at"`
}

// ProductFilters narrows product listings inside one business.
type ProductFilters struct {
	BusinessID    uuid.UUID
	Category      string
	Search        string
	AvailableOnly bool
}

// StockMovement records one applied stock change.
type StockMovement struct {
	ID              uuid.UUID  `json:"id" db:"id"`
	BusinessID      uuid.UUID  `json:"business_id" db:"business_id"`
	ProductID       uuid.UUID  `json:"product_id" db:"product_id"`
	SaleID          *uuid.UUID `json:"sale_id,omitempty" db:"sale_id"`
	StaffID         *uuid.UUID `json:"staff_id,omitempty" db:"staff_id"`
	QuantityChanged int        `json:"quantity_changed" db:"quantity_changed"`
	Reason          string     `json:"reason" db:"reason"`
	CreatedAt       time.Time  `json:"created_at" db:"created_at"`
}

// Movement reasons. Sales write StockReasonSale; manual changes use the others.
const (
	StockReasonSale       = "sale"
	StockReasonRestock    = "restock"
	StockReasonAdjustment = "adjustment"
	StockReasonDamage     = "damage"
	StockReasonReturn     = "return"
)

// ValidManualStockReason reports whether reason may be used for a manual adjustment.
func ValidManualStockReason(reason string) bool {
	switch reason {
	case StockReasonRestock, StockReasonAdjustment, StockReasonDamage, StockReasonReturn:
		return true
	}
	return false
}
