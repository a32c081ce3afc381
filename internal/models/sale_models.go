package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentStatus is derived from (amount_paid, total_amount) and never set directly.
type PaymentStatus string

const (
	PaymentPending PaymentStatus = "PENDING"
	PaymentPartial PaymentStatus = "PARTIAL"
	PaymentPaid    PaymentStatus = "PAID"
)

// Valid reports whether s is one of the three known statuses.
func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentPending, PaymentPartial, PaymentPaid:
		return true
	}
	return false
}

// DerivePaymentStatus is PAID once paid covers total, PARTIAL for any positive
// amount below that, PENDING otherwise.
func DerivePaymentStatus(amountPaid, totalAmount decimal.Decimal) PaymentStatus {
	switch {
	case amountPaid.GreaterThanOrEqual(totalAmount):
		return PaymentPaid
	case amountPaid.IsPositive():
		return PaymentPartial
	default:
		return PaymentPending
	}
}

// BalanceDue is total minus paid, floored at zero.
func BalanceDue(totalAmount, amountPaid decimal.Decimal) decimal.Decimal {
	balance := totalAmount.Sub(amountPaid)
	if balance.IsNegative() {
		return decimal.Zero
	}
	return balance
}

// SaleItem is a line of a sale. Name and price are captured at sale time.
type SaleItem struct {
	ProductID   uuid.UUID       `json:"product_id" db:"product_id"`
	ProductName string          `json:"product_name" db:"product_name"`
	Quantity    int             `json:"quantity" db:"quantity"`
	Price       decimal.Decimal `json:"price" db:"price"`
	Subtotal    decimal.Decimal `json:"subtotal" db:"subtotal"`
}

// NewSaleItem computes the subtotal from quantity and unit price.
func NewSaleItem(productID uuid.UUID, productName string, quantity int, price decimal.Decimal) SaleItem {
	return SaleItem{
		ProductID:   productID,
		ProductName: productName,
		Quantity:    quantity,
		Price:       price,
		Subtotal:    price.Mul(decimal.NewFromInt(int64(quantity))),
	}
}

// SumSubtotals adds up item subtotals exactly.
func SumSubtotals(items []SaleItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Subtotal)
	}
	return total
}

// Sale is a completed transaction with a customer. Items, customer and
// total are immutable once created; only payment fields change.
type Sale struct {
	ID            uuid.UUID       `json:"id" db:"id"`
	BusinessID    uuid.UUID       `json:"business_id" db:"business_id"`
	CustomerID    uuid.UUID       `json:"customer_id" db:"customer_id"`
	CustomerName  string          `json:"customer_name" db:"customer_name"`
	Items         []SaleItem      `json:"items"`
	TotalAmount   decimal.Decimal `json:"total_amount" db:"total_amount"`
	AmountPaid    decimal.Decimal `json:"amount_paid" db:"amount_paid"`
	BalanceAmount decimal.Decimal `json:"balance_amount" db:"balance_amount"`
	PaymentStatus PaymentStatus   `json:"payment_status" db:"payment_status"`
	PaymentMethod *string         `json:"payment_method,omitempty" db:"payment_method"`
	Notes         *string         `json:"notes,omitempty" db:"notes"`
	CreatedBy     uuid.UUID       `json:"created_by" db:"created_by"`
	CreatedByName *string         `json:"created_by_name,omitempty" db:"created_by_name"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at" db:"updated_at"`
}

// Recompute refreshes the derived balance and status from total and paid.
func (s *Sale) Recompute() {
	s.BalanceAmount = BalanceDue(s.TotalAmount, s.AmountPaid)
	s.PaymentStatus = DerivePaymentStatus(s.AmountPaid, s.TotalAmount)
}

// ApplyPayment adds delta to the cumulative amount paid.
func (s *Sale) ApplyPayment(delta decimal.Decimal) {
	s.AmountPaid = s.AmountPaid.Add(delta)
	s.Recompute()
}

// IsSettled reports a zero balance.
func (s *Sale) IsSettled() bool {
	return s.BalanceAmount.IsZero()
}

// SaleFilters are applied on top of the mandatory business filter.
type SaleFilters struct {
	BusinessID    uuid.UUID
	CustomerID    *uuid.UUID
	CreatedBy     *uuid.UUID
	PaymentStatus *PaymentStatus
	StartDate     *time.Time // inclusive
	EndDate       *time.Time // exclusive upper bound
}
