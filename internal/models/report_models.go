package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MoneyWindow is an amount over all time, today and the current month.
type MoneyWindow struct {
	Total     decimal.Decimal `json:"total" db:"total"`
	Today     decimal.Decimal `json:"today" db:"today"`
	ThisMonth decimal.Decimal `json:"this_month" db:"this_month"`
}

type ProfitSummary struct {
	Total     decimal.Decimal `json:"total"`
	ThisMonth decimal.Decimal `json:"this_month"`
}

// DashboardCounts omits customers/products for staff callers.
type DashboardCounts struct {
	Sales      int  `json:"sales"`
	SalesToday int  `json:"sales_today"`
	Customers  *int `json:"customers,omitempty"`
	Products   *int `json:"products,omitempty"`
}

// DashboardSummary is the role-scoped dashboard. Expenses and Profit are nil
// (and so absent from JSON) for staff callers.
type DashboardSummary struct {
	Revenue  MoneyWindow     `json:"revenue"`
	Expenses *MoneyWindow    `json:"expenses,omitempty"`
	Profit   *ProfitSummary  `json:"profit,omitempty"`
	Counts   DashboardCounts `json:"counts"`
}

// SalesWindow is the raw aggregate row behind the revenue part of the dashboard.
type SalesWindow struct {
	MoneyWindow
	SalesCount int `db:"sales_count"`
	SalesToday int `db:"sales_today"`
}

// RevenueBucket is one period of the revenue report. Period is YYYY-MM-DD,
// IYYY-"W"IW or YYYY-MM depending on the bucketing.
type RevenueBucket struct {
	Period  string          `json:"period" db:"period"`
	Revenue decimal.Decimal `json:"revenue" db:"revenue"`
	Count   int             `json:"count" db:"count"`
}

type TopCustomer struct {
	CustomerID     uuid.UUID       `json:"customer_id" db:"customer_id"`
	CustomerName   string          `json:"customer_name" db:"customer_name"`
	TotalSpent     decimal.Decimal `json:"total_spent" db:"total_spent"`
	TotalPurchases int             `json:"total_purchases" db:"total_purchases"`
}

type TopProduct struct {
	ProductID     uuid.UUID       `json:"product_id" db:"product_id"`
	ProductName   string          `json:"product_name" db:"product_name"`
	TotalRevenue  decimal.Decimal `json:"total_revenue" db:"total_revenue"`
	TotalQuantity int             `json:"total_quantity" db:"total_quantity"`
}

type ExpenseCategoryTotal struct {
	Category ExpenseCategory `json:"category" db:"category"`
	Total    decimal.Decimal `json:"total" db:"total"`
	Count    int             `json:"count" db:"count"`
}

// RevenuePeriod is the bucketing of the revenue report.
type RevenuePeriod string

const (
	PeriodDaily   RevenuePeriod = "daily"
	PeriodWeekly  RevenuePeriod = "weekly"
	PeriodMonthly RevenuePeriod = "monthly"
)

func (p RevenuePeriod) Valid() bool {
	switch p {
	case PeriodDaily, PeriodWeekly, PeriodMonthly:
		return true
	}
	return false
}
