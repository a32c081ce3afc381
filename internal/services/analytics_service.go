package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"bizflow_backend/internal/models"
	"bizflow_backend/internal/repositories"
)

const (
	defaultRevenueDays = 7
	maxRevenueDays     = 366
	defaultTopLimit    = 5
	maxTopLimit        = 100
)

// AnalyticsService serves the dashboard and the admin reports.
type AnalyticsService interface {
	// GetDashboard narrows revenue to the caller's own sales for staff and
	// leaves out expenses, profit and the customer/product counts.
	GetDashboard(ctx context.Context, principal models.Principal) (*models.DashboardSummary, error)
	// GetRevenueByPeriod buckets revenue over the trailing window. For
	// daily the window is days days, for weekly days weeks, for monthly
	// days months.
	GetRevenueByPeriod(ctx context.Context, principal models.Principal, period string, days int) ([]models.RevenueBucket, error)
	GetTopCustomers(ctx context.Context, principal models.Principal, limit int) ([]models.TopCustomer, error)
	GetTopProducts(ctx context.Context, principal models.Principal, limit int) ([]models.TopProduct, error)
	GetExpensesByCategory(ctx context.Context, principal models.Principal) ([]models.ExpenseCategoryTotal, error)
}

type analyticsService struct {
	repo repositories.AnalyticsRepository
	now  func() time.Time
}

// NewAnalyticsService creates a new instance of AnalyticsService. now may be
// nil, in which case time.Now is used.
func NewAnalyticsService(repo repositories.AnalyticsRepository, now func() time.Time) AnalyticsService {
	if now == nil {
		now = time.Now
	}
	return &analyticsService{repo: repo, now: now}
}

func (s *analyticsService) GetDashboard(ctx context.Context, p models.Principal) (*models.DashboardSummary, error) {
	now := s.now()
	todayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	createdBy, includeAdmin := DashboardScope(p)
	sales, err := s.repo.SalesWindow(ctx, p.BusinessID, createdBy, todayStart, monthStart)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate sales: %w", err)
	}

	summary := &models.DashboardSummary{
		Revenue: sales.MoneyWindow,
		Counts: models.DashboardCounts{
			Sales:      sales.SalesCount,
			SalesToday: sales.SalesToday,
		},
	}
	if !includeAdmin {
		return summary, nil
	}

	expenses, err := s.repo.ExpensesWindow(ctx, p.BusinessID, todayStart, monthStart)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate expenses: %w", err)
	}
	customers, err := s.repo.CountCustomers(ctx, p.BusinessID)
	if err != nil {
		return nil, fmt.Errorf("failed to count customers: %w", err)
	}
	products, err := s.repo.CountProducts(ctx, p.BusinessID)
	if err != nil {
		return nil, fmt.Errorf("failed to count products: %w", err)
	}

	summary.Expenses = expenses
	summary.Profit = &models.ProfitSummary{
		Total:     sales.Total.Sub(expenses.Total),
		ThisMonth: sales.ThisMonth.Sub(expenses.ThisMonth),
	}
	summary.Counts.Customers = &customers
	summary.Counts.Products = &products
	return summary, nil
}

func (s *analyticsService) GetRevenueByPeriod(ctx context.Context, p models.Principal, period string, days int) ([]models.RevenueBucket, error) {
	bucketing := models.RevenuePeriod(strings.ToLower(strings.TrimSpace(period)))
	if bucketing == "" {
		bucketing = models.PeriodDaily
	}
	if !bucketing.Valid() {
		return nil, invalidField("period", "must be one of daily, weekly, monthly")
	}
	if days <= 0 {
		days = defaultRevenueDays
	}
	if days > maxRevenueDays {
		days = maxRevenueDays
	}

	now := s.now()
	var since time.Time
	switch bucketing {
	case models.PeriodWeekly:
		since = now.AddDate(0, 0, -days*7)
	case models.PeriodMonthly:
		since = now.AddDate(0, -days, 0)
	default:
		since = now.AddDate(0, 0, -days)
	}

	buckets, err := s.repo.RevenueByPeriod(ctx, p.BusinessID, bucketing, since)
	if err != nil {
		return nil, fmt.Errorf("failed to load revenue: %w", err)
	}
	return buckets, nil
}

func clampTopLimit(limit int) int {
	if limit <= 0 {
		return defaultTopLimit
	}
	if limit > maxTopLimit {
		return maxTopLimit
	}
	return limit
}

func (s *analyticsService) GetTopCustomers(ctx context.Context, p models.Principal, limit int) ([]models.TopCustomer, error) {
	customers, err := s.repo.TopCustomers(ctx, p.BusinessID, clampTopLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to load top customers: %w", err)
	}
	return customers, nil
}

func (s *analyticsService) GetTopProducts(ctx context.Context, p models.Principal, limit int) ([]models.TopProduct, error) {
	products, err := s.repo.TopProducts(ctx, p.BusinessID, clampTopLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to load top products: %w", err)
	}
	return products, nil
}

func (s *analyticsService) GetExpensesByCategory(ctx context.Context, p models.Principal) ([]models.ExpenseCategoryTotal, error) {
	totals, err := s.repo.ExpensesByCategory(ctx, p.BusinessID)
	if err != nil {
		return nil, fmt.Errorf("failed to load expense breakdown: %w", err)
	}
	return totals, nil
}
