package repositories

import (
	"context"
	"fmt"
	"time"

	"bizflow_backend/internal/models"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// AnalyticsRepository runs the grouped-sum report queries. Every query is
// constrained to one business.
type AnalyticsRepository interface {
	// SalesWindow sums sales over all time, since todayStart and since
	// monthStart. createdBy, when set, restricts to one staff member's sales.
	SalesWindow(ctx context.Context, businessID uuid.UUID, createdBy *uuid.UUID, todayStart, monthStart time.Time) (*models.SalesWindow, error)
	ExpensesWindow(ctx context.Context, businessID uuid.UUID, todayStart, monthStart time.Time) (*models.MoneyWindow, error)
	CountCustomers(ctx context.Context, businessID uuid.UUID) (int, error)
	CountProducts(ctx context.Context, businessID uuid.UUID) (int, error)
	RevenueByPeriod(ctx context.Context, businessID uuid.UUID, period models.RevenuePeriod, since time.Time) ([]models.RevenueBucket, error)
	TopCustomers(ctx context.Context, businessID uuid.UUID, limit int) ([]models.TopCustomer, error)
	TopProducts(ctx context.Context, businessID uuid.UUID, limit int) ([]models.TopProduct, error)
	ExpensesByCategory(ctx context.Context, businessID uuid.UUID) ([]models.ExpenseCategoryTotal, error)
}

type analyticsRepository struct {
	db *sqlx.DB
}

// NewAnalyticsRepository creates a new instance of AnalyticsRepository.
func NewAnalyticsRepository(db *sqlx.DB) AnalyticsRepository {
	return &analyticsRepository{db: db}
}

func (r *analyticsRepository) SalesWindow(ctx context.Context, businessID uuid.UUID, createdBy *uuid.UUID, todayStart, monthStart time.Time) (*models.SalesWindow, error) {
	query := `SELECT
	            COALESCE(SUM(total_amount), 0) AS total,
	            COALESCE(SUM(total_amount) FILTER (WHERE created_at >= $2), 0) AS today,
	            COALESCE(SUM(total_amount) FILTER (WHERE created_at >= $3), 0) AS this_month,
	            COUNT(*) AS sales_count,
	            COUNT(*) FILTER (WHERE created_at >= $2) AS sales_today
	          FROM sales
	          WHERE business_id = $1`
	args := []interface{}{businessID, todayStart, monthStart}
	if createdBy != nil {
		query += ` AND created_by = $4`
		args = append(args, *createdBy)
	}

	var window models.SalesWindow
	if err := r.db.GetContext(ctx, &window, query, args...); err != nil {
		return nil, fmt.Errorf("%w: aggregating sales: %v", ErrDatabaseError, err)
	}
	return &window, nil
}

func (r *analyticsRepository) ExpensesWindow(ctx context.Context, businessID uuid.UUID, todayStart, monthStart time.Time) (*models.MoneyWindow, error) {
	query := `SELECT
	            COALESCE(SUM(amount), 0) AS total,
	            COALESCE(SUM(amount) FILTER (WHERE date >= $2), 0) AS today,
	            COALESCE(SUM(amount) FILTER (WHERE date >= $3), 0) AS this_month
	          FROM expenses
	          WHERE business_id = $1`
	var window models.MoneyWindow
	if err := r.db.GetContext(ctx, &window, query, businessID, todayStart, monthStart); err != nil {
		return nil, fmt.Errorf("%w: aggregating expenses: %v", ErrDatabaseError, err)
	}
	return &window, nil
}

func (r *analyticsRepository) CountCustomers(ctx context.Context, businessID uuid.UUID) (int, error) {
	var n int
	if err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM customers WHERE business_id = $1`, businessID); err != nil {
		return 0, fmt.Errorf("%w: counting customers: %v", ErrDatabaseError, err)
	}
	return n, nil
}

func (r *analyticsRepository) CountProducts(ctx context.Context, businessID uuid.UUID) (int, error) {
	var n int
	if err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM products WHERE business_id = $1`, businessID); err != nil {
		return 0, fmt.Errorf("%w: counting products: %v", ErrDatabaseError, err)
	}
	return n, nil
}

// periodLabels maps a bucketing to its to_char format. Weekly uses ISO weeks.
var periodLabels = map[models.RevenuePeriod]struct{ trunc, format string }{
	models.PeriodDaily:   {"day", "YYYY-MM-DD"},
	models.PeriodWeekly:  {"week", `IYYY-"W"IW`},
	models.PeriodMonthly: {"month", "YYYY-MM"},
}

// RevenueByPeriod buckets sales created since the given instant, oldest bucket first.
func (r *analyticsRepository) RevenueByPeriod(ctx context.Context, businessID uuid.UUID, period models.RevenuePeriod, since time.Time) ([]models.RevenueBucket, error) {
	label, ok := periodLabels[period]
	if !ok {
		return nil, fmt.Errorf("unknown revenue period %q", period)
	}
	// trunc and format come from the fixed table above, never from input.
	query := fmt.Sprintf(`SELECT
	            to_char(date_trunc('%s', created_at), '%s') AS period,
	            COALESCE(SUM(total_amount), 0) AS revenue,
	            COUNT(*) AS count
	          FROM sales
	          WHERE business_id = $1 AND created_at >= $2
	          GROUP BY date_trunc('%s', created_at)
	          ORDER BY date_trunc('%s', created_at) ASC`, label.trunc, label.format, label.trunc, label.trunc)

	buckets := []models.RevenueBucket{}
	if err := r.db.SelectContext(ctx, &buckets, query, businessID, since); err != nil {
		return nil, fmt.Errorf("%w: revenue by period: %v", ErrDatabaseError, err)
	}
	return buckets, nil
}

func (r *analyticsRepository) TopCustomers(ctx context.Context, businessID uuid.UUID, limit int) ([]models.TopCustomer, error) {
	query := `SELECT
	            customer_id,
	            (ARRAY_AGG(customer_name ORDER BY created_at ASC))[1] AS customer_name,
	            SUM(total_amount) AS total_spent,
	            COUNT(*) AS total_purchases
	          FROM sales
	          WHERE business_id = $1
	          GROUP BY customer_id
	          ORDER BY total_spent DESC
	          LIMIT $2`
	customers := []models.TopCustomer{}
	if err := r.db.SelectContext(ctx, &customers, query, businessID, limit); err != nil {
		return nil, fmt.Errorf("%w: top customers: %v", ErrDatabaseError, err)
	}
	return customers, nil
}

func (r *analyticsRepository) TopProducts(ctx context.Context, businessID uuid.UUID, limit int) ([]models.TopProduct, error) {
	query := `SELECT
	            si.product_id,
	            (ARRAY_AGG(si.product_name ORDER BY s.created_at ASC))[1] AS product_name,
	            SUM(si.subtotal) AS total_revenue,
	            SUM(si.quantity) AS total_quantity
	          FROM sale_items si
	          JOIN sales s ON s.id = si.sale_id
	          WHERE s.business_id = $1
	          GROUP BY si.product_id
	          ORDER BY total_revenue DESC
	          LIMIT $2`
	products := []models.TopProduct{}
	if err := r.db.SelectContext(ctx, &products, query, businessID, limit); err != nil {
		return nil, fmt.Errorf("%w: top products: %v", ErrDatabaseError, err)
	}
	return products, nil
}

func (r *analyticsRepository) ExpensesByCategory(ctx context.Context, businessID uuid.UUID) ([]models.ExpenseCategoryTotal, error) {
	query := `SELECT category, SUM(amount) AS total, COUNT(*) AS count
	          FROM expenses
	          WHERE business_id = $1
	          GROUP BY category
	          ORDER BY total DESC`
	totals := []models.ExpenseCategoryTotal{}
	if err := r.db.SelectContext(ctx, &totals, query, businessID); err != nil {
		return nil, fmt.Errorf("%w: expenses by category: %v", ErrDatabaseError, err)
	}
	return totals, nil
}
