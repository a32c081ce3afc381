package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"bizflow_backend/internal/models"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// SaleRepository persists sales and their line items.
type SaleRepository interface {
	// CreateSale inserts the sale row and all of its items.
	CreateSale(ctx context.Context, executor SQLExecutor, sale *models.Sale) error
	GetSaleByID(ctx context.Context, businessID, id uuid.UUID) (*models.Sale, error)
	// GetSaleForUpdate locks the sale row for the rest of the transaction.
	GetSaleForUpdate(ctx context.Context, executor SQLExecutor, businessID, id uuid.UUID) (*models.Sale, error)
	GetSales(ctx context.Context, filters models.SaleFilters) ([]models.Sale, error)
	UpdateSalePayment(ctx context.Context, executor SQLExecutor, sale *models.Sale) error
	DeleteSale(ctx context.Context, executor SQLExecutor, businessID, id uuid.UUID) error
}

type saleRepository struct {
	db *sql.DB
}

// NewSaleRepository creates a new instance of SaleRepository.
func NewSaleRepository(db *sql.DB) SaleRepository {
	return &saleRepository{db: db}
}

const saleSelect = `SELECT s.id, s.business_id, s.customer_id, s.customer_name, s.total_amount, s.amount_paid,
	       s.balance_amount, s.payment_status, s.payment_method, s.notes, s.created_by, u.name,
	       s.created_at, s.updated_at
	FROM sales s
	LEFT JOIN users u ON u.id = s.created_by`

// scanSale reads a row and recomputes the derived fields so stored drift never surfaces.
func scanSale(row scanner, s *models.Sale) error {
	if err := row.Scan(&s.ID, &s.BusinessID, &s.CustomerID, &s.CustomerName, &s.TotalAmount, &s.AmountPaid,
		&s.BalanceAmount, &s.PaymentStatus, &s.PaymentMethod, &s.Notes, &s.CreatedBy, &s.CreatedByName,
		&s.CreatedAt, &s.UpdatedAt); err != nil {
		return err
	}
	s.Recompute()
	return nil
}

func (r *saleRepository) CreateSale(ctx context.Context, executor SQLExecutor, s *models.Sale) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	now := time.Now().UTC()
	s.CreatedAt, s.UpdatedAt = now, now

	query := `INSERT INTO sales
	            (id, business_id, customer_id, customer_name, total_amount, amount_paid, balance_amount,
	             payment_status, payment_method, notes, created_by, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err := executor.ExecContext(ctx, query, s.ID, s.BusinessID, s.CustomerID, s.CustomerName,
		s.TotalAmount, s.AmountPaid, s.BalanceAmount, s.PaymentStatus, s.PaymentMethod, s.Notes,
		s.CreatedBy, s.CreatedAt, s.UpdatedAt)
	if err != nil {
		return mapWriteError(err, "creating sale")
	}

	itemQuery := `INSERT INTO sale_items (sale_id, position, product_id, product_name, quantity, price, subtotal)
	              VALUES ($1, $2, $3, $4, $5, $6, $7)`
	for i, item := range s.Items {
		if _, err := executor.ExecContext(ctx, itemQuery, s.ID, i, item.ProductID, item.ProductName,
			item.Quantity, item.Price, item.Subtotal); err != nil {
			return mapWriteError(err, fmt.Sprintf("creating sale item %d", i))
		}
	}
	return nil
}

func (r *saleRepository) GetSaleByID(ctx context.Context, businessID, id uuid.UUID) (*models.Sale, error) {
	return r.getSale(ctx, r.db, saleSelect+` WHERE s.id = $1 AND s.business_id = $2`, businessID, id)
}

func (r *saleRepository) GetSaleForUpdate(ctx context.Context, executor SQLExecutor, businessID, id uuid.UUID) (*models.Sale, error) {
	return r.getSale(ctx, executor, saleSelect+` WHERE s.id = $1 AND s.business_id = $2 FOR UPDATE OF s`, businessID, id)
}

func (r *saleRepository) getSale(ctx context.Context, executor SQLExecutor, query string, businessID, id uuid.UUID) (*models.Sale, error) {
	s := &models.Sale{}
	if err := scanSale(executor.QueryRowContext(ctx, query, id, businessID), s); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting sale %s: %v", ErrDatabaseError, id, err)
	}

	items, err := r.loadItems(ctx, executor, []uuid.UUID{s.ID})
	if err != nil {
		return nil, err
	}
	s.Items = items[s.ID]
	if s.Items == nil {
		s.Items = []models.SaleItem{}
	}
	return s, nil
}

// GetSales lists sales newest first, each with its items.
func (r *saleRepository) GetSales(ctx context.Context, f models.SaleFilters) ([]models.Sale, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(saleSelect)

	conditions := []string{"s.business_id = $1"}
	args := []interface{}{f.BusinessID}
	argCount := 2

	if f.CustomerID != nil {
		conditions = append(conditions, fmt.Sprintf("s.customer_id = $%d", argCount))
		args = append(args, *f.CustomerID)
		argCount++
	}
	if f.CreatedBy != nil {
		conditions = append(conditions, fmt.Sprintf("s.created_by = $%d", argCount))
		args = append(args, *f.CreatedBy)
		argCount++
	}
	if f.PaymentStatus != nil {
		conditions = append(conditions, fmt.Sprintf("s.payment_status = $%d", argCount))
		args = append(args, *f.PaymentStatus)
		argCount++
	}
	if f.StartDate != nil {
		conditions = append(conditions, fmt.Sprintf("s.created_at >= $%d", argCount))
		args = append(args, *f.StartDate)
		argCount++
	}
	if f.EndDate != nil {
		conditions = append(conditions, fmt.Sprintf("s.created_at < $%d", argCount))
		args = append(args, *f.EndDate)
	}

	queryBuilder.WriteString(" WHERE " + strings.Join(conditions, " AND "))
	queryBuilder.WriteString(" ORDER BY s.created_at DESC")

	rows, err := r.db.QueryContext(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("%w: querying sales: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	sales := []models.Sale{}
	ids := []uuid.UUID{}
	for rows.Next() {
		var s models.Sale
		if err := scanSale(rows, &s); err != nil {
			return nil, fmt.Errorf("%w: scanning sale: %v", ErrDatabaseError, err)
		}
		sales = append(sales, s)
		ids = append(ids, s.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating sale rows: %v", ErrDatabaseError, err)
	}
	if len(sales) == 0 {
		return sales, nil
	}

	items, err := r.loadItems(ctx, r.db, ids)
	if err != nil {
		return nil, err
	}
	for i := range sales {
		sales[i].Items = items[sales[i].ID]
		if sales[i].Items == nil {
			sales[i].Items = []models.SaleItem{}
		}
	}
	return sales, nil
}

// loadItems fetches the items of several sales in one round trip.
func (r *saleRepository) loadItems(ctx context.Context, executor SQLExecutor, saleIDs []uuid.UUID) (map[uuid.UUID][]models.SaleItem, error) {
	ids := make([]string, len(saleIDs))
	for i, id := range saleIDs {
		ids[i] = id.String()
	}

	query := `SELECT sale_id, product_id, product_name, quantity, price, subtotal
	          FROM sale_items
	          WHERE sale_id = ANY($1::uuid[])
	          ORDER BY sale_id, position`
	rows, err := executor.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("%w: querying sale items: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	items := make(map[uuid.UUID][]models.SaleItem, len(saleIDs))
	for rows.Next() {
		var saleID uuid.UUID
		var item models.SaleItem
		if err := rows.Scan(&saleID, &item.ProductID, &item.ProductName, &item.Quantity, &item.Price, &item.Subtotal); err != nil {
			return nil, fmt.Errorf("%w: scanning sale item: %v", ErrDatabaseError, err)
		}
		items[saleID] = append(items[saleID], item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating sale item rows: %v", ErrDatabaseError, err)
	}
	return items, nil
}

// UpdateSalePayment writes the payment-related fields only.
func (r *saleRepository) UpdateSalePayment(ctx context.Context, executor SQLExecutor, s *models.Sale) error {
	s.UpdatedAt = time.Now().UTC()
	query := `UPDATE sales SET
	            amount_paid = $1, balance_amount = $2, payment_status = $3, payment_method = $4, notes = $5, updated_at = $6
	          WHERE id = $7 AND business_id = $8`
	result, err := executor.ExecContext(ctx, query, s.AmountPaid, s.BalanceAmount, s.PaymentStatus,
		s.PaymentMethod, s.Notes, s.UpdatedAt, s.ID, s.BusinessID)
	if err != nil {
		return mapWriteError(err, fmt.Sprintf("updating sale %s", s.ID))
	}
	return expectOneRow(result, "updating sale")
}

// DeleteSale removes the sale; items go with it via ON DELETE CASCADE.
func (r *saleRepository) DeleteSale(ctx context.Context, executor SQLExecutor, businessID, id uuid.UUID) error {
	result, err := executor.ExecContext(ctx, `DELETE FROM sales WHERE id = $1 AND business_id = $2`, id, businessID)
	if err != nil {
		return mapWriteError(err, fmt.Sprintf("deleting sale %s", id))
	}
	return expectOneRow(result, "deleting sale")
}
