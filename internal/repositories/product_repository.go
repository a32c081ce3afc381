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
)

// ProductRepository persists the product catalog of each business.
type ProductRepository interface {
	CreateProduct(ctx context.Context, executor SQLExecutor, product *models.Product) error
	GetProductByID(ctx context.Context, executor SQLExecutor, businessID, id uuid.UUID) (*models.Product, error)
	GetProducts(ctx context.Context, filters models.ProductFilters) ([]models.Product, error)
	// UpdateProduct writes every catalog field except stock_quantity and
	// refreshes product.StockQuantity from the row.
	UpdateProduct(ctx context.Context, executor SQLExecutor, product *models.Product) error
	DeleteProduct(ctx context.Context, executor SQLExecutor, businessID, id uuid.UUID) error
	// DecrementStock lowers stock by quantity only when enough is on hand.
	// It reports false, with no error, when stock was insufficient.
	DecrementStock(ctx context.Context, executor SQLExecutor, businessID, id uuid.UUID, quantity int) (bool, error)
	// AdjustStock adds delta, which may be negative, and returns the new
	// quantity. It reports false, with no error, when the product is missing
	// or the result would drop below zero.
	AdjustStock(ctx context.Context, executor SQLExecutor, businessID, id uuid.UUID, delta int) (int, bool, error)
	// SetStock overwrites the quantity under a row lock and returns the
	// quantity it replaced.
	SetStock(ctx context.Context, executor SQLExecutor, businessID, id uuid.UUID, quantity int) (int, error)
}

type productRepository struct {
	db *sql.DB
}

// NewProductRepository creates a new instance of ProductRepository.
func NewProductRepository(db *sql.DB) ProductRepository {
	return &productRepository{db: db}
}

const productColumns = `id, business_id, name, category, price, stock_quantity, unit, is_available, description, created_at, updated_at`

func scanProduct(row scanner, p *models.Product) error {
	return row.Scan(&p.ID, &p.BusinessID, &p.Name, &p.Category, &p.Price, &p.StockQuantity, &p.Unit,
		&p.IsAvailable, &p.Description, &p.CreatedAt, &p.UpdatedAt)
}

func (r *productRepository) CreateProduct(ctx context.Context, executor SQLExecutor, p *models.Product) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.Unit == "" {
		p.Unit = models.DefaultProductUnit
	}
	now := time.Now().UTC()
	p.CreatedAt, p.UpdatedAt = now, now

	query := `INSERT INTO products (` + productColumns + `)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := executor.ExecContext(ctx, query, p.ID, p.BusinessID, p.Name, p.Category, p.Price, p.StockQuantity,
		p.Unit, p.IsAvailable, p.Description, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return mapWriteError(err, "creating product")
	}
	return nil
}

func (r *productRepository) GetProductByID(ctx context.Context, executor SQLExecutor, businessID, id uuid.UUID) (*models.Product, error) {
	p := &models.Product{}
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1 AND business_id = $2`
	if err := scanProduct(executor.QueryRowContext(ctx, query, id, businessID), p); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting product %s: %v", ErrDatabaseError, id, err)
	}
	return p, nil
}

// GetProducts lists products newest first.
func (r *productRepository) GetProducts(ctx context.Context, f models.ProductFilters) ([]models.Product, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT ` + productColumns + ` FROM products`)

	conditions := []string{"business_id = $1"}
	args := []interface{}{f.BusinessID}
	argCount := 2

	if c := strings.TrimSpace(f.Category); c != "" {
		conditions = append(conditions, fmt.Sprintf("category = $%d", argCount))
		args = append(args, c)
		argCount++
	}
	if term := strings.TrimSpace(f.Search); term != "" {
		conditions = append(conditions, fmt.Sprintf("(name ILIKE $%d OR COALESCE(description, '') ILIKE $%d)", argCount, argCount))
		args = append(args, containsPattern(term))
		argCount++
	}
	if f.AvailableOnly {
		conditions = append(conditions, "is_available = TRUE")
	}

	queryBuilder.WriteString(" WHERE " + strings.Join(conditions, " AND "))
	queryBuilder.WriteString(" ORDER BY created_at DESC")

	rows, err := r.db.QueryContext(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("%w: querying products: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	products := []models.Product{}
	for rows.Next() {
		var p models.Product
		if err := scanProduct(rows, &p); err != nil {
			return nil, fmt.Errorf("%w: scanning product: %v", ErrDatabaseError, err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating product rows: %v", ErrDatabaseError, err)
	}
	return products, nil
}

func (r *productRepository) UpdateProduct(ctx context.Context, executor SQLExecutor, p *models.Product) error {
	p.UpdatedAt = time.Now().UTC()
	query := `UPDATE products SET
	            name = $1, category = $2, price = $3, unit = $4,
	            is_available = $5, description = $6, updated_at = $7
	          WHERE id = $8 AND business_id = $9
	          RETURNING stock_quantity`
	err := executor.QueryRowContext(ctx, query, p.Name, p.Category, p.Price, p.Unit,
		p.IsAvailable, p.Description, p.UpdatedAt, p.ID, p.BusinessID).Scan(&p.StockQuantity)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return mapWriteError(err, fmt.Sprintf("updating product %s", p.ID))
	}
	return nil
}

func (r *productRepository) DeleteProduct(ctx context.Context, executor SQLExecutor, businessID, id uuid.UUID) error {
	result, err := executor.ExecContext(ctx, `DELETE FROM products WHERE id = $1 AND business_id = $2`, id, businessID)
	if err != nil {
		return mapWriteError(err, fmt.Sprintf("deleting product %s", id))
	}
	return expectOneRow(result, "deleting product")
}

func (r *productRepository) DecrementStock(ctx context.Context, executor SQLExecutor, businessID, id uuid.UUID, quantity int) (bool, error) {
	query := `UPDATE products
	          SET stock_quantity = stock_quantity - $1, updated_at = $2
	          WHERE id = $3 AND business_id = $4 AND stock_quantity >= $1`
	result, err := executor.ExecContext(ctx, query, quantity, time.Now().UTC(), id, businessID)
	if err != nil {
		return false, fmt.Errorf("%w: decrementing stock for product %s: %v", ErrDatabaseError, id, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%w: getting rows affected for stock decrement of product %s: %v", ErrDatabaseError, id, err)
	}
	return rowsAffected == 1, nil
}

func (r *productRepository) AdjustStock(ctx context.Context, executor SQLExecutor, businessID, id uuid.UUID, delta int) (int, bool, error) {
	query := `UPDATE products
	          SET stock_quantity = stock_quantity + $1, updated_at = $2
	          WHERE id = $3 AND business_id = $4 AND stock_quantity + $1 >= 0
	          RETURNING stock_quantity`
	var quantity int
	err := executor.QueryRowContext(ctx, query, delta, time.Now().UTC(), id, businessID).Scan(&quantity)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("%w: adjusting stock for product %s: %v", ErrDatabaseError, id, err)
	}
	return quantity, true, nil
}

func (r *productRepository) SetStock(ctx context.Context, executor SQLExecutor, businessID, id uuid.UUID, quantity int) (int, error) {
	query := `UPDATE products p
	          SET stock_quantity = $1, updated_at = $2
	          FROM (SELECT id, stock_quantity FROM products WHERE id = $3 AND business_id = $4 FOR UPDATE) prev
	          WHERE p.id = prev.id
	          RETURNING prev.stock_quantity`
	var previous int
	err := executor.QueryRowContext(ctx, query, quantity, time.Now().UTC(), id, businessID).Scan(&previous)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, mapWriteError(err, fmt.Sprintf("setting stock for product %s", id))
	}
	return previous, nil
}
