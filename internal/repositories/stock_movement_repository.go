package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"bizflow_backend/internal/models"

	"github.com/google/uuid"
)

// StockMovementRepository is the append-only ledger of applied stock changes.
type StockMovementRepository interface {
	CreateMovement(ctx context.Context, executor SQLExecutor, movement *models.StockMovement) error
	GetMovementsByProduct(ctx context.Context, businessID, productID uuid.UUID, limit int) ([]models.StockMovement, error)
}

type stockMovementRepository struct {
	db *sql.DB
}

// NewStockMovementRepository creates a new instance of StockMovementRepository.
func NewStockMovementRepository(db *sql.DB) StockMovementRepository {
	return &stockMovementRepository{db: db}
}

func (r *stockMovementRepository) CreateMovement(ctx context.Context, executor SQLExecutor, m *models.StockMovement) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	query := `INSERT INTO stock_movements
	          (id, business_id, product_id, sale_id, staff_id, quantity_changed, reason, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := executor.ExecContext(ctx, query, m.ID, m.BusinessID, m.ProductID, m.SaleID, m.StaffID,
		m.QuantityChanged, m.Reason, m.CreatedAt)
	if err != nil {
		return mapWriteError(err, "creating stock movement")
	}
	return nil
}

// GetMovementsByProduct returns the newest movements first.
func (r *stockMovementRepository) GetMovementsByProduct(ctx context.Context, businessID, productID uuid.UUID, limit int) ([]models.StockMovement, error) {
	query := `SELECT id, business_id, product_id, sale_id, staff_id, quantity_changed, reason, created_at
	          FROM stock_movements
	          WHERE business_id = $1 AND product_id = $2
	          ORDER BY created_at DESC
	          LIMIT $3`
	rows, err := r.db.QueryContext(ctx, query, businessID, productID, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: querying stock movements: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	movements := []models.StockMovement{}
	for rows.Next() {
		var m models.StockMovement
		if err := rows.Scan(&m.ID, &m.BusinessID, &m.ProductID, &m.SaleID, &m.StaffID,
			&m.QuantityChanged, &m.Reason, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("%w: scanning stock movement: %v", ErrDatabaseError, err)
		}
		movements = append(movements, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating stock movement rows: %v", ErrDatabaseError, err)
	}
	return movements, nil
}
