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

// ExpenseRepository persists business expenses.
type ExpenseRepository interface {
	CreateExpense(ctx context.Context, executor SQLExecutor, expense *models.Expense) error
	GetExpenseByID(ctx context.Context, businessID, id uuid.UUID) (*models.Expense, error)
	GetExpenses(ctx context.Context, filters models.ExpenseFilters) ([]models.Expense, error)
	UpdateExpense(ctx context.Context, executor SQLExecutor, expense *models.Expense) error
	DeleteExpense(ctx context.Context, executor SQLExecutor, businessID, id uuid.UUID) error
}

type expenseRepository struct {
	db *sql.DB
}

// NewExpenseRepository creates a new instance of ExpenseRepository.
func NewExpenseRepository(db *sql.DB) ExpenseRepository {
	return &expenseRepository{db: db}
}

const expenseColumns = `id, business_id, category, amount, description, date, notes, created_by, created_at, updated_at`

func scanExpense(row scanner, e *models.Expense) error {
	return row.Scan(&e.ID, &e.BusinessID, &e.Category, &e.Amount, &e.Description, &e.Date, &e.Notes,
		&e.CreatedBy, &e.CreatedAt, &e.UpdatedAt)
}

func (r *expenseRepository) CreateExpense(ctx context.Context, executor SQLExecutor, e *models.Expense) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	now := time.Now().UTC()
	if e.Date.IsZero() {
		e.Date = now
	}
	e.CreatedAt, e.UpdatedAt = now, now

	query := `INSERT INTO expenses (` + expenseColumns + `)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := executor.ExecContext(ctx, query, e.ID, e.BusinessID, e.Category, e.Amount, e.Description,
		e.Date, e.Notes, e.CreatedBy, e.CreatedAt, e.UpdatedAt)
	if err != nil {
		return mapWriteError(err, "creating expense")
	}
	return nil
}

func (r *expenseRepository) GetExpenseByID(ctx context.Context, businessID, id uuid.UUID) (*models.Expense, error) {
	e := &models.Expense{}
	query := `SELECT ` + expenseColumns + ` FROM expenses WHERE id = $1 AND business_id = $2`
	if err := scanExpense(r.db.QueryRowContext(ctx, query, id, businessID), e); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting expense %s: %v", ErrDatabaseError, id, err)
	}
	return e, nil
}

// GetExpenses lists expenses by date, newest first.
func (r *expenseRepository) GetExpenses(ctx context.Context, f models.ExpenseFilters) ([]models.Expense, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT ` + expenseColumns + ` FROM expenses`)

	conditions := []string{"business_id = $1"}
	args := []interface{}{f.BusinessID}
	argCount := 2

	if f.Category != nil {
		conditions = append(conditions, fmt.Sprintf("category = $%d", argCount))
		args = append(args, *f.Category)
		argCount++
	}
	if f.StartDate != nil {
		conditions = append(conditions, fmt.Sprintf("date >= $%d", argCount))
		args = append(args, *f.StartDate)
		argCount++
	}
	if f.EndDate != nil {
		conditions = append(conditions, fmt.Sprintf("date < $%d", argCount))
		args = append(args, *f.EndDate)
	}

	queryBuilder.WriteString(" WHERE " + strings.Join(conditions, " AND "))
	queryBuilder.WriteString(" ORDER BY date DESC, created_at DESC")

	rows, err := r.db.QueryContext(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("%w: querying expenses: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	expenses := []models.Expense{}
	for rows.Next() {
		var e models.Expense
		if err := scanExpense(rows, &e); err != nil {
			return nil, fmt.Errorf("%w: scanning expense: %v", ErrDatabaseError, err)
		}
		expenses = append(expenses, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating expense rows: %v", ErrDatabaseError, err)
	}
	return expenses, nil
}

func (r *expenseRepository) UpdateExpense(ctx context.Context, executor SQLExecutor, e *models.Expense) error {
	e.UpdatedAt = time.Now().UTC()
	query := `UPDATE expenses SET
	            category = $1, amount = $2, description = $3, date = $4, notes = $5, updated_at = $6
	          WHERE id = $7 AND business_id = $8`
	result, err := executor.ExecContext(ctx, query, e.Category, e.Amount, e.Description, e.Date, e.Notes,
		e.UpdatedAt, e.ID, e.BusinessID)
	if err != nil {
		return mapWriteError(err, fmt.Sprintf("updating expense %s", e.ID))
	}
	return expectOneRow(result, "updating expense")
}

func (r *expenseRepository) DeleteExpense(ctx context.Context, executor SQLExecutor, businessID, id uuid.UUID) error {
	result, err := executor.ExecContext(ctx, `DELETE FROM expenses WHERE id = $1 AND business_id = $2`, id, businessID)
	if err != nil {
		return mapWriteError(err, fmt.Sprintf("deleting expense %s", id))
	}
	return expectOneRow(result, "deleting expense")
}
