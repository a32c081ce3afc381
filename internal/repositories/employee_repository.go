package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"bizflow_backend/internal/models"

	"github.com/google/uuid"
)

// EmployeeRepository manages the STAFF users of one business. Admin
// accounts are never returned or touched through it.
type EmployeeRepository interface {
	GetEmployees(ctx context.Context, businessID uuid.UUID) ([]models.User, error)
	GetEmployeeByID(ctx context.Context, businessID, id uuid.UUID) (*models.User, error)
	UpdateEmployee(ctx context.Context, executor SQLExecutor, employee *models.User) error
	DeleteEmployee(ctx context.Context, executor SQLExecutor, businessID, id uuid.UUID) error
}

type employeeRepository struct {
	db *sql.DB
}

// NewEmployeeRepository creates a new instance of EmployeeRepository.
func NewEmployeeRepository(db *sql.DB) EmployeeRepository {
	return &employeeRepository{db: db}
}

// Legacy rows may carry a lower-case role, hence UPPER(role).
const staffRolePredicate = `UPPER(role) = 'STAFF'`

// GetEmployees lists staff newest first.
func (r *employeeRepository) GetEmployees(ctx context.Context, businessID uuid.UUID) ([]models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users
	          WHERE business_id = $1 AND ` + staffRolePredicate + `
	          ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query, businessID)
	if err != nil {
		return nil, fmt.Errorf("%w: querying employees: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	employees := []models.User{}
	for rows.Next() {
		var u models.User
		if err := scanUser(rows, &u); err != nil {
			return nil, fmt.Errorf("%w: scanning employee: %v", ErrDatabaseError, err)
		}
		employees = append(employees, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating employee rows: %v", ErrDatabaseError, err)
	}
	return employees, nil
}

func (r *employeeRepository) GetEmployeeByID(ctx context.Context, businessID, id uuid.UUID) (*models.User, error) {
	u := &models.User{}
	query := `SELECT ` + userColumns + ` FROM users
	          WHERE id = $1 AND business_id = $2 AND ` + staffRolePredicate
	if err := scanUser(r.db.QueryRowContext(ctx, query, id, businessID), u); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting employee %s: %v", ErrDatabaseError, id, err)
	}
	return u, nil
}

// UpdateEmployee writes name, email and password hash.
func (r *employeeRepository) UpdateEmployee(ctx context.Context, executor SQLExecutor, u *models.User) error {
	u.UpdatedAt = time.Now().UTC()
	query := `UPDATE users SET name = $1, email = $2, password_hash = $3, updated_at = $4
	          WHERE id = $5 AND business_id = $6 AND ` + staffRolePredicate
	result, err := executor.ExecContext(ctx, query, u.Name, u.Email, u.PasswordHash, u.UpdatedAt, u.ID, u.BusinessID)
	if err != nil {
		return mapWriteError(err, fmt.Sprintf("updating employee %s", u.ID))
	}
	return expectOneRow(result, "updating employee")
}

func (r *employeeRepository) DeleteEmployee(ctx context.Context, executor SQLExecutor, businessID, id uuid.UUID) error {
	query := `DELETE FROM users WHERE id = $1 AND business_id = $2 AND ` + staffRolePredicate
	result, err := executor.ExecContext(ctx, query, id, businessID)
	if err != nil {
		return mapWriteError(err, fmt.Sprintf("deleting employee %s", id))
	}
	return expectOneRow(result, "deleting employee")
}
