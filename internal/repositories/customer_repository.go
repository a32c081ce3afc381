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

// CustomerPhoneConstraint is the per-business unique index on phone.
const CustomerPhoneConstraint = "customers_business_phone_key"

// CustomerLookup selects portal login candidates. Exactly one of Email or
// Phone is expected; BusinessID narrows the search to one tenant.
type CustomerLookup struct {
	Email      string
	Phone      string
	BusinessID *uuid.UUID
}

// CustomerRepository is the customer credential store and CRM table.
type CustomerRepository interface {
	CreateCustomer(ctx context.Context, executor SQLExecutor, customer *models.Customer) error
	// FindCustomerByID looks across all businesses; it backs token resolution.
	FindCustomerByID(ctx context.Context, id uuid.UUID) (*models.Customer, error)
	GetCustomerByID(ctx context.Context, executor SQLExecutor, businessID, id uuid.UUID) (*models.Customer, error)
	GetCustomerByPhone(ctx context.Context, businessID uuid.UUID, phone string) (*models.Customer, error)
	// FindLoginCandidates returns customers with a password set, oldest first.
	FindLoginCandidates(ctx context.Context, lookup CustomerLookup) ([]models.Customer, error)
	// FindCustomerByEmail returns the oldest customer with that email in any business.
	FindCustomerByEmail(ctx context.Context, email string) (*models.Customer, error)
	GetCustomers(ctx context.Context, filters models.CustomerFilters) ([]models.Customer, error)
	UpdateCustomer(ctx context.Context, executor SQLExecutor, customer *models.Customer) error
	UpdatePasswordHash(ctx context.Context, executor SQLExecutor, id uuid.UUID, hash string) error
	DeleteCustomer(ctx context.Context, executor SQLExecutor, businessID, id uuid.UUID) error
}

type customerRepository struct {
	db *sql.DB
}

// NewCustomerRepository creates a new instance of CustomerRepository.
func NewCustomerRepository(db *sql.DB) CustomerRepository {
	return &customerRepository{db: db}
}

const customerColumns = `id, business_id, name, phone, email, address, notes, password_hash, role, created_at, updated_at`

func scanCustomer(row scanner, c *models.Customer) error {
	return row.Scan(&c.ID, &c.BusinessID, &c.Name, &c.Phone, &c.Email, &c.Address, &c.Notes,
		&c.PasswordHash, &c.Role, &c.CreatedAt, &c.UpdatedAt)
}

func (r *customerRepository) getOne(ctx context.Context, executor SQLExecutor, what, query string, args ...interface{}) (*models.Customer, error) {
	c := &models.Customer{}
	if err := scanCustomer(executor.QueryRowContext(ctx, query, args...), c); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting customer by %s: %v", ErrDatabaseError, what, err)
	}
	return c, nil
}

func (r *customerRepository) queryMany(ctx context.Context, query string, args ...interface{}) ([]models.Customer, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: querying customers: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	customers := []models.Customer{}
	for rows.Next() {
		var c models.Customer
		if err := scanCustomer(rows, &c); err != nil {
			return nil, fmt.Errorf("%w: scanning customer: %v", ErrDatabaseError, err)
		}
		customers = append(customers, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating customer rows: %v", ErrDatabaseError, err)
	}
	return customers, nil
}

// CreateCustomer inserts a new customer.
func (r *customerRepository) CreateCustomer(ctx context.Context, executor SQLExecutor, c *models.Customer) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.Role == "" {
		c.Role = models.RoleCustomer
	}
	now := time.Now().UTC()
	c.CreatedAt, c.UpdatedAt = now, now

	query := `INSERT INTO customers (` + customerColumns + `)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := executor.ExecContext(ctx, query, c.ID, c.BusinessID, c.Name, c.Phone, c.Email, c.Address,
		c.Notes, c.PasswordHash, c.Role, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return mapWriteError(err, "creating customer")
	}
	return nil
}

func (r *customerRepository) FindCustomerByID(ctx context.Context, id uuid.UUID) (*models.Customer, error) {
	return r.getOne(ctx, r.db, "id", `SELECT `+customerColumns+` FROM customers WHERE id = $1`, id)
}

func (r *customerRepository) GetCustomerByID(ctx context.Context, executor SQLExecutor, businessID, id uuid.UUID) (*models.Customer, error) {
	return r.getOne(ctx, executor, "id", `SELECT `+customerColumns+` FROM customers WHERE id = $1 AND business_id = $2`, id, businessID)
}

func (r *customerRepository) GetCustomerByPhone(ctx context.Context, businessID uuid.UUID, phone string) (*models.Customer, error) {
	return r.getOne(ctx, r.db, "phone", `SELECT `+customerColumns+` FROM customers WHERE business_id = $1 AND phone = $2`, businessID, phone)
}

func (r *customerRepository) FindCustomerByEmail(ctx context.Context, email string) (*models.Customer, error) {
	return r.getOne(ctx, r.db, "email", `SELECT `+customerColumns+` FROM customers WHERE email = LOWER($1) ORDER BY created_at ASC LIMIT 1`, email)
}

func (r *customerRepository) FindLoginCandidates(ctx context.Context, lookup CustomerLookup) ([]models.Customer, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT ` + customerColumns + ` FROM customers WHERE password_hash IS NOT NULL`)
	args := []interface{}{}
	argCount := 1

	if lookup.Email != "" {
		queryBuilder.WriteString(fmt.Sprintf(" AND email = LOWER($%d)", argCount))
		args = append(args, lookup.Email)
		argCount++
	} else {
		queryBuilder.WriteString(fmt.Sprintf(" AND phone = $%d", argCount))
		args = append(args, lookup.Phone)
		argCount++
	}
	if lookup.BusinessID != nil {
		queryBuilder.WriteString(fmt.Sprintf(" AND business_id = $%d", argCount))
		args = append(args, *lookup.BusinessID)
	}
	queryBuilder.WriteString(" ORDER BY created_at ASC")

	return r.queryMany(ctx, queryBuilder.String(), args...)
}

// GetCustomers lists a business's customers by name, optionally filtered by a search term.
func (r *customerRepository) GetCustomers(ctx context.Context, f models.CustomerFilters) ([]models.Customer, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT ` + customerColumns + ` FROM customers WHERE business_id = $1`)
	args := []interface{}{f.BusinessID}

	if term := strings.TrimSpace(f.Search); term != "" {
		queryBuilder.WriteString(" AND (name ILIKE $2 OR phone ILIKE $2 OR COALESCE(email, '') ILIKE $2)")
		args = append(args, containsPattern(term))
	}
	queryBuilder.WriteString(" ORDER BY created_at DESC")

	return r.queryMany(ctx, queryBuilder.String(), args...)
}

// UpdateCustomer rewrites the editable fields, password hash included.
func (r *customerRepository) UpdateCustomer(ctx context.Context, executor SQLExecutor, c *models.Customer) error {
	c.UpdatedAt = time.Now().UTC()
	query := `UPDATE customers SET
	            name = $1, phone = $2, email = $3, address = $4, notes = $5, password_hash = $6, updated_at = $7
	          WHERE id = $8 AND business_id = $9`
	result, err := executor.ExecContext(ctx, query, c.Name, c.Phone, c.Email, c.Address, c.Notes,
		c.PasswordHash, c.UpdatedAt, c.ID, c.BusinessID)
	if err != nil {
		return mapWriteError(err, fmt.Sprintf("updating customer %s", c.ID))
	}
	return expectOneRow(result, "updating customer")
}

func (r *customerRepository) UpdatePasswordHash(ctx context.Context, executor SQLExecutor, id uuid.UUID, hash string) error {
	query := `UPDATE customers SET password_hash = $1, updated_at = $2 WHERE id = $3`
	result, err := executor.ExecContext(ctx, query, hash, time.Now().UTC(), id)
	if err != nil {
		return mapWriteError(err, fmt.Sprintf("updating password for customer %s", id))
	}
	return expectOneRow(result, "updating customer password")
}

// DeleteCustomer removes a customer. Sales keep their customer name snapshot.
func (r *customerRepository) DeleteCustomer(ctx context.Context, executor SQLExecutor, businessID, id uuid.UUID) error {
	result, err := executor.ExecContext(ctx, `DELETE FROM customers WHERE id = $1 AND business_id = $2`, id, businessID)
	if err != nil {
		return mapWriteError(err, fmt.Sprintf("deleting customer %s", id))
	}
	return expectOneRow(result, "deleting customer")
}
