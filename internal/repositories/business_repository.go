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

// BusinessRepository persists tenants.
type BusinessRepository interface {
	CreateBusiness(ctx context.Context, executor SQLExecutor, business *models.Business) error
	GetBusinessByID(ctx context.Context, id uuid.UUID) (*models.Business, error)
	UpdateBusiness(ctx context.Context, executor SQLExecutor, business *models.Business) error
}

type businessRepository struct {
	db *sql.DB
}

// NewBusinessRepository creates a new instance of BusinessRepository.
func NewBusinessRepository(db *sql.DB) BusinessRepository {
	return &businessRepository{db: db}
}

const businessColumns = `id, name, category, owner_id, email, phone, address, gst_number, license_number, description, website, created_at, updated_at`

func scanBusiness(row scanner, b *models.Business) error {
	return row.Scan(&b.ID, &b.Name, &b.Category, &b.OwnerID, &b.Email, &b.Phone, &b.Address,
		&b.GSTNumber, &b.LicenseNumber, &b.Description, &b.Website, &b.CreatedAt, &b.UpdatedAt)
}

// CreateBusiness inserts a business whose id and owner id were generated by the caller.
func (r *businessRepository) CreateBusiness(ctx context.Context, executor SQLExecutor, b *models.Business) error {
	now := time.Now().UTC()
	b.CreatedAt, b.UpdatedAt = now, now

	query := `INSERT INTO businesses (` + businessColumns + `)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err := executor.ExecContext(ctx, query, b.ID, b.Name, b.Category, b.OwnerID, b.Email, b.Phone,
		b.Address, b.GSTNumber, b.LicenseNumber, b.Description, b.Website, b.CreatedAt, b.UpdatedAt)
	if err != nil {
		return mapWriteError(err, "creating business")
	}
	return nil
}

// GetBusinessByID retrieves a business by its ID.
func (r *businessRepository) GetBusinessByID(ctx context.Context, id uuid.UUID) (*models.Business, error) {
	b := &models.Business{}
	query := `SELECT ` + businessColumns + ` FROM businesses WHERE id = $1`
	if err := scanBusiness(r.db.QueryRowContext(ctx, query, id), b); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting business %s: %v", ErrDatabaseError, id, err)
	}
	return b, nil
}

// UpdateBusiness rewrites the editable profile fields.
func (r *businessRepository) UpdateBusiness(ctx context.Context, executor SQLExecutor, b *models.Business) error {
	b.UpdatedAt = time.Now().UTC()
	query := `UPDATE businesses SET
	            name = $1, category = $2, email = $3, phone = $4, address = $5,
	            gst_number = $6, license_number = $7, description = $8, website = $9, updated_at = $10
	          WHERE id = $11`
	result, err := executor.ExecContext(ctx, query, b.Name, b.Category, b.Email, b.Phone, b.Address,
		b.GSTNumber, b.LicenseNumber, b.Description, b.Website, b.UpdatedAt, b.ID)
	if err != nil {
		return mapWriteError(err, fmt.Sprintf("updating business %s", b.ID))
	}
	return expectOneRow(result, "updating business")
}
