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

// UserEmailConstraint is the global unique index on staff email.
const UserEmailConstraint = "users_email_key"

// UserRepository is the staff credential store.
type UserRepository interface {
	CreateUser(ctx context.Context, executor SQLExecutor, user *models.User) error
	// FindUserByID looks across all businesses; it backs token resolution.
	FindUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	UpdatePasswordHash(ctx context.Context, executor SQLExecutor, id uuid.UUID, hash string) error
}

type userRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new instance of UserRepository.
func NewUserRepository(db *sql.DB) UserRepository {
	return &userRepository{db: db}
}

const userColumns = `id, name, email, password_hash, role, business_id, created_at, updated_at`

func scanUser(row scanner, u *models.User) error {
	return row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.BusinessID, &u.CreatedAt, &u.UpdatedAt)
}

// CreateUser inserts a user. The id is generated here unless the caller pre-set it.
func (r *userRepository) CreateUser(ctx context.Context, executor SQLExecutor, u *models.User) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	now := time.Now().UTC()
	u.CreatedAt, u.UpdatedAt = now, now

	query := `INSERT INTO users (` + userColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := executor.ExecContext(ctx, query, u.ID, u.Name, u.Email, u.PasswordHash, u.Role, u.BusinessID, u.CreatedAt, u.UpdatedAt)
	if err != nil {
		return mapWriteError(err, "creating user")
	}
	return nil
}

// FindUserByID retrieves a user by id regardless of business.
func (r *userRepository) FindUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	u := &models.User{}
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	if err := scanUser(r.db.QueryRowContext(ctx, query, id), u); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: finding user by ID %s: %v", ErrDatabaseError, id, err)
	}
	return u, nil
}

// FindUserByEmail matches the lower-cased address.
func (r *userRepository) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	u := &models.User{}
	query := `SELECT ` + userColumns + ` FROM users WHERE email = LOWER($1)`
	if err := scanUser(r.db.QueryRowContext(ctx, query, email), u); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: finding user by email: %v", ErrDatabaseError, err)
	}
	return u, nil
}

func (r *userRepository) UpdatePasswordHash(ctx context.Context, executor SQLExecutor, id uuid.UUID, hash string) error {
	query := `UPDATE users SET password_hash = $1, updated_at = $2 WHERE id = $3`
	result, err := executor.ExecContext(ctx, query, hash, time.Now().UTC(), id)
	if err != nil {
		return mapWriteError(err, fmt.Sprintf("updating password for user %s", id))
	}
	return expectOneRow(result, "updating user password")
}
