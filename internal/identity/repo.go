package identity

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/atelier-commerce/atelier/internal/authz"
	"github.com/atelier-commerce/atelier/internal/platform/db"
	"github.com/atelier-commerce/atelier/internal/shared"
)

// Repository defines persistence operations for the identity module.
type Repository interface {
	FindByEmail(ctx context.Context, email string) (*Account, error)
	FindByID(ctx context.Context, id int64) (*Account, error)
	CreateAccount(ctx context.Context, email, name, passwordHash string, role authz.Role) (*Account, error)
	RegisterVendor(ctx context.Context, email, name, passwordHash, shopName string) (*Account, error)
	CreateSession(ctx context.Context, id string, userID int64, expiresAt time.Time, ip, ua string) error
	DeleteSession(ctx context.Context, id string) error
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// FindByEmail fetches an account by email.
func (r *PGRepository) FindByEmail(ctx context.Context, email string) (*Account, error) {
	row := r.pool.QueryRow(ctx, `SELECT id, email, name, password_hash, role, verified, is_active, created_at, updated_at
FROM accounts WHERE lower(email) = lower($1)`, email)
	return scanAccount(row)
}

// FindByID fetches an account by primary key.
func (r *PGRepository) FindByID(ctx context.Context, id int64) (*Account, error) {
	row := r.pool.QueryRow(ctx, `SELECT id, email, name, password_hash, role, verified, is_active, created_at, updated_at
FROM accounts WHERE id = $1`, id)
	return scanAccount(row)
}

// CreateAccount inserts a new account row.
func (r *PGRepository) CreateAccount(ctx context.Context, email, name, passwordHash string, role authz.Role) (*Account, error) {
	row := r.pool.QueryRow(ctx, `INSERT INTO accounts (email, name, password_hash, role, verified, is_active)
VALUES (lower($1), $2, $3, $4, false, true)
ON CONFLICT (email) DO NOTHING
RETURNING id, email, name, password_hash, role, verified, is_active, created_at, updated_at`,
		email, name, passwordHash, role.String())
	account, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.ErrEmailTaken
		}
		return nil, err
	}
	return account, nil
}

// RegisterVendor creates the account and its pending profile atomically.
func (r *PGRepository) RegisterVendor(ctx context.Context, email, name, passwordHash, shopName string) (*Account, error) {
	var account *Account
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx, `INSERT INTO accounts (email, name, password_hash, role, verified, is_active)
VALUES (lower($1), $2, $3, 'vendor', false, true)
ON CONFLICT (email) DO NOTHING
RETURNING id, email, name, password_hash, role, verified, is_active, created_at, updated_at`,
			email, name, passwordHash)
		acc, err := scanAccount(row)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return shared.ErrEmailTaken
			}
			return err
		}
		if _, err := tx.Exec(ctx, `INSERT INTO vendor_profiles (account_id, shop_name, approval_status)
VALUES ($1, $2, 'pending')`, acc.ID, shopName); err != nil {
			return err
		}
		account = acc
		return nil
	})
	return account, err
}

// CreateSession persists a new login session in the database for auditing.
func (r *PGRepository) CreateSession(ctx context.Context, id string, userID int64, expiresAt time.Time, ip, ua string) error {
	_, err := r.pool.Exec(ctx, `INSERT INTO sessions (id, user_id, created_at, expires_at, ip, ua)
VALUES ($1, $2, NOW(), $3, NULLIF($4, ''), NULLIF($5, ''))
ON CONFLICT (id) DO UPDATE SET expires_at = EXCLUDED.expires_at`, id, userID, expiresAt.UTC(), ip, ua)
	return err
}

// DeleteSession removes a session record from the database.
func (r *PGRepository) DeleteSession(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM sessions WHERE id = $1`, id)
	return err
}

func scanAccount(row pgx.Row) (*Account, error) {
	var a Account
	var role string
	err := row.Scan(&a.ID, &a.Email, &a.Name, &a.PasswordHash, &role, &a.Verified, &a.IsActive, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	parsed, err := authz.ParseRole(role)
	if err != nil {
		return nil, err
	}
	a.Role = parsed
	return &a, nil
}

var _ Repository = (*PGRepository)(nil)
