package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/atelier-commerce/atelier/internal/authz"
	"github.com/atelier-commerce/atelier/internal/shared"
)

// Repository provides PostgreSQL backed persistence for user management.
type Repository interface {
	List(ctx context.Context, req ListUsersRequest) ([]User, int, error)
	Get(ctx context.Context, id int64) (*User, error)
	Update(ctx context.Context, id int64, req UpdateUserRequest) (*User, error)
	Delete(ctx context.Context, id int64) error
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const userColumns = `id, email, name, role, verified, is_active, created_at, updated_at`

func (r *repository) List(ctx context.Context, req ListUsersRequest) ([]User, int, error) {
	var conds []string
	var args []any
	arg := 1

	if req.Role != nil {
		conds = append(conds, fmt.Sprintf("role = $%d", arg))
		args = append(args, req.Role.String())
		arg++
	}
	if s := strings.TrimSpace(req.Search); s != "" {
		conds = append(conds, fmt.Sprintf("(email ILIKE $%d OR name ILIKE $%d)", arg, arg))
		args = append(args, "%"+s+"%")
		arg++
	}
	where := ""
	if len(conds) > 0 {
		where = "WHERE " + strings.Join(conds, " AND ")
	}

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM accounts "+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf("SELECT %s FROM accounts %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d", userColumns, where, arg, arg+1)
	rows, err := r.pool.Query(ctx, query, append(args, req.Limit, req.Offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *u)
	}
	return out, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (*User, error) {
	row := r.pool.QueryRow(ctx, fmt.Sprintf("SELECT %s FROM accounts WHERE id = $1", userColumns), id)
	return scanUser(row)
}

func (r *repository) Update(ctx context.Context, id int64, req UpdateUserRequest) (*User, error) {
	tag, err := r.pool.Exec(ctx, `UPDATE accounts SET
name       = COALESCE($2, name),
is_active  = COALESCE($3, is_active),
updated_at = NOW()
WHERE id = $1`, id, req.Name, req.IsActive)
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		return nil, shared.ErrNotFound
	}
	return r.Get(ctx, id)
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM accounts WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func scanUser(row pgx.Row) (*User, error) {
	var u User
	var role string
	err := row.Scan(&u.ID, &u.Email, &u.Name, &role, &u.Verified, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
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
	u.Role = parsed
	u.RoleName = parsed.String()
	return &u, nil
}
