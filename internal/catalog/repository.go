package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/atelier-commerce/atelier/internal/shared"
)

// Repository defines persistence operations for the catalog module.
type Repository interface {
	Get(ctx context.Context, id int64) (*Product, error)
	GetBySlug(ctx context.Context, slug string) (*Product, error)
	List(ctx context.Context, f Filter, limit, offset int) ([]Product, int, error)
	Create(ctx context.Context, p Product) (*Product, error)
	Update(ctx context.Context, id int64, req UpdateProductRequest) (*Product, error)
	Delete(ctx context.Context, id int64) error
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const productColumns = `p.id, p.vendor_id, a.name, p.category_id, p.title, p.slug, p.description,
p.price_cents, p.currency, p.tags, p.stock, p.is_active, p.created_at, p.updated_at`

const productJoins = `FROM products p
JOIN accounts a ON a.id = p.vendor_id
JOIN vendor_profiles vp ON vp.account_id = p.vendor_id`

func (r *repository) Get(ctx context.Context, id int64) (*Product, error) {
	row := r.pool.QueryRow(ctx, fmt.Sprintf(`SELECT %s %s WHERE p.id = $1`, productColumns, productJoins), id)
	return scanProduct(row)
}

func (r *repository) GetBySlug(ctx context.Context, slug string) (*Product, error) {
	row := r.pool.QueryRow(ctx, fmt.Sprintf(`SELECT %s %s WHERE p.slug = $1`, productColumns, productJoins), slug)
	return scanProduct(row)
}

func (r *repository) List(ctx context.Context, f Filter, limit, offset int) ([]Product, int, error) {
	where, args := f.Clauses(1)

	var total int
	countQuery := fmt.Sprintf(`SELECT COUNT(*) %s %s`, productJoins, where)
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	listQuery := fmt.Sprintf(`SELECT %s %s %s ORDER BY p.created_at DESC LIMIT $%d OFFSET $%d`,
		productColumns, productJoins, where, len(args)+1, len(args)+2)
	rows, err := r.pool.Query(ctx, listQuery, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var products []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, 0, err
		}
		products = append(products, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

func (r *repository) Create(ctx context.Context, p Product) (*Product, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `INSERT INTO products (vendor_id, category_id, title, slug, description, price_cents, currency, tags, stock, is_active)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
RETURNING id`,
		p.VendorID, p.CategoryID, p.Title, p.Slug, p.Description, p.PriceCents, p.Currency, p.Tags, p.Stock, p.IsActive).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, fmt.Errorf("%w: slug %q", ErrDuplicateSlug, p.Slug)
		}
		return nil, err
	}
	return r.Get(ctx, id)
}

func (r *repository) Update(ctx context.Context, id int64, req UpdateProductRequest) (*Product, error) {
	tag, err := r.pool.Exec(ctx, `UPDATE products SET
title        = COALESCE($2, title),
description  = COALESCE($3, description),
category_id  = COALESCE($4, category_id),
price_cents  = COALESCE($5, price_cents),
currency     = COALESCE($6, currency),
tags         = COALESCE($7, tags),
stock        = COALESCE($8, stock),
is_active    = COALESCE($9, is_active),
updated_at   = NOW()
WHERE id = $1`,
		id, req.Title, req.Description, req.CategoryID, req.PriceCents, req.Currency, req.Tags, req.Stock, req.IsActive)
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		return nil, shared.ErrNotFound
	}
	return r.Get(ctx, id)
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// ErrDuplicateSlug indicates a slug collision on insert.
var ErrDuplicateSlug = errors.New("catalog: duplicate slug")

func scanProduct(row pgx.Row) (*Product, error) {
	var p Product
	err := row.Scan(&p.ID, &p.VendorID, &p.VendorName, &p.CategoryID, &p.Title, &p.Slug, &p.Description,
		&p.PriceCents, &p.Currency, &p.Tags, &p.Stock, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}
