package categories

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/atelier-commerce/atelier/internal/shared"
)

// ErrDuplicate indicates a category name/slug collision.
var ErrDuplicate = errors.New("categories: duplicate")

// Service orchestrates category operations.
type Service struct {
	pool  *pgxpool.Pool
	title cases.Caser
}

// NewService constructs a Service backed by the provided pool.
func NewService(pool *pgxpool.Pool) *Service {
	return &Service{pool: pool, title: cases.Title(language.English)}
}

// List returns all categories ordered by name.
func (s *Service) List(ctx context.Context) ([]Category, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, slug, name, description, created_at FROM categories ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Category
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Slug, &c.Name, &c.Description, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Get fetches a category by id.
func (s *Service) Get(ctx context.Context, id int64) (Category, error) {
	var c Category
	err := s.pool.QueryRow(ctx, `SELECT id, slug, name, description, created_at FROM categories WHERE id = $1`, id).
		Scan(&c.ID, &c.Slug, &c.Name, &c.Description, &c.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Category{}, shared.ErrNotFound
	}
	return c, err
}

// Create inserts a new category with a normalized display name.
func (s *Service) Create(ctx context.Context, req CreateCategoryRequest) (Category, error) {
	name := s.normalizeName(req.Name)
	slug := slugify(name)
	var c Category
	err := s.pool.QueryRow(ctx, `INSERT INTO categories (slug, name, description)
VALUES ($1, $2, $3)
RETURNING id, slug, name, description, created_at`,
		slug, name, strings.TrimSpace(req.Description)).
		Scan(&c.ID, &c.Slug, &c.Name, &c.Description, &c.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Category{}, ErrDuplicate
		}
		return Category{}, err
	}
	return c, nil
}

// Update applies a partial update.
func (s *Service) Update(ctx context.Context, id int64, req UpdateCategoryRequest) (Category, error) {
	var name *string
	if req.Name != nil {
		normalized := s.normalizeName(*req.Name)
		name = &normalized
	}
	tag, err := s.pool.Exec(ctx, `UPDATE categories SET
name        = COALESCE($2, name),
description = COALESCE($3, description)
WHERE id = $1`, id, name, req.Description)
	if err != nil {
		return Category{}, err
	}
	if tag.RowsAffected() == 0 {
		return Category{}, shared.ErrNotFound
	}
	return s.Get(ctx, id)
}

// Delete removes a category; products keep a NULL category afterwards.
func (s *Service) Delete(ctx context.Context, id int64) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// normalizeName title-cases and trims the submitted name so "hand  thrown
// pottery" and "Hand Thrown Pottery" resolve to the same category.
func (s *Service) normalizeName(name string) string {
	return s.title.String(strings.Join(strings.Fields(name), " "))
}

var slugStrip = regexp.MustCompile(`[^a-z0-9]+`)

func slugify(name string) string {
	slug := strings.Trim(slugStrip.ReplaceAllString(strings.ToLower(name), "-"), "-")
	if slug == "" {
		slug = "category"
	}
	return slug
}
