package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/atelier-commerce/atelier/internal/platform/db"
	"github.com/atelier-commerce/atelier/internal/shared"
)

// Order placement failures surfaced to the service layer.
var (
	ErrProductUnavailable = errors.New("orders: product unavailable")
	ErrInsufficientStock  = errors.New("orders: insufficient stock")
)

// Repository defines persistence operations for orders.
type Repository interface {
	Create(ctx context.Context, buyerID int64, req CreateOrderRequest) (*Order, error)
	Get(ctx context.Context, id int64) (*Order, error)
	ListForBuyer(ctx context.Context, buyerID int64, limit, offset int) ([]Order, int, error)
	ListForVendor(ctx context.Context, vendorID int64, limit, offset int) ([]Order, int, error)
	UpdateStatus(ctx context.Context, id int64, status Status) error
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

// Create places an order in one transaction: stock is checked and
// decremented row by row, the order total is derived from current prices,
// and line items snapshot title and price.
func (r *repository) Create(ctx context.Context, buyerID int64, req CreateOrderRequest) (*Order, error) {
	var orderID int64
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		reference := uuid.New()
		var total int64

		type line struct {
			productID int64
			vendorID  int64
			title     string
			price     int64
			qty       int
		}
		lines := make([]line, 0, len(req.Items))

		for _, item := range req.Items {
			var l line
			var stock int
			var active bool
			err := tx.QueryRow(ctx, `SELECT p.id, p.vendor_id, p.title, p.price_cents, p.stock, p.is_active
FROM products p
JOIN vendor_profiles vp ON vp.account_id = p.vendor_id
WHERE p.id = $1 AND vp.approval_status = 'approved'
FOR UPDATE OF p`, item.ProductID).Scan(&l.productID, &l.vendorID, &l.title, &l.price, &stock, &active)
			if err != nil {
				if errors.Is(err, pgx.ErrNoRows) {
					return fmt.Errorf("%w: product %d", ErrProductUnavailable, item.ProductID)
				}
				return err
			}
			if !active {
				return fmt.Errorf("%w: product %d", ErrProductUnavailable, item.ProductID)
			}
			if stock < item.Quantity {
				return fmt.Errorf("%w: product %d", ErrInsufficientStock, item.ProductID)
			}
			if _, err := tx.Exec(ctx, `UPDATE products SET stock = stock - $2, updated_at = NOW() WHERE id = $1`, item.ProductID, item.Quantity); err != nil {
				return err
			}
			l.qty = item.Quantity
			total += l.price * int64(item.Quantity)
			lines = append(lines, l)
		}

		if err := tx.QueryRow(ctx, `INSERT INTO orders (reference, buyer_id, status, total_cents, currency)
VALUES ($1, $2, 'pending', $3, 'USD')
RETURNING id`, reference, buyerID, total).Scan(&orderID); err != nil {
			return err
		}
		for _, l := range lines {
			if _, err := tx.Exec(ctx, `INSERT INTO order_items (order_id, product_id, vendor_id, title, unit_price_cents, quantity)
VALUES ($1, $2, $3, $4, $5, $6)`, orderID, l.productID, l.vendorID, l.title, l.price, l.qty); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r.Get(ctx, orderID)
}

func (r *repository) Get(ctx context.Context, id int64) (*Order, error) {
	row := r.pool.QueryRow(ctx, `SELECT id, reference, buyer_id, status, total_cents, currency, created_at, updated_at
FROM orders WHERE id = $1`, id)
	order, err := scanOrder(row)
	if err != nil {
		return nil, err
	}

	rows, err := r.pool.Query(ctx, `SELECT id, order_id, product_id, vendor_id, title, unit_price_cents, quantity
FROM order_items WHERE order_id = $1 ORDER BY id ASC`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var item Item
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.VendorID, &item.Title, &item.UnitPriceCents, &item.Quantity); err != nil {
			return nil, err
		}
		order.Items = append(order.Items, item)
	}
	return order, rows.Err()
}

func (r *repository) ListForBuyer(ctx context.Context, buyerID int64, limit, offset int) ([]Order, int, error) {
	return r.list(ctx, `WHERE buyer_id = $1`, buyerID, limit, offset)
}

func (r *repository) ListForVendor(ctx context.Context, vendorID int64, limit, offset int) ([]Order, int, error) {
	return r.list(ctx, `WHERE id IN (SELECT DISTINCT order_id FROM order_items WHERE vendor_id = $1)`, vendorID, limit, offset)
}

func (r *repository) list(ctx context.Context, where string, arg any, limit, offset int) ([]Order, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM orders `+where, arg).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.pool.Query(ctx, `SELECT id, reference, buyer_id, status, total_cents, currency, created_at, updated_at
FROM orders `+where+` ORDER BY created_at DESC LIMIT $2 OFFSET $3`, arg, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var out []Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *order)
	}
	return out, total, rows.Err()
}

func (r *repository) UpdateStatus(ctx context.Context, id int64, status Status) error {
	tag, err := r.pool.Exec(ctx, `UPDATE orders SET status = $2, updated_at = NOW() WHERE id = $1`, id, string(status))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func scanOrder(row pgx.Row) (*Order, error) {
	var o Order
	var status string
	err := row.Scan(&o.ID, &o.Reference, &o.BuyerID, &status, &o.TotalCents, &o.Currency, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	o.Status = Status(status)
	return &o, nil
}
