package analytics

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// DailyRevenue is one day of completed sales volume.
type DailyRevenue struct {
	Day          time.Time `json:"day"`
	Orders       int64     `json:"orders"`
	RevenueCents int64     `json:"revenue_cents"`
}

// SignupCount groups new accounts by role within the window.
type SignupCount struct {
	Role  string `json:"role"`
	Count int64  `json:"count"`
}

// TopProduct ranks products by units sold within the window.
type TopProduct struct {
	ProductID    int64  `json:"product_id"`
	Title        string `json:"title"`
	VendorName   string `json:"vendor_name"`
	UnitsSold    int64  `json:"units_sold"`
	RevenueCents int64  `json:"revenue_cents"`
}

// Dashboard is the aggregate payload for the admin console.
type Dashboard struct {
	Period         string         `json:"period"`
	GeneratedAt    time.Time      `json:"generated_at"`
	TotalOrders    int64          `json:"total_orders"`
	TotalRevenue   int64          `json:"total_revenue_cents"`
	PendingVendors int64          `json:"pending_vendors"`
	Revenue        []DailyRevenue `json:"revenue"`
	Signups        []SignupCount  `json:"signups"`
	TopProducts    []TopProduct   `json:"top_products"`
}

// Service computes dashboard aggregates, caching each period window.
type Service struct {
	pool  *pgxpool.Pool
	cache *Cache
	now   func() time.Time
}

// NewService wires the aggregate queries with the cache helper.
func NewService(pool *pgxpool.Pool, cache *Cache) *Service {
	return &Service{pool: pool, cache: cache, now: time.Now}
}

// Dashboard returns the cached dashboard for a period, computing on miss.
func (s *Service) Dashboard(ctx context.Context, period Period) (*Dashboard, error) {
	var out Dashboard
	err := s.cache.FetchJSON(ctx, keyDashboard(period), &out, func(ctx context.Context) (interface{}, error) {
		return s.compute(ctx, period)
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Warm precomputes every period window. Used by the scheduled job so the
// first admin of the day does not pay for the aggregates.
func (s *Service) Warm(ctx context.Context) error {
	for _, p := range []Period{PeriodWeek, PeriodMonth, PeriodQuarter, PeriodYear} {
		if _, err := s.Dashboard(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) compute(ctx context.Context, period Period) (*Dashboard, error) {
	now := s.now().UTC()
	since := period.Since(now)
	dash := &Dashboard{Period: period.String(), GeneratedAt: now}

	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*), COALESCE(SUM(total_cents), 0)
FROM orders
WHERE created_at >= $1 AND status <> 'cancelled'`, since).Scan(&dash.TotalOrders, &dash.TotalRevenue); err != nil {
		return nil, err
	}

	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM vendor_profiles WHERE approval_status = 'pending'`).Scan(&dash.PendingVendors); err != nil {
		return nil, err
	}

	rows, err := s.pool.Query(ctx, `SELECT date_trunc('day', created_at) AS day, COUNT(*), COALESCE(SUM(total_cents), 0)
FROM orders
WHERE created_at >= $1 AND status <> 'cancelled'
GROUP BY day
ORDER BY day ASC`, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var d DailyRevenue
		if err := rows.Scan(&d.Day, &d.Orders, &d.RevenueCents); err != nil {
			return nil, err
		}
		dash.Revenue = append(dash.Revenue, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = s.pool.Query(ctx, `SELECT role, COUNT(*)
FROM accounts
WHERE created_at >= $1
GROUP BY role
ORDER BY role ASC`, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var sc SignupCount
		if err := rows.Scan(&sc.Role, &sc.Count); err != nil {
			return nil, err
		}
		dash.Signups = append(dash.Signups, sc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = s.pool.Query(ctx, `SELECT oi.product_id, oi.title, COALESCE(vp.shop_name, ''),
       SUM(oi.quantity), SUM(oi.unit_price_cents * oi.quantity)
FROM order_items oi
JOIN orders o ON o.id = oi.order_id
LEFT JOIN vendor_profiles vp ON vp.account_id = oi.vendor_id
WHERE o.created_at >= $1 AND o.status <> 'cancelled'
GROUP BY oi.product_id, oi.title, vp.shop_name
ORDER BY SUM(oi.quantity) DESC
LIMIT 10`, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var tp TopProduct
		if err := rows.Scan(&tp.ProductID, &tp.Title, &tp.VendorName, &tp.UnitsSold, &tp.RevenueCents); err != nil {
			return nil, err
		}
		dash.TopProducts = append(dash.TopProducts, tp)
	}
	return dash, rows.Err()
}
