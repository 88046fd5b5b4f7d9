package vendors

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/atelier-commerce/atelier/internal/platform/db"
	"github.com/atelier-commerce/atelier/internal/shared"
)

// Repository defines persistence operations for vendor moderation.
type Repository interface {
	Get(ctx context.Context, accountID int64) (*Profile, error)
	List(ctx context.Context, status *ApprovalStatus, limit, offset int) ([]Summary, int, error)
	// Approve transitions the profile to approved and marks the account
	// verified. It reports whether any row actually changed; re-approving
	// an already-approved vendor is a no-op, not an error.
	Approve(ctx context.Context, accountID, approverID int64) (bool, error)
	// Reject transitions the profile to rejected with a reason. The
	// account's verified flag is left untouched.
	Reject(ctx context.Context, accountID, rejectorID int64, reason string) (bool, error)
	// BulkApprove applies Approve to every id whose account role is vendor
	// and returns the number of profiles actually transitioned.
	BulkApprove(ctx context.Context, accountIDs []int64, approverID int64) (int64, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) Get(ctx context.Context, accountID int64) (*Profile, error) {
	row := r.pool.QueryRow(ctx, `SELECT account_id, shop_name, bio, approval_status, decided_by, decided_at, rejected_reason, created_at
FROM vendor_profiles WHERE account_id = $1`, accountID)
	var p Profile
	var status string
	err := row.Scan(&p.AccountID, &p.ShopName, &p.Bio, &status, &p.DecidedBy, &p.DecidedAt, &p.RejectedReason, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	p.ApprovalStatus = ApprovalStatus(status)
	return &p, nil
}

func (r *repository) List(ctx context.Context, status *ApprovalStatus, limit, offset int) ([]Summary, int, error) {
	where := `WHERE a.role = 'vendor'`
	args := []any{}
	if status != nil {
		where += ` AND vp.approval_status = $1`
		args = append(args, string(*status))
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM vendor_profiles vp JOIN accounts a ON a.id = vp.account_id `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT vp.account_id, vp.shop_name, vp.bio, vp.approval_status, vp.decided_by, vp.decided_at, vp.rejected_reason, vp.created_at,
a.email, a.name, a.verified
FROM vendor_profiles vp JOIN accounts a ON a.id = vp.account_id ` + where + ` ORDER BY vp.created_at ASC`
	if status != nil {
		query += ` LIMIT $2 OFFSET $3`
	} else {
		query += ` LIMIT $1 OFFSET $2`
	}
	rows, err := r.pool.Query(ctx, query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Summary
	for rows.Next() {
		var s Summary
		var statusRaw string
		if err := rows.Scan(&s.AccountID, &s.ShopName, &s.Bio, &statusRaw, &s.DecidedBy, &s.DecidedAt, &s.RejectedReason, &s.CreatedAt,
			&s.Email, &s.Name, &s.Verified); err != nil {
			return nil, 0, err
		}
		s.ApprovalStatus = ApprovalStatus(statusRaw)
		out = append(out, s)
	}
	return out, total, rows.Err()
}

func (r *repository) Approve(ctx context.Context, accountID, approverID int64) (bool, error) {
	var modified bool
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `UPDATE vendor_profiles vp SET
approval_status = 'approved',
decided_by      = $2,
decided_at      = NOW(),
rejected_reason = NULL
FROM accounts a
WHERE vp.account_id = $1 AND a.id = vp.account_id AND a.role = 'vendor'
  AND vp.approval_status <> 'approved'`, accountID, approverID)
		if err != nil {
			return err
		}
		modified = tag.RowsAffected() > 0
		// Verified follows approval regardless of whether the profile row
		// changed, so a drifted flag self-heals on re-approve.
		_, err = tx.Exec(ctx, `UPDATE accounts SET verified = true, updated_at = NOW()
WHERE id = $1 AND role = 'vendor' AND NOT verified`, accountID)
		return err
	})
	return modified, err
}

func (r *repository) Reject(ctx context.Context, accountID, rejectorID int64, reason string) (bool, error) {
	tag, err := r.pool.Exec(ctx, `UPDATE vendor_profiles vp SET
approval_status = 'rejected',
decided_by      = $2,
decided_at      = NOW(),
rejected_reason = $3
FROM accounts a
WHERE vp.account_id = $1 AND a.id = vp.account_id AND a.role = 'vendor'
  AND (vp.approval_status <> 'rejected' OR vp.rejected_reason IS DISTINCT FROM $3)`, accountID, rejectorID, reason)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *repository) BulkApprove(ctx context.Context, accountIDs []int64, approverID int64) (int64, error) {
	if len(accountIDs) == 0 {
		return 0, nil
	}
	var modified int64
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `UPDATE vendor_profiles vp SET
approval_status = 'approved',
decided_by      = $2,
decided_at      = NOW(),
rejected_reason = NULL
FROM accounts a
WHERE vp.account_id = ANY($1) AND a.id = vp.account_id AND a.role = 'vendor'
  AND vp.approval_status <> 'approved'`, accountIDs, approverID)
		if err != nil {
			return err
		}
		modified = tag.RowsAffected()
		_, err = tx.Exec(ctx, `UPDATE accounts SET verified = true, updated_at = NOW()
WHERE id = ANY($1) AND role = 'vendor' AND NOT verified`, accountIDs)
		return err
	})
	return modified, err
}
