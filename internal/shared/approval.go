package shared

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ModerationAction enumerates moderation log actions.
type ModerationAction string

const (
	// ModerationApprove marks an approve action.
	ModerationApprove ModerationAction = "APPROVE"
	// ModerationReject marks a reject action.
	ModerationReject ModerationAction = "REJECT"
)

// ModerationLog represents a single moderation record.
type ModerationLog struct {
	ID      int64
	Entity  string
	RefID   int64
	ActorID int64
	Action  ModerationAction
	Note    string
	At      time.Time
}

// ModerationRecorder persists moderation history.
type ModerationRecorder struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewModerationRecorder constructs ModerationRecorder.
func NewModerationRecorder(pool *pgxpool.Pool, logger *slog.Logger) *ModerationRecorder {
	return &ModerationRecorder{pool: pool, logger: logger}
}

// Record writes a moderation entry to the database.
func (r *ModerationRecorder) Record(ctx context.Context, log ModerationLog) error {
	if r == nil {
		return errors.New("moderation recorder not initialised")
	}
	if log.Entity == "" {
		return errors.New("moderation entity required")
	}
	if log.ActorID == 0 {
		return errors.New("moderation actor required")
	}
	if log.RefID == 0 {
		return errors.New("moderation ref id required")
	}
	if log.Action == "" {
		return errors.New("moderation action required")
	}
	_, err := r.pool.Exec(ctx, `INSERT INTO moderation_logs (entity, ref_id, actor_id, action, note, at)
VALUES ($1, $2, $3, $4, $5, COALESCE($6, NOW()))`, log.Entity, log.RefID, log.ActorID, string(log.Action), log.Note, log.At)
	if err != nil {
		r.logger.Error("record moderation", slog.Any("error", err))
		return err
	}
	return nil
}

// List returns moderation history for an entity/ref.
func (r *ModerationRecorder) List(ctx context.Context, entity string, ref int64) ([]ModerationLog, error) {
	if r == nil {
		return nil, errors.New("moderation recorder not initialised")
	}
	rows, err := r.pool.Query(ctx, `SELECT id, entity, ref_id, actor_id, action, note, at
FROM moderation_logs WHERE entity=$1 AND ref_id=$2 ORDER BY at ASC`, entity, ref)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var logs []ModerationLog
	for rows.Next() {
		var l ModerationLog
		var action string
		if err := rows.Scan(&l.ID, &l.Entity, &l.RefID, &l.ActorID, &action, &l.Note, &l.At); err != nil {
			return nil, err
		}
		l.Action = ModerationAction(action)
		logs = append(logs, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return logs, nil
}
