package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lifequest/lifequest/internal/model"
)

var (
	// ErrDuplicateXPEntry means the source already earned its XP.
	ErrDuplicateXPEntry = errors.New("xp already awarded for this source")
)

// XPLogRepository is append-only: there is no update or delete.
type XPLogRepository interface {
	Append(ctx context.Context, entry *model.XPLogEntry) error
	Entries(ctx context.Context, userID string) ([]*model.XPLogEntry, error)
	Total(ctx context.Context, userID string) (int64, error)
}

type xpLogRepository struct {
	db sqlx.ExtContext
}

func NewXPLogRepository(db sqlx.ExtContext) XPLogRepository {
	return &xpLogRepository{db: db}
}

func (r *xpLogRepository) Append(ctx context.Context, entry *model.XPLogEntry) error {
	query := `INSERT INTO xp_log (id, user_id, amount, source_kind, source_id, goal_id, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.db.ExecContext(ctx, query,
		entry.ID,
		entry.UserID,
		entry.Amount,
		entry.SourceKind,
		entry.SourceID,
		entry.GoalID,
		entry.CreatedAt,
	)
	if err != nil {
		// Unique (source_kind, source_id) violation, SQLite and PostgreSQL wording
		errStr := err.Error()
		if strings.Contains(errStr, "UNIQUE constraint failed") || strings.Contains(errStr, "duplicate key value") {
			return ErrDuplicateXPEntry
		}
		return err
	}

	return nil
}

func (r *xpLogRepository) Entries(ctx context.Context, userID string) ([]*model.XPLogEntry, error) {
	entries := []*model.XPLogEntry{}
	query := `SELECT * FROM xp_log WHERE user_id = $1 ORDER BY created_at ASC, id ASC`

	err := sqlx.SelectContext(ctx, r.db, &entries, query, userID)
	if err != nil {
		return nil, err
	}

	return entries, nil
}

func (r *xpLogRepository) Total(ctx context.Context, userID string) (int64, error) {
	var total int64
	query := `SELECT COALESCE(SUM(amount), 0) FROM xp_log WHERE user_id = $1`

	err := sqlx.GetContext(ctx, r.db, &total, query, userID)
	return total, err
}
