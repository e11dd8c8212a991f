package service

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lifequest/lifequest/internal/model"
	"github.com/lifequest/lifequest/internal/progression"
	"github.com/lifequest/lifequest/internal/repository"
)

// XPService reads the ledger. Progress is always derived from the ledger
// total and never stored.
type XPService struct {
	db     *sqlx.DB
	policy progression.Policy
}

func NewXPService(db *sqlx.DB, policy progression.Policy) *XPService {
	return &XPService{db: db, policy: policy}
}

func (s *XPService) Summary(ctx context.Context, userID string) (progression.Progress, error) {
	return progressFor(ctx, repository.NewXPLogRepository(s.db), s.policy, userID)
}

func (s *XPService) Logs(ctx context.Context, userID string) ([]*model.XPLogEntry, error) {
	return repository.NewXPLogRepository(s.db).Entries(ctx, userID)
}

func progressFor(ctx context.Context, ledger repository.XPLogRepository, policy progression.Policy, userID string) (progression.Progress, error) {
	total, err := ledger.Total(ctx, userID)
	if err != nil {
		return progression.Progress{}, fmt.Errorf("failed to sum xp: %w", err)
	}
	return policy.LevelFor(total), nil
}
