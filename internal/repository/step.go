package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lifequest/lifequest/internal/model"
)

var (
	ErrStepNotFound = errors.New("step not found")
)

type StepRepository interface {
	CreateSteps(ctx context.Context, steps []*model.Step) error
	Steps(ctx context.Context, goalID string) ([]*model.Step, error)
	ByID(ctx context.Context, goalID, stepID string) (*model.Step, error)
	Update(ctx context.Context, step *model.Step) error
	DeleteByGoal(ctx context.Context, goalID string) error
}

type stepRepository struct {
	db sqlx.ExtContext
}

// NewStepRepository accepts a *sqlx.DB or a *sqlx.Tx. CreateSteps is only
// atomic when it runs inside a transaction.
func NewStepRepository(db sqlx.ExtContext) StepRepository {
	return &stepRepository{db: db}
}

func (r *stepRepository) CreateSteps(ctx context.Context, steps []*model.Step) error {
	query := `INSERT INTO steps (id, goal_id, position, title, description, substeps, difficulty, est_time_minutes,
	                             is_started, started_at, is_completed, completed_at,
	                             reflection_required, reflection_prompt, has_reflection, reflection_text, reflected_at, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`

	for _, s := range steps {
		_, err := r.db.ExecContext(ctx, query,
			s.ID,
			s.GoalID,
			s.Position,
			s.Title,
			s.Description,
			s.Substeps,
			s.Difficulty,
			s.EstTimeMinutes,
			s.IsStarted,
			s.StartedAt,
			s.IsCompleted,
			s.CompletedAt,
			s.ReflectionRequired,
			s.ReflectionPrompt,
			s.HasReflection,
			s.ReflectionText,
			s.ReflectedAt,
			s.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to create step %d: %w", s.Position, err)
		}
	}

	return nil
}

func (r *stepRepository) Steps(ctx context.Context, goalID string) ([]*model.Step, error) {
	steps := []*model.Step{}
	query := `SELECT * FROM steps WHERE goal_id = $1 ORDER BY position ASC`

	err := sqlx.SelectContext(ctx, r.db, &steps, query, goalID)
	if err != nil {
		return nil, err
	}

	return steps, nil
}

func (r *stepRepository) ByID(ctx context.Context, goalID, stepID string) (*model.Step, error) {
	step := &model.Step{}
	query := `SELECT * FROM steps WHERE id = $1 AND goal_id = $2`

	err := sqlx.GetContext(ctx, r.db, step, query, stepID, goalID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrStepNotFound
	}
	if err != nil {
		return nil, err
	}

	return step, nil
}

// Update persists the mutable lifecycle columns of a step. Plan fields are
// frozen at confirmation and never rewritten.
func (r *stepRepository) Update(ctx context.Context, step *model.Step) error {
	query := `UPDATE steps
	          SET is_started = $1, started_at = $2, is_completed = $3, completed_at = $4,
	              has_reflection = $5, reflection_text = $6, reflected_at = $7
	          WHERE id = $8 AND goal_id = $9`

	result, err := r.db.ExecContext(ctx, query,
		step.IsStarted,
		step.StartedAt,
		step.IsCompleted,
		step.CompletedAt,
		step.HasReflection,
		step.ReflectionText,
		step.ReflectedAt,
		step.ID,
		step.GoalID,
	)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return ErrStepNotFound
	}

	return nil
}

func (r *stepRepository) DeleteByGoal(ctx context.Context, goalID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM steps WHERE goal_id = $1`, goalID)
	return err
}
