package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lifequest/lifequest/internal/db"
	"github.com/lifequest/lifequest/internal/generator"
	"github.com/lifequest/lifequest/internal/model"
	"github.com/lifequest/lifequest/internal/progression"
	"github.com/lifequest/lifequest/internal/repository"
	"github.com/lifequest/lifequest/internal/validation"
)

// DraftResult is a drafting goal together with its current candidate plan.
type DraftResult struct {
	Goal  *model.Goal       `json:"goal"`
	Draft []*model.PlanStep `json:"draft"`
}

// StepResult is returned by every step transition so callers can refresh
// their view without another round trip.
type StepResult struct {
	Step      *model.Step          `json:"step"`
	XPAwarded int                  `json:"xp_awarded"`
	Progress  progression.Progress `json:"progress"`
}

type FinishResult struct {
	Goal     *model.Goal          `json:"goal"`
	BonusXP  int                  `json:"bonus_xp"`
	Progress progression.Progress `json:"progress"`
}

// QuestService drives the goal lifecycle and the step state machine. Every
// mutation of a goal runs under that goal's lock and inside one transaction
// so state and ledger change together or not at all.
type QuestService struct {
	db        *sqlx.DB
	policy    progression.Policy
	plans     generator.PlanGenerator
	summaries generator.SummaryGenerator
	drafts    *DraftStore
	locks     *KeyedMutex
	now       func() time.Time
}

func NewQuestService(
	database *sqlx.DB,
	policy progression.Policy,
	plans generator.PlanGenerator,
	summaries generator.SummaryGenerator,
	drafts *DraftStore,
) *QuestService {
	return &QuestService{
		db:        database,
		policy:    policy,
		plans:     plans,
		summaries: summaries,
		drafts:    drafts,
		locks:     NewKeyedMutex(),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (s *QuestService) repos() *repository.Repositories {
	return repository.New(s.db)
}

func (s *QuestService) newGoal(userID, title, description string) (*model.Goal, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, progression.ErrTitleRequired
	}
	if err := validation.ValidateTitle(title); err != nil {
		return nil, &progression.Error{Kind: progression.KindValidation, Code: "invalid_title", Message: err.Error()}
	}
	if err := validation.ValidateDescription(description); err != nil {
		return nil, &progression.Error{Kind: progression.KindValidation, Code: "invalid_description", Message: err.Error()}
	}

	now := s.now()
	goal := &model.Goal{
		ID:        uuid.New().String(),
		UserID:    userID,
		Title:     title,
		Status:    model.GoalStatusDrafting,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if d := strings.TrimSpace(description); d != "" {
		goal.Description = &d
	}
	return goal, nil
}

// Create stores a goal in drafting with no plan yet.
func (s *QuestService) Create(ctx context.Context, userID, title, description string) (*model.Goal, error) {
	goal, err := s.newGoal(userID, title, description)
	if err != nil {
		return nil, err
	}

	err = s.repos().Goals.Create(ctx, goal)
	if err != nil {
		return nil, fmt.Errorf("failed to create goal: %w", err)
	}

	slog.Info("goal created", "goal_id", goal.ID, "user_id", userID)
	return goal, nil
}

// CreateDraft creates a goal and its first candidate plan. The plan is
// generated before anything is written, so a generation failure leaves no
// goal behind.
func (s *QuestService) CreateDraft(ctx context.Context, userID, title, description string) (*DraftResult, error) {
	goal, err := s.newGoal(userID, title, description)
	if err != nil {
		return nil, err
	}

	draft, err := s.generate(ctx, goal, nil)
	if err != nil {
		return nil, err
	}

	err = s.repos().Goals.Create(ctx, goal)
	if err != nil {
		return nil, fmt.Errorf("failed to create goal: %w", err)
	}
	s.drafts.Put(goal.ID, draft)

	slog.Info("goal drafted", "goal_id", goal.ID, "user_id", userID, "steps", len(draft))
	return &DraftResult{Goal: goal, Draft: draft}, nil
}

// GenerateDraft produces a candidate plan for a drafting goal, replacing any
// previous one.
func (s *QuestService) GenerateDraft(ctx context.Context, userID, goalID string) (*DraftResult, error) {
	return s.draft(ctx, userID, goalID, false)
}

// RegenerateDraft discards the current candidate and asks for a different
// one. The previous candidate is kept if generation fails.
func (s *QuestService) RegenerateDraft(ctx context.Context, userID, goalID string) (*DraftResult, error) {
	return s.draft(ctx, userID, goalID, true)
}

func (s *QuestService) draft(ctx context.Context, userID, goalID string, regenerate bool) (*DraftResult, error) {
	unlock := s.locks.Lock(goalID)
	defer unlock()

	goal, err := s.repos().Goals.ByID(ctx, userID, goalID)
	if err != nil {
		return nil, err
	}
	if !goal.IsDrafting() {
		return nil, progression.ErrAlreadyConfirmed
	}

	var previous []*model.PlanStep
	if regenerate {
		previous, _ = s.drafts.Get(goalID)
	}

	draft, err := s.generate(ctx, goal, previous)
	if err != nil {
		return nil, err
	}
	s.drafts.Put(goalID, draft)

	slog.Info("plan drafted", "goal_id", goalID, "regenerate", regenerate, "steps", len(draft))
	return &DraftResult{Goal: goal, Draft: draft}, nil
}

// generate calls the plan collaborator and validates what it returns. Every
// failure surfaces as a generation error.
func (s *QuestService) generate(ctx context.Context, goal *model.Goal, previous []*model.PlanStep) ([]*model.PlanStep, error) {
	req := generator.PlanRequest{Title: goal.Title, Previous: previous}
	if goal.Description != nil {
		req.Description = *goal.Description
	}

	candidate, err := s.plans.GeneratePlan(ctx, req)
	if err != nil {
		slog.Warn("plan generation failed", "goal_id", goal.ID, "error", err)
		return nil, progression.NewGenerationError(err)
	}

	plan, err := progression.ValidatePlan(candidate)
	if err != nil {
		slog.Warn("generated plan rejected", "goal_id", goal.ID, "error", err)
		return nil, err
	}
	return plan, nil
}

// ConfirmDraft turns the current candidate into persisted steps and makes
// the goal active. Confirmation is final.
func (s *QuestService) ConfirmDraft(ctx context.Context, userID, goalID string) (*model.GoalDetail, error) {
	unlock := s.locks.Lock(goalID)
	defer unlock()

	var detail *model.GoalDetail
	err := db.WithTx(ctx, s.db, func(tx *sqlx.Tx) error {
		repos := repository.New(tx)

		goal, err := repos.Goals.ByID(ctx, userID, goalID)
		if err != nil {
			return err
		}
		if !goal.IsDrafting() {
			return progression.ErrAlreadyConfirmed
		}

		draft, ok := s.drafts.Get(goalID)
		if !ok || len(draft) == 0 {
			return progression.ErrNoDraft
		}

		steps := s.policy.Materialize(goal.ID, draft, func() string { return uuid.New().String() }, s.now())
		err = repos.Steps.CreateSteps(ctx, steps)
		if err != nil {
			return fmt.Errorf("failed to create steps: %w", err)
		}

		goal.Status = model.GoalStatusActive
		err = repos.Goals.Update(ctx, goal)
		if err != nil {
			return fmt.Errorf("failed to activate goal: %w", err)
		}

		detail = &model.GoalDetail{Goal: goal, Steps: steps}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.drafts.Delete(goalID)
	slog.Info("quest confirmed", "goal_id", goalID, "steps", len(detail.Steps))
	return detail, nil
}

func (s *QuestService) Goals(ctx context.Context, userID string) ([]*model.Goal, error) {
	return s.repos().Goals.Goals(ctx, userID, repository.GoalFilterAll)
}

func (s *QuestService) CompletedGoals(ctx context.Context, userID string) ([]*model.Goal, error) {
	return s.repos().Goals.Goals(ctx, userID, repository.GoalFilterCompleted)
}

// Detail returns a goal with its ordered steps and, while drafting, the
// current candidate plan.
func (s *QuestService) Detail(ctx context.Context, userID, goalID string) (*model.GoalDetail, error) {
	repos := s.repos()

	goal, err := repos.Goals.ByID(ctx, userID, goalID)
	if err != nil {
		return nil, err
	}

	steps, err := repos.Steps.Steps(ctx, goalID)
	if err != nil {
		return nil, err
	}

	detail := &model.GoalDetail{Goal: goal, Steps: steps}
	if goal.IsDrafting() {
		if draft, ok := s.drafts.Get(goalID); ok {
			detail.Draft = draft
		}
	}
	return detail, nil
}

// stepTx loads an owned goal, the requested step and its siblings inside a
// transaction and hands them to fn.
func (s *QuestService) stepTx(ctx context.Context, userID, goalID, stepID string, fn func(repos *repository.Repositories, goal *model.Goal, steps []*model.Step, step *model.Step) error) error {
	return db.WithTx(ctx, s.db, func(tx *sqlx.Tx) error {
		repos := repository.New(tx)

		goal, err := repos.Goals.ByID(ctx, userID, goalID)
		if err != nil {
			return err
		}

		step, err := repos.Steps.ByID(ctx, goalID, stepID)
		if err != nil {
			return err
		}

		steps, err := repos.Steps.Steps(ctx, goalID)
		if err != nil {
			return err
		}

		return fn(repos, goal, steps, step)
	})
}

func (s *QuestService) Start(ctx context.Context, userID, goalID, stepID string) (*StepResult, error) {
	unlock := s.locks.Lock(goalID)
	defer unlock()

	result := &StepResult{}
	err := s.stepTx(ctx, userID, goalID, stepID, func(repos *repository.Repositories, goal *model.Goal, steps []*model.Step, step *model.Step) error {
		err := s.policy.Start(goal, steps, step, s.now())
		if err != nil {
			return err
		}

		err = repos.Steps.Update(ctx, step)
		if err != nil {
			return fmt.Errorf("failed to start step: %w", err)
		}

		result.Step = step
		result.Progress, err = progressFor(ctx, repos.XPLog, s.policy, userID)
		return err
	})
	if err != nil {
		return nil, err
	}

	slog.Info("step started", "goal_id", goalID, "step_id", stepID, "position", result.Step.Position)
	return result, nil
}

func (s *QuestService) Complete(ctx context.Context, userID, goalID, stepID string) (*StepResult, error) {
	unlock := s.locks.Lock(goalID)
	defer unlock()

	result := &StepResult{}
	err := s.stepTx(ctx, userID, goalID, stepID, func(repos *repository.Repositories, goal *model.Goal, _ []*model.Step, step *model.Step) error {
		award, err := s.policy.Complete(goal, step, s.now())
		if err != nil {
			return err
		}

		err = repos.Steps.Update(ctx, step)
		if err != nil {
			return fmt.Errorf("failed to complete step: %w", err)
		}

		err = s.appendAward(ctx, repos, userID, award)
		if err != nil {
			return err
		}

		result.Step = step
		result.XPAwarded = award.Amount
		result.Progress, err = progressFor(ctx, repos.XPLog, s.policy, userID)
		return err
	})
	if err != nil {
		return nil, err
	}

	slog.Info("step completed", "goal_id", goalID, "step_id", stepID, "xp", result.XPAwarded)
	return result, nil
}

// Reflect stores reflection text. Only the first reflection on a step earns
// the bonus; later calls edit the text.
func (s *QuestService) Reflect(ctx context.Context, userID, goalID, stepID, text string) (*StepResult, error) {
	if err := validation.ValidateReflection(text); err != nil {
		return nil, &progression.Error{Kind: progression.KindValidation, Code: "invalid_reflection", Message: err.Error()}
	}

	unlock := s.locks.Lock(goalID)
	defer unlock()

	result := &StepResult{}
	err := s.stepTx(ctx, userID, goalID, stepID, func(repos *repository.Repositories, goal *model.Goal, _ []*model.Step, step *model.Step) error {
		award, err := s.policy.Reflect(goal, step, text, s.now())
		if err != nil {
			return err
		}

		err = repos.Steps.Update(ctx, step)
		if err != nil {
			return fmt.Errorf("failed to save reflection: %w", err)
		}

		if award != nil {
			err = s.appendAward(ctx, repos, userID, award)
			if err != nil {
				return err
			}
			result.XPAwarded = award.Amount
		}

		result.Step = step
		result.Progress, err = progressFor(ctx, repos.XPLog, s.policy, userID)
		return err
	})
	if err != nil {
		return nil, err
	}

	slog.Info("step reflected", "goal_id", goalID, "step_id", stepID, "xp", result.XPAwarded)
	return result, nil
}

// Finish completes a quest whose steps are all done and awards the flat
// finish bonus. The summary is best effort: any collaborator failure falls
// back to the template summary.
func (s *QuestService) Finish(ctx context.Context, userID, goalID string) (*FinishResult, error) {
	unlock := s.locks.Lock(goalID)
	defer unlock()

	repos := s.repos()
	goal, err := repos.Goals.ByID(ctx, userID, goalID)
	if err != nil {
		return nil, err
	}
	steps, err := repos.Steps.Steps(ctx, goalID)
	if err != nil {
		return nil, err
	}

	err = s.policy.CheckFinishable(goal, steps)
	if err != nil {
		return nil, err
	}

	summary := s.summarize(ctx, goal, steps)

	result := &FinishResult{}
	err = db.WithTx(ctx, s.db, func(tx *sqlx.Tx) error {
		repos := repository.New(tx)

		goal, err := repos.Goals.ByID(ctx, userID, goalID)
		if err != nil {
			return err
		}
		steps, err := repos.Steps.Steps(ctx, goalID)
		if err != nil {
			return err
		}

		award, err := s.policy.Finish(goal, steps, &summary, s.now())
		if err != nil {
			return err
		}

		err = repos.Goals.Update(ctx, goal)
		if err != nil {
			return fmt.Errorf("failed to finish goal: %w", err)
		}

		err = s.appendAward(ctx, repos, userID, award)
		if err != nil {
			return err
		}

		result.Goal = goal
		result.BonusXP = award.Amount
		result.Progress, err = progressFor(ctx, repos.XPLog, s.policy, userID)
		return err
	})
	if err != nil {
		return nil, err
	}

	slog.Info("quest finished", "goal_id", goalID, "bonus_xp", result.BonusXP, "level", result.Progress.Level)
	return result, nil
}

func (s *QuestService) summarize(ctx context.Context, goal *model.Goal, steps []*model.Step) string {
	summary, err := s.summaries.Summarize(ctx, generator.SummaryRequest{Goal: goal, Steps: steps})
	if err != nil {
		slog.Warn("summary generation failed, using fallback", "goal_id", goal.ID, "error", err)
		return generator.FallbackSummary(goal, steps)
	}
	if strings.TrimSpace(summary) == "" {
		slog.Warn("summary generation returned nothing, using fallback", "goal_id", goal.ID)
		return generator.FallbackSummary(goal, steps)
	}
	return strings.TrimSpace(summary)
}

// Delete removes a goal and its steps. Ledger entries earned on it stay.
func (s *QuestService) Delete(ctx context.Context, userID, goalID string) error {
	unlock := s.locks.Lock(goalID)
	defer unlock()

	err := db.WithTx(ctx, s.db, func(tx *sqlx.Tx) error {
		repos := repository.New(tx)

		_, err := repos.Goals.ByID(ctx, userID, goalID)
		if err != nil {
			return err
		}

		err = repos.Steps.DeleteByGoal(ctx, goalID)
		if err != nil {
			return fmt.Errorf("failed to delete steps: %w", err)
		}
		return repos.Goals.Delete(ctx, userID, goalID)
	})
	if err != nil {
		return err
	}

	s.drafts.Delete(goalID)
	slog.Info("goal deleted", "goal_id", goalID, "user_id", userID)
	return nil
}

func (s *QuestService) appendAward(ctx context.Context, repos *repository.Repositories, userID string, award *progression.Award) error {
	entry := &model.XPLogEntry{
		ID:         uuid.New().String(),
		UserID:     userID,
		Amount:     award.Amount,
		SourceKind: award.SourceKind,
		SourceID:   award.SourceID,
		GoalID:     award.GoalID,
		CreatedAt:  s.now(),
	}

	err := repos.XPLog.Append(ctx, entry)
	if errors.Is(err, repository.ErrDuplicateXPEntry) {
		slog.Error("xp already logged for source", "source_kind", award.SourceKind, "source_id", award.SourceID)
		return err
	}
	if err != nil {
		return fmt.Errorf("failed to append xp: %w", err)
	}

	slog.Info("xp awarded", "user_id", userID, "amount", award.Amount, "source_kind", award.SourceKind, "source_id", award.SourceID)
	return nil
}
