package progression

import (
	"strings"
	"time"

	"github.com/lifequest/lifequest/internal/model"
)

// Award is an XP grant produced by a successful transition. The caller
// appends it to the ledger in the same unit of work that persists the state.
type Award struct {
	Amount     int
	SourceKind string
	SourceID   string
	GoalID     string
}

func checkGoalOpen(goal *model.Goal) error {
	if goal.IsCompleted() {
		return ErrQuestCompleted
	}
	if goal.IsDrafting() {
		return ErrNotConfirmed
	}
	return nil
}

// Start moves step from idle to started. Every lower-position sibling must
// already be completed.
func (p Policy) Start(goal *model.Goal, siblings []*model.Step, step *model.Step, now time.Time) error {
	if err := checkGoalOpen(goal); err != nil {
		return err
	}
	if step.IsStarted || step.IsCompleted {
		return ErrAlreadyStarted
	}
	for _, s := range siblings {
		if s.Position < step.Position && !s.IsCompleted {
			return ErrSequence
		}
	}

	step.IsStarted = true
	step.StartedAt = &now
	return nil
}

// Complete moves a started step to completed and returns the difficulty award.
func (p Policy) Complete(goal *model.Goal, step *model.Step, now time.Time) (*Award, error) {
	if err := checkGoalOpen(goal); err != nil {
		return nil, err
	}
	if step.IsCompleted {
		return nil, ErrAlreadyCompleted
	}
	if !step.IsStarted {
		return nil, ErrNotStarted
	}

	step.IsCompleted = true
	step.CompletedAt = &now
	return &Award{
		Amount:     p.StepXP(step.Difficulty),
		SourceKind: model.XPSourceStepComplete,
		SourceID:   step.ID,
		GoalID:     goal.ID,
	}, nil
}

// Reflect stores reflection text on a completed, reflection-worthy step.
// Only the first reflection earns the bonus; later calls replace the text
// and return a nil award.
func (p Policy) Reflect(goal *model.Goal, step *model.Step, text string, now time.Time) (*Award, error) {
	if err := checkGoalOpen(goal); err != nil {
		return nil, err
	}
	if !step.ReflectionRequired {
		return nil, ErrNotEligible
	}
	if !step.IsCompleted {
		return nil, ErrNotCompleted
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyReflection
	}

	first := !step.HasReflection
	step.HasReflection = true
	step.ReflectionText = &text
	step.ReflectedAt = &now
	if !first {
		return nil, nil
	}
	return &Award{
		Amount:     p.ReflectionBonusXP,
		SourceKind: model.XPSourceReflection,
		SourceID:   step.ID,
		GoalID:     goal.ID,
	}, nil
}

// Finish completes an active quest whose steps are all completed and returns
// the flat finish bonus.
func (p Policy) Finish(goal *model.Goal, steps []*model.Step, summary *string, now time.Time) (*Award, error) {
	if goal.IsCompleted() {
		return nil, ErrAlreadyCompleted
	}
	if goal.IsDrafting() {
		return nil, ErrNotConfirmed
	}
	if len(steps) == 0 {
		return nil, ErrIncompleteSteps
	}
	for _, s := range steps {
		if !s.IsCompleted {
			return nil, ErrIncompleteSteps
		}
	}

	goal.Status = model.GoalStatusCompleted
	goal.CompletedAt = &now
	goal.CompletionSummary = summary
	return &Award{
		Amount:     p.FinishBonusXP,
		SourceKind: model.XPSourceQuestFinish,
		SourceID:   goal.ID,
		GoalID:     goal.ID,
	}, nil
}

// CheckFinishable runs the Finish guards without mutating anything, so the
// summary collaborator is only called for quests that can actually finish.
func (p Policy) CheckFinishable(goal *model.Goal, steps []*model.Step) error {
	g := *goal
	_, err := p.Finish(&g, steps, nil, time.Time{})
	return err
}
