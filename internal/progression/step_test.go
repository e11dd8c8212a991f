package progression

import (
	"fmt"
	"testing"
	"time"

	"github.com/lifequest/lifequest/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func activeGoal() *model.Goal {
	return &model.Goal{ID: "goal-1", UserID: "user-1", Title: "Learn Guitar", Status: model.GoalStatusActive}
}

func makeSteps(n int) []*model.Step {
	steps := make([]*model.Step, n)
	for i := range steps {
		steps[i] = &model.Step{
			ID:         fmt.Sprintf("step-%d", i+1),
			GoalID:     "goal-1",
			Position:   i + 1,
			Title:      fmt.Sprintf("Step %d", i+1),
			Difficulty: model.DifficultyMedium,
		}
	}
	return steps
}

func TestStartEnforcesOrder(t *testing.T) {
	p := DefaultPolicy()
	now := time.Now()

	for k := 2; k <= 5; k++ {
		t.Run(fmt.Sprintf("step %d", k), func(t *testing.T) {
			goal := activeGoal()
			steps := makeSteps(5)
			// Complete everything except the immediate predecessor.
			for _, s := range steps[:k-2] {
				s.IsStarted, s.IsCompleted = true, true
			}
			err := p.Start(goal, steps, steps[k-1], now)
			assert.ErrorIs(t, err, ErrSequence)
			assert.False(t, steps[k-1].IsStarted)
		})
	}
}

func TestStartFirstStep(t *testing.T) {
	p := DefaultPolicy()
	goal := activeGoal()
	steps := makeSteps(3)

	require.NoError(t, p.Start(goal, steps, steps[0], time.Now()))
	assert.True(t, steps[0].IsStarted)
	assert.NotNil(t, steps[0].StartedAt)

	assert.ErrorIs(t, p.Start(goal, steps, steps[0], time.Now()), ErrAlreadyStarted)
}

func TestStartRequiresActiveGoal(t *testing.T) {
	p := DefaultPolicy()
	steps := makeSteps(1)

	drafting := activeGoal()
	drafting.Status = model.GoalStatusDrafting
	assert.ErrorIs(t, p.Start(drafting, steps, steps[0], time.Now()), ErrNotConfirmed)

	done := activeGoal()
	done.Status = model.GoalStatusCompleted
	assert.ErrorIs(t, p.Start(done, steps, steps[0], time.Now()), ErrQuestCompleted)
}

func TestCompleteTransitions(t *testing.T) {
	p := DefaultPolicy()
	goal := activeGoal()
	step := makeSteps(1)[0]
	step.Difficulty = model.DifficultyHard

	_, err := p.Complete(goal, step, time.Now())
	assert.ErrorIs(t, err, ErrNotStarted)

	step.IsStarted = true
	award, err := p.Complete(goal, step, time.Now())
	require.NoError(t, err)
	assert.Equal(t, &Award{Amount: 40, SourceKind: model.XPSourceStepComplete, SourceID: step.ID, GoalID: goal.ID}, award)
	assert.True(t, step.IsCompleted)
	assert.NotNil(t, step.CompletedAt)

	award, err = p.Complete(goal, step, time.Now())
	assert.ErrorIs(t, err, ErrAlreadyCompleted)
	assert.Nil(t, award)
}

func TestReflectTransitions(t *testing.T) {
	p := DefaultPolicy()
	goal := activeGoal()
	step := makeSteps(1)[0]

	_, err := p.Reflect(goal, step, "notes", time.Now())
	assert.ErrorIs(t, err, ErrNotEligible)

	step.ReflectionRequired = true
	_, err = p.Reflect(goal, step, "notes", time.Now())
	assert.ErrorIs(t, err, ErrNotCompleted)

	step.IsStarted, step.IsCompleted = true, true
	_, err = p.Reflect(goal, step, "   \n\t", time.Now())
	assert.ErrorIs(t, err, ErrEmptyReflection)
	assert.Equal(t, KindValidation, KindOf(err))
	assert.False(t, step.HasReflection)

	award, err := p.Reflect(goal, step, "  It went well  ", time.Now())
	require.NoError(t, err)
	require.NotNil(t, award)
	assert.Equal(t, 5, award.Amount)
	assert.Equal(t, model.XPSourceReflection, award.SourceKind)
	assert.Equal(t, "It went well", *step.ReflectionText)

	award, err = p.Reflect(goal, step, "Actually it was hard", time.Now())
	require.NoError(t, err)
	assert.Nil(t, award, "editing a reflection must not earn the bonus again")
	assert.Equal(t, "Actually it was hard", *step.ReflectionText)
	assert.True(t, step.HasReflection)
}

func TestFinish(t *testing.T) {
	p := DefaultPolicy()
	goal := activeGoal()
	steps := makeSteps(2)
	steps[0].IsStarted, steps[0].IsCompleted = true, true

	_, err := p.Finish(goal, steps, nil, time.Now())
	assert.ErrorIs(t, err, ErrIncompleteSteps)
	assert.Nil(t, goal.CompletedAt)

	steps[1].IsStarted, steps[1].IsCompleted = true, true
	require.NoError(t, p.CheckFinishable(goal, steps))
	assert.Equal(t, model.GoalStatusActive, goal.Status, "CheckFinishable must not mutate")

	summary := "Well done"
	award, err := p.Finish(goal, steps, &summary, time.Now())
	require.NoError(t, err)
	assert.Equal(t, 25, award.Amount)
	assert.Equal(t, model.XPSourceQuestFinish, award.SourceKind)
	assert.Equal(t, model.GoalStatusCompleted, goal.Status)
	assert.Equal(t, &summary, goal.CompletionSummary)
	completedAt := goal.CompletedAt

	_, err = p.Finish(goal, steps, nil, time.Now())
	assert.ErrorIs(t, err, ErrAlreadyCompleted)
	assert.Equal(t, completedAt, goal.CompletedAt)
}

func TestFinishDraftingGoal(t *testing.T) {
	goal := activeGoal()
	goal.Status = model.GoalStatusDrafting
	_, err := DefaultPolicy().Finish(goal, nil, nil, time.Now())
	assert.ErrorIs(t, err, ErrNotConfirmed)
}

func TestCompletedQuestFreezesSteps(t *testing.T) {
	p := DefaultPolicy()
	goal := activeGoal()
	goal.Status = model.GoalStatusCompleted
	now := time.Now()
	goal.CompletedAt = &now

	step := makeSteps(1)[0]
	step.IsStarted, step.IsCompleted, step.ReflectionRequired = true, true, true

	_, err := p.Reflect(goal, step, "late thoughts", now)
	assert.ErrorIs(t, err, ErrQuestCompleted)
	_, err = p.Complete(goal, step, now)
	assert.ErrorIs(t, err, ErrQuestCompleted)
}
