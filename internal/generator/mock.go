package generator

import (
	"context"
	"fmt"
	"strings"

	"github.com/lifequest/lifequest/internal/model"
)

// Mock returns a fixed template plan built from the goal title. It needs no
// network access and is the default when no API key is configured.
type Mock struct{}

func NewMock() *Mock {
	return &Mock{}
}

func (m *Mock) GeneratePlan(ctx context.Context, req PlanRequest) ([]*model.PlanStep, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	title := strings.TrimSpace(req.Title)

	// Positions are deliberately sparse; validation renumbers them.
	return []*model.PlanStep{
		{
			Position:         1,
			Title:            fmt.Sprintf("Clarify what '%s' means for you", title),
			Description:      fmt.Sprintf("Write a short paragraph describing what success for '%s' looks like.", title),
			Difficulty:       model.DifficultyEasy,
			EstTimeMinutes:   20,
			Substeps:         []string{"Open a notes app", "Write one sentence starting with 'I will know I succeeded when'", "List three signs of success"},
			ReflectionPrompt: "After writing your definition of success, what surprised you or felt most important?",
		},
		{
			Position:         2,
			Title:            fmt.Sprintf("Research the key requirements for '%s'", title),
			Description:      "Spend 30 to 45 minutes searching for skills, constraints and prerequisites related to this goal.",
			Difficulty:       model.DifficultyMedium,
			EstTimeMinutes:   40,
			Substeps:         []string{"Search for a beginner guide", "Note five requirements", "Mark the ones you already meet"},
			ReflectionPrompt: "What did you learn about the gap between where you are now and these requirements?",
		},
		{
			Position:       3,
			Title:          "Schedule the first concrete action",
			Description:    "Put a 60 minute block in your calendar for the first real action.",
			Difficulty:     model.DifficultyEasy,
			EstTimeMinutes: 10,
			Substeps:       []string{"Open your calendar", "Pick a slot this week", "Name the event after the action"},
		},
		{
			Position:         5,
			Title:            "Do the scheduled action",
			Description:      "Follow through and fully complete the action you scheduled.",
			Difficulty:       model.DifficultyHard,
			EstTimeMinutes:   60,
			ReflectionPrompt: "What did you notice about your energy, emotions, or resistance while doing this action?",
		},
		{
			Position:         6,
			Title:            "Review how it went and choose the next action",
			Description:      "Look back on how it went and decide on the next concrete action you will take.",
			Difficulty:       model.DifficultyEasy,
			EstTimeMinutes:   20,
			ReflectionPrompt: "What worked well, what didn't, and what will you change in your next action?",
		},
	}, nil
}

func (m *Mock) Summarize(ctx context.Context, req SummaryRequest) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return FallbackSummary(req.Goal, req.Steps), nil
}
