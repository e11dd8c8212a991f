package progression

import (
	"sort"
	"strings"
	"time"

	"github.com/lifequest/lifequest/internal/model"
)

// ValidatePlan checks a generator candidate and returns a normalized copy.
// Any invalid entry rejects the whole plan. Entries are ordered by the
// position the generator gave (falling back to their index when missing)
// and then renumbered densely from 1.
func ValidatePlan(candidate []*model.PlanStep) ([]*model.PlanStep, error) {
	if len(candidate) == 0 {
		return nil, invalidPlan("plan has no steps")
	}

	type ranked struct {
		rank int
		step *model.PlanStep
	}
	items := make([]ranked, 0, len(candidate))

	for i, in := range candidate {
		idx := i + 1
		if in == nil {
			return nil, invalidPlan("step %d is empty", idx)
		}
		title := strings.TrimSpace(in.Title)
		if title == "" {
			return nil, invalidPlan("step %d has no title", idx)
		}
		difficulty, ok := model.ParseDifficulty(string(in.Difficulty))
		if !ok {
			return nil, invalidPlan("step %d has invalid difficulty %q", idx, in.Difficulty)
		}
		if in.EstTimeMinutes < 0 {
			return nil, invalidPlan("step %d has negative time estimate", idx)
		}

		substeps := make([]string, 0, len(in.Substeps))
		for _, s := range in.Substeps {
			if s = strings.TrimSpace(s); s != "" {
				substeps = append(substeps, s)
			}
		}

		rank := in.Position
		if rank <= 0 {
			rank = idx
		}
		items = append(items, ranked{
			rank: rank,
			step: &model.PlanStep{
				Title:            title,
				Description:      strings.TrimSpace(in.Description),
				Difficulty:       difficulty,
				EstTimeMinutes:   in.EstTimeMinutes,
				Substeps:         substeps,
				ReflectionPrompt: strings.TrimSpace(in.ReflectionPrompt),
			},
		})
	}

	sort.SliceStable(items, func(i, j int) bool { return items[i].rank < items[j].rank })

	out := make([]*model.PlanStep, len(items))
	for i, it := range items {
		it.step.Position = i + 1
		out[i] = it.step
	}
	return out, nil
}

// Materialize turns a validated plan into step rows for goalID, freezing
// reflection eligibility and prompts.
func (p Policy) Materialize(goalID string, plan []*model.PlanStep, newID func() string, now time.Time) []*model.Step {
	steps := make([]*model.Step, 0, len(plan))
	for i, ps := range plan {
		steps = append(steps, &model.Step{
			ID:                 newID(),
			GoalID:             goalID,
			Position:           i + 1,
			Title:              ps.Title,
			Description:        ps.Description,
			Substeps:           model.StringList(ps.Substeps),
			Difficulty:         ps.Difficulty,
			EstTimeMinutes:     ps.EstTimeMinutes,
			ReflectionRequired: p.RequiresReflection(ps),
			ReflectionPrompt:   p.ReflectionPrompt(ps),
			CreatedAt:          now,
		})
	}
	return steps
}
