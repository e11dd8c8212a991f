package progression

import (
	"slices"
	"strings"

	"github.com/lifequest/lifequest/internal/model"
)

// reflectionPrompts is used when a reflection-worthy step arrives without a
// usable prompt from the generator.
var reflectionPrompts = []string{
	"What did you learn while doing this step that you did not know before?",
	"What was the hardest moment, and how did you push through it?",
	"What would you do differently if you started this step over?",
	"What surprised you most about how this step went?",
	"How did your energy or motivation change while working on this?",
	"What will you change in your approach for the next step?",
}

// RequiresReflection decides whether a step draft takes a reflection.
// Titles matching a trivial prefix never do; otherwise long or non-easy
// steps do. The result is deterministic for a given draft and policy.
func (p Policy) RequiresReflection(draft *model.PlanStep) bool {
	if draft == nil {
		return false
	}
	if p.isTrivialTitle(draft.Title) {
		return false
	}
	if draft.EstTimeMinutes >= p.ReflectionMinMinutes {
		return true
	}
	return slices.Contains(p.ReflectionDifficulties, draft.Difficulty)
}

// ReflectionPrompt returns the prompt to freeze on a step at creation, or
// nil when the step does not take a reflection.
func (p Policy) ReflectionPrompt(draft *model.PlanStep) *string {
	if !p.RequiresReflection(draft) {
		return nil
	}
	prompt := strings.TrimSpace(draft.ReflectionPrompt)
	if prompt == "" {
		idx := draft.Position - 1
		if idx < 0 {
			idx = 0
		}
		prompt = reflectionPrompts[idx%len(reflectionPrompts)]
	}
	return &prompt
}
