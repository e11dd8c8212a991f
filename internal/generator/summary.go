package generator

import (
	"fmt"

	"github.com/lifequest/lifequest/internal/model"
	"github.com/samber/lo"
)

// FallbackSummary is the template summary stored when no generated summary
// is available.
func FallbackSummary(goal *model.Goal, steps []*model.Step) string {
	total := len(steps)
	hard := lo.CountBy(steps, func(s *model.Step) bool { return s.Difficulty == model.DifficultyHard })
	reflections := lo.CountBy(steps, func(s *model.Step) bool { return s.HasReflection })

	title := ""
	if goal != nil {
		title = goal.Title
	}

	return fmt.Sprintf(
		"You finished the quest \"%s\". You moved this from idea to done over %d quest step(s), "+
			"including %d deeper challenge(s) and %d lighter ones. "+
			"Along the way you paused to reflect %d time(s). "+
			"Take a moment to appreciate what you pulled off here before you jump into the next quest.",
		title, total, hard, total-hard, reflections,
	)
}
