package progression

import (
	"strings"

	"github.com/lifequest/lifequest/internal/model"
	"golang.org/x/text/cases"
)

// Policy holds every tunable constant of the progression rules.
// The step state machine and quest controller only read from it.
type Policy struct {
	// DifficultyXP is the XP granted when a step of that difficulty is completed.
	DifficultyXP map[model.Difficulty]int

	// ReflectionBonusXP is granted once per step, on the first accepted reflection.
	ReflectionBonusXP int

	// FinishBonusXP is the flat bonus for finishing a whole quest.
	FinishBonusXP int

	// ReflectionMinMinutes makes a step reflection-worthy on time alone.
	ReflectionMinMinutes int

	// ReflectionDifficulties makes a step reflection-worthy on difficulty alone.
	ReflectionDifficulties []model.Difficulty

	// TrivialPrefixes always disable reflection for titles starting with them.
	TrivialPrefixes []string

	// LevelStepXP scales the level curve: T(L) = LevelStepXP * L*(L-1)/2.
	LevelStepXP int64
}

func DefaultPolicy() Policy {
	return Policy{
		DifficultyXP: map[model.Difficulty]int{
			model.DifficultyEasy:   10,
			model.DifficultyMedium: 20,
			model.DifficultyHard:   40,
		},
		ReflectionBonusXP:      5,
		FinishBonusXP:          25,
		ReflectionMinMinutes:   20,
		ReflectionDifficulties: []model.Difficulty{model.DifficultyMedium, model.DifficultyHard},
		TrivialPrefixes: []string{
			"open ",
			"install ",
			"download ",
			"create folder",
			"create a folder",
			"bookmark ",
			"log in",
			"sign in",
			"sign up",
			"set up account",
		},
		LevelStepXP: 100,
	}
}

// StepXP returns the completion XP for a difficulty. Unknown difficulties earn nothing.
func (p Policy) StepXP(d model.Difficulty) int {
	return p.DifficultyXP[d]
}

func (p Policy) isTrivialTitle(title string) bool {
	folded := cases.Fold().String(strings.TrimSpace(title))
	for _, prefix := range p.TrivialPrefixes {
		if strings.HasPrefix(folded, cases.Fold().String(prefix)) {
			return true
		}
	}
	return false
}
