package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

func (d Difficulty) IsValid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	default:
		return false
	}
}

// ParseDifficulty accepts any letter case and surrounding whitespace.
func ParseDifficulty(s string) (Difficulty, bool) {
	d := Difficulty(strings.ToLower(strings.TrimSpace(s)))
	return d, d.IsValid()
}

type Step struct {
	ID                 string     `db:"id" json:"id"`
	GoalID             string     `db:"goal_id" json:"goal_id"`
	Position           int        `db:"position" json:"position"`
	Title              string     `db:"title" json:"title"`
	Description        string     `db:"description" json:"description"`
	Substeps           StringList `db:"substeps" json:"substeps"`
	Difficulty         Difficulty `db:"difficulty" json:"difficulty"`
	EstTimeMinutes     int        `db:"est_time_minutes" json:"est_time_minutes"`
	IsStarted          bool       `db:"is_started" json:"is_started"`
	StartedAt          *time.Time `db:"started_at" json:"started_at"`
	IsCompleted        bool       `db:"is_completed" json:"is_completed"`
	CompletedAt        *time.Time `db:"completed_at" json:"completed_at"`
	ReflectionRequired bool       `db:"reflection_required" json:"reflection_required"`
	ReflectionPrompt   *string    `db:"reflection_prompt" json:"reflection_prompt"`
	HasReflection      bool       `db:"has_reflection" json:"has_reflection"`
	ReflectionText     *string    `db:"reflection_text" json:"reflection_text"`
	ReflectedAt        *time.Time `db:"reflected_at" json:"reflected_at"`
	CreatedAt          time.Time  `db:"created_at" json:"created_at"`
}

// StringList is stored as a JSON array in a text column.
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(l))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (l *StringList) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*l = StringList{}
		return nil
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("scan string list: unsupported type %T", src)
	}
	if len(raw) == 0 {
		*l = StringList{}
		return nil
	}
	var out []string
	if err := json.Unmarshal(raw, &out); err != nil {
		return fmt.Errorf("scan string list: %w", err)
	}
	*l = out
	return nil
}
