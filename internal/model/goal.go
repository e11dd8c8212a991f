package model

import (
	"time"
)

const (
	GoalStatusDrafting  = "drafting"
	GoalStatusActive    = "active"
	GoalStatusCompleted = "completed"
)

type Goal struct {
	ID                string     `db:"id" json:"id"`
	UserID            string     `db:"user_id" json:"user_id"`
	Title             string     `db:"title" json:"title"`
	Description       *string    `db:"description" json:"description"`
	Status            string     `db:"status" json:"status"`
	CompletionSummary *string    `db:"completion_summary" json:"completion_summary"`
	CompletedAt       *time.Time `db:"completed_at" json:"completed_at"`
	CreatedAt         time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time  `db:"updated_at" json:"updated_at"`
}

func (g *Goal) IsDrafting() bool {
	return g.Status == GoalStatusDrafting
}

func (g *Goal) IsCompleted() bool {
	return g.Status == GoalStatusCompleted || g.CompletedAt != nil
}

// GoalDetail is a goal with its ordered steps and, while drafting, the
// candidate plan that has not been confirmed yet.
type GoalDetail struct {
	*Goal
	Steps []*Step     `json:"steps"`
	Draft []*PlanStep `json:"draft,omitempty"`
}
