package model

import (
	"time"
)

const (
	XPSourceStepComplete = "step_complete"
	XPSourceReflection   = "reflection"
	XPSourceQuestFinish  = "quest_finish_bonus"
)

// XPLogEntry is one append-only row of the XP ledger. GoalID is kept for
// display only; entries outlive the goal they were earned on.
type XPLogEntry struct {
	ID         string    `db:"id" json:"id"`
	UserID     string    `db:"user_id" json:"user_id"`
	Amount     int       `db:"amount" json:"amount"`
	SourceKind string    `db:"source_kind" json:"source_kind"`
	SourceID   string    `db:"source_id" json:"source_id"`
	GoalID     string    `db:"goal_id" json:"goal_id"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}
