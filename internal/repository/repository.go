package repository

import (
	"github.com/jmoiron/sqlx"
)

// Repositories bundles every repository bound to the same connection or
// transaction.
type Repositories struct {
	Users UserRepository
	Goals GoalRepository
	Steps StepRepository
	XPLog XPLogRepository
}

func New(db sqlx.ExtContext) *Repositories {
	return &Repositories{
		Users: NewUserRepository(db),
		Goals: NewGoalRepository(db),
		Steps: NewStepRepository(db),
		XPLog: NewXPLogRepository(db),
	}
}
