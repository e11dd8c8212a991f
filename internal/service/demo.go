package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lifequest/lifequest/internal/db"
	"github.com/lifequest/lifequest/internal/model"
	"github.com/lifequest/lifequest/internal/progression"
	"github.com/lifequest/lifequest/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

const (
	DemoEmail    = "demo@lifequest.test"
	DemoPassword = "demo123"
)

// SeedDemo creates the demo account with one confirmed quest. It does
// nothing when the account already exists. The demo password is below the
// signup minimum on purpose, so it is hashed here instead of going through
// Signup.
func SeedDemo(ctx context.Context, database *sqlx.DB, policy progression.Policy) (*model.User, bool, error) {
	existing, err := repository.NewUserRepository(database).ByEmail(ctx, DemoEmail)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, false, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(DemoPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, false, fmt.Errorf("failed to hash password: %w", err)
	}
	hashed := string(hash)
	name := "Demo User"
	description := "Practice guitar daily to play a full song in 30 days"
	now := time.Now().UTC()

	user := &model.User{
		ID:           uuid.New().String(),
		Email:        DemoEmail,
		PasswordHash: &hashed,
		DisplayName:  &name,
		CreatedAt:    now,
	}
	goal := &model.Goal{
		ID:          uuid.New().String(),
		UserID:      user.ID,
		Title:       "Learn Guitar",
		Description: &description,
		Status:      model.GoalStatusActive,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	plan := []*model.PlanStep{
		{Position: 1, Title: "Buy a guitar", Description: "Purchase an acoustic guitar from a local store", Difficulty: model.DifficultyEasy, EstTimeMinutes: 30},
		{Position: 2, Title: "Learn basic chords", Description: "Practice C, G, D chords for 30 minutes", Difficulty: model.DifficultyMedium, EstTimeMinutes: 60},
	}

	err = db.WithTx(ctx, database, func(tx *sqlx.Tx) error {
		repos := repository.New(tx)

		err := repos.Users.Create(ctx, user)
		if err != nil {
			return fmt.Errorf("failed to create demo user: %w", err)
		}
		err = repos.Goals.Create(ctx, goal)
		if err != nil {
			return fmt.Errorf("failed to create demo goal: %w", err)
		}
		steps := policy.Materialize(goal.ID, plan, func() string { return uuid.New().String() }, now)
		return repos.Steps.CreateSteps(ctx, steps)
	})
	if err != nil {
		return nil, false, err
	}

	slog.Info("demo account seeded", "user_id", user.ID, "email", DemoEmail)
	return user, true, nil
}
