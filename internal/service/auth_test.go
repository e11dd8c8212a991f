package service

import (
	"context"
	"testing"
	"time"

	"github.com/lifequest/lifequest/internal/db/dbtest"
	"github.com/lifequest/lifequest/internal/progression"
	"github.com/lifequest/lifequest/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthService(t *testing.T) *AuthService {
	t.Helper()
	return NewAuthService(repository.NewUserRepository(dbtest.New(t)), "test-secret", time.Hour)
}

func TestSignupAndLogin(t *testing.T) {
	s := newAuthService(t)
	ctx := context.Background()

	user, err := s.Signup(ctx, " Player@Example.com ", "supersecret123", "Test Flow User")
	require.NoError(t, err)
	assert.Equal(t, "player@example.com", user.Email)
	require.NotNil(t, user.DisplayName)
	assert.Equal(t, "Test Flow User", *user.DisplayName)

	_, err = s.Signup(ctx, "player@example.com", "supersecret123", "")
	assert.ErrorIs(t, err, ErrEmailAlreadyExists)

	got, err := s.Login(ctx, "PLAYER@example.com", "supersecret123")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	_, err = s.Login(ctx, "player@example.com", "wrong-password-1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = s.Login(ctx, "nobody@example.com", "supersecret123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestSignupValidation(t *testing.T) {
	s := newAuthService(t)
	ctx := context.Background()

	_, err := s.Signup(ctx, "not-an-email", "supersecret123", "")
	assert.ErrorIs(t, err, ErrInvalidEmail)

	_, err = s.Signup(ctx, "short@example.com", "short", "")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestJWTRoundTrip(t *testing.T) {
	s := newAuthService(t)
	ctx := context.Background()

	user, err := s.Signup(ctx, "jwt@example.com", "supersecret123", "")
	require.NoError(t, err)

	token, err := s.GenerateJWT(user)
	require.NoError(t, err)

	id, err := s.UserIDFromToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, id)

	other := NewAuthService(nil, "other-secret", time.Hour)
	_, err = other.UserIDFromToken(token)
	assert.Error(t, err)

	expired := NewAuthService(nil, "test-secret", -time.Minute)
	old, err := expired.GenerateJWT(user)
	require.NoError(t, err)
	_, err = s.UserIDFromToken(old)
	assert.Error(t, err)
}

func TestSeedDemoIsIdempotent(t *testing.T) {
	database := dbtest.New(t)
	ctx := context.Background()
	policy := progression.DefaultPolicy()

	user, created, err := SeedDemo(ctx, database, policy)
	require.NoError(t, err)
	assert.True(t, created)

	again, created, err := SeedDemo(ctx, database, policy)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, user.ID, again.ID)

	goals, err := repository.NewGoalRepository(database).Goals(ctx, user.ID, repository.GoalFilterAll)
	require.NoError(t, err)
	require.Len(t, goals, 1)
	assert.Equal(t, "Learn Guitar", goals[0].Title)

	steps, err := repository.NewStepRepository(database).Steps(ctx, goals[0].ID)
	require.NoError(t, err)
	require.Len(t, steps, 2)
	assert.Equal(t, "Buy a guitar", steps[0].Title)
	assert.True(t, steps[1].ReflectionRequired)

	auth := NewAuthService(repository.NewUserRepository(database), "secret", time.Hour)
	_, err = auth.Login(ctx, DemoEmail, DemoPassword)
	assert.NoError(t, err)
}

func TestKeyedMutexSerializesPerKey(t *testing.T) {
	k := NewKeyedMutex()

	unlockA := k.Lock("a")
	unlockB := k.Lock("b")
	assert.Len(t, k.locks, 2)

	done := make(chan struct{})
	go func() {
		unlock := k.Lock("a")
		unlock()
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("second lock on the same key acquired while held")
	case <-time.After(20 * time.Millisecond):
	}

	unlockA()
	<-done
	unlockB()
	assert.Empty(t, k.locks)
}

func TestDraftStoreCopies(t *testing.T) {
	s := NewDraftStore()
	plan := scenarioPlan()
	s.Put("g", plan)

	plan[0].Title = "mutated"
	got, ok := s.Get("g")
	require.True(t, ok)
	assert.Equal(t, "Buy a guitar", got[0].Title)

	got[0].Title = "mutated again"
	again, _ := s.Get("g")
	assert.Equal(t, "Buy a guitar", again[0].Title)

	s.Delete("g")
	_, ok = s.Get("g")
	assert.False(t, ok)
}
