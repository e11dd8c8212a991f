package routes_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/lifequest/lifequest/internal/app"
	"github.com/lifequest/lifequest/internal/config"
	"github.com/lifequest/lifequest/internal/db/dbtest"
	"github.com/lifequest/lifequest/internal/generator"
	"github.com/lifequest/lifequest/internal/handler"
	"github.com/lifequest/lifequest/internal/model"
	"github.com/lifequest/lifequest/internal/progression"
	"github.com/lifequest/lifequest/internal/routes"
	"github.com/lifequest/lifequest/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServer(t *testing.T) http.Handler {
	t.Helper()

	defaults := progression.DefaultPolicy()
	cfg := &config.Config{
		AppEnv:               "development",
		JWTSecret:            "test-secret",
		JWTExpiry:            time.Hour,
		QuestFinishBonusXP:   defaults.FinishBonusXP,
		ReflectionMinMinutes: defaults.ReflectionMinMinutes,
	}
	return routes.SetupRoutes(app.NewWithDB(cfg, dbtest.New(t), generator.NewMock()))
}

func do(t *testing.T, h http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func signupAndLogin(t *testing.T, h http.Handler, email string) string {
	t.Helper()

	rec := do(t, h, http.MethodPost, "/signup", "", map[string]string{
		"email":        email,
		"password":     "supersecret123",
		"display_name": "Quest Tester",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.NotContains(t, rec.Body.String(), "password")

	rec = do(t, h, http.MethodPost, "/login", "", map[string]string{
		"email":    email,
		"password": "supersecret123",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	tok := decode[map[string]string](t, rec)
	assert.Equal(t, "bearer", tok["token_type"])
	require.NotEmpty(t, tok["access_token"])
	return tok["access_token"]
}

func TestHealth(t *testing.T) {
	rec := do(t, newServer(t), http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthFlow(t *testing.T) {
	h := newServer(t)
	token := signupAndLogin(t, h, "flow@example.com")

	rec := do(t, h, http.MethodGet, "/me", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	me := decode[model.User](t, rec)
	assert.Equal(t, "flow@example.com", me.Email)

	rec = do(t, h, http.MethodPost, "/signup", "", map[string]string{
		"email":    "flow@example.com",
		"password": "supersecret123",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "email_registered", decode[handler.ErrorResponse](t, rec).Error)

	rec = do(t, h, http.MethodPost, "/login", "", map[string]string{
		"email":    "flow@example.com",
		"password": "wrong-password-1",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	h := newServer(t)

	rec := do(t, h, http.MethodGet, "/goals", "", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	body := decode[handler.ErrorResponse](t, rec)
	assert.Equal(t, "unauthorized", body.Error)
	assert.Equal(t, "/goals", body.Path)

	rec = do(t, h, http.MethodGet, "/xp/summary", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthRateLimit(t *testing.T) {
	h := newServer(t)

	creds := map[string]string{"email": "nobody@example.com", "password": "supersecret123"}
	for range 5 {
		rec := do(t, h, http.MethodPost, "/login", "", creds)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	}

	rec := do(t, h, http.MethodPost, "/login", "", creds)
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "rate_limited", decode[handler.ErrorResponse](t, rec).Error)
}

func TestQuestLifecycle(t *testing.T) {
	h := newServer(t)
	token := signupAndLogin(t, h, "quest@example.com")

	rec := do(t, h, http.MethodPost, "/goals", token, map[string]string{"title": "  "})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "title_required", decode[handler.ErrorResponse](t, rec).Error)

	rec = do(t, h, http.MethodPost, "/goals", token, map[string]string{
		"title":       "Learn to juggle",
		"description": "Three balls for a minute",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	goal := decode[model.Goal](t, rec)
	assert.Equal(t, model.GoalStatusDrafting, goal.Status)
	goalPath := "/goals/" + goal.ID

	rec = do(t, h, http.MethodPost, goalPath+"/confirm", token, nil)
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "no_draft", decode[handler.ErrorResponse](t, rec).Error)

	rec = do(t, h, http.MethodPost, goalPath+"/generate", token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	draft := decode[service.DraftResult](t, rec)
	require.Len(t, draft.Draft, 5)

	rec = do(t, h, http.MethodPost, goalPath+"/regenerate", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodGet, goalPath, token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[model.GoalDetail](t, rec).Draft, 5)

	rec = do(t, h, http.MethodPost, goalPath+"/confirm", token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	detail := decode[model.GoalDetail](t, rec)
	assert.Equal(t, model.GoalStatusActive, detail.Status)
	require.Len(t, detail.Steps, 5)
	assert.Empty(t, detail.Draft)

	rec = do(t, h, http.MethodPost, goalPath+"/regenerate", token, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	first := detail.Steps[0]
	second := detail.Steps[1]
	stepPath := goalPath + "/steps/"

	rec = do(t, h, http.MethodPost, stepPath+second.ID+"/start", token, nil)
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "sequence", decode[handler.ErrorResponse](t, rec).Error)

	rec = do(t, h, http.MethodPost, stepPath+first.ID+"/complete", token, nil)
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "not_started", decode[handler.ErrorResponse](t, rec).Error)

	rec = do(t, h, http.MethodPost, stepPath+first.ID+"/start", token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(t, h, http.MethodPost, stepPath+first.ID+"/complete", token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	completed := decode[service.StepResult](t, rec)
	assert.True(t, completed.Step.IsCompleted)
	assert.Equal(t, 10, completed.XPAwarded)
	assert.Equal(t, int64(10), completed.Progress.TotalXP)

	rec = do(t, h, http.MethodPost, stepPath+first.ID+"/reflect", token, map[string]string{"text": "   "})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "empty_reflection", decode[handler.ErrorResponse](t, rec).Error)

	rec = do(t, h, http.MethodPost, stepPath+first.ID+"/reflect", token, map[string]string{"text": "Juggling is about rhythm"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, 5, decode[service.StepResult](t, rec).XPAwarded)

	rec = do(t, h, http.MethodPost, goalPath+"/finish", token, nil)
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "incomplete_steps", decode[handler.ErrorResponse](t, rec).Error)

	rec = do(t, h, http.MethodGet, "/xp/summary", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	summary := decode[progression.Progress](t, rec)
	assert.Equal(t, 1, summary.Level)
	assert.Equal(t, int64(15), summary.TotalXP)
	assert.Equal(t, int64(100), summary.NextLevelXP)

	rec = do(t, h, http.MethodGet, "/xp/logs", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]*model.XPLogEntry](t, rec), 2)

	rec = do(t, h, http.MethodDelete, goalPath, token, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, h, http.MethodGet, goalPath, token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, h, http.MethodGet, "/xp/summary", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(15), decode[progression.Progress](t, rec).TotalXP)
}

func TestFinishQuest(t *testing.T) {
	h := newServer(t)
	token := signupAndLogin(t, h, "finisher@example.com")

	rec := do(t, h, http.MethodPost, "/goals", token, map[string]any{"title": "Run a 5k", "generate": true})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	draft := decode[service.DraftResult](t, rec)
	require.Len(t, draft.Draft, 5)
	goalPath := "/goals/" + draft.Goal.ID

	rec = do(t, h, http.MethodPost, goalPath+"/confirm", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	detail := decode[model.GoalDetail](t, rec)

	for _, step := range detail.Steps {
		rec = do(t, h, http.MethodPost, goalPath+"/steps/"+step.ID+"/start", token, nil)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		rec = do(t, h, http.MethodPost, goalPath+"/steps/"+step.ID+"/complete", token, nil)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	}

	rec = do(t, h, http.MethodPost, goalPath+"/finish", token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	finished := decode[service.FinishResult](t, rec)
	assert.Equal(t, 25, finished.BonusXP)
	assert.Equal(t, model.GoalStatusCompleted, finished.Goal.Status)
	require.NotNil(t, finished.Goal.CompletionSummary)
	assert.Contains(t, *finished.Goal.CompletionSummary, "Run a 5k")

	rec = do(t, h, http.MethodPost, goalPath+"/finish", token, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(t, h, http.MethodGet, "/goals/completed", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	completed := decode[[]*model.Goal](t, rec)
	require.Len(t, completed, 1)
	assert.Equal(t, draft.Goal.ID, completed[0].ID)
}

func TestGoalsAreOwnerScoped(t *testing.T) {
	h := newServer(t)
	alice := signupAndLogin(t, h, "alice@example.com")

	rec := do(t, h, http.MethodPost, "/goals", alice, map[string]string{"title": "Private quest"})
	require.Equal(t, http.StatusCreated, rec.Code)
	goal := decode[model.Goal](t, rec)

	// A second account exceeds the per-IP auth budget, so mint its token directly.
	rec = do(t, h, http.MethodPost, "/signup", "", map[string]string{"email": "bob@example.com", "password": "supersecret123"})
	require.Equal(t, http.StatusCreated, rec.Code)
	bob := decode[model.User](t, rec)
	bobToken, err := service.NewAuthService(nil, "test-secret", time.Hour).GenerateJWT(&bob)
	require.NoError(t, err)

	rec = do(t, h, http.MethodGet, "/goals/"+goal.ID, bobToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, h, http.MethodDelete, "/goals/"+goal.ID, bobToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, h, http.MethodGet, "/goals", bobToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[[]*model.Goal](t, rec))
}

func TestMalformedBody(t *testing.T) {
	h := newServer(t)

	req := httptest.NewRequest(http.MethodPost, "/signup", bytes.NewBufferString("{not json"))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_body", decode[handler.ErrorResponse](t, rec).Error)
}
