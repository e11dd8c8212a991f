package generator

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/lifequest/lifequest/internal/model"
	"github.com/lifequest/lifequest/internal/progression"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type roundTripperFunc func(req *http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(req *http.Request) (*http.Response, error) { return f(req) }

func testConfig() Config {
	return Config{
		Provider:     ProviderOpenAI,
		BaseURL:      "http://upstream/",
		APIKey:       "test-key",
		Model:        "test-model",
		Timeout:      2 * time.Second,
		MaxAttempts:  3,
		RetryBackoff: time.Millisecond,
	}
}

func chatResponse(t *testing.T, status int, content string) *http.Response {
	t.Helper()
	var resp chatCompletionResponse
	resp.Choices = make([]struct {
		Message struct {
			Content string `json:"content,omitempty"`
		} `json:"message,omitempty"`
		Text string `json:"text,omitempty"`
	}, 1)
	resp.Choices[0].Message.Content = content

	b, err := json.Marshal(resp)
	require.NoError(t, err)
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(bytes.NewReader(b)),
	}
}

func errorResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

const fencedPlan = "```json\n" + `[
  {"position": 3, "title": "Learn basic chords", "difficulty": "Medium", "est_time_minutes": 60, "substeps": ["Practice C", "Practice G"], "reflection_prompt": "Which chord was hardest?"},
  {"position": 1, "title": "Buy a guitar", "difficulty": "easy", "est_time_minutes": 30, "reflection_prompt": null},
]` + "\n```"

func TestOpenAIGeneratePlan(t *testing.T) {
	client := &http.Client{
		Transport: roundTripperFunc(func(req *http.Request) (*http.Response, error) {
			assert.Equal(t, "/v1/chat/completions", req.URL.Path)
			assert.Equal(t, "Bearer test-key", req.Header.Get("Authorization"))

			var in chatCompletionRequest
			require.NoError(t, json.NewDecoder(req.Body).Decode(&in))
			assert.Equal(t, "test-model", in.Model)
			require.Len(t, in.Messages, 2)
			assert.Equal(t, "system", in.Messages[0].Role)
			assert.Contains(t, in.Messages[1].Content, `"Learn Guitar"`)
			assert.InDelta(t, planTemperature, in.Temperature, 0.001)

			return chatResponse(t, http.StatusOK, fencedPlan), nil
		}),
	}

	g, err := NewOpenAIWithHTTPClient(testConfig(), client)
	require.NoError(t, err)

	plan, err := g.GeneratePlan(context.Background(), PlanRequest{Title: "Learn Guitar"})
	require.NoError(t, err)
	require.Len(t, plan, 2)
	assert.Equal(t, 3, plan[0].Position)
	assert.Equal(t, model.Difficulty("Medium"), plan[0].Difficulty)
	assert.Equal(t, "Which chord was hardest?", plan[0].ReflectionPrompt)
	assert.Empty(t, plan[1].ReflectionPrompt)

	validated, err := progression.ValidatePlan(plan)
	require.NoError(t, err)
	assert.Equal(t, "Buy a guitar", validated[0].Title)
	assert.Equal(t, 1, validated[0].Position)
	assert.Equal(t, model.DifficultyMedium, validated[1].Difficulty)
}

func TestOpenAIRetriesTransientFailures(t *testing.T) {
	var calls atomic.Int32
	client := &http.Client{
		Transport: roundTripperFunc(func(req *http.Request) (*http.Response, error) {
			switch calls.Add(1) {
			case 1:
				return errorResponse(http.StatusTooManyRequests, `{"error":"rate limited"}`), nil
			case 2:
				return chatResponse(t, http.StatusOK, "Sorry, I cannot do that."), nil
			default:
				return chatResponse(t, http.StatusOK, `[{"title":"Buy a guitar","difficulty":"easy","est_time_minutes":30}]`), nil
			}
		}),
	}

	g, err := NewOpenAIWithHTTPClient(testConfig(), client)
	require.NoError(t, err)

	plan, err := g.GeneratePlan(context.Background(), PlanRequest{Title: "Learn Guitar"})
	require.NoError(t, err)
	require.Len(t, plan, 1)
	assert.Equal(t, int32(3), calls.Load())
}

func TestOpenAIDoesNotRetryFatalStatus(t *testing.T) {
	var calls atomic.Int32
	client := &http.Client{
		Transport: roundTripperFunc(func(req *http.Request) (*http.Response, error) {
			calls.Add(1)
			return errorResponse(http.StatusUnauthorized, `{"error":"bad key"}`), nil
		}),
	}

	g, err := NewOpenAIWithHTTPClient(testConfig(), client)
	require.NoError(t, err)

	_, err = g.GeneratePlan(context.Background(), PlanRequest{Title: "Learn Guitar"})
	require.Error(t, err)

	var httpErr *HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusUnauthorized, httpErr.StatusCode)
	assert.Equal(t, int32(1), calls.Load())
}

func TestOpenAIGivesUpAfterMaxAttempts(t *testing.T) {
	var calls atomic.Int32
	client := &http.Client{
		Transport: roundTripperFunc(func(req *http.Request) (*http.Response, error) {
			calls.Add(1)
			return errorResponse(http.StatusBadGateway, "upstream down"), nil
		}),
	}

	g, err := NewOpenAIWithHTTPClient(testConfig(), client)
	require.NoError(t, err)

	_, err = g.GeneratePlan(context.Background(), PlanRequest{Title: "Learn Guitar"})
	require.Error(t, err)
	assert.True(t, IsTransient(err))
	assert.Equal(t, int32(3), calls.Load())
}

func TestOpenAITimeoutBoundsWholeCall(t *testing.T) {
	var calls atomic.Int32
	client := &http.Client{
		Transport: roundTripperFunc(func(req *http.Request) (*http.Response, error) {
			calls.Add(1)
			<-req.Context().Done()
			return nil, req.Context().Err()
		}),
	}

	cfg := testConfig()
	cfg.Timeout = 100 * time.Millisecond
	g, err := NewOpenAIWithHTTPClient(cfg, client)
	require.NoError(t, err)

	start := time.Now()
	_, err = g.Summarize(context.Background(), SummaryRequest{Goal: &model.Goal{Title: "Learn Guitar"}})
	require.Error(t, err)
	assert.Less(t, time.Since(start), time.Second, "retries must share one deadline")
	assert.LessOrEqual(t, calls.Load(), int32(2))
}

func TestOpenAISummarize(t *testing.T) {
	client := &http.Client{
		Transport: roundTripperFunc(func(req *http.Request) (*http.Response, error) {
			var in chatCompletionRequest
			require.NoError(t, json.NewDecoder(req.Body).Decode(&in))
			assert.Equal(t, summaryMaxTokens, in.MaxTokens)
			assert.Contains(t, in.Messages[1].Content, "Goal title: Learn Guitar")
			assert.Contains(t, in.Messages[1].Content, "chords were tough")
			return chatResponse(t, http.StatusOK, "  Well done on finishing.  "), nil
		}),
	}

	g, err := NewOpenAIWithHTTPClient(testConfig(), client)
	require.NoError(t, err)

	text := "chords were tough"
	summary, err := g.Summarize(context.Background(), SummaryRequest{
		Goal:  &model.Goal{Title: "Learn Guitar"},
		Steps: []*model.Step{{Title: "Learn chords", ReflectionText: &text, HasReflection: true}},
	})
	require.NoError(t, err)
	assert.Equal(t, "Well done on finishing.", summary)
}

func TestNewOpenAIRequiresKey(t *testing.T) {
	cfg := testConfig()
	cfg.APIKey = ""
	_, err := NewOpenAI(cfg)
	assert.Error(t, err)
}

func TestResolveProvider(t *testing.T) {
	assert.Equal(t, ProviderMock, Config{}.ResolveProvider())
	assert.Equal(t, ProviderOpenAI, Config{APIKey: "k"}.ResolveProvider())
	assert.Equal(t, ProviderMock, Config{Provider: "MOCK", APIKey: "k"}.ResolveProvider())

	_, err := New(Config{Provider: "nope"})
	assert.Error(t, err)
}

func TestMockPlanValidates(t *testing.T) {
	plan, err := NewMock().GeneratePlan(context.Background(), PlanRequest{Title: "Learn Guitar"})
	require.NoError(t, err)

	validated, err := progression.ValidatePlan(plan)
	require.NoError(t, err)
	require.Len(t, validated, 5)
	for i, s := range validated {
		assert.Equal(t, i+1, s.Position)
	}
	assert.Contains(t, validated[0].Title, "Learn Guitar")
}

func TestFallbackSummary(t *testing.T) {
	steps := []*model.Step{
		{Difficulty: model.DifficultyEasy},
		{Difficulty: model.DifficultyMedium},
		{Difficulty: model.DifficultyHard, HasReflection: true},
	}
	got := FallbackSummary(&model.Goal{Title: "Learn Guitar"}, steps)
	assert.Equal(t,
		`You finished the quest "Learn Guitar". You moved this from idea to done over 3 quest step(s), `+
			`including 1 deeper challenge(s) and 2 lighter ones. Along the way you paused to reflect 1 time(s). `+
			`Take a moment to appreciate what you pulled off here before you jump into the next quest.`,
		got)
}

func TestExtractJSONArray(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"bare", `[{"a":1}]`, `[{"a":1}]`},
		{"fenced", "```json\n[{\"a\":1}]\n```", `[{"a":1}]`},
		{"prose", "Here you go: [1, 2,] thanks", `[1, 2]`},
		{"none", "no json here", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extractJSONArray(tt.in))
		})
	}
}
