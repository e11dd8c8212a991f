package generator

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/lifequest/lifequest/internal/model"
	"github.com/samber/lo"
	"github.com/sethvargo/go-retry"
)

const (
	chatCompletionsPath = "/v1/chat/completions"

	planTemperature    = 0.4
	summaryTemperature = 0.85
	summaryMaxTokens   = 400

	maxSummarySteps       = 12
	maxSummaryReflections = 10
	maxReflectionSnippet  = 200
)

// OpenAI talks to any OpenAI-compatible chat completions endpoint (Groq by
// default).
type OpenAI struct {
	baseURL      string
	apiKey       string
	model        string
	timeout      time.Duration
	maxAttempts  int
	retryBackoff time.Duration

	httpClient *http.Client
}

func NewOpenAI(cfg Config) (*OpenAI, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, errors.New("openai: base url required")
	}
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("openai: api key required")
	}

	modelName := strings.TrimSpace(cfg.Model)
	if modelName == "" {
		modelName = "llama-3.3-70b-versatile"
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	attempts := cfg.MaxAttempts
	if attempts <= 0 {
		attempts = 3
	}

	backoff := cfg.RetryBackoff
	if backoff <= 0 {
		backoff = 500 * time.Millisecond
	}

	tr := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}

	return &OpenAI{
		baseURL:      baseURL,
		apiKey:       strings.TrimSpace(cfg.APIKey),
		model:        modelName,
		timeout:      timeout,
		maxAttempts:  attempts,
		retryBackoff: backoff,
		httpClient:   &http.Client{Transport: tr},
	}, nil
}

// NewOpenAIWithHTTPClient is intended for tests; it avoids network access by
// using a custom RoundTripper.
func NewOpenAIWithHTTPClient(cfg Config, httpClient *http.Client) (*OpenAI, error) {
	o, err := NewOpenAI(cfg)
	if err != nil {
		return nil, err
	}
	if httpClient != nil {
		o.httpClient = httpClient
	}
	return o, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content,omitempty"`
		} `json:"message,omitempty"`
		Text string `json:"text,omitempty"`
	} `json:"choices"`
}

// planItem is the loose shape models return. Position and time may arrive as
// floats or be missing entirely.
type planItem struct {
	Position         any      `json:"position"`
	Title            string   `json:"title"`
	Description      string   `json:"description"`
	Difficulty       string   `json:"difficulty"`
	EstTimeMinutes   float64  `json:"est_time_minutes"`
	Substeps         []string `json:"substeps"`
	ReflectionPrompt *string  `json:"reflection_prompt"`
}

func (o *OpenAI) GeneratePlan(ctx context.Context, req PlanRequest) ([]*model.PlanStep, error) {
	messages := []chatMessage{
		{Role: "system", Content: planSystemPrompt},
		{Role: "user", Content: planUserPrompt(req)},
	}

	var plan []*model.PlanStep
	err := o.withRetry(ctx, func(ctx context.Context) error {
		text, err := o.complete(ctx, messages, planTemperature, 0)
		if err != nil {
			return err
		}
		plan, err = parsePlan(text)
		if err != nil {
			return transient(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.Info("plan generated", "provider", ProviderOpenAI, "steps", len(plan))
	return plan, nil
}

func (o *OpenAI) Summarize(ctx context.Context, req SummaryRequest) (string, error) {
	messages := []chatMessage{
		{Role: "system", Content: summarySystemPrompt},
		{Role: "user", Content: summaryUserPrompt(req)},
	}

	var summary string
	err := o.withRetry(ctx, func(ctx context.Context) error {
		text, err := o.complete(ctx, messages, summaryTemperature, summaryMaxTokens)
		if err != nil {
			return err
		}
		summary = strings.TrimSpace(text)
		return nil
	})
	return summary, err
}

// withRetry runs fn with exponential backoff, repeating only transient
// failures. The timeout bounds the whole call, retries and backoff included.
func (o *OpenAI) withRetry(ctx context.Context, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	b := retry.NewExponential(o.retryBackoff)
	b = retry.WithCappedDuration(10*time.Second, b)
	b = retry.WithMaxRetries(uint64(o.maxAttempts-1), b)

	attempt := 0
	return retry.Do(ctx, b, func(ctx context.Context) error {
		attempt++
		err := fn(ctx)
		if err == nil {
			return nil
		}
		if IsTransient(err) {
			slog.Warn("generator call failed, retrying", "attempt", attempt, "max_attempts", o.maxAttempts, "error", err)
			return retry.RetryableError(err)
		}
		return err
	})
}

func (o *OpenAI) complete(ctx context.Context, messages []chatMessage, temperature float64, maxTokens int) (string, error) {
	reqBody := chatCompletionRequest{
		Model:       o.model,
		Messages:    messages,
		Temperature: temperature,
		MaxTokens:   maxTokens,
	}

	var resp chatCompletionResponse
	if err := o.doJSON(ctx, http.MethodPost, chatCompletionsPath, reqBody, &resp); err != nil {
		return "", err
	}

	text := extractChatText(resp)
	if strings.TrimSpace(text) == "" {
		return "", transient(errors.New("empty upstream completion"))
	}
	return text, nil
}

func (o *OpenAI) doJSON(ctx context.Context, method, path string, body any, out any) error {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, method, o.baseURL+path, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+o.apiKey)

	resp, err := o.httpClient.Do(req)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return transient(err)
		}
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return transient(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &HTTPError{StatusCode: resp.StatusCode, Body: string(raw)}
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode upstream response: %w", err)
	}
	return nil
}

func extractChatText(resp chatCompletionResponse) string {
	for _, c := range resp.Choices {
		if c.Message.Content != "" {
			return c.Message.Content
		}
		if c.Text != "" {
			return c.Text
		}
	}
	return ""
}

// parsePlan decodes a model reply into candidate steps. Structural checks
// beyond "is a JSON array of objects" are left to plan validation.
func parsePlan(text string) ([]*model.PlanStep, error) {
	raw := extractJSONArray(text)
	if raw == "" {
		return nil, errors.New("model reply contained no JSON array")
	}

	var items []*planItem
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, fmt.Errorf("model reply was not a JSON list of steps: %w", err)
	}

	plan := make([]*model.PlanStep, 0, len(items))
	for i, it := range items {
		if it == nil {
			return nil, fmt.Errorf("step %d was not an object", i+1)
		}
		ps := &model.PlanStep{
			Position:       positionOf(it.Position),
			Title:          it.Title,
			Description:    it.Description,
			Difficulty:     model.Difficulty(it.Difficulty),
			EstTimeMinutes: int(math.Round(it.EstTimeMinutes)),
			Substeps:       it.Substeps,
		}
		if it.ReflectionPrompt != nil {
			ps.ReflectionPrompt = *it.ReflectionPrompt
		}
		plan = append(plan, ps)
	}
	return plan, nil
}

// positionOf returns 0 for anything that is not a positive whole number, so
// validation falls back to list order.
func positionOf(v any) int {
	f, ok := v.(float64)
	if !ok || f <= 0 || f != math.Trunc(f) {
		return 0
	}
	return int(f)
}

func summarySnippets(steps []*model.Step) (titles []string, reflections []string) {
	titles = lo.Map(lo.Slice(steps, 0, maxSummarySteps), func(s *model.Step, _ int) string { return s.Title })

	for _, s := range steps {
		if len(reflections) == maxSummaryReflections {
			break
		}
		if s.ReflectionText == nil {
			continue
		}
		t := strings.ReplaceAll(strings.TrimSpace(*s.ReflectionText), "\n", " ")
		if t == "" {
			continue
		}
		if r := []rune(t); len(r) > maxReflectionSnippet {
			t = string(r[:maxReflectionSnippet-3]) + "..."
		}
		reflections = append(reflections, t)
	}
	return titles, reflections
}
