// Package generator holds the collaborators that produce candidate quest
// plans and completion summaries.
package generator

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/lifequest/lifequest/internal/model"
)

const (
	ProviderMock   = "mock"
	ProviderOpenAI = "openai"
)

// PlanRequest describes the goal a plan is generated for. Previous carries
// the discarded candidate when regenerating.
type PlanRequest struct {
	Title       string
	Description string
	Previous    []*model.PlanStep
}

// SummaryRequest carries a finished goal and its completed steps.
type SummaryRequest struct {
	Goal  *model.Goal
	Steps []*model.Step
}

// PlanGenerator returns a candidate plan. The candidate is not trusted:
// callers validate it before offering it to the user.
type PlanGenerator interface {
	GeneratePlan(ctx context.Context, req PlanRequest) ([]*model.PlanStep, error)
}

// SummaryGenerator writes a short completion summary for a finished goal.
type SummaryGenerator interface {
	Summarize(ctx context.Context, req SummaryRequest) (string, error)
}

// Generator is implemented by every provider.
type Generator interface {
	PlanGenerator
	SummaryGenerator
}

type Config struct {
	Provider     string
	BaseURL      string
	APIKey       string
	Model        string
	Timeout      time.Duration
	MaxAttempts  int
	RetryBackoff time.Duration
}

// ResolveProvider picks the provider name, preferring openai when an API key
// is configured and no provider was named.
func (c Config) ResolveProvider() string {
	p := strings.ToLower(strings.TrimSpace(c.Provider))
	if p == "" {
		if strings.TrimSpace(c.APIKey) != "" {
			return ProviderOpenAI
		}
		return ProviderMock
	}
	return p
}

// New builds the configured provider.
func New(cfg Config) (Generator, error) {
	provider := cfg.ResolveProvider()
	slog.Info("generator provider selected", "provider", provider, "model", cfg.Model)

	switch provider {
	case ProviderMock:
		return NewMock(), nil
	case ProviderOpenAI:
		return NewOpenAI(cfg)
	default:
		return nil, fmt.Errorf("unknown generator provider %q", cfg.Provider)
	}
}
