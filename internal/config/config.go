package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/lifequest/lifequest/internal/generator"
	"github.com/lifequest/lifequest/internal/progression"
)

type Config struct {
	// Application
	AppName string
	AppEnv  string
	Port    string

	// Database (optional driver switch via ENV, default: sqlite)
	DBDriver     string
	DBConnection string

	// Security
	JWTSecret string
	JWTExpiry time.Duration

	// Observability (optional)
	SentryDSN string

	// Plan and summary generation
	AIProvider    string // "mock" or "openai"; empty picks openai when a key is set
	AIBaseURL     string
	AIAPIKey      string
	AIModel       string
	AITimeout     time.Duration
	AIMaxAttempts int

	// Progression policy overrides
	QuestFinishBonusXP   int
	ReflectionMinMinutes int
}

func Load() *Config {
	// Load .env file if it exists
	err := godotenv.Load()
	if err != nil {
		slog.Info("no .env file found, using environment variables")
	}

	defaults := progression.DefaultPolicy()

	cfg := &Config{
		// Application
		AppName: envString("APP_NAME", "LifeQuest"),
		AppEnv:  envRequired("APP_ENV"), // Required: 'development' or 'production'
		Port:    envString("PORT", "8090"),

		// Database
		DBDriver:     envString("DB_DRIVER", "sqlite"),
		DBConnection: envString("DB_CONNECTION", "./data/lifequest.db?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"),

		// Security
		JWTSecret: envRequired("JWT_SECRET"),
		JWTExpiry: envDuration("JWT_EXPIRY", 168*time.Hour), // 7 days

		// Observability
		SentryDSN: envString("SENTRY_DSN", ""),

		// Generation (Groq's OpenAI-compatible endpoint by default)
		AIProvider:    envString("AI_PROVIDER", ""),
		AIBaseURL:     envString("AI_BASE_URL", "https://api.groq.com/openai"),
		AIAPIKey:      envString("AI_API_KEY", ""),
		AIModel:       envString("AI_MODEL", "llama-3.3-70b-versatile"),
		AITimeout:     envDuration("AI_TIMEOUT", 60*time.Second),
		AIMaxAttempts: envInt("AI_MAX_ATTEMPTS", 3),

		// Progression
		QuestFinishBonusXP:   envInt("QUEST_FINISH_BONUS_XP", defaults.FinishBonusXP),
		ReflectionMinMinutes: envInt("REFLECTION_MIN_MINUTES", defaults.ReflectionMinMinutes),
	}

	if cfg.IsProduction() {
		validateProduction(cfg)
	}

	return cfg
}

// validateProduction ensures production deployments do not silently run on
// the mock plan generator.
func validateProduction(cfg *Config) {
	if cfg.Generator().ResolveProvider() == generator.ProviderOpenAI && cfg.AIAPIKey == "" {
		slog.Error("production deployment with AI_PROVIDER=openai requires AI_API_KEY")
		os.Exit(1)
	}
	if cfg.Generator().ResolveProvider() == generator.ProviderMock {
		slog.Warn("production deployment is using the mock plan generator",
			"hint", "set AI_API_KEY to use a real model")
	}
}

// Policy returns the default progression policy with the configured
// overrides applied.
func (c *Config) Policy() progression.Policy {
	p := progression.DefaultPolicy()
	if c.QuestFinishBonusXP >= 0 {
		p.FinishBonusXP = c.QuestFinishBonusXP
	}
	if c.ReflectionMinMinutes > 0 {
		p.ReflectionMinMinutes = c.ReflectionMinMinutes
	}
	return p
}

func (c *Config) Generator() generator.Config {
	return generator.Config{
		Provider:    c.AIProvider,
		BaseURL:     c.AIBaseURL,
		APIKey:      c.AIAPIKey,
		Model:       c.AIModel,
		Timeout:     c.AITimeout,
		MaxAttempts: c.AIMaxAttempts,
	}
}

func envString(key, def string) string {
	value := os.Getenv(key)
	if value == "" {
		value = def
	}
	return value
}

func envInt(key string, def int) int {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		slog.Warn("config invalid int, using default", "key", key, "value", v, "default", def)
		return def
	}
	return i
}

func envDuration(key string, def time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		slog.Warn("config invalid duration, using default", "key", key, "value", v, "default", def)
		return def
	}
	return d
}

func envRequired(key string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	slog.Error("config required env var missing", "key", key)
	os.Exit(1)
	return ""
}

func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}
