// Package config loads runtime settings from the environment and the
// versioned system prompt.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/NelaStaffing/hardware-store-bot/core"
)

const DefaultDatabaseDSN = "data/storebot.db"

// Config holds the application configuration
type Config struct {
	Port             string
	OpenAIAPIKey     string
	OpenAIModel      string
	OpenAIBaseURL    string
	LLMTimeout       int
	LLMMaxRetries    int
	DatabaseURL      string
	RedisURL         string
	SystemPromptFile string
	RateLimitPerMin  int
	RateLimitBurst   int
	TurnTimeout      time.Duration
	TrustProxy       bool
	LogLevel         string
}

// Load reads .env (if present) and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return FromEnv()
}

// FromEnv builds a Config from environment variables only.
func FromEnv() (*Config, error) {
	cfg := &Config{
		Port:             getEnv("PORT", "5000"),
		OpenAIAPIKey:     getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:      getEnv("OPENAI_MODEL", core.DefaultModel),
		OpenAIBaseURL:    getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		DatabaseURL:      getEnv("DATABASE_URL", DefaultDatabaseDSN),
		RedisURL:         getEnv("REDIS_URL", ""),
		SystemPromptFile: getEnv("SYSTEM_PROMPT_FILE", ""),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
	}

	ints := []struct {
		key      string
		fallback int
		dst      *int
	}{
		{"LLM_TIMEOUT_SECONDS", 60, &cfg.LLMTimeout},
		{"LLM_MAX_RETRIES", 2, &cfg.LLMMaxRetries},
		{"RATE_LIMIT_PER_MINUTE", 30, &cfg.RateLimitPerMin},
		{"RATE_LIMIT_BURST", 10, &cfg.RateLimitBurst},
	}
	for _, i := range ints {
		v, err := getEnvInt(i.key, i.fallback)
		if err != nil {
			return nil, err
		}
		*i.dst = v
	}

	turn, err := getEnvInt("TURN_TIMEOUT_SECONDS", 120)
	if err != nil {
		return nil, err
	}
	cfg.TurnTimeout = time.Duration(turn) * time.Second

	if cfg.TrustProxy, err = getEnvBool("TRUST_PROXY", false); err != nil {
		return nil, err
	}

	return cfg, nil
}

// RequireLLM checks the settings needed to talk to the model backend.
func (c *Config) RequireLLM() error {
	if c.OpenAIAPIKey == "" {
		return fmt.Errorf("%w: OPENAI_API_KEY is not set", core.ErrInvalidConfig)
	}
	return nil
}

// ZerologLevel maps LogLevel onto zerolog, defaulting to info.
func (c *Config) ZerologLevel() zerolog.Level {
	switch c.LogLevel {
	case "debug":
		return zerolog.DebugLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: %s must be a non-negative integer, got %q", core.ErrInvalidConfig, key, v)
	}
	return n, nil
}

func getEnvBool(key string, defaultValue bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%w: %s must be a boolean, got %q", core.ErrInvalidConfig, key, v)
	}
	return b, nil
}
