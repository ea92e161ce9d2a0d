// Package llm talks to an OpenAI-compatible chat-completions backend.
package llm

import (
	"context"
	"time"

	"github.com/NelaStaffing/hardware-store-bot/core"
)

// Client is the model backend the agent loop drives.
type Client interface {
	ChatWithTools(ctx context.Context, req Request) (*ChatResponse, error)
}

type ClientConfig struct {
	APIKey       string
	BaseURL      string
	Timeout      int
	MaxRetries   int
	RetryBackoff time.Duration
	DefaultModel string
}

func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		BaseURL:      DefaultBaseURL,
		Timeout:      60,
		MaxRetries:   2,
		RetryBackoff: time.Second,
		DefaultModel: core.DefaultModel,
	}
}
