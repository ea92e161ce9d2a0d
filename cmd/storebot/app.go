package main

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/NelaStaffing/hardware-store-bot/agent"
	"github.com/NelaStaffing/hardware-store-bot/catalog"
	"github.com/NelaStaffing/hardware-store-bot/config"
	"github.com/NelaStaffing/hardware-store-bot/llm"
	"github.com/NelaStaffing/hardware-store-bot/server/store"
	"github.com/NelaStaffing/hardware-store-bot/tools"
)

// app holds the components shared by serve and ask.
type app struct {
	stores   *store.Stores
	catalog  *catalog.Catalog
	registry *tools.Registry
	agent    *agent.Agent
}

func newApp(cfg *config.Config) (*app, error) {
	if err := cfg.RequireLLM(); err != nil {
		return nil, err
	}

	prompt, err := config.LoadPrompt(cfg.SystemPromptFile)
	if err != nil {
		return nil, err
	}

	stores, err := store.NewStores(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("initialize stores: %w", err)
	}

	cat := catalog.New(stores.Catalog)
	registry := tools.Default(cat)
	client := llm.NewOpenAIClientWithConfig(llm.ClientConfig{
		APIKey:       cfg.OpenAIAPIKey,
		BaseURL:      cfg.OpenAIBaseURL,
		Timeout:      cfg.LLMTimeout,
		MaxRetries:   cfg.LLMMaxRetries,
		RetryBackoff: time.Second,
		DefaultModel: cfg.OpenAIModel,
	})

	bot, err := agent.New(agent.Config{
		Client:       client,
		Registry:     registry,
		Model:        cfg.OpenAIModel,
		SystemPrompt: prompt.Text,
	})
	if err != nil {
		stores.Close()
		return nil, err
	}

	log.Info().Str("component", "app").
		Str("model", cfg.OpenAIModel).
		Str("prompt_version", prompt.Version).
		Str("db", stores.Dialect()).
		Msg("assistant configured")

	return &app{
		stores:   stores,
		catalog:  cat,
		registry: registry,
		agent:    bot,
	}, nil
}

func (a *app) Close() error {
	return a.stores.Close()
}
