// Package storebot is a chat assistant for a hardware store's catalog.
//
// Example usage:
//
//	stores, err := store.NewStores("data/storebot.db")
//	cat := storebot.NewCatalog(stores.Catalog)
//	bot, err := storebot.NewAgent(storebot.AgentConfig{
//	    Client:       storebot.NewOpenAIClient(os.Getenv("OPENAI_API_KEY")),
//	    Registry:     storebot.DefaultTools(cat),
//	    SystemPrompt: prompt.Text,
//	})
//	turn, err := bot.Respond(ctx, history, "do you have cordless drills?")
//	parts := storebot.Extract(turn.Reply.Content)
package storebot

import (
	"github.com/NelaStaffing/hardware-store-bot/agent"
	"github.com/NelaStaffing/hardware-store-bot/catalog"
	"github.com/NelaStaffing/hardware-store-bot/core"
	"github.com/NelaStaffing/hardware-store-bot/llm"
	"github.com/NelaStaffing/hardware-store-bot/reply"
	"github.com/NelaStaffing/hardware-store-bot/server"
	"github.com/NelaStaffing/hardware-store-bot/tools"
)

// Agent aliases
type (
	Agent       = agent.Agent
	AgentConfig = agent.Config
	Turn        = agent.Turn
)

// NewAgent creates an agent that answers one turn at a time.
func NewAgent(cfg AgentConfig) (*Agent, error) {
	return agent.New(cfg)
}

// Catalog aliases
type (
	Catalog = catalog.Catalog
	Querier = catalog.Querier
	Match   = catalog.Match
)

// NewCatalog wraps a product store with identifier resolution and search.
func NewCatalog(q Querier) *Catalog {
	return catalog.New(q)
}

// LLM client aliases
type (
	LLMClient    = llm.Client
	OpenAIClient = llm.OpenAIClient
	ClientConfig = llm.ClientConfig
)

// NewOpenAIClient creates a chat-completions client with default settings.
func NewOpenAIClient(apiKey string) *OpenAIClient {
	return llm.NewOpenAIClient(apiKey)
}

// Tool aliases
type (
	Tool         = tools.Tool
	ToolRegistry = tools.Registry
)

// DefaultTools registers searchInventory, openProductDetail and fileSearch.
func DefaultTools(c *Catalog) *ToolRegistry {
	return tools.Default(c)
}

// Core type aliases
type (
	Message    = core.Message
	ToolCall   = core.ToolCall
	ToolResult = core.ToolResult
	Product    = core.Product
	AgentError = core.AgentError
)

// Reply aliases
type (
	Extraction   = reply.Extraction
	ProductBlock = reply.Block
)

// Extract splits a reply into intro, product list and outro.
func Extract(text string) Extraction {
	return reply.Extract(text)
}

// Server aliases
type (
	Server       = server.Server
	ServerConfig = server.Config
)

// NewServer creates a new API server.
func NewServer(cfg ServerConfig) (*Server, error) {
	return server.New(cfg)
}
