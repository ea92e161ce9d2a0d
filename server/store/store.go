package store

import (
	"context"
	"errors"

	"github.com/NelaStaffing/hardware-store-bot/catalog"
	"github.com/NelaStaffing/hardware-store-bot/core"
)

// ErrNotFound is returned when an entity is not found
var ErrNotFound = errors.New("not found")

// ChatMessage is one persisted line of a chat session.
type ChatMessage struct {
	ID        int64  `json:"id"`
	SessionID string `json:"session_id"`
	Sender    string `json:"sender"`
	Text      string `json:"text"`
	Timestamp int64  `json:"timestamp"`
}

// Message converts a persisted line into a model turn.
func (m ChatMessage) Message() core.Message {
	return core.Message{Role: core.RoleFromSender(m.Sender), Content: m.Text}
}

// TraceInfo represents one recorded chat turn
type TraceInfo struct {
	TraceID           string     `json:"trace_id"`
	SessionID         string     `json:"session_id"`
	Timestamp         int64      `json:"timestamp"`
	Model             string     `json:"model"`
	Input             string     `json:"input"`
	Output            string     `json:"output"`
	TotalElapsedMs    int64      `json:"total_elapsed_ms"`
	TotalInputTokens  int        `json:"total_input_tokens"`
	TotalOutputTokens int        `json:"total_output_tokens"`
	TotalToolCalls    int        `json:"total_tool_calls"`
	Tools             []string   `json:"tools"`
	Status            string     `json:"status"`
	Spans             []SpanInfo `json:"spans,omitempty"`
}

// SpanInfo represents one phase within a turn
type SpanInfo struct {
	Phase         string `json:"phase"`
	ElapsedMs     int64  `json:"elapsed_ms"`
	InputTokens   int    `json:"input_tokens"`
	OutputTokens  int    `json:"output_tokens"`
	ToolCallCount int    `json:"tool_call_count"`
	Error         string `json:"error,omitempty"`
}

// MetricsSummary contains aggregated metrics
type MetricsSummary struct {
	TotalTraces       int     `json:"total_traces"`
	TotalInputTokens  int     `json:"total_input_tokens"`
	TotalOutputTokens int     `json:"total_output_tokens"`
	TotalToolCalls    int     `json:"total_tool_calls"`
	AvgLatencyMs      float64 `json:"avg_latency_ms"`
}

// CatalogStore is the product table: the read side the resolver needs plus
// the write side used for seeding.
type CatalogStore interface {
	catalog.Querier
	Upsert(ctx context.Context, products []core.Product) (int, error)
	Count(ctx context.Context) (int, error)
}

// SessionStore persists chat sessions and their messages in order.
type SessionStore interface {
	Upsert(ctx context.Context, sessionID string) error
	Append(ctx context.Context, sessionID, sender, text string) (ChatMessage, error)
	History(ctx context.Context, sessionID string) ([]ChatMessage, error)
}

// TraceStore defines the interface for trace persistence
type TraceStore interface {
	Add(ctx context.Context, t TraceInfo) error
	Get(ctx context.Context, id string) (TraceInfo, error)
	List(ctx context.Context) ([]TraceInfo, error)
	Delete(ctx context.Context, id string) error
	Summary(ctx context.Context) (MetricsSummary, error)
}

// PreviewStore holds the SKU currently shown in the storefront preview pane.
type PreviewStore interface {
	Set(ctx context.Context, sku string) error
	Get(ctx context.Context) (string, error)
	Close() error
}
