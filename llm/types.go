package llm

import "github.com/NelaStaffing/hardware-store-bot/core"

const ToolChoiceAuto = "auto"

// Request is one chat-completions call. System is sent as the leading
// system turn ahead of Messages.
type Request struct {
	Model      string
	System     string
	Messages   []core.Message
	Tools      []core.ToolSchema
	ToolChoice string
}

type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

func (u Usage) Add(o Usage) Usage {
	return Usage{
		PromptTokens:     u.PromptTokens + o.PromptTokens,
		CompletionTokens: u.CompletionTokens + o.CompletionTokens,
		TotalTokens:      u.TotalTokens + o.TotalTokens,
	}
}

type ChatResponse struct {
	Content      string          `json:"content"`
	ToolCalls    []core.ToolCall `json:"tool_calls,omitempty"`
	FinishReason string          `json:"finish_reason,omitempty"`
	Usage        Usage           `json:"usage,omitempty"`
}

func (r *ChatResponse) HasToolCalls() bool {
	return len(r.ToolCalls) > 0
}

// Message returns the assistant turn this response represents.
func (r *ChatResponse) Message() core.Message {
	if r.HasToolCalls() {
		return core.NewToolRequestMessage(r.Content, r.ToolCalls)
	}
	return core.NewAssistantMessage(r.Content)
}
