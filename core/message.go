package core

type MessageRole string

const (
	RoleSystem    MessageRole = "system"
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
	RoleTool      MessageRole = "tool"
)

// Message is one turn of a conversation. Assistant turns may carry the tool
// invocations the model requested; tool turns carry the correlation ID of the
// invocation they answer.
type Message struct {
	Role       MessageRole `json:"role"`
	Content    string      `json:"content"`
	Name       string      `json:"name,omitempty"`
	ToolCalls  []ToolCall  `json:"tool_calls,omitempty"`
	ToolCallID string      `json:"tool_call_id,omitempty"`
}

func NewUserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

func NewAssistantMessage(content string) Message {
	return Message{Role: RoleAssistant, Content: content}
}

// NewToolRequestMessage records the assistant turn that asked for tools.
func NewToolRequestMessage(content string, calls []ToolCall) Message {
	return Message{Role: RoleAssistant, Content: content, ToolCalls: calls}
}

func NewToolMessage(toolCallID, content string) Message {
	return Message{Role: RoleTool, Content: content, ToolCallID: toolCallID}
}

// RoleFromSender maps the chat widget's sender labels onto model roles.
// Inbound history is only ever user or assistant text; any other label,
// including "system", is treated as user text so the configured system
// instruction stays the only one.
func RoleFromSender(sender string) MessageRole {
	switch sender {
	case "agent", "assistant", "bot":
		return RoleAssistant
	default:
		return RoleUser
	}
}

// SenderFromRole is the inverse of RoleFromSender for persisted history.
func SenderFromRole(role MessageRole) string {
	if role == RoleAssistant {
		return "agent"
	}
	return string(role)
}

func (m Message) HasToolCalls() bool {
	return len(m.ToolCalls) > 0
}
