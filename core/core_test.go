package core

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoleFromSender(t *testing.T) {
	cases := map[string]MessageRole{
		"user":      RoleUser,
		"agent":     RoleAssistant,
		"assistant": RoleAssistant,
		"bot":       RoleAssistant,
		"system":    RoleUser,
		"tool":      RoleUser,
		"":          RoleUser,
		"shopper":   RoleUser,
	}
	for sender, want := range cases {
		assert.Equal(t, want, RoleFromSender(sender), sender)
	}
	assert.Equal(t, "agent", SenderFromRole(RoleAssistant))
	assert.Equal(t, "user", SenderFromRole(RoleUser))
}

func TestAgentErrorUnwrap(t *testing.T) {
	err := WithContext(NewAgentError("registry.validate", "searchInventory", ErrInvalidArguments), "tool_call_id", "call_1")
	wrapped := fmt.Errorf("turn: %w", err)

	assert.ErrorIs(t, wrapped, ErrInvalidArguments)
	var ae *AgentError
	assert.True(t, errors.As(wrapped, &ae))
	assert.Equal(t, "call_1", ae.Context["tool_call_id"])
	assert.Equal(t, "registry.validate [tool=searchInventory]: invalid tool arguments", err.Error())
	assert.Equal(t, "agent.final_reply: LLM request failed", NewAgentError("agent.final_reply", "", ErrLLMRequest).Error())
}

func TestToolResultMessage(t *testing.T) {
	r := NewToolError("call_9", `{"error":"Product not found"}`)
	assert.True(t, r.IsError)
	m := r.Message()
	assert.Equal(t, RoleTool, m.Role)
	assert.Equal(t, "call_9", m.ToolCallID)
	assert.Equal(t, r.Content, m.Content)

	assert.True(t, NewToolRequestMessage("", []ToolCall{{ID: "a"}}).HasToolCalls())
	assert.False(t, NewAssistantMessage("hi").HasToolCalls())
}
