package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NelaStaffing/hardware-store-bot/core"
)

func newTestClient(url string, retries int) *OpenAIClient {
	return NewOpenAIClientWithConfig(ClientConfig{
		APIKey:     "sk-test",
		BaseURL:    url,
		Timeout:    5,
		MaxRetries: retries,
	})
}

const toolCallResponse = `{
	"choices": [{
		"message": {
			"role": "assistant",
			"content": null,
			"tool_calls": [{
				"id": "call_abc",
				"type": "function",
				"function": {"name": "searchInventory", "arguments": "{\"query\":\"drill\"}"}
			}]
		},
		"finish_reason": "tool_calls"
	}],
	"usage": {"prompt_tokens": 120, "completion_tokens": 15, "total_tokens": 135}
}`

func TestChatWithToolsParsesToolCalls(t *testing.T) {
	var captured map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		w.Write([]byte(toolCallResponse))
	}))
	defer srv.Close()

	resp, err := newTestClient(srv.URL, 0).ChatWithTools(context.Background(), Request{
		System:   "be helpful",
		Messages: []core.Message{core.NewUserMessage("find a drill")},
		Tools: []core.ToolSchema{{
			Name:        "searchInventory",
			Description: "search",
			Parameters:  json.RawMessage(`{"type":"object","properties":{}}`),
		}},
	})
	require.NoError(t, err)

	require.True(t, resp.HasToolCalls())
	assert.Equal(t, "call_abc", resp.ToolCalls[0].ID)
	assert.Equal(t, "searchInventory", resp.ToolCalls[0].Name)
	assert.JSONEq(t, `{"query":"drill"}`, string(resp.ToolCalls[0].Arguments))
	assert.Equal(t, 135, resp.Usage.TotalTokens)

	assert.Equal(t, core.DefaultModel, captured["model"])
	assert.Equal(t, "auto", captured["tool_choice"])
	msgs := captured["messages"].([]any)
	require.Len(t, msgs, 2)
	assert.Equal(t, "system", msgs[0].(map[string]any)["role"])
	assert.Equal(t, "be helpful", msgs[0].(map[string]any)["content"])
	tools := captured["tools"].([]any)
	assert.Equal(t, "function", tools[0].(map[string]any)["type"])
}

func TestChatWithToolsEchoesToolRequestTurn(t *testing.T) {
	var captured struct {
		Messages []struct {
			Role       string  `json:"role"`
			Content    *string `json:"content"`
			ToolCallID string  `json:"tool_call_id"`
			ToolCalls  []struct {
				ID       string `json:"id"`
				Type     string `json:"type"`
				Function struct {
					Name      string `json:"name"`
					Arguments string `json:"arguments"`
				} `json:"function"`
			} `json:"tool_calls"`
		} `json:"messages"`
		Tools json.RawMessage `json:"tools"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"done"},"finish_reason":"stop"}]}`))
	}))
	defer srv.Close()

	calls := []core.ToolCall{{ID: "call_1", Name: "openProductDetail", Arguments: json.RawMessage(`{"id":"CD-123"}`)}}
	resp, err := newTestClient(srv.URL, 0).ChatWithTools(context.Background(), Request{
		Messages: []core.Message{
			core.NewUserMessage("details for CD-123"),
			core.NewToolRequestMessage("", calls),
			core.NewToolMessage("call_1", `{"product":{}}`),
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "done", resp.Content)
	assert.False(t, resp.HasToolCalls())

	require.Len(t, captured.Messages, 3)
	assistant := captured.Messages[1]
	assert.Equal(t, "assistant", assistant.Role)
	assert.Nil(t, assistant.Content)
	require.Len(t, assistant.ToolCalls, 1)
	assert.Equal(t, "call_1", assistant.ToolCalls[0].ID)
	assert.Equal(t, "function", assistant.ToolCalls[0].Type)
	assert.Equal(t, `{"id":"CD-123"}`, assistant.ToolCalls[0].Function.Arguments)

	assert.Equal(t, "tool", captured.Messages[2].Role)
	assert.Equal(t, "call_1", captured.Messages[2].ToolCallID)
	assert.Empty(t, captured.Tools)
}

func TestChatWithToolsRetriesServerErrors(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&hits, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"ok"}}]}`))
	}))
	defer srv.Close()

	resp, err := newTestClient(srv.URL, 2).ChatWithTools(context.Background(), Request{
		Messages: []core.Message{core.NewUserMessage("hi")},
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Content)
	assert.EqualValues(t, 3, atomic.LoadInt32(&hits))
}

func TestChatWithToolsGivesUpAfterRetries(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL, 1).ChatWithTools(context.Background(), Request{
		Messages: []core.Message{core.NewUserMessage("hi")},
	})
	assert.ErrorIs(t, err, core.ErrLLMRequest)
	assert.EqualValues(t, 2, atomic.LoadInt32(&hits))
}

func TestChatWithToolsClientErrorNotRetried(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"message":"bad key"}}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL, 3).ChatWithTools(context.Background(), Request{
		Messages: []core.Message{core.NewUserMessage("hi")},
	})
	assert.ErrorIs(t, err, core.ErrLLMRequest)
	assert.EqualValues(t, 1, atomic.LoadInt32(&hits))
}

func TestChatWithToolsNoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL, 0).ChatWithTools(context.Background(), Request{})
	assert.ErrorIs(t, err, core.ErrEmptyReply)
}
