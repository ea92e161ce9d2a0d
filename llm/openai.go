package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/NelaStaffing/hardware-store-bot/core"
)

const DefaultBaseURL = "https://api.openai.com/v1"

type OpenAIClient struct {
	apiKey       string
	baseURL      string
	model        string
	maxRetries   int
	retryBackoff time.Duration
	client       *http.Client
}

func NewOpenAIClient(apiKey string) *OpenAIClient {
	cfg := DefaultClientConfig()
	cfg.APIKey = apiKey
	return NewOpenAIClientWithConfig(cfg)
}

func NewOpenAIClientWithConfig(cfg ClientConfig) *OpenAIClient {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	model := cfg.DefaultModel
	if model == "" {
		model = core.DefaultModel
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60
	}
	return &OpenAIClient{
		apiKey:       cfg.APIKey,
		baseURL:      baseURL,
		model:        model,
		maxRetries:   cfg.MaxRetries,
		retryBackoff: cfg.RetryBackoff,
		client:       &http.Client{Timeout: time.Duration(timeout) * time.Second},
	}
}

func (c *OpenAIClient) ChatWithTools(ctx context.Context, req Request) (*ChatResponse, error) {
	model := req.Model
	if model == "" {
		model = c.model
	}

	reqBody := map[string]any{
		"model":    model,
		"messages": c.buildMessages(req.System, req.Messages),
	}
	if len(req.Tools) > 0 {
		reqBody["tools"] = c.buildTools(req.Tools)
		choice := req.ToolChoice
		if choice == "" {
			choice = ToolChoiceAuto
		}
		reqBody["tool_choice"] = choice
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	respBody, err := c.post(ctx, body)
	if err != nil {
		return nil, err
	}

	var result openAIResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", core.ErrLLMRequest, err)
	}
	if len(result.Choices) == 0 {
		return nil, fmt.Errorf("%w: %w", core.ErrLLMRequest, core.ErrEmptyReply)
	}

	return c.parseResponse(result), nil
}

// post sends the request, retrying network errors, 429 and 5xx with
// exponential backoff.
func (c *OpenAIClient) post(ctx context.Context, body []byte) ([]byte, error) {
	backoff := c.retryBackoff
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			log.Warn().Str("component", "llm").Int("attempt", attempt).Dur("backoff", backoff).Err(lastErr).Msg("retrying chat completion")
			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("%w: %w", core.ErrLLMRequest, ctx.Err())
			case <-time.After(backoff):
			}
			backoff *= 2
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+c.apiKey)

		resp, err := c.client.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, fmt.Errorf("%w: %w", core.ErrLLMRequest, err)
			}
			lastErr = err
			continue
		}

		respBody, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = err
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			lastErr = fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(respBody))
			continue
		}
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("%w: API error (status %d): %s", core.ErrLLMRequest, resp.StatusCode, string(respBody))
		}
		return respBody, nil
	}

	return nil, fmt.Errorf("%w: after %d retries: %v", core.ErrLLMRequest, c.maxRetries, lastErr)
}

func (c *OpenAIClient) buildMessages(system string, msgs []core.Message) []map[string]any {
	messages := make([]map[string]any, 0, len(msgs)+1)

	if system != "" {
		messages = append(messages, map[string]any{
			"role":    "system",
			"content": system,
		})
	}

	for _, m := range msgs {
		msg := map[string]any{
			"role":    string(m.Role),
			"content": m.Content,
		}
		if m.HasToolCalls() {
			msg["tool_calls"] = c.buildToolCalls(m.ToolCalls)
			if m.Content == "" {
				msg["content"] = nil
			}
		}
		if m.ToolCallID != "" {
			msg["tool_call_id"] = m.ToolCallID
		}
		if m.Name != "" && m.Role != core.RoleTool {
			msg["name"] = m.Name
		}
		messages = append(messages, msg)
	}

	return messages
}

func (c *OpenAIClient) buildToolCalls(calls []core.ToolCall) []openAIToolCall {
	out := make([]openAIToolCall, len(calls))
	for i, tc := range calls {
		args := string(tc.Arguments)
		if args == "" {
			args = "{}"
		}
		out[i] = openAIToolCall{ID: tc.ID, Type: "function"}
		out[i].Function.Name = tc.Name
		out[i].Function.Arguments = args
	}
	return out
}

func (c *OpenAIClient) buildTools(tools []core.ToolSchema) []map[string]any {
	result := make([]map[string]any, len(tools))
	for i, t := range tools {
		result[i] = map[string]any{
			"type": "function",
			"function": map[string]any{
				"name":        t.Name,
				"description": t.Description,
				"parameters":  json.RawMessage(t.Parameters),
			},
		}
	}
	return result
}

func (c *OpenAIClient) parseResponse(resp openAIResponse) *ChatResponse {
	choice := resp.Choices[0]
	result := &ChatResponse{
		Content:      choice.Message.Content,
		FinishReason: choice.FinishReason,
		Usage: Usage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		},
	}

	for _, tc := range choice.Message.ToolCalls {
		result.ToolCalls = append(result.ToolCalls, core.ToolCall{
			ID:        tc.ID,
			Name:      tc.Function.Name,
			Arguments: json.RawMessage(tc.Function.Arguments),
		})
	}

	return result
}

type openAIResponse struct {
	Choices []openAIChoice `json:"choices"`
	Usage   struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

type openAIChoice struct {
	Message      openAIMessage `json:"message"`
	FinishReason string        `json:"finish_reason"`
}

type openAIMessage struct {
	Role      string           `json:"role"`
	Content   string           `json:"content"`
	ToolCalls []openAIToolCall `json:"tool_calls,omitempty"`
}

type openAIToolCall struct {
	ID       string `json:"id"`
	Type     string `json:"type"`
	Function struct {
		Name      string `json:"name"`
		Arguments string `json:"arguments"`
	} `json:"function"`
}
