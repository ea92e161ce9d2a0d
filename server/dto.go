package server

import (
	"github.com/NelaStaffing/hardware-store-bot/core"
	"github.com/NelaStaffing/hardware-store-bot/monitor"
	"github.com/NelaStaffing/hardware-store-bot/reply"
	"github.com/NelaStaffing/hardware-store-bot/server/store"
)

// Re-export types from store package
type (
	TraceInfo      = store.TraceInfo
	SpanInfo       = store.SpanInfo
	MetricsSummary = store.MetricsSummary
	ChatMessage    = store.ChatMessage
)

type ChatRequest struct {
	Message   string           `json:"message"`
	History   []HistoryMessage `json:"history,omitempty"`
	SessionID string           `json:"sessionId,omitempty"`
}

// HistoryMessage accepts both the storefront's {sender, text} shape and the
// chat-completions {role, content} shape.
type HistoryMessage struct {
	Sender  string `json:"sender,omitempty"`
	Role    string `json:"role,omitempty"`
	Text    string `json:"text,omitempty"`
	Content string `json:"content,omitempty"`
}

func (h HistoryMessage) Message() core.Message {
	role := core.RoleFromSender(h.Role)
	if h.Role == "" {
		role = core.RoleFromSender(h.Sender)
	}
	text := h.Text
	if text == "" {
		text = h.Content
	}
	return core.Message{Role: role, Content: text}
}

type ChatResponse struct {
	Reply       string       `json:"reply"`
	SessionID   string       `json:"sessionId"`
	Intro       string       `json:"intro"`
	ProductList *reply.Block `json:"productList"`
	Outro       string       `json:"outro"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type SkuRequest struct {
	SKU string `json:"sku"`
}

type PreviewResponse struct {
	Success bool   `json:"success,omitempty"`
	SKU     string `json:"sku"`
}

type ProductResponse struct {
	Product core.Product `json:"product"`
}

type SessionMessagesResponse struct {
	SessionID string        `json:"sessionId"`
	Messages  []ChatMessage `json:"messages"`
}

type TraceListResponse struct {
	Traces []TraceInfo `json:"traces"`
}

type TraceDetailResponse struct {
	Trace TraceInfo  `json:"trace"`
	Spans []SpanInfo `json:"spans"`
}

// MetricsResponse pairs the persisted trace summary with the counters of the
// running process.
type MetricsResponse struct {
	MetricsSummary
	Process monitor.Summary `json:"process"`
}
