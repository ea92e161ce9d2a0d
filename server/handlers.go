package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/NelaStaffing/hardware-store-bot/agent"
	"github.com/NelaStaffing/hardware-store-bot/core"
	"github.com/NelaStaffing/hardware-store-bot/reply"
	"github.com/NelaStaffing/hardware-store-bot/server/store"
)

const (
	msgSKURequired     = "SKU is required"
	msgProductNotFound = "Product not found"
	msgServerError     = "Server error"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte("OK"))
}

func (s *Server) handleTools(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.registry.Schemas())
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	ip := clientIP(r, s.trustProxy)
	if !s.limiter.Allow(ip) {
		log.Warn().Str("component", "server").Str("ip", ip).Msg("rate limit exceeded")
		writeJSON(w, http.StatusTooManyRequests, ChatResponse{Reply: agent.Apology})
		return
	}

	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}
	message := strings.TrimSpace(req.Message)
	if message == "" {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "message is required"})
		return
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	logger := log.With().Str("component", "server").Str("session", sessionID).Logger()

	history, err := s.history(r.Context(), req, sessionID)
	if err != nil {
		logger.Warn().Err(err).Msg("failed to load session history")
	}
	if _, err := s.sessions.Append(r.Context(), sessionID, "user", message); err != nil {
		logger.Warn().Err(err).Msg("failed to persist user message")
	}

	start := time.Now()
	ctx := r.Context()
	if s.turnTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.turnTimeout)
		defer cancel()
	}

	turn, err := s.agent.Respond(ctx, history, message)
	if err != nil {
		logger.Error().Err(err).Msg("chat turn failed")
		s.record(r.Context(), turnTrace(sessionID, s.model, message, "", start, turn, err), turn, true)
		writeJSON(w, http.StatusInternalServerError, ChatResponse{Reply: agent.UserMessage(err), SessionID: sessionID})
		return
	}

	text := turn.Reply.Content
	if id, ok := reply.ParseToolDirective(text); ok {
		text = s.productDetails(r.Context(), id)
	}

	if _, err := s.sessions.Append(r.Context(), sessionID, core.SenderFromRole(core.RoleAssistant), text); err != nil {
		logger.Warn().Err(err).Msg("failed to persist agent reply")
	}
	s.record(r.Context(), turnTrace(sessionID, s.model, message, text, start, turn, nil), turn, false)

	ext := reply.Extract(text)
	writeJSON(w, http.StatusOK, ChatResponse{
		Reply:       text,
		SessionID:   sessionID,
		Intro:       ext.Intro,
		ProductList: ext.Block,
		Outro:       ext.Outro,
	})
}

// history prefers the client-supplied transcript and falls back to the
// persisted one for the session.
func (s *Server) history(ctx context.Context, req ChatRequest, sessionID string) ([]core.Message, error) {
	if len(req.History) > 0 {
		out := make([]core.Message, 0, len(req.History))
		for _, h := range req.History {
			if m := h.Message(); m.Content != "" {
				out = append(out, m)
			}
		}
		return out, nil
	}
	if req.SessionID == "" {
		return nil, nil
	}

	stored, err := s.sessions.History(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	out := make([]core.Message, len(stored))
	for i, m := range stored {
		out[i] = m.Message()
	}
	return out, nil
}

// productDetails answers a bare openProductDetail directive with a detail card.
func (s *Server) productDetails(ctx context.Context, id string) string {
	m, err := s.resolver.Resolve(ctx, id)
	if err != nil {
		log.Debug().Err(err).Str("component", "server").Str("id", id).Msg("directive did not resolve")
		return reply.ProductNotFound
	}
	return reply.FormatProductDetails(m.Product)
}

func (s *Server) handleSessionMessages(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	messages, err := s.sessions.History(r.Context(), id)
	if err != nil {
		log.Error().Err(err).Str("component", "server").Str("session", id).Msg("failed to load history")
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: msgServerError})
		return
	}
	writeJSON(w, http.StatusOK, SessionMessagesResponse{SessionID: id, Messages: messages})
}

func (s *Server) handleSetPreviewSku(w http.ResponseWriter, r *http.Request) {
	var req SkuRequest
	json.NewDecoder(r.Body).Decode(&req)
	sku := strings.TrimSpace(req.SKU)
	if sku == "" {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: msgSKURequired})
		return
	}
	if err := s.preview.Set(r.Context(), sku); err != nil {
		log.Error().Err(err).Str("component", "server").Msg("failed to set preview sku")
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: msgServerError})
		return
	}
	writeJSON(w, http.StatusOK, PreviewResponse{Success: true, SKU: sku})
}

func (s *Server) handleGetPreviewSku(w http.ResponseWriter, r *http.Request) {
	sku, err := s.preview.Get(r.Context())
	if err != nil {
		log.Error().Err(err).Str("component", "server").Msg("failed to get preview sku")
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: msgServerError})
		return
	}
	writeJSON(w, http.StatusOK, PreviewResponse{SKU: sku})
}

func (s *Server) handleProduct(w http.ResponseWriter, r *http.Request) {
	s.writeProduct(w, r, r.PathValue("sku"))
}

func (s *Server) handleOpenProductDetail(w http.ResponseWriter, r *http.Request) {
	var req SkuRequest
	json.NewDecoder(r.Body).Decode(&req)
	if strings.TrimSpace(req.SKU) == "" {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: msgSKURequired})
		return
	}
	s.writeProduct(w, r, req.SKU)
}

func (s *Server) writeProduct(w http.ResponseWriter, r *http.Request, raw string) {
	m, err := s.resolver.Resolve(r.Context(), raw)
	switch {
	case errors.Is(err, core.ErrNoMatch), errors.Is(err, core.ErrEmptyIdentifier):
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: msgProductNotFound})
	case err != nil:
		log.Error().Err(err).Str("component", "server").Str("sku", raw).Msg("product lookup failed")
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: msgServerError})
	default:
		writeJSON(w, http.StatusOK, ProductResponse{Product: m.Product})
	}
}

func (s *Server) handleTraceList(w http.ResponseWriter, r *http.Request) {
	traces, err := s.traces.List(r.Context())
	if err != nil {
		log.Error().Err(err).Str("component", "server").Msg("failed to list traces")
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: msgServerError})
		return
	}
	writeJSON(w, http.StatusOK, TraceListResponse{Traces: traces})
}

func (s *Server) handleTraceGet(w http.ResponseWriter, r *http.Request) {
	trace, err := s.traces.Get(r.Context(), r.PathValue("id"))
	if errors.Is(err, store.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		log.Error().Err(err).Str("component", "server").Msg("failed to load trace")
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: msgServerError})
		return
	}
	writeJSON(w, http.StatusOK, TraceDetailResponse{Trace: trace, Spans: trace.Spans})
}

func (s *Server) handleTraceDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.traces.Delete(r.Context(), r.PathValue("id")); err != nil {
		log.Error().Err(err).Str("component", "server").Msg("failed to delete trace")
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: msgServerError})
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) handleMetricsSummary(w http.ResponseWriter, r *http.Request) {
	sum, err := s.traces.Summary(r.Context())
	if err != nil {
		log.Error().Err(err).Str("component", "server").Msg("failed to summarise traces")
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: msgServerError})
		return
	}
	writeJSON(w, http.StatusOK, MetricsResponse{MetricsSummary: sum, Process: s.totals.Snapshot()})
}
