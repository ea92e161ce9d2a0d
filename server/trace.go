package server

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/NelaStaffing/hardware-store-bot/agent"
	"github.com/NelaStaffing/hardware-store-bot/monitor"
)

var phaseOrder = []string{
	monitor.PhaseToolDecision,
	monitor.PhaseToolExecution,
	monitor.PhaseFinalReply,
}

// turnTrace flattens a finished turn into a persisted trace.
func turnTrace(sessionID, model, input, output string, start time.Time, turn *agent.Turn, err error) TraceInfo {
	t := TraceInfo{
		TraceID:        uuid.NewString(),
		SessionID:      sessionID,
		Timestamp:      start.UnixMilli(),
		Model:          model,
		Input:          input,
		Output:         output,
		TotalElapsedMs: time.Since(start).Milliseconds(),
		Tools:          []string{},
		Status:         "success",
	}
	if err != nil {
		t.Status = "error"
	}
	if turn == nil {
		return t
	}

	if turn.ID != "" {
		t.TraceID = turn.ID
	}
	t.TotalInputTokens = turn.Usage.PromptTokens
	t.TotalOutputTokens = turn.Usage.CompletionTokens
	t.TotalToolCalls = len(turn.ToolCalls)
	t.Tools = turn.ToolNames()

	for _, name := range phaseOrder {
		p, ok := turn.Metrics.Phases[name]
		if !ok {
			continue
		}
		t.Spans = append(t.Spans, SpanInfo{
			Phase:         p.Phase,
			ElapsedMs:     p.Duration.Milliseconds(),
			InputTokens:   p.TokensIn,
			OutputTokens:  p.TokensOut,
			ToolCallCount: p.ToolCalls,
			Error:         p.Error,
		})
	}
	return t
}

// record persists the trace and feeds the process counters. Trace storage
// failures are logged and never fail the request.
func (s *Server) record(ctx context.Context, t TraceInfo, turn *agent.Turn, failed bool) {
	var metrics monitor.TurnMetrics
	var names []string
	if turn != nil {
		metrics, names = turn.Metrics, turn.ToolNames()
	}
	s.totals.Observe(metrics, names, failed)
	if err := s.traces.Add(ctx, t); err != nil {
		log.Warn().Err(err).Str("component", "server").Str("trace", t.TraceID).Msg("failed to record trace")
	}
}
