package monitor

import "time"

// Phase names of one agent turn.
const (
	PhaseToolDecision  = "tool_decision"
	PhaseToolExecution = "tool_execution"
	PhaseFinalReply    = "final_reply"
)

type PhaseMetrics struct {
	Phase     string        `json:"phase"`
	TokensIn  int           `json:"tokens_in"`
	TokensOut int           `json:"tokens_out"`
	ToolCalls int           `json:"tool_calls,omitempty"`
	Duration  time.Duration `json:"duration"`
	Success   bool          `json:"success"`
	Error     string        `json:"error,omitempty"`
}

type TurnMetrics struct {
	TurnID        string                  `json:"turn_id"`
	ModelCalls    int                     `json:"model_calls"`
	ToolCalls     int                     `json:"tool_calls"`
	TotalTokens   int                     `json:"total_tokens"`
	TotalDuration time.Duration           `json:"total_duration"`
	Phases        map[string]PhaseMetrics `json:"phases"`
	StartTime     time.Time               `json:"start_time"`
	EndTime       time.Time               `json:"end_time"`
}

// Summary aggregates every turn seen by a Totals.
type Summary struct {
	Turns        int            `json:"turns"`
	FailedTurns  int            `json:"failed_turns"`
	ModelCalls   int            `json:"model_calls"`
	ToolCalls    int            `json:"tool_calls"`
	ToolsByName  map[string]int `json:"tools_by_name"`
	TotalTokens  int            `json:"total_tokens"`
	AvgLatencyMs float64        `json:"avg_latency_ms"`
}
