package monitor

import (
	"sync"
	"time"
)

type MetricsCollector interface {
	Record(metrics PhaseMetrics)
	Flush() TurnMetrics
}

// InMemoryCollector gathers the phases of a single turn.
type InMemoryCollector struct {
	mu        sync.RWMutex
	turnID    string
	phases    map[string]PhaseMetrics
	startTime time.Time
}

func NewInMemoryCollector(turnID string) *InMemoryCollector {
	return &InMemoryCollector{
		turnID:    turnID,
		phases:    make(map[string]PhaseMetrics),
		startTime: time.Now(),
	}
}

func (c *InMemoryCollector) Record(metrics PhaseMetrics) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.phases[metrics.Phase] = metrics
}

func (c *InMemoryCollector) Flush() TurnMetrics {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := TurnMetrics{
		TurnID:    c.turnID,
		Phases:    make(map[string]PhaseMetrics, len(c.phases)),
		StartTime: c.startTime,
		EndTime:   time.Now(),
	}
	for k, v := range c.phases {
		out.Phases[k] = v
		out.TotalTokens += v.TokensIn + v.TokensOut
		out.TotalDuration += v.Duration
		out.ToolCalls += v.ToolCalls
		if k != PhaseToolExecution {
			out.ModelCalls++
		}
	}
	return out
}

// Totals accumulates turn metrics across requests for the metrics endpoint.
type Totals struct {
	mu      sync.Mutex
	summary Summary
	latency time.Duration
}

func NewTotals() *Totals {
	return &Totals{summary: Summary{ToolsByName: make(map[string]int)}}
}

// Observe adds one finished turn. toolNames lists the tools it invoked.
func (t *Totals) Observe(m TurnMetrics, toolNames []string, failed bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.summary.Turns++
	if failed {
		t.summary.FailedTurns++
	}
	t.summary.ModelCalls += m.ModelCalls
	t.summary.ToolCalls += m.ToolCalls
	t.summary.TotalTokens += m.TotalTokens
	for _, n := range toolNames {
		t.summary.ToolsByName[n]++
	}
	t.latency += m.EndTime.Sub(m.StartTime)
}

func (t *Totals) Snapshot() Summary {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := t.summary
	out.ToolsByName = make(map[string]int, len(t.summary.ToolsByName))
	for k, v := range t.summary.ToolsByName {
		out.ToolsByName[k] = v
	}
	if out.Turns > 0 {
		out.AvgLatencyMs = float64(t.latency.Milliseconds()) / float64(out.Turns)
	}
	return out
}
