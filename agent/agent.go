// Package agent runs one conversational turn: a tool-decision call to the
// model, at most one round of tool execution, and a final reply call.
package agent

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/NelaStaffing/hardware-store-bot/core"
	"github.com/NelaStaffing/hardware-store-bot/llm"
	"github.com/NelaStaffing/hardware-store-bot/monitor"
	"github.com/NelaStaffing/hardware-store-bot/tools"
)

type Config struct {
	Client       llm.Client
	Registry     *tools.Registry
	Model        string
	SystemPrompt string
	// MaxParallel bounds concurrent tool execution within a turn. Zero or
	// one runs tools one at a time in request order.
	MaxParallel int
}

type Agent struct {
	client      llm.Client
	registry    *tools.Registry
	model       string
	system      string
	maxParallel int
}

// New returns ErrInvalidConfig when the model client or tool registry is
// missing.
func New(cfg Config) (*Agent, error) {
	if cfg.Client == nil || cfg.Registry == nil {
		return nil, fmt.Errorf("%w: agent needs a model client and a tool registry", core.ErrInvalidConfig)
	}
	model := cfg.Model
	if model == "" {
		model = core.DefaultModel
	}
	parallel := cfg.MaxParallel
	if parallel < 1 {
		parallel = 1
	}
	return &Agent{
		client:      cfg.Client,
		registry:    cfg.Registry,
		model:       model,
		system:      cfg.SystemPrompt,
		maxParallel: parallel,
	}, nil
}

// Turn is the outcome of Respond.
type Turn struct {
	ID          string
	Reply       core.Message
	ToolCalls   []core.ToolCall
	ToolResults []core.ToolResult
	Usage       llm.Usage
	Metrics     monitor.TurnMetrics
}

func (t *Turn) ToolNames() []string {
	names := make([]string, len(t.ToolCalls))
	for i, c := range t.ToolCalls {
		names[i] = c.Name
	}
	return names
}

type state int

const (
	awaitingToolDecision state = iota
	executingTools
	awaitingFinalReply
	done
)

// turnRun carries the context assembled for one Respond call.
type turnRun struct {
	turn      *Turn
	msgs      []core.Message
	pending   []core.ToolCall
	collector *monitor.InMemoryCollector
}

// Respond answers message given the prior history. The history is passed to
// the model in full. A model request for an unregistered tool or with
// malformed arguments fails the turn.
func (a *Agent) Respond(ctx context.Context, history []core.Message, message string) (*Turn, error) {
	id := uuid.NewString()
	run := &turnRun{
		turn:      &Turn{ID: id},
		msgs:      make([]core.Message, 0, len(history)+4),
		collector: monitor.NewInMemoryCollector(id),
	}
	run.msgs = append(run.msgs, history...)
	run.msgs = append(run.msgs, core.NewUserMessage(message))

	st := awaitingToolDecision
	for st != done {
		var err error
		switch st {
		case awaitingToolDecision:
			st, err = a.decide(ctx, run)
		case executingTools:
			st, err = a.execute(ctx, run)
		case awaitingFinalReply:
			st, err = a.finish(ctx, run)
		}
		if err != nil {
			run.turn.Metrics = run.collector.Flush()
			return run.turn, err
		}
	}

	run.turn.Metrics = run.collector.Flush()
	log.Debug().Str("component", "agent").Str("turn", id).
		Int("model_calls", run.turn.Metrics.ModelCalls).
		Strs("tools", run.turn.ToolNames()).
		Msg("turn complete")
	return run.turn, nil
}

func (a *Agent) decide(ctx context.Context, run *turnRun) (state, error) {
	resp, err := a.call(ctx, run, monitor.PhaseToolDecision)
	if err != nil {
		return done, err
	}
	if !resp.HasToolCalls() {
		run.turn.Reply = core.NewAssistantMessage(resp.Content)
		return done, nil
	}

	run.msgs = append(run.msgs, resp.Message())
	run.pending = resp.ToolCalls
	run.turn.ToolCalls = resp.ToolCalls
	return executingTools, nil
}

func (a *Agent) execute(ctx context.Context, run *turnRun) (state, error) {
	start := time.Now()
	results, err := a.dispatch(ctx, run.pending)
	phase := monitor.PhaseMetrics{
		Phase:     monitor.PhaseToolExecution,
		ToolCalls: len(run.pending),
		Duration:  time.Since(start),
		Success:   err == nil,
	}
	if err != nil {
		phase.Error = err.Error()
	}
	run.collector.Record(phase)
	if err != nil {
		return done, err
	}

	for _, r := range results {
		run.msgs = append(run.msgs, r.Message())
	}
	run.turn.ToolResults = results
	run.pending = nil
	return awaitingFinalReply, nil
}

func (a *Agent) finish(ctx context.Context, run *turnRun) (state, error) {
	resp, err := a.call(ctx, run, monitor.PhaseFinalReply)
	if err != nil {
		return done, err
	}
	if resp.HasToolCalls() {
		log.Warn().Str("component", "agent").Str("turn", run.turn.ID).
			Int("ignored", len(resp.ToolCalls)).
			Msg("final reply requested more tools")
	}
	run.turn.Reply = core.NewAssistantMessage(resp.Content)
	return done, nil
}

func (a *Agent) call(ctx context.Context, run *turnRun, phase string) (*llm.ChatResponse, error) {
	start := time.Now()
	resp, err := a.client.ChatWithTools(ctx, llm.Request{
		Model:      a.model,
		System:     a.system,
		Messages:   run.msgs,
		Tools:      a.registry.Schemas(),
		ToolChoice: llm.ToolChoiceAuto,
	})

	m := monitor.PhaseMetrics{Phase: phase, Duration: time.Since(start), Success: err == nil}
	if err != nil {
		m.Error = err.Error()
		run.collector.Record(m)
		return nil, core.NewAgentError("agent."+phase, "", err)
	}
	m.TokensIn = resp.Usage.PromptTokens
	m.TokensOut = resp.Usage.CompletionTokens
	run.collector.Record(m)
	run.turn.Usage = run.turn.Usage.Add(resp.Usage)
	return resp, nil
}
