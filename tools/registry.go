package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/NelaStaffing/hardware-store-bot/core"
)

// Registry maps each tool identifier to its implementation. It is built once
// and never mutated, so it is safe for concurrent use.
type Registry struct {
	tools map[Name]Tool
	order []Name
}

// NewRegistry builds a registry from the given tools, rejecting duplicates
// and names outside the closed set.
func NewRegistry(ts ...Tool) (*Registry, error) {
	r := &Registry{tools: make(map[Name]Tool, len(ts))}
	for _, t := range ts {
		name := t.Name()
		if _, ok := ParseName(string(name)); !ok {
			return nil, fmt.Errorf("%w: unknown tool %q", core.ErrInvalidConfig, name)
		}
		if _, dup := r.tools[name]; dup {
			return nil, fmt.Errorf("%w: duplicate tool %q", core.ErrInvalidConfig, name)
		}
		r.tools[name] = t
		r.order = append(r.order, name)
	}
	return r, nil
}

// Get looks up a tool by the name the model used.
func (r *Registry) Get(name string) (Tool, error) {
	n, ok := ParseName(name)
	if !ok {
		return nil, core.NewAgentError("registry.get", name, core.ErrToolNotFound)
	}
	t, ok := r.tools[n]
	if !ok {
		return nil, core.NewAgentError("registry.get", name, core.ErrToolNotFound)
	}
	return t, nil
}

func (r *Registry) List() []Name {
	out := make([]Name, len(r.order))
	copy(out, r.order)
	return out
}

// Schemas returns the advertised schema of every tool in registration order.
func (r *Registry) Schemas() []core.ToolSchema {
	ts := make([]Tool, len(r.order))
	for i, n := range r.order {
		ts[i] = r.tools[n]
	}
	return ToSchemas(ts)
}

// Prepare resolves and validates a model-issued call without running it.
func (r *Registry) Prepare(call core.ToolCall) (Tool, Args, error) {
	t, err := r.Get(call.Name)
	if err != nil {
		return nil, nil, err
	}
	args, err := t.Params().Validate(call.Arguments)
	if err != nil {
		return nil, nil, core.WithContext(core.NewAgentError("registry.validate", call.Name, err), "tool_call_id", call.ID)
	}
	return t, args, nil
}

// Run executes a prepared call and serializes its result into the tool turn
// content tagged with the call's correlation ID.
func Run(ctx context.Context, t Tool, call core.ToolCall, args Args) (core.ToolResult, error) {
	out, err := t.Execute(ctx, args)
	if err != nil {
		return core.ToolResult{}, core.NewAgentError("tool.execute", call.Name, err)
	}
	data, err := json.Marshal(out)
	if err != nil {
		return core.ToolResult{}, core.NewAgentError("tool.encode", call.Name, err)
	}

	res := core.NewToolResult(call.ID, string(data))
	if f, ok := out.(Failure); ok && f.Failed() {
		res = core.NewToolError(call.ID, string(data))
	}
	res.Name = call.Name
	return res, nil
}

// Dispatch prepares and runs a single call.
func (r *Registry) Dispatch(ctx context.Context, call core.ToolCall) (core.ToolResult, error) {
	t, args, err := r.Prepare(call)
	if err != nil {
		return core.ToolResult{}, err
	}
	return Run(ctx, t, call, args)
}
