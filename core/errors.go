package core

import (
	"errors"
	"fmt"
)

var (
	ErrToolNotFound     = errors.New("tool not found")
	ErrInvalidArguments = errors.New("invalid tool arguments")
	ErrEmptyIdentifier  = errors.New("empty identifier")
	ErrNoMatch          = errors.New("no matching product")
	ErrNotImplemented   = errors.New("not implemented")
	ErrInvalidConfig    = errors.New("invalid configuration")
	ErrLLMRequest       = errors.New("LLM request failed")
	ErrEmptyReply       = errors.New("model returned no choices")
)

// AgentError records which step of a turn failed and, when relevant, which tool.
type AgentError struct {
	Op      string
	Tool    string
	Err     error
	Context map[string]any
}

func (e *AgentError) Error() string {
	if e.Tool != "" {
		return fmt.Sprintf("%s [tool=%s]: %v", e.Op, e.Tool, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *AgentError) Unwrap() error {
	return e.Err
}

func NewAgentError(op, tool string, err error) *AgentError {
	return &AgentError{Op: op, Tool: tool, Err: err}
}

func WithContext(err *AgentError, key string, val any) *AgentError {
	if err.Context == nil {
		err.Context = make(map[string]any)
	}
	err.Context[key] = val
	return err
}
