package tools

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/NelaStaffing/hardware-store-bot/core"
)

type ParamType string

const (
	TypeString  ParamType = "string"
	TypeInteger ParamType = "integer"
	TypeNumber  ParamType = "number"
	TypeBoolean ParamType = "boolean"
)

// Param declares one named argument of a tool.
type Param struct {
	Name        string
	Type        ParamType
	Description string
	Required    bool
	Default     any
}

// Params is an ordered parameter list. Its JSON Schema form is what the
// model sees.
type Params []Param

type schemaProperty struct {
	Type        ParamType `json:"type"`
	Description string    `json:"description,omitempty"`
	Default     any       `json:"default,omitempty"`
}

type schemaObject struct {
	Type       string                    `json:"type"`
	Properties map[string]schemaProperty `json:"properties"`
	Required   []string                  `json:"required"`
}

func (ps Params) Schema() json.RawMessage {
	obj := schemaObject{
		Type:       "object",
		Properties: make(map[string]schemaProperty, len(ps)),
		Required:   []string{},
	}
	for _, p := range ps {
		obj.Properties[p.Name] = schemaProperty{Type: p.Type, Description: p.Description, Default: p.Default}
		if p.Required {
			obj.Required = append(obj.Required, p.Name)
		}
	}
	data, _ := json.Marshal(obj)
	return data
}

// Validate parses a raw argument payload, checks required keys and types,
// and fills defaults. Keys that are not declared are dropped.
func (ps Params) Validate(raw json.RawMessage) (Args, error) {
	fields := map[string]any{}
	if trimmed := bytes.TrimSpace(raw); len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null")) {
		dec := json.NewDecoder(bytes.NewReader(trimmed))
		dec.UseNumber()
		if err := dec.Decode(&fields); err != nil {
			return nil, fmt.Errorf("%w: %v", core.ErrInvalidArguments, err)
		}
	}

	args := make(Args, len(ps))
	var missing []string
	for _, p := range ps {
		v, ok := fields[p.Name]
		if !ok || v == nil {
			if p.Required {
				missing = append(missing, p.Name)
			} else if p.Default != nil {
				args[p.Name] = p.Default
			}
			continue
		}
		typed, err := coerce(p, v)
		if err != nil {
			return nil, err
		}
		args[p.Name] = typed
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing %s", core.ErrInvalidArguments, strings.Join(missing, ", "))
	}
	return args, nil
}

func coerce(p Param, v any) (any, error) {
	bad := func() error {
		return fmt.Errorf("%w: %s must be %s, got %v", core.ErrInvalidArguments, p.Name, p.Type, v)
	}

	switch p.Type {
	case TypeString:
		s, ok := v.(string)
		if !ok {
			return nil, bad()
		}
		return s, nil
	case TypeInteger:
		n, ok := v.(json.Number)
		if !ok {
			return nil, bad()
		}
		if i, err := n.Int64(); err == nil {
			return int(i), nil
		}
		f, err := n.Float64()
		if err != nil || f != math.Trunc(f) {
			return nil, bad()
		}
		return int(f), nil
	case TypeNumber:
		n, ok := v.(json.Number)
		if !ok {
			return nil, bad()
		}
		f, err := n.Float64()
		if err != nil {
			return nil, bad()
		}
		return f, nil
	case TypeBoolean:
		b, ok := v.(bool)
		if !ok {
			return nil, bad()
		}
		return b, nil
	}
	return nil, fmt.Errorf("%w: unsupported type %q for %s", core.ErrInvalidConfig, p.Type, p.Name)
}

// Args holds validated arguments keyed by parameter name.
type Args map[string]any

func (a Args) String(key string) string {
	s, _ := a[key].(string)
	return s
}

func (a Args) Int(key string) int {
	switch v := a[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return 0
}
