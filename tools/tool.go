// Package tools holds the fixed set of capabilities the model may invoke.
package tools

import (
	"context"

	"github.com/NelaStaffing/hardware-store-bot/core"
)

// Name identifies one of the registered tools. The set is closed.
type Name string

const (
	SearchInventory   Name = "searchInventory"
	OpenProductDetail Name = "openProductDetail"
	FileSearch        Name = "fileSearch"
)

// Names lists every tool identifier in advertising order.
var Names = []Name{SearchInventory, OpenProductDetail, FileSearch}

func ParseName(s string) (Name, bool) {
	for _, n := range Names {
		if string(n) == s {
			return n, true
		}
	}
	return "", false
}

func (n Name) String() string {
	return string(n)
}

// Tool is one capability. Execute receives arguments that have already been
// validated against Params and returns a JSON-serializable result.
type Tool interface {
	Name() Name
	Description() string
	Params() Params
	Execute(ctx context.Context, args Args) (any, error)
}

// Failure is implemented by results that report a miss rather than data.
type Failure interface {
	Failed() bool
}

func ToSchema(t Tool) core.ToolSchema {
	return core.ToolSchema{
		Name:        t.Name().String(),
		Description: t.Description(),
		Parameters:  t.Params().Schema(),
	}
}

func ToSchemas(tools []Tool) []core.ToolSchema {
	schemas := make([]core.ToolSchema, len(tools))
	for i, t := range tools {
		schemas[i] = ToSchema(t)
	}
	return schemas
}
