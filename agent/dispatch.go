package agent

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/NelaStaffing/hardware-store-bot/core"
	"github.com/NelaStaffing/hardware-store-bot/tools"
)

// dispatch validates every call before running any, then executes them with
// at most maxParallel in flight. Results keep the order of calls.
func (a *Agent) dispatch(ctx context.Context, calls []core.ToolCall) ([]core.ToolResult, error) {
	type prepared struct {
		tool tools.Tool
		args tools.Args
	}

	plan := make([]prepared, len(calls))
	for i, call := range calls {
		t, args, err := a.registry.Prepare(call)
		if err != nil {
			return nil, err
		}
		plan[i] = prepared{tool: t, args: args}
	}

	results := make([]core.ToolResult, len(calls))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.maxParallel)
	for i, call := range calls {
		g.Go(func() error {
			res, err := tools.Run(gctx, plan[i].tool, call, plan[i].args)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
