package callbacks

import (
	"google.golang.org/adk/agent/llmagent"
	"google.golang.org/adk/tool"

	"stockresearch/internal/agents/state"
	"stockresearch/pkg/errors"
)

// RecordToolStartBeforeToolCallback leaves a breadcrumb for every tool call
func RecordToolStartBeforeToolCallback(tracker errors.Tracker) llmagent.BeforeToolCallback {
	return func(ctx tool.Context, t tool.Tool, args map[string]any) (map[string]any, error) {
		callbackLogger(ctx, "tool_audit").Debugw("Calling tool", "tool", t.Name(), "args", args)
		if tracker != nil {
			tracker.AddBreadcrumb(ctx, "tool "+t.Name(), "tool", errors.LevelInfo, map[string]interface{}{
				"agent":   ctx.AgentName(),
				"call_id": ctx.FunctionCallID(),
			})
		}
		return nil, nil // proceed with the call
	}
}

// AuditLogAfterToolCallback logs all tool executions
func AuditLogAfterToolCallback() llmagent.AfterToolCallback {
	return func(ctx tool.Context, t tool.Tool, args, result map[string]any, err error) (map[string]any, error) {
		toolName := t.Name()
		log := callbackLogger(ctx, "tool_audit").With("tool", toolName)

		if err != nil {
			log.Warnf("Tool %s failed: %v", toolName, err)
		} else {
			log.Infof("Tool %s executed successfully", toolName)
		}

		if stateErr := state.IncrementToolCallCount(ctx.State(), ctx.AgentName()); stateErr != nil {
			log.Warnf("Failed to count tool call: %v", stateErr)
		}

		return nil, nil // nil keeps the original result and error
	}
}
