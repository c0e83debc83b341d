package callbacks

import (
	"time"

	"google.golang.org/adk/agent"
	"google.golang.org/genai"

	"stockresearch/internal/agents"
	"stockresearch/internal/agents/state"
	"stockresearch/internal/metrics"
	"stockresearch/pkg/errors"
)

// HandoffBeforeAgentCallback marks the agent as active and records the hand-off
func HandoffBeforeAgentCallback(tracker errors.Tracker) agent.BeforeAgentCallback {
	return func(ctx agent.CallbackContext) (*genai.Content, error) {
		name := ctx.AgentName()
		log := callbackLogger(ctx, "lifecycle")

		if err := state.SetActiveAgent(ctx.State(), name); err != nil {
			log.Warnf("Failed to record active agent: %v", err)
		}
		if err := state.SetAgentStartTime(ctx.State(), name, time.Now()); err != nil {
			log.Warnf("Failed to record start time: %v", err)
		}

		metrics.RecordHandoff(name)
		if tracker != nil {
			tracker.AddBreadcrumb(ctx, agents.HandoffMessage{From: agents.AgentSupervisor, To: agents.AgentType(name)}.String(),
				"handoff", errors.LevelInfo, map[string]interface{}{"session_id": ctx.SessionID()})
		}

		log.Infof("Agent %s started", name)
		log.Debugw("Agent input", "query", state.GetQuery(ctx.ReadonlyState()))
		return nil, nil
	}
}

// LatencyAfterAgentCallback records how long the agent held control
func LatencyAfterAgentCallback() agent.AfterAgentCallback {
	return func(ctx agent.CallbackContext) (*genai.Content, error) {
		name := ctx.AgentName()
		log := callbackLogger(ctx, "lifecycle")

		startTime, err := state.GetAgentStartTime(ctx.ReadonlyState(), name)
		if err != nil {
			log.Warnf("Start time not found in state: %v", err)
			return nil, nil
		}

		duration := time.Since(startTime)
		metrics.RecordAgentTurn(name, duration)

		promptTokens, completionTokens := state.GetAgentTokens(ctx.ReadonlyState(), name)
		log.Infow("Agent completed",
			"duration", duration,
			"tool_calls", state.GetToolCallCount(ctx.ReadonlyState(), name),
			"prompt_tokens", promptTokens,
			"completion_tokens", completionTokens,
		)
		return nil, nil
	}
}
