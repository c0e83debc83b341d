package callbacks

import (
	"google.golang.org/adk/agent"
	"google.golang.org/adk/agent/llmagent"

	"stockresearch/internal/agents"
	"stockresearch/pkg/errors"
	"stockresearch/pkg/logger"
)

// Deps contains dependencies for creating callbacks
type Deps struct {
	Tracker errors.Tracker // optional; breadcrumbs and failures go here
}

// Hooks assembles the callbacks attached to every pipeline agent.
func Hooks(deps Deps) agents.AgentHooks {
	return agents.AgentHooks{
		BeforeAgent: []agent.BeforeAgentCallback{HandoffBeforeAgentCallback(deps.Tracker)},
		AfterAgent:  []agent.AfterAgentCallback{LatencyAfterAgentCallback()},
		BeforeModel: []llmagent.BeforeModelCallback{LoggingBeforeModelCallback()},
		AfterModel: []llmagent.AfterModelCallback{
			TokenCountingAfterModelCallback(),
			ErrorReportingAfterModelCallback(deps.Tracker),
		},
		BeforeTool: []llmagent.BeforeToolCallback{RecordToolStartBeforeToolCallback(deps.Tracker)},
		AfterTool:  []llmagent.AfterToolCallback{AuditLogAfterToolCallback()},
	}
}

// callbackLogger returns the session logger of ctx bound to the running agent.
func callbackLogger(ctx agent.ReadonlyContext, component string) *logger.Logger {
	return agents.LoggerFor(agents.WithAgent(ctx, agents.AgentType(ctx.AgentName()))).With("component", component)
}
