package callbacks

import (
	"google.golang.org/adk/agent"
	"google.golang.org/adk/agent/llmagent"
	"google.golang.org/adk/model"

	"stockresearch/internal/agents/state"
	"stockresearch/pkg/errors"
)

// LoggingBeforeModelCallback logs the size of every model request
func LoggingBeforeModelCallback() llmagent.BeforeModelCallback {
	return func(ctx agent.CallbackContext, req *model.LLMRequest) (*model.LLMResponse, error) {
		if req == nil {
			return nil, nil
		}

		declarations := 0
		if req.Config != nil {
			for _, t := range req.Config.Tools {
				if t != nil {
					declarations += len(t.FunctionDeclarations)
				}
			}
		}

		callbackLogger(ctx, "model").Debugw("Calling model",
			"contents", len(req.Contents),
			"tools", declarations,
		)
		return nil, nil
	}
}

// TokenCountingAfterModelCallback accumulates token usage per agent
func TokenCountingAfterModelCallback() llmagent.AfterModelCallback {
	return func(ctx agent.CallbackContext, resp *model.LLMResponse, respErr error) (*model.LLMResponse, error) {
		if respErr != nil || resp == nil || resp.UsageMetadata == nil {
			return nil, nil
		}

		usage := resp.UsageMetadata
		if err := state.AddAgentTokens(ctx.State(), ctx.AgentName(), int(usage.PromptTokenCount), int(usage.CandidatesTokenCount)); err != nil {
			callbackLogger(ctx, "token_counter").Warnf("Failed to store token usage: %v", err)
		}

		callbackLogger(ctx, "token_counter").Debugf("Tokens used: prompt=%d completion=%d total=%d",
			usage.PromptTokenCount,
			usage.CandidatesTokenCount,
			usage.TotalTokenCount,
		)
		return nil, nil // nil keeps the original response
	}
}

// ErrorReportingAfterModelCallback logs and reports failed model calls, passing the error through
func ErrorReportingAfterModelCallback(tracker errors.Tracker) llmagent.AfterModelCallback {
	return func(ctx agent.CallbackContext, resp *model.LLMResponse, respErr error) (*model.LLMResponse, error) {
		if respErr == nil {
			return nil, nil
		}

		callbackLogger(ctx, "model").Warnw("Model call failed", "error", respErr)
		if tracker != nil {
			tracker.AddBreadcrumb(ctx, "model call failed", "llm", errors.LevelError, map[string]interface{}{
				"agent": ctx.AgentName(),
				"error": respErr.Error(),
			})
		}
		return nil, nil // the error propagates unchanged
	}
}
