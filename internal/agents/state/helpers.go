package state

import (
	"time"

	"google.golang.org/adk/session"
)

// KeyPrefixAgent scopes per-agent counters. ADK drops "temp:" keys when events are
// appended, so values read by a later callback must live in plain session keys.
const KeyPrefixAgent = "agent:"

// KeyQuery holds the analysis query of the session
const KeyQuery = "query"

// ========================================
// Session-Level State (one analysis run)
// ========================================

// SetQuery stores the analysis query that started the run
func SetQuery(state session.State, query string) error {
	return state.Set(KeyQuery, query)
}

// GetQuery returns the analysis query, empty when unset
func GetQuery(state session.ReadonlyState) string {
	val, err := state.Get(KeyQuery)
	if err != nil {
		return ""
	}
	if q, ok := val.(string); ok {
		return q
	}
	return ""
}

// SetActiveAgent records which pipeline agent currently holds control
func SetActiveAgent(state session.State, agent string) error {
	return state.Set("active_agent", agent)
}

// GetActiveAgent returns the agent currently holding control
func GetActiveAgent(state session.ReadonlyState) string {
	val, err := state.Get("active_agent")
	if err != nil {
		return ""
	}
	if a, ok := val.(string); ok {
		return a
	}
	return ""
}

// ========================================
// Agent-Level State (one agent turn)
// ========================================

// IncrementToolCallCount increments the tool call counter of one agent
func IncrementToolCallCount(state session.State, agent string) error {
	key := agentKey(agent, "tool_call_count")
	count := 0
	if val, err := state.Get(key); err == nil {
		if c, ok := val.(int); ok {
			count = c
		}
	}
	return state.Set(key, count+1)
}

// GetToolCallCount gets the tool call counter of one agent
func GetToolCallCount(state session.ReadonlyState, agent string) int {
	val, err := state.Get(agentKey(agent, "tool_call_count"))
	if err != nil {
		return 0
	}
	if count, ok := val.(int); ok {
		return count
	}
	return 0
}

// SetAgentStartTime sets the execution start time of one agent
func SetAgentStartTime(state session.State, agent string, t time.Time) error {
	return state.Set(agentKey(agent, "start_time"), t)
}

// GetAgentStartTime gets the execution start time of one agent
func GetAgentStartTime(state session.ReadonlyState, agent string) (time.Time, error) {
	val, err := state.Get(agentKey(agent, "start_time"))
	if err != nil {
		return time.Time{}, err
	}
	if t, ok := val.(time.Time); ok {
		return t, nil
	}
	return time.Time{}, session.ErrStateKeyNotExist
}

// AddAgentTokens accumulates token usage of one agent across its model calls
func AddAgentTokens(state session.State, agent string, prompt, completion int) error {
	p, c := GetAgentTokens(state, agent)
	if err := state.Set(agentKey(agent, "prompt_tokens"), p+prompt); err != nil {
		return err
	}
	return state.Set(agentKey(agent, "completion_tokens"), c+completion)
}

// GetAgentTokens retrieves accumulated token counts of one agent
func GetAgentTokens(state session.ReadonlyState, agent string) (promptTokens, completionTokens int) {
	if val, err := state.Get(agentKey(agent, "prompt_tokens")); err == nil {
		if tokens, ok := val.(int); ok {
			promptTokens = tokens
		}
	}
	if val, err := state.Get(agentKey(agent, "completion_tokens")); err == nil {
		if tokens, ok := val.(int); ok {
			completionTokens = tokens
		}
	}
	return promptTokens, completionTokens
}

func agentKey(agent, name string) string {
	return KeyPrefixAgent + agent + ":" + name
}
