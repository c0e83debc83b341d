package state

import (
	"iter"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/adk/session"
)

func TestStateHelpers_SessionLevel(t *testing.T) {
	state := newTestState()

	assert.Empty(t, GetQuery(state))
	require.NoError(t, SetQuery(state, "NSE short-term picks"))
	assert.Equal(t, "NSE short-term picks", GetQuery(state))

	require.NoError(t, SetActiveAgent(state, "market_data_agent"))
	assert.Equal(t, "market_data_agent", GetActiveAgent(state))
}

func TestStateHelpers_AgentLevel(t *testing.T) {
	state := newTestState()

	// Tool call counters are per agent
	require.NoError(t, IncrementToolCallCount(state, "stock_finder_agent"))
	require.NoError(t, IncrementToolCallCount(state, "stock_finder_agent"))
	require.NoError(t, IncrementToolCallCount(state, "news_analyst_agent"))
	assert.Equal(t, 2, GetToolCallCount(state, "stock_finder_agent"))
	assert.Equal(t, 1, GetToolCallCount(state, "news_analyst_agent"))
	assert.Zero(t, GetToolCallCount(state, "recommendation_agent"))

	_, err := GetAgentStartTime(state, "stock_finder_agent")
	assert.Error(t, err)

	start := time.Now()
	require.NoError(t, SetAgentStartTime(state, "stock_finder_agent", start))
	got, err := GetAgentStartTime(state, "stock_finder_agent")
	require.NoError(t, err)
	assert.Equal(t, start, got)

	// Token usage accumulates across model calls
	require.NoError(t, AddAgentTokens(state, "stock_finder_agent", 100, 20))
	require.NoError(t, AddAgentTokens(state, "stock_finder_agent", 50, 5))
	prompt, completion := GetAgentTokens(state, "stock_finder_agent")
	assert.Equal(t, 150, prompt)
	assert.Equal(t, 25, completion)
}

// newTestState creates a test state implementation
func newTestState() session.State {
	return &testState{data: make(map[string]any)}
}

type testState struct {
	data map[string]any
}

func (s *testState) Get(key string) (any, error) {
	if val, ok := s.data[key]; ok {
		return val, nil
	}
	return nil, session.ErrStateKeyNotExist
}

func (s *testState) Set(key string, val any) error {
	s.data[key] = val
	return nil
}

func (s *testState) All() iter.Seq2[string, any] {
	return func(yield func(string, any) bool) {
		for k, v := range s.data {
			if !yield(k, v) {
				return
			}
		}
	}
}
