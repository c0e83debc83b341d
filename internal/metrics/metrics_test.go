package metrics

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSource struct {
	state string
	tools int
}

func (s stubSource) StateName() string { return s.state }
func (s stubSource) ToolCount() int    { return s.tools }

func TestPipelineCollector(t *testing.T) {
	reg := prometheus.NewPedanticRegistry()
	require.NoError(t, reg.Register(NewPipelineCollector(stubSource{state: "ready", tools: 4})))

	expected := `
# HELP stockresearch_tools_available Number of tools discovered from the tool server
# TYPE stockresearch_tools_available gauge
stockresearch_tools_available 4
`
	assert.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "stockresearch_tools_available"))

	count, err := testutil.GatherAndCount(reg, "stockresearch_pipeline_state")
	require.NoError(t, err)
	assert.Equal(t, len(pipelineStates), count)
}

func TestRecordHelpers(t *testing.T) {
	Init()
	Init()

	before := testutil.ToFloat64(ToolExecutions.WithLabelValues("search_engine", "error"))
	RecordToolExecution("search_engine", 10*time.Millisecond, errors.New("boom"))
	assert.Equal(t, before+1, testutil.ToFloat64(ToolExecutions.WithLabelValues("search_engine", "error")))

	in := testutil.ToFloat64(LLMTokens.WithLabelValues("test-model", "input"))
	RecordLLMCall("test-model", 12, 0, nil)
	assert.Equal(t, in+12, testutil.ToFloat64(LLMTokens.WithLabelValues("test-model", "input")))

	handoffs := testutil.ToFloat64(AgentHandoffs.WithLabelValues("market_data_agent"))
	RecordHandoff("market_data_agent")
	assert.Equal(t, handoffs+1, testutil.ToFloat64(AgentHandoffs.WithLabelValues("market_data_agent")))
}
