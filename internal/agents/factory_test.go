package agents

import (
	"context"
	"iter"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/adk/model"
	"google.golang.org/adk/tool"

	"stockresearch/internal/tools"
	"stockresearch/pkg/errors"
)

type stubLLM struct{}

func (stubLLM) Name() string { return "stub" }

func (stubLLM) GenerateContent(context.Context, *model.LLMRequest, bool) iter.Seq2[*model.LLMResponse, error] {
	return func(func(*model.LLMResponse, error) bool) {}
}

type toolSourceFunc func(ctx context.Context) ([]tool.Tool, error)

func (f toolSourceFunc) Tools(ctx context.Context) ([]tool.Tool, error) { return f(ctx) }

func buildTools(t *testing.T, names ...string) []tool.Tool {
	t.Helper()
	out := make([]tool.Tool, 0, len(names))
	for _, name := range names {
		tl, err := tools.NewFactory(name, "test tool", func(context.Context, map[string]any) (map[string]any, error) {
			return map[string]any{"result": "ok"}, nil
		}).Build()
		require.NoError(t, err)
		out = append(out, tl)
	}
	return out
}

func TestNewFactoryRequiresModel(t *testing.T) {
	_, err := NewFactory(FactoryDeps{})
	assert.True(t, errors.Is(err, errors.ErrInitialization))
}

func TestCreateAgentSpecs(t *testing.T) {
	ts := buildTools(t, "search_engine", "scrape_as_markdown")
	f, err := NewFactory(FactoryDeps{Model: stubLLM{}, Tools: tools.Static(ts)})
	require.NoError(t, err)

	specs, err := f.CreateAgentSpecs(context.Background())
	require.NoError(t, err)
	require.Len(t, specs, len(PipelineOrder))

	for i, spec := range specs {
		assert.Equal(t, PipelineOrder[i], spec.Type)
		assert.Equal(t, "stub", spec.Model.Name())
		assert.Len(t, spec.Tools, 2)
		assert.Contains(t, spec.Prompt, "  1. scrape_as_markdown\n  2. search_engine")
		assert.Contains(t, spec.Prompt, "You are")
		assert.NotContains(t, spec.Prompt, "{{")
	}
	assert.True(t, strings.HasPrefix(specs[0].Prompt, "You are"), specs[0].Prompt[:40])
}

func TestCreateAgentSpecsWithoutTools(t *testing.T) {
	f, err := NewFactory(FactoryDeps{Model: stubLLM{}})
	require.NoError(t, err)

	specs, err := f.CreateAgentSpecs(context.Background())
	require.NoError(t, err)
	for _, spec := range specs {
		assert.Empty(t, spec.Tools)
		assert.Contains(t, spec.Prompt, "NO EXTERNAL TOOLS AVAILABLE")
	}
}

func TestCreateAgentSpecsToolFailureIsFatal(t *testing.T) {
	f, err := NewFactory(FactoryDeps{
		Model: stubLLM{},
		Tools: toolSourceFunc(func(context.Context) ([]tool.Tool, error) {
			return nil, errors.ErrToolServer
		}),
	})
	require.NoError(t, err)

	specs, err := f.CreateAgentSpecs(context.Background())
	assert.Nil(t, specs)
	assert.True(t, errors.Is(err, errors.ErrInitialization))
	assert.True(t, errors.Is(err, errors.ErrToolServer))
}

func TestCreateAgent(t *testing.T) {
	f, err := NewFactory(FactoryDeps{Model: stubLLM{}, Tools: tools.Static(buildTools(t, "search_engine"))})
	require.NoError(t, err)

	spec, err := f.CreateAgentSpec(context.Background(), AgentMarketData, buildTools(t, "search_engine"))
	require.NoError(t, err)

	ag, err := f.CreateAgent(spec, AgentHooks{})
	require.NoError(t, err)
	assert.Equal(t, "market_data_agent", ag.Name())

	_, err = f.CreateAgent(AgentSpec{Type: "unknown", Model: stubLLM{}}, AgentHooks{})
	assert.True(t, errors.Is(err, errors.ErrInitialization))

	_, err = f.CreateAgent(AgentSpec{Type: AgentNewsAnalyst}, AgentHooks{})
	assert.True(t, errors.Is(err, errors.ErrInitialization))
}

func TestPromptLibraryRendersMarket(t *testing.T) {
	market := DefaultMarket()
	market.Exchange = "BSE"
	market.Country = "Bombay"
	lib := NewPromptLibrary(nil, market)

	for _, at := range append([]AgentType{AgentSupervisor}, PipelineOrder...) {
		p, err := lib.Prompt(at)
		require.NoError(t, err, at)
		assert.True(t, strings.Contains(p, "BSE") || strings.Contains(p, "Bombay"), at)
		assert.NotContains(t, p, "NSE", at)
	}

	brief, err := lib.SupervisorBrief()
	require.NoError(t, err)
	assert.Contains(t, brief, "WORKFLOW SEQUENCE")

	_, err = lib.Prompt("unknown")
	assert.True(t, errors.Is(err, errors.ErrInvalidInput))
}
