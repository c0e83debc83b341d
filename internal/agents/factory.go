package agents

import (
	"context"

	"google.golang.org/adk/agent"
	"google.golang.org/adk/agent/llmagent"
	"google.golang.org/adk/model"
	"google.golang.org/adk/tool"

	"stockresearch/internal/tools"
	"stockresearch/pkg/errors"
)

// ToolSource yields the tools shared by every pipeline agent.
type ToolSource interface {
	Tools(ctx context.Context) ([]tool.Tool, error)
}

// AgentSpec binds one pipeline agent to its model, tools and augmented prompt.
// Specs are built once during initialization and never modified.
type AgentSpec struct {
	Type   AgentType
	Model  model.LLM
	Tools  []tool.Tool
	Prompt string
}

// AgentHooks are the ADK callbacks attached to every agent.
type AgentHooks struct {
	BeforeAgent []agent.BeforeAgentCallback
	AfterAgent  []agent.AfterAgentCallback
	BeforeModel []llmagent.BeforeModelCallback
	AfterModel  []llmagent.AfterModelCallback
	BeforeTool  []llmagent.BeforeToolCallback
	AfterTool   []llmagent.AfterToolCallback
}

// FactoryDeps gathers external dependencies needed to instantiate agents.
type FactoryDeps struct {
	Model   model.LLM
	Tools   ToolSource
	Prompts *PromptLibrary
}

// Factory creates the pipeline agents.
type Factory struct {
	model   model.LLM
	tools   ToolSource
	prompts *PromptLibrary
}

// NewFactory builds an agent factory with required dependencies.
func NewFactory(deps FactoryDeps) (*Factory, error) {
	if deps.Model == nil {
		return nil, errors.Wrap(errors.ErrInitialization, "model is required")
	}
	if deps.Tools == nil {
		deps.Tools = tools.Static(nil)
	}
	if deps.Prompts == nil {
		deps.Prompts = NewPromptLibrary(nil, DefaultMarket())
	}

	return &Factory{model: deps.Model, tools: deps.Tools, prompts: deps.Prompts}, nil
}

// Prompts returns the prompt library the factory renders from.
func (f *Factory) Prompts() *PromptLibrary { return f.prompts }

// CreateAgentSpecs loads the shared tools and builds one spec per pipeline agent, in hand-off order.
// Any failure aborts the whole initialization.
func (f *Factory) CreateAgentSpecs(ctx context.Context) ([]AgentSpec, error) {
	log := LoggerFor(ctx)

	log.Info("Fetching tools")
	ts, err := f.tools.Tools(ctx)
	if err != nil {
		return nil, errors.Mark(errors.ErrInitialization, err, "load tools")
	}
	log.Infow("Tools loaded", "tool_count", len(ts))

	specs := make([]AgentSpec, 0, len(PipelineOrder))
	for _, t := range PipelineOrder {
		spec, err := f.CreateAgentSpec(ctx, t, ts)
		if err != nil {
			return nil, err
		}
		specs = append(specs, spec)
	}

	return specs, nil
}

// CreateAgentSpec renders and augments the prompt of one agent.
func (f *Factory) CreateAgentSpec(ctx context.Context, t AgentType, ts []tool.Tool) (AgentSpec, error) {
	ctx = WithAgent(ctx, t)
	LoggerFor(ctx).Infof("Creating %s", t)

	base, err := f.prompts.Prompt(t)
	if err != nil {
		return AgentSpec{}, errors.Mark(errors.ErrInitialization, err, "prompt for "+t.String())
	}

	return AgentSpec{
		Type:   t,
		Model:  f.model,
		Tools:  ts,
		Prompt: AugmentPrompt(base, tools.Describe(ts)),
	}, nil
}

// CreateAgent constructs the ADK agent of a spec.
func (f *Factory) CreateAgent(spec AgentSpec, hooks AgentHooks) (agent.Agent, error) {
	cfg, ok := ConfigFor(spec.Type)
	if !ok {
		return nil, errors.Wrapf(errors.ErrInitialization, "unknown agent type %q", spec.Type)
	}
	if spec.Model == nil {
		return nil, errors.Wrapf(errors.ErrInitialization, "agent %s has no model", spec.Type)
	}

	ag, err := llmagent.New(llmagent.Config{
		Name:                 cfg.Name,
		Description:          cfg.Description,
		Model:                spec.Model,
		Instruction:          spec.Prompt,
		Tools:                spec.Tools,
		OutputKey:            cfg.OutputKey,
		BeforeAgentCallbacks: hooks.BeforeAgent,
		AfterAgentCallbacks:  hooks.AfterAgent,
		BeforeModelCallbacks: hooks.BeforeModel,
		AfterModelCallbacks:  hooks.AfterModel,
		BeforeToolCallbacks:  hooks.BeforeTool,
		AfterToolCallbacks:   hooks.AfterTool,
	})
	if err != nil {
		return nil, errors.Mark(errors.ErrInitialization, err, "create agent "+spec.Type.String())
	}
	return ag, nil
}
