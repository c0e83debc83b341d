package workflows

import (
	"context"

	"google.golang.org/adk/agent"
	"google.golang.org/adk/agent/workflowagents/sequentialagent"
	"google.golang.org/adk/runner"
	"google.golang.org/adk/session"

	"stockresearch/internal/agents"
	"stockresearch/pkg/errors"
	"stockresearch/pkg/logger"
)

const defaultUserID = "local"

// Config configures the workflow factory.
type Config struct {
	AppName string
	// UserID owns the ADK sessions; analyses are not multi-tenant.
	UserID         string
	Hooks          agents.AgentHooks
	SessionService session.Service
}

// Factory creates the research pipeline workflow
type Factory struct {
	baseFactory *agents.Factory
	cfg         Config
	log         *logger.Logger
}

// NewFactory creates a new workflow factory
func NewFactory(baseFactory *agents.Factory, cfg Config) *Factory {
	if cfg.AppName == "" {
		cfg.AppName = "stockresearch"
	}
	if cfg.UserID == "" {
		cfg.UserID = defaultUserID
	}
	if cfg.SessionService == nil {
		cfg.SessionService = session.InMemoryService()
	}
	return &Factory{
		baseFactory: baseFactory,
		cfg:         cfg,
		log:         logger.Get().With("component", "workflow_factory"),
	}
}

// Builder returns the coordinator builder handed to the supervisor.
func (f *Factory) Builder() agents.CoordinatorBuilder {
	return func(ctx context.Context, specs []agents.AgentSpec, brief string) (agents.Coordinator, error) {
		return f.CreateResearchPipeline(ctx, specs, brief)
	}
}

// CreateResearchWorkflow compiles the specs into a sequential agent:
// stock finder → market data → news analyst → recommendation
func (f *Factory) CreateResearchWorkflow(specs []agents.AgentSpec) (agent.Agent, error) {
	if len(specs) != len(agents.PipelineOrder) {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "expected %d agent specs, got %d", len(agents.PipelineOrder), len(specs))
	}

	subAgents := make([]agent.Agent, 0, len(specs))
	for i, spec := range specs {
		if spec.Type != agents.PipelineOrder[i] {
			return nil, errors.Wrapf(errors.ErrInvalidInput, "agent %s at position %d, want %s", spec.Type, i, agents.PipelineOrder[i])
		}
		ag, err := f.baseFactory.CreateAgent(spec, f.cfg.Hooks)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to create agent %s", spec.Type)
		}
		subAgents = append(subAgents, ag)
	}

	supervisorCfg, _ := agents.ConfigFor(agents.AgentSupervisor)
	workflow, err := sequentialagent.New(sequentialagent.Config{
		AgentConfig: agent.Config{
			Name:        supervisorCfg.Name,
			Description: supervisorCfg.Description,
			SubAgents:   subAgents,
		},
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create sequential workflow")
	}

	f.log.Info("Research workflow created successfully")
	return workflow, nil
}

// CreateResearchPipeline builds the workflow and the runner that drives it.
func (f *Factory) CreateResearchPipeline(ctx context.Context, specs []agents.AgentSpec, brief string) (*ResearchPipeline, error) {
	workflow, err := f.CreateResearchWorkflow(specs)
	if err != nil {
		return nil, err
	}

	r, err := runner.New(runner.Config{
		AppName:        f.cfg.AppName,
		Agent:          workflow,
		SessionService: f.cfg.SessionService,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create ADK runner")
	}

	agents.LoggerFor(ctx).Infow("Supervisor compiled", "agents", len(specs))
	return &ResearchPipeline{
		appName:  f.cfg.AppName,
		userID:   f.cfg.UserID,
		runner:   r,
		sessions: f.cfg.SessionService,
		brief:    brief,
	}, nil
}
