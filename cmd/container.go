package main

import (
	"context"
	"time"

	"stockresearch/internal/adapters/adk"
	"stockresearch/internal/adapters/ai"
	"stockresearch/internal/adapters/config"
	"stockresearch/internal/adapters/mcp"
	"stockresearch/internal/agents"
	"stockresearch/internal/agents/callbacks"
	"stockresearch/internal/agents/workflows"
	"stockresearch/internal/api"
	"stockresearch/internal/api/health"
	"stockresearch/internal/metrics"
	"stockresearch/internal/services/analysis"
	"stockresearch/internal/tools"
	"stockresearch/pkg/errors"
	"stockresearch/pkg/logger"
	"stockresearch/pkg/templates"
)

// Container holds the wired analysis pipeline and the resources it owns.
// Components are listed in initialization order.
type Container struct {
	Config       *config.Config
	Log          *logger.Logger
	ErrorTracker errors.Tracker

	// External adapters
	ToolServer *mcp.Client // nil when MCP is disabled

	// Business logic
	Supervisor *agents.Supervisor
	Analysis   *analysis.Service

	// Observability listener, nil unless METRICS_ADDR is set
	HTTPServer *api.Server
}

// NewContainer wires the pipeline without starting anything that needs the network.
// The tool server is launched lazily on the first analysis.
func NewContainer(cfg *config.Config, log *logger.Logger, tracker errors.Tracker) (*Container, error) {
	c := &Container{Config: cfg, Log: log, ErrorTracker: tracker}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Mark(errors.ErrInitialization, err, "invalid configuration")
	}

	metrics.Init()

	llm, err := c.provideModel()
	if err != nil {
		return nil, err
	}

	prompts, err := providePrompts(cfg)
	if err != nil {
		return nil, err
	}

	baseFactory, err := agents.NewFactory(agents.FactoryDeps{
		Model:   llm,
		Tools:   c.provideTools(),
		Prompts: prompts,
	})
	if err != nil {
		return nil, err
	}

	workflowFactory := workflows.NewFactory(baseFactory, workflows.Config{
		AppName: cfg.App.Name,
		Hooks:   callbacks.Hooks(callbacks.Deps{Tracker: tracker}),
	})

	c.Supervisor, err = agents.NewSupervisor(baseFactory, workflowFactory.Builder())
	if err != nil {
		return nil, err
	}

	c.Analysis, err = analysis.NewService(c.Supervisor, tracker, analysis.Config{
		DefaultQuery: cfg.Analysis.DefaultQuery,
		Timeout:      cfg.Analysis.Timeout,
	})
	if err != nil {
		return nil, err
	}

	return c, nil
}

func (c *Container) provideModel() (*adk.ModelAdapter, error) {
	cfg := c.Config.LLM

	provider, err := ai.NewOpenAICompatibleProvider(ai.OpenAICompatibleConfig{
		Name:        "groq",
		APIKey:      cfg.APIKey,
		BaseURL:     cfg.BaseURL,
		Timeout:     cfg.Timeout,
		RateLimiter: ai.NewRateLimiter("groq", cfg.RequestsPerMinute),
	})
	if err != nil {
		return nil, errors.Mark(errors.ErrInitialization, err, "llm provider")
	}

	return adk.NewModelAdapter(provider, adk.ModelOptions{
		Name:        cfg.Model,
		Temperature: cfg.Temperature,
		MaxTokens:   cfg.MaxTokens,
	}), nil
}

func (c *Container) provideTools() agents.ToolSource {
	cfg := c.Config.MCP
	if !cfg.Enabled {
		c.Log.Warn("MCP tool server disabled, agents will run without tools")
		return tools.Static(nil)
	}

	c.ToolServer = mcp.New(mcp.Config{
		Command:         cfg.Command,
		Args:            cfg.Args,
		APIToken:        cfg.APIToken,
		WebUnlockerZone: cfg.WebUnlockerZone,
		BrowserZone:     cfg.BrowserZone,
	})
	return tools.ServerSource{
		Server:  c.ToolServer,
		Options: tools.DiscoverOptions{Timeout: cfg.ToolTimeout},
	}
}

// StartObservability exposes /metrics and health checks when METRICS_ADDR is set.
func (c *Container) StartObservability() error {
	if c.Config.Metrics.Addr == "" {
		return nil
	}

	if err := metrics.RegisterPipelineCollector(metrics.NewPipelineCollector(c.Supervisor)); err != nil {
		return errors.Wrap(err, "register pipeline collector")
	}

	checks := map[string]health.Check{"pipeline": pipelineCheck(c.Supervisor)}
	if c.ToolServer != nil {
		checks["tool_server"] = c.ToolServer.Ping
	}

	handler := health.New(c.Log, c.Config.App.Name, version, checks)
	c.HTTPServer = api.NewServer(api.ServerConfig{
		Addr:        c.Config.Metrics.Addr,
		ServiceName: c.Config.App.Name,
		Version:     version,
	}, handler, c.Log)

	return c.HTTPServer.Start()
}

// pipelineCheck is unready only while initialization has failed. A built pipeline
// stays ready after a failed analysis, and lazy init before the first run counts as ready.
func pipelineCheck(s *agents.Supervisor) health.Check {
	return func(context.Context) error {
		if s.State() == agents.StateFailed && !s.Initialized() {
			return errors.Wrap(errors.ErrUnavailable, "pipeline initialization failed")
		}
		return nil
	}
}

// Shutdown releases the tool server process and stops the listener.
func (c *Container) Shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if c.HTTPServer != nil {
		if err := c.HTTPServer.Shutdown(ctx); err != nil {
			c.Log.Warnw("Metrics server shutdown failed", "error", err)
		}
	}
	if c.ToolServer != nil {
		if err := c.ToolServer.Close(); err != nil {
			c.Log.Warnw("Tool server shutdown failed", "error", err)
		}
	}
}

// providePrompts renders the embedded prompts, overridden by PROMPTS_DIR when set.
func providePrompts(cfg *config.Config) (*agents.PromptLibrary, error) {
	market := marketFromConfig(cfg.Market)
	if cfg.App.PromptsDir == "" {
		return agents.NewPromptLibrary(nil, market), nil
	}

	reg, err := templates.WithOverrides(cfg.App.PromptsDir)
	if err != nil {
		return nil, errors.Mark(errors.ErrInitialization, err, "load prompt overrides")
	}
	return agents.NewPromptLibrary(reg, market), nil
}

func marketFromConfig(m config.MarketConfig) agents.Market {
	return agents.Market{
		Exchange:     m.Exchange,
		ExchangeName: m.ExchangeName,
		Country:      m.Country,
		Currency:     m.Currency,
		CurrencyName: m.CurrencyName,
		PickCount:    m.PickCount,
	}
}
