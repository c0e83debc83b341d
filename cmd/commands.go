package main

import (
	"fmt"
	"os"

	"stockresearch/internal/agents"
	"stockresearch/pkg/errors"
)

// AnalyzeCmd runs one analysis session and prints its outcome.
type AnalyzeCmd struct {
	Query string `short:"q" help:"Research question; defaults to the NSE short-term screen"`
	Raw   bool   `help:"Also print every streamed chunk"`
	JSON  bool   `name:"json" help:"Print the result as JSON instead of text"`
}

// Run executes the analysis.
func (c *AnalyzeCmd) Run(a *app) error {
	container, err := NewContainer(a.cfg, a.log, a.tracker)
	if err != nil {
		return err
	}
	defer container.Shutdown()

	if err := container.StartObservability(); err != nil {
		return err
	}

	result, err := container.Analysis.Analyze(a.ctx, c.Query)
	if err != nil {
		return err
	}

	if c.JSON {
		return renderJSON(os.Stdout, result)
	}
	renderResult(os.Stdout, result, a.cfg.Market.Currency)
	if c.Raw {
		renderChunks(os.Stdout, result.RawOutput)
	}
	return nil
}

// PromptsCmd prints the prompts agents receive when the tool server offers nothing.
type PromptsCmd struct {
	Agent string `arg:"" optional:"" help:"Agent type, e.g. stock_finder_agent; all agents when omitted"`
}

// Run renders the prompts.
func (c *PromptsCmd) Run(a *app) error {
	lib, err := providePrompts(a.cfg)
	if err != nil {
		return err
	}

	types := append([]agents.AgentType{agents.AgentSupervisor}, agents.PipelineOrder...)
	if c.Agent != "" {
		if _, ok := agents.ConfigFor(agents.AgentType(c.Agent)); !ok {
			return errors.Wrapf(errors.ErrInvalidInput, "unknown agent %q", c.Agent)
		}
		types = []agents.AgentType{agents.AgentType(c.Agent)}
	}

	for _, t := range types {
		base, err := lib.Prompt(t)
		if err != nil {
			return err
		}
		prompt := base
		if t != agents.AgentSupervisor {
			prompt = agents.AugmentPrompt(base, nil)
		}
		fmt.Fprintln(os.Stdout, header(t.String()))
		fmt.Fprintln(os.Stdout, prompt)
		fmt.Fprintln(os.Stdout)
	}
	return nil
}

// VersionCmd shows version information.
type VersionCmd struct{}

// Run prints the version.
func (c *VersionCmd) Run() error {
	fmt.Printf("stockresearch %s\n", version)
	return nil
}
