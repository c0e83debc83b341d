package agents

import (
	"stockresearch/pkg/errors"
	"stockresearch/pkg/templates"
)

// Market parameterizes the agent prompts for one exchange.
type Market struct {
	Exchange     string
	ExchangeName string
	Country      string
	Currency     string
	CurrencyName string
	PickCount    string
}

// DefaultMarket is the National Stock Exchange of India.
func DefaultMarket() Market {
	return Market{
		Exchange:     "NSE",
		ExchangeName: "National Stock Exchange",
		Country:      "Indian",
		Currency:     "₹",
		CurrencyName: "Indian Rupees",
		PickCount:    "2-3",
	}
}

// PromptLibrary renders the base instruction of every agent.
type PromptLibrary struct {
	templates *templates.Registry
	market    Market
}

// NewPromptLibrary builds a prompt library; a nil registry falls back to the embedded templates.
func NewPromptLibrary(reg *templates.Registry, market Market) *PromptLibrary {
	if reg == nil {
		reg = templates.Get()
	}
	return &PromptLibrary{templates: reg, market: market}
}

// Market returns the market the prompts are rendered for.
func (p *PromptLibrary) Market() Market { return p.market }

// Prompt renders the base prompt of an agent type.
func (p *PromptLibrary) Prompt(t AgentType) (string, error) {
	cfg, ok := ConfigFor(t)
	if !ok {
		return "", errors.Wrapf(errors.ErrInvalidInput, "unknown agent type %q", t)
	}
	return p.templates.Render(cfg.SystemPromptTemplate, p.market)
}

// SupervisorBrief renders the workflow contract the supervisor hands to every agent.
func (p *PromptLibrary) SupervisorBrief() (string, error) {
	return p.Prompt(AgentSupervisor)
}
