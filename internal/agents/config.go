package agents

// AgentConfig captures the static settings of one pipeline agent.
type AgentConfig struct {
	Type                 AgentType
	Name                 string
	Description          string
	SystemPromptTemplate string
	// OutputKey stores the agent's final answer in session state for the agents after it.
	OutputKey string
}

// DefaultAgentConfigs describes every agent of the research pipeline plus the supervisor.
var DefaultAgentConfigs = map[AgentType]AgentConfig{
	AgentStockFinder: {
		Type:                 AgentStockFinder,
		Name:                 string(AgentStockFinder),
		Description:          "Identifies promising listed stocks for short-term trading",
		SystemPromptTemplate: "agents/stock_finder",
		OutputKey:            "stock_picks",
	},
	AgentMarketData: {
		Type:                 AgentMarketData,
		Name:                 string(AgentMarketData),
		Description:          "Gathers current market data and technical indicators for the selected stocks",
		SystemPromptTemplate: "agents/market_data",
		OutputKey:            "market_data",
	},
	AgentNewsAnalyst: {
		Type:                 AgentNewsAnalyst,
		Name:                 string(AgentNewsAnalyst),
		Description:          "Analyzes recent news and sentiment for the selected stocks",
		SystemPromptTemplate: "agents/news_analyst",
		OutputKey:            "news_analysis",
	},
	AgentRecommendation: {
		Type:                 AgentRecommendation,
		Name:                 string(AgentRecommendation),
		Description:          "Synthesizes all findings into BUY/SELL/HOLD recommendations",
		SystemPromptTemplate: "agents/recommendation",
		OutputKey:            "recommendations",
	},
	AgentSupervisor: {
		Type:                 AgentSupervisor,
		Name:                 string(AgentSupervisor),
		Description:          "Runs the research agents in a fixed sequence",
		SystemPromptTemplate: "agents/supervisor",
	},
}

// ConfigFor returns the config of an agent type.
func ConfigFor(t AgentType) (AgentConfig, bool) {
	cfg, ok := DefaultAgentConfigs[t]
	return cfg, ok
}
