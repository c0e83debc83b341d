package agents

import "strings"

// AgentType enumerates the agents of the research pipeline.
type AgentType string

const (
	AgentStockFinder    AgentType = "stock_finder_agent"
	AgentMarketData     AgentType = "market_data_agent"
	AgentNewsAnalyst    AgentType = "news_analyst_agent"
	AgentRecommendation AgentType = "recommendation_agent"

	// AgentSupervisor owns the hand-off order; it never analyses anything itself.
	AgentSupervisor AgentType = "supervisor"
)

// PipelineOrder is the fixed hand-off order. Each agent completes before the next starts.
var PipelineOrder = []AgentType{
	AgentStockFinder,
	AgentMarketData,
	AgentNewsAnalyst,
	AgentRecommendation,
}

// String returns the agent name used in logs, metrics and ADK events.
func (t AgentType) String() string { return string(t) }

// StockAction is the trading call made by the recommendation agent.
type StockAction string

const (
	ActionBuy  StockAction = "BUY"
	ActionSell StockAction = "SELL"
	ActionHold StockAction = "HOLD"
)

// ParseStockAction maps free text such as "buy" or "STRONG BUY" onto an action.
func ParseStockAction(s string) (StockAction, bool) {
	upper := strings.ToUpper(s)
	for _, a := range []StockAction{ActionBuy, ActionSell, ActionHold} {
		if strings.Contains(upper, string(a)) {
			return a, true
		}
	}
	return "", false
}

// NewsSentiment is the overall tone reported by the news analyst.
type NewsSentiment string

const (
	SentimentPositive NewsSentiment = "POSITIVE"
	SentimentNegative NewsSentiment = "NEGATIVE"
	SentimentNeutral  NewsSentiment = "NEUTRAL"
)

// ParseNewsSentiment maps free text onto a sentiment.
func ParseNewsSentiment(s string) (NewsSentiment, bool) {
	switch NewsSentiment(strings.ToUpper(strings.TrimSpace(s))) {
	case SentimentPositive:
		return SentimentPositive, true
	case SentimentNegative:
		return SentimentNegative, true
	case SentimentNeutral:
		return SentimentNeutral, true
	}
	return "", false
}
