package main

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockresearch/internal/agents"
)

const recommendationText = `STOCK_SYMBOL: RELIANCE
RECOMMENDATION: BUY
TARGET PRICE: ₹3120.5
Current Price: ₹2950`

func sampleResult() *agents.AnalysisResult {
	return &agents.AnalysisResult{
		SessionID: "sess-1",
		Status:    agents.StatusCompleted,
		Timestamp: time.Date(2026, 10, 15, 9, 30, 0, 0, time.UTC),
		Messages: []agents.Message{
			&agents.ChatMessage{Role: agents.RoleUser, Agent: "user", Text: "Find stocks"},
			agents.HandoffMessage{From: agents.AgentSupervisor, To: agents.AgentRecommendation},
			&agents.ChatMessage{Role: agents.RoleModel, Agent: "recommendation_agent", Text: recommendationText},
		},
	}
}

func TestFormatPrice(t *testing.T) {
	valid := agents.ParsePrice("₹12345.5")
	raw := agents.ParsePrice("₹abc")

	assert.Equal(t, "₹12,345.50", formatPrice(&valid, "₹"))
	assert.Equal(t, "abc", formatPrice(&raw, "₹"))
	assert.Equal(t, "-", formatPrice(nil, "₹"))
}

func TestRenderResult(t *testing.T) {
	var buf bytes.Buffer
	renderResult(&buf, sampleResult(), "₹")

	out := buf.String()
	assert.Contains(t, out, "Session sess-1, 3 messages in 0 chunks")
	assert.Contains(t, out, recommendationText)
	assert.Contains(t, out, "RELIANCE")
	assert.Contains(t, out, "₹3,120.50")
	assert.Contains(t, out, "₹2,950.00")
}

func TestRenderResultWithoutRecommendations(t *testing.T) {
	var buf bytes.Buffer
	renderResult(&buf, &agents.AnalysisResult{SessionID: "s"}, "₹")

	assert.Contains(t, buf.String(), "No analysis results available.")
	assert.NotContains(t, buf.String(), "Recommendations")
}

func TestRenderJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, renderJSON(&buf, sampleResult()))

	var got struct {
		SessionID       string           `json:"session_id"`
		Display         string           `json:"display"`
		Recommendations []map[string]any `json:"recommendations"`
		Messages        []jsonMessage    `json:"messages"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))

	assert.Equal(t, "sess-1", got.SessionID)
	assert.Equal(t, recommendationText, got.Display)
	require.Len(t, got.Recommendations, 1)
	assert.Equal(t, "RELIANCE", got.Recommendations[0]["symbol"])
	assert.Equal(t, 3120.5, got.Recommendations[0]["target_price"])
	require.Len(t, got.Messages, 3)
	assert.Equal(t, "Transferring to recommendation_agent", got.Messages[1].Note)
}

func TestHeaderWidth(t *testing.T) {
	assert.Len(t, header("Recommendations"), ruleWidth)
}
