package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockresearch/pkg/errors"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("GROQ_API_KEY", "gsk-test")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "llama-3.3-70b-versatile", cfg.LLM.Model)
	assert.Equal(t, "https://api.groq.com/openai/v1", cfg.LLM.BaseURL)
	assert.Equal(t, 30, cfg.LLM.RequestsPerMinute)
	assert.Equal(t, 60*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, "npx", cfg.MCP.Command)
	assert.Equal(t, []string{"@brightdata/mcp"}, cfg.MCP.Args)
	assert.Equal(t, "unblocker", cfg.MCP.WebUnlockerZone)
	assert.Equal(t, "scraping_browser", cfg.MCP.BrowserZone)
	assert.Equal(t, "NSE", cfg.Market.Exchange)
	assert.Equal(t, "₹", cfg.Market.Currency)
	assert.Zero(t, cfg.Analysis.Timeout)
	assert.NoError(t, cfg.Validate())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("GROQ_API_KEY", "gsk-test")
	t.Setenv("MODEL_NAME", "llama-3.1-8b-instant")
	t.Setenv("MCP_ARGS", "-y,@brightdata/mcp")
	t.Setenv("ANALYSIS_TIMEOUT", "5m")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "llama-3.1-8b-instant", cfg.LLM.Model)
	assert.Equal(t, []string{"-y", "@brightdata/mcp"}, cfg.MCP.Args)
	assert.Equal(t, 5*time.Minute, cfg.Analysis.Timeout)
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			LLM: LLMConfig{APIKey: "k", RequestsPerMinute: 30},
			MCP: MCPConfig{Enabled: true, Command: "npx"},
		}
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing api key", func(c *Config) { c.LLM.APIKey = " " }},
		{"zero rate", func(c *Config) { c.LLM.RequestsPerMinute = 0 }},
		{"mcp without command", func(c *Config) { c.MCP.Command = "" }},
		{"sentry without dsn", func(c *Config) { c.ErrorTracking.Enabled = true }},
	}

	require.NoError(t, base().Validate())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			assert.True(t, errors.Is(cfg.Validate(), errors.ErrInvalidInput))
		})
	}
}

func TestLoadOptionalPaths(t *testing.T) {
	t.Setenv("GROQ_API_KEY", "gsk-test")
	t.Setenv("PROMPTS_DIR", "/etc/stockresearch/prompts")
	t.Setenv("MCP_TOOL_TIMEOUT", "90s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/etc/stockresearch/prompts", cfg.App.PromptsDir)
	assert.Equal(t, 90*time.Second, cfg.MCP.ToolTimeout)
}
