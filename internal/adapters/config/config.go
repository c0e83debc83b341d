package config

import (
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"stockresearch/pkg/errors"
)

type Config struct {
	App           AppConfig
	LLM           LLMConfig
	MCP           MCPConfig
	Market        MarketConfig
	Analysis      AnalysisConfig
	ErrorTracking ErrorTrackingConfig
	Metrics       MetricsConfig
}

type AppConfig struct {
	Name      string `envconfig:"APP_NAME" default:"stockresearch"`
	Env       string `envconfig:"APP_ENV" default:"development"`
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogDir    string `envconfig:"LOG_DIR" default:"logs"`
	LogToFile bool   `envconfig:"LOG_TO_FILE" default:"true"`

	// PromptsDir holds *.tmpl files that replace embedded prompts with the same id.
	PromptsDir string `envconfig:"PROMPTS_DIR"`
}

// LLMConfig targets any OpenAI-compatible chat completions endpoint (Groq by default)
type LLMConfig struct {
	APIKey            string        `envconfig:"GROQ_API_KEY"`
	Model             string        `envconfig:"MODEL_NAME" default:"llama-3.3-70b-versatile"`
	BaseURL           string        `envconfig:"LLM_BASE_URL" default:"https://api.groq.com/openai/v1"`
	Temperature       float64       `envconfig:"LLM_TEMPERATURE" default:"0.2"`
	MaxTokens         int           `envconfig:"LLM_MAX_TOKENS" default:"4096"`
	RequestsPerMinute int           `envconfig:"LLM_REQUESTS_PER_MINUTE" default:"30"`
	Timeout           time.Duration `envconfig:"LLM_TIMEOUT" default:"60s"`
}

// MCPConfig describes the stdio tool server and the Bright Data credentials passed to it
type MCPConfig struct {
	Enabled         bool     `envconfig:"MCP_ENABLED" default:"true"`
	Command         string   `envconfig:"MCP_COMMAND" default:"npx"`
	Args            []string `envconfig:"MCP_ARGS" default:"@brightdata/mcp"`
	APIToken        string   `envconfig:"BRIGHT_DATA_API_TOKEN"`
	WebUnlockerZone string   `envconfig:"WEB_UNLOCKER_ZONE" default:"unblocker"`
	BrowserZone     string   `envconfig:"BROWSER_ZONE" default:"scraping_browser"`

	// ToolTimeout bounds a single remote tool call; zero leaves it to the analysis context.
	ToolTimeout time.Duration `envconfig:"MCP_TOOL_TIMEOUT" default:"0"`
}

// MarketConfig fills the placeholders of the agent prompt templates
type MarketConfig struct {
	Exchange     string `envconfig:"MARKET_EXCHANGE" default:"NSE"`
	ExchangeName string `envconfig:"MARKET_EXCHANGE_NAME" default:"National Stock Exchange"`
	Country      string `envconfig:"MARKET_COUNTRY" default:"Indian"`
	Currency     string `envconfig:"MARKET_CURRENCY" default:"₹"`
	CurrencyName string `envconfig:"MARKET_CURRENCY_NAME" default:"Indian Rupees"`
	PickCount    string `envconfig:"MARKET_PICK_COUNT" default:"2-3"`
}

type AnalysisConfig struct {
	DefaultQuery string        `envconfig:"ANALYSIS_DEFAULT_QUERY"`
	Timeout      time.Duration `envconfig:"ANALYSIS_TIMEOUT" default:"0"` // 0 disables the deadline
}

type ErrorTrackingConfig struct {
	Enabled     bool   `envconfig:"ERROR_TRACKING_ENABLED" default:"false"`
	SentryDSN   string `envconfig:"SENTRY_DSN"`
	Environment string `envconfig:"SENTRY_ENVIRONMENT" default:"production"`
}

type MetricsConfig struct {
	Addr string `envconfig:"METRICS_ADDR"` // empty disables the /metrics listener
}

// Validate checks cross-field requirements that envconfig tags cannot express
func (c *Config) Validate() error {
	if strings.TrimSpace(c.LLM.APIKey) == "" {
		return errors.Wrap(errors.ErrInvalidInput, "GROQ_API_KEY is required")
	}
	if c.LLM.RequestsPerMinute <= 0 {
		return errors.Wrapf(errors.ErrInvalidInput, "LLM_REQUESTS_PER_MINUTE must be positive, got %d", c.LLM.RequestsPerMinute)
	}
	if c.MCP.Enabled && strings.TrimSpace(c.MCP.Command) == "" {
		return errors.Wrap(errors.ErrInvalidInput, "MCP_COMMAND is required when MCP_ENABLED is set")
	}
	if c.ErrorTracking.Enabled && c.ErrorTracking.SentryDSN == "" {
		return errors.Wrap(errors.ErrInvalidInput, "SENTRY_DSN is required when error tracking is enabled")
	}
	return nil
}

// Load reads configuration from environment variables
// It first tries to load .env file (useful for local development)
func Load() (*Config, error) {
	// Load .env file if exists (ignore error if not exists)
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, errors.Wrap(err, "failed to process env config")
	}

	return &cfg, nil
}
