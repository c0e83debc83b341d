package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Analysis metrics
	AnalysisRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stockresearch_analysis_runs_total",
			Help: "Total number of analysis sessions",
		},
		[]string{"status"}, // status: success|error
	)

	AnalysisDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "stockresearch_analysis_duration_seconds",
			Help:    "End-to-end analysis duration in seconds",
			Buckets: []float64{5, 15, 30, 60, 120, 300, 600},
		},
	)

	StreamChunks = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "stockresearch_stream_chunks_total",
			Help: "Total number of progress chunks emitted by the supervisor",
		},
	)

	// Agent metrics
	AgentHandoffs = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stockresearch_agent_handoffs_total",
			Help: "Total number of control transfers to a specialist agent",
		},
		[]string{"agent"},
	)

	AgentLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "stockresearch_agent_latency_seconds",
			Help:    "Specialist agent turn latency in seconds",
			Buckets: []float64{0.5, 1, 2, 5, 10, 20, 30, 60, 120},
		},
		[]string{"agent"},
	)

	// LLM metrics
	LLMCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stockresearch_llm_calls_total",
			Help: "Total number of chat completion calls",
		},
		[]string{"model", "status"}, // status: success|error|rate_limited
	)

	LLMTokens = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stockresearch_llm_tokens_total",
			Help: "Total tokens consumed",
		},
		[]string{"model", "type"}, // type: input|output
	)

	// Tool metrics
	ToolExecutions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stockresearch_tool_executions_total",
			Help: "Total number of tool executions",
		},
		[]string{"tool", "status"},
	)

	ToolLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "stockresearch_tool_latency_seconds",
			Help:    "Tool execution latency in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"tool"},
	)
)

var initOnce sync.Once

// Init registers all metrics with Prometheus; safe to call more than once
func Init() {
	initOnce.Do(func() {
		prometheus.MustRegister(AnalysisRuns)
		prometheus.MustRegister(AnalysisDuration)
		prometheus.MustRegister(StreamChunks)

		prometheus.MustRegister(AgentHandoffs)
		prometheus.MustRegister(AgentLatency)

		prometheus.MustRegister(LLMCalls)
		prometheus.MustRegister(LLMTokens)

		prometheus.MustRegister(ToolExecutions)
		prometheus.MustRegister(ToolLatency)
	})
}

// Handler returns Prometheus HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

// RecordAnalysis records a finished analysis session
func RecordAnalysis(duration time.Duration, err error) {
	AnalysisRuns.WithLabelValues(status(err)).Inc()
	AnalysisDuration.Observe(duration.Seconds())
}

// RecordHandoff records control moving to a specialist
func RecordHandoff(agent string) {
	AgentHandoffs.WithLabelValues(agent).Inc()
}

// RecordAgentTurn records how long a specialist held control
func RecordAgentTurn(agent string, latency time.Duration) {
	AgentLatency.WithLabelValues(agent).Observe(latency.Seconds())
}

// RecordLLMCall records a chat completion and its token usage
func RecordLLMCall(model string, inputTokens, outputTokens int, err error) {
	LLMCalls.WithLabelValues(model, status(err)).Inc()

	if inputTokens > 0 {
		LLMTokens.WithLabelValues(model, "input").Add(float64(inputTokens))
	}
	if outputTokens > 0 {
		LLMTokens.WithLabelValues(model, "output").Add(float64(outputTokens))
	}
}

// RecordLLMRateLimited records a call refused by the local pacer
func RecordLLMRateLimited(model string) {
	LLMCalls.WithLabelValues(model, "rate_limited").Inc()
}

// RecordToolExecution records a tool execution
func RecordToolExecution(tool string, latency time.Duration, err error) {
	ToolExecutions.WithLabelValues(tool, status(err)).Inc()
	ToolLatency.WithLabelValues(tool).Observe(latency.Seconds())
}

// RecordChunk records one progress chunk handed to the caller
func RecordChunk() {
	StreamChunks.Inc()
}
