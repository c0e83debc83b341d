package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// PipelineSource exposes point-in-time pipeline facts for scraping
type PipelineSource interface {
	StateName() string
	ToolCount() int
}

// pipelineStates lists every supervisor state so the gauge reports a one-hot vector
var pipelineStates = []string{"uninitialized", "initializing", "ready", "running", "completed", "failed"}

// PipelineCollector reports the supervisor state and the number of discovered tools
type PipelineCollector struct {
	source PipelineSource

	state     *prometheus.Desc
	toolCount *prometheus.Desc
}

// NewPipelineCollector creates a collector bound to a supervisor
func NewPipelineCollector(source PipelineSource) *PipelineCollector {
	return &PipelineCollector{
		source: source,
		state: prometheus.NewDesc(
			"stockresearch_pipeline_state",
			"Current supervisor state (1 for the active state)",
			[]string{"state"}, nil,
		),
		toolCount: prometheus.NewDesc(
			"stockresearch_tools_available",
			"Number of tools discovered from the tool server",
			nil, nil,
		),
	}
}

// Describe implements prometheus.Collector
func (c *PipelineCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.state
	ch <- c.toolCount
}

// Collect implements prometheus.Collector
func (c *PipelineCollector) Collect(ch chan<- prometheus.Metric) {
	current := c.source.StateName()
	for _, s := range pipelineStates {
		v := 0.0
		if s == current {
			v = 1
		}
		ch <- prometheus.MustNewConstMetric(c.state, prometheus.GaugeValue, v, s)
	}

	ch <- prometheus.MustNewConstMetric(c.toolCount, prometheus.GaugeValue, float64(c.source.ToolCount()))
}

// RegisterPipelineCollector registers the collector with the default registry
func RegisterPipelineCollector(collector *PipelineCollector) error {
	return prometheus.Register(collector)
}
