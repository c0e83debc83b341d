package middleware

import (
	"context"
	"time"

	"stockresearch/internal/metrics"
	"stockresearch/pkg/logger"
)

// StatsMiddleware records tool latency and outcome in Prometheus and the session log.
type StatsMiddleware struct{}

// Wrap adds stats tracking around a tool.
func (StatsMiddleware) Wrap(name string, fn ToolFunc) ToolFunc {
	return func(ctx context.Context, args map[string]any) (map[string]any, error) {
		start := time.Now()
		result, err := fn(ctx, args)
		elapsed := time.Since(start)

		metrics.RecordToolExecution(name, elapsed, err)

		log := logger.FromContext(ctx)
		if err != nil {
			log.Warnw("Tool execution failed", "tool", name, "duration", elapsed, "error", err)
		} else {
			log.Debugw("Tool execution finished", "tool", name, "duration", elapsed)
		}

		return result, err
	}
}
