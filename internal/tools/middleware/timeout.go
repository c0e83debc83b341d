package middleware

import (
	"context"
	"time"
)

// TimeoutMiddleware enforces per-call deadlines for tool execution.
type TimeoutMiddleware struct {
	Timeout time.Duration
}

// Wrap sets a timeout on tool execution if configured.
func (m TimeoutMiddleware) Wrap(_ string, fn ToolFunc) ToolFunc {
	if m.Timeout <= 0 {
		return fn
	}

	return func(ctx context.Context, args map[string]any) (map[string]any, error) {
		ctx, cancel := context.WithTimeout(ctx, m.Timeout)
		defer cancel()
		return fn(ctx, args)
	}
}
