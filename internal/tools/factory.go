package tools

import (
	"time"

	"google.golang.org/adk/tool"
	"google.golang.org/adk/tool/functiontool"

	"stockresearch/internal/tools/middleware"
	"stockresearch/pkg/errors"
)

// Factory provides fluent API for creating tools with middleware
type Factory struct {
	name        string
	description string
	fn          middleware.ToolFunc

	withTimeout   bool
	timeoutConfig middleware.TimeoutMiddleware

	withStats bool
}

// NewFactory creates a new factory for a tool
func NewFactory(name, description string, fn middleware.ToolFunc) *Factory {
	return &Factory{
		name:          name,
		description:   description,
		fn:            fn,
		timeoutConfig: middleware.TimeoutMiddleware{Timeout: 90 * time.Second},
	}
}

// WithTimeout enables timeout middleware
func (b *Factory) WithTimeout(timeout time.Duration) *Factory {
	b.withTimeout = true
	b.timeoutConfig = middleware.TimeoutMiddleware{Timeout: timeout}
	return b
}

// WithStats enables metrics and logging middleware
func (b *Factory) WithStats() *Factory {
	b.withStats = true
	return b
}

// Build creates the ADK tool with configured middleware applied.
// A failed call is returned as is; tools are never re-invoked.
func (b *Factory) Build() (tool.Tool, error) {
	if b.fn == nil {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "tool %s has no handler", b.name)
	}
	fn := b.handler()

	t, err := functiontool.New(
		functiontool.Config{
			Name:        b.name,
			Description: b.description,
		},
		func(ctx tool.Context, args map[string]any) (map[string]any, error) {
			return fn(ctx, args)
		},
	)
	if err != nil {
		return nil, errors.Wrapf(err, "build tool %s", b.name)
	}
	return t, nil
}

// handler chains the middleware, stats outermost so it observes the timeout.
func (b *Factory) handler() middleware.ToolFunc {
	var mws []middleware.Middleware
	if b.withStats {
		mws = append(mws, middleware.StatsMiddleware{})
	}
	if b.withTimeout {
		mws = append(mws, b.timeoutConfig)
	}
	return middleware.Chain(b.name, b.fn, mws...)
}
