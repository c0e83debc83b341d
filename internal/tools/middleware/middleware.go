package middleware

import "context"

// ToolFunc is the handler shape shared by every tool the agents can call.
type ToolFunc func(ctx context.Context, args map[string]any) (map[string]any, error)

// Middleware decorates a ToolFunc.
type Middleware interface {
	Wrap(name string, fn ToolFunc) ToolFunc
}

// Chain applies middlewares so that the first one listed is the outermost.
func Chain(name string, fn ToolFunc, mws ...Middleware) ToolFunc {
	for i := len(mws) - 1; i >= 0; i-- {
		if mws[i] != nil {
			fn = mws[i].Wrap(name, fn)
		}
	}
	return fn
}
