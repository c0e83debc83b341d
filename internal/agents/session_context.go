package agents

import (
	"context"

	"stockresearch/pkg/logger"
)

const unsetField = "-"

// SessionContext correlates log lines of one analysis run. It carries no business state.
type SessionContext struct {
	SessionID string
	AgentID   AgentType
}

type (
	sessionKey    struct{}
	baseLoggerKey struct{}
)

// WithSession stores sc in ctx and binds a logger tagged with its session and agent.
func WithSession(ctx context.Context, sc SessionContext) context.Context {
	base, ok := ctx.Value(baseLoggerKey{}).(*logger.Logger)
	if !ok || base == nil {
		base = logger.FromContext(ctx)
		ctx = context.WithValue(ctx, baseLoggerKey{}, base)
	}

	ctx = context.WithValue(ctx, sessionKey{}, sc)
	return logger.WithContext(ctx, base.With("session", orUnset(sc.SessionID), "agent", orUnset(string(sc.AgentID))))
}

// WithAgent switches the active agent of the session stored in ctx.
func WithAgent(ctx context.Context, agent AgentType) context.Context {
	sc := SessionFrom(ctx)
	sc.AgentID = agent
	return WithSession(ctx, sc)
}

// SessionFrom returns the session stored in ctx, or the zero value.
func SessionFrom(ctx context.Context) SessionContext {
	sc, _ := ctx.Value(sessionKey{}).(SessionContext)
	return sc
}

// LoggerFor returns the session-bound logger of ctx.
func LoggerFor(ctx context.Context) *logger.Logger {
	if _, ok := ctx.Value(sessionKey{}).(SessionContext); !ok {
		ctx = WithSession(ctx, SessionContext{})
	}
	return logger.FromContext(ctx)
}

func orUnset(s string) string {
	if s == "" {
		return unsetField
	}
	return s
}
