package middleware

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errTransient = errors.New("transient")

func TestTimeoutSetsDeadline(t *testing.T) {
	fn := TimeoutMiddleware{Timeout: 20 * time.Millisecond}.Wrap("t", func(ctx context.Context, _ map[string]any) (map[string]any, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})

	_, err := fn(context.Background(), nil)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

type tagMiddleware string

func (m tagMiddleware) Wrap(_ string, fn ToolFunc) ToolFunc {
	return func(ctx context.Context, args map[string]any) (map[string]any, error) {
		out, err := fn(ctx, args)
		out["order"] = out["order"].(string) + string(m)
		return out, err
	}
}

func TestChainOrder(t *testing.T) {
	base := func(context.Context, map[string]any) (map[string]any, error) {
		return map[string]any{"order": ""}, nil
	}

	out, err := Chain("t", base, tagMiddleware("a"), nil, tagMiddleware("b"))(context.Background(), nil)
	require.NoError(t, err)
	// inner middleware runs its post-processing first
	assert.Equal(t, "ba", out["order"])
}

func TestChainReturnsFirstFailure(t *testing.T) {
	calls := 0
	fn := Chain("search_engine", func(context.Context, map[string]any) (map[string]any, error) {
		calls++
		return nil, errTransient
	}, StatsMiddleware{}, TimeoutMiddleware{Timeout: time.Second})

	_, err := fn(context.Background(), nil)
	assert.ErrorIs(t, err, errTransient)
	assert.Equal(t, 1, calls)
}
