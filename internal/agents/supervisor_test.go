package agents

import (
	"context"
	"iter"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/adk/tool"

	"stockresearch/internal/tools"
	"stockresearch/pkg/errors"
)

type scriptedCoordinator struct {
	chunks []*Chunk
	err    error
	gotSC  SessionContext
	query  string
}

func (c *scriptedCoordinator) Run(_ context.Context, sc SessionContext, query string) iter.Seq2[*Chunk, error] {
	c.gotSC = sc
	c.query = query
	return func(yield func(*Chunk, error) bool) {
		for _, ch := range c.chunks {
			if !yield(ch, nil) {
				return
			}
		}
		if c.err != nil {
			yield(nil, c.err)
		}
	}
}

func newTestSupervisor(t *testing.T, coord Coordinator, builds *atomic.Int32) *Supervisor {
	t.Helper()
	f, err := NewFactory(FactoryDeps{Model: stubLLM{}, Tools: tools.Static(buildTools(t, "search_engine"))})
	require.NoError(t, err)

	s, err := NewSupervisor(f, func(_ context.Context, specs []AgentSpec, brief string) (Coordinator, error) {
		builds.Add(1)
		require.Len(t, specs, 4)
		assert.Contains(t, brief, "WORKFLOW SEQUENCE")
		return coord, nil
	})
	require.NoError(t, err)
	return s
}

func TestSupervisorLifecycle(t *testing.T) {
	var builds atomic.Int32
	coord := &scriptedCoordinator{chunks: []*Chunk{{Index: 0, Author: "stock_finder_agent"}, {Index: 1, Author: "market_data_agent"}}}
	s := newTestSupervisor(t, coord, &builds)

	assert.Equal(t, StateUninitialized, s.State())
	assert.Zero(t, s.ToolCount())

	ctx := WithSession(context.Background(), SessionContext{SessionID: "s-1", AgentID: AgentSupervisor})
	var got []*Chunk
	for ch, err := range s.Run(ctx, "find stocks") {
		require.NoError(t, err)
		assert.Equal(t, StateRunning, s.State())
		got = append(got, ch)
	}

	assert.Len(t, got, 2)
	assert.Equal(t, StateCompleted, s.State())
	assert.Equal(t, "completed", s.StateName())
	assert.Equal(t, 1, s.ToolCount())
	assert.Equal(t, "s-1", coord.gotSC.SessionID)
	assert.Equal(t, "find stocks", coord.query)

	// A completed pipeline is reused.
	for range s.Run(ctx, "again") {
	}
	assert.EqualValues(t, 1, builds.Load())
}

func TestSupervisorInitializeOnceUnderConcurrency(t *testing.T) {
	var builds atomic.Int32
	s := newTestSupervisor(t, &scriptedCoordinator{}, &builds)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, s.Initialize(context.Background()))
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 1, builds.Load())
	assert.Equal(t, StateReady, s.State())
}

func TestSupervisorStreamingFailure(t *testing.T) {
	var builds atomic.Int32
	boom := errors.New("model unavailable")
	s := newTestSupervisor(t, &scriptedCoordinator{chunks: []*Chunk{{Index: 0}}, err: boom}, &builds)

	var (
		chunks int
		runErr error
	)
	for ch, err := range s.Run(context.Background(), "q") {
		if err != nil {
			runErr = err
			break
		}
		require.NotNil(t, ch)
		chunks++
	}

	assert.Equal(t, 1, chunks)
	assert.Same(t, boom, runErr)
	assert.Equal(t, StateFailed, s.State())
	assert.True(t, s.Initialized())
}

func TestSupervisorInitializationFailureRetries(t *testing.T) {
	var calls atomic.Int32
	f, err := NewFactory(FactoryDeps{
		Model: stubLLM{},
		Tools: toolSourceFunc(func(context.Context) ([]tool.Tool, error) {
			if calls.Add(1) == 1 {
				return nil, errors.ErrToolServer
			}
			return nil, nil
		}),
	})
	require.NoError(t, err)

	s, err := NewSupervisor(f, func(context.Context, []AgentSpec, string) (Coordinator, error) {
		return &scriptedCoordinator{}, nil
	})
	require.NoError(t, err)

	assert.False(t, s.Initialized())
	for _, err := range s.Run(context.Background(), "q") {
		assert.True(t, errors.Is(err, errors.ErrInitialization))
	}
	assert.Equal(t, StateFailed, s.State())
	assert.False(t, s.Initialized())

	require.NoError(t, s.Initialize(context.Background()))
	assert.Equal(t, StateReady, s.State())
	assert.True(t, s.Initialized())
	assert.EqualValues(t, 2, calls.Load())
}

func TestSupervisorBuilderFailure(t *testing.T) {
	f, err := NewFactory(FactoryDeps{Model: stubLLM{}})
	require.NoError(t, err)

	s, err := NewSupervisor(f, func(context.Context, []AgentSpec, string) (Coordinator, error) {
		return nil, errors.ErrInvalidInput
	})
	require.NoError(t, err)

	err = s.Initialize(context.Background())
	assert.True(t, errors.Is(err, errors.ErrInitialization))
	assert.True(t, errors.Is(err, errors.ErrInvalidInput))
}

func TestNewSupervisorValidates(t *testing.T) {
	_, err := NewSupervisor(nil, nil)
	assert.True(t, errors.Is(err, errors.ErrInitialization))
}
