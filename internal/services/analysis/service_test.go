package analysis

import (
	"context"
	"iter"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockresearch/internal/agents"
	"stockresearch/pkg/errors"
)

type fakePipeline struct {
	chunks []*agents.Chunk
	err    error

	gotQuery    string
	gotSession  agents.SessionContext
	hadDeadline bool
}

func (p *fakePipeline) Run(ctx context.Context, query string) iter.Seq2[*agents.Chunk, error] {
	return func(yield func(*agents.Chunk, error) bool) {
		p.gotQuery = query
		p.gotSession = agents.SessionFrom(ctx)
		_, p.hadDeadline = ctx.Deadline()

		for _, c := range p.chunks {
			if !yield(c, nil) {
				return
			}
		}
		if p.err != nil {
			yield(nil, p.err)
		}
	}
}

type recordingTracker struct {
	mu   sync.Mutex
	errs []error
	tags []map[string]string
}

func (t *recordingTracker) CaptureError(_ context.Context, err error, tags map[string]string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.errs = append(t.errs, err)
	t.tags = append(t.tags, tags)
	return nil
}

func (t *recordingTracker) CaptureMessage(context.Context, string, errors.Level, map[string]string) error {
	return nil
}

func (t *recordingTracker) AddBreadcrumb(context.Context, string, string, errors.Level, map[string]interface{}) {
}

func (t *recordingTracker) Flush(context.Context) error { return nil }

func chunk(i int, author, text string, transcript ...agents.Message) *agents.Chunk {
	msg := &agents.ChatMessage{Role: agents.RoleModel, Agent: author, Text: text}
	return &agents.Chunk{
		Index:      i,
		Author:     author,
		Messages:   []agents.Message{msg},
		Transcript: append(transcript, msg),
	}
}

func TestAnalyzeCollectsChunks(t *testing.T) {
	query := &agents.ChatMessage{Role: agents.RoleUser, Text: "Find momentum stocks"}
	first := chunk(0, "stock_finder_agent", "RELIANCE, TCS", query)
	last := chunk(1, "recommendation_agent", "STOCK_SYMBOL: RELIANCE", first.Transcript...)

	pipeline := &fakePipeline{chunks: []*agents.Chunk{first, last}}
	svc, err := NewService(pipeline, &recordingTracker{}, Config{})
	require.NoError(t, err)

	result, err := svc.Analyze(context.Background(), "Find momentum stocks")
	require.NoError(t, err)

	assert.Equal(t, "Find momentum stocks", pipeline.gotQuery)
	assert.Equal(t, agents.AgentSupervisor, pipeline.gotSession.AgentID)
	assert.Equal(t, result.SessionID, pipeline.gotSession.SessionID)
	assert.False(t, pipeline.hadDeadline)

	assert.NotEmpty(t, result.SessionID)
	assert.Equal(t, agents.StatusCompleted, result.Status)
	assert.False(t, result.Timestamp.IsZero())
	assert.Len(t, result.RawOutput, 2)
	require.Len(t, result.Messages, 3)
	assert.Equal(t, "Find momentum stocks", result.Messages[0].TextContent())
	assert.Equal(t, "STOCK_SYMBOL: RELIANCE", agents.FormatResultsForDisplay(result))
}

func TestAnalyzeUsesDefaultQuery(t *testing.T) {
	pipeline := &fakePipeline{}
	svc, err := NewService(pipeline, nil, Config{Timeout: time.Minute})
	require.NoError(t, err)

	result, err := svc.Analyze(context.Background(), "   ")
	require.NoError(t, err)

	assert.Equal(t, DefaultQuery, pipeline.gotQuery)
	assert.True(t, pipeline.hadDeadline)
	assert.Empty(t, result.Messages)
	assert.Equal(t, "No analysis results available.", agents.FormatResultsForDisplay(result))
}

func TestAnalyzeConfiguredDefaultQuery(t *testing.T) {
	pipeline := &fakePipeline{}
	svc, err := NewService(pipeline, nil, Config{DefaultQuery: "Screen BSE midcaps"})
	require.NoError(t, err)

	_, err = svc.Analyze(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "Screen BSE midcaps", pipeline.gotQuery)
}

func TestAnalyzeReturnsStreamingErrorUnchanged(t *testing.T) {
	boom := errors.Wrap(errors.ErrExternal, "tool server crashed")
	pipeline := &fakePipeline{
		chunks: []*agents.Chunk{chunk(0, "stock_finder_agent", "partial")},
		err:    boom,
	}
	tracker := &recordingTracker{}
	svc, err := NewService(pipeline, tracker, Config{})
	require.NoError(t, err)

	result, err := svc.Analyze(context.Background(), "q")
	assert.Nil(t, result)
	assert.Same(t, boom, err)

	require.Len(t, tracker.errs, 1)
	assert.Same(t, boom, tracker.errs[0])
	assert.Equal(t, pipeline.gotSession.SessionID, tracker.tags[0]["session_id"])
	assert.Equal(t, "supervisor", tracker.tags[0]["agent"])
}

func TestNewServiceRequiresPipeline(t *testing.T) {
	_, err := NewService(nil, nil, Config{})
	assert.True(t, errors.Is(err, errors.ErrInvalidInput))
}
