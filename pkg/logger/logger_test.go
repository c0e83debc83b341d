package logger

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestFromContextReturnsBoundLogger(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	base := New(zap.New(core))

	bound := base.With("session", "s-1", "agent", "supervisor")
	ctx := WithContext(context.Background(), bound)

	FromContext(ctx).Info("Starting stock analysis session")

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "Starting stock analysis session", entry.Message)
	fields := entry.ContextMap()
	assert.Equal(t, "s-1", fields["session"])
	assert.Equal(t, "supervisor", fields["agent"])
}

func TestFromContextFallsBackToGlobal(t *testing.T) {
	assert.NotNil(t, FromContext(context.Background()))
	assert.Same(t, Get(), FromContext(context.Background()))
}

func TestWithFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := New(zap.New(core)).WithFields(map[string]interface{}{"tool_count": 3})

	l.Debug("Tools loaded")

	require.Equal(t, 1, logs.Len())
	assert.EqualValues(t, 3, logs.All()[0].ContextMap()["tool_count"])
}

func TestDailyLogFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	day := time.Date(2025, 3, 7, 10, 0, 0, 0, time.UTC)

	path, err := dailyLogFile(dir, "", day)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "stock_research_20250307.log"), path)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
