package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func observe(t *testing.T, level zapcore.Level) *observer.ObservedLogs {
	t.Helper()
	core, logs := observer.New(level)
	SetLogger(zap.New(core))
	t.Cleanup(func() { SetLogger(nil) })
	return logs
}

func TestGet_NamesLoggerByCategory(t *testing.T) {
	logs := observe(t, zapcore.DebugLevel)

	BuildDebug("building %s", "setter")
	Guard("checked %d rules", 3)

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "build", entries[0].LoggerName)
	assert.Equal(t, "building setter", entries[0].Message)
	assert.Equal(t, zapcore.DebugLevel, entries[0].Level)
	assert.Equal(t, "guard", entries[1].LoggerName)
	assert.Equal(t, "checked 3 rules", entries[1].Message)
}

func TestGet_CachesPerCategory(t *testing.T) {
	observe(t, zapcore.InfoLevel)
	assert.Same(t, Get(CategoryTests), Get(CategoryTests))
	assert.NotSame(t, Get(CategoryTests), Get(CategoryBuild))
}

func TestSetLogger_ResetsCache(t *testing.T) {
	observe(t, zapcore.InfoLevel)
	before := Get(CategoryReport)

	logs := observe(t, zapcore.InfoLevel)
	after := Get(CategoryReport)
	assert.NotSame(t, before, after)

	Aggregate("aggregated into %s", "target/coverage")
	assert.Equal(t, 1, logs.Len())
}

func TestLevelFiltering(t *testing.T) {
	logs := observe(t, zapcore.WarnLevel)

	ArtifactsDebug("hidden")
	Guard("hidden too")
	ArtifactsWarn("visible")

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "visible", logs.All()[0].Message)
}

func TestWith_AddsFields(t *testing.T) {
	logs := observe(t, zapcore.InfoLevel)

	Get(CategoryTests).With("run_id", "abc").Info("started")

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "abc", entries[0].ContextMap()["run_id"])
}

func TestInitialize(t *testing.T) {
	t.Cleanup(func() { SetLogger(nil) })

	l, err := Initialize(Options{Level: "debug", OutputPaths: []string{"stderr"}})
	require.NoError(t, err)
	assert.True(t, l.Core().Enabled(zapcore.DebugLevel))

	l, err = Initialize(Options{})
	require.NoError(t, err)
	assert.False(t, l.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, l.Core().Enabled(zapcore.WarnLevel))

	_, err = Initialize(Options{Level: "chatty"})
	assert.Error(t, err)
}

func TestTimer(t *testing.T) {
	logs := observe(t, zapcore.DebugLevel)

	StartTimer(CategoryBuild, "cargo build").Stop()

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "build", entries[0].LoggerName)
	assert.Contains(t, entries[0].Message, "cargo build completed in")
}
