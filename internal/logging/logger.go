// Package logging provides categorized, zap-backed logging for zest.
// Every subsystem logs through a named child of one process logger, so a
// single --verbose or --log-json switch controls the whole run.
package logging

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Category represents a log category/system
type Category string

const (
	CategoryBoot      Category = "boot"      // CLI startup, config resolution
	CategoryGuard     Category = "guard"     // Toolchain precondition checks
	CategoryToolchain Category = "toolchain" // rustup installs
	CategoryArtifacts Category = "artifacts" // Coverage directory preparation
	CategoryTactile   Category = "tactile"   // Process spawning
	CategoryBuild     Category = "build"     // Build stage and environment overlay
	CategoryTests     Category = "tests"     // Test stage fan-out
	CategoryAggregate Category = "aggregate" // Coverage aggregation
	CategoryReport    Category = "report"    // Report dispatch
	CategoryWatch     Category = "watch"     // Source watcher
	CategoryWorld     Category = "world"     // Source parsing (tree-sitter)
	CategoryGenerate  Category = "generate"  // Template generation
)

// Options controls how the process logger is built.
type Options struct {
	// Level is one of debug, info, warn, error. Empty means warn.
	Level string
	// JSON selects the JSON encoder instead of the console encoder.
	JSON bool
	// OutputPaths defaults to stderr.
	OutputPaths []string
}

// Logger wraps a sugared zap logger with printf-style helpers.
type Logger struct {
	category Category
	sugar    *zap.SugaredLogger
}

var (
	base      = zap.NewNop()
	loggers   = make(map[Category]*Logger)
	loggersMu sync.RWMutex
)

// Initialize builds the process logger from opts and installs it.
func Initialize(opts Options) (*zap.Logger, error) {
	level := zapcore.WarnLevel
	if opts.Level != "" {
		parsed, err := zapcore.ParseLevel(strings.ToLower(opts.Level))
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", opts.Level, err)
		}
		level = parsed
	}

	cfg := zap.NewDevelopmentConfig()
	if opts.JSON {
		cfg = zap.NewProductionConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.DisableStacktrace = true
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	if len(opts.OutputPaths) > 0 {
		cfg.OutputPaths = opts.OutputPaths
	}

	l, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	SetLogger(l)
	return l, nil
}

// SetLogger replaces the process logger. Tests use it with zaptest/observer.
func SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	loggersMu.Lock()
	defer loggersMu.Unlock()
	base = l
	loggers = make(map[Category]*Logger)
}

// L returns the process logger.
func L() *zap.Logger {
	loggersMu.RLock()
	defer loggersMu.RUnlock()
	return base
}

// Sync flushes buffered entries.
func Sync() {
	_ = L().Sync()
}

// Get returns the logger for a category.
func Get(category Category) *Logger {
	loggersMu.RLock()
	if l, ok := loggers[category]; ok {
		loggersMu.RUnlock()
		return l
	}
	loggersMu.RUnlock()

	loggersMu.Lock()
	defer loggersMu.Unlock()
	if l, ok := loggers[category]; ok {
		return l
	}
	l := &Logger{
		category: category,
		sugar:    base.Named(string(category)).Sugar(),
	}
	loggers[category] = l
	return l
}

// With returns a child logger carrying structured key/value pairs.
func (l *Logger) With(keysAndValues ...interface{}) *Logger {
	return &Logger{category: l.category, sugar: l.sugar.With(keysAndValues...)}
}

func (l *Logger) Debug(format string, args ...interface{}) { l.sugar.Debugf(format, args...) }
func (l *Logger) Info(format string, args ...interface{})  { l.sugar.Infof(format, args...) }
func (l *Logger) Warn(format string, args ...interface{})  { l.sugar.Warnf(format, args...) }
func (l *Logger) Error(format string, args ...interface{}) { l.sugar.Errorf(format, args...) }

// =============================================================================
// Category helpers
// =============================================================================

func Boot(format string, args ...interface{})      { Get(CategoryBoot).Info(format, args...) }
func BootDebug(format string, args ...interface{}) { Get(CategoryBoot).Debug(format, args...) }

func Guard(format string, args ...interface{})      { Get(CategoryGuard).Info(format, args...) }
func GuardDebug(format string, args ...interface{}) { Get(CategoryGuard).Debug(format, args...) }
func GuardWarn(format string, args ...interface{})  { Get(CategoryGuard).Warn(format, args...) }

func Toolchain(format string, args ...interface{})      { Get(CategoryToolchain).Info(format, args...) }
func ToolchainDebug(format string, args ...interface{}) { Get(CategoryToolchain).Debug(format, args...) }

func ArtifactsDebug(format string, args ...interface{}) { Get(CategoryArtifacts).Debug(format, args...) }
func ArtifactsWarn(format string, args ...interface{})  { Get(CategoryArtifacts).Warn(format, args...) }

func Build(format string, args ...interface{})      { Get(CategoryBuild).Info(format, args...) }
func BuildDebug(format string, args ...interface{}) { Get(CategoryBuild).Debug(format, args...) }
func BuildError(format string, args ...interface{}) { Get(CategoryBuild).Error(format, args...) }

func Tests(format string, args ...interface{})      { Get(CategoryTests).Info(format, args...) }
func TestsDebug(format string, args ...interface{}) { Get(CategoryTests).Debug(format, args...) }
func TestsError(format string, args ...interface{}) { Get(CategoryTests).Error(format, args...) }

func Aggregate(format string, args ...interface{})      { Get(CategoryAggregate).Info(format, args...) }
func AggregateDebug(format string, args ...interface{}) { Get(CategoryAggregate).Debug(format, args...) }
func AggregateError(format string, args ...interface{}) { Get(CategoryAggregate).Error(format, args...) }

func ReportDebug(format string, args ...interface{}) { Get(CategoryReport).Debug(format, args...) }

func Watch(format string, args ...interface{})      { Get(CategoryWatch).Info(format, args...) }
func WatchDebug(format string, args ...interface{}) { Get(CategoryWatch).Debug(format, args...) }
func WatchWarn(format string, args ...interface{})  { Get(CategoryWatch).Warn(format, args...) }

func WorldDebug(format string, args ...interface{}) { Get(CategoryWorld).Debug(format, args...) }

func GenerateDebug(format string, args ...interface{}) { Get(CategoryGenerate).Debug(format, args...) }

// =============================================================================
// Timers
// =============================================================================

// Timer measures an operation and logs its duration when stopped.
type Timer struct {
	category Category
	op       string
	start    time.Time
}

// StartTimer begins timing an operation.
func StartTimer(category Category, operation string) *Timer {
	return &Timer{
		category: category,
		op:       operation,
		start:    time.Now(),
	}
}

// Stop ends the timer and logs the duration
func (t *Timer) Stop() time.Duration {
	elapsed := time.Since(t.start)
	Get(t.category).Debug("%s completed in %v", t.op, elapsed)
	return elapsed
}

// StopWithInfo ends the timer and logs at info level
func (t *Timer) StopWithInfo() time.Duration {
	elapsed := time.Since(t.start)
	Get(t.category).Info("%s completed in %v", t.op, elapsed)
	return elapsed
}
