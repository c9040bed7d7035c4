// Package tactile runs external programs (cargo, rustup, grcov, openers)
// with a captured stdout/stderr pair and an environment overlay that is
// scoped to the child process.
package tactile

import (
	"fmt"
	"strings"
	"time"
)

// Command describes one external program invocation.
type Command struct {
	// Binary is the program name, resolved via PATH when not absolute.
	Binary string

	// Arguments are passed verbatim; no shell is involved.
	Arguments []string

	// WorkingDirectory is the child's cwd. Empty means the caller's cwd.
	WorkingDirectory string

	// Environment holds KEY=VALUE pairs layered over the inherited
	// environment of the current process. The current process environment
	// is never mutated.
	Environment []string

	// RequestID correlates log lines of a single pipeline run.
	RequestID string
}

// CommandString renders the command for logs and error messages.
func (c Command) CommandString() string {
	if len(c.Arguments) == 0 {
		return c.Binary
	}
	return c.Binary + " " + strings.Join(c.Arguments, " ")
}

// ExecutionResult is the outcome of a command that was started.
type ExecutionResult struct {
	Command Command

	ExitCode int
	Stdout   string
	Stderr   string

	// Truncated is set when either stream exceeded the configured limit.
	Truncated bool

	StartedAt  time.Time
	FinishedAt time.Time
	Duration   time.Duration
}

// Success reports whether the process exited with status 0.
func (r *ExecutionResult) Success() bool {
	return r != nil && r.ExitCode == 0
}

// ExitError wraps a result whose process exited non-zero, so callers can
// surface both captured streams.
type ExitError struct {
	Result *ExecutionResult
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("%s exited with status %d", e.Result.Command.CommandString(), e.Result.ExitCode)
}

// CheckExit converts a non-zero exit into an *ExitError.
func CheckExit(res *ExecutionResult) error {
	if res.Success() {
		return nil
	}
	return &ExitError{Result: res}
}

// ExecutorConfig tunes an executor.
type ExecutorConfig struct {
	// MaxOutputBytes caps each captured stream. Zero means unlimited.
	MaxOutputBytes int64
}

// DefaultExecutorConfig keeps up to 64 MiB per stream; cargo with many
// integration tests can be chatty.
func DefaultExecutorConfig() ExecutorConfig {
	return ExecutorConfig{MaxOutputBytes: 64 << 20}
}

// Merge overlays non-zero fields from other.
func (c ExecutorConfig) Merge(other ExecutorConfig) ExecutorConfig {
	if other.MaxOutputBytes != 0 {
		c.MaxOutputBytes = other.MaxOutputBytes
	}
	return c
}
