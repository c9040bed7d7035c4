// Package tactiletest provides a recording tactile.Executor for tests.
package tactiletest

import (
	"context"
	"sync"

	"zest/internal/tactile"
)

// Recorder is a spy Executor. It records every command and answers with
// Respond, or with a successful empty result when Respond is nil.
type Recorder struct {
	Respond func(ctx context.Context, cmd tactile.Command) (*tactile.ExecutionResult, error)

	mu    sync.Mutex
	calls []tactile.Command
}

// Execute implements tactile.Executor.
func (r *Recorder) Execute(ctx context.Context, cmd tactile.Command) (*tactile.ExecutionResult, error) {
	r.mu.Lock()
	r.calls = append(r.calls, cmd)
	r.mu.Unlock()

	if r.Respond != nil {
		return r.Respond(ctx, cmd)
	}
	return OK(cmd, ""), nil
}

// Calls returns a copy of the recorded commands in call order.
func (r *Recorder) Calls() []tactile.Command {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]tactile.Command, len(r.calls))
	copy(out, r.calls)
	return out
}

// Binaries returns the binary of each recorded command.
func (r *Recorder) Binaries() []string {
	calls := r.Calls()
	out := make([]string, len(calls))
	for i, c := range calls {
		out[i] = c.Binary
	}
	return out
}

// OK builds a successful result.
func OK(cmd tactile.Command, stdout string) *tactile.ExecutionResult {
	return &tactile.ExecutionResult{Command: cmd, Stdout: stdout}
}

// Exit builds a result with the given exit code and streams.
func Exit(cmd tactile.Command, code int, stdout, stderr string) *tactile.ExecutionResult {
	return &tactile.ExecutionResult{Command: cmd, ExitCode: code, Stdout: stdout, Stderr: stderr}
}
