package tactile

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"

	"zest/internal/logging"
)

// execCommandContext is swapped in tests.
var execCommandContext = exec.CommandContext

// DirectExecutor runs commands as direct children of this process.
type DirectExecutor struct {
	config ExecutorConfig
}

// NewDirectExecutor creates an executor with DefaultExecutorConfig.
func NewDirectExecutor() *DirectExecutor {
	return NewDirectExecutorWithConfig(DefaultExecutorConfig())
}

// NewDirectExecutorWithConfig creates an executor with config merged over
// the defaults.
func NewDirectExecutorWithConfig(config ExecutorConfig) *DirectExecutor {
	return &DirectExecutor{config: DefaultExecutorConfig().Merge(config)}
}

// Execute implements Executor.
func (e *DirectExecutor) Execute(ctx context.Context, cmd Command) (*ExecutionResult, error) {
	if cmd.Binary == "" {
		return nil, errors.New("tactile: empty binary")
	}
	log := logging.Get(logging.CategoryTactile)
	if cmd.RequestID != "" {
		log = log.With("run_id", cmd.RequestID)
	}
	log.Debug("exec: %s (dir=%q, overlay=%d)", cmd.CommandString(), cmd.WorkingDirectory, len(cmd.Environment))

	execCmd := execCommandContext(ctx, cmd.Binary, cmd.Arguments...)
	execCmd.Dir = cmd.WorkingDirectory
	execCmd.Env = MergeEnv(os.Environ(), cmd.Environment...)

	var stdout, stderr bytes.Buffer
	stdoutW := e.wrap(&stdout)
	stderrW := e.wrap(&stderr)
	execCmd.Stdout = stdoutW
	execCmd.Stderr = stderrW

	result := &ExecutionResult{Command: cmd}
	result.StartedAt = timeNow()
	err := execCmd.Run()
	result.FinishedAt = timeNow()
	result.Duration = result.FinishedAt.Sub(result.StartedAt)
	result.Stdout = stdout.String()
	result.Stderr = stderr.String()
	result.Truncated = truncated(stdoutW) || truncated(stderrW)

	if err != nil {
		var exitErr *exec.ExitError
		switch {
		case ctx.Err() != nil:
			log.Warn("exec canceled: %s: %v", cmd.Binary, ctx.Err())
			return result, fmt.Errorf("%s: %w", cmd.Binary, ctx.Err())
		case errors.As(err, &exitErr):
			result.ExitCode = exitErr.ExitCode()
			log.Debug("exec: %s exited %d after %s", cmd.Binary, result.ExitCode, result.Duration)
			return result, nil
		default:
			log.Warn("exec failed: %s: %v", cmd.Binary, err)
			return nil, fmt.Errorf("run %s: %w", cmd.Binary, err)
		}
	}

	log.Debug("exec: %s ok after %s, stdout=%d bytes", cmd.Binary, result.Duration, len(result.Stdout))
	return result, nil
}

func (e *DirectExecutor) wrap(w io.Writer) io.Writer {
	if e.config.MaxOutputBytes <= 0 {
		return w
	}
	return &limitedWriter{w: w, max: e.config.MaxOutputBytes}
}

func truncated(w io.Writer) bool {
	lw, ok := w.(*limitedWriter)
	return ok && lw.truncated
}

// limitedWriter is an io.Writer that limits total bytes written.
type limitedWriter struct {
	w         io.Writer
	max       int64
	written   int64
	truncated bool
}

func (lw *limitedWriter) Write(p []byte) (int, error) {
	n := len(p)
	if lw.written >= lw.max {
		lw.truncated = true
		return n, nil
	}
	remaining := lw.max - lw.written
	if int64(n) > remaining {
		lw.truncated = true
		written, err := lw.w.Write(p[:remaining])
		lw.written += int64(written)
		// Report the full length so exec does not fail with a short write.
		return n, err
	}
	written, err := lw.w.Write(p)
	lw.written += int64(written)
	return written, err
}
