package tactile

import "context"

// Executor starts a command, waits for it and captures its output.
//
// A non-zero exit is not an error: the returned result carries the exit
// code. An error means the process could not be started or waited on
// (binary missing, context canceled, I/O failure).
type Executor interface {
	Execute(ctx context.Context, cmd Command) (*ExecutionResult, error)
}
