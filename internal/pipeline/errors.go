package pipeline

import (
	"errors"
	"fmt"

	"zest/internal/aggregate"
	"zest/internal/artifacts"
	"zest/internal/tactile"
	"zest/internal/toolchain"
)

// Errors a run can end with. Every one of them is terminal.
var (
	ErrToolchainManagerRequired = toolchain.ErrToolchainManagerRequired
	ErrNightlyRequired          = toolchain.ErrNightlyRequired
	ErrIO                       = artifacts.ErrIO
	ErrAggregationFailed        = aggregate.ErrAggregationFailed

	ErrInstallFailed = errors.New("toolchain install failed")
	ErrBuildFailed   = errors.New("cargo build failed")
	ErrTestFailed    = errors.New("cargo test failed")
)

// StageError is a stage failure together with the process output that
// explains it. Result is nil when the process could not be started.
type StageError struct {
	Stage  string
	Err    error
	Cause  error
	Result *tactile.ExecutionResult
}

func (e *StageError) Error() string {
	switch {
	case e.Result != nil:
		return fmt.Sprintf("%s: %v (exit status %d)", e.Stage, e.Err, e.Result.ExitCode)
	case e.Cause != nil:
		return fmt.Sprintf("%s: %v: %v", e.Stage, e.Err, e.Cause)
	default:
		return fmt.Sprintf("%s: %v", e.Stage, e.Err)
	}
}

// Unwrap exposes both the sentinel and the underlying cause.
func (e *StageError) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Err}
	}
	return []error{e.Err, e.Cause}
}
